package processor

import (
	"context"

	log "github.com/sirupsen/logrus"
	"github.com/vadiminshakov/sasaft/core/dto"
	"github.com/vadiminshakov/sasaft/core/guard"
	"github.com/vadiminshakov/sasaft/core/provider"
)

func featureGuard(d Deps, enabled func(dto.Features) bool) guard.Guard {
	return guard.Guard{Name: "feature", Check: func(*dto.TransferRecord) guard.Result {
		return guard.Check(!enabled(d.Provider.Features()), dto.NotAValidTransferFunction, "transfer class disabled")
	}}
}

// registrationGuard verifies the registration key; always forces
// registration regardless of configuration.
func registrationGuard(d Deps, always bool) guard.Guard {
	return guard.Guard{Name: "registration", Check: func(rec *dto.TransferRecord) guard.Result {
		required := always || d.Provider.Features().RequireRegistration
		if status, ok := d.Registration.Verify(rec.RegistrationKey, required); !ok {
			return guard.Fail(status, "host not registered")
		}
		return guard.Ok()
	}}
}

func posIDGuard(d Deps) guard.Guard {
	return guard.Guard{Name: "pos id", Check: func(*dto.TransferRecord) guard.Result {
		return guard.Check(!d.Registration.HasPosID(), dto.NoPosId, "no pos id registered")
	}}
}

func cashableOnlyGuard() guard.Guard {
	return guard.Guard{Name: "cashable only", Check: func(rec *dto.TransferRecord) guard.Result {
		return guard.Check(rec.RestrictedAmount != 0 || rec.NonRestrictedAmount != 0,
			dto.NotAValidTransferFunction, "only cashable credits allowed")
	}}
}

func noRestrictedGuard() guard.Guard {
	return guard.Guard{Name: "no restricted", Check: func(rec *dto.TransferRecord) guard.Result {
		return guard.Check(rec.RestrictedAmount != 0, dto.NotAValidTransferFunction, "restricted credits not allowed")
	}}
}

func nonZeroGuard() guard.Guard {
	return guard.Guard{Name: "amount", Check: func(rec *dto.TransferRecord) guard.Result {
		return guard.Check(rec.Total() == 0, dto.NotAValidTransferAmountOrExpirationDate, "zero amount")
	}}
}

// expirationGuard validates the expiration of restricted credits.
func expirationGuard() guard.Guard {
	return guard.Guard{Name: "expiration", Check: func(rec *dto.TransferRecord) guard.Result {
		return guard.Check(rec.RestrictedAmount != 0 && !validExpiration(rec.Expiration),
			dto.NotAValidTransferAmountOrExpirationDate, "invalid expiration")
	}}
}

func ticketExpirationGuard() guard.Guard {
	return guard.Guard{Name: "ticket expiration", Check: func(rec *dto.TransferRecord) guard.Result {
		return guard.Check(!validExpiration(rec.Expiration), dto.ExpirationNotValidForTicket, "invalid ticket expiration")
	}}
}

func transactionIDGuard(d Deps) guard.Guard {
	return guard.Guard{Name: "transaction id", Check: func(rec *dto.TransferRecord) guard.Result {
		if !provider.TransactionIDValid(rec.TransactionID) {
			return guard.Fail(dto.TransactionIdNotValid, "malformed transaction id")
		}
		return guard.Check(!d.Provider.TransactionIDUnique(rec.TransactionID),
			dto.TransactionIdNotValid, "transaction id already used")
	}}
}

func limitGuard(ctx context.Context, d Deps) guard.Guard {
	return guard.Guard{Name: "limit", Check: func(rec *dto.TransferRecord) guard.Result {
		limit, err := d.Provider.TransferLimitAmount(ctx, rec)
		if err != nil {
			log.Errorf("transfer limit: %v", err)
			return guard.Fail(dto.GamingMachineUnableToPerformTransfer, "ledger unavailable")
		}
		return guard.Check(rec.Total() > limit, dto.TransferAmountExceedsGameLimit, "amount over transfer limit")
	}}
}

// poolGuard rejects restricted credits of another pool than the ones held.
func poolGuard(ctx context.Context, d Deps) guard.Guard {
	return guard.Guard{Name: "restricted pool", Check: func(rec *dto.TransferRecord) guard.Result {
		if rec.RestrictedAmount == 0 {
			return guard.Ok()
		}
		bal, err := d.Provider.Balances(ctx)
		if err != nil {
			log.Errorf("balances: %v", err)
			return guard.Fail(dto.GamingMachineUnableToPerformTransfer, "ledger unavailable")
		}
		return guard.Check(bal.Restricted > 0 && bal.PoolID != rec.PoolID,
			dto.UnableToAcceptTransferDueToExistingRestrictedAmounts, "restricted credits of another pool held")
	}}
}

// fundsGuard checks the machine holds the requested credits now. A partial
// transfer only needs something to transfer.
func fundsGuard(ctx context.Context, d Deps) guard.Guard {
	return guard.Guard{Name: "funds", Check: func(rec *dto.TransferRecord) guard.Result {
		bal, err := d.Provider.Balances(ctx)
		if err != nil {
			log.Errorf("balances: %v", err)
			return guard.Fail(dto.GamingMachineUnableToPerformTransfer, "ledger unavailable")
		}
		if bal.Covers(rec.Amounts()) {
			return guard.Ok()
		}
		if rec.PartialAllowed() && d.Provider.Features().PartialToHost && bal.Min(rec.Amounts()).Total() > 0 {
			return guard.Ok()
		}
		return guard.Fail(dto.NotAValidTransferFunction, "insufficient credits")
	}}
}

func receiptTypeGuard() guard.Guard {
	return guard.Guard{Name: "receipt type", Check: func(rec *dto.TransferRecord) guard.Result {
		return guard.Check(rec.ReceiptRequested() && !rec.TransferType.SupportsReceipt(),
			dto.TransactionReceiptNotAllowedForTransferType, "receipt not allowed for transfer type")
	}}
}

func ticketPrinterGuard(d Deps) guard.Guard {
	return guard.Guard{Name: "ticket printer", Check: func(*dto.TransferRecord) guard.Result {
		return guard.Check(d.Printer == nil || !d.Printer.CanPrint(),
			dto.TransferToTicketDeviceNotAvailable, "no ticket printer")
	}}
}
