package processor

import (
	"context"

	"github.com/vadiminshakov/sasaft/core/dto"
	"github.com/vadiminshakov/sasaft/core/guard"
	"github.com/vadiminshakov/sasaft/core/provider"
)

// NewInHouseFromGame moves credits from the machine to the host's in-house account.
func NewInHouseFromGame(d Deps) Processor {
	return &typed{kind: provider.KindOff, guards: func(ctx context.Context) *guard.Chain {
		return guard.NewChain(
			featureGuard(d, func(f dto.Features) bool { return f.InHouseFromGame }),
			registrationGuard(d, false),
			nonZeroGuard(),
			transactionIDGuard(d),
			limitGuard(ctx, d),
			guard.Guard{Name: "win pending", Check: func(*dto.TransferRecord) guard.Result {
				return guard.Check(d.Provider.CashOutWinPending(), dto.GamingMachineUnableToPerformTransfer,
					"win must be cashed out first")
			}},
			fundsGuard(ctx, d),
			receiptTypeGuard(),
		)
	}}
}

// NewWinFromGame cashes out a pending win to the host. Only cashable credits
// up to the pending win amount can move.
func NewWinFromGame(d Deps) Processor {
	return &typed{kind: provider.KindOff, guards: func(ctx context.Context) *guard.Chain {
		return guard.NewChain(
			featureGuard(d, func(f dto.Features) bool { return f.WinToHost }),
			registrationGuard(d, false),
			cashableOnlyGuard(),
			nonZeroGuard(),
			transactionIDGuard(d),
			limitGuard(ctx, d),
			guard.Guard{Name: "win pending", Check: func(*dto.TransferRecord) guard.Result {
				return guard.Check(!d.Provider.CashOutWinPending(), dto.NoWonCreditsAvailableForCashOut, "no pending win")
			}},
			guard.Guard{Name: "host cashout pending", Check: func(*dto.TransferRecord) guard.Result {
				return guard.Check(d.Provider.HostCashOutPending(), dto.GamingMachineUnableToPerformTransfer,
					"host cashout already pending")
			}},
			guard.Guard{Name: "win amount", Check: func(rec *dto.TransferRecord) guard.Result {
				win := d.Provider.PendingWinAmount()
				return guard.Check(rec.CashableAmount > win && !rec.PartialAllowed(),
					dto.NotAValidTransferFunction, "amount over pending win")
			}},
			fundsGuard(ctx, d),
			receiptTypeGuard(),
		)
	}}
}
