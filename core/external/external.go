// Package external declares the collaborators the AFT engine consumes but
// does not own: the bank ledger, printer, host cashout, auto-play, disable
// signals, feature configuration and ticketing.
package external

import (
	"context"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/sasaft/core/dto"
)

var (
	// ErrInsufficientFunds is returned by a ledger when a debit exceeds a fund class balance.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrAlreadyProcessed is returned by a ledger for a transaction id it applied before.
	ErrAlreadyProcessed = errors.New("transaction already processed")
)

//go:generate mockgen -destination=../../mocks/mock_bank.go -package=mocks . Bank,BankTxn

// Bank is the machine's credit ledger.
type Bank interface {
	// Balances returns the current credit meters.
	Balances(ctx context.Context) (dto.Balances, error)
	// WaitForLock blocks until the ledger is free (no game round holds it)
	// and returns a scoped transaction. Exactly one of Commit or Rollback
	// must be called.
	WaitForLock(ctx context.Context) (BankTxn, error)
}

// BankTxn is a scoped ledger transaction.
type BankTxn interface {
	Balances() dto.Balances
	Credit(txID string, amounts dto.Amounts, poolID uint16, expiration uint32) error
	Debit(txID string, amounts dto.Amounts) error
	Commit() error
	Rollback()
}

//go:generate mockgen -destination=../../mocks/mock_printer.go -package=mocks . Printer

// Printer is the ticket/receipt printer capability. A machine without a
// printer passes a nil Printer.
type Printer interface {
	CanPrint() bool
	PrintReceipt(ctx context.Context, lines []string) error
	PrintTicket(ctx context.Context, amount uint64, expiration uint32, txID string) error
}

//go:generate mockgen -destination=../../mocks/mock_host_cashout.go -package=mocks . HostCashout

// HostCashout exposes the pending host cashout and win state.
type HostCashout interface {
	HostCashOutPending() bool
	CashOutWinPending() bool
	// PendingWinAmount is the win waiting to be transferred to the host, in cents.
	PendingWinAmount() uint64
	Status() dto.HostCashoutStatus
	// ApplyFlags applies the host cashout bits carried by an accepted transfer.
	ApplyFlags(flags dto.TransferFlags)
	// ClearPending is called once a transfer to the host completes.
	ClearPending()
}

// AutoPlay is the auto-play status provider.
type AutoPlay interface {
	Active() bool
	// End stops auto-play and reports whether it stopped.
	End() bool
}

// DisableSource reports the funds-transfer-disable signals.
type DisableSource interface {
	Flags() dto.DisableFlags
}

// FeatureSource reports the configured AFT features.
type FeatureSource interface {
	Features() dto.Features
}

// Ticketing supplies expiration data for restricted pools.
type Ticketing interface {
	// RestrictedExpiration returns the default expiration for pool, or 0.
	RestrictedExpiration(poolID uint16) uint32
}

// RoundState reports whether a game round is running.
type RoundState interface {
	RoundInProgress() bool
}
