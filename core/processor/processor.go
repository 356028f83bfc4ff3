// Package processor validates AFT transfer requests per transfer type.
//
// A processor never moves money and never touches the current transfer. It
// returns a Decision: either the record with a terminal failure status, or
// the pending record plus the fund operation the dispatcher should submit.
package processor

import (
	"context"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/sasaft/core/dto"
	"github.com/vadiminshakov/sasaft/core/external"
	"github.com/vadiminshakov/sasaft/core/guard"
	"github.com/vadiminshakov/sasaft/core/provider"
)

// Provider is the view of the transfer provider the processors read.
type Provider interface {
	Features() dto.Features
	TransactionIDUnique(id string) bool
	TransferLimitAmount(ctx context.Context, rec *dto.TransferRecord) (uint64, error)
	Balances(ctx context.Context) (dto.Balances, error)
	HostCashOutPending() bool
	CashOutWinPending() bool
	PendingWinAmount() uint64
}

// Registration checks the host's identity.
type Registration interface {
	Verify(key dto.RegistrationKey, required bool) (dto.TransferStatus, bool)
	HasPosID() bool
}

// Decision is the outcome of a processor.
type Decision struct {
	Record dto.TransferRecord
	// Submit is set when Record passed validation and Kind must be executed.
	Submit bool
	Kind   provider.Kind
}

// Processor validates one kind of transfer request.
type Processor interface {
	Process(ctx context.Context, rec dto.TransferRecord) Decision
}

// Deps are the collaborators shared by the processors. Printer may be nil on
// a machine without a printer; BonusAllowed may be nil to allow every bonus.
type Deps struct {
	Provider     Provider
	Registration Registration
	Printer      external.Printer
	BonusAllowed func(rec dto.TransferRecord) bool
}

func (d Deps) validate() error {
	if d.Provider == nil {
		return errors.New("provider is nil")
	}
	if d.Registration == nil {
		return errors.New("registration is nil")
	}
	return nil
}

// typed is a processor defined by its guard chain and fund operation.
type typed struct {
	kind   provider.Kind
	guards func(ctx context.Context) *guard.Chain
}

func (p *typed) Process(ctx context.Context, rec dto.TransferRecord) Decision {
	if !provider.CheckForErrorConditions(&rec, p.guards(ctx)) {
		return Decision{Record: rec}
	}

	rec.TransferStatus = dto.TransferPending
	rec.ReceiptStatus = dto.NoReceiptRequested
	if rec.ReceiptRequested() {
		rec.ReceiptStatus = dto.ReceiptPending
	}
	return Decision{Record: rec, Submit: true, Kind: p.kind}
}

// Registry maps each transfer type to its processor.
type Registry map[dto.TransferType]Processor

// NewRegistry builds the processors for all eight transfer types.
func NewRegistry(deps Deps) (Registry, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}

	return Registry{
		dto.HostToGameInHouse:       NewInHouseToGame(deps),
		dto.HostToGameDebit:         NewDebitToGame(deps),
		dto.HostToGameBonusCoinOut:  NewBonusCoinOut(deps),
		dto.HostToGameBonusJackpot:  NewBonusJackpot(deps),
		dto.HostToGameInHouseTicket: NewInHouseToTicket(deps),
		dto.HostToGameDebitTicket:   NewDebitToTicket(deps),
		dto.GameToHostInHouse:       NewInHouseFromGame(deps),
		dto.GameToHostInHouseWin:    NewWinFromGame(deps),
	}, nil
}

// Missing returns the transfer types the registry has no processor for.
func (r Registry) Missing() []dto.TransferType {
	var missing []dto.TransferType
	for _, t := range dto.TransferTypes {
		if r[t] == nil {
			missing = append(missing, t)
		}
	}
	return missing
}
