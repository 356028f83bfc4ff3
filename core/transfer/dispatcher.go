// Package transfer routes long poll 72 requests to the transfer processors
// and answers the machine's capability queries.
package transfer

import (
	"context"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/vadiminshakov/sasaft/core/dto"
	"github.com/vadiminshakov/sasaft/core/external"
	"github.com/vadiminshakov/sasaft/core/processor"
	"github.com/vadiminshakov/sasaft/core/provider"
)

// Provider is the part of the transfer provider the dispatcher drives.
type Provider interface {
	IsTransferInProgress() bool
	TransactionIDUnique(id string) bool
	Features() dto.Features
	PartialTransfersAllowed() bool
	Balances(ctx context.Context) (dto.Balances, error)
	HostCashOutPending() bool
	CashOutWinPending() bool
	Submit(kind provider.Kind, rec dto.TransferRecord) *provider.FundOperation
}

type Registration interface {
	AssetNumber() uint32
	Verify(key dto.RegistrationKey, required bool) (dto.TransferStatus, bool)
}

type Lock interface {
	IsLocked() bool
}

type ReceiptVerifier interface {
	Verify(rec dto.TransferRecord) (dto.TransferStatus, bool)
}

// Config wires the dispatcher. AutoPlay, Disable and Receipts are optional.
type Config struct {
	Processors   processor.Registry
	Interrogate  processor.Processor
	StatusOnly   processor.Processor
	Provider     Provider
	Registration Registration
	Lock         Lock
	Cashout      external.HostCashout
	AutoPlay     external.AutoPlay
	Disable      external.DisableSource
	Receipts     ReceiptVerifier
}

// FullPartial handles full and partial transfer requests and interrogations.
// It is the only component that makes a transfer current.
type FullPartial struct {
	cfg Config
}

func NewFullPartial(cfg Config) (*FullPartial, error) {
	if missing := cfg.Processors.Missing(); len(missing) > 0 {
		return nil, errors.Errorf("no processor for transfer types %v", missing)
	}
	if cfg.Interrogate == nil || cfg.StatusOnly == nil {
		return nil, errors.New("interrogate processors are required")
	}
	if cfg.Provider == nil || cfg.Registration == nil || cfg.Lock == nil || cfg.Cashout == nil {
		return nil, errors.New("provider, registration, lock and cashout are required")
	}
	return &FullPartial{cfg: cfg}, nil
}

// Process answers a long poll 72 request. Rejected requests come back with a
// failure status and zero amounts; accepted ones come back pending while the
// fund operation runs.
func (d *FullPartial) Process(ctx context.Context, rec dto.TransferRecord) dto.TransferRecord {
	switch rec.TransferCode {
	case dto.TransferInterrogate:
		return d.cfg.Interrogate.Process(ctx, rec).Record
	case dto.TransferInterrogateStatusOnly, dto.TransferCancel:
		return d.cfg.StatusOnly.Process(ctx, rec).Record
	case dto.TransferFullOnly, dto.TransferPartialAllowed:
	default:
		return d.reject(rec, dto.UnsupportedTransferCode, "unsupported transfer code")
	}

	proc, ok := d.cfg.Processors[rec.TransferType]
	if !ok {
		return d.reject(rec, dto.UnsupportedTransferCode, "unknown transfer type")
	}

	if status, failed := d.precheck(ctx, &rec); failed {
		return d.reject(rec, status, "request rejected")
	}

	decision := proc.Process(ctx, rec)
	if !decision.Submit {
		d.logRejected(decision.Record, "processor")
		return decision.Record
	}

	out := decision.Record
	if out.ReceiptRequested() {
		if d.cfg.Receipts == nil {
			return d.reject(out, dto.UnableToPrintTransactionReceipt, "no receipt printer")
		}
		if status, ok := d.cfg.Receipts.Verify(out); !ok {
			return d.reject(out, status, "receipt cannot be printed")
		}
	}

	d.cfg.Cashout.ApplyFlags(out.TransferFlags)
	op := d.cfg.Provider.Submit(decision.Kind, out)

	log.WithFields(log.Fields{
		"transaction_id": out.TransactionID,
		"type":           out.TransferType.String(),
		"total":          out.Total(),
	}).Info("transfer accepted")

	if op != nil {
		return op.Record
	}
	return out
}

// precheck runs the machine wide checks every transfer type shares. It may
// downgrade a partial request to a full one.
func (d *FullPartial) precheck(ctx context.Context, rec *dto.TransferRecord) (dto.TransferStatus, bool) {
	if d.cfg.Provider.IsTransferInProgress() {
		return dto.NotCompatibleWithCurrentTransfer, true
	}

	if rec.AssetNumber == 0 || rec.AssetNumber != d.cfg.Registration.AssetNumber() {
		return dto.AssetNumberZeroOrDoesNotMatch, true
	}

	if !provider.TransactionIDValid(rec.TransactionID) || !d.cfg.Provider.TransactionIDUnique(rec.TransactionID) {
		return dto.TransactionIdNotValid, true
	}

	if rec.TransferFlags.Has(dto.AcceptTransferOnlyIfLocked) && !d.cfg.Lock.IsLocked() {
		return dto.GamingMachineNotLocked, true
	}

	if d.cfg.AutoPlay != nil && d.cfg.AutoPlay.Active() && !d.cfg.AutoPlay.End() {
		return dto.GamingMachineUnableToPerformTransfer, true
	}

	if d.cfg.Disable != nil {
		flags := d.cfg.Disable.Flags()
		if rec.TransferType.IsToGame() && flags.TransferOnDisabled() {
			return dto.GamingMachineUnableToPerformTransfer, true
		}
		if rec.TransferType.IsFromGame() && flags.TransferOff {
			return dto.GamingMachineUnableToPerformTransfer, true
		}
	}

	if !provider.FullTransferRequested(rec) {
		if status, failed := d.partial(ctx, rec); failed {
			return status, true
		}
	}

	if !rec.RegistrationKey.IsZero() {
		if status, ok := d.cfg.Registration.Verify(rec.RegistrationKey, true); !ok {
			return status, true
		}
	}

	if blockedByCashout(rec.TransferType) && (d.cfg.Provider.HostCashOutPending() || d.cfg.Provider.CashOutWinPending()) {
		return dto.GamingMachineUnableToPerformTransfer, true
	}

	return 0, false
}

// partial resolves a partial request. Transfers to the game never move less
// than requested, and without partial support a request the machine can
// fully honor runs as a full one.
func (d *FullPartial) partial(ctx context.Context, rec *dto.TransferRecord) (dto.TransferStatus, bool) {
	if rec.TransferType.IsToGame() {
		rec.TransferCode = dto.TransferFullOnly
		return 0, false
	}
	if d.cfg.Provider.PartialTransfersAllowed() {
		return 0, false
	}

	bal, err := d.cfg.Provider.Balances(ctx)
	if err != nil {
		log.Errorf("balances: %v", err)
		return dto.GamingMachineUnableToPerformTransfer, true
	}
	if !bal.Covers(rec.Amounts()) {
		return dto.GamingMachineUnableToPerformPartial, true
	}
	rec.TransferCode = dto.TransferFullOnly
	return 0, false
}

// blockedByCashout reports whether t is refused while a cashout to the host
// is pending. Tickets leave the credit meter alone and stay allowed.
func blockedByCashout(t dto.TransferType) bool {
	return t.CreditsMeter()
}

func (d *FullPartial) reject(rec dto.TransferRecord, status dto.TransferStatus, reason string) dto.TransferRecord {
	rec.Fail(status)
	d.logRejected(rec, reason)
	return rec
}

func (d *FullPartial) logRejected(rec dto.TransferRecord, reason string) {
	log.WithFields(log.Fields{
		"transaction_id": rec.TransactionID,
		"type":           rec.TransferType.String(),
		"status":         rec.TransferStatus.String(),
	}).Info("transfer rejected: " + reason)
}
