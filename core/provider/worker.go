package provider

import (
	"context"
	stdErrors "errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/vadiminshakov/sasaft/core/dto"
	"github.com/vadiminshakov/sasaft/core/external"
)

// Kind selects the ledger operation of a fund operation.
type Kind int

const (
	// KindOn credits the machine, or prints a ticket for ticket types.
	KindOn Kind = iota
	// KindOff debits the machine.
	KindOff
	// KindBonus credits a bonus award.
	KindBonus
)

func (k Kind) String() string {
	switch k {
	case KindOn:
		return "aft-on"
	case KindOff:
		return "aft-off"
	case KindBonus:
		return "bonus"
	}
	return "unknown"
}

// FundOperation is one accepted transfer waiting for, or undergoing, fund movement.
type FundOperation struct {
	ID     uuid.UUID
	Kind   Kind
	Record dto.TransferRecord

	once   sync.Once
	done   chan struct{}
	result dto.TransferRecord
}

func newFundOperation(kind Kind, rec dto.TransferRecord) *FundOperation {
	return &FundOperation{
		ID:     uuid.New(),
		Kind:   kind,
		Record: rec.Clone(),
		done:   make(chan struct{}),
	}
}

// Done is closed once the operation reached its terminal status.
func (op *FundOperation) Done() <-chan struct{} {
	return op.done
}

// Result returns the finalized record. Valid after Done is closed.
func (op *FundOperation) Result() dto.TransferRecord {
	<-op.done
	return op.result.Clone()
}

// Wait blocks until the operation finalizes or ctx ends.
func (op *FundOperation) Wait(ctx context.Context) (dto.TransferRecord, error) {
	select {
	case <-op.done:
		return op.result.Clone(), nil
	case <-ctx.Done():
		return dto.TransferRecord{}, ctx.Err()
	}
}

// DoAftOn queues a transfer onto the machine (or to a ticket).
func (p *Provider) DoAftOn(rec dto.TransferRecord) *FundOperation {
	return p.Submit(KindOn, rec)
}

// DoAftOff queues a transfer off the machine.
func (p *Provider) DoAftOff(rec dto.TransferRecord) *FundOperation {
	return p.Submit(KindOff, rec)
}

// DoBonus queues a bonus award.
func (p *Provider) DoBonus(rec dto.TransferRecord) *FundOperation {
	return p.Submit(KindBonus, rec)
}

// Submit makes rec the current transfer in pending state and queues its fund
// operation. It never waits for the ledger.
func (p *Provider) Submit(kind Kind, rec dto.TransferRecord) *FundOperation {
	rec.TransferStatus = dto.TransferPending
	op := newFundOperation(kind, rec)

	p.mu.Lock()
	current := op.Record.Clone()
	p.current = &current
	p.acknowledged = false
	p.interrogatePending = false
	p.seen.add(rec.TransactionID)
	stopped := p.stopped
	p.mu.Unlock()

	log.WithFields(log.Fields{
		"job":            op.ID.String(),
		"kind":           kind.String(),
		"transaction_id": rec.TransactionID,
		"total":          rec.Total(),
	}).Debug("fund operation queued")

	if stopped == nil {
		log.WithField("job", op.ID.String()).Warn("fund operation submitted before the worker started")
		p.reject(op)
		return op
	}

	select {
	case <-stopped:
		p.reject(op)
	default:
		select {
		case p.jobs <- op:
		case <-stopped:
			p.reject(op)
		}
	}

	return op
}

// reject finalizes op without touching the ledger when no worker runs.
func (p *Provider) reject(op *FundOperation) {
	failed := op.Record.Clone()
	failed.Fail(dto.GamingMachineUnableToPerformTransfer)
	p.finalize(context.Background(), op, failed)
}

// Start runs the completion worker until ctx ends or Close is called.
// Operations still queued at shutdown are finalized before the worker exits.
func (p *Provider) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	stopped := make(chan struct{})

	p.mu.Lock()
	p.stop = cancel
	p.stopped = stopped
	p.mu.Unlock()

	go p.run(ctx, stopped)
}

// Close stops the completion worker and waits for it to drain.
func (p *Provider) Close() {
	p.mu.Lock()
	stop, stopped := p.stop, p.stopped
	p.mu.Unlock()

	if stop == nil {
		return
	}
	stop()
	<-stopped
}

func (p *Provider) run(ctx context.Context, stopped chan struct{}) {
	defer close(stopped)

	for {
		select {
		case op := <-p.jobs:
			p.execute(ctx, op)
		case <-ctx.Done():
			p.drain(ctx)
			return
		}
	}
}

func (p *Provider) drain(ctx context.Context) {
	for {
		select {
		case op := <-p.jobs:
			p.execute(ctx, op)
		default:
			return
		}
	}
}

// execute moves the funds of op. Whatever happens, op is finalized once.
func (p *Provider) execute(ctx context.Context, op *FundOperation) {
	rec := op.Record.Clone()

	defer func() {
		if r := recover(); r != nil {
			log.WithField("job", op.ID.String()).Errorf("fund operation panicked: %v", r)
			rec = op.Record.Clone()
			rec.Fail(dto.UnexpectedError)
		}
		p.finalize(ctx, op, rec)
	}()

	p.apply(ctx, op.Kind, &rec)
}

func (p *Provider) apply(ctx context.Context, kind Kind, rec *dto.TransferRecord) {
	txn, err := p.bank.WaitForLock(ctx)
	if err != nil {
		log.Errorf("transaction %s: ledger lock: %v", rec.TransactionID, err)
		rec.Fail(dto.GamingMachineUnableToPerformTransfer)
		return
	}

	committed := false
	defer func() {
		if !committed {
			txn.Rollback()
		}
	}()

	requested := rec.Amounts()
	features := p.features.Features()
	bal := txn.Balances()

	if requested.Total() > limitFor(features, bal, rec) {
		rec.Fail(dto.TransferAmountExceedsGameLimit)
		return
	}

	var moved dto.Amounts
	switch kind {
	case KindOn, KindBonus:
		if rec.RestrictedAmount > 0 && bal.Restricted > 0 && bal.PoolID != rec.PoolID {
			rec.Fail(dto.UnableToAcceptTransferDueToExistingRestrictedAmounts)
			return
		}
		moved = requested
		if rec.TransferType.IsTicket() {
			if status, ok := p.printTicket(ctx, txn, rec); !ok {
				rec.Fail(status)
				return
			}
		} else if err := txn.Credit(rec.TransactionID, moved, rec.PoolID, p.expiration(rec)); err != nil {
			rec.Fail(ledgerStatus(err))
			return
		}
	case KindOff:
		available := bal.Amounts
		if rec.TransferType == dto.GameToHostInHouseWin {
			available = dto.Amounts{Cashable: min(bal.Cashable, p.cashout.PendingWinAmount())}
		}
		moved = requested
		if !available.Covers(requested) {
			if !rec.PartialAllowed() {
				rec.Fail(dto.NotAValidTransferFunction)
				return
			}
			moved = requested.Min(available)
		}
		if moved.Total() == 0 {
			if rec.TransferType == dto.GameToHostInHouseWin {
				rec.Fail(dto.NoWonCreditsAvailableForCashOut)
			} else {
				rec.Fail(dto.NotAValidTransferFunction)
			}
			return
		}
		if err := txn.Debit(rec.TransactionID, moved); err != nil {
			rec.Fail(ledgerStatus(err))
			return
		}
	default:
		panic(fmt.Sprintf("unknown fund operation kind %d", kind))
	}

	if err := txn.Commit(); err != nil {
		log.Errorf("transaction %s: ledger commit: %v", rec.TransactionID, err)
		rec.Fail(dto.UnexpectedError)
		return
	}
	committed = true

	rec.SetAmounts(moved)
	rec.TransferStatus = dto.FullTransferSuccessful
	if moved != requested {
		rec.TransferStatus = dto.PartialTransferSuccessful
	}
	rec.TransactionTime = p.now()
}

// printTicket prints a ticket for rec inside txn. The ledger only records the
// transaction id, so a retransmitted ticket transfer is refused.
func (p *Provider) printTicket(ctx context.Context, txn external.BankTxn, rec *dto.TransferRecord) (dto.TransferStatus, bool) {
	if p.printer == nil || !p.printer.CanPrint() {
		return dto.TransferToTicketDeviceNotAvailable, false
	}
	if err := txn.Credit(rec.TransactionID, dto.Amounts{}, 0, 0); err != nil {
		return ledgerStatus(err), false
	}
	if err := p.printer.PrintTicket(ctx, rec.Total(), rec.Expiration, rec.TransactionID); err != nil {
		log.Errorf("transaction %s: print ticket: %v", rec.TransactionID, err)
		return dto.TransferToTicketDeviceNotAvailable, false
	}
	return 0, true
}

func (p *Provider) expiration(rec *dto.TransferRecord) uint32 {
	if rec.RestrictedAmount == 0 || rec.Expiration != 0 || p.ticketing == nil {
		return rec.Expiration
	}
	return p.ticketing.RestrictedExpiration(rec.PoolID)
}

func ledgerStatus(err error) dto.TransferStatus {
	switch {
	case stdErrors.Is(err, external.ErrAlreadyProcessed):
		return dto.TransactionIdNotUnique
	case stdErrors.Is(err, external.ErrInsufficientFunds):
		return dto.NotAValidTransferFunction
	}
	log.Errorf("ledger: %v", err)
	return dto.UnexpectedError
}

// finalize writes the terminal status of op, prints the receipt, stores the
// history entry and makes rec the current transfer. Runs once per operation.
func (p *Provider) finalize(ctx context.Context, op *FundOperation, rec dto.TransferRecord) {
	op.once.Do(func() {
		if err := transition(dto.TransferPending, rec.TransferStatus); err != nil {
			log.WithField("job", op.ID.String()).Errorf("finalize: %v", err)
			rec.Fail(dto.UnexpectedError)
		}

		if rec.TransferStatus.IsSuccess() {
			p.settle(ctx, op.Kind, &rec)
		} else {
			rec.ReceiptStatus = dto.NoReceiptRequested
		}

		p.mu.Lock()
		rec.TransactionIndex = p.history.AddEntry(rec)
		current := rec.Clone()
		p.current = &current
		p.interrogatePending = false
		listeners := append([]func(dto.TransferRecord){}, p.listeners...)
		p.mu.Unlock()

		op.result = rec.Clone()
		close(op.done)

		log.WithFields(log.Fields{
			"job":            op.ID.String(),
			"transaction_id": rec.TransactionID,
			"index":          rec.TransactionIndex,
			"type":           rec.TransferType.String(),
			"status":         rec.TransferStatus.String(),
			"cashable":       rec.CashableAmount,
			"restricted":     rec.RestrictedAmount,
			"non_restricted": rec.NonRestrictedAmount,
		}).Info("transfer finalized")

		for _, fn := range listeners {
			fn(rec.Clone())
		}
	})
}

// settle updates cumulative meters, host cashout state and the receipt of a
// successful transfer.
func (p *Provider) settle(ctx context.Context, kind Kind, rec *dto.TransferRecord) {
	p.mu.Lock()
	if kind == KindOff {
		p.cumulativeOff = p.cumulativeOff.Add(rec.Amounts())
		rec.CumulativeCashable = p.cumulativeOff.Cashable
		rec.CumulativeRestricted = p.cumulativeOff.Restricted
		rec.CumulativeNonRestricted = p.cumulativeOff.NonRestricted
	} else {
		p.cumulativeOn = p.cumulativeOn.Add(rec.Amounts())
		rec.CumulativeCashable = p.cumulativeOn.Cashable
		rec.CumulativeRestricted = p.cumulativeOn.Restricted
		rec.CumulativeNonRestricted = p.cumulativeOn.NonRestricted
	}
	p.mu.Unlock()

	if kind == KindOff {
		p.cashout.ClearPending()
	}

	if !rec.ReceiptRequested() {
		rec.ReceiptStatus = dto.NoReceiptRequested
		return
	}
	if p.receipts == nil {
		rec.ReceiptStatus = dto.ReceiptPending
		return
	}
	status, err := p.receipts.Print(ctx, *rec)
	if err != nil {
		log.Errorf("transaction %s: receipt: %v", rec.TransactionID, err)
	}
	rec.ReceiptStatus = status
}
