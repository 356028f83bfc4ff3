// Package provider owns the AFT transfer currently negotiated with the host
// and executes accepted transfers against the ledger.
//
// The dispatcher is the only caller that changes the current transfer. Fund
// movement runs on a completion worker: Submit returns as soon as the
// operation is queued, and the worker writes the terminal status and the
// history entry exactly once per operation.
package provider

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/sasaft/core/dto"
	"github.com/vadiminshakov/sasaft/core/external"
	"github.com/vadiminshakov/sasaft/core/guard"
)

const (
	seenCapacity = 1024
	jobQueueSize = 8

	maxTransactionIDLength = 20
)

// History is the transaction history the provider finalizes transfers into.
type History interface {
	AddEntry(rec dto.TransferRecord) uint8
	Contains(txID string) bool
}

// ReceiptPrinter prints the transaction receipt of a finished transfer.
type ReceiptPrinter interface {
	Print(ctx context.Context, rec dto.TransferRecord) (dto.ReceiptStatus, error)
}

// Config holds the provider's collaborators. Printer, Ticketing and Receipts
// are optional.
type Config struct {
	Bank      external.Bank
	History   History
	Features  external.FeatureSource
	Cashout   external.HostCashout
	Printer   external.Printer
	Ticketing external.Ticketing
	Receipts  ReceiptPrinter
}

// Provider is the single source of truth for the current transfer.
type Provider struct {
	mu                 sync.Mutex
	current            *dto.TransferRecord
	acknowledged       bool
	interrogatePending bool
	seen               *seenIDs
	// cumulative amounts per direction, to game and from game
	cumulativeOn  dto.Amounts
	cumulativeOff dto.Amounts
	listeners     []func(dto.TransferRecord)

	bank      external.Bank
	history   History
	features  external.FeatureSource
	cashout   external.HostCashout
	printer   external.Printer
	ticketing external.Ticketing
	receipts  ReceiptPrinter

	jobs    chan *FundOperation
	stop    context.CancelFunc
	stopped chan struct{}
	now     func() time.Time
}

// New creates a provider. The completion worker starts with Start.
func New(cfg Config) (*Provider, error) {
	switch {
	case cfg.Bank == nil:
		return nil, errors.New("bank is nil")
	case cfg.History == nil:
		return nil, errors.New("history is nil")
	case cfg.Features == nil:
		return nil, errors.New("feature source is nil")
	case cfg.Cashout == nil:
		return nil, errors.New("host cashout is nil")
	}

	return &Provider{
		seen:      newSeenIDs(seenCapacity),
		bank:      cfg.Bank,
		history:   cfg.History,
		features:  cfg.Features,
		cashout:   cfg.Cashout,
		printer:   cfg.Printer,
		ticketing: cfg.Ticketing,
		receipts:  cfg.Receipts,
		jobs:      make(chan *FundOperation, jobQueueSize),
		now:       time.Now,
	}, nil
}

// OnFinalize registers fn to run after every transfer reaches its terminal status.
func (p *Provider) OnFinalize(fn func(dto.TransferRecord)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners = append(p.listeners, fn)
}

// CurrentTransfer returns the transfer last negotiated with the host.
func (p *Provider) CurrentTransfer() (dto.TransferRecord, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current == nil {
		return dto.TransferRecord{}, false
	}
	return p.current.Clone(), true
}

// TransferAmount is the total of the current transfer, zero when there is none.
func (p *Provider) TransferAmount() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current == nil {
		return 0
	}
	return p.current.Total()
}

// IsTransferInProgress reports whether a transfer has not yet been
// acknowledged by the host, pending or finished.
func (p *Provider) IsTransferInProgress() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current != nil && !p.acknowledged
}

func (p *Provider) IsTransferAcknowledgedByHost() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current == nil || p.acknowledged
}

// InterrogatePending reports whether the host interrogated a transfer that
// was still pending.
func (p *Provider) InterrogatePending() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.interrogatePending
}

// Interrogated records a host interrogation of the current transfer. A
// finished transfer becomes acknowledged; a pending one arms the interrogate
// pending flag, cleared when the transfer finalizes.
func (p *Provider) Interrogated() (dto.TransferRecord, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current == nil {
		return dto.TransferRecord{}, false
	}
	if p.current.TransferStatus.IsPending() {
		p.interrogatePending = true
	} else {
		p.acknowledged = true
	}
	return p.current.Clone(), true
}

// AcknowledgeTransfer marks the current transfer as seen by the host when it
// is finished and carries txID.
func (p *Provider) AcknowledgeTransfer(txID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current == nil || p.current.TransactionID != txID || !p.current.TransferStatus.IsTerminal() {
		return false
	}
	p.acknowledged = true
	return true
}

// TransactionIDValid reports whether id is 1 to 20 printable ASCII characters.
func TransactionIDValid(id string) bool {
	if len(id) == 0 || len(id) > maxTransactionIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x20 || id[i] > 0x7E {
			return false
		}
	}
	return true
}

// TransactionIDUnique reports whether id was never used in this session or
// in the retained history.
func (p *Provider) TransactionIDUnique(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current != nil && p.current.TransactionID == id {
		return false
	}
	if p.seen.contains(id) {
		return false
	}
	return !p.history.Contains(id)
}

// Features returns the current AFT feature configuration.
func (p *Provider) Features() dto.Features {
	return p.features.Features()
}

// PartialTransfersAllowed reports whether partial transfers to the host are configured.
func (p *Provider) PartialTransfersAllowed() bool {
	return p.features.Features().PartialToHost
}

// FullTransferRequested reports whether the host asked for the full amount only.
func FullTransferRequested(rec *dto.TransferRecord) bool {
	return rec.TransferCode == dto.TransferFullOnly
}

// CheckForErrorConditions runs the guards over rec in order. On the first
// failure rec holds the terminal status and zero amounts.
func CheckForErrorConditions(rec *dto.TransferRecord, chain *guard.Chain) bool {
	return chain.Run(rec)
}

// Balances reads the ledger now.
func (p *Provider) Balances(ctx context.Context) (dto.Balances, error) {
	return p.bank.Balances(ctx)
}

// TransferLimitAmount computes the limit for rec against the current ledger.
func (p *Provider) TransferLimitAmount(ctx context.Context, rec *dto.TransferRecord) (uint64, error) {
	bal, err := p.bank.Balances(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "read balances")
	}
	return limitFor(p.features.Features(), bal, rec), nil
}

// HostCashOutPending reports whether a host cashout is waiting.
func (p *Provider) HostCashOutPending() bool {
	return p.cashout.HostCashOutPending()
}

func (p *Provider) CashOutWinPending() bool {
	return p.cashout.CashOutWinPending()
}

func (p *Provider) PendingWinAmount() uint64 {
	return p.cashout.PendingWinAmount()
}

// Cumulative returns the amounts transferred so far in the direction of t.
func (p *Provider) Cumulative(t dto.TransferType) dto.Amounts {
	p.mu.Lock()
	defer p.mu.Unlock()

	if t.IsFromGame() {
		return p.cumulativeOff
	}
	return p.cumulativeOn
}

// RestoreCumulative sets the cumulative meters, e.g. from the last history entry.
func (p *Provider) RestoreCumulative(on, off dto.Amounts) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cumulativeOn = on
	p.cumulativeOff = off
}
