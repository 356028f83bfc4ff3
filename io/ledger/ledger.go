// Package ledger is the in-memory credit ledger of the machine.
//
// Game rounds and AFT fund operations share one exclusive lock: a round holds
// it from StartRound to EndRound, and WaitForLock blocks until it is free.
package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/vadiminshakov/sasaft/core/dto"
	"github.com/vadiminshakov/sasaft/core/external"
)

var (
	ErrInsufficientFunds = external.ErrInsufficientFunds
	ErrAlreadyProcessed  = external.ErrAlreadyProcessed
	// ErrTxnClosed is returned when a finished transaction is used again.
	ErrTxnClosed = errors.New("ledger transaction closed")
	// ErrRoundBlocked is returned when the start gate refuses a game round.
	ErrRoundBlocked = errors.New("game round blocked")
	// ErrNoRound is returned by EndRound without a running round.
	ErrNoRound = errors.New("no game round in progress")
)

// Ledger holds the credit meters. It implements external.Bank.
type Ledger struct {
	mu        sync.RWMutex
	balances  dto.Balances
	processed map[string]time.Time

	// exclusive lock shared by game rounds and fund operations
	lock    chan struct{}
	inRound bool

	startGate  func() bool
	roundEnded func()
}

// New creates a ledger holding the given opening balances.
func New(opening dto.Balances) *Ledger {
	return &Ledger{
		balances:  opening,
		processed: make(map[string]time.Time),
		lock:      make(chan struct{}, 1),
	}
}

// SetStartGate installs a check consulted before every game round. A round
// is refused while the gate returns false.
func (l *Ledger) SetStartGate(gate func() bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.startGate = gate
}

// OnRoundEnded registers a callback run after each round releases the lock.
func (l *Ledger) OnRoundEnded(fn func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.roundEnded = fn
}

func (l *Ledger) Balances(ctx context.Context) (dto.Balances, error) {
	if err := ctx.Err(); err != nil {
		return dto.Balances{}, err
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.balances, nil
}

// StartRound takes the ledger lock for a game round.
func (l *Ledger) StartRound(ctx context.Context) error {
	l.mu.RLock()
	gate := l.startGate
	l.mu.RUnlock()

	if gate != nil && !gate() {
		return ErrRoundBlocked
	}

	select {
	case l.lock <- struct{}{}:
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "wait for ledger lock")
	}

	l.mu.Lock()
	l.inRound = true
	l.mu.Unlock()
	return nil
}

// EndRound settles the round's credit meter change and releases the lock.
// A positive delta is a win, a negative one a wager, both cashable.
func (l *Ledger) EndRound(delta int64) error {
	l.mu.Lock()
	if !l.inRound {
		l.mu.Unlock()
		return ErrNoRound
	}

	var err error
	if delta < 0 && uint64(-delta) > l.balances.Cashable {
		err = ErrInsufficientFunds
	} else if delta < 0 {
		l.balances.Cashable -= uint64(-delta)
	} else {
		l.balances.Cashable += uint64(delta)
	}
	l.inRound = false
	cb := l.roundEnded
	l.mu.Unlock()

	<-l.lock
	if cb != nil {
		cb()
	}
	return err
}

func (l *Ledger) RoundInProgress() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.inRound
}

// WaitForLock blocks until no game round or other transaction holds the ledger.
func (l *Ledger) WaitForLock(ctx context.Context) (external.BankTxn, error) {
	select {
	case l.lock <- struct{}{}:
	case <-ctx.Done():
		return nil, errors.Wrap(ctx.Err(), "wait for ledger lock")
	}

	l.mu.RLock()
	staged := l.balances
	l.mu.RUnlock()

	return &Txn{ledger: l, staged: staged}, nil
}

// Processed reports whether txID was committed before.
func (l *Ledger) Processed(txID string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.processed[txID]
	return ok
}

func (l *Ledger) release() {
	<-l.lock
}

// Txn stages ledger changes while the ledger lock is held.
type Txn struct {
	ledger *Ledger
	staged dto.Balances
	txIDs  []string
	closed bool
}

func (t *Txn) Balances() dto.Balances {
	return t.staged
}

// Credit adds amounts to the staged meters. Restricted credits bind the
// meters to poolID.
func (t *Txn) Credit(txID string, amounts dto.Amounts, poolID uint16, expiration uint32) error {
	if err := t.admit(txID); err != nil {
		return err
	}

	t.staged.Amounts = t.staged.Amounts.Add(amounts)
	if amounts.Restricted > 0 {
		t.staged.PoolID = poolID
		if expiration != 0 {
			t.staged.RestrictedExpiration = expiration
		}
	}
	t.txIDs = append(t.txIDs, txID)
	return nil
}

// Debit removes amounts from the staged meters.
func (t *Txn) Debit(txID string, amounts dto.Amounts) error {
	if err := t.admit(txID); err != nil {
		return err
	}
	if !t.staged.Amounts.Covers(amounts) {
		return ErrInsufficientFunds
	}

	t.staged.Cashable -= amounts.Cashable
	t.staged.Restricted -= amounts.Restricted
	t.staged.NonRestricted -= amounts.NonRestricted
	if t.staged.Restricted == 0 {
		t.staged.PoolID = 0
		t.staged.RestrictedExpiration = 0
	}
	t.txIDs = append(t.txIDs, txID)
	return nil
}

// Commit applies the staged meters and releases the ledger lock.
func (t *Txn) Commit() error {
	if t.closed {
		return ErrTxnClosed
	}
	t.closed = true

	l := t.ledger
	l.mu.Lock()
	l.balances = t.staged
	now := time.Now()
	for _, id := range t.txIDs {
		l.processed[id] = now
	}
	l.mu.Unlock()
	l.release()

	log.Debugf("ledger commit %v", t.txIDs)
	return nil
}

// Rollback drops the staged changes and releases the ledger lock. It is a
// no-op after Commit.
func (t *Txn) Rollback() {
	if t.closed {
		return
	}
	t.closed = true
	t.ledger.release()
}

func (t *Txn) admit(txID string) error {
	if t.closed {
		return ErrTxnClosed
	}
	if t.ledger.Processed(txID) {
		return ErrAlreadyProcessed
	}
	for _, id := range t.txIDs {
		if id == txID {
			return ErrAlreadyProcessed
		}
	}
	return nil
}

var _ external.Bank = (*Ledger)(nil)
