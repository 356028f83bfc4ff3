// Package lock implements the host game lock negotiated through long poll 74.
//
// A lock keeps the machine from starting game rounds so a transfer can run
// against quiescent credit meters. It is granted only while the requested
// transfer conditions hold, waits for a running round to end, and expires on
// its own timer.
package lock

import (
	"context"
	stdErrors "errors"
	"sync"
	"time"

	"github.com/looplab/fsm"
	log "github.com/sirupsen/logrus"
	"github.com/vadiminshakov/sasaft/core/dto"
	"github.com/vadiminshakov/sasaft/core/external"
)

const (
	stateNotLocked   = "not_locked"
	stateLockPending = "lock_pending"
	stateLocked      = "locked"

	eventRequestPending = "request_pending"
	eventGrant          = "grant"
	eventCancel         = "cancel"
	eventExpire         = "expire"
)

// Conditions evaluates transfer conditions against current machine state.
type Conditions interface {
	TransferConditionsMet(required dto.TransferConditions) bool
}

// Persister stores the lock options.
type Persister interface {
	PutLockOptions(state dto.LockState) error
}

// Handler owns the lock state. It is safe for concurrent use.
type Handler struct {
	mu sync.Mutex

	machine    *fsm.FSM
	conditions dto.TransferConditions
	timeout    uint16
	expiresAt  time.Time
	timer      *time.Timer
	// bumped on every change so a stale timer cannot release a newer lock
	generation uint64

	cond       Conditions
	round      external.RoundState
	persister  Persister
	minTimeout uint16
	now        func() time.Time
}

// New creates an unlocked handler. minTimeout is a floor for host supplied
// timeouts in hundredths of a second; 0 disables it.
func New(cond Conditions, round external.RoundState, persister Persister, minTimeout uint16) *Handler {
	return &Handler{
		machine: fsm.NewFSM(
			stateNotLocked,
			fsm.Events{
				{Name: eventRequestPending, Src: []string{stateNotLocked, stateLockPending, stateLocked}, Dst: stateLockPending},
				{Name: eventGrant, Src: []string{stateNotLocked, stateLockPending, stateLocked}, Dst: stateLocked},
				{Name: eventCancel, Src: []string{stateNotLocked, stateLockPending, stateLocked}, Dst: stateNotLocked},
				{Name: eventExpire, Src: []string{stateLockPending, stateLocked}, Dst: stateNotLocked},
			},
			fsm.Callbacks{},
		),
		cond:       cond,
		round:      round,
		persister:  persister,
		minTimeout: minTimeout,
		now:        time.Now,
	}
}

// Request asks for a lock under conditions for timeout hundredths of a
// second. A new request replaces any existing lock.
func (h *Handler) Request(conditions dto.TransferConditions, timeout uint16) dto.LockStatus {
	h.mu.Lock()
	defer h.mu.Unlock()

	if timeout == 0 || !h.cond.TransferConditionsMet(conditions) {
		log.Infof("lock request for conditions 0x%02X denied", byte(conditions))
		h.release(eventCancel)
		return dto.GameNotLocked
	}

	if timeout < h.minTimeout {
		timeout = h.minTimeout
	}

	event := eventGrant
	if h.round != nil && h.round.RoundInProgress() {
		event = eventRequestPending
	}
	if err := h.fire(event); err != nil {
		log.Errorf("lock request: %v", err)
		return h.status()
	}

	h.conditions = conditions
	h.timeout = timeout
	h.arm(time.Duration(timeout) * 10 * time.Millisecond)
	h.persist()

	log.Infof("lock %s for conditions 0x%02X, timeout %d0ms", h.machine.Current(), byte(conditions), timeout)
	return h.status()
}

// Cancel releases the lock or a pending lock request. Cancelling an unlocked
// machine is a no-op.
func (h *Handler) Cancel() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.release(eventCancel)
}

// RoundEnded promotes a pending lock once the game round finishes.
func (h *Handler) RoundEnded() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.machine.Current() != stateLockPending {
		return
	}
	if !h.cond.TransferConditionsMet(h.conditions) {
		h.release(eventCancel)
		return
	}
	if err := h.fire(eventGrant); err != nil {
		log.Errorf("grant pending lock: %v", err)
		return
	}
	h.persist()
	log.Infof("pending lock granted")
}

// Restore re-arms a persisted lock that has not yet expired.
func (h *Handler) Restore(state dto.LockState) {
	h.mu.Lock()
	defer h.mu.Unlock()

	remaining := state.ExpiresAt.Sub(h.now())
	if state.Status == dto.GameNotLocked || remaining <= 0 {
		return
	}

	event := eventGrant
	if state.Status == dto.GameLockPending {
		event = eventRequestPending
	}
	if err := h.fire(event); err != nil {
		log.Errorf("restore lock: %v", err)
		return
	}
	h.conditions = state.Conditions
	h.timeout = state.Timeout
	h.arm(remaining)
}

func (h *Handler) IsLocked() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.machine.Current() == stateLocked
}

func (h *Handler) State() dto.LockState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.snapshot()
}

// must hold mu
func (h *Handler) status() dto.LockStatus {
	switch h.machine.Current() {
	case stateLocked:
		return dto.GameLocked
	case stateLockPending:
		return dto.GameLockPending
	}
	return dto.GameNotLocked
}

// must hold mu
func (h *Handler) snapshot() dto.LockState {
	return dto.LockState{
		Status:     h.status(),
		Conditions: h.conditions,
		Timeout:    h.timeout,
		ExpiresAt:  h.expiresAt,
	}
}

// must hold mu
func (h *Handler) arm(d time.Duration) {
	if h.timer != nil {
		h.timer.Stop()
	}
	h.generation++
	gen := h.generation
	h.expiresAt = h.now().Add(d)
	h.timer = time.AfterFunc(d, func() { h.expire(gen) })
}

func (h *Handler) expire(gen uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if gen != h.generation {
		return
	}
	log.Infof("lock expired")
	h.release(eventExpire)
}

// must hold mu
func (h *Handler) release(event string) {
	if h.machine.Current() == stateNotLocked {
		return
	}
	if h.timer != nil {
		h.timer.Stop()
		h.timer = nil
	}
	h.generation++
	if err := h.fire(event); err != nil {
		log.Errorf("release lock: %v", err)
		return
	}
	h.conditions = 0
	h.timeout = 0
	h.expiresAt = time.Time{}
	h.persist()
}

// must hold mu
func (h *Handler) fire(event string) error {
	err := h.machine.Event(context.Background(), event)
	var noTransition fsm.NoTransitionError
	if err != nil && !stdErrors.As(err, &noTransition) {
		return err
	}
	return nil
}

// must hold mu
func (h *Handler) persist() {
	if h.persister == nil {
		return
	}
	if err := h.persister.PutLockOptions(h.snapshot()); err != nil {
		log.Errorf("failed to persist lock options: %v", err)
	}
}
