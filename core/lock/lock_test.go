package lock

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vadiminshakov/sasaft/core/dto"
)

type fakeConditions struct {
	available dto.TransferConditions
}

func (f *fakeConditions) TransferConditionsMet(required dto.TransferConditions) bool {
	return f.available&required == required
}

type fakeRound struct {
	active bool
}

func (f *fakeRound) RoundInProgress() bool {
	return f.active
}

type memPersister struct {
	mu    sync.Mutex
	saved []dto.LockState
}

func (m *memPersister) PutLockOptions(state dto.LockState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, state)
	return nil
}

func (m *memPersister) last() dto.LockState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saved[len(m.saved)-1]
}

func TestHandler_GrantAndCancel(t *testing.T) {
	p := &memPersister{}
	h := New(&fakeConditions{available: dto.ConditionToGameOk | dto.ConditionFromGameOk}, &fakeRound{}, p, 0)

	require.Equal(t, dto.GameLocked, h.Request(dto.ConditionToGameOk, 1000))
	require.True(t, h.IsLocked())
	require.Equal(t, dto.GameLocked, p.last().Status)
	require.Equal(t, dto.ConditionToGameOk, h.State().Conditions)

	h.Cancel()
	require.False(t, h.IsLocked())
	require.Equal(t, dto.GameNotLocked, p.last().Status)

	// idempotent
	h.Cancel()
	require.Equal(t, dto.GameNotLocked, h.State().Status)
}

func TestHandler_BonusConditionDeniedWhenBonusDisabled(t *testing.T) {
	h := New(&fakeConditions{available: dto.ConditionToGameOk}, &fakeRound{}, nil, 0)

	require.Equal(t, dto.GameNotLocked, h.Request(dto.ConditionBonusToGameOk, 1000))
	require.False(t, h.IsLocked())
}

func TestHandler_LastRequestWins(t *testing.T) {
	cond := &fakeConditions{available: dto.ConditionToGameOk}
	h := New(cond, &fakeRound{}, nil, 0)

	require.Equal(t, dto.GameLocked, h.Request(dto.ConditionToGameOk, 1000))
	require.Equal(t, dto.GameNotLocked, h.Request(dto.ConditionFromGameOk, 1000))
	require.False(t, h.IsLocked())

	require.Equal(t, dto.GameLocked, h.Request(dto.ConditionToGameOk, 1000))
	require.Equal(t, dto.GameLocked, h.Request(dto.ConditionToGameOk, 2000))
	require.Equal(t, uint16(2000), h.State().Timeout)
}

func TestHandler_ZeroTimeoutDenied(t *testing.T) {
	h := New(&fakeConditions{available: dto.ConditionToGameOk}, &fakeRound{}, nil, 0)
	require.Equal(t, dto.GameNotLocked, h.Request(dto.ConditionToGameOk, 0))
}

func TestHandler_PendingUntilRoundEnds(t *testing.T) {
	round := &fakeRound{active: true}
	h := New(&fakeConditions{available: dto.ConditionToGameOk}, round, nil, 0)

	require.Equal(t, dto.GameLockPending, h.Request(dto.ConditionToGameOk, 1000))
	require.False(t, h.IsLocked())

	round.active = false
	h.RoundEnded()
	require.True(t, h.IsLocked())
}

func TestHandler_PendingDroppedWhenConditionsLost(t *testing.T) {
	cond := &fakeConditions{available: dto.ConditionToGameOk}
	h := New(cond, &fakeRound{active: true}, nil, 0)

	require.Equal(t, dto.GameLockPending, h.Request(dto.ConditionToGameOk, 1000))
	cond.available = 0
	h.RoundEnded()
	require.Equal(t, dto.GameNotLocked, h.State().Status)
}

func TestHandler_Expiry(t *testing.T) {
	h := New(&fakeConditions{available: dto.ConditionToGameOk}, &fakeRound{}, nil, 0)

	require.Equal(t, dto.GameLocked, h.Request(dto.ConditionToGameOk, 2))
	require.Eventually(t, func() bool { return !h.IsLocked() }, time.Second, 5*time.Millisecond)
}

func TestHandler_TimeoutFloor(t *testing.T) {
	h := New(&fakeConditions{available: dto.ConditionToGameOk}, &fakeRound{}, nil, 500)

	require.Equal(t, dto.GameLocked, h.Request(dto.ConditionToGameOk, 1))
	require.Equal(t, uint16(500), h.State().Timeout)
	h.Cancel()
}

func TestHandler_Restore(t *testing.T) {
	h := New(&fakeConditions{available: dto.ConditionToGameOk}, &fakeRound{}, nil, 0)
	h.Restore(dto.LockState{Status: dto.GameLocked, Conditions: dto.ConditionToGameOk, Timeout: 100, ExpiresAt: time.Now().Add(-time.Second)})
	require.False(t, h.IsLocked())

	h.Restore(dto.LockState{Status: dto.GameLocked, Conditions: dto.ConditionToGameOk, Timeout: 100, ExpiresAt: time.Now().Add(time.Minute)})
	require.True(t, h.IsLocked())
	h.Cancel()
}
