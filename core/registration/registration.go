// Package registration owns the machine's AFT registration with the host.
package registration

import (
	"sync"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/vadiminshakov/sasaft/core/dto"
)

// ErrUnknownCode is returned for a registration code outside the LP73 set.
var ErrUnknownCode = errors.New("unknown registration code")

// Persister stores the registration state.
type Persister interface {
	PutRegistration(state dto.RegistrationState) error
}

// Request is a registration command from the host.
type Request struct {
	Code            dto.RegistrationCode
	AssetNumber     uint32
	RegistrationKey dto.RegistrationKey
	PosID           uint32
}

// Manager is the only writer of the registration state.
type Manager struct {
	mu        sync.RWMutex
	state     dto.RegistrationState
	persister Persister
}

// New creates an unregistered manager for the machine's asset number.
func New(assetNumber uint32, persister Persister) *Manager {
	return &Manager{
		state: dto.RegistrationState{
			Status:      dto.NotRegistered,
			AssetNumber: assetNumber,
		},
		persister: persister,
	}
}

// Restore loads a persisted state. The configured asset number wins over the
// stored one; a changed asset number drops the registration.
func (m *Manager) Restore(state dto.RegistrationState) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if state.AssetNumber != m.state.AssetNumber {
		log.Warnf("stored registration is for asset %d, machine is %d: registration dropped",
			state.AssetNumber, m.state.AssetNumber)
		return
	}
	m.state = state
}

func (m *Manager) State() dto.RegistrationState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

func (m *Manager) AssetNumber() uint32 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.AssetNumber
}

func (m *Manager) IsRegistered() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.IsRegistered()
}

// Apply executes a registration command and returns the resulting state.
// Commands for another asset number leave the state unchanged.
func (m *Manager) Apply(req Request) (dto.RegistrationState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if req.Code == dto.ReadCurrentRegistration {
		return m.state, nil
	}

	if req.AssetNumber != m.state.AssetNumber {
		log.Warnf("registration code 0x%02X for asset %d ignored, machine is %d",
			byte(req.Code), req.AssetNumber, m.state.AssetNumber)
		return m.state, nil
	}

	next := m.state
	switch req.Code {
	case dto.InitializeRegistration:
		next.Status = dto.RegistrationReady
		next.RegistrationKey = req.RegistrationKey
		next.PosID = req.PosID
	case dto.RegisterGamingMachine:
		next.Status = dto.Registered
		next.RegistrationKey = req.RegistrationKey
		next.PosID = req.PosID
	case dto.RequestOperatorAcknowledgement:
		next.Status = dto.RegistrationPending
		next.RegistrationKey = req.RegistrationKey
		next.PosID = req.PosID
	case dto.UnregisterGamingMachine:
		next.Status = dto.NotRegistered
		next.RegistrationKey = dto.RegistrationKey{}
		next.PosID = 0
	default:
		return m.state, errors.Wrapf(ErrUnknownCode, "code 0x%02X", byte(req.Code))
	}

	return m.commit(next)
}

// OperatorAcknowledge completes a registration waiting for the operator.
func (m *Manager) OperatorAcknowledge() (dto.RegistrationState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.Status != dto.RegistrationPending {
		return m.state, nil
	}
	next := m.state
	next.Status = dto.Registered
	return m.commit(next)
}

// Verify checks the host's registration key for a transfer. A zero key is
// accepted unless registration is required.
func (m *Manager) Verify(key dto.RegistrationKey, required bool) (dto.TransferStatus, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if key.IsZero() && !required {
		return 0, true
	}
	if !m.state.IsRegistered() {
		return dto.GamingMachineNotRegistered, false
	}
	if key != m.state.RegistrationKey {
		return dto.RegistrationKeyDoesNotMatch, false
	}
	return 0, true
}

// HasPosID reports whether the registration carries a POS id.
func (m *Manager) HasPosID() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.IsRegistered() && m.state.PosID != 0
}

// must hold mu
func (m *Manager) commit(next dto.RegistrationState) (dto.RegistrationState, error) {
	prev := m.state
	m.state = next

	log.WithFields(log.Fields{
		"asset":  next.AssetNumber,
		"status": next.Status.String(),
		"pos_id": next.PosID,
	}).Infof("registration changed from %s", prev.Status)

	if m.persister != nil {
		if err := m.persister.PutRegistration(next); err != nil {
			return next, errors.Wrap(err, "persist registration")
		}
	}
	return next, nil
}
