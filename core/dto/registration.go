package dto

import "time"

// RegistrationStatus of the machine towards the host.
type RegistrationStatus byte

const (
	RegistrationReady   RegistrationStatus = 0x00
	Registered          RegistrationStatus = 0x01
	RegistrationPending RegistrationStatus = 0x40
	NotRegistered       RegistrationStatus = 0x80
)

func (s RegistrationStatus) String() string {
	switch s {
	case RegistrationReady:
		return "ready"
	case Registered:
		return "registered"
	case RegistrationPending:
		return "pending"
	case NotRegistered:
		return "not registered"
	}
	return "unknown"
}

// RegistrationCode is the host's request kind in long poll 73.
type RegistrationCode byte

const (
	InitializeRegistration         RegistrationCode = 0x00
	RegisterGamingMachine          RegistrationCode = 0x01
	RequestOperatorAcknowledgement RegistrationCode = 0x40
	UnregisterGamingMachine        RegistrationCode = 0x80
	ReadCurrentRegistration        RegistrationCode = 0xFF
)

// RegistrationState is owned by the registration manager.
type RegistrationState struct {
	Status          RegistrationStatus `json:"status"`
	AssetNumber     uint32             `json:"asset_number"`
	RegistrationKey RegistrationKey    `json:"registration_key"`
	PosID           uint32             `json:"pos_id"`
}

func (s RegistrationState) IsRegistered() bool {
	return s.Status == Registered
}

// LockState is owned by the lock handler.
type LockState struct {
	Status     LockStatus         `json:"status"`
	Conditions TransferConditions `json:"conditions"`
	// Timeout is in hundredths of a second.
	Timeout   uint16    `json:"timeout"`
	ExpiresAt time.Time `json:"expires_at"`
}
