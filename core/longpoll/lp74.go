package longpoll

import (
	"context"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/sasaft/core/dto"
	"github.com/vadiminshakov/sasaft/io/wire"
)

const (
	CommandLock = 0x74

	lockStatusSize = 0x23
	maxBufferIndex = 0x7F
)

type Lock interface {
	Request(conditions dto.TransferConditions, timeout uint16) dto.LockStatus
	Cancel()
	State() dto.LockState
}

type Associations interface {
	GetAvailableTransfers() dto.AvailableTransfers
	GetAftStatus() dto.AftStatus
	GetHostCashoutStatus() dto.HostCashoutStatus
}

type Machine interface {
	AssetNumber() uint32
	Balances(ctx context.Context) (dto.Balances, error)
	// TransferLimit is the largest transfer to the game the machine accepts now.
	TransferLimit(ctx context.Context) (uint64, error)
}

// LockRequest is a decoded LP74 request.
type LockRequest struct {
	Code       dto.LockCode
	Conditions dto.TransferConditions
	Timeout    uint16
}

// LockStatusReport is the LP74 response.
type LockStatusReport struct {
	AssetNumber    uint32
	LockStatus     dto.LockStatus
	Available      dto.AvailableTransfers
	HostCashout    dto.HostCashoutStatus
	AftStatus      dto.AftStatus
	MaxBufferIndex uint8
	Balances       dto.Balances
	TransferLimit  uint64
}

// LockAndStatus serves long poll 74.
type LockAndStatus struct {
	lock         Lock
	associations Associations
	machine      Machine
}

func NewLockAndStatus(lock Lock, associations Associations, machine Machine) *LockAndStatus {
	return &LockAndStatus{lock: lock, associations: associations, machine: machine}
}

func (h *LockAndStatus) Commands() []byte {
	return []byte{CommandLock}
}

func (h *LockAndStatus) Handle(ctx context.Context, frame []byte) ([]byte, error) {
	addr, _, body, err := wire.ParseFrame(frame, false)
	if err != nil {
		return nil, err
	}

	req, err := DecodeLockRequest(body)
	if err != nil {
		return nil, err
	}

	var status dto.LockStatus
	switch req.Code {
	case dto.RequestLock:
		status = h.lock.Request(req.Conditions, req.Timeout)
	case dto.CancelLockOrPendingLockRequest:
		h.lock.Cancel()
		status = h.lock.State().Status
	default:
		status = h.lock.State().Status
	}

	bal, err := h.machine.Balances(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "balances")
	}
	limit, err := h.machine.TransferLimit(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "transfer limit")
	}

	report := LockStatusReport{
		AssetNumber:    h.machine.AssetNumber(),
		LockStatus:     status,
		Available:      h.associations.GetAvailableTransfers(),
		HostCashout:    h.associations.GetHostCashoutStatus(),
		AftStatus:      h.associations.GetAftStatus(),
		MaxBufferIndex: maxBufferIndex,
		Balances:       bal,
		TransferLimit:  limit,
	}

	resp, err := EncodeLockStatus(report)
	if err != nil {
		return nil, err
	}
	return wire.Frame(addr, CommandLock, resp, true), nil
}

func DecodeLockRequest(body []byte) (LockRequest, error) {
	r := wire.NewReader(body)
	req := LockRequest{
		Code:       dto.LockCode(r.Byte()),
		Conditions: dto.TransferConditions(r.Byte()),
		Timeout:    uint16(r.BCD(2)),
	}
	if err := r.Err(); err != nil {
		return LockRequest{}, errors.Wrap(err, "decode lock request")
	}
	return req, nil
}

func EncodeLockStatus(s LockStatusReport) ([]byte, error) {
	w := wire.NewWriter(lockStatusSize)
	w.Uint32(s.AssetNumber)
	w.Byte(byte(s.LockStatus))
	w.Byte(byte(s.Available))
	w.Byte(byte(s.HostCashout))
	w.Byte(byte(s.AftStatus))
	w.Byte(s.MaxBufferIndex)
	w.BCD(s.Balances.Cashable, amountSize)
	w.BCD(s.Balances.Restricted, amountSize)
	w.BCD(s.Balances.NonRestricted, amountSize)
	w.BCD(s.TransferLimit, amountSize)
	w.BCD(uint64(s.Balances.RestrictedExpiration), 4)
	w.Uint16(s.Balances.PoolID)

	if err := w.Err(); err != nil {
		return nil, errors.Wrap(err, "encode lock status")
	}
	return w.Body(), nil
}
