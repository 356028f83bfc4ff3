package longpoll

import (
	"context"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/sasaft/core/dto"
	"github.com/vadiminshakov/sasaft/io/wire"
)

const (
	CommandTransferFunds = 0x72

	amountSize        = 5
	meterSize         = 5
	maxTransactionID  = 20
	interrogationSize = 2
)

// Dispatcher processes a decoded transfer request.
type Dispatcher interface {
	Process(ctx context.Context, rec dto.TransferRecord) dto.TransferRecord
}

// TransferFunds serves long poll 72.
type TransferFunds struct {
	dispatcher Dispatcher
}

func NewTransferFunds(d Dispatcher) *TransferFunds {
	return &TransferFunds{dispatcher: d}
}

func (h *TransferFunds) Commands() []byte {
	return []byte{CommandTransferFunds}
}

func (h *TransferFunds) Handle(ctx context.Context, frame []byte) ([]byte, error) {
	addr, _, body, err := wire.ParseFrame(frame, true)
	if err != nil {
		return nil, err
	}

	req, err := DecodeTransferRequest(body)
	if err != nil {
		return nil, err
	}

	resp, err := EncodeTransferResponse(h.dispatcher.Process(ctx, req))
	if err != nil {
		return nil, err
	}
	return wire.Frame(addr, CommandTransferFunds, resp, true), nil
}

// DecodeTransferRequest parses an LP72 body. A two byte body is the short
// interrogation form carrying only the transfer code and index.
func DecodeTransferRequest(body []byte) (dto.TransferRecord, error) {
	r := wire.NewReader(body)
	rec := dto.TransferRecord{ReceiptStatus: dto.NoReceiptRequested}

	rec.TransferCode = dto.TransferCode(r.Byte())
	rec.TransactionIndex = r.Byte()
	if len(body) == interrogationSize {
		return rec, r.Err()
	}

	rec.TransferType = dto.TransferType(r.Byte())
	rec.CashableAmount = r.BCD(amountSize)
	rec.RestrictedAmount = r.BCD(amountSize)
	rec.NonRestrictedAmount = r.BCD(amountSize)
	rec.TransferFlags = dto.TransferFlags(r.Byte())
	rec.AssetNumber = r.Uint32()
	copy(rec.RegistrationKey[:], r.Bytes(len(rec.RegistrationKey)))
	rec.TransactionID = string(r.Bytes(int(r.Byte())))
	rec.Expiration = uint32(r.BCD(4))
	rec.PoolID = r.Uint16()
	if n := int(r.Byte()); n > 0 {
		rec.ReceiptData = r.Bytes(n)
	}
	rec.LockTimeout = uint16(r.BCD(2))

	if err := r.Err(); err != nil {
		return dto.TransferRecord{}, errors.Wrap(err, "decode transfer request")
	}
	return rec, nil
}

// EncodeTransferResponse renders rec as an LP72 response body.
func EncodeTransferResponse(rec dto.TransferRecord) ([]byte, error) {
	id := rec.TransactionID
	if len(id) > maxTransactionID {
		id = id[:maxTransactionID]
	}

	w := wire.NewWriter(64 + len(id))
	w.Byte(rec.TransactionIndex)
	w.Byte(byte(rec.TransferStatus))
	w.Byte(byte(rec.ReceiptStatus))
	w.Byte(byte(rec.TransferType))
	w.BCD(rec.CashableAmount, amountSize)
	w.BCD(rec.RestrictedAmount, amountSize)
	w.BCD(rec.NonRestrictedAmount, amountSize)
	w.Byte(byte(rec.TransferFlags))
	w.Uint32(rec.AssetNumber)
	w.Byte(byte(len(id)))
	w.Bytes([]byte(id))
	w.BCD(wire.DateValue(rec.TransactionTime), 4)
	w.BCD(wire.TimeValue(rec.TransactionTime), 3)
	w.BCD(uint64(rec.Expiration), 4)
	w.Uint16(rec.PoolID)
	for _, meter := range []uint64{rec.CumulativeCashable, rec.CumulativeRestricted, rec.CumulativeNonRestricted} {
		w.Byte(meterSize)
		w.BCD(meter, meterSize)
	}

	if err := w.Err(); err != nil {
		return nil, errors.Wrap(err, "encode transfer response")
	}
	return w.Body(), nil
}
