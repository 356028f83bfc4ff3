package longpoll

import (
	"github.com/pkg/errors"
	"github.com/vadiminshakov/sasaft/core/dto"
	"github.com/vadiminshakov/sasaft/core/receipt"
	"github.com/vadiminshakov/sasaft/core/registration"
	"github.com/vadiminshakov/sasaft/io/wire"
)

// The functions below are the host side of the long polls: they build the
// request bodies and read the replies the handlers in this package produce.

// EncodeTransferRequest renders rec as an LP72 request body. Interrogation
// codes produce the short form.
func EncodeTransferRequest(rec dto.TransferRecord) ([]byte, error) {
	if rec.TransferCode == dto.TransferInterrogate || rec.TransferCode == dto.TransferInterrogateStatusOnly {
		return []byte{byte(rec.TransferCode), rec.TransactionIndex}, nil
	}
	if len(rec.TransactionID) > maxTransactionID {
		return nil, errors.Errorf("transaction id longer than %d", maxTransactionID)
	}

	w := wire.NewWriter(64 + len(rec.TransactionID) + len(rec.ReceiptData))
	w.Byte(byte(rec.TransferCode))
	w.Byte(rec.TransactionIndex)
	w.Byte(byte(rec.TransferType))
	w.BCD(rec.CashableAmount, amountSize)
	w.BCD(rec.RestrictedAmount, amountSize)
	w.BCD(rec.NonRestrictedAmount, amountSize)
	w.Byte(byte(rec.TransferFlags))
	w.Uint32(rec.AssetNumber)
	w.Bytes(rec.RegistrationKey[:])
	w.Byte(byte(len(rec.TransactionID)))
	w.Bytes([]byte(rec.TransactionID))
	w.BCD(uint64(rec.Expiration), 4)
	w.Uint16(rec.PoolID)
	w.Byte(byte(len(rec.ReceiptData)))
	w.Bytes(rec.ReceiptData)
	w.BCD(uint64(rec.LockTimeout), 2)

	if err := w.Err(); err != nil {
		return nil, errors.Wrap(err, "encode transfer request")
	}
	return w.Body(), nil
}

// DecodeTransferResponse parses an LP72 response body.
func DecodeTransferResponse(body []byte) (dto.TransferRecord, error) {
	r := wire.NewReader(body)
	var rec dto.TransferRecord

	rec.TransactionIndex = r.Byte()
	rec.TransferStatus = dto.TransferStatus(r.Byte())
	rec.ReceiptStatus = dto.ReceiptStatus(r.Byte())
	rec.TransferType = dto.TransferType(r.Byte())
	rec.CashableAmount = r.BCD(amountSize)
	rec.RestrictedAmount = r.BCD(amountSize)
	rec.NonRestrictedAmount = r.BCD(amountSize)
	rec.TransferFlags = dto.TransferFlags(r.Byte())
	rec.AssetNumber = r.Uint32()
	rec.TransactionID = string(r.Bytes(int(r.Byte())))
	date, clock := r.BCD(4), r.BCD(3)
	rec.TransactionTime = wire.DateTime(date, clock)
	rec.Expiration = uint32(r.BCD(4))
	rec.PoolID = r.Uint16()
	meters := []*uint64{&rec.CumulativeCashable, &rec.CumulativeRestricted, &rec.CumulativeNonRestricted}
	for _, m := range meters {
		*m = r.BCD(int(r.Byte()))
	}

	if err := r.Err(); err != nil {
		return dto.TransferRecord{}, errors.Wrap(err, "decode transfer response")
	}
	return rec, nil
}

// EncodeRegistrationRequest renders an LP73 request body. A read carries
// only the code.
func EncodeRegistrationRequest(req registration.Request) []byte {
	if req.Code == dto.ReadCurrentRegistration {
		return []byte{byte(req.Code)}
	}
	w := wire.NewWriter(registrationSize)
	w.Byte(byte(req.Code))
	w.Uint32(req.AssetNumber)
	w.Bytes(req.RegistrationKey[:])
	w.Uint32(req.PosID)
	return w.Body()
}

func DecodeRegistrationResponse(body []byte) (dto.RegistrationState, error) {
	r := wire.NewReader(body)
	var state dto.RegistrationState
	state.Status = dto.RegistrationStatus(r.Byte())
	state.AssetNumber = r.Uint32()
	copy(state.RegistrationKey[:], r.Bytes(len(state.RegistrationKey)))
	state.PosID = r.Uint32()
	if err := r.Err(); err != nil {
		return dto.RegistrationState{}, errors.Wrap(err, "decode registration response")
	}
	return state, nil
}

func EncodeLockRequest(req LockRequest) ([]byte, error) {
	w := wire.NewWriter(4)
	w.Byte(byte(req.Code))
	w.Byte(byte(req.Conditions))
	w.BCD(uint64(req.Timeout), 2)
	if err := w.Err(); err != nil {
		return nil, errors.Wrap(err, "encode lock request")
	}
	return w.Body(), nil
}

func DecodeLockStatus(body []byte) (LockStatusReport, error) {
	r := wire.NewReader(body)
	var s LockStatusReport
	s.AssetNumber = r.Uint32()
	s.LockStatus = dto.LockStatus(r.Byte())
	s.Available = dto.AvailableTransfers(r.Byte())
	s.HostCashout = dto.HostCashoutStatus(r.Byte())
	s.AftStatus = dto.AftStatus(r.Byte())
	s.MaxBufferIndex = r.Byte()
	s.Balances.Cashable = r.BCD(amountSize)
	s.Balances.Restricted = r.BCD(amountSize)
	s.Balances.NonRestricted = r.BCD(amountSize)
	s.TransferLimit = r.BCD(amountSize)
	s.Balances.RestrictedExpiration = uint32(r.BCD(4))
	s.Balances.PoolID = r.Uint16()
	if err := r.Err(); err != nil {
		return LockStatusReport{}, errors.Wrap(err, "decode lock status")
	}
	return s, nil
}

// EncodeReceiptData renders LP75 elements. A Default update is sent with
// length 0xFF and no data.
func EncodeReceiptData(updates []receipt.Update) ([]byte, error) {
	w := wire.NewWriter(len(updates) * 8)
	for _, u := range updates {
		w.Byte(byte(u.Field))
		if u.Default {
			w.Byte(receipt.UseDefault)
			continue
		}
		if len(u.Value) >= receipt.UseDefault {
			return nil, errors.Wrapf(receipt.ErrFieldTooLong, "field 0x%02X", u.Field)
		}
		w.Byte(byte(len(u.Value)))
		w.Bytes([]byte(u.Value))
	}
	return w.Body(), nil
}
