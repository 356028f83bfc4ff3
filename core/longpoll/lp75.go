package longpoll

import (
	"context"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/sasaft/core/receipt"
	"github.com/vadiminshakov/sasaft/io/wire"
)

const CommandReceiptData = 0x75

type ReceiptData interface {
	Apply(updates []receipt.Update) error
}

// SetReceiptData serves long poll 75. The machine acknowledges by echoing
// its address.
type SetReceiptData struct {
	data ReceiptData
}

func NewSetReceiptData(data ReceiptData) *SetReceiptData {
	return &SetReceiptData{data: data}
}

func (h *SetReceiptData) Commands() []byte {
	return []byte{CommandReceiptData}
}

func (h *SetReceiptData) Handle(_ context.Context, frame []byte) ([]byte, error) {
	addr, _, body, err := wire.ParseFrame(frame, true)
	if err != nil {
		return nil, err
	}

	updates, err := DecodeReceiptData(body)
	if err != nil {
		return nil, err
	}
	if err := h.data.Apply(updates); err != nil {
		return nil, err
	}
	return []byte{addr}, nil
}

// DecodeReceiptData parses the (code, length, data) elements of an LP75 body.
func DecodeReceiptData(body []byte) ([]receipt.Update, error) {
	r := wire.NewReader(body)
	var updates []receipt.Update
	for r.Remaining() > 0 {
		u := receipt.Update{Field: receipt.Field(r.Byte())}
		n := int(r.Byte())
		if n == receipt.UseDefault {
			u.Default = true
		} else {
			u.Value = string(r.Bytes(n))
		}
		if err := r.Err(); err != nil {
			return nil, errors.Wrap(err, "decode receipt data")
		}
		updates = append(updates, u)
	}
	return updates, nil
}
