package longpoll

import (
	"context"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/sasaft/core/dto"
	"github.com/vadiminshakov/sasaft/core/registration"
	"github.com/vadiminshakov/sasaft/io/wire"
)

const (
	CommandRegister = 0x73

	registrationSize = 0x1D
)

type Registrar interface {
	Apply(req registration.Request) (dto.RegistrationState, error)
}

// Register serves long poll 73.
type Register struct {
	registrar Registrar
}

func NewRegister(r Registrar) *Register {
	return &Register{registrar: r}
}

func (h *Register) Commands() []byte {
	return []byte{CommandRegister}
}

func (h *Register) Handle(_ context.Context, frame []byte) ([]byte, error) {
	addr, _, body, err := wire.ParseFrame(frame, true)
	if err != nil {
		return nil, err
	}

	req, err := DecodeRegistrationRequest(body)
	if err != nil {
		return nil, err
	}

	state, err := h.registrar.Apply(req)
	if err != nil {
		return nil, err
	}
	return wire.Frame(addr, CommandRegister, EncodeRegistrationResponse(state), true), nil
}

// DecodeRegistrationRequest parses an LP73 body. A one byte body carries only
// the registration code.
func DecodeRegistrationRequest(body []byte) (registration.Request, error) {
	r := wire.NewReader(body)
	req := registration.Request{Code: dto.RegistrationCode(r.Byte())}
	if len(body) > 1 {
		req.AssetNumber = r.Uint32()
		copy(req.RegistrationKey[:], r.Bytes(len(req.RegistrationKey)))
		req.PosID = r.Uint32()
	}
	if err := r.Err(); err != nil {
		return registration.Request{}, errors.Wrap(err, "decode registration request")
	}
	return req, nil
}

func EncodeRegistrationResponse(state dto.RegistrationState) []byte {
	w := wire.NewWriter(registrationSize)
	w.Byte(byte(state.Status))
	w.Uint32(state.AssetNumber)
	w.Bytes(state.RegistrationKey[:])
	w.Uint32(state.PosID)
	return w.Body()
}
