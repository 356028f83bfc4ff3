// Package longpoll decodes the AFT long polls, hands them to the engine and
// encodes the replies.
package longpoll

import (
	"context"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/vadiminshakov/sasaft/io/wire"
)

// ErrUnknownCommand is returned for a command no handler owns. The link
// sends no reply.
var ErrUnknownCommand = errors.New("unknown long poll command")

// Handler serves one or more long poll commands. Handle receives the
// complete frame including address and CRC and returns the complete reply
// frame.
type Handler interface {
	Commands() []byte
	Handle(ctx context.Context, frame []byte) ([]byte, error)
}

// Router dispatches frames addressed to this machine by command byte.
type Router struct {
	address  byte
	handlers map[byte]Handler
}

// NewRouter builds a router for the machine at address. Two handlers
// claiming the same command is an error.
func NewRouter(address byte, handlers ...Handler) (*Router, error) {
	r := &Router{address: address, handlers: make(map[byte]Handler)}
	for _, h := range handlers {
		for _, cmd := range h.Commands() {
			if _, ok := r.handlers[cmd]; ok {
				return nil, errors.Errorf("command 0x%02X registered twice", cmd)
			}
			r.handlers[cmd] = h
		}
	}
	return r, nil
}

// Route answers frame. Frames for other addresses yield no reply and no error.
func (r *Router) Route(ctx context.Context, frame []byte) ([]byte, error) {
	if len(frame) < 2 {
		return nil, wire.ErrShortFrame
	}
	if frame[0] != r.address {
		log.Debugf("frame for address %d ignored", frame[0])
		return nil, nil
	}

	h, ok := r.handlers[frame[1]]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownCommand, "command 0x%02X", frame[1])
	}

	reply, err := h.Handle(ctx, frame)
	if err != nil {
		return nil, errors.Wrapf(err, "long poll 0x%02X", frame[1])
	}
	return reply, nil
}
