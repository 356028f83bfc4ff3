package processor

import (
	"context"

	"github.com/vadiminshakov/sasaft/core/dto"
)

// Current exposes the transfer the machine is working on or finished last.
type Current interface {
	CurrentTransfer() (dto.TransferRecord, bool)
	Interrogated() (dto.TransferRecord, bool)
}

type HistoryReader interface {
	GetHistoryEntry(idx uint8) dto.TransferRecord
}

// Interrogate answers an interrogation. Index 0 reports the current
// transfer; any other index is a history lookup returned verbatim.
// Asking for a pending current transfer marks it as interrogated, and a
// terminal one as acknowledged by the host.
type Interrogate struct {
	current    Current
	history    HistoryReader
	statusOnly bool
}

func NewInterrogate(current Current, history HistoryReader) *Interrogate {
	return &Interrogate{current: current, history: history}
}

// NewInterrogateStatusOnly reports the same data without touching the
// interrogate or acknowledgement state.
func NewInterrogateStatusOnly(current Current, history HistoryReader) *Interrogate {
	return &Interrogate{current: current, history: history, statusOnly: true}
}

func (p *Interrogate) Process(_ context.Context, rec dto.TransferRecord) Decision {
	if rec.TransactionIndex != 0 {
		return Decision{Record: p.history.GetHistoryEntry(rec.TransactionIndex)}
	}

	lookup := p.current.Interrogated
	if p.statusOnly {
		lookup = p.current.CurrentTransfer
	}
	cur, ok := lookup()
	if !ok {
		return Decision{Record: dto.NoTransferInfo(0)}
	}
	return Decision{Record: cur}
}
