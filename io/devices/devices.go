// Package devices holds in-memory machine peripherals: the receipt and
// ticket printer, host cashout state, auto-play and the funds transfer
// disable signals. They stand in for hardware drivers.
package devices

import (
	"context"
	"strings"
	"sync"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/vadiminshakov/sasaft/core/dto"
	"github.com/vadiminshakov/sasaft/core/external"
)

var ErrPrinterOffline = errors.New("printer offline")

var (
	_ external.Printer       = (*Printer)(nil)
	_ external.HostCashout   = (*HostCashout)(nil)
	_ external.AutoPlay      = (*AutoPlay)(nil)
	_ external.DisableSource = (*Disable)(nil)
	_ external.Ticketing     = (*Ticketing)(nil)
)

// Printer logs what it prints and keeps the last document.
type Printer struct {
	mu      sync.Mutex
	online  bool
	printed []string
	tickets int
}

func NewPrinter(online bool) *Printer {
	return &Printer{online: online}
}

func (p *Printer) SetOnline(online bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.online = online
}

func (p *Printer) CanPrint() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.online
}

func (p *Printer) PrintReceipt(_ context.Context, lines []string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.online {
		return ErrPrinterOffline
	}
	p.printed = append([]string{}, lines...)
	log.Infof("receipt:\n%s", strings.Join(lines, "\n"))
	return nil
}

func (p *Printer) PrintTicket(_ context.Context, amount uint64, expiration uint32, txID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.online {
		return ErrPrinterOffline
	}
	p.tickets++
	log.WithFields(log.Fields{
		"amount":         amount,
		"expiration":     expiration,
		"transaction_id": txID,
	}).Info("ticket printed")
	return nil
}

// LastReceipt returns the lines of the last printed receipt.
func (p *Printer) LastReceipt() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string{}, p.printed...)
}

func (p *Printer) Tickets() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tickets
}

// HostCashout tracks the host cashout mode and pending cashouts.
type HostCashout struct {
	mu          sync.Mutex
	status      dto.HostCashoutStatus
	hostPending bool
	winPending  bool
	winAmount   uint64
}

func NewHostCashout() *HostCashout {
	return &HostCashout{}
}

func (h *HostCashout) HostCashOutPending() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.hostPending
}

func (h *HostCashout) CashOutWinPending() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.winPending
}

func (h *HostCashout) PendingWinAmount() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.winAmount
}

func (h *HostCashout) Status() dto.HostCashoutStatus {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.status
}

// ApplyFlags takes over the cashout mode bits when the host sets the
// control bit.
func (h *HostCashout) ApplyFlags(flags dto.TransferFlags) {
	if !flags.Has(dto.HostCashoutEnableControl) {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.status = dto.CashoutControlledByHost
	if flags.Has(dto.HostCashoutEnable) {
		h.status |= dto.CashoutToHostEnabled
	}
	if flags.Has(dto.HostCashoutMode) {
		h.status |= dto.CashoutHardMode
	}
}

func (h *HostCashout) ClearPending() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hostPending = false
	h.winPending = false
	h.winAmount = 0
}

// RequestCashout marks a player cashout waiting for the host.
func (h *HostCashout) RequestCashout() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hostPending = true
}

// AwardWin marks a win of amount cents waiting to be paid to the host.
func (h *HostCashout) AwardWin(amount uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.winPending = true
	h.winAmount += amount
}

type AutoPlay struct {
	mu        sync.Mutex
	active    bool
	stoppable bool
}

// NewAutoPlay returns an auto-play source; stoppable decides whether End
// succeeds.
func NewAutoPlay(stoppable bool) *AutoPlay {
	return &AutoPlay{stoppable: stoppable}
}

func (a *AutoPlay) SetActive(active bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.active = active
}

func (a *AutoPlay) Active() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.active
}

func (a *AutoPlay) End() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stoppable {
		a.active = false
	}
	return !a.active
}

// Disable holds the funds transfer disable signals.
type Disable struct {
	mu    sync.Mutex
	flags dto.DisableFlags
}

func NewDisable() *Disable {
	return &Disable{}
}

func (d *Disable) Set(flags dto.DisableFlags) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.flags = flags
}

func (d *Disable) Flags() dto.DisableFlags {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.flags
}

// Ticketing maps restricted pools to their default expiration.
type Ticketing struct {
	expirations map[uint16]uint32
	fallback    uint32
}

func NewTicketing(fallback uint32, expirations map[uint16]uint32) *Ticketing {
	return &Ticketing{fallback: fallback, expirations: expirations}
}

func (t *Ticketing) RestrictedExpiration(poolID uint16) uint32 {
	if exp, ok := t.expirations[poolID]; ok {
		return exp
	}
	return t.fallback
}
