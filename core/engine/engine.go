// Package engine assembles the AFT components into a machine that answers
// long polls.
package engine

import (
	"context"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/vadiminshakov/sasaft/core/dto"
	"github.com/vadiminshakov/sasaft/core/external"
	"github.com/vadiminshakov/sasaft/core/history"
	"github.com/vadiminshakov/sasaft/core/lock"
	"github.com/vadiminshakov/sasaft/core/longpoll"
	"github.com/vadiminshakov/sasaft/core/processor"
	"github.com/vadiminshakov/sasaft/core/provider"
	"github.com/vadiminshakov/sasaft/core/receipt"
	"github.com/vadiminshakov/sasaft/core/registration"
	"github.com/vadiminshakov/sasaft/core/transfer"
	"github.com/vadiminshakov/sasaft/io/store"
)

// Store persists the engine state across restarts.
type Store interface {
	PutHistory(slot uint8, rec dto.TransferRecord, cursor uint8) error
	LoadHistory() (map[uint8]dto.TransferRecord, uint8, error)
	PutRegistration(state dto.RegistrationState) error
	LoadRegistration() (dto.RegistrationState, error)
	PutLockOptions(state dto.LockState) error
	LoadLockOptions() (dto.LockState, error)
	PutReceiptData(fields map[byte]string) error
	LoadReceiptData() (map[byte]string, error)
}

// Gameplay is implemented by ledgers that run game rounds. The engine uses
// it to hold rounds off while the machine is locked.
type Gameplay interface {
	SetStartGate(gate func() bool)
	OnRoundEnded(fn func())
}

// Config lists the machine collaborators. Printer, AutoPlay, Disable,
// Ticketing, BonusAllowed and Store are optional.
type Config struct {
	Address         byte
	AssetNumber     uint32
	MinLockTimeout  uint16
	ReceiptDefaults map[receipt.Field]string

	Features     external.FeatureSource
	Bank         external.Bank
	Round        external.RoundState
	Cashout      external.HostCashout
	Printer      external.Printer
	AutoPlay     external.AutoPlay
	Disable      external.DisableSource
	Ticketing    external.Ticketing
	BonusAllowed func(rec dto.TransferRecord) bool
	Store        Store
}

type Engine struct {
	cfg Config

	History      *history.Buffer
	Registration *registration.Manager
	Receipts     *receipt.Service
	Provider     *provider.Provider
	Lock         *lock.Handler
	Associations *transfer.Associations
	Dispatcher   *transfer.FullPartial
	Router       *longpoll.Router
}

func New(cfg Config) (*Engine, error) {
	if cfg.Features == nil || cfg.Bank == nil || cfg.Cashout == nil {
		return nil, errors.New("features, bank and cashout are required")
	}

	e := &Engine{cfg: cfg}

	var (
		historyStore history.Persister
		regStore     registration.Persister
		lockStore    lock.Persister
		receiptStore receipt.Persister
	)
	if cfg.Store != nil {
		historyStore, regStore, lockStore, receiptStore = cfg.Store, cfg.Store, cfg.Store, cfg.Store
	}

	e.History = history.New(historyStore)
	e.Registration = registration.New(cfg.AssetNumber, regStore)
	e.Receipts = receipt.NewService(receipt.New(cfg.ReceiptDefaults, receiptStore), cfg.Printer)

	p, err := provider.New(provider.Config{
		Bank:      cfg.Bank,
		History:   e.History,
		Features:  cfg.Features,
		Cashout:   cfg.Cashout,
		Printer:   cfg.Printer,
		Ticketing: cfg.Ticketing,
		Receipts:  e.Receipts,
	})
	if err != nil {
		return nil, errors.Wrap(err, "provider")
	}
	e.Provider = p

	e.Associations = transfer.NewAssociations(transfer.Sources{
		Features:     cfg.Features,
		Printer:      cfg.Printer,
		Registration: e.Registration,
		Disable:      cfg.Disable,
		Cashout:      cfg.Cashout,
	})
	e.Lock = lock.New(e.Associations, cfg.Round, lockStore, cfg.MinLockTimeout)

	registry, err := processor.NewRegistry(processor.Deps{
		Provider:     p,
		Registration: e.Registration,
		Printer:      cfg.Printer,
		BonusAllowed: cfg.BonusAllowed,
	})
	if err != nil {
		return nil, errors.Wrap(err, "processors")
	}

	dispatcher, err := transfer.NewFullPartial(transfer.Config{
		Processors:   registry,
		Interrogate:  processor.NewInterrogate(p, e.History),
		StatusOnly:   processor.NewInterrogateStatusOnly(p, e.History),
		Provider:     p,
		Registration: e.Registration,
		Lock:         e.Lock,
		Cashout:      cfg.Cashout,
		AutoPlay:     cfg.AutoPlay,
		Disable:      cfg.Disable,
		Receipts:     e.Receipts,
	})
	if err != nil {
		return nil, errors.Wrap(err, "dispatcher")
	}
	e.Dispatcher = dispatcher

	router, err := longpoll.NewRouter(cfg.Address,
		longpoll.NewTransferFunds(dispatcher),
		longpoll.NewRegister(e.Registration),
		longpoll.NewLockAndStatus(e.Lock, e.Associations, machine{e}),
		longpoll.NewSetReceiptData(e.Receipts.Data()),
	)
	if err != nil {
		return nil, errors.Wrap(err, "router")
	}
	e.Router = router

	// a finished transfer releases the lock it ran under
	p.OnFinalize(func(dto.TransferRecord) { e.Lock.Cancel() })

	if g, ok := cfg.Bank.(Gameplay); ok {
		g.SetStartGate(func() bool { return !e.Lock.IsLocked() })
		g.OnRoundEnded(e.Lock.RoundEnded)
	}

	return e, nil
}

// Restore reloads persisted state. Missing records are not an error.
func (e *Engine) Restore() error {
	s := e.cfg.Store
	if s == nil {
		return nil
	}

	entries, cursor, err := s.LoadHistory()
	if err != nil {
		return errors.Wrap(err, "load history")
	}
	e.History.Restore(entries, cursor)
	on, off := cumulativeFromHistory(entries)
	e.Provider.RestoreCumulative(on, off)

	state, err := s.LoadRegistration()
	switch {
	case err == nil:
		e.Registration.Restore(state)
	case !errors.Is(err, store.ErrNotFound):
		return errors.Wrap(err, "load registration")
	}

	fields, err := s.LoadReceiptData()
	switch {
	case err == nil:
		e.Receipts.Data().Restore(fields)
	case !errors.Is(err, store.ErrNotFound):
		return errors.Wrap(err, "load receipt data")
	}

	lockState, err := s.LoadLockOptions()
	switch {
	case err == nil:
		e.Lock.Restore(lockState)
	case !errors.Is(err, store.ErrNotFound):
		return errors.Wrap(err, "load lock options")
	}

	log.Infof("restored %d history entries, cursor %d", len(entries), cursor)
	return nil
}

// cumulativeFromHistory returns the cumulative meters of the latest
// successful transfer in each direction.
func cumulativeFromHistory(entries map[uint8]dto.TransferRecord) (on, off dto.Amounts) {
	var lastOn, lastOff dto.TransferRecord
	for _, rec := range entries {
		if !rec.TransferStatus.IsSuccess() {
			continue
		}
		if rec.TransferType.IsFromGame() {
			if rec.TransactionTime.After(lastOff.TransactionTime) {
				lastOff = rec
			}
		} else if rec.TransactionTime.After(lastOn.TransactionTime) {
			lastOn = rec
		}
	}
	return cumulative(lastOn), cumulative(lastOff)
}

func cumulative(rec dto.TransferRecord) dto.Amounts {
	return dto.Amounts{
		Cashable:      rec.CumulativeCashable,
		Restricted:    rec.CumulativeRestricted,
		NonRestricted: rec.CumulativeNonRestricted,
	}
}

// Start runs the fund operation worker until ctx ends.
func (e *Engine) Start(ctx context.Context) {
	e.Provider.Start(ctx)
}

func (e *Engine) Close() {
	e.Provider.Close()
	e.Lock.Cancel()
	e.History.Close()
}

// Handle answers one long poll frame.
func (e *Engine) Handle(ctx context.Context, frame []byte) ([]byte, error) {
	return e.Router.Route(ctx, frame)
}

// Status is a diagnostic snapshot of the machine.
type Status struct {
	AssetNumber        uint32
	Registration       dto.RegistrationStatus
	Lock               dto.LockStatus
	Available          dto.AvailableTransfers
	AftStatus          dto.AftStatus
	HistoryCursor      uint8
	Balances           dto.Balances
	Current            *dto.TransferRecord
	TransferAmount     uint64
	TransferInProgress bool
}

func (e *Engine) Status(ctx context.Context) (Status, error) {
	bal, err := e.cfg.Bank.Balances(ctx)
	if err != nil {
		return Status{}, errors.Wrap(err, "balances")
	}

	s := Status{
		AssetNumber:        e.Registration.AssetNumber(),
		Registration:       e.Registration.State().Status,
		Lock:               e.Lock.State().Status,
		Available:          e.Associations.GetAvailableTransfers(),
		AftStatus:          e.Associations.GetAftStatus(),
		HistoryCursor:      e.History.Cursor(),
		Balances:           bal,
		TransferAmount:     e.Provider.TransferAmount(),
		TransferInProgress: e.Provider.IsTransferInProgress(),
	}
	if cur, ok := e.Provider.CurrentTransfer(); ok {
		s.Current = &cur
	}
	return s, nil
}

// machine adapts the engine for the lock and status long poll.
type machine struct {
	e *Engine
}

func (m machine) AssetNumber() uint32 {
	return m.e.Registration.AssetNumber()
}

func (m machine) Balances(ctx context.Context) (dto.Balances, error) {
	return m.e.cfg.Bank.Balances(ctx)
}

// TransferLimit applies the credit limit and the credits already on the
// machine to the configured transfer limit.
func (m machine) TransferLimit(ctx context.Context) (uint64, error) {
	bal, err := m.e.cfg.Bank.Balances(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "read balances")
	}
	return provider.TransferOnLimit(m.e.cfg.Features.Features(), bal, bal.PoolID, false), nil
}
