package engine

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vadiminshakov/gowal"
	"github.com/vadiminshakov/sasaft/core/dto"
	"github.com/vadiminshakov/sasaft/core/longpoll"
	"github.com/vadiminshakov/sasaft/core/receipt"
	"github.com/vadiminshakov/sasaft/core/registration"
	"github.com/vadiminshakov/sasaft/io/devices"
	"github.com/vadiminshakov/sasaft/io/ledger"
	"github.com/vadiminshakov/sasaft/io/store"
	"github.com/vadiminshakov/sasaft/io/wire"
)

const (
	address = 0x01
	asset   = 1234
)

type staticFeatures dto.Features

func (s staticFeatures) Features() dto.Features { return dto.Features(s) }

var features = staticFeatures{
	InHouseToGame:       true,
	InHouseFromGame:     true,
	BonusToGame:         true,
	WinToHost:           true,
	DebitToGame:         true,
	PartialToHost:       true,
	TransferToTicket:    true,
	TransactionReceipts: true,
	TransferLimit:       100000,
}

type testMachine struct {
	engine  *Engine
	ledger  *ledger.Ledger
	cashout *devices.HostCashout
	printer *devices.Printer
}

func newMachine(t *testing.T, f staticFeatures, s Store) *testMachine {
	t.Helper()

	m := &testMachine{
		ledger:  ledger.New(dto.Balances{Amounts: dto.Amounts{Cashable: 1000}}),
		cashout: devices.NewHostCashout(),
		printer: devices.NewPrinter(true),
	}

	e, err := New(Config{
		Address:     address,
		AssetNumber: asset,
		ReceiptDefaults: map[receipt.Field]string{
			receipt.Location:     "Test Casino",
			receipt.InHouseLine1: "Account transfer",
			receipt.DebitLine1:   "Debit transfer",
		},
		Features: f,
		Bank:     m.ledger,
		Round:    m.ledger,
		Cashout:  m.cashout,
		Printer:  m.printer,
		Store:    s,
	})
	require.NoError(t, err)
	require.NoError(t, e.Restore())

	ctx, cancel := context.WithCancel(context.Background())
	e.Start(ctx)
	t.Cleanup(func() {
		cancel()
		e.Close()
	})

	m.engine = e
	return m
}

func transferRequest(t dto.TransferType, id string, cashable uint64) dto.TransferRecord {
	return dto.TransferRecord{
		TransferCode:   dto.TransferFullOnly,
		TransferType:   t,
		TransactionID:  id,
		AssetNumber:    asset,
		CashableAmount: cashable,
		ReceiptStatus:  dto.NoReceiptRequested,
	}
}

func (m *testMachine) transfer(rec dto.TransferRecord) dto.TransferRecord {
	return m.engine.Dispatcher.Process(context.Background(), rec)
}

// settle waits for the current transfer to leave the pending state.
func (m *testMachine) settle(t *testing.T) dto.TransferRecord {
	t.Helper()

	var cur dto.TransferRecord
	require.Eventually(t, func() bool {
		var ok bool
		cur, ok = m.engine.Provider.CurrentTransfer()
		return ok && cur.TransferStatus != dto.TransferPending
	}, 2*time.Second, 5*time.Millisecond)
	return cur
}

func (m *testMachine) interrogate(index uint8) dto.TransferRecord {
	return m.transfer(dto.TransferRecord{TransferCode: dto.TransferInterrogate, TransactionIndex: index})
}

func (m *testMachine) cashable(t *testing.T) uint64 {
	bal, err := m.ledger.Balances(context.Background())
	require.NoError(t, err)
	return bal.Cashable
}

func TestNew_RequiresCollaborators(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)
}

func TestEngine_TransferToGame(t *testing.T) {
	m := newMachine(t, features, nil)

	out := m.transfer(transferRequest(dto.HostToGameInHouse, "ON-1", 500))
	require.Equal(t, dto.TransferPending, out.TransferStatus)

	done := m.settle(t)
	require.Equal(t, dto.FullTransferSuccessful, done.TransferStatus)
	require.Equal(t, uint64(500), done.CumulativeCashable)
	require.Equal(t, uint64(1500), m.cashable(t))

	require.Equal(t, dto.FullTransferSuccessful, m.interrogate(0).TransferStatus)
	require.True(t, m.engine.Provider.IsTransferAcknowledgedByHost())
	require.Equal(t, "ON-1", m.interrogate(0xFF).TransactionID)
}

func TestEngine_TransferOffOverLimit(t *testing.T) {
	f := features
	f.TransferLimit = 100
	m := newMachine(t, f, nil)

	out := m.transfer(transferRequest(dto.GameToHostInHouse, "OFF-1", 101))
	require.Equal(t, dto.TransferAmountExceedsGameLimit, out.TransferStatus)
	require.Zero(t, out.Total())
	require.Equal(t, uint64(1000), m.cashable(t))

	_, ok := m.engine.Provider.CurrentTransfer()
	require.False(t, ok)
}

func TestEngine_DebitRejectsRestricted(t *testing.T) {
	m := newMachine(t, features, nil)

	var key dto.RegistrationKey
	key[0] = 0x11
	_, err := m.engine.Registration.Apply(registration.Request{
		Code:            dto.RegisterGamingMachine,
		AssetNumber:     asset,
		RegistrationKey: key,
		PosID:           77,
	})
	require.NoError(t, err)

	rec := transferRequest(dto.HostToGameDebit, "DEB-1", 100)
	rec.RestrictedAmount = 50
	rec.RegistrationKey = key

	out := m.transfer(rec)
	require.Equal(t, dto.NotAValidTransferFunction, out.TransferStatus)
	require.Zero(t, out.Total())

	rec.RestrictedAmount = 0
	require.Equal(t, dto.TransferPending, m.transfer(rec).TransferStatus)
	require.Equal(t, dto.FullTransferSuccessful, m.settle(t).TransferStatus)
}

func TestEngine_SameIDBeforeAcknowledge(t *testing.T) {
	m := newMachine(t, features, nil)

	require.Equal(t, dto.TransferPending, m.transfer(transferRequest(dto.HostToGameInHouse, "DUP", 200)).TransferStatus)
	m.settle(t)

	again := m.transfer(transferRequest(dto.HostToGameInHouse, "DUP", 200))
	require.Equal(t, dto.NotCompatibleWithCurrentTransfer, again.TransferStatus)

	m.interrogate(0)
	again = m.transfer(transferRequest(dto.HostToGameInHouse, "DUP", 200))
	require.Equal(t, dto.TransactionIdNotValid, again.TransferStatus)
	require.Equal(t, uint64(1200), m.cashable(t))
}

func TestEngine_WinPendingBlocksTransferToGame(t *testing.T) {
	m := newMachine(t, features, nil)
	m.cashout.AwardWin(300)

	out := m.transfer(transferRequest(dto.HostToGameInHouse, "ON-1", 100))
	require.Equal(t, dto.GamingMachineUnableToPerformTransfer, out.TransferStatus)

	win := m.transfer(transferRequest(dto.GameToHostInHouseWin, "WIN-1", 300))
	require.Equal(t, dto.TransferPending, win.TransferStatus)
	require.Equal(t, dto.FullTransferSuccessful, m.settle(t).TransferStatus)
	require.False(t, m.cashout.CashOutWinPending())
	require.Equal(t, uint64(700), m.cashable(t))
}

func TestEngine_ReceiptPrinted(t *testing.T) {
	m := newMachine(t, features, nil)

	rec := transferRequest(dto.GameToHostInHouse, "OFF-R", 250)
	rec.TransferFlags = dto.TransactionReceiptRequest
	require.Equal(t, dto.ReceiptPending, m.transfer(rec).ReceiptStatus)

	done := m.settle(t)
	require.Equal(t, dto.ReceiptPrinted, done.ReceiptStatus)
	require.Contains(t, m.printer.LastReceipt(), "Test Casino")
}

func TestEngine_LongPolls(t *testing.T) {
	m := newMachine(t, features, nil)
	ctx := context.Background()

	// lock for transfers to the game
	reply, err := m.engine.Handle(ctx, wire.AppendCRC([]byte{address, longpoll.CommandLock,
		byte(dto.RequestLock), byte(dto.ConditionToGameOk), 0x10, 0x00}))
	require.NoError(t, err)
	_, _, body, err := wire.ParseFrame(reply, true)
	require.NoError(t, err)
	require.Equal(t, byte(dto.GameLocked), body[4])
	require.True(t, m.engine.Lock.IsLocked())
	require.ErrorIs(t, m.ledger.StartRound(ctx), ledger.ErrRoundBlocked)

	rec := transferRequest(dto.HostToGameInHouse, "LP-1", 400)
	rec.TransferFlags = dto.AcceptTransferOnlyIfLocked
	w := wire.NewWriter(64)
	w.Byte(byte(rec.TransferCode))
	w.Byte(0)
	w.Byte(byte(rec.TransferType))
	w.BCD(rec.CashableAmount, 5)
	w.BCD(0, 5)
	w.BCD(0, 5)
	w.Byte(byte(rec.TransferFlags))
	w.Uint32(asset)
	w.Bytes(make([]byte, 20))
	w.Byte(byte(len(rec.TransactionID)))
	w.Bytes([]byte(rec.TransactionID))
	w.BCD(0, 4)
	w.Uint16(0)
	w.Byte(0)
	w.BCD(0, 2)
	require.NoError(t, w.Err())

	reply, err = m.engine.Handle(ctx, wire.Frame(address, longpoll.CommandTransferFunds, w.Body(), true))
	require.NoError(t, err)
	_, _, body, err = wire.ParseFrame(reply, true)
	require.NoError(t, err)
	require.Equal(t, byte(dto.TransferPending), body[1])

	m.settle(t)
	require.Eventually(t, func() bool { return !m.engine.Lock.IsLocked() }, time.Second, 5*time.Millisecond)

	reply, err = m.engine.Handle(ctx, wire.Frame(address, longpoll.CommandTransferFunds,
		[]byte{byte(dto.TransferInterrogate), 0x00}, true))
	require.NoError(t, err)
	_, _, body, err = wire.ParseFrame(reply, true)
	require.NoError(t, err)
	require.Equal(t, byte(dto.FullTransferSuccessful), body[1])

	// unknown command gets no reply
	_, err = m.engine.Handle(ctx, wire.AppendCRC([]byte{address, 0x1F}))
	require.ErrorIs(t, err, longpoll.ErrUnknownCommand)
}

func TestEngine_LockStatusReportsCreditLimitedTransferLimit(t *testing.T) {
	f := features
	f.CreditLimit = 1500
	m := newMachine(t, f, nil)

	reply, err := m.engine.Handle(context.Background(), wire.AppendCRC([]byte{address, longpoll.CommandLock,
		byte(dto.InterrogateCurrentStatusOnly), 0, 0, 0}))
	require.NoError(t, err)
	_, _, body, err := wire.ParseFrame(reply, true)
	require.NoError(t, err)

	report, err := longpoll.DecodeLockStatus(body)
	require.NoError(t, err)
	require.EqualValues(t, 1000, report.Balances.Cashable)
	require.EqualValues(t, 500, report.TransferLimit)

	// the advertised limit is the one a transfer is held to
	out := m.transfer(transferRequest(dto.HostToGameInHouse, "CL-1", 501))
	require.Equal(t, dto.TransferAmountExceedsGameLimit, out.TransferStatus)

	m.transfer(transferRequest(dto.HostToGameInHouse, "CL-2", 500))
	require.Equal(t, dto.FullTransferSuccessful, m.settle(t).TransferStatus)
	require.EqualValues(t, 1500, m.cashable(t))
}

func openStore(t *testing.T, root string) (*store.Store, func()) {
	t.Helper()

	w, err := gowal.NewWAL(gowal.Config{
		Dir:              filepath.Join(root, "wal"),
		Prefix:           "wal_",
		SegmentThreshold: 1024 * 1024,
		MaxSegments:      10,
		IsInSyncDiskMode: true,
	})
	require.NoError(t, err)

	s, _, err := store.New(w, filepath.Join(root, "db"))
	require.NoError(t, err)
	return s, func() {
		s.Close()
		w.Close()
	}
}

func TestEngine_RestoresFromStore(t *testing.T) {
	root := t.TempDir()

	s, closeStore := openStore(t, root)
	m := newMachine(t, features, s)

	_, err := m.engine.Registration.Apply(registration.Request{Code: dto.RegisterGamingMachine, AssetNumber: asset})
	require.NoError(t, err)
	m.transfer(transferRequest(dto.HostToGameInHouse, "P-1", 300))
	require.Equal(t, dto.FullTransferSuccessful, m.settle(t).TransferStatus)
	m.engine.Close()
	closeStore()

	s, closeStore = openStore(t, root)
	defer closeStore()
	restored := newMachine(t, features, s)

	require.True(t, restored.engine.Registration.IsRegistered())
	require.Equal(t, "P-1", restored.interrogate(0xFF).TransactionID)
	require.False(t, restored.engine.Provider.TransactionIDUnique("P-1"))
	require.Equal(t, uint64(300), restored.engine.Provider.Cumulative(dto.HostToGameInHouse).Cashable)
}
