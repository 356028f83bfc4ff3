package provider

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"github.com/vadiminshakov/sasaft/core/dto"
	"github.com/vadiminshakov/sasaft/core/external"
	"github.com/vadiminshakov/sasaft/core/guard"
	"github.com/vadiminshakov/sasaft/core/history"
	"github.com/vadiminshakov/sasaft/mocks"
	"go.uber.org/mock/gomock"
)

type staticFeatures dto.Features

func (s staticFeatures) Features() dto.Features {
	return dto.Features(s)
}

var defaultFeatures = staticFeatures{
	InHouseToGame:   true,
	InHouseFromGame: true,
	WinToHost:       true,
	PartialToHost:   true,
	TransferLimit:   100000,
}

type fixture struct {
	provider *Provider
	bank     *mocks.MockBank
	txn      *mocks.MockBankTxn
	cashout  *mocks.MockHostCashout
	history  *history.Buffer
}

func newFixture(t *testing.T, features staticFeatures) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	f := &fixture{
		bank:    mocks.NewMockBank(ctrl),
		txn:     mocks.NewMockBankTxn(ctrl),
		cashout: mocks.NewMockHostCashout(ctrl),
		history: history.New(nil),
	}

	p, err := New(Config{
		Bank:     f.bank,
		History:  f.history,
		Features: features,
		Cashout:  f.cashout,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)
	t.Cleanup(func() {
		cancel()
		p.Close()
	})

	f.provider = p
	return f
}

func wait(t *testing.T, op *FundOperation) dto.TransferRecord {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	rec, err := op.Wait(ctx)
	require.NoError(t, err)
	return rec
}

func onRecord(id string, cashable uint64) dto.TransferRecord {
	return dto.TransferRecord{
		TransactionID:  id,
		TransferType:   dto.HostToGameInHouse,
		TransferCode:   dto.TransferFullOnly,
		CashableAmount: cashable,
		ReceiptStatus:  dto.NoReceiptRequested,
	}
}

func TestNew_RequiresCollaborators(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)
}

func TestProvider_AftOnSuccess(t *testing.T) {
	f := newFixture(t, defaultFeatures)

	f.bank.EXPECT().WaitForLock(gomock.Any()).Return(f.txn, nil)
	f.txn.EXPECT().Balances().Return(dto.Balances{})
	f.txn.EXPECT().Credit("TX1", dto.Amounts{Cashable: 500}, uint16(0), uint32(0)).Return(nil)
	f.txn.EXPECT().Commit().Return(nil)

	op := f.provider.DoAftOn(onRecord("TX1", 500))

	// pending until the worker finalizes
	require.True(t, f.provider.IsTransferInProgress())
	require.False(t, f.provider.TransactionIDUnique("TX1"))

	rec := wait(t, op)
	require.Equal(t, dto.FullTransferSuccessful, rec.TransferStatus)
	require.Equal(t, uint64(500), rec.CashableAmount)
	require.Equal(t, uint64(500), rec.CumulativeCashable)
	require.False(t, rec.TransactionTime.IsZero())

	stored := f.history.GetHistoryEntry(rec.TransactionIndex)
	require.Equal(t, "TX1", stored.TransactionID)
	require.Equal(t, dto.FullTransferSuccessful, stored.TransferStatus)

	current, ok := f.provider.CurrentTransfer()
	require.True(t, ok)
	require.Equal(t, dto.FullTransferSuccessful, current.TransferStatus)

	// finished but not yet acknowledged
	require.True(t, f.provider.IsTransferInProgress())
	_, ok = f.provider.Interrogated()
	require.True(t, ok)
	require.False(t, f.provider.IsTransferInProgress())
	require.True(t, f.provider.IsTransferAcknowledgedByHost())
}

func TestProvider_PanicStillFinalizes(t *testing.T) {
	f := newFixture(t, defaultFeatures)

	f.bank.EXPECT().WaitForLock(gomock.Any()).Return(f.txn, nil)
	f.txn.EXPECT().Balances().Return(dto.Balances{})
	f.txn.EXPECT().Credit(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(string, dto.Amounts, uint16, uint32) error { panic("ledger exploded") })
	f.txn.EXPECT().Rollback()

	rec := wait(t, f.provider.DoAftOn(onRecord("TX1", 500)))

	require.Equal(t, dto.UnexpectedError, rec.TransferStatus)
	require.Zero(t, rec.Total())
	require.Equal(t, dto.UnexpectedError, f.history.GetHistoryEntry(0xFF).TransferStatus)
}

func TestProvider_LockFailure(t *testing.T) {
	f := newFixture(t, defaultFeatures)

	f.bank.EXPECT().WaitForLock(gomock.Any()).Return(nil, errors.New("shutdown"))

	rec := wait(t, f.provider.DoAftOn(onRecord("TX1", 500)))
	require.Equal(t, dto.GamingMachineUnableToPerformTransfer, rec.TransferStatus)
	require.Zero(t, rec.Total())
}

func TestProvider_LimitRecheckedUnderLock(t *testing.T) {
	features := defaultFeatures
	features.TransferLimit = 1000
	features.CreditLimit = 1000
	f := newFixture(t, features)

	// a game win landed between validation and execution
	f.bank.EXPECT().WaitForLock(gomock.Any()).Return(f.txn, nil)
	f.txn.EXPECT().Balances().Return(dto.Balances{Amounts: dto.Amounts{Cashable: 800}})
	f.txn.EXPECT().Rollback()

	rec := wait(t, f.provider.DoAftOn(onRecord("TX1", 500)))
	require.Equal(t, dto.TransferAmountExceedsGameLimit, rec.TransferStatus)
	require.Zero(t, rec.Total())
}

func TestProvider_RestrictedPoolConflict(t *testing.T) {
	f := newFixture(t, defaultFeatures)

	f.bank.EXPECT().WaitForLock(gomock.Any()).Return(f.txn, nil)
	f.txn.EXPECT().Balances().Return(dto.Balances{Amounts: dto.Amounts{Restricted: 10}, PoolID: 1})
	f.txn.EXPECT().Rollback()

	rec := onRecord("TX1", 0)
	rec.RestrictedAmount = 50
	rec.PoolID = 2

	got := wait(t, f.provider.DoAftOn(rec))
	require.Equal(t, dto.UnableToAcceptTransferDueToExistingRestrictedAmounts, got.TransferStatus)
}

func TestProvider_AftOffPartial(t *testing.T) {
	f := newFixture(t, defaultFeatures)

	f.bank.EXPECT().WaitForLock(gomock.Any()).Return(f.txn, nil)
	f.txn.EXPECT().Balances().Return(dto.Balances{Amounts: dto.Amounts{Cashable: 50}})
	f.txn.EXPECT().Debit("OFF1", dto.Amounts{Cashable: 50}).Return(nil)
	f.txn.EXPECT().Commit().Return(nil)
	f.cashout.EXPECT().ClearPending()

	rec := dto.TransferRecord{
		TransactionID:  "OFF1",
		TransferType:   dto.GameToHostInHouse,
		TransferCode:   dto.TransferPartialAllowed,
		CashableAmount: 80,
	}
	got := wait(t, f.provider.DoAftOff(rec))

	require.Equal(t, dto.PartialTransferSuccessful, got.TransferStatus)
	require.Equal(t, uint64(50), got.CashableAmount)
	require.Equal(t, dto.Amounts{Cashable: 50}, f.provider.Cumulative(dto.GameToHostInHouse))
}

func TestProvider_AftOffFullInsufficient(t *testing.T) {
	f := newFixture(t, defaultFeatures)

	f.bank.EXPECT().WaitForLock(gomock.Any()).Return(f.txn, nil)
	f.txn.EXPECT().Balances().Return(dto.Balances{Amounts: dto.Amounts{Cashable: 50}})
	f.txn.EXPECT().Rollback()

	rec := dto.TransferRecord{
		TransactionID:  "OFF1",
		TransferType:   dto.GameToHostInHouse,
		TransferCode:   dto.TransferFullOnly,
		CashableAmount: 80,
	}
	got := wait(t, f.provider.DoAftOff(rec))

	require.Equal(t, dto.NotAValidTransferFunction, got.TransferStatus)
	require.Zero(t, got.Total())
}

func TestProvider_WinOffClampedToPendingWin(t *testing.T) {
	f := newFixture(t, defaultFeatures)

	f.bank.EXPECT().WaitForLock(gomock.Any()).Return(f.txn, nil)
	f.txn.EXPECT().Balances().Return(dto.Balances{Amounts: dto.Amounts{Cashable: 500}})
	f.cashout.EXPECT().PendingWinAmount().Return(uint64(120))
	f.txn.EXPECT().Debit("WIN1", dto.Amounts{Cashable: 120}).Return(nil)
	f.txn.EXPECT().Commit().Return(nil)
	f.cashout.EXPECT().ClearPending()

	rec := dto.TransferRecord{
		TransactionID:  "WIN1",
		TransferType:   dto.GameToHostInHouseWin,
		TransferCode:   dto.TransferPartialAllowed,
		CashableAmount: 500,
	}
	got := wait(t, f.provider.DoAftOff(rec))

	require.Equal(t, dto.PartialTransferSuccessful, got.TransferStatus)
	require.Equal(t, uint64(120), got.CashableAmount)
}

func TestProvider_DuplicateLedgerIDMapsToNotUnique(t *testing.T) {
	f := newFixture(t, defaultFeatures)

	f.bank.EXPECT().WaitForLock(gomock.Any()).Return(f.txn, nil)
	f.txn.EXPECT().Balances().Return(dto.Balances{})
	f.txn.EXPECT().Credit(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(errors.Wrap(external.ErrAlreadyProcessed, "credit"))
	f.txn.EXPECT().Rollback()

	got := wait(t, f.provider.DoAftOn(onRecord("TX1", 5)))
	require.Equal(t, dto.TransactionIdNotUnique, got.TransferStatus)
	require.Zero(t, got.Total())
}

func TestProvider_OnFinalizeListeners(t *testing.T) {
	f := newFixture(t, defaultFeatures)

	finalized := make(chan dto.TransferRecord, 1)
	f.provider.OnFinalize(func(rec dto.TransferRecord) { finalized <- rec })

	f.bank.EXPECT().WaitForLock(gomock.Any()).Return(nil, context.Canceled)
	f.provider.DoBonus(onRecord("B1", 5))

	select {
	case rec := <-finalized:
		require.Equal(t, "B1", rec.TransactionID)
	case <-time.After(2 * time.Second):
		t.Fatal("listener not called")
	}
}

func TestProvider_InterrogatePendingFlag(t *testing.T) {
	f := newFixture(t, defaultFeatures)

	release := make(chan struct{})
	f.bank.EXPECT().WaitForLock(gomock.Any()).DoAndReturn(func(context.Context) (external.BankTxn, error) {
		<-release
		return nil, errors.New("round never ended")
	})

	op := f.provider.DoAftOn(onRecord("TX1", 5))

	rec, ok := f.provider.Interrogated()
	require.True(t, ok)
	require.Equal(t, dto.TransferPending, rec.TransferStatus)
	require.True(t, f.provider.InterrogatePending())
	require.True(t, f.provider.IsTransferInProgress())
	require.EqualValues(t, 5, f.provider.TransferAmount())

	close(release)
	wait(t, op)
	require.False(t, f.provider.InterrogatePending())
}

func TestProvider_SubmitAfterCloseFinalizes(t *testing.T) {
	f := newFixture(t, defaultFeatures)
	f.provider.Close()

	got := wait(t, f.provider.DoAftOn(onRecord("TX1", 5)))
	require.Equal(t, dto.GamingMachineUnableToPerformTransfer, got.TransferStatus)
}

func TestProvider_SubmitBeforeStartFinalizes(t *testing.T) {
	ctrl := gomock.NewController(t)
	p, err := New(Config{
		Bank:     mocks.NewMockBank(ctrl),
		History:  history.New(nil),
		Features: defaultFeatures,
		Cashout:  mocks.NewMockHostCashout(ctrl),
	})
	require.NoError(t, err)

	for i := 0; i < 2*jobQueueSize; i++ {
		got := wait(t, p.DoAftOn(onRecord(fmt.Sprintf("TX%d", i), 5)))
		require.Equal(t, dto.GamingMachineUnableToPerformTransfer, got.TransferStatus)
	}
	cur, ok := p.CurrentTransfer()
	require.True(t, ok)
	require.Equal(t, dto.GamingMachineUnableToPerformTransfer, cur.TransferStatus)
}

func TestTransactionIDValid(t *testing.T) {
	require.True(t, TransactionIDValid("A"))
	require.True(t, TransactionIDValid("12345678901234567890"))
	require.False(t, TransactionIDValid(""))
	require.False(t, TransactionIDValid("123456789012345678901"))
	require.False(t, TransactionIDValid("tab\tinside"))
}

func TestAcknowledgeTransfer(t *testing.T) {
	f := newFixture(t, defaultFeatures)
	require.False(t, f.provider.AcknowledgeTransfer("nothing"))

	f.bank.EXPECT().WaitForLock(gomock.Any()).Return(nil, errors.New("no"))
	wait(t, f.provider.DoAftOn(onRecord("TX1", 5)))

	require.False(t, f.provider.AcknowledgeTransfer("other"))
	require.True(t, f.provider.AcknowledgeTransfer("TX1"))
	require.False(t, f.provider.IsTransferInProgress())
}

func TestCheckForErrorConditions(t *testing.T) {
	rec := onRecord("TX1", 500)
	chain := guard.NewChain(
		guard.Guard{Name: "ok", Check: func(*dto.TransferRecord) guard.Result { return guard.Ok() }},
		guard.Guard{Name: "limit", Check: func(*dto.TransferRecord) guard.Result {
			return guard.Fail(dto.TransferAmountExceedsGameLimit, "over limit")
		}},
	)

	require.False(t, CheckForErrorConditions(&rec, chain))
	require.Equal(t, dto.TransferAmountExceedsGameLimit, rec.TransferStatus)
	require.Zero(t, rec.Total())
}

func TestTransferCodeQueries(t *testing.T) {
	f := newFixture(t, defaultFeatures)
	require.True(t, f.provider.PartialTransfersAllowed())
	require.Zero(t, f.provider.TransferAmount())

	rec := onRecord("TX1", 5)
	rec.TransferCode = dto.TransferFullOnly
	require.True(t, FullTransferRequested(&rec))
	rec.TransferCode = dto.TransferPartialAllowed
	require.False(t, FullTransferRequested(&rec))
}
