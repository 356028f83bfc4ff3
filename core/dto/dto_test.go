package dto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTransferRecord_FailZeroesAmounts(t *testing.T) {
	rec := TransferRecord{
		CashableAmount:      100,
		RestrictedAmount:    20,
		NonRestrictedAmount: 3,
		TransferStatus:      TransferPending,
		ReceiptStatus:       ReceiptPending,
	}

	rec.Fail(TransferAmountExceedsGameLimit)

	require.Zero(t, rec.Total())
	require.Equal(t, TransferAmountExceedsGameLimit, rec.TransferStatus)
	require.Equal(t, NoReceiptRequested, rec.ReceiptStatus)
	require.True(t, rec.TransferStatus.IsTerminal())
}

func TestTransferRecord_CloneDoesNotShareReceiptData(t *testing.T) {
	rec := TransferRecord{ReceiptData: []byte{1, 2, 3}}
	clone := rec.Clone()
	clone.ReceiptData[0] = 9

	require.Equal(t, byte(1), rec.ReceiptData[0])
}

func TestTransferType_Classes(t *testing.T) {
	for _, tt := range TransferTypes {
		require.NotEqual(t, tt.IsToGame(), tt.IsFromGame(), tt.String())
	}

	require.True(t, HostToGameDebitTicket.IsTicket())
	require.True(t, HostToGameDebitTicket.IsDebit())
	require.False(t, HostToGameDebitTicket.CreditsMeter())
	require.True(t, HostToGameBonusJackpot.IsBonus())
	require.False(t, HostToGameBonusJackpot.SupportsReceipt())
	require.True(t, GameToHostInHouseWin.SupportsReceipt())
}

func TestStatus_Terminal(t *testing.T) {
	require.False(t, TransferPending.IsTerminal())
	require.False(t, NoTransferInfoAvailable.IsTerminal())
	require.True(t, UnexpectedError.IsTerminal())
	require.True(t, PartialTransferSuccessful.IsSuccess())
	require.Equal(t, "status 0x77", TransferStatus(0x77).String())
}

func TestAmounts(t *testing.T) {
	a := Amounts{Cashable: 10, Restricted: 5}
	b := Amounts{Cashable: 3, Restricted: 7, NonRestricted: 1}

	require.Equal(t, Amounts{Cashable: 3, Restricted: 5}, a.Min(b))
	require.False(t, a.Covers(b))
	require.Equal(t, uint64(26), a.Add(b).Total())
}
