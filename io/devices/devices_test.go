package devices

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vadiminshakov/sasaft/core/dto"
)

func TestPrinter(t *testing.T) {
	p := NewPrinter(false)
	require.False(t, p.CanPrint())
	require.ErrorIs(t, p.PrintReceipt(context.Background(), []string{"x"}), ErrPrinterOffline)
	require.ErrorIs(t, p.PrintTicket(context.Background(), 100, 0, "T"), ErrPrinterOffline)

	p.SetOnline(true)
	require.NoError(t, p.PrintReceipt(context.Background(), []string{"a", "b"}))
	require.NoError(t, p.PrintTicket(context.Background(), 100, 0, "T"))
	require.Equal(t, []string{"a", "b"}, p.LastReceipt())
	require.Equal(t, 1, p.Tickets())
}

func TestHostCashout(t *testing.T) {
	h := NewHostCashout()

	h.ApplyFlags(dto.HostCashoutEnable)
	require.Zero(t, h.Status())

	h.ApplyFlags(dto.HostCashoutEnableControl | dto.HostCashoutEnable)
	require.Equal(t, dto.CashoutControlledByHost|dto.CashoutToHostEnabled, h.Status())

	h.AwardWin(300)
	h.AwardWin(200)
	h.RequestCashout()
	require.True(t, h.CashOutWinPending())
	require.True(t, h.HostCashOutPending())
	require.Equal(t, uint64(500), h.PendingWinAmount())

	h.ClearPending()
	require.False(t, h.CashOutWinPending())
	require.False(t, h.HostCashOutPending())
	require.Zero(t, h.PendingWinAmount())
}

func TestAutoPlay(t *testing.T) {
	stuck := NewAutoPlay(false)
	stuck.SetActive(true)
	require.False(t, stuck.End())
	require.True(t, stuck.Active())

	a := NewAutoPlay(true)
	a.SetActive(true)
	require.True(t, a.End())
	require.False(t, a.Active())
}

func TestTicketing(t *testing.T) {
	tk := NewTicketing(30, map[uint16]uint32{2: 7})
	require.Equal(t, uint32(7), tk.RestrictedExpiration(2))
	require.Equal(t, uint32(30), tk.RestrictedExpiration(9))
}
