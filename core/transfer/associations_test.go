package transfer

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vadiminshakov/sasaft/core/dto"
	"github.com/vadiminshakov/sasaft/mocks"
	"go.uber.org/mock/gomock"
)

var allFeatures = dto.Features{
	InHouseToGame:       true,
	InHouseFromGame:     true,
	BonusToGame:         true,
	WinToHost:           true,
	DebitToGame:         true,
	PartialToHost:       true,
	TransferToTicket:    true,
	CustomTicketData:    true,
	TransactionReceipts: true,
}

func TestAvailableTransfers(t *testing.T) {
	s := State{Features: allFeatures, PrinterReady: true, CashOutWinPending: true}
	require.Equal(t, dto.AvailableTransfers(0x1F), AvailableTransfers(s))

	s.Disable.TransferOnTilt = true
	require.Equal(t, dto.AvailableFromGame|dto.AvailableWinAmountPendingCashout, AvailableTransfers(s))

	s.Disable = dto.DisableFlags{TransferOff: true}
	s.PrinterReady = false
	s.CashOutWinPending = false
	require.Equal(t, dto.AvailableToGame|dto.AvailableBonusToGame, AvailableTransfers(s))

	require.Zero(t, AvailableTransfers(State{}))
}

func TestAftStatus(t *testing.T) {
	s := State{Features: allFeatures, PrinterReady: true, Registered: true}
	require.Equal(t, dto.AftStatus(0xFF), AftStatus(s))

	s.PrinterReady = false
	s.Registered = false
	require.Equal(t, dto.AftStatus(0xF6), AftStatus(s))

	require.Zero(t, AftStatus(State{}))
}

func TestConditionsMet(t *testing.T) {
	s := State{Features: dto.Features{InHouseToGame: true, InHouseFromGame: true}}

	require.True(t, ConditionsMet(s, 0))
	require.True(t, ConditionsMet(s, dto.ConditionToGameOk|dto.ConditionFromGameOk))
	require.False(t, ConditionsMet(s, dto.ConditionToPrinterOk))
	require.False(t, ConditionsMet(s, dto.ConditionBonusToGameOk))
	require.False(t, ConditionsMet(s, 0x80))

	s.Features.BonusToGame = true
	require.True(t, ConditionsMet(s, dto.ConditionBonusToGameOk))
}

type staticFeatures dto.Features

func (s staticFeatures) Features() dto.Features { return dto.Features(s) }

type staticDisable dto.DisableFlags

func (s staticDisable) Flags() dto.DisableFlags { return dto.DisableFlags(s) }

type registered bool

func (r registered) IsRegistered() bool { return bool(r) }

func TestAssociations_Snapshot(t *testing.T) {
	ctrl := gomock.NewController(t)
	printer := mocks.NewMockPrinter(ctrl)
	cashout := mocks.NewMockHostCashout(ctrl)

	printer.EXPECT().CanPrint().Return(true).AnyTimes()
	cashout.EXPECT().HostCashOutPending().Return(false).AnyTimes()
	cashout.EXPECT().CashOutWinPending().Return(true).AnyTimes()
	cashout.EXPECT().Status().Return(dto.CashoutControlledByHost | dto.CashoutToHostEnabled).AnyTimes()

	a := NewAssociations(Sources{
		Features:     staticFeatures(allFeatures),
		Printer:      printer,
		Registration: registered(true),
		Disable:      staticDisable{TransferOnOverlay: true},
		Cashout:      cashout,
	})

	require.Equal(t, dto.AvailableFromGame|dto.AvailableWinAmountPendingCashout, a.GetAvailableTransfers())
	require.Equal(t, dto.AftStatus(0xFF), a.GetAftStatus())
	require.Equal(t, dto.CashoutControlledByHost|dto.CashoutToHostEnabled, a.GetHostCashoutStatus())
	require.False(t, a.TransferConditionsMet(dto.ConditionToGameOk))
	require.True(t, a.TransferConditionsMet(dto.ConditionFromGameOk))
}

func TestAssociations_OptionalSources(t *testing.T) {
	a := NewAssociations(Sources{Features: staticFeatures(dto.Features{InHouseToGame: true})})

	require.Equal(t, dto.AvailableToGame, a.GetAvailableTransfers())
	require.Equal(t, dto.AftInHouseEnabled|dto.AftAnyEnabled, a.GetAftStatus())
	require.Zero(t, a.GetHostCashoutStatus())
}
