package transfer

import (
	"github.com/vadiminshakov/sasaft/core/dto"
	"github.com/vadiminshakov/sasaft/core/external"
)

// State is a snapshot of everything the machine's transfer capabilities
// depend on.
type State struct {
	Features           dto.Features
	PrinterReady       bool
	Registered         bool
	Disable            dto.DisableFlags
	HostCashOutPending bool
	CashOutWinPending  bool
	HostCashout        dto.HostCashoutStatus
}

// AvailableTransfers computes the transfers the machine can perform in s.
func AvailableTransfers(s State) dto.AvailableTransfers {
	var out dto.AvailableTransfers
	f := s.Features
	onOpen := !s.Disable.TransferOnDisabled()

	if onOpen && (f.InHouseToGame || f.DebitToGame) {
		out |= dto.AvailableToGame
	}
	if !s.Disable.TransferOff && (f.InHouseFromGame || f.WinToHost) {
		out |= dto.AvailableFromGame
	}
	if onOpen && f.TransferToTicket && s.PrinterReady {
		out |= dto.AvailableToPrinter
	}
	if f.WinToHost && s.CashOutWinPending {
		out |= dto.AvailableWinAmountPendingCashout
	}
	if onOpen && f.BonusToGame {
		out |= dto.AvailableBonusToGame
	}
	return out
}

// AftStatus computes the capability bits reported to the host.
func AftStatus(s State) dto.AftStatus {
	var out dto.AftStatus
	f := s.Features

	if s.PrinterReady && f.TransactionReceipts {
		out |= dto.AftPrinterAvailableForReceipts
	}
	if f.PartialToHost {
		out |= dto.AftPartialToHostAllowed
	}
	if f.CustomTicketData {
		out |= dto.AftCustomTicketDataSupported
	}
	if s.Registered {
		out |= dto.AftRegistered
	}
	if f.InHouseToGame || f.InHouseFromGame {
		out |= dto.AftInHouseEnabled
	}
	if f.BonusToGame {
		out |= dto.AftBonusEnabled
	}
	if f.DebitToGame {
		out |= dto.AftDebitEnabled
	}
	if f.AnyEnabled() {
		out |= dto.AftAnyEnabled
	}
	return out
}

var conditionBits = map[dto.TransferConditions]dto.AvailableTransfers{
	dto.ConditionToGameOk:      dto.AvailableToGame,
	dto.ConditionFromGameOk:    dto.AvailableFromGame,
	dto.ConditionToPrinterOk:   dto.AvailableToPrinter,
	dto.ConditionBonusToGameOk: dto.AvailableBonusToGame,
}

// ConditionsMet reports whether every condition in required holds in s.
// Unknown condition bits are never satisfied.
func ConditionsMet(s State, required dto.TransferConditions) bool {
	available := AvailableTransfers(s)
	for cond, bit := range conditionBits {
		if required&cond != 0 && available&bit == 0 {
			return false
		}
		required &^= cond
	}
	return required == 0
}

type Registered interface {
	IsRegistered() bool
}

// Sources are the live inputs of the association snapshot. Printer,
// Disable and Registration may be nil.
type Sources struct {
	Features     external.FeatureSource
	Printer      external.Printer
	Registration Registered
	Disable      external.DisableSource
	Cashout      external.HostCashout
}

// Associations answers capability queries from the live machine state.
// Every method takes a fresh snapshot and has no side effects.
type Associations struct {
	src Sources
}

func NewAssociations(src Sources) *Associations {
	return &Associations{src: src}
}

func (a *Associations) Snapshot() State {
	s := State{Features: a.src.Features.Features()}
	if a.src.Printer != nil {
		s.PrinterReady = a.src.Printer.CanPrint()
	}
	if a.src.Registration != nil {
		s.Registered = a.src.Registration.IsRegistered()
	}
	if a.src.Disable != nil {
		s.Disable = a.src.Disable.Flags()
	}
	if a.src.Cashout != nil {
		s.HostCashOutPending = a.src.Cashout.HostCashOutPending()
		s.CashOutWinPending = a.src.Cashout.CashOutWinPending()
		s.HostCashout = a.src.Cashout.Status()
	}
	return s
}

func (a *Associations) GetAvailableTransfers() dto.AvailableTransfers {
	return AvailableTransfers(a.Snapshot())
}

func (a *Associations) GetAftStatus() dto.AftStatus {
	return AftStatus(a.Snapshot())
}

func (a *Associations) GetHostCashoutStatus() dto.HostCashoutStatus {
	return a.Snapshot().HostCashout
}

func (a *Associations) TransferConditionsMet(required dto.TransferConditions) bool {
	return ConditionsMet(a.Snapshot(), required)
}
