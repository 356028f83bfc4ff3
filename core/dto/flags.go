package dto

// TransferFlags are the host's per-transfer option bits.
type TransferFlags byte

const (
	HostCashoutEnableControl   TransferFlags = 0x01
	HostCashoutEnable          TransferFlags = 0x02
	HostCashoutMode            TransferFlags = 0x04
	CashoutFromGameRequest     TransferFlags = 0x08
	UseCustomTicketData        TransferFlags = 0x20
	AcceptTransferOnlyIfLocked TransferFlags = 0x40
	TransactionReceiptRequest  TransferFlags = 0x80
)

func (f TransferFlags) Has(bit TransferFlags) bool {
	return f&bit != 0
}

// LockCode is the host's request kind in long poll 74.
type LockCode byte

const (
	RequestLock                    LockCode = 0x00
	CancelLockOrPendingLockRequest LockCode = 0x80
	InterrogateCurrentStatusOnly   LockCode = 0xFF
)

// LockStatus is reported back to the host in long poll 74.
type LockStatus byte

const (
	GameLocked      LockStatus = 0x00
	GameLockPending LockStatus = 0x40
	GameNotLocked   LockStatus = 0xFF
)

func (s LockStatus) String() string {
	switch s {
	case GameLocked:
		return "locked"
	case GameLockPending:
		return "lock pending"
	case GameNotLocked:
		return "not locked"
	}
	return "unknown"
}

// TransferConditions are the conditions a host asks to hold while locked.
type TransferConditions byte

const (
	ConditionToGameOk      TransferConditions = 0x01
	ConditionFromGameOk    TransferConditions = 0x02
	ConditionToPrinterOk   TransferConditions = 0x04
	ConditionBonusToGameOk TransferConditions = 0x08
)

// AvailableTransfers is the bitmask of transfers the machine can perform now.
// Bonus sits at 0x10 here, not 0x08 as in TransferConditions.
type AvailableTransfers byte

const (
	AvailableToGame                  AvailableTransfers = 0x01
	AvailableFromGame                AvailableTransfers = 0x02
	AvailableToPrinter               AvailableTransfers = 0x04
	AvailableWinAmountPendingCashout AvailableTransfers = 0x08
	AvailableBonusToGame             AvailableTransfers = 0x10
)

// AftStatus is the machine capability bitmask reported in long poll 74.
type AftStatus byte

const (
	AftPrinterAvailableForReceipts AftStatus = 0x01
	AftPartialToHostAllowed        AftStatus = 0x02
	AftCustomTicketDataSupported   AftStatus = 0x04
	AftRegistered                  AftStatus = 0x08
	AftInHouseEnabled              AftStatus = 0x10
	AftBonusEnabled                AftStatus = 0x20
	AftDebitEnabled                AftStatus = 0x40
	AftAnyEnabled                  AftStatus = 0x80
)

// HostCashoutStatus reports how cashouts are routed to the host.
type HostCashoutStatus byte

const (
	CashoutControlledByHost HostCashoutStatus = 0x01
	CashoutToHostEnabled    HostCashoutStatus = 0x02
	CashoutHardMode         HostCashoutStatus = 0x04
)

// DisableFlags are the funds-transfer-disable signals. Each one gates on its own.
type DisableFlags struct {
	TransferOff       bool
	TransferOnInGame  bool
	TransferOnTilt    bool
	TransferOnOverlay bool
}

// TransferOnDisabled reports whether any of the transfer-on gates is closed.
func (f DisableFlags) TransferOnDisabled() bool {
	return f.TransferOnInGame || f.TransferOnTilt || f.TransferOnOverlay
}

// Features are the jurisdiction's AFT feature switches and limits.
type Features struct {
	InHouseToGame       bool
	InHouseFromGame     bool
	BonusToGame         bool
	WinToHost           bool
	DebitToGame         bool
	PartialToHost       bool
	TransferToTicket    bool
	CustomTicketData    bool
	TransactionReceipts bool
	// RequireRegistration makes in-house transfers demand a registered machine.
	RequireRegistration bool
	// TransferLimit is the largest single transfer, in cents.
	TransferLimit uint64
	// CreditLimit is the largest credit meter value, in cents.
	CreditLimit uint64
}

// AnyEnabled reports whether at least one transfer class is switched on.
func (f Features) AnyEnabled() bool {
	return f.InHouseToGame || f.InHouseFromGame || f.BonusToGame || f.WinToHost || f.DebitToGame
}
