// Package dto defines the AFT records exchanged between the long-poll
// handlers, the dispatcher, the processors and the history buffer.
//
// Enum values are the SAS wire values, so a record can be encoded without
// translation tables.
package dto

import (
	"time"
)

// TransferType identifies direction and fund class of a transfer.
type TransferType byte

const (
	HostToGameInHouse       TransferType = 0x00
	HostToGameBonusCoinOut  TransferType = 0x10
	HostToGameBonusJackpot  TransferType = 0x11
	HostToGameInHouseTicket TransferType = 0x20
	HostToGameDebit         TransferType = 0x40
	HostToGameDebitTicket   TransferType = 0x60
	GameToHostInHouse       TransferType = 0x80
	GameToHostInHouseWin    TransferType = 0x90
)

// TransferTypes lists every supported transfer type.
var TransferTypes = []TransferType{
	HostToGameInHouse,
	HostToGameBonusCoinOut,
	HostToGameBonusJackpot,
	HostToGameInHouseTicket,
	HostToGameDebit,
	HostToGameDebitTicket,
	GameToHostInHouse,
	GameToHostInHouseWin,
}

// IsToGame reports whether money flows from the host into the machine or a ticket.
func (t TransferType) IsToGame() bool {
	return t < 0x80
}

// IsFromGame reports whether money flows from the machine to the host.
func (t TransferType) IsFromGame() bool {
	return t >= 0x80
}

func (t TransferType) IsTicket() bool {
	return t == HostToGameInHouseTicket || t == HostToGameDebitTicket
}

func (t TransferType) IsBonus() bool {
	return t == HostToGameBonusCoinOut || t == HostToGameBonusJackpot
}

func (t TransferType) IsDebit() bool {
	return t == HostToGameDebit || t == HostToGameDebitTicket
}

// CreditsMeter reports whether the transfer moves credits onto the machine's credit meter.
func (t TransferType) CreditsMeter() bool {
	return t.IsToGame() && !t.IsTicket()
}

// SupportsReceipt reports whether a transaction receipt may be requested for t.
func (t TransferType) SupportsReceipt() bool {
	switch t {
	case HostToGameInHouse, HostToGameDebit, GameToHostInHouse, GameToHostInHouseWin:
		return true
	}
	return false
}

func (t TransferType) String() string {
	switch t {
	case HostToGameInHouse:
		return "in-house to game"
	case HostToGameBonusCoinOut:
		return "bonus coin out"
	case HostToGameBonusJackpot:
		return "bonus jackpot"
	case HostToGameInHouseTicket:
		return "in-house to ticket"
	case HostToGameDebit:
		return "debit to game"
	case HostToGameDebitTicket:
		return "debit to ticket"
	case GameToHostInHouse:
		return "in-house to host"
	case GameToHostInHouseWin:
		return "win to host"
	}
	return "unknown"
}

// TransferCode is the host's request kind in long poll 72.
type TransferCode byte

const (
	TransferFullOnly              TransferCode = 0x00
	TransferPartialAllowed        TransferCode = 0x01
	TransferCancel                TransferCode = 0x80
	TransferInterrogateStatusOnly TransferCode = 0xFE
	TransferInterrogate           TransferCode = 0xFF
)

// ReceiptStatus reports the state of a transaction receipt.
type ReceiptStatus byte

const (
	ReceiptPrinted            ReceiptStatus = 0x00
	ReceiptPrintingInProgress ReceiptStatus = 0x20
	ReceiptPending            ReceiptStatus = 0x40
	NoReceiptRequested        ReceiptStatus = 0xFF
)

// RegistrationKey is the 20 byte key shared by host and machine. All zeros
// means any host is accepted.
type RegistrationKey [20]byte

func (k RegistrationKey) IsZero() bool {
	return k == RegistrationKey{}
}

// Amounts are transfer or balance values per fund class, in cents.
type Amounts struct {
	Cashable      uint64 `json:"cashable"`
	Restricted    uint64 `json:"restricted"`
	NonRestricted uint64 `json:"non_restricted"`
}

func (a Amounts) Total() uint64 {
	return a.Cashable + a.Restricted + a.NonRestricted
}

func (a Amounts) Add(b Amounts) Amounts {
	return Amounts{
		Cashable:      a.Cashable + b.Cashable,
		Restricted:    a.Restricted + b.Restricted,
		NonRestricted: a.NonRestricted + b.NonRestricted,
	}
}

// Covers reports whether every class of a is at least the matching class of b.
func (a Amounts) Covers(b Amounts) bool {
	return a.Cashable >= b.Cashable && a.Restricted >= b.Restricted && a.NonRestricted >= b.NonRestricted
}

// Min returns the per-class minimum of a and b.
func (a Amounts) Min(b Amounts) Amounts {
	return Amounts{
		Cashable:      min(a.Cashable, b.Cashable),
		Restricted:    min(a.Restricted, b.Restricted),
		NonRestricted: min(a.NonRestricted, b.NonRestricted),
	}
}

// Balances is the ledger view of the machine's credit meters.
type Balances struct {
	Amounts
	PoolID               uint16 `json:"pool_id"`
	RestrictedExpiration uint32 `json:"restricted_expiration"`
}

// TransferRecord is one AFT transfer as negotiated with the host, and the
// unit stored in the transaction history.
type TransferRecord struct {
	TransactionIndex    uint8           `json:"transaction_index"`
	TransferCode        TransferCode    `json:"transfer_code"`
	TransferType        TransferType    `json:"transfer_type"`
	TransferStatus      TransferStatus  `json:"transfer_status"`
	ReceiptStatus       ReceiptStatus   `json:"receipt_status"`
	CashableAmount      uint64          `json:"cashable_amount"`
	RestrictedAmount    uint64          `json:"restricted_amount"`
	NonRestrictedAmount uint64          `json:"non_restricted_amount"`
	TransferFlags       TransferFlags   `json:"transfer_flags"`
	AssetNumber         uint32          `json:"asset_number"`
	RegistrationKey     RegistrationKey `json:"registration_key"`
	TransactionID       string          `json:"transaction_id"`
	// Expiration is MMDDYYYY or 0000NNNN (days).
	Expiration uint32 `json:"expiration"`
	PoolID     uint16 `json:"pool_id"`
	// ReceiptData is the raw receipt data block from the host.
	ReceiptData []byte `json:"receipt_data,omitempty"`
	// LockTimeout is in hundredths of a second.
	LockTimeout             uint16    `json:"lock_timeout"`
	TransactionTime         time.Time `json:"transaction_time"`
	CumulativeCashable      uint64    `json:"cumulative_cashable"`
	CumulativeRestricted    uint64    `json:"cumulative_restricted"`
	CumulativeNonRestricted uint64    `json:"cumulative_non_restricted"`
}

func (r *TransferRecord) Amounts() Amounts {
	return Amounts{Cashable: r.CashableAmount, Restricted: r.RestrictedAmount, NonRestricted: r.NonRestrictedAmount}
}

func (r *TransferRecord) SetAmounts(a Amounts) {
	r.CashableAmount = a.Cashable
	r.RestrictedAmount = a.Restricted
	r.NonRestrictedAmount = a.NonRestricted
}

func (r *TransferRecord) Total() uint64 {
	return r.CashableAmount + r.RestrictedAmount + r.NonRestrictedAmount
}

func (r *TransferRecord) ZeroAmounts() {
	r.CashableAmount = 0
	r.RestrictedAmount = 0
	r.NonRestrictedAmount = 0
}

// Fail puts the record in a terminal failure state. Failed transfers never
// report amounts.
func (r *TransferRecord) Fail(status TransferStatus) {
	r.TransferStatus = status
	r.ReceiptStatus = NoReceiptRequested
	r.ZeroAmounts()
}

func (r *TransferRecord) ReceiptRequested() bool {
	return r.TransferFlags.Has(TransactionReceiptRequest)
}

// PartialAllowed reports whether the host accepts less than the requested amount.
func (r *TransferRecord) PartialAllowed() bool {
	return r.TransferCode == TransferPartialAllowed
}

// Clone returns a deep copy.
func (r TransferRecord) Clone() TransferRecord {
	if r.ReceiptData != nil {
		data := make([]byte, len(r.ReceiptData))
		copy(data, r.ReceiptData)
		r.ReceiptData = data
	}
	return r
}

// NoTransferInfo returns the synthetic record reported for an empty history slot.
func NoTransferInfo(index uint8) TransferRecord {
	return TransferRecord{
		TransactionIndex: index,
		TransferStatus:   NoTransferInfoAvailable,
		ReceiptStatus:    NoReceiptRequested,
	}
}
