package dto

import "fmt"

// TransferStatus is the SAS transfer status code.
type TransferStatus byte

const (
	FullTransferSuccessful                               TransferStatus = 0x00
	PartialTransferSuccessful                            TransferStatus = 0x01
	TransferPending                                      TransferStatus = 0x40
	TransferCancelledByHost                              TransferStatus = 0x80
	TransactionIdNotUnique                               TransferStatus = 0x81
	NotAValidTransferFunction                            TransferStatus = 0x82
	NotAValidTransferAmountOrExpirationDate              TransferStatus = 0x83
	TransferAmountExceedsGameLimit                       TransferStatus = 0x84
	TransferAmountNotEvenMultiple                        TransferStatus = 0x85
	GamingMachineUnableToPerformPartial                  TransferStatus = 0x86
	GamingMachineUnableToPerformTransfer                 TransferStatus = 0x87
	GamingMachineNotRegistered                           TransferStatus = 0x88
	RegistrationKeyDoesNotMatch                          TransferStatus = 0x89
	NoPosId                                              TransferStatus = 0x8A
	NoWonCreditsAvailableForCashOut                      TransferStatus = 0x8B
	NoGamingMachineDenomination                          TransferStatus = 0x8C
	ExpirationNotValidForTicket                          TransferStatus = 0x8D
	TransferToTicketDeviceNotAvailable                   TransferStatus = 0x8E
	UnableToAcceptTransferDueToExistingRestrictedAmounts TransferStatus = 0x8F
	UnableToPrintTransactionReceipt                      TransferStatus = 0x90
	InsufficientDataToPrintTransactionReceipt            TransferStatus = 0x91
	TransactionReceiptNotAllowedForTransferType          TransferStatus = 0x92
	AssetNumberZeroOrDoesNotMatch                        TransferStatus = 0x93
	GamingMachineNotLocked                               TransferStatus = 0x94
	TransactionIdNotValid                                TransferStatus = 0x95
	UnexpectedError                                      TransferStatus = 0x9F
	NotCompatibleWithCurrentTransfer                     TransferStatus = 0xC0
	UnsupportedTransferCode                              TransferStatus = 0xC1
	NoTransferInfoAvailable                              TransferStatus = 0xFF
)

var statusNames = map[TransferStatus]string{
	FullTransferSuccessful:                  "full transfer successful",
	PartialTransferSuccessful:               "partial transfer successful",
	TransferPending:                         "transfer pending",
	TransferCancelledByHost:                 "transfer cancelled by host",
	TransactionIdNotUnique:                  "transaction id not unique",
	NotAValidTransferFunction:               "not a valid transfer function",
	NotAValidTransferAmountOrExpirationDate: "not a valid transfer amount or expiration",
	TransferAmountExceedsGameLimit:          "transfer amount exceeds game limit",
	TransferAmountNotEvenMultiple:           "transfer amount not even multiple of denomination",
	GamingMachineUnableToPerformPartial:     "unable to perform partial transfer",
	GamingMachineUnableToPerformTransfer:    "unable to perform transfer",
	GamingMachineNotRegistered:              "gaming machine not registered",
	RegistrationKeyDoesNotMatch:             "registration key does not match",
	NoPosId:                                 "no pos id",
	NoWonCreditsAvailableForCashOut:         "no won credits available for cashout",
	NoGamingMachineDenomination:             "no gaming machine denomination",
	ExpirationNotValidForTicket:             "expiration not valid for ticket",
	TransferToTicketDeviceNotAvailable:      "ticket device not available",
	UnableToAcceptTransferDueToExistingRestrictedAmounts: "existing restricted amounts from different pool",
	UnableToPrintTransactionReceipt:                      "unable to print transaction receipt",
	InsufficientDataToPrintTransactionReceipt:            "insufficient data to print receipt",
	TransactionReceiptNotAllowedForTransferType:          "receipt not allowed for transfer type",
	AssetNumberZeroOrDoesNotMatch:                        "asset number zero or does not match",
	GamingMachineNotLocked:                               "gaming machine not locked",
	TransactionIdNotValid:                                "transaction id not valid",
	UnexpectedError:                                      "unexpected error",
	NotCompatibleWithCurrentTransfer:                     "not compatible with current transfer",
	UnsupportedTransferCode:                              "unsupported transfer code",
	NoTransferInfoAvailable:                              "no transfer info available",
}

func (s TransferStatus) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("status 0x%02X", byte(s))
}

func (s TransferStatus) IsSuccess() bool {
	return s == FullTransferSuccessful || s == PartialTransferSuccessful
}

func (s TransferStatus) IsPending() bool {
	return s == TransferPending
}

// IsTerminal reports whether s is a final outcome. Pending and "no info"
// are the only non-terminal values.
func (s TransferStatus) IsTerminal() bool {
	return s != TransferPending && s != NoTransferInfoAvailable
}
