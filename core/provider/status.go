package provider

import (
	"github.com/pkg/errors"
	"github.com/vadiminshakov/sasaft/core/dto"
)

var errInvalidTransition = errors.New("invalid transfer status transition")

var terminalStatuses = []dto.TransferStatus{
	dto.FullTransferSuccessful,
	dto.PartialTransferSuccessful,
	dto.TransferCancelledByHost,
	dto.TransactionIdNotUnique,
	dto.NotAValidTransferFunction,
	dto.NotAValidTransferAmountOrExpirationDate,
	dto.TransferAmountExceedsGameLimit,
	dto.TransferAmountNotEvenMultiple,
	dto.GamingMachineUnableToPerformPartial,
	dto.GamingMachineUnableToPerformTransfer,
	dto.GamingMachineNotRegistered,
	dto.RegistrationKeyDoesNotMatch,
	dto.NoPosId,
	dto.NoWonCreditsAvailableForCashOut,
	dto.NoGamingMachineDenomination,
	dto.ExpirationNotValidForTicket,
	dto.TransferToTicketDeviceNotAvailable,
	dto.UnableToAcceptTransferDueToExistingRestrictedAmounts,
	dto.UnableToPrintTransactionReceipt,
	dto.InsufficientDataToPrintTransactionReceipt,
	dto.TransactionReceiptNotAllowedForTransferType,
	dto.AssetNumberZeroOrDoesNotMatch,
	dto.GamingMachineNotLocked,
	dto.TransactionIdNotValid,
	dto.UnexpectedError,
	dto.NotCompatibleWithCurrentTransfer,
	dto.UnsupportedTransferCode,
}

// transitions lists the statuses reachable from each status. Only a pending
// transfer may change status; terminal statuses have no entry.
var transitions = func() map[dto.TransferStatus]map[dto.TransferStatus]struct{} {
	fromPending := make(map[dto.TransferStatus]struct{}, len(terminalStatuses))
	for _, s := range terminalStatuses {
		fromPending[s] = struct{}{}
	}
	return map[dto.TransferStatus]map[dto.TransferStatus]struct{}{
		dto.TransferPending: fromPending,
	}
}()

func transition(from, to dto.TransferStatus) error {
	if allowed, ok := transitions[from]; ok {
		if _, ok = allowed[to]; ok {
			return nil
		}
	}
	return errors.Wrapf(errInvalidTransition, "%s -> %s", from, to)
}
