package processor

import (
	"context"

	"github.com/vadiminshakov/sasaft/core/dto"
	"github.com/vadiminshakov/sasaft/core/guard"
	"github.com/vadiminshakov/sasaft/core/provider"
)

// NewInHouseToTicket prints a cashout ticket funded by the host's in-house account.
func NewInHouseToTicket(d Deps) Processor {
	return &typed{kind: provider.KindOn, guards: func(ctx context.Context) *guard.Chain {
		return guard.NewChain(
			featureGuard(d, func(f dto.Features) bool { return f.TransferToTicket && f.InHouseToGame }),
			registrationGuard(d, false),
			noRestrictedGuard(),
			ticketExpirationGuard(),
			nonZeroGuard(),
			transactionIDGuard(d),
			limitGuard(ctx, d),
			receiptTypeGuard(),
			ticketPrinterGuard(d),
		)
	}}
}

// NewDebitToTicket prints a cashout ticket funded by the player's debit account.
func NewDebitToTicket(d Deps) Processor {
	return &typed{kind: provider.KindOn, guards: func(ctx context.Context) *guard.Chain {
		return guard.NewChain(
			featureGuard(d, func(f dto.Features) bool { return f.TransferToTicket && f.DebitToGame }),
			registrationGuard(d, true),
			posIDGuard(d),
			cashableOnlyGuard(),
			ticketExpirationGuard(),
			nonZeroGuard(),
			transactionIDGuard(d),
			limitGuard(ctx, d),
			receiptTypeGuard(),
			ticketPrinterGuard(d),
		)
	}}
}
