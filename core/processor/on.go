package processor

import (
	"context"

	"github.com/vadiminshakov/sasaft/core/dto"
	"github.com/vadiminshakov/sasaft/core/guard"
	"github.com/vadiminshakov/sasaft/core/provider"
)

// NewInHouseToGame credits the machine from the host's in-house account.
func NewInHouseToGame(d Deps) Processor {
	return &typed{kind: provider.KindOn, guards: func(ctx context.Context) *guard.Chain {
		return guard.NewChain(
			featureGuard(d, func(f dto.Features) bool { return f.InHouseToGame }),
			registrationGuard(d, false),
			expirationGuard(),
			nonZeroGuard(),
			transactionIDGuard(d),
			limitGuard(ctx, d),
			poolGuard(ctx, d),
			receiptTypeGuard(),
		)
	}}
}

// NewDebitToGame credits the machine from the player's debit account.
// Debit transfers are cashable only and need a registered POS id.
func NewDebitToGame(d Deps) Processor {
	return &typed{kind: provider.KindOn, guards: func(ctx context.Context) *guard.Chain {
		return guard.NewChain(
			featureGuard(d, func(f dto.Features) bool { return f.DebitToGame }),
			registrationGuard(d, true),
			posIDGuard(d),
			cashableOnlyGuard(),
			nonZeroGuard(),
			transactionIDGuard(d),
			limitGuard(ctx, d),
			receiptTypeGuard(),
		)
	}}
}
