package processor

import (
	"context"

	"github.com/vadiminshakov/sasaft/core/dto"
	"github.com/vadiminshakov/sasaft/core/guard"
	"github.com/vadiminshakov/sasaft/core/provider"
)

func NewBonusCoinOut(d Deps) Processor {
	return newBonus(d)
}

func NewBonusJackpot(d Deps) Processor {
	return newBonus(d)
}

// newBonus awards a bonus. Bonus awards never carry restricted credits and
// the game decides whether a bonus may be paid right now.
func newBonus(d Deps) Processor {
	return &typed{kind: provider.KindBonus, guards: func(ctx context.Context) *guard.Chain {
		return guard.NewChain(
			featureGuard(d, func(f dto.Features) bool { return f.BonusToGame }),
			registrationGuard(d, false),
			noRestrictedGuard(),
			nonZeroGuard(),
			transactionIDGuard(d),
			limitGuard(ctx, d),
			bonusAllowedGuard(d),
			receiptTypeGuard(),
		)
	}}
}

func bonusAllowedGuard(d Deps) guard.Guard {
	return guard.Guard{Name: "bonus allowed", Check: func(rec *dto.TransferRecord) guard.Result {
		if d.BonusAllowed == nil {
			return guard.Ok()
		}
		return guard.Check(!d.BonusAllowed(*rec), dto.GamingMachineUnableToPerformTransfer, "bonus not allowed now")
	}}
}
