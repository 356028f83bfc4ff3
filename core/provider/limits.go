package provider

import (
	"math"

	"github.com/vadiminshakov/sasaft/core/dto"
)

// TransferOnLimit computes how much may be transferred onto the machine:
// max(0, min(featureLimit, creditLimit) - relevantBalance). A zero credit
// limit in the features means no credit limit.
//
// When the pending transfer carries restricted credits, restricted credits
// held for a different pool are left out of the relevant balance.
func TransferOnLimit(f dto.Features, bal dto.Balances, poolID uint16, restricted bool) uint64 {
	ceiling := min(f.TransferLimit, creditLimit(f))

	relevant := bal.Cashable + bal.NonRestricted
	if !restricted || bal.Restricted == 0 || bal.PoolID == poolID {
		relevant += bal.Restricted
	}

	if relevant >= ceiling {
		return 0
	}
	return ceiling - relevant
}

// TransferOffLimit is the largest single transfer off the machine.
func TransferOffLimit(f dto.Features) uint64 {
	return f.TransferLimit
}

func creditLimit(f dto.Features) uint64 {
	if f.CreditLimit == 0 {
		return math.MaxUint64
	}
	return f.CreditLimit
}

// limitFor returns the limit that applies to rec against bal.
func limitFor(f dto.Features, bal dto.Balances, rec *dto.TransferRecord) uint64 {
	if rec.TransferType.IsFromGame() {
		return TransferOffLimit(f)
	}
	if !rec.TransferType.CreditsMeter() {
		// tickets never reach the credit meter
		return f.TransferLimit
	}
	return TransferOnLimit(f, bal, rec.PoolID, rec.RestrictedAmount > 0)
}
