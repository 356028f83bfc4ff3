// Package guard evaluates ordered transfer preconditions.
//
// A Chain runs its guards in registration order and stops at the first
// failure. The failing guard decides the terminal status of the transfer.
package guard

import (
	log "github.com/sirupsen/logrus"
	"github.com/vadiminshakov/sasaft/core/dto"
)

// Result is the outcome of a single guard: Ok, or Fail with a status.
type Result struct {
	ok     bool
	status dto.TransferStatus
	reason string
}

// Ok lets the transfer continue to the next guard.
func Ok() Result {
	return Result{ok: true}
}

// Fail stops the chain with status.
func Fail(status dto.TransferStatus, reason string) Result {
	return Result{status: status, reason: reason}
}

// Check returns Fail(status, reason) when failed is true, Ok otherwise.
func Check(failed bool, status dto.TransferStatus, reason string) Result {
	if failed {
		return Fail(status, reason)
	}
	return Ok()
}

func (r Result) IsOk() bool {
	return r.ok
}

func (r Result) Status() dto.TransferStatus {
	return r.status
}

func (r Result) Reason() string {
	return r.reason
}

// Guard is a named precondition over a transfer record.
type Guard struct {
	Name  string
	Check func(rec *dto.TransferRecord) Result
}

// Chain is an ordered list of guards.
type Chain struct {
	guards []Guard
}

// NewChain creates a chain evaluated in the given order.
func NewChain(guards ...Guard) *Chain {
	return &Chain{guards: guards}
}

// Register appends a guard at the end of the chain.
func (c *Chain) Register(g Guard) {
	c.guards = append(c.guards, g)
}

// Count returns the number of registered guards.
func (c *Chain) Count() int {
	return len(c.guards)
}

// Run evaluates the guards against rec. On the first failure rec gets the
// failing status, its amounts are zeroed and Run returns false.
func (c *Chain) Run(rec *dto.TransferRecord) bool {
	for _, g := range c.guards {
		res := g.Check(rec)
		if res.IsOk() {
			continue
		}

		log.WithFields(log.Fields{
			"guard":          g.Name,
			"transaction_id": rec.TransactionID,
			"transfer_type":  rec.TransferType.String(),
			"status":         res.Status().String(),
		}).Debugf("transfer rejected: %s", res.Reason())

		rec.Fail(res.Status())
		return false
	}
	return true
}
