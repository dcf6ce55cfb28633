package domain

import (
	"fmt"

	"github.com/tair/shop-inventory/internal/apperr"
)

// Policy holds the tunable constants of task generation.
type Policy struct {
	// AssemblyBuffer is added on top of the threshold when assembling.
	AssemblyBuffer int
	// HighPriorityStoreMax: a restock is high priority at or below this
	// store quantity.
	HighPriorityStoreMax int
	// AssemblyDestination is where completed assemblies are received.
	AssemblyDestination string
}

// DefaultPolicy returns the shop's standard policy.
func DefaultPolicy() Policy {
	return Policy{
		AssemblyBuffer:       5,
		HighPriorityStoreMax: 2,
		AssemblyDestination:  "warehouse",
	}
}

// Validate checks the policy values.
func (p Policy) Validate() error {
	if p.AssemblyBuffer < 0 {
		return apperr.Validation("assembly buffer cannot be negative")
	}
	if p.AssemblyDestination != "store" && p.AssemblyDestination != "warehouse" {
		return apperr.Validation("assembly destination %q must be store or warehouse", p.AssemblyDestination)
	}
	return nil
}

// Restock computes the warehouse to store move a product needs. ok is false
// when no restock is warranted.
func (p Policy) Restock(store, warehouse, threshold int) (quantity int, priority string, ok bool) {
	if store > threshold || warehouse <= 0 {
		return 0, "", false
	}
	needed := max(threshold-store, 0)
	quantity = min(needed, warehouse)
	if quantity <= 0 {
		return 0, "", false
	}
	priority = PriorityMedium
	if store <= p.HighPriorityStoreMax {
		priority = PriorityHigh
	}
	return quantity, priority, true
}

// Assembly computes how many units to build when total stock is at or
// below the threshold.
func (p Policy) Assembly(store, warehouse, threshold int) (quantity int, ok bool) {
	total := store + warehouse
	if total > threshold {
		return 0, false
	}
	quantity = max(threshold-total+p.AssemblyBuffer, 0)
	return quantity, quantity > 0
}

// RestockDescription describes a generated restock task.
func RestockDescription(quantity int, productName string) string {
	return fmt.Sprintf("Move %d units of '%s' from warehouse to store", quantity, productName)
}

// AssemblyDescription describes a generated assembly task.
func AssemblyDescription(quantity int, productName string) string {
	return fmt.Sprintf("Assemble %d units of '%s' for warehouse stock", quantity, productName)
}
