package planning

import "github.com/shopspring/decimal"

// =============================================================================
// SCORING CONSTANTS
// =============================================================================

// Skills carry 60% of the composite score, availability 40%. A resource
// with 20 or more free hours per week earns the full availability score.
// These are product constants, not configuration.
var (
	skillWeight        = decimal.NewFromFloat(0.6)
	availabilityWeight = decimal.NewFromFloat(0.4)
	fullAvailability   = decimal.NewFromInt(20)
	maxScore           = decimal.NewFromInt(100)
)

// =============================================================================
// PLANNER - The engine
// =============================================================================

// Planner implements the planning operations on top of a Store. It holds
// no mutable state of its own: every operation runs to completion within
// one call, and the allocations table is the only shared state it touches.
type Planner struct {
	store Store
}

// NewPlanner creates a planner backed by the given store.
func NewPlanner(store Store) *Planner {
	return &Planner{store: store}
}
