package planning

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// AVAILABILITY CALCULATOR
// =============================================================================

// NetAvailability computes a resource's average free weekly hours over the
// closed window [windowStart, windowEnd]: declared capacity minus the
// average of existing allocated hours whose week start falls inside the
// window, floored at zero. Over-allocation therefore reads as "no
// availability", never as a negative figure.
//
// An unknown resource returns zero rather than an error. This keeps bulk
// scoring from crashing over a stale ID; callers that need an existence
// check must perform it separately.
func (p *Planner) NetAvailability(ctx context.Context, resourceID ResourceID, windowStart, windowEnd time.Time) (decimal.Decimal, error) {
	resource, err := p.store.GetResource(ctx, resourceID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("load resource %d: %w", resourceID, err)
	}
	if resource == nil {
		return decimal.Zero, nil
	}

	from := Midnight(windowStart)
	to := Midnight(windowEnd)
	allocations, err := p.store.ListAllocations(ctx, AllocationFilter{
		ResourceID: &resourceID,
		WeekFrom:   &from,
		WeekTo:     &to,
	})
	if err != nil {
		return decimal.Zero, fmt.Errorf("load allocations for resource %d: %w", resourceID, err)
	}

	total := decimal.Zero
	for _, a := range allocations {
		total = total.Add(a.Hours)
	}

	// Average over the Monday-aligned buckets the window spans, floored at
	// one so an inverted or sub-week window never divides by zero.
	weeks := WeeksSpanning(StartOfWeek(windowStart), windowEnd)
	average := total.Div(decimal.NewFromInt(int64(weeks)))

	net := resource.Capacity.Sub(average)
	if net.IsNegative() {
		return decimal.Zero, nil
	}
	return net, nil
}
