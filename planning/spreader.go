package planning

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// ALLOCATION SPREADER
// =============================================================================

// CommitAllocation spreads totalHours evenly across the weeks of the work
// item's date range and atomically replaces any prior rows for the
// (resource, work item) pair. A second call with different hours fully
// supersedes the first: last write wins, never additive.
//
// Zero hours clears the pair and returns an empty set. Negative hours are
// rejected with a validation error.
//
// Each week receives totalHours/weeks rounded to two decimals; the last
// week is not special-cased, so the persisted sum may differ from
// totalHours by a few hundredths.
func (p *Planner) CommitAllocation(ctx context.Context, resourceID ResourceID, workItemID WorkItemID, totalHours decimal.Decimal) ([]Allocation, error) {
	if totalHours.IsNegative() {
		return nil, &InvalidHoursError{Hours: totalHours}
	}

	workItem, err := p.store.GetWorkItem(ctx, workItemID)
	if err != nil {
		return nil, fmt.Errorf("load work item %d: %w", workItemID, err)
	}
	if workItem == nil {
		return nil, &WorkItemNotFoundError{ID: workItemID}
	}

	rows := spread(resourceID, workItemID, *workItem, totalHours)
	if err := p.store.ReplaceAllocations(ctx, resourceID, workItemID, rows); err != nil {
		return nil, fmt.Errorf("replace allocations for resource %d, work item %d: %w", resourceID, workItemID, err)
	}
	return rows, nil
}

// spread builds the weekly rows for a pair: one row per Monday-aligned
// bucket from the anchored start through the end date. Zero hours produce
// an empty (non-nil) set.
func spread(resourceID ResourceID, workItemID WorkItemID, workItem WorkItem, totalHours decimal.Decimal) []Allocation {
	if totalHours.IsZero() {
		return []Allocation{}
	}

	anchor := StartOfWeek(workItem.StartDate)
	weeks := WeeksSpanning(anchor, workItem.EndDate)
	perWeek := totalHours.Div(decimal.NewFromInt(int64(weeks))).Round(2)

	rows := make([]Allocation, 0, weeks)
	for i := 0; i < weeks; i++ {
		rows = append(rows, Allocation{
			ID:         uuid.NewString(),
			ResourceID: resourceID,
			WorkItemID: workItemID,
			WeekStart:  anchor.AddDate(0, 0, 7*i),
			Hours:      perWeek,
		})
	}
	return rows
}
