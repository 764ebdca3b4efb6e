package planning

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// TIMELINE RE-BALANCER
// =============================================================================

// RebalanceWorkItem re-spreads every assigned resource's committed total
// over the work item's current date range. Invoked after a work item's
// start or end date is edited: each resource's summed hours for the work
// item is preserved; only the weekly bucketing changes.
//
// A missing work item is a no-op, not an error - the caller's date edit is
// authoritative and rebalancing is best-effort (the caller logs a failure
// instead of rolling the edit back).
func (p *Planner) RebalanceWorkItem(ctx context.Context, workItemID WorkItemID) error {
	workItem, err := p.store.GetWorkItem(ctx, workItemID)
	if err != nil {
		return fmt.Errorf("load work item %d: %w", workItemID, err)
	}
	if workItem == nil {
		return nil
	}

	allocations, err := p.store.ListAllocations(ctx, AllocationFilter{WorkItemID: &workItemID})
	if err != nil {
		return fmt.Errorf("load allocations for work item %d: %w", workItemID, err)
	}

	// Group committed totals by resource, keeping first-seen order so the
	// rewrite sequence is deterministic.
	totals := make(map[ResourceID]decimal.Decimal)
	var order []ResourceID
	for _, a := range allocations {
		if _, ok := totals[a.ResourceID]; !ok {
			order = append(order, a.ResourceID)
		}
		totals[a.ResourceID] = totals[a.ResourceID].Add(a.Hours)
	}

	for _, resourceID := range order {
		total := totals[resourceID]
		if total.IsZero() {
			continue
		}
		rows := spread(resourceID, workItemID, *workItem, total)
		if err := p.store.ReplaceAllocations(ctx, resourceID, workItemID, rows); err != nil {
			return fmt.Errorf("rebalance resource %d on work item %d: %w", resourceID, workItemID, err)
		}
	}
	return nil
}
