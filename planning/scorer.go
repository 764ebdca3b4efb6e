package planning

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// RESOURCE SCORER
// =============================================================================

// SuggestResources scores every resource against the work item's skill
// requirements and residual availability and returns the candidates sorted
// by descending composite score. Ties keep discovery order (stable sort);
// no secondary key is applied.
//
// The whole resource pool is scored on every call. At fleet sizes beyond a
// few thousand resources, cap or paginate the pool before calling.
func (p *Planner) SuggestResources(ctx context.Context, workItemID WorkItemID) ([]Suggestion, error) {
	workItem, err := p.store.GetWorkItem(ctx, workItemID)
	if err != nil {
		return nil, fmt.Errorf("load work item %d: %w", workItemID, err)
	}
	if workItem == nil {
		return nil, &WorkItemNotFoundError{ID: workItemID}
	}

	required, err := p.store.ListRequiredSkills(ctx, workItemID)
	if err != nil {
		return nil, fmt.Errorf("load required skills for work item %d: %w", workItemID, err)
	}
	requiredSet := make(map[SkillID]struct{}, len(required))
	for _, rs := range required {
		requiredSet[rs.SkillID] = struct{}{}
	}

	resources, err := p.store.ListResources(ctx)
	if err != nil {
		return nil, fmt.Errorf("list resources: %w", err)
	}

	suggestions := make([]Suggestion, 0, len(resources))
	for _, resource := range resources {
		skillScore, err := p.skillScore(ctx, resource.ID, requiredSet)
		if err != nil {
			return nil, err
		}

		net, err := p.NetAvailability(ctx, resource.ID, workItem.StartDate, workItem.EndDate)
		if err != nil {
			return nil, err
		}
		availabilityScore := net.Div(fullAvailability).Mul(maxScore)
		if availabilityScore.GreaterThan(maxScore) {
			availabilityScore = maxScore
		}

		suggestions = append(suggestions, Suggestion{
			Resource:          resource,
			SkillScore:        skillScore,
			AvailabilityScore: availabilityScore,
			NetAvailability:   net,
			TotalScore:        skillScore.Mul(skillWeight).Add(availabilityScore.Mul(availabilityWeight)),
		})
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].TotalScore.GreaterThan(suggestions[j].TotalScore)
	})
	return suggestions, nil
}

// skillScore is the matched fraction of required skills scaled to [0, 100].
// A work item with no required skills gives every resource full credit:
// absence of requirement is full credit, not zero credit.
func (p *Planner) skillScore(ctx context.Context, resourceID ResourceID, required map[SkillID]struct{}) (decimal.Decimal, error) {
	if len(required) == 0 {
		return maxScore, nil
	}

	possessed, err := p.store.ListPossessedSkills(ctx, resourceID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("load skills for resource %d: %w", resourceID, err)
	}

	matched := 0
	for _, id := range possessed {
		if _, ok := required[id]; ok {
			matched++
		}
	}
	return decimal.NewFromInt(int64(matched)).
		Div(decimal.NewFromInt(int64(len(required)))).
		Mul(maxScore), nil
}
