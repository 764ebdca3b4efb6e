package sqlite_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/resource-engine/planning"
	"github.com/warp/resource-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func seedResource(t *testing.T, store *sqlite.Store, name string) planning.ResourceID {
	t.Helper()
	r := planning.Resource{Name: name, Role: "Engineer", Capacity: decimal.NewFromInt(40)}
	require.NoError(t, store.CreateResource(context.Background(), &r))
	return r.ID
}

func seedWorkItem(t *testing.T, store *sqlite.Store, start, end time.Time) planning.WorkItemID {
	t.Helper()
	w := planning.WorkItem{
		Title:     "Platform Migration",
		Type:      "project",
		Status:    "active",
		Priority:  "high",
		StartDate: start,
		EndDate:   end,
	}
	require.NoError(t, store.CreateWorkItem(context.Background(), &w))
	return w.ID
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// =============================================================================
// RESOURCES
// =============================================================================

func TestResource_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rate := decimal.NewFromFloat(125.50)
	created := planning.Resource{
		Name:       "Dana",
		Role:       "Staff Engineer",
		Email:      "dana@example.com",
		Capacity:   decimal.NewFromInt(32),
		HourlyRate: &rate,
	}
	require.NoError(t, store.CreateResource(ctx, &created))
	require.NotZero(t, created.ID, "insert should assign an ID")

	got, err := store.GetResource(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Dana", got.Name)
	assert.Equal(t, "Staff Engineer", got.Role)
	assert.True(t, decimal.NewFromInt(32).Equal(got.Capacity))
	require.NotNil(t, got.HourlyRate)
	assert.True(t, rate.Equal(*got.HourlyRate))
}

func TestResource_ZeroCapacity_Defaults(t *testing.T) {
	// GIVEN: A resource created without an explicit capacity
	// THEN: It gets the 40-hour default

	store := newTestStore(t)
	ctx := context.Background()

	r := planning.Resource{Name: "Sam", Role: "Engineer"}
	require.NoError(t, store.CreateResource(ctx, &r))

	got, err := store.GetResource(ctx, r.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, planning.DefaultCapacity.Equal(got.Capacity))
}

func TestResource_GetMissing_NilNil(t *testing.T) {
	store := newTestStore(t)

	got, err := store.GetResource(context.Background(), 999)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestResource_UpdateAndDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id := seedResource(t, store, "Jordan")

	updated := planning.Resource{ID: id, Name: "Jordan", Role: "Tech Lead", Capacity: decimal.NewFromInt(24)}
	require.NoError(t, store.UpdateResource(ctx, updated))

	got, err := store.GetResource(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Tech Lead", got.Role)
	assert.True(t, decimal.NewFromInt(24).Equal(got.Capacity))

	require.NoError(t, store.DeleteResource(ctx, id))
	got, err = store.GetResource(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, got)
}

// =============================================================================
// SKILLS
// =============================================================================

func TestSkills_AssignAndList(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	resourceID := seedResource(t, store, "Dana")
	goSkill := planning.Skill{Name: "Go", Category: "language"}
	tfSkill := planning.Skill{Name: "Terraform", Category: "infra"}
	require.NoError(t, store.CreateSkill(ctx, &goSkill))
	require.NoError(t, store.CreateSkill(ctx, &tfSkill))

	require.NoError(t, store.AssignSkill(ctx, resourceID, goSkill.ID))
	require.NoError(t, store.AssignSkill(ctx, resourceID, tfSkill.ID))
	// Re-assigning is a no-op, not an error
	require.NoError(t, store.AssignSkill(ctx, resourceID, goSkill.ID))

	skills, err := store.ListResourceSkills(ctx, resourceID)
	require.NoError(t, err)
	assert.Len(t, skills, 2)

	ids, err := store.ListPossessedSkills(ctx, resourceID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []planning.SkillID{goSkill.ID, tfSkill.ID}, ids)

	require.NoError(t, store.RemoveSkill(ctx, resourceID, tfSkill.ID))
	ids, err = store.ListPossessedSkills(ctx, resourceID)
	require.NoError(t, err)
	assert.Equal(t, []planning.SkillID{goSkill.ID}, ids)
}

func TestSkills_DeleteResource_CascadesLinks(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	resourceID := seedResource(t, store, "Dana")
	sk := planning.Skill{Name: "Go"}
	require.NoError(t, store.CreateSkill(ctx, &sk))
	require.NoError(t, store.AssignSkill(ctx, resourceID, sk.ID))

	require.NoError(t, store.DeleteResource(ctx, resourceID))

	ids, err := store.ListPossessedSkills(ctx, resourceID)
	require.NoError(t, err)
	assert.Empty(t, ids)

	// The skill itself survives
	skills, err := store.ListSkills(ctx)
	require.NoError(t, err)
	assert.Len(t, skills, 1)
}

// =============================================================================
// WORK ITEMS
// =============================================================================

func TestWorkItem_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	estimate := int64(120)
	created := planning.WorkItem{
		Title:          "Billing rewrite",
		Type:           "project",
		Status:         "active",
		Priority:       "high",
		StartDate:      date(2025, time.January, 6),
		EndDate:        date(2025, time.February, 2),
		Description:    "Replace the legacy billing pipeline",
		Progress:       25,
		EstimatedHours: &estimate,
	}
	require.NoError(t, store.CreateWorkItem(ctx, &created))
	require.NotZero(t, created.ID)

	got, err := store.GetWorkItem(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Billing rewrite", got.Title)
	assert.Equal(t, date(2025, time.January, 6), got.StartDate)
	assert.Equal(t, date(2025, time.February, 2), got.EndDate)
	assert.Equal(t, 25, got.Progress)
	require.NotNil(t, got.EstimatedHours)
	assert.Equal(t, int64(120), *got.EstimatedHours)
}

func TestWorkItem_RequiredSkills(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	workItemID := seedWorkItem(t, store, date(2025, time.January, 6), date(2025, time.January, 19))
	sk := planning.Skill{Name: "Kubernetes"}
	require.NoError(t, store.CreateSkill(ctx, &sk))

	require.NoError(t, store.AddWorkItemSkill(ctx, workItemID, sk.ID, 2))
	// Re-adding upserts the level
	require.NoError(t, store.AddWorkItemSkill(ctx, workItemID, sk.ID, 3))

	required, err := store.ListRequiredSkills(ctx, workItemID)
	require.NoError(t, err)
	require.Len(t, required, 1)
	assert.Equal(t, sk.ID, required[0].SkillID)
	assert.Equal(t, 3, required[0].LevelRequired)

	require.NoError(t, store.RemoveWorkItemSkill(ctx, workItemID, sk.ID))
	required, err = store.ListRequiredSkills(ctx, workItemID)
	require.NoError(t, err)
	assert.Empty(t, required)
}

// =============================================================================
// ALLOCATIONS
// =============================================================================

func seedAllocations(t *testing.T, store *sqlite.Store, resourceID planning.ResourceID, workItemID planning.WorkItemID, weeks []time.Time, hours float64) {
	t.Helper()
	rows := make([]planning.Allocation, 0, len(weeks))
	for i, week := range weeks {
		rows = append(rows, planning.Allocation{
			ID:         fmt.Sprintf("alloc-%d-%d-%s", resourceID, i, week.Format("2006-01-02")),
			ResourceID: resourceID,
			WorkItemID: workItemID,
			WeekStart:  week,
			Hours:      decimal.NewFromFloat(hours),
		})
	}
	require.NoError(t, store.InsertAllocations(context.Background(), rows))
}

func TestAllocations_FilteredListing(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	r1 := seedResource(t, store, "Dana")
	r2 := seedResource(t, store, "Sam")
	w1 := seedWorkItem(t, store, date(2025, time.January, 6), date(2025, time.January, 19))

	seedAllocations(t, store, r1, w1, []time.Time{date(2025, time.January, 6), date(2025, time.January, 13)}, 20)
	seedAllocations(t, store, r2, w1, []time.Time{date(2025, time.January, 6)}, 10)

	// By resource
	rows, err := store.ListAllocations(ctx, planning.AllocationFilter{ResourceID: &r1})
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	// By work item
	rows, err = store.ListAllocations(ctx, planning.AllocationFilter{WorkItemID: &w1})
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	// By week window: only the first week
	from := date(2025, time.January, 6)
	to := date(2025, time.January, 12)
	rows, err = store.ListAllocations(ctx, planning.AllocationFilter{WeekFrom: &from, WeekTo: &to})
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	// Ordered by week start
	rows, err = store.ListAllocations(ctx, planning.AllocationFilter{ResourceID: &r1})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.True(t, rows[0].WeekStart.Before(rows[1].WeekStart))
}

func TestAllocations_Replace(t *testing.T) {
	// GIVEN: Two weekly rows persisted for a pair
	// WHEN: Replacing them with a single new row
	// THEN: Only the replacement remains; other pairs are untouched

	store := newTestStore(t)
	ctx := context.Background()

	r1 := seedResource(t, store, "Dana")
	r2 := seedResource(t, store, "Sam")
	w1 := seedWorkItem(t, store, date(2025, time.January, 6), date(2025, time.January, 19))

	seedAllocations(t, store, r1, w1, []time.Time{date(2025, time.January, 6), date(2025, time.January, 13)}, 40)
	seedAllocations(t, store, r2, w1, []time.Time{date(2025, time.January, 6)}, 10)

	replacement := []planning.Allocation{{
		ID:         "replacement-row",
		ResourceID: r1,
		WorkItemID: w1,
		WeekStart:  date(2025, time.January, 6),
		Hours:      decimal.NewFromInt(15),
	}}
	require.NoError(t, store.ReplaceAllocations(ctx, r1, w1, replacement))

	rows, err := store.ListAllocations(ctx, planning.AllocationFilter{ResourceID: &r1})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "replacement-row", rows[0].ID)
	assert.True(t, decimal.NewFromInt(15).Equal(rows[0].Hours))

	rows, err = store.ListAllocations(ctx, planning.AllocationFilter{ResourceID: &r2})
	require.NoError(t, err)
	assert.Len(t, rows, 1, "other resource's rows must survive the replace")
}

func TestAllocations_ReplaceWithEmpty_Clears(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	r1 := seedResource(t, store, "Dana")
	w1 := seedWorkItem(t, store, date(2025, time.January, 6), date(2025, time.January, 19))
	seedAllocations(t, store, r1, w1, []time.Time{date(2025, time.January, 6)}, 40)

	require.NoError(t, store.ReplaceAllocations(ctx, r1, w1, nil))

	rows, err := store.ListAllocations(ctx, planning.AllocationFilter{ResourceID: &r1})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestAllocations_DeleteWorkItem_Cascades(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	r1 := seedResource(t, store, "Dana")
	w1 := seedWorkItem(t, store, date(2025, time.January, 6), date(2025, time.January, 19))
	seedAllocations(t, store, r1, w1, []time.Time{date(2025, time.January, 6)}, 40)

	require.NoError(t, store.DeleteWorkItem(ctx, w1))

	rows, err := store.ListAllocations(ctx, planning.AllocationFilter{})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

// =============================================================================
// PLANNER INTEGRATION - the production store behind the engine
// =============================================================================

func TestPlanner_OnSQLiteStore(t *testing.T) {
	// GIVEN: The production store wired into the planner
	// WHEN: Committing and rebalancing through the engine
	// THEN: End-to-end behavior matches the in-memory fake

	store := newTestStore(t)
	ctx := context.Background()
	planner := planning.NewPlanner(store)

	resourceID := seedResource(t, store, "Dana")
	workItemID := seedWorkItem(t, store, date(2025, time.January, 6), date(2025, time.January, 19))

	rows, err := planner.CommitAllocation(ctx, resourceID, workItemID, decimal.NewFromInt(80))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// Stretch to four weeks and rebalance
	item, err := store.GetWorkItem(ctx, workItemID)
	require.NoError(t, err)
	require.NotNil(t, item)
	item.EndDate = date(2025, time.February, 2)
	require.NoError(t, store.UpdateWorkItem(ctx, *item))
	require.NoError(t, planner.RebalanceWorkItem(ctx, workItemID))

	persisted, err := store.ListAllocations(ctx, planning.AllocationFilter{ResourceID: &resourceID})
	require.NoError(t, err)
	require.Len(t, persisted, 4)
	sum := decimal.Zero
	for _, row := range persisted {
		sum = sum.Add(row.Hours)
	}
	assert.True(t, decimal.NewFromInt(80).Equal(sum), "total preserved across rebalance, got %v", sum)
}
