/*
Package planning provides the resource-allocation planning engine.

PURPOSE:
  This package contains the algorithmic core of the portfolio manager:
  scoring candidate resources against a work item's skill requirements and
  residual availability, and spreading a total-hours estimate into weekly
  time-boxed allocation records. Everything else in the repository is
  plumbing around these decisions.

KEY CONCEPTS IN THIS FILE (types.go):
  - Resource: A person with a weekly capacity and a set of skills
  - WorkItem: A unit of planned work with a fixed calendar date range
  - Allocation: Committed hours for one resource on one work item in one week
  - Suggestion: A scored candidate resource for a work item

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal for all hour and score quantities
  2. Explicit ports: The engine talks to storage only through the Store
     interface (store.go), never a global handle
  3. Type Safety: Distinct ID types prevent mixing resource/work-item IDs

SEE ALSO:
  - store.go: Storage port consumed by the engine
  - planner.go: Engine construction and scoring constants
  - spreader.go: Weekly spreading of total-hours estimates
*/
package planning

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type ResourceID int64
type WorkItemID int64
type SkillID int64

// =============================================================================
// RESOURCE - A person with weekly capacity and skills
// =============================================================================

// Resource is a schedulable person. Capacity is the declared number of
// working hours per week, not what is currently free; see
// Planner.NetAvailability for the residual figure.
type Resource struct {
	ID         ResourceID
	Name       string
	Role       string
	Email      string
	Capacity   decimal.Decimal
	HourlyRate *decimal.Decimal
}

// DefaultCapacity is applied when a resource is created without an
// explicit weekly capacity.
var DefaultCapacity = decimal.NewFromInt(40)

// =============================================================================
// WORK ITEM - A unit of planned work with a calendar date range
// =============================================================================

// WorkItem is a project, demand, or KTLO task. StartDate and EndDate are
// inclusive calendar dates (UTC midnight); together they define the
// allocation window.
type WorkItem struct {
	ID             WorkItemID
	Title          string
	Type           string
	Status         string
	Priority       string
	StartDate      time.Time
	EndDate        time.Time
	Description    string
	Progress       int
	EstimatedHours *int64
}

// Validate checks the fields that the planning engine depends on.
// A work item whose end precedes its start has no meaningful allocation
// window and is rejected at the CRUD boundary.
func (w WorkItem) Validate() error {
	if w.Title == "" {
		return &FieldError{Field: "title", Message: "must not be empty"}
	}
	if w.EndDate.Before(w.StartDate) {
		return &InvalidDateRangeError{Start: w.StartDate, End: w.EndDate}
	}
	return nil
}

// Skill is a named capability that resources possess and work items require.
type Skill struct {
	ID       SkillID
	Name     string
	Category string
}

// RequiredSkill links a work item to a skill it requires. LevelRequired is
// recorded but not yet weighted in scoring; presence is what counts.
type RequiredSkill struct {
	SkillID       SkillID
	LevelRequired int
}

// =============================================================================
// ALLOCATION - Committed hours for one resource/work item/week
// =============================================================================

// Allocation is a single weekly commitment. WeekStart is always normalized
// to the Monday of its week. Hours carries two decimal places, the
// persisted precision.
//
// For a (resource, work item) pair written by the spreader, the weekly rows
// tile the work item's date range with no gaps or overlaps, and their sum
// equals the committed total up to rounding.
type Allocation struct {
	ID         string
	ResourceID ResourceID
	WorkItemID WorkItemID
	WeekStart  time.Time
	Hours      decimal.Decimal
}

// =============================================================================
// SUGGESTION - A scored candidate for a work item
// =============================================================================

// Suggestion ranks one resource for one work item. All scores are in
// [0, 100]; TotalScore is the 60/40 skill/availability composite.
type Suggestion struct {
	Resource          Resource
	SkillScore        decimal.Decimal
	AvailabilityScore decimal.Decimal
	NetAvailability   decimal.Decimal
	TotalScore        decimal.Decimal
}
