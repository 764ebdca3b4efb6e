/*
store.go - Storage port consumed by the planning engine

PURPOSE:
  Defines the narrow contract between the engine and durable storage.
  The engine owns no entity lifecycle; it reads resources, work items and
  skill links, and it is the only writer that performs the delete-then-
  reinsert swap of a (resource, work item) pair's weekly allocation rows.

IMPLEMENTATIONS:
  - store/sqlite: production SQLite store (also backs the CRUD API)
  - planning/store: in-memory fake for tests

ATOMICITY:
  ReplaceAllocations must perform the delete and the insert as a single
  atomic operation. Without it a crash between the two steps would leave
  the pair with zero rows. DeleteAllocations and InsertAllocations remain
  available for callers that manage their own transaction scope.
*/
package planning

import (
	"context"
	"time"
)

// AllocationFilter narrows ListAllocations. Nil fields match everything;
// WeekFrom/WeekTo bound the week-start date inclusively.
type AllocationFilter struct {
	ResourceID *ResourceID
	WorkItemID *WorkItemID
	WeekFrom   *time.Time
	WeekTo     *time.Time
}

// Store is the entity-store port. Get methods return (nil, nil) when the
// entity does not exist; the engine decides whether absence is an error.
type Store interface {
	GetWorkItem(ctx context.Context, id WorkItemID) (*WorkItem, error)
	GetResource(ctx context.Context, id ResourceID) (*Resource, error)
	ListResources(ctx context.Context) ([]Resource, error)

	// ListRequiredSkills returns the skills a work item requires.
	ListRequiredSkills(ctx context.Context, id WorkItemID) ([]RequiredSkill, error)

	// ListPossessedSkills returns the skill IDs a resource possesses.
	ListPossessedSkills(ctx context.Context, id ResourceID) ([]SkillID, error)

	ListAllocations(ctx context.Context, filter AllocationFilter) ([]Allocation, error)

	// DeleteAllocations removes every row for the (resource, work item) pair.
	DeleteAllocations(ctx context.Context, resourceID ResourceID, workItemID WorkItemID) error

	// InsertAllocations persists a batch of rows.
	InsertAllocations(ctx context.Context, allocations []Allocation) error

	// ReplaceAllocations atomically swaps the pair's rows for the given set.
	// An empty set clears the pair.
	ReplaceAllocations(ctx context.Context, resourceID ResourceID, workItemID WorkItemID, allocations []Allocation) error
}
