// Package store provides an in-memory planning.Store implementation.
package store

import (
	"context"
	"sync"

	"github.com/warp/resource-engine/planning"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu          sync.RWMutex
	resources   map[planning.ResourceID]planning.Resource
	workItems   map[planning.WorkItemID]planning.WorkItem
	required    map[planning.WorkItemID][]planning.RequiredSkill
	possessed   map[planning.ResourceID][]planning.SkillID
	allocations []planning.Allocation
	order       []planning.ResourceID // ListResources in insertion order
}

func NewMemory() *Memory {
	return &Memory{
		resources: make(map[planning.ResourceID]planning.Resource),
		workItems: make(map[planning.WorkItemID]planning.WorkItem),
		required:  make(map[planning.WorkItemID][]planning.RequiredSkill),
		possessed: make(map[planning.ResourceID][]planning.SkillID),
	}
}

// =============================================================================
// SEEDING (test setup)
// =============================================================================

func (m *Memory) PutResource(r planning.Resource) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.resources[r.ID]; !ok {
		m.order = append(m.order, r.ID)
	}
	m.resources[r.ID] = r
}

func (m *Memory) PutWorkItem(w planning.WorkItem) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.workItems[w.ID] = w
}

func (m *Memory) DeleteWorkItem(id planning.WorkItemID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.workItems, id)
}

func (m *Memory) SetRequiredSkills(id planning.WorkItemID, skills []planning.RequiredSkill) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.required[id] = append([]planning.RequiredSkill(nil), skills...)
}

func (m *Memory) SetPossessedSkills(id planning.ResourceID, skills []planning.SkillID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.possessed[id] = append([]planning.SkillID(nil), skills...)
}

// =============================================================================
// planning.Store IMPLEMENTATION
// =============================================================================

func (m *Memory) GetWorkItem(_ context.Context, id planning.WorkItemID) (*planning.WorkItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	w, ok := m.workItems[id]
	if !ok {
		return nil, nil
	}
	return &w, nil
}

func (m *Memory) GetResource(_ context.Context, id planning.ResourceID) (*planning.Resource, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.resources[id]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (m *Memory) ListResources(_ context.Context) ([]planning.Resource, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]planning.Resource, 0, len(m.order))
	for _, id := range m.order {
		result = append(result, m.resources[id])
	}
	return result, nil
}

func (m *Memory) ListRequiredSkills(_ context.Context, id planning.WorkItemID) ([]planning.RequiredSkill, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]planning.RequiredSkill(nil), m.required[id]...), nil
}

func (m *Memory) ListPossessedSkills(_ context.Context, id planning.ResourceID) ([]planning.SkillID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]planning.SkillID(nil), m.possessed[id]...), nil
}

func (m *Memory) ListAllocations(_ context.Context, filter planning.AllocationFilter) ([]planning.Allocation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []planning.Allocation
	for _, a := range m.allocations {
		if matches(a, filter) {
			result = append(result, a)
		}
	}
	return result, nil
}

func matches(a planning.Allocation, f planning.AllocationFilter) bool {
	if f.ResourceID != nil && a.ResourceID != *f.ResourceID {
		return false
	}
	if f.WorkItemID != nil && a.WorkItemID != *f.WorkItemID {
		return false
	}
	if f.WeekFrom != nil && a.WeekStart.Before(*f.WeekFrom) {
		return false
	}
	if f.WeekTo != nil && a.WeekStart.After(*f.WeekTo) {
		return false
	}
	return true
}

func (m *Memory) DeleteAllocations(_ context.Context, resourceID planning.ResourceID, workItemID planning.WorkItemID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteLocked(resourceID, workItemID)
	return nil
}

func (m *Memory) InsertAllocations(_ context.Context, allocations []planning.Allocation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.allocations = append(m.allocations, allocations...)
	return nil
}

// ReplaceAllocations swaps the pair's rows under a single lock hold, so a
// reader never observes the pair mid-replace.
func (m *Memory) ReplaceAllocations(_ context.Context, resourceID planning.ResourceID, workItemID planning.WorkItemID, allocations []planning.Allocation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteLocked(resourceID, workItemID)
	m.allocations = append(m.allocations, allocations...)
	return nil
}

func (m *Memory) deleteLocked(resourceID planning.ResourceID, workItemID planning.WorkItemID) {
	kept := m.allocations[:0]
	for _, a := range m.allocations {
		if a.ResourceID == resourceID && a.WorkItemID == workItemID {
			continue
		}
		kept = append(kept, a)
	}
	m.allocations = kept
}
