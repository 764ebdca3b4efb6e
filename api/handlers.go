/*
handlers.go - HTTP API handlers for the planning server

PURPOSE:
  Exposes the planning engine and the entity CRUD via REST. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Planning:
    POST   /api/planning/suggest-resources  Ranked candidates for a work item
    POST   /api/planning/allocate           Spread hours into weekly rows

  Resources:
    GET    /api/resources                   List all resources
    POST   /api/resources                   Create resource
    GET    /api/resources/{id}              Get resource
    PUT    /api/resources/{id}              Update resource
    DELETE /api/resources/{id}              Delete resource
    GET    /api/resources/{id}/skills       Skills the resource possesses
    POST   /api/resources/{id}/skills/{skillId}
    DELETE /api/resources/{id}/skills/{skillId}

  Work items:
    GET/POST /api/work-items, GET/PUT/DELETE /api/work-items/{id},
    skill links under /api/work-items/{id}/skills/{skillId}.
    A PUT that changes the date range triggers allocation rebalancing
    best-effort: the update succeeds even if rebalancing fails.

  Skills:      GET/POST /api/skills, DELETE /api/skills/{id}
  Allocations: GET /api/allocations (resource_id / work_item_id filters),
               DELETE /api/allocations (scoped to one pair)

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Entity not found
  - 500: Storage errors

SECURITY NOTE:
  No authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/warp/resource-engine/planning"
	"github.com/warp/resource-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store   *sqlite.Store
	Planner *planning.Planner
}

// NewHandler creates a new handler with the given store.
func NewHandler(store *sqlite.Store) *Handler {
	return &Handler{
		Store:   store,
		Planner: planning.NewPlanner(store),
	}
}

// =============================================================================
// PLANNING HANDLERS
// =============================================================================

// SuggestResources ranks every resource for the requested work item.
func (h *Handler) SuggestResources(w http.ResponseWriter, r *http.Request) {
	var req SuggestResourcesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.WorkItemID == 0 {
		writeError(w, http.StatusBadRequest, "work_item_id is required", nil)
		return
	}

	suggestions, err := h.Planner.SuggestResources(r.Context(), planning.WorkItemID(req.WorkItemID))
	if err != nil {
		writeDomainError(w, "Failed to suggest resources", err)
		return
	}

	writeJSON(w, http.StatusOK, toSuggestionDTOs(suggestions))
}

// Allocate spreads a total-hours figure across the work item's weeks for
// one resource, replacing any prior allocation for the pair.
func (h *Handler) Allocate(w http.ResponseWriter, r *http.Request) {
	var req AllocateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ResourceID == 0 || req.WorkItemID == 0 {
		writeError(w, http.StatusBadRequest, "resource_id and work_item_id are required", nil)
		return
	}

	rows, err := h.Planner.CommitAllocation(r.Context(),
		planning.ResourceID(req.ResourceID),
		planning.WorkItemID(req.WorkItemID),
		decimal.NewFromFloat(req.TotalHours))
	if err != nil {
		writeDomainError(w, "Failed to allocate resource", err)
		return
	}

	writeJSON(w, http.StatusCreated, toAllocationDTOs(rows))
}

// =============================================================================
// RESOURCE HANDLERS
// =============================================================================

// ListResources returns all resources.
func (h *Handler) ListResources(w http.ResponseWriter, r *http.Request) {
	resources, err := h.Store.ListResources(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list resources", err)
		return
	}

	dtos := make([]ResourceDTO, len(resources))
	for i, res := range resources {
		dtos[i] = toResourceDTO(res)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateResource creates a new resource.
func (h *Handler) CreateResource(w http.ResponseWriter, r *http.Request) {
	var req SaveResourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required", nil)
		return
	}

	resource := req.toResource()
	if err := h.Store.CreateResource(r.Context(), &resource); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create resource", err)
		return
	}

	writeJSON(w, http.StatusCreated, toResourceDTO(resource))
}

// GetResource returns a single resource.
func (h *Handler) GetResource(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	resource, err := h.Store.GetResource(r.Context(), planning.ResourceID(id))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get resource", err)
		return
	}
	if resource == nil {
		writeError(w, http.StatusNotFound, "Resource not found", nil)
		return
	}

	writeJSON(w, http.StatusOK, toResourceDTO(*resource))
}

// UpdateResource replaces a resource's fields.
func (h *Handler) UpdateResource(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	existing, err := h.Store.GetResource(r.Context(), planning.ResourceID(id))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get resource", err)
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "Resource not found", nil)
		return
	}

	var req SaveResourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	resource := req.toResource()
	resource.ID = planning.ResourceID(id)
	if resource.Capacity.IsZero() {
		resource.Capacity = existing.Capacity
	}
	if err := h.Store.UpdateResource(r.Context(), resource); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update resource", err)
		return
	}

	writeJSON(w, http.StatusOK, toResourceDTO(resource))
}

// DeleteResource removes a resource and, by cascade, its allocations.
func (h *Handler) DeleteResource(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.Store.DeleteResource(r.Context(), planning.ResourceID(id)); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete resource", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListResourceSkills returns the skills a resource possesses.
func (h *Handler) ListResourceSkills(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	skills, err := h.Store.ListResourceSkills(r.Context(), planning.ResourceID(id))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list resource skills", err)
		return
	}
	writeJSON(w, http.StatusOK, toSkillDTOs(skills))
}

// AssignResourceSkill links a skill to a resource.
func (h *Handler) AssignResourceSkill(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	skillID, ok := pathID(w, r, "skillId")
	if !ok {
		return
	}

	if err := h.Store.AssignSkill(r.Context(), planning.ResourceID(id), planning.SkillID(skillID)); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to assign skill", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RemoveResourceSkill unlinks a skill from a resource.
func (h *Handler) RemoveResourceSkill(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	skillID, ok := pathID(w, r, "skillId")
	if !ok {
		return
	}

	if err := h.Store.RemoveSkill(r.Context(), planning.ResourceID(id), planning.SkillID(skillID)); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to remove skill", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// SKILL HANDLERS
// =============================================================================

// ListSkills returns all skills.
func (h *Handler) ListSkills(w http.ResponseWriter, r *http.Request) {
	skills, err := h.Store.ListSkills(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list skills", err)
		return
	}
	writeJSON(w, http.StatusOK, toSkillDTOs(skills))
}

// CreateSkill creates a new skill.
func (h *Handler) CreateSkill(w http.ResponseWriter, r *http.Request) {
	var req CreateSkillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required", nil)
		return
	}

	skill := planning.Skill{Name: req.Name, Category: req.Category}
	if err := h.Store.CreateSkill(r.Context(), &skill); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create skill", err)
		return
	}

	writeJSON(w, http.StatusCreated, SkillDTO{ID: int64(skill.ID), Name: skill.Name, Category: skill.Category})
}

// DeleteSkill removes a skill.
func (h *Handler) DeleteSkill(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.Store.DeleteSkill(r.Context(), planning.SkillID(id)); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete skill", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// WORK ITEM HANDLERS
// =============================================================================

// ListWorkItems returns all work items.
func (h *Handler) ListWorkItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.Store.ListWorkItems(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list work items", err)
		return
	}

	dtos := make([]WorkItemDTO, len(items))
	for i, item := range items {
		dtos[i] = toWorkItemDTO(item)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateWorkItem creates a new work item.
func (h *Handler) CreateWorkItem(w http.ResponseWriter, r *http.Request) {
	var req SaveWorkItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	item, err := req.toWorkItem()
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid work item", err)
		return
	}
	if err := item.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid work item", err)
		return
	}

	if err := h.Store.CreateWorkItem(r.Context(), &item); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create work item", err)
		return
	}

	writeJSON(w, http.StatusCreated, toWorkItemDTO(item))
}

// GetWorkItem returns a single work item.
func (h *Handler) GetWorkItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	item, err := h.Store.GetWorkItem(r.Context(), planning.WorkItemID(id))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get work item", err)
		return
	}
	if item == nil {
		writeError(w, http.StatusNotFound, "Work item not found", nil)
		return
	}

	writeJSON(w, http.StatusOK, toWorkItemDTO(*item))
}

// UpdateWorkItem replaces a work item's fields. If the date range changed,
// existing allocations are re-spread over the new range. Rebalancing is
// best-effort: the date edit is authoritative, and a rebalancing failure
// is logged rather than rolled back.
func (h *Handler) UpdateWorkItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	existing, err := h.Store.GetWorkItem(r.Context(), planning.WorkItemID(id))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get work item", err)
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "Work item not found", nil)
		return
	}

	var req SaveWorkItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	item, err := req.toWorkItem()
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid work item", err)
		return
	}
	item.ID = planning.WorkItemID(id)
	if err := item.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid work item", err)
		return
	}

	if err := h.Store.UpdateWorkItem(r.Context(), item); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update work item", err)
		return
	}

	if !item.StartDate.Equal(existing.StartDate) || !item.EndDate.Equal(existing.EndDate) {
		if err := h.Planner.RebalanceWorkItem(r.Context(), item.ID); err != nil {
			log.Printf("failed to rebalance allocations for work item %d: %v", item.ID, err)
		}
	}

	writeJSON(w, http.StatusOK, toWorkItemDTO(item))
}

// DeleteWorkItem removes a work item and, by cascade, its allocations.
func (h *Handler) DeleteWorkItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.Store.DeleteWorkItem(r.Context(), planning.WorkItemID(id)); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete work item", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListWorkItemSkills returns the skills a work item requires.
func (h *Handler) ListWorkItemSkills(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	skills, err := h.Store.ListWorkItemSkills(r.Context(), planning.WorkItemID(id))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list work item skills", err)
		return
	}
	writeJSON(w, http.StatusOK, toSkillDTOs(skills))
}

// AddWorkItemSkill links a required skill to a work item.
func (h *Handler) AddWorkItemSkill(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	skillID, ok := pathID(w, r, "skillId")
	if !ok {
		return
	}

	level := 1
	if r.Body != nil && r.ContentLength > 0 {
		var req AddWorkItemSkillRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body", err)
			return
		}
		if req.LevelRequired > 0 {
			level = req.LevelRequired
		}
	}

	if err := h.Store.AddWorkItemSkill(r.Context(), planning.WorkItemID(id), planning.SkillID(skillID), level); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to add work item skill", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RemoveWorkItemSkill unlinks a required skill from a work item.
func (h *Handler) RemoveWorkItemSkill(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	skillID, ok := pathID(w, r, "skillId")
	if !ok {
		return
	}

	if err := h.Store.RemoveWorkItemSkill(r.Context(), planning.WorkItemID(id), planning.SkillID(skillID)); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to remove work item skill", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// ALLOCATION HANDLERS
// =============================================================================

// ListAllocations returns allocations, optionally filtered by resource_id
// and/or work_item_id query parameters.
func (h *Handler) ListAllocations(w http.ResponseWriter, r *http.Request) {
	filter, ok := allocationFilter(w, r)
	if !ok {
		return
	}

	allocations, err := h.Store.ListAllocations(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list allocations", err)
		return
	}
	writeJSON(w, http.StatusOK, toAllocationDTOs(allocations))
}

// DeleteAllocations clears every allocation for one (resource, work item)
// pair. Both query parameters are required.
func (h *Handler) DeleteAllocations(w http.ResponseWriter, r *http.Request) {
	filter, ok := allocationFilter(w, r)
	if !ok {
		return
	}
	if filter.ResourceID == nil || filter.WorkItemID == nil {
		writeError(w, http.StatusBadRequest, "resource_id and work_item_id are required", nil)
		return
	}

	if err := h.Store.DeleteAllocations(r.Context(), *filter.ResourceID, *filter.WorkItemID); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete allocations", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func allocationFilter(w http.ResponseWriter, r *http.Request) (planning.AllocationFilter, bool) {
	var filter planning.AllocationFilter
	if v := r.URL.Query().Get("resource_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid resource_id", err)
			return filter, false
		}
		rid := planning.ResourceID(id)
		filter.ResourceID = &rid
	}
	if v := r.URL.Query().Get("work_item_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid work_item_id", err)
			return filter, false
		}
		wid := planning.WorkItemID(id)
		filter.WorkItemID = &wid
	}
	return filter, true
}

// =============================================================================
// HELPERS
// =============================================================================

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid "+name, err)
		return 0, false
	}
	return id, true
}

// writeDomainError maps planning errors onto client-correctable statuses;
// anything else is a storage failure.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case planning.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case planning.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
