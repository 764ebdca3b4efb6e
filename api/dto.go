/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation is done in handlers (and planning.WorkItem.Validate), not in
  DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/resource-engine/planning"
)

const dateFormat = "2006-01-02"

// =============================================================================
// RESOURCES
// =============================================================================

// ResourceDTO represents a resource in API responses.
type ResourceDTO struct {
	ID         int64    `json:"id"`
	Name       string   `json:"name"`
	Role       string   `json:"role"`
	Email      string   `json:"email"`
	Capacity   float64  `json:"capacity"`
	HourlyRate *float64 `json:"hourly_rate,omitempty"`
}

// SaveResourceRequest is the body for creating or updating a resource.
type SaveResourceRequest struct {
	Name       string   `json:"name"`
	Role       string   `json:"role"`
	Email      string   `json:"email"`
	Capacity   float64  `json:"capacity"`
	HourlyRate *float64 `json:"hourly_rate"`
}

func toResourceDTO(r planning.Resource) ResourceDTO {
	dto := ResourceDTO{
		ID:       int64(r.ID),
		Name:     r.Name,
		Role:     r.Role,
		Email:    r.Email,
		Capacity: r.Capacity.InexactFloat64(),
	}
	if r.HourlyRate != nil {
		rate := r.HourlyRate.InexactFloat64()
		dto.HourlyRate = &rate
	}
	return dto
}

func (req SaveResourceRequest) toResource() planning.Resource {
	r := planning.Resource{
		Name:     req.Name,
		Role:     req.Role,
		Email:    req.Email,
		Capacity: decimal.NewFromFloat(req.Capacity),
	}
	if req.HourlyRate != nil {
		rate := decimal.NewFromFloat(*req.HourlyRate)
		r.HourlyRate = &rate
	}
	return r
}

// =============================================================================
// SKILLS
// =============================================================================

// SkillDTO represents a skill in API responses.
type SkillDTO struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
}

// CreateSkillRequest is the body for creating a skill.
type CreateSkillRequest struct {
	Name     string `json:"name"`
	Category string `json:"category"`
}

// AddWorkItemSkillRequest carries the optional required level for a
// work item skill link. Defaults to 1.
type AddWorkItemSkillRequest struct {
	LevelRequired int `json:"level_required"`
}

func toSkillDTOs(skills []planning.Skill) []SkillDTO {
	dtos := make([]SkillDTO, len(skills))
	for i, sk := range skills {
		dtos[i] = SkillDTO{ID: int64(sk.ID), Name: sk.Name, Category: sk.Category}
	}
	return dtos
}

// =============================================================================
// WORK ITEMS
// =============================================================================

// WorkItemDTO represents a work item in API responses.
type WorkItemDTO struct {
	ID             int64  `json:"id"`
	Title          string `json:"title"`
	Type           string `json:"type"`
	Status         string `json:"status"`
	Priority       string `json:"priority"`
	StartDate      string `json:"start_date"`
	EndDate        string `json:"end_date"`
	Description    string `json:"description"`
	Progress       int    `json:"progress"`
	EstimatedHours *int64 `json:"estimated_hours,omitempty"`
}

// SaveWorkItemRequest is the body for creating or updating a work item.
type SaveWorkItemRequest struct {
	Title          string `json:"title"`
	Type           string `json:"type"`
	Status         string `json:"status"`
	Priority       string `json:"priority"`
	StartDate      string `json:"start_date"`
	EndDate        string `json:"end_date"`
	Description    string `json:"description"`
	Progress       int    `json:"progress"`
	EstimatedHours *int64 `json:"estimated_hours"`
}

func toWorkItemDTO(w planning.WorkItem) WorkItemDTO {
	return WorkItemDTO{
		ID:             int64(w.ID),
		Title:          w.Title,
		Type:           w.Type,
		Status:         w.Status,
		Priority:       w.Priority,
		StartDate:      w.StartDate.Format(dateFormat),
		EndDate:        w.EndDate.Format(dateFormat),
		Description:    w.Description,
		Progress:       w.Progress,
		EstimatedHours: w.EstimatedHours,
	}
}

func (req SaveWorkItemRequest) toWorkItem() (planning.WorkItem, error) {
	start, err := time.Parse(dateFormat, req.StartDate)
	if err != nil {
		return planning.WorkItem{}, &planning.FieldError{Field: "start_date", Message: "use YYYY-MM-DD"}
	}
	end, err := time.Parse(dateFormat, req.EndDate)
	if err != nil {
		return planning.WorkItem{}, &planning.FieldError{Field: "end_date", Message: "use YYYY-MM-DD"}
	}
	return planning.WorkItem{
		Title:          req.Title,
		Type:           req.Type,
		Status:         req.Status,
		Priority:       req.Priority,
		StartDate:      start,
		EndDate:        end,
		Description:    req.Description,
		Progress:       req.Progress,
		EstimatedHours: req.EstimatedHours,
	}, nil
}

// =============================================================================
// ALLOCATIONS & PLANNING
// =============================================================================

// AllocationDTO represents one weekly allocation row.
type AllocationDTO struct {
	ID            string  `json:"id"`
	ResourceID    int64   `json:"resource_id"`
	WorkItemID    int64   `json:"work_item_id"`
	WeekStartDate string  `json:"week_start_date"`
	Hours         float64 `json:"hours"`
}

// SuggestResourcesRequest asks for ranked candidates for a work item.
type SuggestResourcesRequest struct {
	WorkItemID int64 `json:"work_item_id"`
}

// AllocateRequest commits a total-hours figure for a resource on a work item.
type AllocateRequest struct {
	ResourceID int64   `json:"resource_id"`
	WorkItemID int64   `json:"work_item_id"`
	TotalHours float64 `json:"total_hours"`
}

// SuggestionDTO is one scored candidate.
type SuggestionDTO struct {
	Resource          ResourceDTO `json:"resource"`
	SkillScore        float64     `json:"skill_score"`
	AvailabilityScore float64     `json:"availability_score"`
	NetAvailability   float64     `json:"net_availability"`
	TotalScore        float64     `json:"total_score"`
}

func toAllocationDTOs(allocations []planning.Allocation) []AllocationDTO {
	dtos := make([]AllocationDTO, len(allocations))
	for i, a := range allocations {
		dtos[i] = AllocationDTO{
			ID:            a.ID,
			ResourceID:    int64(a.ResourceID),
			WorkItemID:    int64(a.WorkItemID),
			WeekStartDate: a.WeekStart.Format(dateFormat),
			Hours:         a.Hours.InexactFloat64(),
		}
	}
	return dtos
}

func toSuggestionDTOs(suggestions []planning.Suggestion) []SuggestionDTO {
	dtos := make([]SuggestionDTO, len(suggestions))
	for i, s := range suggestions {
		dtos[i] = SuggestionDTO{
			Resource:          toResourceDTO(s.Resource),
			SkillScore:        s.SkillScore.InexactFloat64(),
			AvailabilityScore: s.AvailabilityScore.InexactFloat64(),
			NetAvailability:   s.NetAvailability.InexactFloat64(),
			TotalScore:        s.TotalScore.InexactFloat64(),
		}
	}
	return dtos
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
