/*
Package sqlite provides the SQLite-backed entity store.

PURPOSE:
  Implements the planning.Store port plus the CRUD the HTTP layer needs
  for resources, skills and work items. In production the same patterns
  apply to PostgreSQL - only minor SQL dialect differences.

KEY TABLES:
  resources:        People with weekly capacity
  skills:           Named capabilities
  resource_skills:  Resource-to-skill links (no duplicates, cascading)
  work_items:       Planned work with inclusive date ranges
  work_item_skills: Required skills per work item, with level
  allocations:      Weekly hour commitments per (resource, work item)

ATOMIC REPLACE:
  ReplaceAllocations runs the delete and the insert for a (resource, work
  item) pair inside one SQL transaction. The pair is never observable with
  a partial row set.

WAL MODE:
  SQLite is opened with WAL for better concurrency: multiple readers don't
  block, a single writer at a time, better crash recovery.

USAGE:
  store, err := sqlite.New("./data/planner.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  planner := planning.NewPlanner(store)

SEE ALSO:
  - planning/store.go: Port definition
  - planning/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/resource-engine/planning"
)

const dateFormat = "2006-01-02"

// Store implements planning.Store and the entity CRUD using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// An in-memory database exists per connection; a second pooled
	// connection would see empty tables.
	if strings.Contains(dbPath, ":memory:") {
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS resources (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		capacity TEXT NOT NULL DEFAULT '40',
		hourly_rate TEXT
	);

	CREATE TABLE IF NOT EXISTS skills (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		category TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS resource_skills (
		resource_id INTEGER NOT NULL REFERENCES resources(id) ON DELETE CASCADE,
		skill_id INTEGER NOT NULL REFERENCES skills(id) ON DELETE CASCADE,
		PRIMARY KEY (resource_id, skill_id)
	);

	CREATE TABLE IF NOT EXISTS work_items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		type TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT '',
		priority TEXT NOT NULL DEFAULT '',
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		progress INTEGER NOT NULL DEFAULT 0,
		estimated_hours INTEGER
	);

	CREATE TABLE IF NOT EXISTS work_item_skills (
		work_item_id INTEGER NOT NULL REFERENCES work_items(id) ON DELETE CASCADE,
		skill_id INTEGER NOT NULL REFERENCES skills(id) ON DELETE CASCADE,
		level_required INTEGER NOT NULL DEFAULT 1,
		PRIMARY KEY (work_item_id, skill_id)
	);

	CREATE TABLE IF NOT EXISTS allocations (
		id TEXT PRIMARY KEY,
		resource_id INTEGER NOT NULL REFERENCES resources(id) ON DELETE CASCADE,
		work_item_id INTEGER NOT NULL REFERENCES work_items(id) ON DELETE CASCADE,
		week_start_date TEXT NOT NULL,
		hours TEXT NOT NULL
	);

	-- The hot paths: availability windows and per-pair replaces
	CREATE INDEX IF NOT EXISTS idx_allocations_resource_week
		ON allocations(resource_id, week_start_date);
	CREATE INDEX IF NOT EXISTS idx_allocations_pair
		ON allocations(resource_id, work_item_id);
	CREATE INDEX IF NOT EXISTS idx_allocations_work_item
		ON allocations(work_item_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// RESOURCES
// =============================================================================

// CreateResource inserts a resource and fills in its assigned ID.
// A zero capacity falls back to the default of 40 hours per week.
func (s *Store) CreateResource(ctx context.Context, r *planning.Resource) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.Capacity.IsZero() {
		r.Capacity = planning.DefaultCapacity
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO resources (name, role, email, capacity, hourly_rate) VALUES (?, ?, ?, ?, ?)`,
		r.Name, r.Role, r.Email, r.Capacity.String(), nullDecimal(r.HourlyRate),
	)
	if err != nil {
		return fmt.Errorf("failed to insert resource: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	r.ID = planning.ResourceID(id)
	return nil
}

// GetResource returns a resource, or (nil, nil) if it does not exist.
func (s *Store) GetResource(ctx context.Context, id planning.ResourceID) (*planning.Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, role, email, capacity, hourly_rate FROM resources WHERE id = ?`, id)

	r, err := scanResource(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// ListResources returns all resources ordered by ID.
func (s *Store) ListResources(ctx context.Context) ([]planning.Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, role, email, capacity, hourly_rate FROM resources ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query resources: %w", err)
	}
	defer rows.Close()

	var resources []planning.Resource
	for rows.Next() {
		r, err := scanResource(rows)
		if err != nil {
			return nil, err
		}
		resources = append(resources, *r)
	}
	return resources, rows.Err()
}

// UpdateResource updates a resource in place.
func (s *Store) UpdateResource(ctx context.Context, r planning.Resource) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`UPDATE resources SET name = ?, role = ?, email = ?, capacity = ?, hourly_rate = ? WHERE id = ?`,
		r.Name, r.Role, r.Email, r.Capacity.String(), nullDecimal(r.HourlyRate), r.ID,
	)
	return err
}

// DeleteResource removes a resource; its skill links and allocations cascade.
func (s *Store) DeleteResource(ctx context.Context, id planning.ResourceID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `DELETE FROM resources WHERE id = ?`, id)
	return err
}

type scannable interface {
	Scan(dest ...any) error
}

func scanResource(row scannable) (*planning.Resource, error) {
	var (
		r          planning.Resource
		capacity   string
		hourlyRate sql.NullString
	)
	if err := row.Scan(&r.ID, &r.Name, &r.Role, &r.Email, &capacity, &hourlyRate); err != nil {
		return nil, err
	}

	var err error
	r.Capacity, err = decimal.NewFromString(capacity)
	if err != nil {
		return nil, fmt.Errorf("failed to parse capacity %q: %w", capacity, err)
	}
	if hourlyRate.Valid {
		rate, err := decimal.NewFromString(hourlyRate.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse hourly rate %q: %w", hourlyRate.String, err)
		}
		r.HourlyRate = &rate
	}
	return &r, nil
}

// =============================================================================
// SKILLS
// =============================================================================

// CreateSkill inserts a skill and fills in its assigned ID.
func (s *Store) CreateSkill(ctx context.Context, sk *planning.Skill) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO skills (name, category) VALUES (?, ?)`, sk.Name, sk.Category)
	if err != nil {
		return fmt.Errorf("failed to insert skill: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	sk.ID = planning.SkillID(id)
	return nil
}

// ListSkills returns all skills ordered by name.
func (s *Store) ListSkills(ctx context.Context) ([]planning.Skill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.querySkills(ctx, `SELECT id, name, category FROM skills ORDER BY name`)
}

// DeleteSkill removes a skill; resource and work item links cascade.
func (s *Store) DeleteSkill(ctx context.Context, id planning.SkillID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `DELETE FROM skills WHERE id = ?`, id)
	return err
}

// AssignSkill links a skill to a resource. Re-assignment is a no-op.
func (s *Store) AssignSkill(ctx context.Context, resourceID planning.ResourceID, skillID planning.SkillID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO resource_skills (resource_id, skill_id) VALUES (?, ?)
		 ON CONFLICT(resource_id, skill_id) DO NOTHING`,
		resourceID, skillID)
	return err
}

// RemoveSkill unlinks a skill from a resource.
func (s *Store) RemoveSkill(ctx context.Context, resourceID planning.ResourceID, skillID planning.SkillID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`DELETE FROM resource_skills WHERE resource_id = ? AND skill_id = ?`,
		resourceID, skillID)
	return err
}

// ListResourceSkills returns the full skill records a resource possesses.
func (s *Store) ListResourceSkills(ctx context.Context, resourceID planning.ResourceID) ([]planning.Skill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.querySkills(ctx,
		`SELECT sk.id, sk.name, sk.category FROM skills sk
		 JOIN resource_skills rs ON rs.skill_id = sk.id
		 WHERE rs.resource_id = ? ORDER BY sk.name`, resourceID)
}

// ListPossessedSkills returns only the skill IDs, for scoring.
func (s *Store) ListPossessedSkills(ctx context.Context, resourceID planning.ResourceID) ([]planning.SkillID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT skill_id FROM resource_skills WHERE resource_id = ?`, resourceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query resource skills: %w", err)
	}
	defer rows.Close()

	var ids []planning.SkillID
	for rows.Next() {
		var id planning.SkillID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Store) querySkills(ctx context.Context, query string, args ...any) ([]planning.Skill, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query skills: %w", err)
	}
	defer rows.Close()

	var skills []planning.Skill
	for rows.Next() {
		var sk planning.Skill
		if err := rows.Scan(&sk.ID, &sk.Name, &sk.Category); err != nil {
			return nil, err
		}
		skills = append(skills, sk)
	}
	return skills, rows.Err()
}

// =============================================================================
// WORK ITEMS
// =============================================================================

const workItemColumns = `id, title, type, status, priority, start_date, end_date,
		description, progress, estimated_hours`

// CreateWorkItem inserts a work item and fills in its assigned ID.
func (s *Store) CreateWorkItem(ctx context.Context, w *planning.WorkItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO work_items (title, type, status, priority, start_date, end_date, description, progress, estimated_hours)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		w.Title, w.Type, w.Status, w.Priority,
		w.StartDate.Format(dateFormat), w.EndDate.Format(dateFormat),
		w.Description, w.Progress, w.EstimatedHours,
	)
	if err != nil {
		return fmt.Errorf("failed to insert work item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	w.ID = planning.WorkItemID(id)
	return nil
}

// GetWorkItem returns a work item, or (nil, nil) if it does not exist.
func (s *Store) GetWorkItem(ctx context.Context, id planning.WorkItemID) (*planning.WorkItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT `+workItemColumns+` FROM work_items WHERE id = ?`, id)

	w, err := scanWorkItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return w, nil
}

// ListWorkItems returns all work items ordered by start date.
func (s *Store) ListWorkItems(ctx context.Context) ([]planning.WorkItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+workItemColumns+` FROM work_items ORDER BY start_date, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query work items: %w", err)
	}
	defer rows.Close()

	var items []planning.WorkItem
	for rows.Next() {
		w, err := scanWorkItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *w)
	}
	return items, rows.Err()
}

// UpdateWorkItem updates a work item in place.
func (s *Store) UpdateWorkItem(ctx context.Context, w planning.WorkItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`UPDATE work_items SET title = ?, type = ?, status = ?, priority = ?,
		 start_date = ?, end_date = ?, description = ?, progress = ?, estimated_hours = ?
		 WHERE id = ?`,
		w.Title, w.Type, w.Status, w.Priority,
		w.StartDate.Format(dateFormat), w.EndDate.Format(dateFormat),
		w.Description, w.Progress, w.EstimatedHours, w.ID,
	)
	return err
}

// DeleteWorkItem removes a work item; skill links and allocations cascade.
func (s *Store) DeleteWorkItem(ctx context.Context, id planning.WorkItemID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `DELETE FROM work_items WHERE id = ?`, id)
	return err
}

// AddWorkItemSkill links a required skill to a work item, replacing the
// required level if the link already exists.
func (s *Store) AddWorkItemSkill(ctx context.Context, workItemID planning.WorkItemID, skillID planning.SkillID, level int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO work_item_skills (work_item_id, skill_id, level_required) VALUES (?, ?, ?)
		 ON CONFLICT(work_item_id, skill_id) DO UPDATE SET level_required = excluded.level_required`,
		workItemID, skillID, level)
	return err
}

// RemoveWorkItemSkill unlinks a required skill from a work item.
func (s *Store) RemoveWorkItemSkill(ctx context.Context, workItemID planning.WorkItemID, skillID planning.SkillID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`DELETE FROM work_item_skills WHERE work_item_id = ? AND skill_id = ?`,
		workItemID, skillID)
	return err
}

// ListWorkItemSkills returns the full skill records a work item requires.
func (s *Store) ListWorkItemSkills(ctx context.Context, workItemID planning.WorkItemID) ([]planning.Skill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.querySkills(ctx,
		`SELECT sk.id, sk.name, sk.category FROM skills sk
		 JOIN work_item_skills ws ON ws.skill_id = sk.id
		 WHERE ws.work_item_id = ? ORDER BY sk.name`, workItemID)
}

// ListRequiredSkills returns skill IDs with required levels, for scoring.
func (s *Store) ListRequiredSkills(ctx context.Context, workItemID planning.WorkItemID) ([]planning.RequiredSkill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT skill_id, level_required FROM work_item_skills WHERE work_item_id = ?`,
		workItemID)
	if err != nil {
		return nil, fmt.Errorf("failed to query work item skills: %w", err)
	}
	defer rows.Close()

	var required []planning.RequiredSkill
	for rows.Next() {
		var rs planning.RequiredSkill
		if err := rows.Scan(&rs.SkillID, &rs.LevelRequired); err != nil {
			return nil, err
		}
		required = append(required, rs)
	}
	return required, rows.Err()
}

func scanWorkItem(row scannable) (*planning.WorkItem, error) {
	var (
		w              planning.WorkItem
		startDate      string
		endDate        string
		estimatedHours sql.NullInt64
	)
	if err := row.Scan(&w.ID, &w.Title, &w.Type, &w.Status, &w.Priority,
		&startDate, &endDate, &w.Description, &w.Progress, &estimatedHours); err != nil {
		return nil, err
	}

	var err error
	w.StartDate, err = time.Parse(dateFormat, startDate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse start date %q: %w", startDate, err)
	}
	w.EndDate, err = time.Parse(dateFormat, endDate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse end date %q: %w", endDate, err)
	}
	if estimatedHours.Valid {
		w.EstimatedHours = &estimatedHours.Int64
	}
	return &w, nil
}

// =============================================================================
// ALLOCATIONS
// =============================================================================

// ListAllocations returns allocations matching the filter, ordered by week.
func (s *Store) ListAllocations(ctx context.Context, filter planning.AllocationFilter) ([]planning.Allocation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT id, resource_id, work_item_id, week_start_date, hours FROM allocations`
	var conds []string
	var args []any
	if filter.ResourceID != nil {
		conds = append(conds, "resource_id = ?")
		args = append(args, *filter.ResourceID)
	}
	if filter.WorkItemID != nil {
		conds = append(conds, "work_item_id = ?")
		args = append(args, *filter.WorkItemID)
	}
	if filter.WeekFrom != nil {
		conds = append(conds, "week_start_date >= ?")
		args = append(args, filter.WeekFrom.Format(dateFormat))
	}
	if filter.WeekTo != nil {
		conds = append(conds, "week_start_date <= ?")
		args = append(args, filter.WeekTo.Format(dateFormat))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY week_start_date, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query allocations: %w", err)
	}
	defer rows.Close()

	var allocations []planning.Allocation
	for rows.Next() {
		a, err := scanAllocation(rows)
		if err != nil {
			return nil, err
		}
		allocations = append(allocations, *a)
	}
	return allocations, rows.Err()
}

// DeleteAllocations removes every row for the (resource, work item) pair.
func (s *Store) DeleteAllocations(ctx context.Context, resourceID planning.ResourceID, workItemID planning.WorkItemID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`DELETE FROM allocations WHERE resource_id = ? AND work_item_id = ?`,
		resourceID, workItemID)
	return err
}

// InsertAllocations persists a batch of rows atomically.
func (s *Store) InsertAllocations(ctx context.Context, allocations []planning.Allocation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertAllocationsTx(ctx, tx, allocations); err != nil {
		return err
	}
	return tx.Commit()
}

// ReplaceAllocations swaps the pair's rows inside one SQL transaction, so
// the pair is never observable with a partial set.
func (s *Store) ReplaceAllocations(ctx context.Context, resourceID planning.ResourceID, workItemID planning.WorkItemID, allocations []planning.Allocation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM allocations WHERE resource_id = ? AND work_item_id = ?`,
		resourceID, workItemID); err != nil {
		return fmt.Errorf("failed to delete allocations: %w", err)
	}
	if err := insertAllocationsTx(ctx, tx, allocations); err != nil {
		return err
	}
	return tx.Commit()
}

func insertAllocationsTx(ctx context.Context, tx *sql.Tx, allocations []planning.Allocation) error {
	for _, a := range allocations {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO allocations (id, resource_id, work_item_id, week_start_date, hours)
			 VALUES (?, ?, ?, ?, ?)`,
			a.ID, a.ResourceID, a.WorkItemID,
			a.WeekStart.Format(dateFormat), a.Hours.String(),
		); err != nil {
			return fmt.Errorf("failed to insert allocation: %w", err)
		}
	}
	return nil
}

func scanAllocation(row scannable) (*planning.Allocation, error) {
	var (
		a         planning.Allocation
		weekStart string
		hours     string
	)
	if err := row.Scan(&a.ID, &a.ResourceID, &a.WorkItemID, &weekStart, &hours); err != nil {
		return nil, err
	}

	var err error
	a.WeekStart, err = time.Parse(dateFormat, weekStart)
	if err != nil {
		return nil, fmt.Errorf("failed to parse week start %q: %w", weekStart, err)
	}
	a.Hours, err = decimal.NewFromString(hours)
	if err != nil {
		return nil, fmt.Errorf("failed to parse hours %q: %w", hours, err)
	}
	return &a, nil
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"allocations", "work_item_skills", "resource_skills", "work_items", "skills", "resources"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

func nullDecimal(d *decimal.Decimal) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}
