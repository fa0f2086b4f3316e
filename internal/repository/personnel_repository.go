package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/campus-fleet-api/internal/models"
)

// PersonnelRepository persists one personnel role. Drivers and conductors
// share a layout and differ only by table.
type PersonnelRepository struct {
	db   *sqlx.DB
	role models.PersonnelRole
	q    personnelQueries
}

type personnelQueries struct {
	list, find, lock, codeTaken, insert, update, bind, release, clearBus, remove string
}

// NewPersonnelRepository constructs a repository for role.
func NewPersonnelRepository(db *sqlx.DB, role models.PersonnelRole) *PersonnelRepository {
	if !role.Valid() {
		role = models.PersonnelDriver
	}
	table := role.Table()
	const columns = `id, full_name, phone, employee_code, license_number, assigned_bus_id, created_at, updated_at`

	return &PersonnelRepository{
		db:   db,
		role: role,
		q: personnelQueries{
			list: `SELECT p.id, p.full_name, p.phone, p.employee_code, p.license_number, p.assigned_bus_id, p.created_at, p.updated_at,
	b.bus_number AS assigned_bus_number
FROM ` + table + ` p
LEFT JOIN buses b ON b.id = p.assigned_bus_id
ORDER BY p.full_name ASC`,
			find:      `SELECT ` + columns + ` FROM ` + table + ` WHERE id = $1`,
			lock:      `SELECT ` + columns + ` FROM ` + table + ` WHERE id = ANY($1) ORDER BY id FOR UPDATE`,
			codeTaken: `SELECT EXISTS (SELECT 1 FROM ` + table + ` WHERE employee_code = $1 AND id <> $2)`,
			insert: `INSERT INTO ` + table + ` (` + columns + `)
VALUES (:id, :full_name, :phone, :employee_code, :license_number, :assigned_bus_id, :created_at, :updated_at)`,
			update: `UPDATE ` + table + ` SET full_name = :full_name, phone = :phone, employee_code = :employee_code,
	license_number = :license_number, updated_at = :updated_at
WHERE id = :id`,
			bind:     `UPDATE ` + table + ` SET assigned_bus_id = $2, updated_at = $3 WHERE id = $1`,
			release:  `UPDATE ` + table + ` SET assigned_bus_id = NULL, updated_at = $3 WHERE id = $1 AND assigned_bus_id = $2`,
			clearBus: `UPDATE ` + table + ` SET assigned_bus_id = NULL, updated_at = $2 WHERE assigned_bus_id = $1`,
			remove:   `DELETE FROM ` + table + ` WHERE id = $1`,
		},
	}
}

// Role returns the role this repository serves.
func (r *PersonnelRepository) Role() models.PersonnelRole {
	return r.role
}

func (r *PersonnelRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// List returns every person of the role with their bus number.
func (r *PersonnelRepository) List(ctx context.Context) ([]models.PersonnelDetail, error) {
	var people []models.PersonnelDetail
	if err := r.db.SelectContext(ctx, &people, r.q.list); err != nil {
		return nil, fmt.Errorf("list %s: %w", r.role.Table(), err)
	}
	for i := range people {
		people[i].Role = r.role
	}
	return people, nil
}

// FindByID fetches a person by id.
func (r *PersonnelRepository) FindByID(ctx context.Context, id string) (*models.Personnel, error) {
	var person models.Personnel
	if err := r.db.GetContext(ctx, &person, r.q.find, id); err != nil {
		return nil, err
	}
	person.Role = r.role
	return &person, nil
}

// LockByIDs locks the given people in id order and returns them keyed by id.
// Unknown ids are simply absent from the result.
func (r *PersonnelRepository) LockByIDs(ctx context.Context, exec sqlx.ExtContext, ids []string) (map[string]*models.Personnel, error) {
	unique := dedupe(ids)
	locked := make(map[string]*models.Personnel, len(unique))
	if len(unique) == 0 {
		return locked, nil
	}

	var people []models.Personnel
	if err := sqlx.SelectContext(ctx, r.exec(exec), &people, r.q.lock, pq.Array(unique)); err != nil {
		return nil, fmt.Errorf("lock %s: %w", r.role.Table(), err)
	}
	for i := range people {
		people[i].Role = r.role
		locked[people[i].ID] = &people[i]
	}
	return locked, nil
}

// EmployeeCodeTaken reports whether another person of the role already uses code.
func (r *PersonnelRepository) EmployeeCodeTaken(ctx context.Context, code, excludeID string) (bool, error) {
	var taken bool
	if err := r.db.GetContext(ctx, &taken, r.q.codeTaken, code, excludeID); err != nil {
		return false, fmt.Errorf("check %s employee code: %w", r.role, err)
	}
	return taken, nil
}

// Create inserts a person. New people never start with a bus.
func (r *PersonnelRepository) Create(ctx context.Context, person *models.Personnel) error {
	if person.ID == "" {
		person.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	person.Role = r.role
	person.AssignedBusID = nil
	person.CreatedAt = now
	person.UpdatedAt = now

	if _, err := r.db.NamedExecContext(ctx, r.q.insert, person); err != nil {
		return fmt.Errorf("create %s: %w", r.role, err)
	}
	return nil
}

// Update writes registry fields. assigned_bus_id is left untouched.
func (r *PersonnelRepository) Update(ctx context.Context, person *models.Personnel) error {
	person.UpdatedAt = time.Now().UTC()
	res, err := r.db.NamedExecContext(ctx, r.q.update, person)
	if err != nil {
		return fmt.Errorf("update %s: %w", r.role, err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// BindBus points the person at busID.
func (r *PersonnelRepository) BindBus(ctx context.Context, exec sqlx.ExtContext, personID, busID string) error {
	res, err := r.exec(exec).ExecContext(ctx, r.q.bind, personID, busID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("bind %s to bus: %w", r.role, err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ReleaseBus clears the person's back-reference if it still points at busID.
func (r *PersonnelRepository) ReleaseBus(ctx context.Context, exec sqlx.ExtContext, personID, busID string) error {
	if _, err := r.exec(exec).ExecContext(ctx, r.q.release, personID, busID, time.Now().UTC()); err != nil {
		return fmt.Errorf("release %s from bus: %w", r.role, err)
	}
	return nil
}

// ClearBus releases whoever of the role points at busID.
func (r *PersonnelRepository) ClearBus(ctx context.Context, exec sqlx.ExtContext, busID string) error {
	if _, err := r.exec(exec).ExecContext(ctx, r.q.clearBus, busID, time.Now().UTC()); err != nil {
		return fmt.Errorf("clear %s back-references: %w", r.role, err)
	}
	return nil
}

// Delete removes a person.
func (r *PersonnelRepository) Delete(ctx context.Context, exec sqlx.ExtContext, id string) error {
	res, err := r.exec(exec).ExecContext(ctx, r.q.remove, id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", r.role, err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
