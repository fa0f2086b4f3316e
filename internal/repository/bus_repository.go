package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/campus-fleet-api/internal/models"
)

const busColumns = `b.id, b.bus_number, b.registration_number, b.chassis_number, b.engine_number,
	b.seating_capacity, b.standing_capacity, b.driver_id, b.conductor_id, b.route_id,
	b.current_location, b.status, b.current_direction, b.current_students, b.current_others,
	b.attendance_route, b.attendance_count, b.attendance_total_students,
	b.alert_message, b.alert_type, b.last_updated, b.created_at, b.updated_at`

const busDetailSelect = `SELECT ` + busColumns + `,
	d.full_name AS driver_name, d.phone AS driver_phone,
	c.full_name AS conductor_name, c.phone AS conductor_phone,
	r.name AS route_name
FROM buses b
LEFT JOIN drivers d ON d.id = b.driver_id
LEFT JOIN conductors c ON c.id = b.conductor_id
LEFT JOIN routes r ON r.id = b.route_id`

// BusRepository persists buses and their live state.
type BusRepository struct {
	db *sqlx.DB
}

// NewBusRepository constructs a BusRepository.
func NewBusRepository(db *sqlx.DB) *BusRepository {
	return &BusRepository{db: db}
}

func (r *BusRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// List returns buses joined with driver, conductor and route names.
func (r *BusRepository) List(ctx context.Context, filter models.BusFilter) ([]models.BusDetail, error) {
	var (
		conditions []string
		args       []interface{}
	)
	if filter.Status != nil {
		args = append(args, *filter.Status)
		conditions = append(conditions, fmt.Sprintf("b.status = $%d", len(args)))
	}
	if filter.RouteID != nil {
		args = append(args, *filter.RouteID)
		conditions = append(conditions, fmt.Sprintf("b.route_id = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		conditions = append(conditions, fmt.Sprintf("(LOWER(b.bus_number) LIKE $%d OR LOWER(b.registration_number) LIKE $%d)", len(args), len(args)))
	}

	query := busDetailSelect
	if len(conditions) > 0 {
		query += "\nWHERE " + strings.Join(conditions, " AND ")
	}
	query += "\nORDER BY b.bus_number ASC"

	var buses []models.BusDetail
	if err := r.db.SelectContext(ctx, &buses, query, args...); err != nil {
		return nil, fmt.Errorf("list buses: %w", err)
	}
	return buses, nil
}

// FindByID fetches a bus without taking a lock.
func (r *BusRepository) FindByID(ctx context.Context, id string) (*models.Bus, error) {
	query := `SELECT ` + busColumns + ` FROM buses b WHERE b.id = $1`
	var bus models.Bus
	if err := r.db.GetContext(ctx, &bus, query, id); err != nil {
		return nil, err
	}
	return &bus, nil
}

// FindDetailByID fetches a bus with its display relations.
func (r *BusRepository) FindDetailByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.BusDetail, error) {
	query := busDetailSelect + "\nWHERE b.id = $1"
	var bus models.BusDetail
	if err := sqlx.GetContext(ctx, r.exec(exec), &bus, query, id); err != nil {
		return nil, err
	}
	return &bus, nil
}

// LockByID loads a bus and holds its row lock until exec commits.
func (r *BusRepository) LockByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Bus, error) {
	query := `SELECT ` + busColumns + ` FROM buses b WHERE b.id = $1 FOR UPDATE`
	var bus models.Bus
	if err := sqlx.GetContext(ctx, r.exec(exec), &bus, query, id); err != nil {
		return nil, err
	}
	return &bus, nil
}

// FindByPersonnel returns the bus whose role slot holds personID, or nil when
// no bus does. With lock set the row stays locked until exec commits.
func (r *BusRepository) FindByPersonnel(ctx context.Context, exec sqlx.ExtContext, role models.PersonnelRole, personID string, lock bool) (*models.Bus, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("unknown personnel role %q", role)
	}
	query := `SELECT ` + busColumns + ` FROM buses b WHERE b.` + role.BusColumn() + ` = $1`
	if lock {
		query += " FOR UPDATE"
	}
	var bus models.Bus
	if err := sqlx.GetContext(ctx, r.exec(exec), &bus, query, personID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find bus by %s: %w", role, err)
	}
	return &bus, nil
}

// FindIdentityClash returns the name of the first identity field already used
// by a bus other than excludeID, or an empty string.
func (r *BusRepository) FindIdentityClash(ctx context.Context, identity models.BusIdentity, excludeID string) (string, error) {
	const query = `
SELECT bus_number, registration_number, chassis_number, engine_number
FROM buses
WHERE id <> $5
	AND (bus_number = $1 OR registration_number = $2 OR chassis_number = $3 OR engine_number = $4)
LIMIT 1`

	var existing struct {
		BusNumber          string `db:"bus_number"`
		RegistrationNumber string `db:"registration_number"`
		ChassisNumber      string `db:"chassis_number"`
		EngineNumber       string `db:"engine_number"`
	}
	err := r.db.GetContext(ctx, &existing, query,
		identity.BusNumber, identity.RegistrationNumber, identity.ChassisNumber, identity.EngineNumber, excludeID)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("check bus identity: %w", err)
	}

	switch {
	case existing.BusNumber == identity.BusNumber:
		return "bus_number", nil
	case existing.RegistrationNumber == identity.RegistrationNumber:
		return "registration_number", nil
	case existing.ChassisNumber == identity.ChassisNumber:
		return "chassis_number", nil
	default:
		return "engine_number", nil
	}
}

// Create inserts a new bus.
func (r *BusRepository) Create(ctx context.Context, bus *models.Bus) error {
	if bus.ID == "" {
		bus.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	bus.CreatedAt = now
	bus.UpdatedAt = now

	const query = `
INSERT INTO buses (
	id, bus_number, registration_number, chassis_number, engine_number,
	seating_capacity, standing_capacity, driver_id, conductor_id, route_id,
	current_location, status, current_direction, current_students, current_others,
	created_at, updated_at
) VALUES (
	:id, :bus_number, :registration_number, :chassis_number, :engine_number,
	:seating_capacity, :standing_capacity, :driver_id, :conductor_id, :route_id,
	:current_location, :status, :current_direction, :current_students, :current_others,
	:created_at, :updated_at
)`
	if _, err := r.db.NamedExecContext(ctx, query, bus); err != nil {
		return fmt.Errorf("create bus: %w", err)
	}
	return nil
}

// Update writes every mutable column of bus. Callers hold the row lock.
func (r *BusRepository) Update(ctx context.Context, exec sqlx.ExtContext, bus *models.Bus) error {
	bus.UpdatedAt = time.Now().UTC()

	const query = `
UPDATE buses SET
	bus_number = :bus_number,
	registration_number = :registration_number,
	chassis_number = :chassis_number,
	engine_number = :engine_number,
	seating_capacity = :seating_capacity,
	standing_capacity = :standing_capacity,
	driver_id = :driver_id,
	conductor_id = :conductor_id,
	route_id = :route_id,
	current_location = :current_location,
	status = :status,
	current_direction = :current_direction,
	current_students = :current_students,
	current_others = :current_others,
	attendance_route = :attendance_route,
	attendance_count = :attendance_count,
	attendance_total_students = :attendance_total_students,
	alert_message = :alert_message,
	alert_type = :alert_type,
	last_updated = :last_updated,
	updated_at = :updated_at
WHERE id = :id`

	res, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, bus)
	if err != nil {
		return fmt.Errorf("update bus: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a bus.
func (r *BusRepository) Delete(ctx context.Context, exec sqlx.ExtContext, id string) error {
	res, err := r.exec(exec).ExecContext(ctx, `DELETE FROM buses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete bus: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
