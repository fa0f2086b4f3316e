package models

import "time"

// PersonnelRole selects the driver or conductor registry.
type PersonnelRole string

const (
	PersonnelDriver    PersonnelRole = "driver"
	PersonnelConductor PersonnelRole = "conductor"
)

// PersonnelRoles lists every role in lock order.
var PersonnelRoles = []PersonnelRole{PersonnelDriver, PersonnelConductor}

// Valid reports whether r is a known role.
func (r PersonnelRole) Valid() bool {
	return r == PersonnelDriver || r == PersonnelConductor
}

// Table is the registry table for r.
func (r PersonnelRole) Table() string {
	if r == PersonnelConductor {
		return "conductors"
	}
	return "drivers"
}

// BusColumn is the buses column that references r.
func (r PersonnelRole) BusColumn() string {
	if r == PersonnelConductor {
		return "conductor_id"
	}
	return "driver_id"
}

// UserRole is the token role used by people registered as r.
func (r PersonnelRole) UserRole() UserRole {
	if r == PersonnelConductor {
		return RoleConductor
	}
	return RoleDriver
}

// Personnel is a driver or conductor. AssignedBusID mirrors the bus slot that
// points at this person.
type Personnel struct {
	ID            string        `db:"id" json:"id"`
	Role          PersonnelRole `db:"-" json:"role"`
	FullName      string        `db:"full_name" json:"full_name"`
	Phone         *string       `db:"phone" json:"phone,omitempty"`
	EmployeeCode  string        `db:"employee_code" json:"employee_code"`
	LicenseNumber *string       `db:"license_number" json:"license_number,omitempty"`
	AssignedBusID *string       `db:"assigned_bus_id" json:"assigned_bus_id"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at" json:"updated_at"`
}

// PersonnelDetail adds the assigned bus number for display.
type PersonnelDetail struct {
	Personnel
	AssignedBusNumber *string `db:"assigned_bus_number" json:"assigned_bus_number,omitempty"`
}
