package models

import "time"

// BusStatus is the operational status of a bus.
type BusStatus string

const (
	BusStatusInTransit   BusStatus = "in-transit"
	BusStatusMaintenance BusStatus = "maintenance"
	BusStatusIdle        BusStatus = "idle"
)

// Direction is the leg a bus is currently running.
type Direction string

const (
	DirectionDeparture Direction = "departure"
	DirectionReturn    Direction = "return"
)

// DepotLocation is where unassigned buses are parked.
const DepotLocation = "Depot"

// PassengerType selects which onboard counter a delta applies to.
type PassengerType string

const (
	PassengerStudents PassengerType = "students"
	PassengerOthers   PassengerType = "others"
)

// PassengerCounts is the onboard tally. Both columns are NOT NULL DEFAULT 0,
// so a loaded bus always carries a usable value.
type PassengerCounts struct {
	Students int `db:"current_students" json:"students"`
	Others   int `db:"current_others" json:"others"`
}

// Onboard returns students plus others.
func (p PassengerCounts) Onboard() int {
	return p.Students + p.Others
}

// Of returns the counter for t.
func (p PassengerCounts) Of(t PassengerType) int {
	if t == PassengerOthers {
		return p.Others
	}
	return p.Students
}

// With returns a copy with the counter for t replaced.
func (p PassengerCounts) With(t PassengerType, value int) PassengerCounts {
	if t == PassengerOthers {
		p.Others = value
	} else {
		p.Students = value
	}
	return p
}

// Attendance is the last tally pushed by the conductor app.
type Attendance struct {
	Route         *string `db:"attendance_route" json:"route"`
	Count         *int    `db:"attendance_count" json:"count"`
	TotalStudents *int    `db:"attendance_total_students" json:"total_students"`
}

// Bus is a fleet unit with its assignment references and live state.
type Bus struct {
	ID                 string  `db:"id" json:"id"`
	BusNumber          string  `db:"bus_number" json:"bus_number"`
	RegistrationNumber string  `db:"registration_number" json:"registration_number"`
	ChassisNumber      string  `db:"chassis_number" json:"chassis_number"`
	EngineNumber       string  `db:"engine_number" json:"engine_number"`
	SeatingCapacity    int     `db:"seating_capacity" json:"seating_capacity"`
	StandingCapacity   int     `db:"standing_capacity" json:"standing_capacity"`
	DriverID           *string `db:"driver_id" json:"driver_id"`
	ConductorID        *string `db:"conductor_id" json:"conductor_id"`
	RouteID            *string `db:"route_id" json:"route_id"`

	CurrentLocation  string    `db:"current_location" json:"current_location"`
	Status           BusStatus `db:"status" json:"status"`
	CurrentDirection Direction `db:"current_direction" json:"current_direction"`
	PassengerCounts  `json:"current_passengers"`
	Attendance       `json:"attendance"`
	AlertMessage     *string    `db:"alert_message" json:"alert_message"`
	AlertType        *string    `db:"alert_type" json:"alert_type"`
	LastUpdated      *time.Time `db:"last_updated" json:"last_updated"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// NewBus returns a bus in the depot state, which is how every bus starts.
func NewBus(number, registration, chassis, engine string, seating, standing int) *Bus {
	b := &Bus{
		BusNumber:          number,
		RegistrationNumber: registration,
		ChassisNumber:      chassis,
		EngineNumber:       engine,
		SeatingCapacity:    seating,
		StandingCapacity:   standing,
	}
	b.ResetToDepot()
	return b
}

// ResetToDepot parks the bus: maintenance at the depot, departure leg, empty,
// attendance and alert cleared. Personnel and route slots are left alone.
func (b *Bus) ResetToDepot() {
	b.CurrentLocation = DepotLocation
	b.Status = BusStatusMaintenance
	b.CurrentDirection = DirectionDeparture
	b.PassengerCounts = PassengerCounts{}
	b.Attendance = Attendance{}
	b.AlertMessage = nil
	b.AlertType = nil
}

// AvailableSeats is seating capacity minus everyone onboard.
func (b *Bus) AvailableSeats() int {
	return b.SeatingCapacity - b.Onboard()
}

// Slot returns the personnel reference held for role.
func (b *Bus) Slot(role PersonnelRole) *string {
	if role == PersonnelConductor {
		return b.ConductorID
	}
	return b.DriverID
}

// SetSlot replaces the personnel reference held for role.
func (b *Bus) SetSlot(role PersonnelRole, id *string) {
	if role == PersonnelConductor {
		b.ConductorID = id
		return
	}
	b.DriverID = id
}

// BusDetail is a bus joined with the display fields of its driver, conductor
// and route.
type BusDetail struct {
	Bus
	DriverName     *string `db:"driver_name" json:"driver_name,omitempty"`
	DriverPhone    *string `db:"driver_phone" json:"driver_phone,omitempty"`
	ConductorName  *string `db:"conductor_name" json:"conductor_name,omitempty"`
	ConductorPhone *string `db:"conductor_phone" json:"conductor_phone,omitempty"`
	RouteName      *string `db:"route_name" json:"route_name,omitempty"`
}

// BusFilter narrows bus listings.
type BusFilter struct {
	Status  *BusStatus
	RouteID *string
	Search  string
}

// BusIdentity holds the four fields that must each be unique across the fleet.
type BusIdentity struct {
	BusNumber          string
	RegistrationNumber string
	ChassisNumber      string
	EngineNumber       string
}

// Identity returns the bus identity fields.
func (b *Bus) Identity() BusIdentity {
	return BusIdentity{
		BusNumber:          b.BusNumber,
		RegistrationNumber: b.RegistrationNumber,
		ChassisNumber:      b.ChassisNumber,
		EngineNumber:       b.EngineNumber,
	}
}
