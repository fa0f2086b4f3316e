package dto

import "github.com/noah-isme/campus-fleet-api/internal/models"

// CreateBusRequest registers a new bus. The bus always starts at the depot.
type CreateBusRequest struct {
	BusNumber          string  `json:"busNumber" validate:"required"`
	RegistrationNumber string  `json:"registrationNumber" validate:"required"`
	ChassisNumber      string  `json:"chassisNumber" validate:"required"`
	EngineNumber       string  `json:"engineNumber" validate:"required"`
	SeatingCapacity    int     `json:"seatingCapacity" validate:"required,gt=0"`
	StandingCapacity   int     `json:"standingCapacity" validate:"gte=0"`
	RouteID            *string `json:"routeId"`
}

// UpdateBusRequest patches identity, capacity and route. Personnel slots are
// changed only through the assignment endpoints.
type UpdateBusRequest struct {
	BusNumber          *string    `json:"busNumber" validate:"omitempty,min=1"`
	RegistrationNumber *string    `json:"registrationNumber" validate:"omitempty,min=1"`
	ChassisNumber      *string    `json:"chassisNumber" validate:"omitempty,min=1"`
	EngineNumber       *string    `json:"engineNumber" validate:"omitempty,min=1"`
	SeatingCapacity    *int       `json:"seatingCapacity" validate:"omitempty,gt=0"`
	StandingCapacity   *int       `json:"standingCapacity" validate:"omitempty,gte=0"`
	RouteID            OptionalID `json:"routeId"`
}

// BusListQuery filters GET /buses.
type BusListQuery struct {
	Status  string `form:"status" validate:"omitempty,oneof=in-transit maintenance idle"`
	RouteID string `form:"routeId"`
	Search  string `form:"q"`
}

// AssignPersonnelRequest binds or unbinds the driver and conductor of a bus.
// An omitted key leaves that slot alone and null unbinds it. RouteID is
// applied only when a value is supplied.
type AssignPersonnelRequest struct {
	BusID       string     `json:"busId" validate:"required"`
	DriverID    OptionalID `json:"driverId"`
	ConductorID OptionalID `json:"conductorId"`
	RouteID     *string    `json:"routeId"`
}

// AssignSlotRequest is the body of the single-role assignment endpoints.
type AssignSlotRequest struct {
	PersonnelID OptionalID `json:"personnelId"`
}

// AttendanceData is the conductor's tally for the current leg.
type AttendanceData struct {
	Route         string `json:"route"`
	Count         *int   `json:"count" validate:"required,gte=0"`
	TotalStudents *int   `json:"totalStudents" validate:"omitempty,gte=0"`
}

// LocationUpdateRequest is pushed periodically by the conductor app.
type LocationUpdateRequest struct {
	CurrentLocation string           `json:"currentLocation" validate:"required"`
	Status          models.BusStatus `json:"status" validate:"required,oneof=in-transit maintenance idle"`
	AttendanceData  AttendanceData   `json:"attendanceData"`
	RouteDirection  models.Direction `json:"routeDirection" validate:"required,oneof=departure return"`
	AlertMessage    *string          `json:"alertMessage"`
	AlertType       *string          `json:"alertType"`
}

// PassengerDeltaRequest boards or alights count passengers of one type.
type PassengerDeltaRequest struct {
	Type  models.PassengerType `json:"type" validate:"required,oneof=students others"`
	Count int                  `json:"count" validate:"required,gte=1"`
}

// PassengerStatus is returned after a boarding or alighting change.
type PassengerStatus struct {
	CurrentPassengers models.PassengerCounts `json:"current_passengers"`
	AvailableSeats    int                    `json:"available_seats"`
}
