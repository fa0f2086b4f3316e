package models

import "time"

// LocationHistory is one immutable audit row written after a location push.
// Seq is assigned by the database and breaks ties between equal timestamps.
type LocationHistory struct {
	ID              string    `db:"id" json:"id"`
	Seq             int64     `db:"seq" json:"seq"`
	BusID           string    `db:"bus_id" json:"bus_id"`
	Location        string    `db:"location" json:"location"`
	Direction       Direction `db:"direction" json:"direction"`
	Status          BusStatus `db:"status" json:"status"`
	PassengerCount  int       `db:"passenger_count" json:"passenger_count"`
	StudentsOnboard int       `db:"students_onboard" json:"students_onboard"`
	TotalStudents   *int      `db:"total_students" json:"total_students,omitempty"`
	AlertMessage    *string   `db:"alert_message" json:"alert_message,omitempty"`
	AlertType       *string   `db:"alert_type" json:"alert_type,omitempty"`
	RecordedAt      time.Time `db:"recorded_at" json:"recorded_at"`
}
