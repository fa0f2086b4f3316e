package models

import "time"

// Route is owned by the route and schedule service. The fleet core only reads
// it to validate references and label buses.
type Route struct {
	ID         string    `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	Code       *string   `db:"code" json:"code,omitempty"`
	StartPoint *string   `db:"start_point" json:"start_point,omitempty"`
	EndPoint   *string   `db:"end_point" json:"end_point,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}
