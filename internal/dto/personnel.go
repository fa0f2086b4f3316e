package dto

// CreatePersonnelRequest registers a driver or conductor.
type CreatePersonnelRequest struct {
	FullName      string  `json:"fullName" validate:"required"`
	Phone         *string `json:"phone" validate:"omitempty,min=6,max=20"`
	EmployeeCode  string  `json:"employeeCode" validate:"required"`
	LicenseNumber *string `json:"licenseNumber"`
}

// UpdatePersonnelRequest patches registry fields. The assigned bus is never
// set here.
type UpdatePersonnelRequest struct {
	FullName      *string `json:"fullName" validate:"omitempty,min=1"`
	Phone         *string `json:"phone" validate:"omitempty,min=6,max=20"`
	EmployeeCode  *string `json:"employeeCode" validate:"omitempty,min=1"`
	LicenseNumber *string `json:"licenseNumber"`
}
