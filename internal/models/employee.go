package models

import "time"

// Employee represents a technician or office member known to the identity provider.
type Employee struct {
	ID        string    `json:"id"`
	FullName  string    `json:"fullname"`
	Position  string    `json:"position"`
	Email     string    `json:"email"`
	Phone     string    `json:"phoneNumber"`
	Roles     []string  `json:"roles"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// EmployeePatch holds a partial employee update.
type EmployeePatch struct {
	FullName *string
	Position *string
	Email    *string
	Phone    *string
	Roles    []string
	Active   *bool
}
