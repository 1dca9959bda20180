package models

import "time"

// ResidentRole distinguishes platform roles for access control
type ResidentRole string

const (
	RoleAdmin     ResidentRole = "admin"
	RoleConcierge ResidentRole = "concierge"
	RoleResident  ResidentRole = "resident"
)

// Unit represents a dwelling inside the condominium
type Unit struct {
	ID        string    `json:"unit_id"`
	Number    string    `json:"number"`
	Floor     int       `json:"floor"`
	Tower     string    `json:"tower,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Resident represents a person living in a unit
type Resident struct {
	ID        string       `json:"resident_id"`
	UnitID    string       `json:"unit_id"`
	Name      string       `json:"name"`
	Rut       string       `json:"rut"`
	Email     string       `json:"email,omitempty"`
	Phone     string       `json:"phone,omitempty"`
	Role      ResidentRole `json:"role"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}
