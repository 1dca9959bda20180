package models

import (
	"strings"
	"time"
)

// Vehicle represents a vehicle registered to a resident
type Vehicle struct {
	VehicleID  string    `json:"vehicle_id"`
	ResidentID string    `json:"resident_id"`
	Plate      string    `json:"plate"`
	Brand      string    `json:"brand,omitempty"`
	Model      string    `json:"model,omitempty"`
	Color      string    `json:"color,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// NormalizePlate uppercases a plate and strips separators so LPR readings
// and manual registrations compare equal.
func NormalizePlate(plate string) string {
	plate = strings.ToUpper(strings.TrimSpace(plate))
	plate = strings.ReplaceAll(plate, "-", "")
	plate = strings.ReplaceAll(plate, " ", "")
	plate = strings.ReplaceAll(plate, ".", "")
	return plate
}
