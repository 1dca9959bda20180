package models

import "time"

// VisitStatus represents the status of a visit
type VisitStatus string

const (
	VisitPending   VisitStatus = "PENDING"
	VisitApproved  VisitStatus = "APPROVED"
	VisitDenied    VisitStatus = "DENIED"
	VisitCompleted VisitStatus = "COMPLETED"
)

// Visit represents a visitor record bound to a destination unit
type Visit struct {
	VisitID         string      `json:"visit_id"`
	VisitorName     string      `json:"visitor_name"`
	VisitorRut      string      `json:"visitor_rut,omitempty"`
	VisitorPlate    string      `json:"visitor_plate,omitempty"`
	DestinationUnit string      `json:"destination_unit"`
	SessionID       string      `json:"session_id,omitempty"`
	Status          VisitStatus `json:"status"`
	CreatedAt       time.Time   `json:"created_at"`
	CompletedAt     *time.Time  `json:"completed_at,omitempty"`
}
