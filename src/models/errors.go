package models

import "errors"

// Domain-level sentinel errors for business logic
// These errors should not contain HTTP-specific information

var (
	// ErrSessionNotFound indicates that a concierge session with the given ID does not exist
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionEnded indicates that an operation was attempted against a session already ended
	ErrSessionEnded = errors.New("session already ended")

	// ErrInvalidTransition indicates an illegal session state transition
	ErrInvalidTransition = errors.New("invalid session state transition")

	// ErrApprovalNotFound indicates that no pending approval exists for the session
	ErrApprovalNotFound = errors.New("pending approval not found")

	// ErrApprovalExists indicates that an open pending approval already exists for the session
	ErrApprovalExists = errors.New("pending approval already open for session")

	// ErrUnitNotFound indicates that a unit with the given number does not exist
	ErrUnitNotFound = errors.New("unit not found")

	// ErrResidentNotFound indicates that a resident with the given ID does not exist
	ErrResidentNotFound = errors.New("resident not found")

	// ErrVehicleNotFound indicates that no vehicle is registered for the given plate
	ErrVehicleNotFound = errors.New("vehicle not found")

	// ErrVisitNotFound indicates that a visit with the given ID does not exist
	ErrVisitNotFound = errors.New("visit not found")

	// ErrCameraNotFound indicates that a camera with the given ID does not exist
	ErrCameraNotFound = errors.New("camera not found")

	// ErrDuplicatePlate indicates that a vehicle with the same plate is already registered
	ErrDuplicatePlate = errors.New("plate already registered")
)
