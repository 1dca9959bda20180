package models

import "time"

// PlateDetection represents one license-plate-recognition event reported
// by a gate camera
type PlateDetection struct {
	DetectionID string    `json:"detection_id"`
	Plate       string    `json:"plate"`
	CameraID    string    `json:"camera_id"`
	Confidence  float64   `json:"confidence"`
	Registered  bool      `json:"registered"`
	VehicleID   string    `json:"vehicle_id,omitempty"`
	DetectedAt  time.Time `json:"detected_at"`
}

// Camera represents a registered camera and its media-gateway mount
type Camera struct {
	CameraID  string    `json:"camera_id"`
	Name      string    `json:"name"`
	Mount     string    `json:"mount"`
	Location  string    `json:"location,omitempty"`
	Enabled   bool      `json:"enabled"`
	CreatedAt time.Time `json:"created_at"`
}
