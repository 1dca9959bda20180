package schemas

// CreateUnitRequest represents the request body for registering a unit
type CreateUnitRequest struct {
	Number string `json:"number" binding:"required"`
	Floor  int    `json:"floor"`
	Tower  string `json:"tower,omitempty"`
}

// CreateResidentRequest represents the request body for registering a resident
type CreateResidentRequest struct {
	UnitNumber string `json:"unit_number" binding:"required"`
	Name       string `json:"name" binding:"required"`
	Rut        string `json:"rut" binding:"required"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Role       string `json:"role,omitempty"`
}

// UpdateResidentRequest represents the request body for updating a resident
type UpdateResidentRequest struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
	Role  string `json:"role,omitempty"`
}

// CreateVehicleRequest represents the request body for registering a vehicle
type CreateVehicleRequest struct {
	ResidentID string `json:"resident_id" binding:"required"`
	Plate      string `json:"plate" binding:"required"`
	Brand      string `json:"brand,omitempty"`
	Model      string `json:"model,omitempty"`
	Color      string `json:"color,omitempty"`
}

// CreateVisitRequest represents the request body for registering a visit
type CreateVisitRequest struct {
	VisitorName     string `json:"visitor_name" binding:"required"`
	VisitorRut      string `json:"visitor_rut,omitempty"`
	VisitorPlate    string `json:"visitor_plate,omitempty"`
	DestinationUnit string `json:"destination_unit" binding:"required"`
}

// UpdateVisitStatusRequest represents the request body for updating a visit status
type UpdateVisitStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// PlateEventRequest represents one LPR event posted by a gate camera
type PlateEventRequest struct {
	Plate      string  `json:"plate" binding:"required"`
	CameraID   string  `json:"camera_id" binding:"required"`
	Confidence float64 `json:"confidence"`
}

// PlateEventResponse reports the match outcome of an LPR event
type PlateEventResponse struct {
	DetectionID string `json:"detection_id"`
	Registered  bool   `json:"registered"`
	VehicleID   string `json:"vehicle_id,omitempty"`
	ResidentID  string `json:"resident_id,omitempty"`
}

// CreateCameraRequest represents the request body for registering a camera
type CreateCameraRequest struct {
	Name     string `json:"name" binding:"required"`
	Mount    string `json:"mount" binding:"required"`
	Location string `json:"location,omitempty"`
}

// CameraStreamResponse carries the media-gateway endpoint for a camera mount
type CameraStreamResponse struct {
	CameraID string `json:"camera_id"`
	WHEPURL  string `json:"whep_url"`
}
