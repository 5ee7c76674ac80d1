package models

import "time"

// LivenessStatus is the derived freshness of a bus position. It is never stored.
type LivenessStatus string

const (
	StatusLive          LivenessStatus = "LIVE"
	StatusStale         LivenessStatus = "STALE"
	StatusOffline       LivenessStatus = "OFFLINE"
	StatusNeverReported LivenessStatus = "NEVER_REPORTED"
)

// Rank orders statuses from freshest to least fresh. NEVER_REPORTED sorts last.
func (s LivenessStatus) Rank() int {
	switch s {
	case StatusLive:
		return 0
	case StatusStale:
		return 1
	case StatusOffline:
		return 2
	default:
		return 3
	}
}

// BusLocationRecord is the single current-location slot kept per bus
type BusLocationRecord struct {
	BusID             string    `json:"bus_id" bson:"_id"`
	Latitude          float64   `json:"latitude" bson:"latitude"`
	Longitude         float64   `json:"longitude" bson:"longitude"`
	Accuracy          *float64  `json:"accuracy,omitempty" bson:"accuracy,omitempty"`
	CapturedAt        time.Time `json:"captured_at" bson:"captured_at"`
	ReceivedAt        time.Time `json:"received_at" bson:"received_at"`
	ReporterSessionID string    `json:"reporter_session_id" bson:"reporter_session_id"`
	SharingEnabled    bool      `json:"sharing_enabled" bson:"sharing_enabled"`
	Geohash           string    `json:"geohash,omitempty" bson:"geohash,omitempty"`
	// StoppedAt is set when sharing was turned off; same-session fixes captured
	// at or before it are late and never revive the bus
	StoppedAt *time.Time `json:"stopped_at,omitempty" bson:"stopped_at,omitempty"`
}

// LocationReport is one driver-reported fix as received by the ingestion service.
// Latitude and Longitude are both nil for an explicit stop-sharing signal.
type LocationReport struct {
	BusID             string
	ReporterSessionID string
	Latitude          *float64
	Longitude         *float64
	Accuracy          *float64
	CapturedAt        time.Time
	SharingEnabled    bool
}

// IsStopSharing reports whether the report only turns sharing off
func (r LocationReport) IsStopSharing() bool {
	return !r.SharingEnabled && r.Latitude == nil && r.Longitude == nil
}

// LocationUpdateRequest is the wire body drivers send over HTTP and NATS.
// SharingEnabled defaults to true when omitted.
type LocationUpdateRequest struct {
	BusID          string    `json:"busId" validate:"required"`
	SessionID      string    `json:"sessionId"`
	Latitude       *float64  `json:"latitude,omitempty"`
	Longitude      *float64  `json:"longitude,omitempty"`
	Accuracy       *float64  `json:"accuracy,omitempty"`
	CapturedAt     time.Time `json:"capturedAt"`
	SharingEnabled *bool     `json:"sharingEnabled,omitempty"`
}

// ToReport converts the wire body into a LocationReport
func (r LocationUpdateRequest) ToReport() LocationReport {
	sharing := true
	if r.SharingEnabled != nil {
		sharing = *r.SharingEnabled
	}
	return LocationReport{
		BusID:             r.BusID,
		ReporterSessionID: r.SessionID,
		Latitude:          r.Latitude,
		Longitude:         r.Longitude,
		Accuracy:          r.Accuracy,
		CapturedAt:        r.CapturedAt,
		SharingEnabled:    sharing,
	}
}

// Ack is the explicit outcome of an ingestion call that did not fail
type Ack struct {
	AcceptedAt time.Time `json:"acceptedAt"`
	Applied    bool      `json:"applied"`
	Superseded bool      `json:"superseded"`
}

// Position is the client-facing view of a stored fix
type Position struct {
	Lat        float64   `json:"lat"`
	Lng        float64   `json:"lng"`
	CapturedAt time.Time `json:"capturedAt"`
	Accuracy   *float64  `json:"accuracy,omitempty"`
}

// BusStatus is what polling clients receive for one bus
type BusStatus struct {
	BusID    string         `json:"busId"`
	Position *Position      `json:"position"`
	Status   LivenessStatus `json:"status"`
}

// LocationEvent is handed to the external messaging collaborator after an applied write
type LocationEvent struct {
	Type           string    `json:"type"`
	BusID          string    `json:"bus_id"`
	SessionID      string    `json:"session_id,omitempty"`
	Latitude       float64   `json:"latitude,omitempty"`
	Longitude      float64   `json:"longitude,omitempty"`
	Geohash        string    `json:"geohash,omitempty"`
	SharingEnabled bool      `json:"sharing_enabled"`
	CapturedAt     time.Time `json:"captured_at,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// Location event types
const (
	EventLocationUpdated = "location_updated"
	EventSharingStopped  = "sharing_stopped"
)

// RouteBus is one bus entry returned by the external bus registry
type RouteBus struct {
	BusID     string `json:"bus_id" db:"id"`
	BusNumber string `json:"bus_number" db:"bus_number"`
	Route     string `json:"route" db:"route"`
}
