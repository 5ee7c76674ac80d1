package constants

// Redis key formats
const (
	KeyBusLocation = "bus:location:%s" // Format: bus:location:{bus_id}
)

// Redis hash fields
const (
	FieldLatitude   = "lat"
	FieldLongitude  = "lng"
	FieldAccuracy   = "acc"
	FieldCapturedAt = "captured_at" // epoch milliseconds
	FieldReceivedAt = "received_at" // epoch milliseconds
	FieldSessionID  = "session_id"
	FieldSharing    = "sharing"
	FieldGeohash    = "geohash"
	FieldStoppedAt  = "stopped_at" // epoch milliseconds
)
