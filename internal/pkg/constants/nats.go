package constants

// Subjects and topics
const (
	// Driver clients may report fixes over NATS request/reply
	SubjectLocationReport = "bus.location.report"

	// Events for the external messaging collaborator
	SubjectLocationUpdated = "bus.location.updated"
	SubjectSharingStopped  = "bus.sharing.stopped"
)
