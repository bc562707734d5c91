package store

import "context"

// Appointment is a booking row handed over by the conversation engine. The
// engine only writes appointments; reads belong to the admin dashboard.
type Appointment struct {
	UserID      string
	ServiceType string
	Date        string
	Time        string
	Details     string
	Status      string
}

// StatusPending is the initial status of every new appointment.
const StatusPending = "pending"

// Diagnostic records a reported technical problem attached to a booking.
type Diagnostic struct {
	UserID          string
	ProblemReported string
	Resolved        bool
}

// ChatLog mirrors one chat turn for authenticated sessions.
type ChatLog struct {
	UserID      string
	MessageText string
	MessageType string
}

// Store is the persistence collaborator consumed by the conversation
// engine: create-only from the engine's perspective.
type Store interface {
	InsertAppointment(ctx context.Context, a Appointment) error
	InsertDiagnostic(ctx context.Context, d Diagnostic) error
	InsertChatLog(ctx context.Context, l ChatLog) error
}
