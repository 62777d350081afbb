package notify

import "time"

// Profile statuses gate whether a customer receives notifications.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Profile holds a customer's SMS opt-in and gateway credentials.
type Profile struct {
	CustomerID  string
	Status      string
	APIUsername string
	APIPassword string
}

// LogEntry is an append-only audit record of a sent notification.
type LogEntry struct {
	ID            string
	CustomerID    string
	APIUsername   string
	Phone         string
	ShareLink     string
	GatewayDetail string
	SentAt        time.Time
}

// Outcome is the result of a notification attempt.
type Outcome string

const (
	OutcomeSent       Outcome = "sent"
	OutcomeSuppressed Outcome = "suppressed"
)
