package notify

import "context"

// ProfileRepo defines lookup of per-customer SMS profiles.
type ProfileRepo interface {
	GetByCustomer(ctx context.Context, customerID string) (Profile, error)
}

// LogRepo defines the append-only notification audit log.
type LogRepo interface {
	Append(ctx context.Context, entry LogEntry) error
}
