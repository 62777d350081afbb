package invoices

import "time"

// Invoice row statuses. A row moves pending -> uploaded exactly once and
// never reverts.
const (
	StatusPending  = "pending"
	StatusUploaded = "uploaded"
)

// Invoice is a generated invoice row owned by the point-of-sale system.
type Invoice struct {
	ID         string
	CustomerID string
	Phone      string
	FileName   string
	FileData   []byte
	Status     string
	CreatedAt  time.Time
}
