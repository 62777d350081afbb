package invoices

import "context"

// Repo defines persistence operations for invoice rows.
type Repo interface {
	// ListPending returns all rows still awaiting upload.
	ListPending(ctx context.Context) ([]Invoice, error)
	// MarkUploaded flips a pending row to uploaded. The transition happens
	// at most once; an already-uploaded row is left untouched.
	MarkUploaded(ctx context.Context, id string) error
}
