package invoices

import (
	"context"
	"sync/atomic"

	"invoice-courier/internal/notify"
	"invoice-courier/internal/shared/metrics"
	"invoice-courier/internal/shared/telemetry"
	"invoice-courier/internal/storage"
)

// Notifier sends the share link to the customer.
type Notifier interface {
	Notify(ctx context.Context, phone, customerID, link string) (notify.Outcome, error)
}

// Service is the poll loop. Each tick fetches pending rows and moves them
// through validate -> upload -> mark uploaded -> notify, isolating failures
// per row.
type Service struct {
	Repo     Repo
	Gateway  storage.Gateway
	Folder   storage.Folder
	Notifier Notifier

	busy atomic.Bool
}

// Tick runs one poll cycle. A tick that is still running when the next one
// fires causes the new tick to be skipped, so rows are never processed
// concurrently.
func (s *Service) Tick(ctx context.Context) {
	if !s.busy.CompareAndSwap(false, true) {
		telemetry.Warn("poller.tick.overlap_skipped", nil)
		metrics.IncPollTicksSkipped()
		return
	}
	defer s.busy.Store(false)
	metrics.IncPollTicks()

	rows, err := s.Repo.ListPending(ctx)
	if err != nil {
		// A database failure aborts this tick only; the next tick retries.
		telemetry.Error("poller.list_pending_failed", map[string]any{
			"error": err.Error(),
		})
		return
	}
	if len(rows) == 0 {
		return
	}

	telemetry.Info("poller.tick", map[string]any{"pending": len(rows)})
	for i := range rows {
		s.processRow(ctx, rows[i])
	}
}

// processRow drives one row through the state machine. Every failure path
// returns without touching the remaining rows.
func (s *Service) processRow(ctx context.Context, inv Invoice) {
	fields := map[string]any{
		"invoice_id":  inv.ID,
		"customer_id": inv.CustomerID,
	}

	phone, err := NormalizePhone(inv.Phone)
	if err != nil {
		// Row stays pending and is reconsidered next tick; fixing the
		// number in the source table is an operational action.
		fields["phone"] = inv.Phone
		telemetry.Error("poller.row.invalid_phone", fields)
		metrics.IncInvoicesSkipped()
		return
	}

	link, err := s.Gateway.Upload(ctx, s.Folder, inv.FileName, inv.FileData)
	if err != nil {
		fields["error"] = err.Error()
		telemetry.Error("poller.row.upload_failed", fields)
		metrics.IncInvoicesFailed()
		return
	}

	// Persist the transition before notifying so a notification failure can
	// never cause a re-upload.
	if err := s.Repo.MarkUploaded(ctx, inv.ID); err != nil {
		fields["error"] = err.Error()
		telemetry.Error("poller.row.mark_uploaded_failed", fields)
		metrics.IncInvoicesFailed()
		return
	}
	metrics.IncInvoicesUploaded()

	outcome, err := s.Notifier.Notify(ctx, phone, inv.CustomerID, link)
	if err != nil {
		// The row is already uploaded; the notification is not retried.
		fields["error"] = err.Error()
		telemetry.Error("poller.row.notify_failed", fields)
		return
	}

	fields["outcome"] = string(outcome)
	fields["link"] = link
	telemetry.Info("poller.row.done", fields)
}
