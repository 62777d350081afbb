package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var (
	invoicesUploadedTotal    atomic.Uint64
	invoicesSkippedTotal     atomic.Uint64
	invoicesFailedTotal      atomic.Uint64
	notificationsSentTotal   atomic.Uint64
	notificationsSuppressed  atomic.Uint64
	notificationsFailedTotal atomic.Uint64
	documentsPrunedTotal     atomic.Uint64
	pollTicksTotal           atomic.Uint64
	pollTicksSkippedTotal    atomic.Uint64
)

// IncInvoicesUploaded increments the uploaded-invoice counter.
func IncInvoicesUploaded() {
	invoicesUploadedTotal.Add(1)
}

// IncInvoicesSkipped increments the skipped-invoice counter (invalid phone).
func IncInvoicesSkipped() {
	invoicesSkippedTotal.Add(1)
}

// IncInvoicesFailed increments the failed-invoice counter.
func IncInvoicesFailed() {
	invoicesFailedTotal.Add(1)
}

// IncNotificationsSent increments the sent-notification counter.
func IncNotificationsSent() {
	notificationsSentTotal.Add(1)
}

// IncNotificationsSuppressed increments the suppressed-notification counter.
func IncNotificationsSuppressed() {
	notificationsSuppressed.Add(1)
}

// IncNotificationsFailed increments the failed-notification counter.
func IncNotificationsFailed() {
	notificationsFailedTotal.Add(1)
}

// AddDocumentsPruned adds to the pruned-document counter.
func AddDocumentsPruned(n int) {
	if n > 0 {
		documentsPrunedTotal.Add(uint64(n))
	}
}

// IncPollTicks increments the poll-tick counter.
func IncPollTicks() {
	pollTicksTotal.Add(1)
}

// IncPollTicksSkipped increments the overlapping-tick skip counter.
func IncPollTicksSkipped() {
	pollTicksSkippedTotal.Add(1)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "invoices_uploaded_total", "Total invoices uploaded", invoicesUploadedTotal.Load())
	writeCounter(&buf, "invoices_skipped_total", "Total invoices skipped for invalid phone", invoicesSkippedTotal.Load())
	writeCounter(&buf, "invoices_failed_total", "Total invoice rows that failed processing", invoicesFailedTotal.Load())
	writeCounter(&buf, "notifications_sent_total", "Total SMS notifications sent", notificationsSentTotal.Load())
	writeCounter(&buf, "notifications_suppressed_total", "Total SMS notifications suppressed", notificationsSuppressed.Load())
	writeCounter(&buf, "notifications_failed_total", "Total SMS notifications rejected by the gateway", notificationsFailedTotal.Load())
	writeCounter(&buf, "documents_pruned_total", "Total stored documents deleted by retention", documentsPrunedTotal.Load())
	writeCounter(&buf, "poll_ticks_total", "Total poll ticks executed", pollTicksTotal.Load())
	writeCounter(&buf, "poll_ticks_skipped_total", "Total poll ticks skipped due to overlap", pollTicksSkippedTotal.Load())
	return buf.String()
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}
