package retention

import (
	"context"
	"testing"
	"time"

	"invoice-courier/internal/storage/memory"
)

func TestSweepDeletesOnlyDocumentsPastTheWindow(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	gw := memory.NewGateway()
	gw.Now = func() time.Time { return now }

	folder, err := gw.EnsureFolder(context.Background(), []string{"Invoices", "Outgoing"})
	if err != nil {
		t.Fatalf("EnsureFolder: %v", err)
	}

	window := 7 * 24 * time.Hour
	gw.Seed(folder, "old.pdf", now.Add(-8*24*time.Hour))
	gw.Seed(folder, "boundary.pdf", now.Add(-window))
	gw.Seed(folder, "fresh.pdf", now.Add(-24*time.Hour))

	sweeper := &Sweeper{Gateway: gw, Folder: folder, Window: window}
	sweeper.Sweep(context.Background())

	remaining := gw.Documents(folder)
	if len(remaining) != 2 {
		t.Fatalf("expected 2 documents to remain, got %d", len(remaining))
	}
	for _, doc := range remaining {
		if doc.Name == "old.pdf" {
			t.Fatalf("expected old.pdf to be deleted")
		}
	}
}
