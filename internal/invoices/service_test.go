package invoices

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"invoice-courier/internal/notify"
	"invoice-courier/internal/storage/memory"
)

type notifyCall struct {
	phone      string
	customerID string
	link       string
}

type fakeNotifier struct {
	calls   []notifyCall
	outcome notify.Outcome
	err     error
}

func (f *fakeNotifier) Notify(ctx context.Context, phone, customerID, link string) (notify.Outcome, error) {
	f.calls = append(f.calls, notifyCall{phone: phone, customerID: customerID, link: link})
	if f.err != nil {
		return "", f.err
	}
	if f.outcome == "" {
		return notify.OutcomeSent, nil
	}
	return f.outcome, nil
}

func pendingInvoice(id, phone string) Invoice {
	return Invoice{
		ID:         id,
		CustomerID: "cust-" + id,
		Phone:      phone,
		FileName:   id + ".pdf",
		FileData:   []byte("%PDF-1.4 " + id),
		Status:     StatusPending,
		CreatedAt:  time.Now().UTC(),
	}
}

func newService(t *testing.T, repo *MemoryRepo, gw *memory.Gateway, notifier Notifier) *Service {
	t.Helper()
	folder, err := gw.EnsureFolder(context.Background(), []string{"Invoices", "Outgoing"})
	if err != nil {
		t.Fatalf("EnsureFolder: %v", err)
	}
	return &Service{
		Repo:     repo,
		Gateway:  gw,
		Folder:   folder,
		Notifier: notifier,
	}
}

func TestTickUploadsAndNotifies(t *testing.T) {
	repo := NewMemoryRepo()
	repo.Put(pendingInvoice("inv-1", "0771234567"))

	gw := memory.NewGateway()
	notifier := &fakeNotifier{}
	svc := newService(t, repo, gw, notifier)

	svc.Tick(context.Background())

	inv, _ := repo.Get("inv-1")
	if inv.Status != StatusUploaded {
		t.Fatalf("expected status uploaded, got %q", inv.Status)
	}
	docs := gw.Documents(svc.Folder)
	if len(docs) != 1 {
		t.Fatalf("expected 1 uploaded document, got %d", len(docs))
	}
	if len(notifier.calls) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(notifier.calls))
	}
	call := notifier.calls[0]
	if call.phone != "0771234567" || call.customerID != "cust-inv-1" {
		t.Fatalf("unexpected notify call: %+v", call)
	}
	if call.link != docs[0].Link {
		t.Fatalf("expected notify link %q, got %q", docs[0].Link, call.link)
	}
	if repo.MarkCalls("inv-1") != 1 {
		t.Fatalf("expected exactly one MarkUploaded call, got %d", repo.MarkCalls("inv-1"))
	}
}

func TestTickNormalizesInternationalPhone(t *testing.T) {
	repo := NewMemoryRepo()
	repo.Put(pendingInvoice("inv-1", "94771234567"))

	notifier := &fakeNotifier{}
	svc := newService(t, repo, memory.NewGateway(), notifier)

	svc.Tick(context.Background())

	if len(notifier.calls) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(notifier.calls))
	}
	if notifier.calls[0].phone != "0771234567" {
		t.Fatalf("expected normalized phone 0771234567, got %q", notifier.calls[0].phone)
	}
}

func TestTickSkipsInvalidPhoneRowStaysPending(t *testing.T) {
	repo := NewMemoryRepo()
	repo.Put(pendingInvoice("inv-1", "123"))

	gw := memory.NewGateway()
	notifier := &fakeNotifier{}
	svc := newService(t, repo, gw, notifier)

	svc.Tick(context.Background())

	inv, _ := repo.Get("inv-1")
	if inv.Status != StatusPending {
		t.Fatalf("expected row to stay pending, got %q", inv.Status)
	}
	if len(gw.Documents(svc.Folder)) != 0 {
		t.Fatalf("expected no upload for invalid phone")
	}
	if len(notifier.calls) != 0 {
		t.Fatalf("expected no notification for invalid phone")
	}
}

func TestTickUploadFailureLeavesRowPending(t *testing.T) {
	repo := NewMemoryRepo()
	repo.Put(pendingInvoice("inv-1", "0771234567"))

	gw := memory.NewGateway()
	gw.UploadErr = errors.New("provider unavailable")
	notifier := &fakeNotifier{}
	svc := newService(t, repo, gw, notifier)

	svc.Tick(context.Background())

	inv, _ := repo.Get("inv-1")
	if inv.Status != StatusPending {
		t.Fatalf("expected row to stay pending after upload failure, got %q", inv.Status)
	}
	if repo.MarkCalls("inv-1") != 0 {
		t.Fatalf("expected no MarkUploaded call after upload failure")
	}
	if len(notifier.calls) != 0 {
		t.Fatalf("expected no notification after upload failure")
	}
}

func TestTickNotifyFailureNeverRevertsUpload(t *testing.T) {
	repo := NewMemoryRepo()
	repo.Put(pendingInvoice("inv-1", "0771234567"))

	notifier := &fakeNotifier{err: &notify.GatewayError{Status: "ERR", Detail: "down"}}
	svc := newService(t, repo, memory.NewGateway(), notifier)

	svc.Tick(context.Background())

	inv, _ := repo.Get("inv-1")
	if inv.Status != StatusUploaded {
		t.Fatalf("expected row to stay uploaded after notify failure, got %q", inv.Status)
	}
}

func TestTickIsolatesRowFailures(t *testing.T) {
	repo := NewMemoryRepo()
	bad := pendingInvoice("inv-bad", "123")
	bad.CreatedAt = time.Now().UTC().Add(-time.Hour)
	repo.Put(bad)
	repo.Put(pendingInvoice("inv-good", "0771234567"))

	notifier := &fakeNotifier{}
	svc := newService(t, repo, memory.NewGateway(), notifier)

	svc.Tick(context.Background())

	good, _ := repo.Get("inv-good")
	if good.Status != StatusUploaded {
		t.Fatalf("expected good row uploaded despite earlier bad row, got %q", good.Status)
	}
	badRow, _ := repo.Get("inv-bad")
	if badRow.Status != StatusPending {
		t.Fatalf("expected bad row to stay pending, got %q", badRow.Status)
	}
}

func TestTickListFailureAbortsTickOnly(t *testing.T) {
	repo := NewMemoryRepo()
	repo.Put(pendingInvoice("inv-1", "0771234567"))
	repo.ListErr = errors.New("connection refused")

	notifier := &fakeNotifier{}
	svc := newService(t, repo, memory.NewGateway(), notifier)

	svc.Tick(context.Background())

	if len(notifier.calls) != 0 {
		t.Fatalf("expected no processing when listing fails")
	}

	// The next tick proceeds once the database is back.
	repo.ListErr = nil
	svc.Tick(context.Background())
	inv, _ := repo.Get("inv-1")
	if inv.Status != StatusUploaded {
		t.Fatalf("expected row uploaded on the recovered tick, got %q", inv.Status)
	}
}

type countingRepo struct {
	listCalls int
}

func (r *countingRepo) ListPending(ctx context.Context) ([]Invoice, error) {
	r.listCalls++
	return nil, nil
}

func (r *countingRepo) MarkUploaded(ctx context.Context, id string) error { return nil }

func TestTickOverlapIsSkipped(t *testing.T) {
	repo := &countingRepo{}
	svc := &Service{
		Repo:     repo,
		Gateway:  memory.NewGateway(),
		Notifier: &fakeNotifier{},
	}

	svc.busy.Store(true)
	svc.Tick(context.Background())
	if repo.listCalls != 0 {
		t.Fatalf("expected overlapping tick to be skipped")
	}

	svc.busy.Store(false)
	svc.Tick(context.Background())
	if repo.listCalls != 1 {
		t.Fatalf("expected tick to run after the previous one finished")
	}
}

// End-to-end through the real notification service and a stub SMS gateway.
func TestTickEndToEndLinkReachesGateway(t *testing.T) {
	var gotText string
	var gatewayCalls int
	smsSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gatewayCalls++
		gotText = r.URL.Query().Get("text")
		_, _ = w.Write([]byte("OK:12345"))
	}))
	defer smsSrv.Close()

	profiles := notify.NewMemoryProfileRepo()
	profiles.Put(notify.Profile{
		CustomerID:  "cust-inv-1",
		Status:      notify.StatusActive,
		APIUsername: "acme",
		APIPassword: "hunter2",
	})
	logRepo := notify.NewMemoryLogRepo()
	notifySvc := &notify.Service{
		Profiles: profiles,
		Log:      logRepo,
		Client:   notify.NewGatewayClient(smsSrv.URL),
	}

	repo := NewMemoryRepo()
	repo.Put(pendingInvoice("inv-1", "0771234567"))
	gw := memory.NewGateway()
	svc := newService(t, repo, gw, notifySvc)

	svc.Tick(context.Background())

	docs := gw.Documents(svc.Folder)
	if len(docs) != 1 {
		t.Fatalf("expected 1 uploaded document, got %d", len(docs))
	}
	if !strings.Contains(gotText, docs[0].Link) {
		t.Fatalf("expected gateway text to contain link %q, got %q", docs[0].Link, gotText)
	}
	if _, err := url.Parse(docs[0].Link); err != nil {
		t.Fatalf("share link is not a valid URL: %v", err)
	}

	entries := logRepo.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected 1 sms log entry, got %d", len(entries))
	}
	if entries[0].ShareLink != docs[0].Link {
		t.Fatalf("expected logged link %q, got %q", docs[0].Link, entries[0].ShareLink)
	}
	if entries[0].GatewayDetail != "12345" {
		t.Fatalf("expected logged gateway detail 12345, got %q", entries[0].GatewayDetail)
	}
	if gatewayCalls != 1 {
		t.Fatalf("expected exactly one gateway call, got %d", gatewayCalls)
	}
}

func TestTickEndToEndOptedOutStillUploads(t *testing.T) {
	var gatewayCalls int
	smsSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gatewayCalls++
		_, _ = w.Write([]byte("OK:1"))
	}))
	defer smsSrv.Close()

	profiles := notify.NewMemoryProfileRepo()
	profiles.Put(notify.Profile{
		CustomerID:  "cust-inv-1",
		Status:      notify.StatusInactive,
		APIUsername: "acme",
		APIPassword: "hunter2",
	})
	notifySvc := &notify.Service{
		Profiles: profiles,
		Log:      notify.NewMemoryLogRepo(),
		Client:   notify.NewGatewayClient(smsSrv.URL),
	}

	repo := NewMemoryRepo()
	repo.Put(pendingInvoice("inv-1", "0771234567"))
	svc := newService(t, repo, memory.NewGateway(), notifySvc)

	svc.Tick(context.Background())

	inv, _ := repo.Get("inv-1")
	if inv.Status != StatusUploaded {
		t.Fatalf("expected opted-out customer's row uploaded, got %q", inv.Status)
	}
	if gatewayCalls != 0 {
		t.Fatalf("expected no gateway call for opted-out customer, got %d", gatewayCalls)
	}
}
