package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGProfileRepoGetByCustomer(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGProfileRepo{DB: db}

	rows := sqlmock.NewRows([]string{"customer_id", "status", "api_username", "api_password"}).
		AddRow("cust-1", StatusActive, "acme", "hunter2")
	mock.ExpectQuery("SELECT customer_id, status, api_username, api_password").
		WithArgs("cust-1").
		WillReturnRows(rows)

	profile, err := repo.GetByCustomer(context.Background(), "cust-1")
	if err != nil {
		t.Fatalf("GetByCustomer: %v", err)
	}
	if profile.Status != StatusActive || profile.APIUsername != "acme" {
		t.Fatalf("unexpected profile: %+v", profile)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGProfileRepoGetByCustomerNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGProfileRepo{DB: db}

	mock.ExpectQuery("SELECT customer_id, status, api_username, api_password").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"customer_id", "status", "api_username", "api_password"}))

	_, err = repo.GetByCustomer(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGLogRepoAppend(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGLogRepo{DB: db}
	entry := LogEntry{
		ID:            "log-1",
		CustomerID:    "cust-1",
		APIUsername:   "acme",
		Phone:         "0771234567",
		ShareLink:     "https://files.example/doc-1",
		GatewayDetail: "12345",
		SentAt:        time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO sms_log").
		WithArgs(
			entry.ID,
			entry.CustomerID,
			entry.APIUsername,
			entry.Phone,
			entry.ShareLink,
			sqlmock.AnyArg(), // gateway_detail
			entry.SentAt,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Append(context.Background(), entry); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
