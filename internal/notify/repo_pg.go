package notify

import (
	"context"
	"database/sql"
	"errors"
)

// PGProfileRepo implements ProfileRepo using Postgres.
type PGProfileRepo struct {
	DB *sql.DB
}

// GetByCustomer returns the SMS profile for a customer.
func (r *PGProfileRepo) GetByCustomer(ctx context.Context, customerID string) (Profile, error) {
	const query = `
SELECT customer_id, status, api_username, api_password
FROM sms_profiles
WHERE customer_id = $1`

	var profile Profile
	err := r.DB.QueryRowContext(ctx, query, customerID).Scan(
		&profile.CustomerID,
		&profile.Status,
		&profile.APIUsername,
		&profile.APIPassword,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Profile{}, ErrNotFound
		}
		return Profile{}, err
	}
	return profile, nil
}

// PGLogRepo implements LogRepo using Postgres.
type PGLogRepo struct {
	DB *sql.DB
}

// Append inserts a notification log row.
func (r *PGLogRepo) Append(ctx context.Context, entry LogEntry) error {
	const query = `
INSERT INTO sms_log (
    id,
    customer_id,
    api_username,
    phone,
    share_link,
    gateway_detail,
    sent_at
) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	var detail sql.NullString
	if entry.GatewayDetail != "" {
		detail = sql.NullString{String: entry.GatewayDetail, Valid: true}
	}

	_, err := r.DB.ExecContext(
		ctx,
		query,
		entry.ID,
		entry.CustomerID,
		entry.APIUsername,
		entry.Phone,
		entry.ShareLink,
		detail,
		entry.SentAt,
	)
	return err
}
