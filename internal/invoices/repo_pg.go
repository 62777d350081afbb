package invoices

import (
	"context"
	"database/sql"
	"fmt"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// ListPending returns all rows with status pending, oldest first.
func (r *PGRepo) ListPending(ctx context.Context) ([]Invoice, error) {
	const query = `
SELECT id, customer_id, phone, file_name, file_data, status, created_at
FROM invoices
WHERE status = $1
ORDER BY created_at ASC`

	rows, err := r.DB.QueryContext(ctx, query, StatusPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Invoice
	for rows.Next() {
		var inv Invoice
		if err := rows.Scan(
			&inv.ID,
			&inv.CustomerID,
			&inv.Phone,
			&inv.FileName,
			&inv.FileData,
			&inv.Status,
			&inv.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

// MarkUploaded flips a pending row to uploaded exactly once.
func (r *PGRepo) MarkUploaded(ctx context.Context, id string) error {
	const query = `
UPDATE invoices
SET status = $1
WHERE id = $2 AND status = $3`

	res, err := r.DB.ExecContext(ctx, query, StatusUploaded, id, StatusPending)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("mark uploaded %s: %w", id, ErrNotFound)
	}
	return nil
}
