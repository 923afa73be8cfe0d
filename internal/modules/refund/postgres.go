package refund

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/dukapos/dukapos-backend/internal/modules/sale"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) Create(ctx context.Context, ref *Refund) error {
	items, err := json.Marshal(ref.Items)
	if err != nil {
		return fmt.Errorf("marshal items: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO refunds
		  (id, sale_id, receipt_number, reason, items, amount, warnings, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		ref.ID, ref.SaleID, ref.ReceiptNumber, ref.Reason, items,
		ref.Amount, pq.Array(ref.Warnings), ref.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			// The unique sale_id index is the last line of defense
			// against a double refund racing past the status guard.
			return sale.ErrAlreadyRefunded
		}
		return err
	}
	return nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*Refund, error) {
	row := r.db.QueryRowContext(ctx, selectRefund+` WHERE id=$1`, id)
	ref, err := scanRefund(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRefundNotFound
	}
	return ref, err
}

func (r *postgresRepo) GetBySale(ctx context.Context, saleID string) (*Refund, error) {
	row := r.db.QueryRowContext(ctx, selectRefund+` WHERE sale_id=$1`, saleID)
	ref, err := scanRefund(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRefundNotFound
	}
	return ref, err
}

func (r *postgresRepo) List(ctx context.Context) ([]*Refund, error) {
	rows, err := r.db.QueryContext(ctx, selectRefund+` ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var refunds []*Refund
	for rows.Next() {
		ref, err := scanRefund(rows.Scan)
		if err != nil {
			return nil, err
		}
		refunds = append(refunds, ref)
	}
	return refunds, nil
}

const selectRefund = `
	SELECT id, sale_id, receipt_number, reason, items, amount, warnings, created_at
	FROM refunds`

func scanRefund(scan func(...interface{}) error) (*Refund, error) {
	ref := &Refund{}
	var items []byte
	var warnings pq.StringArray
	err := scan(&ref.ID, &ref.SaleID, &ref.ReceiptNumber, &ref.Reason,
		&items, &ref.Amount, &warnings, &ref.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(items, &ref.Items); err != nil {
		return nil, fmt.Errorf("unmarshal items: %w", err)
	}
	ref.Warnings = warnings
	return ref, nil
}
