package sale

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) Create(ctx context.Context, s *Sale) error {
	items, err := json.Marshal(s.Items)
	if err != nil {
		return fmt.Errorf("marshal items: %w", err)
	}
	promotions, err := json.Marshal(s.Promotions)
	if err != nil {
		return fmt.Errorf("marshal promotions: %w", err)
	}
	tenders, err := json.Marshal(s.Tenders)
	if err != nil {
		return fmt.Errorf("marshal tenders: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO sales
		  (id, receipt_number, cart_id, customer_id, items, promotions, tenders,
		   subtotal, tax, discount, total, change_due, status, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		s.ID, s.ReceiptNumber, s.CartID, s.CustomerID, items, promotions, tenders,
		s.Subtotal, s.Tax, s.Discount, s.Total, s.ChangeDue, s.Status, s.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrReceiptCollision
		}
		return err
	}
	return nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*Sale, error) {
	row := r.db.QueryRowContext(ctx, selectSale+` WHERE id=$1`, id)
	s, err := scanSale(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSaleNotFound
	}
	return s, err
}

func (r *postgresRepo) GetByReceipt(ctx context.Context, receiptNumber string) (*Sale, error) {
	row := r.db.QueryRowContext(ctx, selectSale+` WHERE receipt_number=$1`, receiptNumber)
	s, err := scanSale(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSaleNotFound
	}
	return s, err
}

func (r *postgresRepo) List(ctx context.Context) ([]*Sale, error) {
	rows, err := r.db.QueryContext(ctx, selectSale+` ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sales []*Sale
	for rows.Next() {
		s, err := scanSale(rows.Scan)
		if err != nil {
			return nil, err
		}
		sales = append(sales, s)
	}
	return sales, nil
}

func (r *postgresRepo) MarkRefunded(ctx context.Context, id string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE sales SET status=$1, refunded_at=$2
		WHERE id=$3 AND status=$4`,
		StatusRefunded, at, id, StatusCompleted)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return ErrAlreadyRefunded
	}
	return nil
}

const selectSale = `
	SELECT id, receipt_number, cart_id, customer_id, items, promotions, tenders,
	       subtotal, tax, discount, total, change_due, status, refunded_at, created_at
	FROM sales`

func scanSale(scan func(...interface{}) error) (*Sale, error) {
	s := &Sale{}
	var items, promotions, tenders []byte
	var customerID uuid.NullUUID
	var refundedAt sql.NullTime
	err := scan(&s.ID, &s.ReceiptNumber, &s.CartID, &customerID, &items, &promotions, &tenders,
		&s.Subtotal, &s.Tax, &s.Discount, &s.Total, &s.ChangeDue, &s.Status, &refundedAt, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	if customerID.Valid {
		id := customerID.UUID
		s.CustomerID = &id
	}
	if err := json.Unmarshal(items, &s.Items); err != nil {
		return nil, fmt.Errorf("unmarshal items: %w", err)
	}
	if len(promotions) > 0 {
		if err := json.Unmarshal(promotions, &s.Promotions); err != nil {
			return nil, fmt.Errorf("unmarshal promotions: %w", err)
		}
	}
	if len(tenders) > 0 {
		if err := json.Unmarshal(tenders, &s.Tenders); err != nil {
			return nil, fmt.Errorf("unmarshal tenders: %w", err)
		}
	}
	if refundedAt.Valid {
		t := refundedAt.Time
		s.RefundedAt = &t
	}
	return s, nil
}
