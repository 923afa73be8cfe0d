package inventory

import (
	"context"
	"database/sql"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) RecordAdjustment(ctx context.Context, m *Movement) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if m.Type == MovementOut {
		res, err := tx.ExecContext(ctx,
			`UPDATE products SET stock = stock - $1, updated_at=NOW() WHERE id=$2 AND stock >= $1`,
			m.Quantity, m.ProductID)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrInsufficientStock
		}
	} else {
		if _, err := tx.ExecContext(ctx,
			`UPDATE products SET stock = stock + $1, updated_at=NOW() WHERE id=$2`,
			m.Quantity, m.ProductID); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO stock_movements (id, product_id, movement_type, quantity, reason, reference)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		m.ID, m.ProductID, m.Type, m.Quantity, m.Reason, m.Reference); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *postgresRepo) ListMovements(ctx context.Context, productID string) ([]*Movement, error) {
	query := `SELECT id,product_id,movement_type,quantity,reason,reference,created_at
	          FROM stock_movements`
	args := []interface{}{}
	if productID != "" {
		query += ` WHERE product_id=$1`
		args = append(args, productID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var movements []*Movement
	for rows.Next() {
		m := &Movement{}
		if err := rows.Scan(&m.ID, &m.ProductID, &m.Type, &m.Quantity,
			&m.Reason, &m.Reference, &m.CreatedAt); err != nil {
			return nil, err
		}
		movements = append(movements, m)
	}
	return movements, nil
}
