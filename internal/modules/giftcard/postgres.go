package giftcard

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shopspring/decimal"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) Create(ctx context.Context, c *Card) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO gift_cards (id, number, balance, is_active, expires_at)
		VALUES ($1,$2,$3,$4,$5)`,
		c.ID, c.Number, c.Balance, c.IsActive, c.ExpiresAt)
	return err
}

func (r *postgresRepo) GetByNumber(ctx context.Context, number string) (*Card, error) {
	c := &Card{}
	var expiresAt sql.NullTime
	err := r.db.QueryRowContext(ctx, `
		SELECT id,number,balance,is_active,expires_at,created_at
		FROM gift_cards WHERE number=$1`, number).
		Scan(&c.ID, &c.Number, &c.Balance, &c.IsActive, &expiresAt, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCardNotFound
	}
	if err != nil {
		return nil, err
	}
	if expiresAt.Valid {
		t := expiresAt.Time
		c.ExpiresAt = &t
	}
	return c, nil
}

func (r *postgresRepo) Deduct(ctx context.Context, number string, amount decimal.Decimal) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE gift_cards SET balance = balance - $1 WHERE number=$2 AND balance >= $1`,
		amount, number)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrInsufficientBalance
	}
	return nil
}

func (r *postgresRepo) Restore(ctx context.Context, number string, amount decimal.Decimal) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE gift_cards SET balance = balance + $1 WHERE number=$2`,
		amount, number)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrCardNotFound
	}
	return nil
}
