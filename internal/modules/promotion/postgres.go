package promotion

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shopspring/decimal"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) Create(ctx context.Context, p *Promotion) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO promotions
		  (id, code, description, kind, value, min_amount, max_discount, valid_until, is_active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		p.ID, p.Code, p.Description, p.Kind, p.Value,
		p.MinAmount, p.MaxDiscount, p.ValidUntil, p.IsActive)
	return err
}

func (r *postgresRepo) FindByCode(ctx context.Context, code string) (*Promotion, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id,code,description,kind,value,min_amount,max_discount,valid_until,is_active,created_at
		FROM promotions WHERE LOWER(code)=LOWER($1) AND is_active=true`, code)
	p, err := scanPromotion(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

func (r *postgresRepo) List(ctx context.Context) ([]*Promotion, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id,code,description,kind,value,min_amount,max_discount,valid_until,is_active,created_at
		FROM promotions ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var promotions []*Promotion
	for rows.Next() {
		p, err := scanPromotion(rows.Scan)
		if err != nil {
			return nil, err
		}
		promotions = append(promotions, p)
	}
	return promotions, nil
}

func scanPromotion(scan func(...interface{}) error) (*Promotion, error) {
	p := &Promotion{}
	var minAmount, maxDiscount sql.NullString
	var validUntil sql.NullTime
	err := scan(&p.ID, &p.Code, &p.Description, &p.Kind, &p.Value,
		&minAmount, &maxDiscount, &validUntil, &p.IsActive, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	if minAmount.Valid {
		d, err := parseAmount(minAmount.String)
		if err != nil {
			return nil, err
		}
		p.MinAmount = d
	}
	if maxDiscount.Valid {
		d, err := parseAmount(maxDiscount.String)
		if err != nil {
			return nil, err
		}
		p.MaxDiscount = d
	}
	if validUntil.Valid {
		t := validUntil.Time
		p.ValidUntil = &t
	}
	return p, nil
}

func parseAmount(s string) (*decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
