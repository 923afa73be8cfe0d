package catalog

import (
	"context"
	"database/sql"
	"fmt"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) Create(ctx context.Context, p *Product) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO products
		  (id, name, sku, category, price, units_per_pack, unit_label, sub_unit_label, stock, is_active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		p.ID, p.Name, p.SKU, p.Category, p.Price, p.UnitsPerPack,
		p.UnitLabel, p.SubUnitLabel, p.Stock, p.IsActive)
	return err
}

func scanProduct(scan func(...interface{}) error) (*Product, error) {
	p := &Product{}
	err := scan(&p.ID, &p.Name, &p.SKU, &p.Category, &p.Price, &p.UnitsPerPack,
		&p.UnitLabel, &p.SubUnitLabel, &p.Stock, &p.IsActive,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*Product, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id,name,sku,category,price,units_per_pack,unit_label,sub_unit_label,stock,is_active,created_at,updated_at
		FROM products WHERE id=$1`, id)
	return scanProduct(row.Scan)
}

func (r *postgresRepo) List(ctx context.Context, category string, activeOnly bool) ([]*Product, error) {
	query := `SELECT id,name,sku,category,price,units_per_pack,unit_label,sub_unit_label,stock,is_active,created_at,updated_at
	          FROM products WHERE 1=1`
	args := []interface{}{}
	n := 1
	if category != "" {
		query += fmt.Sprintf(` AND category=$%d`, n)
		args = append(args, category)
		n++
	}
	if activeOnly {
		query += ` AND is_active=true`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*Product
	for rows.Next() {
		p, err := scanProduct(rows.Scan)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, nil
}

func (r *postgresRepo) Update(ctx context.Context, p *Product) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET name=$1, sku=$2, category=$3, price=$4, units_per_pack=$5,
		    unit_label=$6, sub_unit_label=$7, stock=$8, is_active=$9, updated_at=NOW()
		WHERE id=$10`,
		p.Name, p.SKU, p.Category, p.Price, p.UnitsPerPack,
		p.UnitLabel, p.SubUnitLabel, p.Stock, p.IsActive, p.ID)
	return err
}
