package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	dom "example.com/mystic-prints/app/internal/domain/product"
)

type ProductRepository struct {
	db *DB
}

func NewProductRepository(db *DB) *ProductRepository {
	return &ProductRepository{db: db}
}

const productColumns = `id, title, artist, description, year, price, image, product_type, created_at, updated_at`

func (r *ProductRepository) Create(ctx context.Context, p *dom.Product) (*dom.Product, error) {
	var id int64
	err := r.db.inTx(ctx, func(tx *sql.Tx) error {
		var err error
		id, err = r.db.insert(ctx, tx, `
            INSERT INTO products (title, artist, description, year, price, image, product_type)
            VALUES (?, ?, ?, ?, ?, ?, ?)
        `, p.Title, p.Artist, p.Description, p.Year, p.Price, p.ImageRef, p.ProductType)
		if err != nil {
			return err
		}
		return r.insertVariants(ctx, tx, id, p.Variants)
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// Update rewrites the product row and, when variants are given, replaces them.
func (r *ProductRepository) Update(ctx context.Context, p *dom.Product) (*dom.Product, error) {
	err := r.db.inTx(ctx, func(tx *sql.Tx) error {
		res, err := r.db.exec(ctx, tx, `
            UPDATE products
            SET title = ?, artist = ?, description = ?, year = ?, price = ?, image = ?, product_type = ?, updated_at = CURRENT_TIMESTAMP
            WHERE id = ?
        `, p.Title, p.Artist, p.Description, p.Year, p.Price, p.ImageRef, p.ProductType, p.ID)
		if err != nil {
			return err
		}
		rows, _ := res.RowsAffected()
		if rows == 0 {
			return dom.ErrProductNotFound
		}
		if len(p.Variants) == 0 {
			return nil
		}
		if _, err := r.db.exec(ctx, tx, `DELETE FROM product_variants WHERE product_id = ?`, p.ID); err != nil {
			return err
		}
		return r.insertVariants(ctx, tx, p.ID, p.Variants)
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, p.ID)
}

func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.exec(ctx, r.db, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return err
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return dom.ErrProductNotFound
	}
	return nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*dom.Product, error) {
	row := r.db.queryRow(ctx, r.db, `SELECT `+productColumns+` FROM products WHERE id = ?`, id)
	p, err := scanProduct(row)
	if err != nil {
		return nil, err
	}
	if p.Variants, err = r.listVariants(ctx, p.ID); err != nil {
		return nil, err
	}
	return p, nil
}

// List returns newest products first.
func (r *ProductRepository) List(ctx context.Context, filter dom.ListFilter) ([]*dom.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products`
	var where []string
	args := []any{}
	if filter.ProductType != "" {
		where = append(where, `product_type = ?`)
		args = append(args, filter.ProductType)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		pattern := "%" + strings.ToLower(s) + "%"
		where = append(where, `(LOWER(title) LIKE ? OR LOWER(artist) LIKE ?)`)
		args = append(args, pattern, pattern)
	}
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, ` AND `)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.db.query(ctx, r.db, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*dom.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, p := range products {
		if p.Variants, err = r.listVariants(ctx, p.ID); err != nil {
			return nil, err
		}
	}
	return products, nil
}

func (r *ProductRepository) insertVariants(ctx context.Context, tx *sql.Tx, productID int64, variants []dom.Variant) error {
	for _, v := range variants {
		if _, err := r.db.exec(ctx, tx, `
            INSERT INTO product_variants (product_id, variant_id, size, price)
            VALUES (?, ?, ?, ?)
        `, productID, v.VariantID, v.Size, v.Price); err != nil {
			return err
		}
	}
	return nil
}

func (r *ProductRepository) listVariants(ctx context.Context, productID int64) ([]dom.Variant, error) {
	rows, err := r.db.query(ctx, r.db, `
        SELECT id, product_id, variant_id, size, price
        FROM product_variants WHERE product_id = ?
        ORDER BY price, id
    `, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var variants []dom.Variant
	for rows.Next() {
		var v dom.Variant
		if err := rows.Scan(&v.ID, &v.ProductID, &v.VariantID, &v.Size, &v.Price); err != nil {
			return nil, err
		}
		variants = append(variants, v)
	}
	return variants, rows.Err()
}

func scanProduct(s scanner) (*dom.Product, error) {
	var p dom.Product
	if err := s.Scan(&p.ID, &p.Title, &p.Artist, &p.Description, &p.Year, &p.Price, &p.ImageRef, &p.ProductType, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, dom.ErrProductNotFound
		}
		return nil, err
	}
	return &p, nil
}
