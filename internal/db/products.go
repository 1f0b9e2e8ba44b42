package db

import (
	"context"
	"database/sql"
	"strings"

	"practice-api/internal/models"
)

const productColumns = "id, name, description, price, category, stock, image_url, created_at"

func (db *DB) CreateProduct(ctx context.Context, p *models.Product) error {
	p.ID = newID()
	p.CreatedAt = now()

	var stock sql.NullInt64
	if p.Stock != nil {
		stock = sql.NullInt64{Int64: int64(*p.Stock), Valid: true}
	}

	query := "INSERT INTO products (" + productColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?, ?)"
	_, err := db.exec(ctx, query, p.ID, p.Name, nullString(p.Description), p.Price, p.Category,
		stock, nullString(p.ImageURL), p.CreatedAt)
	return storeErr("create product", err)
}

func (db *DB) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	query := "SELECT " + productColumns + " FROM products WHERE id = ?"
	p, err := scanProduct(db.queryRow(ctx, query, id))
	if err != nil {
		return nil, storeErr("get product", err)
	}
	return p, nil
}

// ListProductSummaries returns the reduced projection of every product.
func (db *DB) ListProductSummaries(ctx context.Context) ([]models.ProductSummary, error) {
	rows, err := db.query(ctx, "SELECT id, name, category, price FROM products ORDER BY created_at ASC, id ASC")
	if err != nil {
		return nil, storeErr("list products", err)
	}
	defer rows.Close()

	products := []models.ProductSummary{}
	for rows.Next() {
		var p models.ProductSummary
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.Price); err != nil {
			return nil, storeErr("scan product", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list products", err)
	}
	return products, nil
}

func (db *DB) SearchProducts(ctx context.Context, f models.ProductFilter) ([]models.Product, int, error) {
	var conds []string
	var args []any

	if f.Query != "" {
		pattern := likePattern(f.Query)
		conds = append(conds, `(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(COALESCE(description, '')) LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern)
	}
	if f.Category != "" {
		conds = append(conds, "category = ?")
		args = append(args, f.Category)
	}
	if f.MinPrice != nil {
		conds = append(conds, "price >= ?")
		args = append(args, *f.MinPrice)
	}
	if f.MaxPrice != nil {
		conds = append(conds, "price <= ?")
		args = append(args, *f.MaxPrice)
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	total, err := db.count(ctx, "SELECT COUNT(*) FROM products"+where, args...)
	if err != nil {
		return nil, 0, storeErr("count products", err)
	}

	query := "SELECT " + productColumns + " FROM products" + where +
		" ORDER BY created_at ASC, id ASC LIMIT ? OFFSET ?"
	rows, err := db.query(ctx, query, append(args, f.Page.Limit, f.Page.Offset())...)
	if err != nil {
		return nil, 0, storeErr("search products", err)
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, storeErr("scan product", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, storeErr("search products", err)
	}
	return products, total, nil
}

func scanProduct(row scanner) (*models.Product, error) {
	p := &models.Product{}
	var description, imageURL sql.NullString
	var stock sql.NullInt64
	err := row.Scan(&p.ID, &p.Name, &description, &p.Price, &p.Category, &stock, &imageURL, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	p.Description = stringPtr(description)
	p.ImageURL = stringPtr(imageURL)
	if stock.Valid {
		n := int(stock.Int64)
		p.Stock = &n
	}
	return p, nil
}
