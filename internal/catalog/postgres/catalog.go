// Package postgres provides a PostgreSQL-backed catalog for deployments that
// manage the product line in a database instead of the seeded set.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/gatemesh/storefront/internal/domain"
	apperrors "github.com/gatemesh/storefront/pkg/errors"
)

// DB is the subset of pgxpool.Pool the catalog needs. pgxmock satisfies it in
// tests.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Catalog implements catalog.Catalog using PostgreSQL.
type Catalog struct {
	db DB
}

// NewCatalog creates a PostgreSQL-backed catalog.
func NewCatalog(db DB) *Catalog {
	return &Catalog{db: db}
}

const productColumns = "id, name, slug, description, price, category, specs, features, images, in_stock, featured"

// FindByID retrieves a product by its ID.
func (c *Catalog) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE id = $1`

	p, err := scanProduct(c.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("product", id)
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// List returns all products.
func (c *Catalog) List(ctx context.Context) ([]domain.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		ORDER BY name`

	return c.queryProducts(ctx, query)
}

// ListFeatured returns products flagged for the storefront landing page.
func (c *Catalog) ListFeatured(ctx context.Context) ([]domain.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE featured
		ORDER BY name`

	return c.queryProducts(ctx, query)
}

// ListByCategory returns the products in the given category.
func (c *Catalog) ListByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE category = $1
		ORDER BY name`

	return c.queryProducts(ctx, query, category)
}

// Categories returns the product groupings with per-category product counts.
func (c *Catalog) Categories(ctx context.Context) ([]domain.Category, error) {
	query := `
		SELECT c.id, c.name, c.description, count(p.id)
		FROM categories c
		LEFT JOIN products p ON p.category = c.id
		GROUP BY c.id, c.name, c.description
		ORDER BY c.id`

	rows, err := c.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := []domain.Category{}
	for rows.Next() {
		var cat domain.Category
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.Description, &cat.Count); err != nil {
			return nil, fmt.Errorf("scan category row: %w", err)
		}
		categories = append(categories, cat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category rows: %w", err)
	}

	return categories, nil
}

// Upsert inserts or replaces a product. Used by the seed loader on startup.
func (c *Catalog) Upsert(ctx context.Context, p *domain.Product) error {
	specsJSON, err := json.Marshal(p.Specs)
	if err != nil {
		return fmt.Errorf("marshal specs: %w", err)
	}
	featuresJSON, err := json.Marshal(p.Features)
	if err != nil {
		return fmt.Errorf("marshal features: %w", err)
	}
	imagesJSON, err := json.Marshal(p.Images)
	if err != nil {
		return fmt.Errorf("marshal images: %w", err)
	}

	query := `
		INSERT INTO products (id, name, slug, description, price, category, specs, features, images, in_stock, featured)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, slug = EXCLUDED.slug, description = EXCLUDED.description,
		    price = EXCLUDED.price, category = EXCLUDED.category, specs = EXCLUDED.specs,
		    features = EXCLUDED.features, images = EXCLUDED.images,
		    in_stock = EXCLUDED.in_stock, featured = EXCLUDED.featured`

	_, err = c.db.Exec(ctx, query,
		p.ID,
		p.Name,
		p.Slug,
		p.Description,
		p.Price,
		p.Category,
		specsJSON,
		featuresJSON,
		imagesJSON,
		p.InStock,
		p.Featured,
	)
	if err != nil {
		return fmt.Errorf("upsert product: %w", err)
	}

	return nil
}

func (c *Catalog) queryProducts(ctx context.Context, query string, args ...any) ([]domain.Product, error) {
	rows, err := c.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}

	return products, nil
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var (
		p            domain.Product
		specsJSON    []byte
		featuresJSON []byte
		imagesJSON   []byte
	)

	if err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Slug,
		&p.Description,
		&p.Price,
		&p.Category,
		&specsJSON,
		&featuresJSON,
		&imagesJSON,
		&p.InStock,
		&p.Featured,
	); err != nil {
		return nil, err
	}

	if specsJSON != nil {
		if err := json.Unmarshal(specsJSON, &p.Specs); err != nil {
			return nil, fmt.Errorf("unmarshal specs: %w", err)
		}
	}
	if featuresJSON != nil {
		if err := json.Unmarshal(featuresJSON, &p.Features); err != nil {
			return nil, fmt.Errorf("unmarshal features: %w", err)
		}
	}
	if imagesJSON != nil {
		if err := json.Unmarshal(imagesJSON, &p.Images); err != nil {
			return nil, fmt.Errorf("unmarshal images: %w", err)
		}
	}

	return &p, nil
}
