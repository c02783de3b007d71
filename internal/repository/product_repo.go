package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/plaxtilineas/catalog_api/internal/models"
)

const productColumns = `id, name, description, material, category, options, is_new, is_featured,
        marca, gramaje, brand_icon_url, created_at, updated_at, deleted_at`

// ProductRepository handles data access for products and their child rows.
// Write methods take an sqlx.ExtContext so callers can run them inside a transaction.
type ProductRepository struct {
	db *sqlx.DB
}

// NewProductRepository creates a new ProductRepository.
func NewProductRepository(db *sqlx.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// List returns every live product, newest first, with children attached.
func (r *ProductRepository) List(ctx context.Context) ([]models.Product, error) {
	const q = `SELECT ` + productColumns + ` FROM products WHERE deleted_at IS NULL ORDER BY id DESC`
	return r.selectWithChildren(ctx, q)
}

// ListByCategory returns live products in category, newest first, with children attached.
func (r *ProductRepository) ListByCategory(ctx context.Context, category string) ([]models.Product, error) {
	const q = `SELECT ` + productColumns + ` FROM products
        WHERE category = $1 AND deleted_at IS NULL ORDER BY id DESC`
	return r.selectWithChildren(ctx, q, category)
}

// GetByID returns the live product with id, or nil when it does not exist or was soft deleted.
func (r *ProductRepository) GetByID(ctx context.Context, id int) (*models.Product, error) {
	const q = `SELECT ` + productColumns + ` FROM products WHERE id = $1 AND deleted_at IS NULL`
	var p models.Product
	if err := r.db.GetContext(ctx, &p, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if err := r.attachChildren(ctx, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepository) selectWithChildren(ctx context.Context, q string, args ...interface{}) ([]models.Product, error) {
	products := []models.Product{}
	if err := r.db.SelectContext(ctx, &products, q, args...); err != nil {
		return nil, err
	}
	for i := range products {
		if err := r.attachChildren(ctx, &products[i]); err != nil {
			return nil, err
		}
	}
	return products, nil
}

func (r *ProductRepository) attachChildren(ctx context.Context, p *models.Product) error {
	var err error
	if p.Images, err = r.Images(ctx, p.ID); err != nil {
		return fmt.Errorf("load images for product %d: %w", p.ID, err)
	}
	if p.Colors, err = r.Colors(ctx, p.ID); err != nil {
		return fmt.Errorf("load colors for product %d: %w", p.ID, err)
	}
	if p.Variants, err = r.Variants(ctx, p.ID); err != nil {
		return fmt.Errorf("load variants for product %d: %w", p.ID, err)
	}
	return nil
}

// Images returns the images of product id in insertion order.
func (r *ProductRepository) Images(ctx context.Context, productID int) ([]models.ProductImage, error) {
	const q = `SELECT url, description FROM product_images WHERE product_id = $1 ORDER BY id`
	images := []models.ProductImage{}
	if err := r.db.SelectContext(ctx, &images, q, productID); err != nil {
		return nil, err
	}
	return images, nil
}

// Colors returns the colour labels of product id in insertion order.
func (r *ProductRepository) Colors(ctx context.Context, productID int) ([]string, error) {
	const q = `SELECT color FROM product_colors WHERE product_id = $1 ORDER BY id`
	colors := []string{}
	if err := r.db.SelectContext(ctx, &colors, q, productID); err != nil {
		return nil, err
	}
	return colors, nil
}

// Variants returns the variants of product id in insertion order.
func (r *ProductRepository) Variants(ctx context.Context, productID int) ([]models.ProductVariant, error) {
	const q = `SELECT id, product_id, name, available, price, created_at, updated_at
        FROM product_variants WHERE product_id = $1 ORDER BY id`
	variants := []models.ProductVariant{}
	if err := r.db.SelectContext(ctx, &variants, q, productID); err != nil {
		return nil, err
	}
	return variants, nil
}

// Insert writes the product row and sets p.ID to the generated key.
func (r *ProductRepository) Insert(ctx context.Context, ext sqlx.ExtContext, p *models.Product) error {
	const q = `
        INSERT INTO products (name, description, material, category, options, is_new, is_featured,
            marca, gramaje, brand_icon_url)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING id, created_at, updated_at`
	return ext.QueryRowxContext(ctx, q,
		p.Name, p.Description, p.Material, p.Category, p.Options, p.IsNew, p.IsFeatured,
		p.Marca, p.Gramaje, p.BrandIconURL,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

// Exists reports whether a products row with id is stored, soft deleted or not.
func (r *ProductRepository) Exists(ctx context.Context, q sqlx.QueryerContext, id int) (bool, error) {
	var exists bool
	if err := sqlx.GetContext(ctx, q, &exists, `SELECT EXISTS(SELECT 1 FROM products WHERE id = $1)`, id); err != nil {
		return false, err
	}
	return exists, nil
}

// ApplyPatch updates the columns set in patch. An empty patch is a no-op.
func (r *ProductRepository) ApplyPatch(ctx context.Context, ext sqlx.ExecerContext, id int, patch ProductPatch) error {
	q, args, ok := BuildUpdate(id, patch)
	if !ok {
		return nil
	}
	_, err := ext.ExecContext(ctx, q, args...)
	return err
}

// InsertImages attaches images to product id.
func (r *ProductRepository) InsertImages(ctx context.Context, ext sqlx.ExecerContext, productID int, images []models.ProductImage) error {
	const q = `INSERT INTO product_images (product_id, url, description) VALUES ($1, $2, $3)`
	for _, img := range images {
		if _, err := ext.ExecContext(ctx, q, productID, img.URL, img.Description); err != nil {
			return fmt.Errorf("insert image: %w", err)
		}
	}
	return nil
}

// InsertColors attaches colour labels to product id.
func (r *ProductRepository) InsertColors(ctx context.Context, ext sqlx.ExecerContext, productID int, colors []string) error {
	const q = `INSERT INTO product_colors (product_id, color) VALUES ($1, $2)`
	for _, c := range colors {
		if _, err := ext.ExecContext(ctx, q, productID, c); err != nil {
			return fmt.Errorf("insert color: %w", err)
		}
	}
	return nil
}

// InsertVariants attaches variants to product id. Availability defaults to true.
func (r *ProductRepository) InsertVariants(ctx context.Context, ext sqlx.ExecerContext, productID int, variants []models.VariantInput) error {
	const q = `INSERT INTO product_variants (product_id, name, available, price) VALUES ($1, $2, $3, $4)`
	for _, v := range variants {
		if _, err := ext.ExecContext(ctx, q, productID, v.Name, v.IsAvailable(), v.Price); err != nil {
			return fmt.Errorf("insert variant: %w", err)
		}
	}
	return nil
}

// DeleteImages removes every image row of product id.
func (r *ProductRepository) DeleteImages(ctx context.Context, ext sqlx.ExecerContext, productID int) error {
	_, err := ext.ExecContext(ctx, `DELETE FROM product_images WHERE product_id = $1`, productID)
	return err
}

// DeleteColors removes every colour row of product id.
func (r *ProductRepository) DeleteColors(ctx context.Context, ext sqlx.ExecerContext, productID int) error {
	_, err := ext.ExecContext(ctx, `DELETE FROM product_colors WHERE product_id = $1`, productID)
	return err
}

// DeleteVariants removes every variant row of product id.
func (r *ProductRepository) DeleteVariants(ctx context.Context, ext sqlx.ExecerContext, productID int) error {
	_, err := ext.ExecContext(ctx, `DELETE FROM product_variants WHERE product_id = $1`, productID)
	return err
}

// SoftDelete stamps deleted_at on a live product. It reports whether a row changed,
// so a second call on the same id changes nothing.
func (r *ProductRepository) SoftDelete(ctx context.Context, id int) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE products SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// HardDelete removes the children of product id and then the product row.
// It reports whether the product row existed.
func (r *ProductRepository) HardDelete(ctx context.Context, ext sqlx.ExecerContext, id int) (bool, error) {
	if err := r.DeleteImages(ctx, ext, id); err != nil {
		return false, fmt.Errorf("delete images: %w", err)
	}
	if err := r.DeleteColors(ctx, ext, id); err != nil {
		return false, fmt.Errorf("delete colors: %w", err)
	}
	if err := r.DeleteVariants(ctx, ext, id); err != nil {
		return false, fmt.Errorf("delete variants: %w", err)
	}
	res, err := ext.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete product: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// NameExists reports whether a live product already uses name.
func (r *ProductRepository) NameExists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM products WHERE name = $1 AND deleted_at IS NULL)`, name)
	return exists, err
}
