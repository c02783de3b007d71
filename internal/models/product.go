package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// DefaultCategory is assigned to products created without a category.
const DefaultCategory = "Plaxtilineas"

// Product is a catalog entry together with its owned child collections.
// Children are loaded separately and never scanned from the products row.
type Product struct {
	ID           int        `db:"id" json:"id"`
	Name         string     `db:"name" json:"name"`
	Description  *string    `db:"description" json:"description"`
	Material     *string    `db:"material" json:"material"`
	Category     string     `db:"category" json:"category"`
	Options      *string    `db:"options" json:"options"`
	IsNew        bool       `db:"is_new" json:"isNew"`
	IsFeatured   bool       `db:"is_featured" json:"isFeatured"`
	Marca        *string    `db:"marca" json:"marca"`
	Gramaje      *string    `db:"gramaje" json:"gramaje"`
	BrandIconURL *string    `db:"brand_icon_url" json:"brandIconUrl"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updatedAt"`
	DeletedAt    *time.Time `db:"deleted_at" json:"-"`

	Images   []ProductImage   `db:"-" json:"images"`
	Colors   []string         `db:"-" json:"colors"`
	Variants []ProductVariant `db:"-" json:"variants"`
}

// ProductImage is a hosted image attached to a product.
type ProductImage struct {
	URL         string  `db:"url" json:"url"`
	Description *string `db:"description" json:"description"`
}

// ProductVariant is a size/thickness option with an optional price.
type ProductVariant struct {
	ID        int                 `db:"id" json:"id"`
	ProductID int                 `db:"product_id" json:"productId"`
	Name      string              `db:"name" json:"name"`
	Available bool                `db:"available" json:"available"`
	Price     decimal.NullDecimal `db:"price" json:"price"`
	CreatedAt time.Time           `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time           `db:"updated_at" json:"updatedAt"`
}

// VariantInput is one variant as supplied by a client.
type VariantInput struct {
	Name      string              `json:"name" validate:"required,max=255"`
	Available *bool               `json:"available"`
	Price     decimal.NullDecimal `json:"price"`
}

// IsAvailable reports the availability flag, defaulting to true.
func (v VariantInput) IsAvailable() bool {
	return v.Available == nil || *v.Available
}

var validate = validator.New()

// ColorList accepts either a comma separated string ("Rojo, Verde")
// or a JSON array of labels. Blank labels are dropped.
type ColorList []string

// UnmarshalJSON implements json.Unmarshaler.
func (c *ColorList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*c = nil
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = ParseColors(s)
		return nil
	}
	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("colors must be a string or a list of strings: %w", err)
	}
	*c = cleanColors(items)
	return nil
}

// ParseColors splits a comma separated colour string.
func ParseColors(s string) ColorList {
	return cleanColors(strings.Split(s, ","))
}

func cleanColors(items []string) ColorList {
	out := make(ColorList, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// VariantList accepts either a JSON array of variants or a string holding
// that array JSON-encoded, as multipart forms send it.
type VariantList []VariantInput

// UnmarshalJSON implements json.Unmarshaler.
func (v *VariantList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*v = nil
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		parsed, err := ParseVariants(s)
		if err != nil {
			return err
		}
		*v = parsed
		return nil
	}
	var items []VariantInput
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("variants must be a list or a JSON string: %w", err)
	}
	*v = items
	return nil
}

// ParseVariants decodes a JSON-encoded variant array. An empty string yields no variants.
func ParseVariants(s string) (VariantList, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var items []VariantInput
	if err := json.Unmarshal([]byte(s), &items); err != nil {
		return nil, fmt.Errorf("variants must be a JSON array: %w", err)
	}
	return items, nil
}

// Validate checks every variant carries a name.
func (v VariantList) Validate() error {
	for i, item := range v {
		if err := validate.Struct(item); err != nil {
			return fmt.Errorf("variant %d: %w", i, err)
		}
	}
	return nil
}

// ProductInput is the create payload. Images arrive separately from the upload step.
type ProductInput struct {
	Name         string      `json:"name"`
	Description  string      `json:"description"`
	Material     string      `json:"material"`
	Category     string      `json:"category"`
	Options      *string     `json:"options"`
	IsNew        *bool       `json:"isNew"`
	IsFeatured   *bool       `json:"isFeatured"`
	Marca        *string     `json:"marca"`
	Gramaje      *string     `json:"gramaje"`
	BrandIconURL *string     `json:"brandIconUrl"`
	Colors       ColorList   `json:"colors"`
	Variants     VariantList `json:"variants"`
}

// ProductUpdateInput is a partial update. Nil fields are left unchanged;
// a non-empty Colors or Variants replaces the whole child set.
type ProductUpdateInput struct {
	Name         *string     `json:"name"`
	Description  *string     `json:"description"`
	Material     *string     `json:"material"`
	Category     *string     `json:"category"`
	Options      *string     `json:"options"`
	IsNew        *bool       `json:"isNew"`
	IsFeatured   *bool       `json:"isFeatured"`
	Marca        *string     `json:"marca"`
	Gramaje      *string     `json:"gramaje"`
	BrandIconURL *string     `json:"brandIconUrl"`
	Colors       ColorList   `json:"colors"`
	Variants     VariantList `json:"variants"`
}

// CreateProductResult is returned after a product is created.
type CreateProductResult struct {
	ID                  int    `json:"id"`
	Name                string `json:"name"`
	ImagesUploadedCount int    `json:"imagesUploadedCount"`
}

// UpdateProductResult is returned after a product is updated.
type UpdateProductResult struct {
	ID                 int `json:"id"`
	ImagesUpdatedCount int `json:"imagesUpdatedCount"`
}
