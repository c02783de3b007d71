package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/plaxtilineas/catalog_api/internal/database"
	"github.com/plaxtilineas/catalog_api/internal/models"
	"github.com/plaxtilineas/catalog_api/internal/repository"
	"github.com/plaxtilineas/catalog_api/internal/utils"
)

// ProductService writes and reads products together with their images, colours
// and variants. Every write runs in a single transaction.
type ProductService struct {
	db          *sqlx.DB
	productRepo *repository.ProductRepository
}

// NewProductService constructs a ProductService.
func NewProductService(db *sqlx.DB, productRepo *repository.ProductRepository) *ProductService {
	return &ProductService{db: db, productRepo: productRepo}
}

// List returns every live product, newest first.
func (s *ProductService) List(ctx context.Context) ([]models.Product, error) {
	return s.productRepo.List(ctx)
}

// ListByCategory returns live products in category.
func (s *ProductService) ListByCategory(ctx context.Context, category string) ([]models.Product, error) {
	return s.productRepo.ListByCategory(ctx, category)
}

// Get returns a live product or utils.ErrProductNotFound.
func (s *ProductService) Get(ctx context.Context, id int) (*models.Product, error) {
	p, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, utils.ErrProductNotFound
	}
	return p, nil
}

// Create stores a product with its children. Required fields are checked
// before any transaction is opened.
func (s *ProductService) Create(ctx context.Context, in models.ProductInput, images []UploadedImage) (*models.CreateProductResult, error) {
	if err := ValidateCreate(in); err != nil {
		return nil, err
	}

	p := &models.Product{
		Name:         strings.TrimSpace(in.Name),
		Description:  &in.Description,
		Material:     &in.Material,
		Category:     in.Category,
		Options:      in.Options,
		IsNew:        true,
		IsFeatured:   false,
		Marca:        in.Marca,
		Gramaje:      in.Gramaje,
		BrandIconURL: in.BrandIconURL,
	}
	if strings.TrimSpace(p.Category) == "" {
		p.Category = models.DefaultCategory
	}
	if in.IsNew != nil {
		p.IsNew = *in.IsNew
	}
	if in.IsFeatured != nil {
		p.IsFeatured = *in.IsFeatured
	}

	err := database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if err := s.productRepo.Insert(ctx, tx, p); err != nil {
			return fmt.Errorf("insert product: %w", err)
		}
		if err := s.productRepo.InsertImages(ctx, tx, p.ID, toProductImages(images)); err != nil {
			return err
		}
		if err := s.productRepo.InsertColors(ctx, tx, p.ID, in.Colors); err != nil {
			return err
		}
		return s.productRepo.InsertVariants(ctx, tx, p.ID, in.Variants)
	})
	if err != nil {
		log.Error().Err(err).Str("name", p.Name).Msg("Failed to create product")
		return nil, err
	}

	log.Info().
		Int("product_id", p.ID).
		Int("images", len(images)).
		Int("colors", len(in.Colors)).
		Int("variants", len(in.Variants)).
		Msg("Product created")
	return &models.CreateProductResult{ID: p.ID, Name: p.Name, ImagesUploadedCount: len(images)}, nil
}

// Update applies a partial update. Fields left nil keep their value; a non-empty
// child set replaces the stored one, an empty one leaves it untouched.
// A missing product fails with utils.ErrProductNotFound before anything is written.
func (s *ProductService) Update(ctx context.Context, id int, in models.ProductUpdateInput, images []UploadedImage) (*models.UpdateProductResult, error) {
	if err := ValidateUpdate(in); err != nil {
		return nil, err
	}

	err := database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		exists, err := s.productRepo.Exists(ctx, tx, id)
		if err != nil {
			return fmt.Errorf("check product: %w", err)
		}
		if !exists {
			return utils.ErrProductNotFound
		}

		if err := s.productRepo.ApplyPatch(ctx, tx, id, patchFrom(in)); err != nil {
			return fmt.Errorf("update product: %w", err)
		}
		if len(images) > 0 {
			if err := s.productRepo.DeleteImages(ctx, tx, id); err != nil {
				return fmt.Errorf("delete images: %w", err)
			}
			if err := s.productRepo.InsertImages(ctx, tx, id, toProductImages(images)); err != nil {
				return err
			}
		}
		if len(in.Colors) > 0 {
			if err := s.productRepo.DeleteColors(ctx, tx, id); err != nil {
				return fmt.Errorf("delete colors: %w", err)
			}
			if err := s.productRepo.InsertColors(ctx, tx, id, in.Colors); err != nil {
				return err
			}
		}
		if len(in.Variants) > 0 {
			if err := s.productRepo.DeleteVariants(ctx, tx, id); err != nil {
				return fmt.Errorf("delete variants: %w", err)
			}
			if err := s.productRepo.InsertVariants(ctx, tx, id, in.Variants); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Int("product_id", id).Int("images", len(images)).Msg("Product updated")
	return &models.UpdateProductResult{ID: id, ImagesUpdatedCount: len(images)}, nil
}

// SoftDelete hides a product from every read. Repeating it changes nothing.
func (s *ProductService) SoftDelete(ctx context.Context, id int) error {
	changed, err := s.productRepo.SoftDelete(ctx, id)
	if err != nil {
		return fmt.Errorf("soft delete product: %w", err)
	}
	log.Info().Int("product_id", id).Bool("changed", changed).Msg("Product soft deleted")
	return nil
}

// HardDelete removes a product and its children in one transaction.
func (s *ProductService) HardDelete(ctx context.Context, id int) error {
	var existed bool
	err := database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		var err error
		existed, err = s.productRepo.HardDelete(ctx, tx, id)
		return err
	})
	if err != nil {
		return err
	}
	log.Info().Int("product_id", id).Bool("existed", existed).Msg("Product permanently deleted")
	return nil
}

// ValidateCreate checks the required fields of a create payload.
func ValidateCreate(in models.ProductInput) error {
	var missing []string
	if strings.TrimSpace(in.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(in.Description) == "" {
		missing = append(missing, "description")
	}
	if strings.TrimSpace(in.Material) == "" {
		missing = append(missing, "material")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: required fields: %s", utils.ErrValidation, strings.Join(missing, ", "))
	}
	if err := in.Variants.Validate(); err != nil {
		return fmt.Errorf("%w: %v", utils.ErrValidation, err)
	}
	return nil
}

// ValidateUpdate rejects blank required fields and nameless variants.
func ValidateUpdate(in models.ProductUpdateInput) error {
	for field, v := range map[string]*string{"name": in.Name, "description": in.Description, "material": in.Material} {
		if v != nil && strings.TrimSpace(*v) == "" {
			return fmt.Errorf("%w: %s cannot be empty", utils.ErrValidation, field)
		}
	}
	if err := in.Variants.Validate(); err != nil {
		return fmt.Errorf("%w: %v", utils.ErrValidation, err)
	}
	return nil
}

func patchFrom(in models.ProductUpdateInput) repository.ProductPatch {
	return repository.ProductPatch{
		Name:         in.Name,
		Description:  in.Description,
		Material:     in.Material,
		Category:     in.Category,
		Options:      in.Options,
		IsNew:        in.IsNew,
		IsFeatured:   in.IsFeatured,
		Marca:        in.Marca,
		Gramaje:      in.Gramaje,
		BrandIconURL: in.BrandIconURL,
	}
}

func toProductImages(images []UploadedImage) []models.ProductImage {
	out := make([]models.ProductImage, 0, len(images))
	for _, img := range images {
		name := img.OriginalName
		out = append(out, models.ProductImage{URL: img.URL, Description: &name})
	}
	return out
}
