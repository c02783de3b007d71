package handler

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/plaxtilineas/catalog_api/internal/models"
	"github.com/plaxtilineas/catalog_api/internal/service"
	"github.com/plaxtilineas/catalog_api/internal/utils"
)

// ImagesField is the multipart field carrying product images.
const ImagesField = "imagenes"

// ProductHandler handles product-related HTTP endpoints.
type ProductHandler struct {
	productService *service.ProductService
	uploads        *service.ImageUploadService
}

// NewProductHandler constructs a ProductHandler.
func NewProductHandler(productService *service.ProductService, uploads *service.ImageUploadService) *ProductHandler {
	return &ProductHandler{productService: productService, uploads: uploads}
}

// GetProducts returns every live product, newest first.
func (h *ProductHandler) GetProducts(c *gin.Context) {
	products, err := h.productService.List(c.Request.Context())
	if err != nil {
		utils.ErrorFrom(c, err, "Failed to get products")
		return
	}
	utils.Success(c, http.StatusOK, "Products retrieved successfully", gin.H{
		"count":    len(products),
		"products": products,
	})
}

// GetProductByID returns one live product.
func (h *ProductHandler) GetProductByID(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}
	product, err := h.productService.Get(c.Request.Context(), id)
	if err != nil {
		utils.ErrorFrom(c, err, "Product not found")
		return
	}
	utils.Success(c, http.StatusOK, "Product retrieved successfully", product)
}

// GetProductsByCategory returns live products of one category.
func (h *ProductHandler) GetProductsByCategory(c *gin.Context) {
	category := c.Param("category")
	products, err := h.productService.ListByCategory(c.Request.Context(), category)
	if err != nil {
		utils.ErrorFrom(c, err, "Failed to get products")
		return
	}
	utils.Success(c, http.StatusOK, "Products retrieved successfully", gin.H{
		"category": category,
		"count":    len(products),
		"products": products,
	})
}

// CreateProduct accepts JSON or multipart with up to MaxFiles images under "imagenes".
// Images are stored before the product is written and discarded if the write fails.
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var (
		in    models.ProductInput
		files []service.ImageFile
		err   error
	)
	if isMultipart(c) {
		files, err = h.readImages(c)
		if err != nil {
			utils.ErrorFrom(c, err, "Invalid images")
			return
		}
		in, err = createInputFromForm(c)
	} else {
		err = c.ShouldBindJSON(&in)
	}
	if err != nil {
		utils.ErrorFrom(c, validationErr(err), "Invalid product data")
		return
	}
	if err := service.ValidateCreate(in); err != nil {
		utils.ErrorFrom(c, err, "Required fields: name, description, material")
		return
	}

	images, err := h.uploads.UploadAll(c.Request.Context(), files)
	if err != nil {
		utils.ErrorFrom(c, err, uploadMessage(err))
		return
	}

	result, err := h.productService.Create(c.Request.Context(), in, images)
	if err != nil {
		h.uploads.Discard(c.Request.Context(), images)
		utils.ErrorFrom(c, err, "Failed to create product")
		return
	}
	utils.Success(c, http.StatusCreated, "Product created successfully", result)
}

// UpdateProduct applies a partial update from JSON or form fields. Images are left untouched.
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}

	var (
		in  models.ProductUpdateInput
		err error
	)
	if isMultipart(c) {
		in, err = updateInputFromForm(c)
	} else {
		err = c.ShouldBindJSON(&in)
	}
	if err != nil {
		utils.ErrorFrom(c, validationErr(err), "Invalid product data")
		return
	}

	result, err := h.productService.Update(c.Request.Context(), id, in, nil)
	if err != nil {
		utils.ErrorFrom(c, err, "Failed to update product")
		return
	}
	utils.Success(c, http.StatusOK, "Product updated successfully", result)
}

// UpdateProductWithImages applies a multipart partial update. When images are
// sent they replace every stored image of the product.
func (h *ProductHandler) UpdateProductWithImages(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}
	if !isMultipart(c) {
		utils.ErrorFrom(c, fmt.Errorf("%w: expected multipart/form-data", utils.ErrValidation), "Invalid product data")
		return
	}

	files, err := h.readImages(c)
	if err != nil {
		utils.ErrorFrom(c, err, "Invalid images")
		return
	}
	in, err := updateInputFromForm(c)
	if err != nil {
		utils.ErrorFrom(c, validationErr(err), "Invalid product data")
		return
	}
	if err := service.ValidateUpdate(in); err != nil {
		utils.ErrorFrom(c, err, "Invalid product data")
		return
	}

	images, err := h.uploads.UploadAll(c.Request.Context(), files)
	if err != nil {
		utils.ErrorFrom(c, err, uploadMessage(err))
		return
	}

	result, err := h.productService.Update(c.Request.Context(), id, in, images)
	if err != nil {
		h.uploads.Discard(c.Request.Context(), images)
		utils.ErrorFrom(c, err, "Failed to update product")
		return
	}
	utils.Success(c, http.StatusOK, "Product updated successfully", result)
}

// DeleteProduct soft deletes a product.
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}
	if err := h.productService.SoftDelete(c.Request.Context(), id); err != nil {
		utils.ErrorFrom(c, err, "Failed to delete product")
		return
	}
	utils.Success(c, http.StatusOK, "Product deleted successfully", gin.H{"id": id})
}

// DeleteProductPermanent removes a product and its children for good.
func (h *ProductHandler) DeleteProductPermanent(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}
	if err := h.productService.HardDelete(c.Request.Context(), id); err != nil {
		utils.ErrorFrom(c, err, "Failed to delete product")
		return
	}
	utils.Success(c, http.StatusOK, "Product permanently deleted", gin.H{"id": id})
}

// readImages reads the "imagenes" files of a multipart request into memory,
// refusing oversized batches and files before reading them.
func (h *ProductHandler) readImages(c *gin.Context) ([]service.ImageFile, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrValidation, err)
	}
	headers := form.File[ImagesField]
	if len(headers) > h.uploads.MaxFiles() {
		return nil, fmt.Errorf("%w: at most %d images per request", utils.ErrUploadRejected, h.uploads.MaxFiles())
	}

	files := make([]service.ImageFile, 0, len(headers))
	for _, fh := range headers {
		if fh.Size > h.uploads.MaxBytes() {
			return nil, fmt.Errorf("%w: %s exceeds %d bytes", utils.ErrUploadRejected, fh.Filename, h.uploads.MaxBytes())
		}
		data, err := readFile(fh, h.uploads.MaxBytes())
		if err != nil {
			return nil, err
		}
		files = append(files, service.ImageFile{Filename: fh.Filename, Data: data})
	}
	return files, nil
}

func readFile(fh *multipart.FileHeader, limit int64) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, limit+1))
}

func createInputFromForm(c *gin.Context) (models.ProductInput, error) {
	in := models.ProductInput{
		Name:         c.PostForm("name"),
		Description:  c.PostForm("description"),
		Material:     c.PostForm("material"),
		Category:     c.PostForm("category"),
		Options:      optionalString(c, "options"),
		Marca:        optionalString(c, "marca"),
		Gramaje:      optionalString(c, "gramaje"),
		BrandIconURL: optionalString(c, "brandIconUrl"),
		Colors:       formColors(c),
	}
	var err error
	if in.IsNew, err = optionalBool(c, "isNew"); err != nil {
		return in, err
	}
	if in.IsFeatured, err = optionalBool(c, "isFeatured"); err != nil {
		return in, err
	}
	if in.Variants, err = formVariants(c); err != nil {
		return in, err
	}
	return in, nil
}

func updateInputFromForm(c *gin.Context) (models.ProductUpdateInput, error) {
	in := models.ProductUpdateInput{
		Name:         optionalString(c, "name"),
		Description:  optionalString(c, "description"),
		Material:     optionalString(c, "material"),
		Category:     optionalString(c, "category"),
		Options:      optionalString(c, "options"),
		Marca:        optionalString(c, "marca"),
		Gramaje:      optionalString(c, "gramaje"),
		BrandIconURL: optionalString(c, "brandIconUrl"),
		Colors:       formColors(c),
	}
	var err error
	if in.IsNew, err = optionalBool(c, "isNew"); err != nil {
		return in, err
	}
	if in.IsFeatured, err = optionalBool(c, "isFeatured"); err != nil {
		return in, err
	}
	if in.Variants, err = formVariants(c); err != nil {
		return in, err
	}
	return in, nil
}

// optionalString returns the form value for key, or nil when it was not sent.
func optionalString(c *gin.Context, key string) *string {
	v, ok := c.GetPostForm(key)
	if !ok {
		return nil
	}
	return &v
}

func optionalBool(c *gin.Context, key string) (*bool, error) {
	v, ok := c.GetPostForm(key)
	if !ok || strings.TrimSpace(v) == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return nil, fmt.Errorf("%s must be true or false", key)
	}
	return &b, nil
}

// formColors accepts repeated "colors" fields or one comma separated value.
// A missing or blank field yields nil.
func formColors(c *gin.Context) models.ColorList {
	values := c.PostFormArray("colors")
	switch {
	case len(values) == 0:
		return nil
	case len(values) == 1:
		if strings.TrimSpace(values[0]) == "" {
			return nil
		}
		return models.ParseColors(values[0])
	default:
		return models.ParseColors(strings.Join(values, ","))
	}
}

// formVariants decodes the JSON-encoded "variants" field. A missing or blank field yields nil.
func formVariants(c *gin.Context) (models.VariantList, error) {
	v, ok := c.GetPostForm("variants")
	if !ok || strings.TrimSpace(v) == "" {
		return nil, nil
	}
	return models.ParseVariants(v)
}

func productID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		utils.ErrorFrom(c, fmt.Errorf("%w: invalid product id %q", utils.ErrValidation, c.Param("id")), "Invalid product id")
		return 0, false
	}
	return id, true
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/form-data")
}

// validationErr tags binding and parsing failures as validation errors.
func validationErr(err error) error {
	if _, code := utils.StatusFor(err); code != "INTERNAL_ERROR" {
		return err
	}
	return fmt.Errorf("%w: %v", utils.ErrValidation, err)
}

func uploadMessage(err error) string {
	if _, code := utils.StatusFor(err); code == utils.ErrUploadTimeout.Error() {
		return "Image upload timed out"
	}
	return "Image upload failed"
}
