package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plaxtilineas/catalog_api/internal/models"
)

var productCols = []string{"id", "name", "description", "material", "category", "options", "is_new",
	"is_featured", "marca", "gramaje", "brand_icon_url", "created_at", "updated_at", "deleted_at"}

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return sqlx.NewDb(db, "postgres"), mock
}

func productRow(rows *sqlmock.Rows, id int, name string) *sqlmock.Rows {
	now := time.Now()
	return rows.AddRow(id, name, "desc", "PVC", "Plaxtilineas", nil, true, false, nil, nil, nil, now, now, nil)
}

func expectChildren(mock sqlmock.Sqlmock, id int, images, colors, variants *sqlmock.Rows) {
	mock.ExpectQuery(regexp.QuoteMeta("SELECT url, description FROM product_images WHERE product_id = $1")).
		WithArgs(id).WillReturnRows(images)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT color FROM product_colors WHERE product_id = $1")).
		WithArgs(id).WillReturnRows(colors)
	mock.ExpectQuery(regexp.QuoteMeta("FROM product_variants WHERE product_id = $1")).
		WithArgs(id).WillReturnRows(variants)
}

func emptyChildren() (*sqlmock.Rows, *sqlmock.Rows, *sqlmock.Rows) {
	return sqlmock.NewRows([]string{"url", "description"}),
		sqlmock.NewRows([]string{"color"}),
		sqlmock.NewRows([]string{"id", "product_id", "name", "available", "price", "created_at", "updated_at"})
}

func TestProductRepository_GetByIDAttachesChildren(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProductRepository(db)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("FROM products WHERE id = $1 AND deleted_at IS NULL")).
		WithArgs(9).WillReturnRows(productRow(sqlmock.NewRows(productCols), 9, "Malla Plástica"))
	expectChildren(mock, 9,
		sqlmock.NewRows([]string{"url", "description"}).
			AddRow("https://img/a.jpg", "a.jpg").
			AddRow("https://img/b.jpg", "b.jpg"),
		sqlmock.NewRows([]string{"color"}).AddRow("Negro").AddRow("Blanco"),
		sqlmock.NewRows([]string{"id", "product_id", "name", "available", "price", "created_at", "updated_at"}).
			AddRow(1, 9, "4x4x1m", true, nil, now, now),
	)

	p, err := repo.GetByID(context.Background(), 9)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "Malla Plástica", p.Name)
	assert.Len(t, p.Images, 2)
	assert.Equal(t, []string{"Negro", "Blanco"}, p.Colors)
	require.Len(t, p.Variants, 1)
	assert.False(t, p.Variants[0].Price.Valid)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_GetByIDMissing(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProductRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM products WHERE id = $1")).
		WithArgs(404).WillReturnRows(sqlmock.NewRows(productCols))

	p, err := repo.GetByID(context.Background(), 404)
	assert.NoError(t, err)
	assert.Nil(t, p)
}

func TestProductRepository_ListNewestFirst(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProductRepository(db)

	rows := sqlmock.NewRows(productCols)
	productRow(rows, 2, "Espuma")
	productRow(rows, 1, "Malla")
	mock.ExpectQuery(regexp.QuoteMeta("WHERE deleted_at IS NULL ORDER BY id DESC")).WillReturnRows(rows)
	i, c, v := emptyChildren()
	expectChildren(mock, 2, i, c, v)
	i, c, v = emptyChildren()
	expectChildren(mock, 1, i, c, v)

	products, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, 2, products[0].ID)
	assert.NotNil(t, products[0].Colors)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_ListByCategory(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProductRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE category = $1 AND deleted_at IS NULL")).
		WithArgs("Espumas").WillReturnRows(sqlmock.NewRows(productCols))

	products, err := repo.ListByCategory(context.Background(), "Espumas")
	require.NoError(t, err)
	assert.Empty(t, products)
	assert.NotNil(t, products)
}

func TestProductRepository_ChildLoadErrorPropagates(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProductRepository(db)

	mock.ExpectQuery("FROM products").WithArgs(3).
		WillReturnRows(productRow(sqlmock.NewRows(productCols), 3, "Malla"))
	mock.ExpectQuery("FROM product_images").WithArgs(3).WillReturnError(errors.New("boom"))

	_, err := repo.GetByID(context.Background(), 3)
	assert.ErrorContains(t, err, "load images for product 3")
}

func TestProductRepository_InsertReturnsID(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProductRepository(db)
	desc := "Malla de uso agrícola"
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO products")).
		WithArgs("Malla", &desc, nil, models.DefaultCategory, nil, true, false, nil, nil, nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(41, now, now))

	p := &models.Product{Name: "Malla", Description: &desc, Category: models.DefaultCategory, IsNew: true}
	require.NoError(t, repo.Insert(context.Background(), db, p))
	assert.Equal(t, 41, p.ID)
}

func TestProductRepository_InsertChildren(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProductRepository(db)
	ctx := context.Background()
	name := "a.jpg"
	no := false

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO product_images")).
		WithArgs(5, "https://img/a.jpg", &name).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO product_colors")).
		WithArgs(5, "Rojo").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO product_colors")).
		WithArgs(5, "Verde").WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO product_variants")).
		WithArgs(5, "2mm", true, decimal.NullDecimal{}).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO product_variants")).
		WithArgs(5, "3mm", false, sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(2, 1))

	require.NoError(t, repo.InsertImages(ctx, db, 5, []models.ProductImage{{URL: "https://img/a.jpg", Description: &name}}))
	require.NoError(t, repo.InsertColors(ctx, db, 5, []string{"Rojo", "Verde"}))
	require.NoError(t, repo.InsertVariants(ctx, db, 5, []models.VariantInput{
		{Name: "2mm"},
		{Name: "3mm", Available: &no, Price: decimal.NewNullDecimal(decimal.NewFromInt(1200))},
	}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_ApplyPatchEmptyIsNoop(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProductRepository(db)

	require.NoError(t, repo.ApplyPatch(context.Background(), db, 1, ProductPatch{}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_SoftDeleteIsIdempotent(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProductRepository(db)
	q := regexp.QuoteMeta("UPDATE products SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL")

	mock.ExpectExec(q).WithArgs(4).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q).WithArgs(4).WillReturnResult(sqlmock.NewResult(0, 0))

	changed, err := repo.SoftDelete(context.Background(), 4)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = repo.SoftDelete(context.Background(), 4)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_HardDeleteRemovesChildrenFirst(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProductRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM product_images")).WithArgs(8).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM product_colors")).WithArgs(8).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM product_variants")).WithArgs(8).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM products WHERE id = $1")).WithArgs(8).WillReturnResult(sqlmock.NewResult(0, 1))

	existed, err := repo.HardDelete(context.Background(), db, 8)
	require.NoError(t, err)
	assert.True(t, existed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_Exists(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProductRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM products WHERE id = $1)")).
		WithArgs(12).WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	ok, err := repo.Exists(context.Background(), db, 12)
	require.NoError(t, err)
	assert.False(t, ok)
}
