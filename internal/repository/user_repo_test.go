package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plaxtilineas/catalog_api/internal/models"
)

var userCols = []string{"id", "username", "email", "password_hash", "role", "is_active", "created_at", "updated_at"}

func TestUserRepository_GetActiveByEmail(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE email = $1 AND is_active = TRUE")).
		WithArgs("ana@plaxtilineas.com").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(1, "ana", "ana@plaxtilineas.com", "hash", "admin", true, now, now))

	u, err := repo.GetActiveByEmail(context.Background(), "ana@plaxtilineas.com")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "admin", u.Role)
	assert.Equal(t, models.UserClaims{ID: 1, Email: "ana@plaxtilineas.com", Username: "ana", Role: "admin"}, u.Claims())
}

func TestUserRepository_GetActiveByIDMissing(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1 AND is_active = TRUE")).
		WithArgs(3).WillReturnRows(sqlmock.NewRows(userCols))

	u, err := repo.GetActiveByID(context.Background(), 3)
	assert.NoError(t, err)
	assert.Nil(t, u)
}

func TestUserRepository_ExistsByEmailOrUsername(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE email = $1 OR username = $2")).
		WithArgs("ana@plaxtilineas.com", "ana").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.ExistsByEmailOrUsername(context.Background(), "ana@plaxtilineas.com", "ana")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestUserRepository_Create(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("ana", "ana@plaxtilineas.com", "hash", "user", true).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(15, now, now))

	u := &models.User{Username: "ana", Email: "ana@plaxtilineas.com", PasswordHash: "hash", Role: "user", IsActive: true}
	require.NoError(t, repo.Create(context.Background(), u))
	assert.Equal(t, 15, u.ID)
}
