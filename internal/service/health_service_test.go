package service

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestHealthService_CheckDatabase(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewHealthService(db, newFakeStore(), time.Second)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1")).WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT current_database()")).
		WillReturnRows(sqlmock.NewRows([]string{"db_name", "db_user", "db_version"}).AddRow("catalog", "catalog", "PostgreSQL 16.3"))

	res := svc.CheckDatabase(context.Background())
	assert.True(t, res.OK)
	assert.Equal(t, "catalog", res.Details["database"])
	assert.Equal(t, "PostgreSQL 16.3", res.Details["version"])
}

func TestHealthService_CheckAllReportsFailure(t *testing.T) {
	db, mock := newMockDB(t)
	store := newFakeStore()
	store.pingErr = errors.New("invalid api key")
	svc := NewHealthService(db, store, time.Second)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1")).WillReturnError(errors.New("connection refused"))

	results, ok := svc.CheckAll(context.Background())
	assert.False(t, ok)
	assert.Len(t, results, 2)
	assert.Equal(t, "connection refused", results[0].Error)
	assert.Equal(t, "invalid api key", results[1].Error)
	assert.Equal(t, "fake", results[1].Details["store"])
}
