package service

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"
)

// CheckResult reports one dependency check.
type CheckResult struct {
	Name      string            `json:"name"`
	OK        bool              `json:"ok"`
	LatencyMs int64             `json:"latencyMs"`
	Error     string            `json:"error,omitempty"`
	Details   map[string]string `json:"details,omitempty"`
}

// HealthService queries dependencies on demand. Nothing is cached between calls.
type HealthService struct {
	db          *sqlx.DB
	media       MediaStore
	pingTimeout time.Duration
}

// NewHealthService creates a HealthService.
func NewHealthService(db *sqlx.DB, media MediaStore, pingTimeout time.Duration) *HealthService {
	if pingTimeout <= 0 {
		pingTimeout = 10 * time.Second
	}
	return &HealthService{db: db, media: media, pingTimeout: pingTimeout}
}

// CheckDatabase runs a trivial query and reports the server identity.
func (s *HealthService) CheckDatabase(ctx context.Context) CheckResult {
	start := time.Now()
	res := CheckResult{Name: "database"}

	ctx, cancel := context.WithTimeout(ctx, s.pingTimeout)
	defer cancel()

	var one int
	if err := s.db.GetContext(ctx, &one, `SELECT 1`); err != nil {
		res.Error = err.Error()
		res.LatencyMs = time.Since(start).Milliseconds()
		return res
	}

	var info struct {
		Name    string `db:"db_name"`
		User    string `db:"db_user"`
		Version string `db:"db_version"`
	}
	if err := s.db.GetContext(ctx, &info,
		`SELECT current_database() AS db_name, current_user AS db_user, version() AS db_version`); err != nil {
		res.Error = err.Error()
		res.LatencyMs = time.Since(start).Milliseconds()
		return res
	}

	res.OK = true
	res.Details = map[string]string{"database": info.Name, "user": info.User, "version": info.Version}
	res.LatencyMs = time.Since(start).Milliseconds()
	return res
}

// CheckMedia pings the media store.
func (s *HealthService) CheckMedia(ctx context.Context) CheckResult {
	start := time.Now()
	res := CheckResult{Name: "media", Details: map[string]string{"store": s.media.Name()}}

	ctx, cancel := context.WithTimeout(ctx, s.pingTimeout)
	defer cancel()

	if err := s.media.Ping(ctx); err != nil {
		res.Error = err.Error()
	} else {
		res.OK = true
	}
	res.LatencyMs = time.Since(start).Milliseconds()
	return res
}

// CheckAll runs every check concurrently and reports whether all passed.
func (s *HealthService) CheckAll(ctx context.Context) ([]CheckResult, bool) {
	results := make([]CheckResult, 2)
	var g errgroup.Group
	g.Go(func() error { results[0] = s.CheckDatabase(ctx); return nil })
	g.Go(func() error { results[1] = s.CheckMedia(ctx); return nil })
	_ = g.Wait()

	ok := true
	for _, r := range results {
		ok = ok && r.OK
	}
	return results, ok
}
