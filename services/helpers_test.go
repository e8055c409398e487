package services

import (
	"context"
	"strings"
	"sync"
	"testing"

	"macrolog/config"
	"macrolog/models"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a migrated in-memory sqlite database. A single connection
// keeps every query on the same in-memory schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, config.Migrate(db))
	return db
}

func setupHTTPMock(t *testing.T) {
	t.Helper()
	httpmock.Activate()
	t.Cleanup(httpmock.DeactivateAndReset)
}

func ptr[T any](v T) *T { return &v }

type changeRecord struct{ UserID, Op, Date string }

type recordingNotifier struct {
	mu     sync.Mutex
	events []changeRecord
}

func (r *recordingNotifier) MealsChanged(userID, op, date string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, changeRecord{userID, op, date})
}

func (r *recordingNotifier) all() []changeRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]changeRecord(nil), r.events...)
}

type fakeAI struct {
	reply  string
	err    error
	system string
	user   string
	calls  int
}

func (f *fakeAI) Complete(_ context.Context, system, user string) (string, error) {
	f.calls++
	f.system, f.user = system, user
	return f.reply, f.err
}

// fakeSource answers lookups from a fixed table keyed by lowercase name.
type fakeSource struct {
	mu      sync.Mutex
	matches map[string]*NutrientMatch
	err     error
	queries []string
}

func (f *fakeSource) Lookup(_ context.Context, name string) (*NutrientMatch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, name)
	if f.err != nil {
		return nil, f.err
	}
	m, ok := f.matches[strings.ToLower(name)]
	if !ok {
		return nil, nil
	}
	cp := *m
	return &cp, nil
}

// stallingSource blocks every lookup until its context is done.
type stallingSource struct {
	mu  sync.Mutex
	err error
}

func (s *stallingSource) Lookup(ctx context.Context, _ string) (*NutrientMatch, error) {
	<-ctx.Done()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = ctx.Err()
	return nil, s.err
}

func (s *stallingSource) lastErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func seedMeal(t *testing.T, db *gorm.DB, m models.Meal) models.Meal {
	t.Helper()
	require.NoError(t, db.Create(&m).Error)
	return m
}
