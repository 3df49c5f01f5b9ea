package review

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/JoannaMikul/10x-cards-sub002/internal/domain"
	"github.com/JoannaMikul/10x-cards-sub002/internal/store"
)

// stubDriver is a no-op database driver so transactional service paths can
// run without a real database. The mocked stores never touch the
// transaction they receive.
type stubDriver struct{}

func (stubDriver) Open(string) (driver.Conn, error) { return stubConn{}, nil }

type stubConn struct{}

func (stubConn) Prepare(string) (driver.Stmt, error) { return nil, errors.New("not supported") }
func (stubConn) Close() error                        { return nil }
func (stubConn) Begin() (driver.Tx, error)           { return stubTx{}, nil }

type stubTx struct{}

func (stubTx) Commit() error   { return nil }
func (stubTx) Rollback() error { return nil }

func init() {
	sql.Register("reviewstub", stubDriver{})
}

// newStubDB returns a database handle backed by the no-op driver.
func newStubDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("reviewstub", "")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

// MockCardStore mocks the store.CardStore interface
type MockCardStore struct {
	mock.Mock
}

func (m *MockCardStore) FindOwnedIDs(
	ctx context.Context,
	userID uuid.UUID,
	cardIDs []uuid.UUID,
) ([]uuid.UUID, error) {
	args := m.Called(ctx, userID, cardIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockCardStore) WithTx(tx *sql.Tx) store.CardStore {
	return m
}

// MockReviewEventStore mocks the store.ReviewEventStore interface
type MockReviewEventStore struct {
	mock.Mock
}

func (m *MockReviewEventStore) CreateMultiple(
	ctx context.Context,
	events []*domain.ReviewEvent,
) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

func (m *MockReviewEventStore) List(
	ctx context.Context,
	userID uuid.UUID,
	filter store.EventFilter,
	limit int,
) ([]*domain.ReviewEvent, error) {
	args := m.Called(ctx, userID, filter, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ReviewEvent), args.Error(1)
}

func (m *MockReviewEventStore) WithTx(tx *sql.Tx) store.ReviewEventStore {
	return m
}

// MockReviewStatsStore mocks the store.ReviewStatsStore interface
type MockReviewStatsStore struct {
	mock.Mock
}

func (m *MockReviewStatsStore) GetForUpdateByCards(
	ctx context.Context,
	userID uuid.UUID,
	cardIDs []uuid.UUID,
) ([]*domain.ReviewStats, error) {
	args := m.Called(ctx, userID, cardIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ReviewStats), args.Error(1)
}

func (m *MockReviewStatsStore) List(
	ctx context.Context,
	userID uuid.UUID,
	filter store.StatsFilter,
	limit int,
) ([]*domain.ReviewStats, error) {
	args := m.Called(ctx, userID, filter, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ReviewStats), args.Error(1)
}

func (m *MockReviewStatsStore) WithTx(tx *sql.Tx) store.ReviewStatsStore {
	return m
}
