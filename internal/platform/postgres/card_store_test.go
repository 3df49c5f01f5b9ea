package postgres

import (
	"context"
	"database/sql/driver"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindOwnedIDsLocksCardRows(t *testing.T) {
	t.Parallel()

	db, rec := newRecordedDB(t)
	s := NewPostgresCardStore(db, nil)

	userID := uuid.New()
	owned := uuid.New()
	missing := uuid.New()

	rec.enqueue([]string{"id"}, []driver.Value{owned.String()})

	got, err := s.FindOwnedIDs(context.Background(), userID, []uuid.UUID{owned, missing})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{owned}, got,
		"only the matched subset comes back; the caller diffs against its request")

	// Concurrent first-time sessions for a card have no stats row to lock,
	// so the ownership read must lock the card rows, in a stable order.
	query := rec.lastQuery()
	assert.Contains(t, query, "FOR UPDATE")
	assert.Contains(t, query, "ORDER BY id")
	assert.Contains(t, query, "deleted_at IS NULL")
}

func TestFindOwnedIDsEmptyInputSkipsQuery(t *testing.T) {
	t.Parallel()

	db, rec := newRecordedDB(t)
	s := NewPostgresCardStore(db, nil)

	got, err := s.FindOwnedIDs(context.Background(), uuid.New(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Zero(t, rec.queryCount())
}
