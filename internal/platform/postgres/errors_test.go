package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/JoannaMikul/10x-cards-sub002/internal/store"
)

func TestMapError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		err     error
		wantIs  error
		wantNil bool
	}{
		{
			name:    "nil passes through",
			err:     nil,
			wantNil: true,
		},
		{
			name:   "no rows becomes not found",
			err:    sql.ErrNoRows,
			wantIs: store.ErrNotFound,
		},
		{
			name:   "wrapped no rows becomes not found",
			err:    fmt.Errorf("scan: %w", sql.ErrNoRows),
			wantIs: store.ErrNotFound,
		},
		{
			name:   "unique violation becomes duplicate",
			err:    &pgconn.PgError{Code: pgUniqueViolationCode, ConstraintName: "review_stats_pkey"},
			wantIs: store.ErrDuplicate,
		},
		{
			name:   "foreign key violation becomes invalid entity",
			err:    &pgconn.PgError{Code: pgForeignKeyViolationCode, ConstraintName: "review_events_card_id_fkey"},
			wantIs: store.ErrInvalidEntity,
		},
		{
			name:   "check violation becomes invalid entity",
			err:    &pgconn.PgError{Code: pgCheckViolationCode},
			wantIs: store.ErrInvalidEntity,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := MapError(tt.err, "review_event", "create_multiple")
			if tt.wantNil {
				assert.NoError(t, got)
				return
			}
			assert.ErrorIs(t, got, tt.wantIs)
		})
	}
}

func TestMapErrorWrapsUnknownErrors(t *testing.T) {
	t.Parallel()

	inner := errors.New("connection refused")
	got := MapError(inner, "card", "find_owned_ids")

	var storeErr *store.StoreError
	assert.ErrorAs(t, got, &storeErr)
	assert.Equal(t, "card", storeErr.Entity)
	assert.Equal(t, "find_owned_ids", storeErr.Operation)
	assert.ErrorIs(t, got, inner)
}
