package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNotFoundError(t *testing.T) {
	t.Parallel()

	assert.True(t, IsNotFoundError(ErrNotFound))
	assert.True(t, IsNotFoundError(ErrCardNotFound))
	assert.True(t, IsNotFoundError(ErrReviewEventNotFound))
	assert.True(t, IsNotFoundError(ErrReviewStatsNotFound))
	assert.True(t, IsNotFoundError(fmt.Errorf("outer: %w", ErrCardNotFound)))

	assert.False(t, IsNotFoundError(ErrDuplicate))
	assert.False(t, IsNotFoundError(errors.New("card not found")))
	assert.False(t, IsNotFoundError(nil))
}

func TestStoreErrorWrapping(t *testing.T) {
	t.Parallel()

	inner := errors.New("connection reset")
	err := NewStoreError("review_event", "create_multiple", "insert failed", inner)

	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "create_multiple operation on review_event failed")
	assert.Contains(t, err.Error(), "connection reset")

	var storeErr *StoreError
	assert.ErrorAs(t, fmt.Errorf("outer: %w", err), &storeErr)
	assert.Equal(t, "review_event", storeErr.Entity)
}

func TestStoreErrorWithoutInner(t *testing.T) {
	t.Parallel()

	err := NewStoreError("review_stats", "list", "scan failed", nil)
	assert.Equal(t, "list operation on review_stats failed: scan failed", err.Error())
	assert.Nil(t, errors.Unwrap(err))
}
