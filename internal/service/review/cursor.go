package review

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Cursors are opaque to clients. Event pages walk backward in reviewed_at,
// so their cursor is a base64url-encoded RFC 3339 timestamp of the last row.
// Stats pages walk forward in (next_review_at, card_id); their cursor also
// carries the card id so rows that tie on the timestamp are not skipped.

// encodeCursor produces an opaque cursor for the given boundary instant.
func encodeCursor(t time.Time) string {
	return base64.URLEncoding.EncodeToString([]byte(t.UTC().Format(time.RFC3339Nano)))
}

// decodeCursor parses a cursor produced by encodeCursor.
// Returns ErrInvalidCursor for anything it cannot decode.
func decodeCursor(cursor string) (time.Time, error) {
	raw, err := base64.URLEncoding.DecodeString(cursor)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}

	t, err := time.Parse(time.RFC3339Nano, string(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}

	return t, nil
}

// encodeStatsCursor produces an opaque cursor marking the last stats row of
// a page: its next review instant plus the card id as a tiebreak.
func encodeStatsCursor(t time.Time, cardID uuid.UUID) string {
	raw := t.UTC().Format(time.RFC3339Nano) + "|" + cardID.String()
	return base64.URLEncoding.EncodeToString([]byte(raw))
}

// decodeStatsCursor parses a cursor produced by encodeStatsCursor.
// Returns ErrInvalidCursor for anything it cannot decode.
func decodeStatsCursor(cursor string) (time.Time, uuid.UUID, error) {
	raw, err := base64.URLEncoding.DecodeString(cursor)
	if err != nil {
		return time.Time{}, uuid.Nil, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}

	parts := strings.SplitN(string(raw), "|", 2)
	if len(parts) != 2 {
		return time.Time{}, uuid.Nil, fmt.Errorf("%w: missing tiebreak", ErrInvalidCursor)
	}

	t, err := time.Parse(time.RFC3339Nano, parts[0])
	if err != nil {
		return time.Time{}, uuid.Nil, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}

	cardID, err := uuid.Parse(parts[1])
	if err != nil {
		return time.Time{}, uuid.Nil, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}

	return t, cardID, nil
}
