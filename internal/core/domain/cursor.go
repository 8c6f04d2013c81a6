package domain

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"
)

// Cursor encodes a pagination position for deep result sets. It is opaque
// to callers: only the engine interprets the decoded fields.
type Cursor struct {
	// LastSeenID is the chunk ID of the last result on the previous page.
	LastSeenID string `json:"last_seen_id"`

	// Score is the similarity of the last seen result, used as a fallback
	// position when the chunk was re-indexed away between pages.
	Score float64 `json:"score"`

	// UpdatedAt is an optional tie-break timestamp.
	UpdatedAt time.Time `json:"updated_at,omitempty"`

	// Forward indicates pagination direction.
	Forward bool `json:"forward"`
}

// Encode serialises the cursor to an opaque URL-safe token.
func (c Cursor) Encode() string {
	data, err := json.Marshal(c)
	if err != nil {
		// Cursor fields are all marshalable; this cannot happen.
		return ""
	}
	return base64.URLEncoding.EncodeToString(data)
}

// DecodeCursor parses a token produced by Encode.
// Returns ErrInvalidCursor for anything else.
func DecodeCursor(token string) (Cursor, error) {
	data, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}

	var c Cursor
	if err := json.Unmarshal(data, &c); err != nil {
		return Cursor{}, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	if c.LastSeenID == "" {
		return Cursor{}, fmt.Errorf("%w: missing position", ErrInvalidCursor)
	}
	return c, nil
}
