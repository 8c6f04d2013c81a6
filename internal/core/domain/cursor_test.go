package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursor_RoundTrip(t *testing.T) {
	original := Cursor{
		LastSeenID: "chunk-42",
		Score:      0.8731,
		UpdatedAt:  time.Date(2025, 11, 3, 12, 30, 0, 0, time.UTC),
		Forward:    true,
	}

	decoded, err := DecodeCursor(original.Encode())

	require.NoError(t, err)
	assert.Equal(t, original, decoded)
}

func TestCursor_RoundTripMinimal(t *testing.T) {
	original := Cursor{LastSeenID: "c1"}

	decoded, err := DecodeCursor(original.Encode())

	require.NoError(t, err)
	assert.Equal(t, original, decoded)
}

func TestDecodeCursor_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{name: "not base64", token: "!!not-base64!!"},
		{name: "not json", token: "bm90LWpzb24"},
		{name: "empty token", token: ""},
		{name: "missing position", token: Cursor{}.Encode()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeCursor(tt.token)
			assert.ErrorIs(t, err, ErrInvalidCursor)
		})
	}
}
