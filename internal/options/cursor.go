package options

import (
	"bytes"
	"encoding/base64"
	"encoding/json"

	"github.com/meridian-fin/meridian/internal/shared"
)

// Cursor is the pagination anchor: the sort-key/id pair of the last row of
// the previous page. Tokens are self-describing; nothing is stored server-side.
type Cursor struct {
	ID        string
	SortValue string
}

type cursorWire struct {
	ID        string  `json:"i"`
	SortValue *string `json:"s,omitempty"`
}

// EncodeCursor serialises the anchor into an opaque URL-safe token.
func EncodeCursor(c Cursor) string {
	wire := cursorWire{ID: c.ID}
	if c.SortValue != "" {
		wire.SortValue = &c.SortValue
	}
	raw, _ := json.Marshal(wire)
	return base64.RawURLEncoding.EncodeToString(raw)
}

// DecodeCursor parses a token produced by EncodeCursor. Every malformed input
// fails with the same shared.ErrInvalidCursor; callers cannot distinguish a
// bad encoding from a truncated payload or a missing field.
func DecodeCursor(token string) (Cursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, shared.ErrInvalidCursor
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	var wire cursorWire
	if err := dec.Decode(&wire); err != nil {
		return Cursor{}, shared.ErrInvalidCursor
	}
	if dec.More() {
		return Cursor{}, shared.ErrInvalidCursor
	}
	if wire.ID == "" {
		return Cursor{}, shared.ErrInvalidCursor
	}

	c := Cursor{ID: wire.ID}
	if wire.SortValue != nil {
		c.SortValue = *wire.SortValue
	}
	return c, nil
}
