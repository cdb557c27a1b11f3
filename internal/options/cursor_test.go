package options

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-fin/meridian/internal/shared"
)

func TestCursorRoundTrip(t *testing.T) {
	cases := []Cursor{
		{ID: "42"},
		{ID: "42", SortValue: "Suzano Papel e Celulose"},
		{ID: "customer-9f3", SortValue: ""},
		{ID: "1", SortValue: "a label with spaces & symbols / :"},
	}
	for _, c := range cases {
		token := EncodeCursor(c)
		decoded, err := DecodeCursor(token)
		require.NoError(t, err, "cursor %+v", c)
		assert.Equal(t, c, decoded)
	}
}

func TestDecodeCursorRejectsMalformedTokens(t *testing.T) {
	malformed := []string{
		"",
		"not-a-valid-cursor",
		"%%%",
		base64.RawURLEncoding.EncodeToString([]byte(`{`)),
		base64.RawURLEncoding.EncodeToString([]byte(`[]`)),
		base64.RawURLEncoding.EncodeToString([]byte(`{"s":"only-sort"}`)),
		base64.RawURLEncoding.EncodeToString([]byte(`{"i":""}`)),
		base64.RawURLEncoding.EncodeToString([]byte(`{"i":123}`)),
		base64.RawURLEncoding.EncodeToString([]byte(`{"i":"1","s":7}`)),
		base64.RawURLEncoding.EncodeToString([]byte(`{"i":"1","x":"extra"}`)),
		base64.RawURLEncoding.EncodeToString([]byte(`{"i":"1"}{"i":"2"}`)),
	}
	for _, token := range malformed {
		decoded, err := DecodeCursor(token)
		require.Error(t, err, "token %q", token)
		assert.ErrorIs(t, err, shared.ErrInvalidCursor, "token %q", token)
		assert.Zero(t, decoded, "token %q must not leak a partial payload", token)
	}
}

func TestEncodeCursorIsURLSafe(t *testing.T) {
	token := EncodeCursor(Cursor{ID: "id?&=", SortValue: "label/with+chars"})
	assert.NotContains(t, token, "+")
	assert.NotContains(t, token, "/")
	assert.NotContains(t, token, "=")
}
