package content

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecode_Rejects(t *testing.T) {
	for _, raw := range []string{"", "   ", "null", "{}", " { } ", "[]", `[{"a":1}]`, `"str"`, "42", "{", `{"a":}`} {
		_, err := Decode([]byte(raw))
		require.True(t, errors.Is(err, ErrInvalidInput), "Decode(%q) err=%v", raw, err)
	}
}

func TestDecode_KeepsRawValues(t *testing.T) {
	doc, err := Decode([]byte(`{"siteName":"Test","price":1.50,"rooms":[{"id":1}]}`))
	require.NoError(t, err)
	require.Len(t, doc, 3)
	require.Equal(t, json.RawMessage(`1.50`), doc["price"])
	require.Equal(t, json.RawMessage(`[{"id":1}]`), doc["rooms"])
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	in := Document{"siteName": json.RawMessage(`"Test"`), "nav": json.RawMessage(`[{"label":"Home","href":"/"}]`)}
	raw, err := Encode(in)
	require.NoError(t, err)
	out, err := Decode(raw)
	require.NoError(t, err)
	require.Equal(t, in, out)
}

func TestEncode_KeepsValuesVerbatim(t *testing.T) {
	in := []byte(`{"banner":"<b>Tom & Jerry</b>","note":"caf\u00e9","price":1.50}`)
	doc, err := Decode(in)
	require.NoError(t, err)
	raw, err := Encode(doc)
	require.NoError(t, err)
	require.Equal(t, `{"banner":"<b>Tom & Jerry</b>","note":"caf\u00e9","price":1.50}`, string(raw))
	require.NotContains(t, string(raw), `\u003c`)
}

func TestEncode_InvalidUTF8KeyIsNormalized(t *testing.T) {
	doc, err := Decode([]byte("{\"a\xffb\":1}"))
	require.NoError(t, err)
	raw, err := Encode(doc)
	require.NoError(t, err)
	require.Equal(t, "{\"a\ufffdb\":1}", string(raw))
}

func TestValidate(t *testing.T) {
	require.ErrorIs(t, Validate(nil), ErrInvalidInput)
	require.ErrorIs(t, Validate(Document{}), ErrInvalidInput)
	require.NoError(t, Validate(Document{"a": json.RawMessage(`null`)}))
}
