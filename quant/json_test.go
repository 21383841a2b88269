package quant_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chandan-cmd-dev/quant-go/quant"
)

func TestJSONCommentsAccepted(t *testing.T) {
	src := []byte(`{
    // measurement doc
    "$meta": { "type": "measurement", "version": "1", }, /* meta ok */
    "$body": {
      "$comment": "human note",
      "tags": ["a", "b",], // trailing comma
    },
  }`)
	var v any
	require.NoError(t, quant.UnmarshalJSONWithComments(src, &v))
	bin, err := quant.EncodeBinary(v)
	require.NoError(t, err)
	out, err := quant.DecodeBinary(bin)
	require.NoError(t, err)
	js, err := quant.MarshalJSONCompat(out, true)
	require.NoError(t, err)
	require.NotContains(t, string(js), `"$comment"`)
	require.Contains(t, string(js), `"tags"`)
}

func TestPreserveComments(t *testing.T) {
	src := []byte(`{"$body":{"$comment":"keep me","a":1}}`)
	var v any
	require.NoError(t, quant.UnmarshalJSONWithComments(src, &v))

	bin, err := quant.EncodeBinary(v, quant.WithComments(true))
	require.NoError(t, err)
	out, err := quant.DecodeBinary(bin, quant.WithComments(true))
	require.NoError(t, err)
	js, err := quant.MarshalJSONCompat(out, false)
	require.NoError(t, err)
	require.Contains(t, string(js), `"$comment"`)

	out, err = quant.DecodeBinary(bin)
	require.NoError(t, err)
	js, err = quant.MarshalJSONCompat(out, false)
	require.NoError(t, err)
	require.NotContains(t, string(js), `"$comment"`)
}

func TestStripJSONCommentsStringSafety(t *testing.T) {
	src := []byte(`{"x": "not // a comment", "y": "/* not a block */", "z": ",]"}`)
	require.Equal(t, string(src), string(quant.StripJSONComments(src)))
	require.Equal(t, `{"a":[1,2]}`, string(quant.StripJSONComments([]byte(`{"a":[1,2,],}`))))
}

func TestDecimalJSON(t *testing.T) {
	for _, in := range []string{`"1.50"`, `1.50`, `{"@type":"decimal","value":"1.50"}`} {
		var d quant.Decimal
		require.NoError(t, json.Unmarshal([]byte(in), &d), in)
		requireDec(t, "1.50", d)
	}
	var d quant.Decimal
	require.ErrorIs(t, json.Unmarshal([]byte(`{"@type":"int","value":"2"}`), &d), quant.ErrParse)

	b, err := json.Marshal(dec("1.50"))
	require.NoError(t, err)
	require.Equal(t, `"1.50"`, string(b))
}

func TestValueJSON(t *testing.T) {
	b, err := json.Marshal(uncertain("4.52", quant.Metre.Div(quant.Second), "0.02"))
	require.NoError(t, err)
	require.JSONEq(t, `{"@type":"quantity","number":"4.52","unit":"m s⁻¹","uncertainty":"0.02"}`, string(b))

	b, err = json.Marshal(quant.MustTemperature(dec("21.4"), celsius))
	require.NoError(t, err)
	require.JSONEq(t, `{"@type":"temperature","number":"21.4","unit":"°C"}`, string(b))

	b, err = json.Marshal(quant.NewLogQuantity(dec("-3"), decibel))
	require.NoError(t, err)
	require.JSONEq(t, `{"@type":"log","number":"-3","unit":"dB"}`, string(b))
}
