package projerrors

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDetailsJSON(t *testing.T) {
	t.Parallel()

	t.Run("unmarshal preserves document order", func(t *testing.T) {
		var d Details
		err := json.Unmarshal([]byte(`{"zeta":"1","alpha":"2","mid":"3"}`), &d)
		require.NoError(t, err)
		require.Equal(t, Details{
			{Key: "zeta", Value: "1"},
			{Key: "alpha", Value: "2"},
			{Key: "mid", Value: "3"},
		}, d)
	})

	t.Run("marshal writes keys in insertion order", func(t *testing.T) {
		d := Details{{Key: "b", Value: "1"}, {Key: "a", Value: "2"}}
		out, err := json.Marshal(d)
		require.NoError(t, err)
		require.Equal(t, `{"b":"1","a":"2"}`, string(out))
	})

	t.Run("round-trip keeps order", func(t *testing.T) {
		in := Details{{Key: "c", Value: "x"}, {Key: "a", Value: "y"}, {Key: "b", Value: "z"}}
		data, err := json.Marshal(in)
		require.NoError(t, err)
		var out Details
		require.NoError(t, json.Unmarshal(data, &out))
		require.Equal(t, in, out)
	})

	t.Run("nested values keep their raw JSON text", func(t *testing.T) {
		var d Details
		err := json.Unmarshal([]byte(`{"extra":{"n":1},"count":7}`), &d)
		require.NoError(t, err)
		require.Equal(t, "extra", d[0].Key)
		require.JSONEq(t, `{"n":1}`, d[0].Value)
		require.Equal(t, "7", d[1].Value)
	})

	t.Run("null decodes to nil", func(t *testing.T) {
		var d Details
		require.NoError(t, json.Unmarshal([]byte(`null`), &d))
		require.Nil(t, d)
	})

	t.Run("non-object input is rejected", func(t *testing.T) {
		var d Details
		require.Error(t, json.Unmarshal([]byte(`["a"]`), &d))
	})
}

func TestRelatedResource(t *testing.T) {
	t.Parallel()

	t.Run("both reserved keys yield a reference", func(t *testing.T) {
		d := Details{
			{Key: DetailKeyResourcePK, Value: "42"},
			{Key: DetailKeyResourcePath, Value: "/src/a.c"},
		}
		ref, ok := d.RelatedResource()
		require.True(t, ok)
		require.Equal(t, "42", ref.PK)
		require.Equal(t, "/src/a.c", ref.Path)
	})

	t.Run("a single reserved key yields nothing", func(t *testing.T) {
		d := Details{{Key: DetailKeyResourcePK, Value: "42"}}
		_, ok := d.RelatedResource()
		require.False(t, ok)

		d = Details{{Key: DetailKeyResourcePath, Value: "/src/a.c"}}
		_, ok = d.RelatedResource()
		require.False(t, ok)
	})

	t.Run("no reserved keys yields nothing", func(t *testing.T) {
		d := Details{{Key: "stage", Value: "scan"}}
		_, ok := d.RelatedResource()
		require.False(t, ok)
	})
}

func TestDetailsGet(t *testing.T) {
	t.Parallel()

	d := Details{{Key: "k", Value: "v1"}, {Key: "k", Value: "v2"}}

	v, ok := d.Get("k")
	require.True(t, ok)
	require.Equal(t, "v1", v)

	_, ok = d.Get("missing")
	require.False(t, ok)
}
