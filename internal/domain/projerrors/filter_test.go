package projerrors

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func strptr(s string) *string { return &s }

func TestFilterFromQuery(t *testing.T) {
	t.Parallel()

	t.Run("absent parameters mean no constraint", func(t *testing.T) {
		st := FilterFromQuery(url.Values{})
		require.True(t, st.Empty())
		require.Nil(t, st.Model)
		require.Nil(t, st.Message)
	})

	t.Run("present parameters are taken verbatim", func(t *testing.T) {
		q := url.Values{"model": {"CodebaseResource"}, "message": {"boom"}}
		st := FilterFromQuery(q)
		require.Equal(t, "CodebaseResource", *st.Model)
		require.Equal(t, "boom", *st.Message)
	})

	t.Run("empty value is a real constraint", func(t *testing.T) {
		q := url.Values{"message": {""}}
		st := FilterFromQuery(q)
		require.False(t, st.Empty())
		require.Equal(t, "", *st.Message)
	})
}

func TestApplyFilter(t *testing.T) {
	t.Parallel()

	records := []*ProjectError{
		{ID: 1, Model: "A", Message: "m1"},
		{ID: 2, Model: "B", Message: "m1"},
		{ID: 3, Model: "A", Message: "m2"},
		{ID: 4, Model: "C", Message: "m2"},
		{ID: 5, Model: "A", Message: "m1"},
	}

	t.Run("model filter keeps exactly the matching subset in order", func(t *testing.T) {
		out := ApplyFilter(records, FilterState{Model: strptr("A")})
		require.Len(t, out, 3)
		require.Equal(t, int64(1), out[0].ID)
		require.Equal(t, int64(3), out[1].ID)
		require.Equal(t, int64(5), out[2].ID)
	})

	t.Run("matching is case-sensitive and byte-exact", func(t *testing.T) {
		out := ApplyFilter(records, FilterState{Model: strptr("a")})
		require.Empty(t, out)
	})

	t.Run("constraints combine with AND", func(t *testing.T) {
		out := ApplyFilter(records, FilterState{Model: strptr("A"), Message: strptr("m1")})
		require.Len(t, out, 2)
		require.Equal(t, int64(1), out[0].ID)
		require.Equal(t, int64(5), out[1].ID)
	})

	t.Run("conjunction equals intersection of single filters", func(t *testing.T) {
		both := ApplyFilter(records, FilterState{Model: strptr("A"), Message: strptr("m2")})
		byModel := ApplyFilter(records, FilterState{Model: strptr("A")})
		intersect := ApplyFilter(byModel, FilterState{Message: strptr("m2")})
		require.Equal(t, intersect, both)
	})

	t.Run("empty filter returns the input unchanged", func(t *testing.T) {
		out := ApplyFilter(records, FilterState{})
		require.Equal(t, records, out)
	})

	t.Run("empty message constraint matches only empty messages", func(t *testing.T) {
		withEmpty := append(records, &ProjectError{ID: 6, Model: "A", Message: ""})
		out := ApplyFilter(withEmpty, FilterState{Message: strptr("")})
		require.Len(t, out, 1)
		require.Equal(t, int64(6), out[0].ID)
	})

	t.Run("empty result is valid", func(t *testing.T) {
		out := ApplyFilter(records, FilterState{Message: strptr("nope")})
		require.NotNil(t, out)
		require.Empty(t, out)
	})
}
