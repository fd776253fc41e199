package projerrors

import "net/url"

// FilterState holds the active narrowing constraints for one listing
// request. A nil field means no constraint on that field; a pointer to
// an empty string is a real constraint (only records with an empty
// value match).
type FilterState struct {
	Model   *string `json:"model,omitempty"`
	Message *string `json:"message,omitempty"`
}

// FilterFromQuery derives the filter state from request query
// parameters. Only the presence of the parameter matters here; the
// value is taken verbatim so it can round-trip back into filter links.
func FilterFromQuery(q url.Values) FilterState {
	var st FilterState
	if vs, ok := q["model"]; ok && len(vs) > 0 {
		st.Model = &vs[0]
	}
	if vs, ok := q["message"]; ok && len(vs) > 0 {
		st.Message = &vs[0]
	}
	return st
}

// Empty reports whether no constraint is active.
func (f FilterState) Empty() bool {
	return f.Model == nil && f.Message == nil
}

// Match reports whether a record satisfies every active constraint.
// Matching is byte-exact and case-sensitive.
func (f FilterState) Match(e *ProjectError) bool {
	if f.Model != nil && e.Model != *f.Model {
		return false
	}
	if f.Message != nil && e.Message != *f.Message {
		return false
	}
	return true
}

// ApplyFilter returns the records satisfying the filter, preserving
// their relative order. An empty result is valid.
func ApplyFilter(records []*ProjectError, f FilterState) []*ProjectError {
	if f.Empty() {
		return records
	}
	out := make([]*ProjectError, 0, len(records))
	for _, e := range records {
		if f.Match(e) {
			out = append(out, e)
		}
	}
	return out
}
