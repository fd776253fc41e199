package errorlist

import (
	"net/url"
	"unicode/utf8"

	domain "github.com/pipescan-io/pipescan/internal/domain/projerrors"
)

// messageLinkMax: messages of this many characters or more render as
// plain text instead of a filter link. The bound is strict on purpose;
// a 99-character message links, a 100-character one does not.
const messageLinkMax = 100

// Cell is one rendered table cell. Href is empty for plain text.
type Cell struct {
	Text string `json:"text"`
	Href string `json:"href,omitempty"`
}

// DetailLine is one "key: value" line of the details cell.
type DetailLine struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// FormattedRow is the display-ready derivation of one error record.
type FormattedRow struct {
	Model     Cell         `json:"model"`
	Message   Cell         `json:"message"`
	Resource  *Cell        `json:"resource,omitempty"`
	Details   []DetailLine `json:"details,omitempty"`
	Traceback string       `json:"traceback,omitempty"`
}

// Formatter derives display rows from error records. It is a pure
// function of one record and is only ever applied to a single page's
// items, never to the whole collection.
type Formatter struct {
	// ResourceBase is the relative location of the resource-detail
	// route. The resource pk is appended as an escaped path segment.
	ResourceBase string
}

// Format builds the row for one record.
//
// The model cell always links back to the listing filtered on the
// literal model value. The message cell does the same, unless the
// message is too long to be useful as a query parameter, in which case
// it renders unlinked. The details cell leads with the related-resource
// link when the record carries one; the reserved keys still appear in
// the generic key/value lines below it. The traceback passes through
// verbatim.
func (f Formatter) Format(e *domain.ProjectError) FormattedRow {
	row := FormattedRow{
		Model:     Cell{Text: e.Model, Href: filterLink("model", e.Model)},
		Message:   Cell{Text: e.Message},
		Traceback: e.Traceback,
	}
	if utf8.RuneCountInString(e.Message) < messageLinkMax {
		row.Message.Href = filterLink("message", e.Message)
	}
	if ref, ok := e.Details.RelatedResource(); ok {
		base := f.ResourceBase
		if base == "" {
			base = "resources"
		}
		row.Resource = &Cell{Text: ref.Path, Href: base + "/" + url.PathEscape(ref.PK)}
	}
	for _, d := range e.Details {
		row.Details = append(row.Details, DetailLine{Key: d.Key, Value: d.Value})
	}
	return row
}

// filterLink encodes the raw field value as a query parameter, so
// following the link re-filters the listing to exactly that value.
func filterLink(field, value string) string {
	return "?" + url.Values{field: {value}}.Encode()
}
