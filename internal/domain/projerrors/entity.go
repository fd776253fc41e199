package projerrors

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Reserved detail keys. When a record carries both, the error points at
// the codebase resource it originated from.
const (
	DetailKeyResourcePK   = "codebase_resource_pk"
	DetailKeyResourcePath = "codebase_resource_path"
)

// Detail is one key/value entry of an error's details mapping.
type Detail struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Details keeps the producer's insertion order, which a plain Go map
// would lose. It marshals to and from a JSON object.
type Details []Detail

// Get returns the value for key and whether it is present. The first
// occurrence wins when a producer sends duplicate keys.
func (d Details) Get(key string) (string, bool) {
	for _, e := range d {
		if e.Key == key {
			return e.Value, true
		}
	}
	return "", false
}

// ResourceRef identifies the codebase resource a record relates to.
// PK goes into the resource-detail URL; Path is display text only.
type ResourceRef struct {
	PK   string `json:"pk"`
	Path string `json:"path"`
}

// RelatedResource reports the resource reference carried in the
// reserved detail keys. A record with only one of the two keys has no
// usable reference and is treated as if it had none.
func (d Details) RelatedResource() (ResourceRef, bool) {
	pk, okPK := d.Get(DetailKeyResourcePK)
	path, okPath := d.Get(DetailKeyResourcePath)
	if !okPK || !okPath {
		return ResourceRef{}, false
	}
	return ResourceRef{PK: pk, Path: path}, true
}

// MarshalJSON writes the details as a JSON object in insertion order.
func (d Details) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range d {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(e.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object token by token so the document
// order of the keys survives. Non-string values keep their raw JSON
// text, which is what the listing displays anyway.
func (d *Details) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*d = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("details: expected JSON object, got %v", tok)
	}
	var out Details
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("details: expected object key, got %v", keyTok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		var s string
		if json.Unmarshal(raw, &s) != nil {
			s = string(raw)
		}
		out = append(out, Detail{Key: key, Value: s})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*d = out
	return nil
}

// ProjectError is one error reported by a pipeline run. The listing
// only ever reads records; they are never mutated after creation.
type ProjectError struct {
	ID        int64     `json:"id"`
	TenantID  string    `json:"tenant_id"`
	ProjectID string    `json:"project_id"`
	Model     string    `json:"model"`
	Message   string    `json:"message"`
	Details   Details   `json:"details,omitempty"`
	Traceback string    `json:"traceback,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
