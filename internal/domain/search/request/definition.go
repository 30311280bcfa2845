package request

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/kailas-cloud/esmodel/internal/domain/search/query"
)

// Kind selects which client operation consumes a definition.
type Kind string

const (
	// KindSearch is sent to the client's search operation.
	KindSearch Kind = "search"
	// KindScroll is sent to the client's scroll operation.
	KindScroll Kind = "scroll"
)

// Reserved definition keys. Every other key is an opaque engine parameter.
const (
	KeyIndex    = "index"
	KeyType     = "type"
	KeyBody     = "body"
	KeyQ        = "q"
	KeyScrollID = "scroll_id"
)

var reservedKeys = []string{KeyIndex, KeyType, KeyBody, KeyQ, KeyScrollID}

// IsReserved reports whether key is one of the reserved definition keys.
func IsReserved(key string) bool { return slices.Contains(reservedKeys, key) }

// Options are caller-supplied parameters. They override computed defaults
// (including index and type) and may carry any engine parameter.
// Keys with a nil value are ignored.
type Options map[string]any

// Merge applies opts on top of defaults key by key; the last write wins,
// so an explicit option always replaces a default. Nil option values are
// treated as not supplied. Values are deep-copied and neither input is modified.
func Merge(defaults map[string]any, opts Options) map[string]any {
	out := make(map[string]any, len(defaults)+len(opts))
	for k, v := range defaults {
		out[k] = query.Clone(v)
	}
	for k, v := range opts {
		if v == nil {
			continue
		}
		out[k] = query.Clone(v)
	}
	return out
}

// Definition describes one search or scroll call. It is never modified
// after construction; accessors return deep copies.
type Definition struct {
	kind   Kind
	params map[string]any
}

// Kind returns whether this is a search or a scroll definition.
func (d Definition) Kind() Kind { return d.kind }

// Index returns the target index. Multiple indices are comma-joined.
func (d Definition) Index() string { return stringValue(d.params[KeyIndex]) }

// Type returns the document type.
func (d Definition) Type() string { return stringValue(d.params[KeyType]) }

// Body returns the request body: a structured mapping or a raw JSON string.
func (d Definition) Body() (any, bool) {
	v, ok := d.params[KeyBody]
	return query.Clone(v), ok
}

// Q returns the free-text query.
func (d Definition) Q() (string, bool) {
	v, ok := d.params[KeyQ]
	return stringValue(v), ok
}

// ScrollID returns the scroll cursor.
func (d Definition) ScrollID() (string, bool) {
	v, ok := d.params[KeyScrollID]
	return stringValue(v), ok
}

// Has reports whether key is present.
func (d Definition) Has(key string) bool {
	_, ok := d.params[key]
	return ok
}

// Get returns the value stored under key.
func (d Definition) Get(key string) (any, bool) {
	v, ok := d.params[key]
	return query.Clone(v), ok
}

// Extra returns the pass-through parameters, i.e. every non-reserved key.
func (d Definition) Extra() map[string]any {
	out := make(map[string]any)
	for k, v := range d.params {
		if !IsReserved(k) {
			out[k] = query.Clone(v)
		}
	}
	return out
}

// Params returns the flattened definition handed to the client.
func (d Definition) Params() map[string]any { return query.CloneMap(d.params) }

// String returns a debug representation with keys in sorted order.
func (d Definition) String() string {
	keys := slices.Sorted(maps.Keys(d.params))
	parts := make([]string, 0, len(keys)+1)
	parts = append(parts, strings.ToUpper(string(d.kind)))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, d.params[k]))
	}
	return strings.Join(parts, " ")
}

func stringValue(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case []string:
		return strings.Join(s, ",")
	default:
		return fmt.Sprint(s)
	}
}
