package query

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode"
)

// Kind is the classification of a search input.
type Kind string

// Input kinds, in classification priority order.
const (
	// Structured is a pre-built query mapping sent as the request body.
	Structured Kind = "structured"
	// RawJSON is an opaque JSON-encoded body passed through unparsed.
	RawJSON Kind = "raw_json"
	// FreeText is a simple query-string expression sent as q.
	FreeText Kind = "free_text"
)

// Mapper is implemented by query objects that can render themselves
// as a structured query mapping.
type Mapper interface {
	QueryMap() map[string]any
}

// Input is a classified search input. Exactly one of the kinds applies.
type Input struct {
	kind    Kind
	payload map[string]any
	text    string
}

// Classify assigns v to exactly one kind: structured mapping first,
// then JSON-looking text, then free text. It never fails.
//
// Any map keyed by strings counts as a structured mapping, including named
// map types. The payload is deep-copied, so later changes to v are not seen.
func Classify(v any) Input {
	switch in := v.(type) {
	case Mapper:
		return Input{kind: Structured, payload: CloneMap(in.QueryMap())}
	case string:
		return classifyText(in)
	case json.RawMessage:
		return classifyText(string(in))
	case []byte:
		return classifyText(string(in))
	case nil:
		return Input{kind: FreeText}
	}
	if m, ok := AsMap(v); ok {
		if m == nil {
			m = map[string]any{}
		}
		return Input{kind: Structured, payload: m}
	}
	return Input{kind: FreeText, text: fmt.Sprint(v)}
}

func classifyText(s string) Input {
	if LooksLikeJSON(s) {
		return Input{kind: RawJSON, text: s}
	}
	return Input{kind: FreeText, text: s}
}

// LooksLikeJSON reports whether the first non-whitespace character of s is '{'.
// The content is not validated.
func LooksLikeJSON(s string) bool {
	return strings.HasPrefix(strings.TrimLeftFunc(s, unicode.IsSpace), "{")
}

// Kind returns the input classification.
func (i Input) Kind() Kind { return i.kind }

// Payload returns a deep copy of the structured mapping (nil for text kinds).
func (i Input) Payload() map[string]any { return CloneMap(i.payload) }

// Text returns the raw JSON body or the free-text query (empty for structured).
func (i Input) Text() string { return i.text }

// IsBody reports whether the input is sent as the request body.
func (i Input) IsBody() bool { return i.kind == Structured || i.kind == RawJSON }

// Value returns what goes into the request definition: the mapping for
// structured input, the verbatim string otherwise.
func (i Input) Value() any {
	if i.kind == Structured {
		return i.Payload()
	}
	return i.text
}
