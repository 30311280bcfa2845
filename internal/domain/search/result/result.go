package result

import (
	"encoding/json"
	"maps"
)

// Raw is the engine-native response as decoded from JSON. It is not
// interpreted beyond the read-only helpers below.
type Raw map[string]any

// Total is the hit count reported by the engine.
type Total struct {
	Value    int64
	Relation string // "eq" or "gte"; "eq" for engines reporting a plain number
}

// Took returns the server-side execution time in milliseconds.
func (r Raw) Took() int64 {
	n, _ := toInt(r["took"])
	return n
}

// TimedOut reports whether the engine hit its search timeout.
func (r Raw) TimedOut() bool {
	b, _ := r["timed_out"].(bool)
	return b
}

// Shards returns the _shards section.
func (r Raw) Shards() map[string]any { return object(r["_shards"]) }

// Total returns hits.total. Both the legacy number and the
// {"value", "relation"} object form are accepted.
func (r Raw) Total() Total {
	hits := object(r["hits"])
	switch t := hits["total"].(type) {
	case map[string]any:
		v, _ := toInt(t["value"])
		rel, _ := t["relation"].(string)
		if rel == "" {
			rel = "eq"
		}
		return Total{Value: v, Relation: rel}
	default:
		v, _ := toInt(t)
		return Total{Value: v, Relation: "eq"}
	}
}

// MaxScore returns hits.max_score. ok is false when the engine returned null.
func (r Raw) MaxScore() (score float64, ok bool) {
	return toFloat(object(r["hits"])["max_score"])
}

// Hits returns hits.hits.
func (r Raw) Hits() []Result {
	list, _ := object(r["hits"])["hits"].([]any)
	out := make([]Result, 0, len(list))
	for _, item := range list {
		h, ok := item.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, fromHit(h))
	}
	return out
}

// Aggregations returns the aggregations section.
func (r Raw) Aggregations() map[string]any { return object(r["aggregations"]) }

// Suggestions returns the suggest section.
func (r Raw) Suggestions() map[string]any { return object(r["suggest"]) }

// ScrollID returns the cursor for the next scroll page.
func (r Raw) ScrollID() string {
	s, _ := r["_scroll_id"].(string)
	return s
}

// Result is a single search hit.
type Result struct {
	id        string
	index     string
	docType   string
	score     float64
	hasScore  bool
	source    map[string]any
	highlight map[string][]string
	sort      []any
}

func fromHit(h map[string]any) Result {
	res := Result{
		source: object(h["_source"]),
		sort:   list(h["sort"]),
	}
	res.id, _ = h["_id"].(string)
	res.index, _ = h["_index"].(string)
	res.docType, _ = h["_type"].(string)
	res.score, res.hasScore = toFloat(h["_score"])

	if hl := object(h["highlight"]); len(hl) > 0 {
		res.highlight = make(map[string][]string, len(hl))
		for field, frags := range hl {
			for _, f := range list(frags) {
				if s, ok := f.(string); ok {
					res.highlight[field] = append(res.highlight[field], s)
				}
			}
		}
	}
	return res
}

// ID returns the document identifier.
func (r *Result) ID() string { return r.id }

// Index returns the index the hit came from.
func (r *Result) Index() string { return r.index }

// Type returns the document type (empty on typeless engines).
func (r *Result) Type() string { return r.docType }

// Score returns the relevance score. ok is false for unscored (sorted) hits.
func (r *Result) Score() (score float64, ok bool) { return r.score, r.hasScore }

// Source returns a copy of the stored document.
func (r *Result) Source() map[string]any { return maps.Clone(r.source) }

// Highlight returns highlighted fragments keyed by field.
func (r *Result) Highlight() map[string][]string { return r.highlight }

// Sort returns the sort values of the hit, used for search_after.
func (r *Result) Sort() []any { return r.sort }

func object(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func list(v any) []any {
	l, _ := v.([]any)
	return l
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func toInt(v any) (int64, bool) {
	switch n := v.(type) {
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	default:
		f, ok := toFloat(v)
		return int64(f), ok
	}
}
