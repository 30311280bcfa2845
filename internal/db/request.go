package db

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kailas-cloud/esmodel/internal/domain/search/request"
)

const (
	pathSearch = "_search"
	pathScroll = "/_search/scroll"
	keyScroll  = "scroll"
)

// newSearchRequest renders a flattened search definition as an HTTP request:
// POST /{index}[/{type}]/_search with q and extras as URL parameters.
func newSearchRequest(ctx context.Context, params map[string]any) (*http.Request, error) {
	var segments []string
	index := FormatValue(params[request.KeyIndex])
	docType := FormatValue(params[request.KeyType])
	if index == "" && docType != "" {
		index = "_all"
	}
	if index != "" {
		segments = append(segments, escapeNames(index))
	}
	if docType != "" {
		segments = append(segments, escapeNames(docType))
	}
	segments = append(segments, pathSearch)
	path := "/" + strings.Join(segments, "/")

	query := url.Values{}
	for k, v := range params {
		switch k {
		case request.KeyIndex, request.KeyType, request.KeyBody:
			continue
		}
		query.Set(k, FormatValue(v))
	}

	body, hasBody := params[request.KeyBody]
	if !hasBody {
		return newRequest(ctx, http.MethodGet, path, query, nil)
	}
	payload, err := encodeBody(body)
	if err != nil {
		return nil, err
	}
	return newRequest(ctx, http.MethodPost, path, query, payload)
}

// newScrollRequest renders a flattened scroll definition as
// POST /_search/scroll {"scroll_id": ..., "scroll": ...}. The scroll API is
// not index-scoped, so index and type are not sent.
func newScrollRequest(ctx context.Context, params map[string]any) (*http.Request, error) {
	query := url.Values{}
	for k, v := range params {
		switch k {
		case request.KeyIndex, request.KeyType, request.KeyBody, request.KeyScrollID, keyScroll:
			continue
		}
		query.Set(k, FormatValue(v))
	}

	if body, ok := params[request.KeyBody]; ok {
		payload, err := encodeBody(body)
		if err != nil {
			return nil, err
		}
		return newRequest(ctx, http.MethodPost, pathScroll, query, payload)
	}

	scrollID := FormatValue(params[request.KeyScrollID])
	if scrollID == "" {
		return nil, ErrScrollIDRequired
	}
	body := map[string]string{request.KeyScrollID: scrollID}
	if v, ok := params[keyScroll]; ok {
		body[keyScroll] = FormatValue(v)
	}
	payload, err := encodeBody(body)
	if err != nil {
		return nil, err
	}
	return newRequest(ctx, http.MethodPost, pathScroll, query, payload)
}

// escapeNames escapes a comma-separated list of index or type names,
// keeping the separators and wildcards readable.
func escapeNames(s string) string {
	names := strings.Split(s, ",")
	for i, n := range names {
		names[i] = strings.ReplaceAll(url.PathEscape(n), "%2A", "*")
	}
	return strings.Join(names, ",")
}

func newClearScrollRequest(ctx context.Context, scrollIDs []string) (*http.Request, error) {
	payload, err := encodeBody(map[string][]string{request.KeyScrollID: scrollIDs})
	if err != nil {
		return nil, err
	}
	return newRequest(ctx, http.MethodDelete, pathScroll, nil, payload)
}

func newRequest(ctx context.Context, method, path string, query url.Values, body []byte) (*http.Request, error) {
	target := path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, r)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// encodeBody sends strings and raw bytes verbatim; anything else is JSON-encoded.
func encodeBody(body any) ([]byte, error) {
	switch b := body.(type) {
	case string:
		return []byte(b), nil
	case []byte:
		return b, nil
	case json.RawMessage:
		return b, nil
	default:
		payload, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrEncodeBody, err)
		}
		return payload, nil
	}
}

// FormatValue renders an option value as an engine URL parameter.
// Lists are comma-joined and durations use engine time units (5m, 30s, 250ms).
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []string:
		return strings.Join(val, ",")
	case []any:
		parts := make([]string, len(val))
		for i, item := range val {
			parts[i] = FormatValue(item)
		}
		return strings.Join(parts, ",")
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case time.Duration:
		return FormatDuration(val)
	case fmt.Stringer:
		return val.String()
	case map[string]any:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	default:
		return fmt.Sprint(val)
	}
}

// FormatDuration renders d in the largest whole engine time unit.
func FormatDuration(d time.Duration) string {
	switch {
	case d == 0:
		return "0s"
	case d%time.Hour == 0:
		return strconv.FormatInt(int64(d/time.Hour), 10) + "h"
	case d%time.Minute == 0:
		return strconv.FormatInt(int64(d/time.Minute), 10) + "m"
	case d%time.Second == 0:
		return strconv.FormatInt(int64(d/time.Second), 10) + "s"
	case d%time.Millisecond == 0:
		return strconv.FormatInt(int64(d/time.Millisecond), 10) + "ms"
	default:
		return strconv.FormatInt(int64(d/time.Microsecond), 10) + "micros"
	}
}
