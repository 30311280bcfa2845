package db

import (
	"encoding/json"
	"errors"
	"strconv"
)

// Sentinel errors for engine requests.
var (
	ErrScrollIDRequired = errors.New("db: scroll_id is required")
	ErrEncodeBody       = errors.New("db: cannot encode request body")
)

// Op constants name the engine endpoint for error context.
const (
	OpSearch      = "search"
	OpScroll      = "scroll"
	OpClearScroll = "clear_scroll"
	OpInfo        = "info"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

// ResponseError is a non-2xx reply from the engine.
type ResponseError struct {
	Status int
	Type   string // error.type from the engine body, if any
	Reason string // error.reason from the engine body, if any
	Body   []byte
}

// NewResponseError parses the engine error body when it has the usual
// {"error": {"type", "reason"}} shape.
func NewResponseError(status int, body []byte) *ResponseError {
	e := &ResponseError{Status: status, Body: body}

	var parsed struct {
		Error json.RawMessage `json:"error"`
	}
	if json.Unmarshal(body, &parsed) != nil || len(parsed.Error) == 0 {
		return e
	}

	var detail struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	}
	if json.Unmarshal(parsed.Error, &detail) == nil {
		e.Type, e.Reason = detail.Type, detail.Reason
		return e
	}

	// Very old engines reply with a plain string.
	var s string
	if json.Unmarshal(parsed.Error, &s) == nil {
		e.Reason = s
	}
	return e
}

func (e *ResponseError) Error() string {
	msg := "engine returned status " + strconv.Itoa(e.Status)
	switch {
	case e.Type != "" && e.Reason != "":
		return msg + ": " + e.Type + ": " + e.Reason
	case e.Reason != "":
		return msg + ": " + e.Reason
	case e.Type != "":
		return msg + ": " + e.Type
	}
	return msg
}
