package db

import (
	"errors"
	"io"
	"net/http"
	"strings"
)

// fakeTransport records requests and replies with a canned response.
type fakeTransport struct {
	requests []*http.Request
	bodies   []string
	status   int
	reply    string
	err      error
}

func (f *fakeTransport) Perform(req *http.Request) (*http.Response, error) {
	f.requests = append(f.requests, req)
	body := ""
	if req.Body != nil {
		b, _ := io.ReadAll(req.Body)
		body = string(b)
	}
	f.bodies = append(f.bodies, body)

	if f.err != nil {
		return nil, f.err
	}
	status := f.status
	if status == 0 {
		status = http.StatusOK
	}
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": {"application/json"}},
		Body:       io.NopCloser(strings.NewReader(f.reply)),
	}, nil
}

func (f *fakeTransport) last() (*http.Request, string) {
	if len(f.requests) == 0 {
		return nil, ""
	}
	n := len(f.requests) - 1
	return f.requests[n], f.bodies[n]
}

var errConnRefused = errors.New("dial tcp 127.0.0.1:9200: connection refused")
