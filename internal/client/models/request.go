package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var ErrIncompleteRequest = errors.New("request must have a url")

// Request is the transport-independent form of an outgoing call. It is what
// gets serialized into the unsent queue when delivery fails.
type Request struct {
	Method string      `json:"method"`
	URL    string      `json:"url"`
	Header http.Header `json:"header,omitempty"`
	Body   []byte      `json:"body,omitempty"`
}

// NewPostRequest builds a POST of payload to url.
func NewPostRequest(url string, payload []byte) *Request {
	return &Request{Method: http.MethodPost, URL: url, Body: payload}
}

// Validate normalises the method and checks required fields.
func (r *Request) Validate() error {
	if strings.TrimSpace(r.URL) == "" {
		return ErrIncompleteRequest
	}
	if r.Method == "" {
		r.Method = http.MethodPost
	}
	r.Method = strings.ToUpper(r.Method)
	return nil
}

// EncodeRequest serializes r for storage in the unsent queue.
func EncodeRequest(r *Request) ([]byte, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	b, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	return b, nil
}

// DecodeRequest is the inverse of EncodeRequest.
func DecodeRequest(b []byte) (*Request, error) {
	var r Request
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("decode request: %w", err)
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &r, nil
}
