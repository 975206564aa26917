package core

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// BusyMessage is the payload message of the synthetic response returned while
// the upstream cooldown is active.
const BusyMessage = "Server is busy"

// RequestConfig describes one outbound call to the catalog API.
type RequestConfig struct {
	Method string
	URL    string
	Params url.Values
	Header http.Header
	Body   []byte
}

// Response is a fully read upstream response. It is safe to cache and share.
type Response struct {
	StatusCode int         `json:"status_code"`
	Header     http.Header `json:"header,omitempty"`
	Body       []byte      `json:"body,omitempty"`

	// Busy marks the synthetic result produced while a cooldown is active.
	Busy bool `json:"-"`
	// RetryAfter is the remaining cooldown for a busy result.
	RetryAfter time.Duration `json:"-"`
	// FromCache is true when the response was served by the response cache.
	FromCache bool `json:"-"`
}

// BusyResponse builds the synthetic result for a short-circuited call.
func BusyResponse(retryAfter time.Duration) *Response {
	body, _ := json.Marshal(map[string]string{"message": BusyMessage})
	return &Response{
		StatusCode: http.StatusTooManyRequests,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       body,
		Busy:       true,
		RetryAfter: retryAfter,
	}
}

// Clone returns a deep copy of r.
func (r *Response) Clone() *Response {
	if r == nil {
		return nil
	}
	out := *r
	out.Header = r.Header.Clone()
	if r.Body != nil {
		out.Body = append([]byte(nil), r.Body...)
	}
	return &out
}

// Decode unmarshals the JSON body into v.
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to decode upstream response: %w", err)
	}
	return nil
}

// UpstreamError is returned for upstream responses outside the 2xx range.
type UpstreamError struct {
	StatusCode int
	Response   *Response
}

func (e *UpstreamError) Error() string {
	msg := upstreamMessage(e.Response)
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("upstream request failed with status %d: %s", e.StatusCode, msg)
}

// Message returns the upstream error message when the body carries one.
func (e *UpstreamError) Message() string {
	return upstreamMessage(e.Response)
}

// upstreamMessage reads the {"error":{"message":...}} shape used by the catalog API,
// falling back to a top-level message field.
func upstreamMessage(resp *Response) string {
	if resp == nil || len(resp.Body) == 0 {
		return ""
	}
	var body struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return ""
	}
	if len(body.Error) > 0 {
		var nested struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(body.Error, &nested); err == nil && nested.Message != "" {
			return nested.Message
		}
		var plain string
		if err := json.Unmarshal(body.Error, &plain); err == nil && plain != "" {
			return plain
		}
	}
	return body.Message
}
