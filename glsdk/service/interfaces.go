package service

import (
	"context"
	"fmt"
	"net/http"
)

// Request is a single call to the game services backend
type Request struct {
	APIKey      string
	Method      string
	Path        string
	ContentType string
	// Body is JSON encoded for JSON requests. Form requests expect url.Values or map[string]string.
	Body interface{}
}

// Response is the raw outcome of a request that reached the backend
type Response struct {
	StatusCode int
	Body       []byte
}

// Transport interface to be implemented by anything able to execute requests
type Transport interface {
	// Send executes the request. A non-nil error means the request never completed (network failure);
	// any completed request returns its response regardless of status code.
	Send(ctx context.Context, req *Request) (*Response, error)
}

// IsSuccess returns true for the status codes the backend uses for successful calls
func IsSuccess(statusCode int) bool {
	switch statusCode {
	case http.StatusOK, http.StatusNoContent, http.StatusNotModified:
		return true
	}
	return false
}

// HTTPError is returned for every request that completed with a non successful status code
type HTTPError struct {
	APIKey     string
	StatusCode int
	Body       []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s: status code %d - %s", e.APIKey, e.StatusCode, string(e.Body))
}

// Do sends the request and maps the outcome: the body on success, an error otherwise.
// Network failures are wrapped, unsuccessful status codes are returned as *HTTPError.
func Do(ctx context.Context, transport Transport, req *Request) ([]byte, error) {
	resp, err := transport.Send(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", req.APIKey, err)
	}
	if !IsSuccess(resp.StatusCode) {
		return resp.Body, &HTTPError{APIKey: req.APIKey, StatusCode: resp.StatusCode, Body: resp.Body}
	}
	return resp.Body, nil
}
