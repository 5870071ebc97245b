package dispatch

import (
	"github.com/glasslab/go-glsdk/glsdk/service"
)

// Result is the outcome of a dispatched entry. Err is nil on success; transport failures are
// wrapped network errors or *service.HTTPError carrying the raw response body.
type Result struct {
	Body []byte
	Err  error
}

// Entry is a pending outbound call owned by the dispatch queue until it is handed to a transport
type Entry struct {
	Method      string
	APIKey      string
	Path        string
	ContentType string
	// Data is the request payload. Payloads implementing dtos.SessionBinder get the active
	// session ids bound when the entry leaves the queue.
	Data interface{}

	onSuccess func(body []byte) error
	result    chan Result
}

// NewEntry creates an entry ready to be enqueued
func NewEntry(apiKey string, method string, path string, contentType string, data interface{}) *Entry {
	return &Entry{
		Method:      method,
		APIKey:      apiKey,
		Path:        path,
		ContentType: contentType,
		Data:        data,
		result:      make(chan Result, 1),
	}
}

// OnSuccess registers a hook run with the response body after a successful delivery and before
// the next entry is dispatched. A hook error turns the result into a failure.
func (e *Entry) OnSuccess(hook func(body []byte) error) *Entry {
	e.onSuccess = hook
	return e
}

// Result returns the channel the entry outcome is delivered on. Exactly one Result is sent.
func (e *Entry) Result() <-chan Result {
	return e.result
}

func (e *Entry) request() *service.Request {
	return &service.Request{
		APIKey:      e.APIKey,
		Method:      e.Method,
		Path:        e.Path,
		ContentType: e.ContentType,
		Body:        e.Data,
	}
}
