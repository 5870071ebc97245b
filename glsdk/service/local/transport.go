// Package local contains the transport used while local logging is on. Requests never leave the
// process: they are appended to the local telemetry blob and answered with synthetic bodies.
package local

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/glasslab/go-glsdk/glsdk/constants"
	"github.com/glasslab/go-glsdk/glsdk/dtos"
	"github.com/glasslab/go-glsdk/glsdk/service"
	"github.com/glasslab/go-glsdk/glsdk/storage"
	"github.com/oklog/ulid/v2"
	"github.com/splitio/go-toolkit/v5/logging"
)

// LogLine is one request recorded in the local telemetry blob, one JSON object per line
type LogLine struct {
	Time   int64           `json:"time"`
	APIKey string          `json:"apiKey"`
	Method string          `json:"method"`
	Path   string          `json:"path"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// EchoTransport implements service.Transport without network I/O
type EchoTransport struct {
	storage storage.LocalStorage
	logger  logging.LoggerInterface
	now     func() time.Time
}

// NewEchoTransport creates an echo transport appending to the given local storage
func NewEchoTransport(localStorage storage.LocalStorage, logger logging.LoggerInterface) *EchoTransport {
	return &EchoTransport{storage: localStorage, logger: logger, now: time.Now}
}

// NewSessionID returns a locally generated session id
func NewSessionID() string {
	return "local-" + ulid.Make().String()
}

// Send records the request and answers it
func (t *EchoTransport) Send(ctx context.Context, req *service.Request) (*service.Response, error) {
	line := LogLine{
		Time:   t.now().UnixMilli(),
		APIKey: req.APIKey,
		Method: req.Method,
		Path:   req.Path,
	}
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encoding local log line: %w", err)
		}
		line.Data = data
	}

	raw, err := json.Marshal(line)
	if err != nil {
		return nil, err
	}
	if err := t.storage.Append(constants.LocalTelemetryKey, string(raw)+"\n"); err != nil {
		t.logger.Error("Error writing local telemetry:", err.Error())
		return nil, err
	}
	t.logger.Debug(fmt.Sprintf("[LOCAL] %s %s", req.Method, req.Path))

	body, err := t.responseFor(req.APIKey)
	if err != nil {
		return nil, err
	}
	return &service.Response{StatusCode: http.StatusOK, Body: body}, nil
}

func (t *EchoTransport) responseFor(apiKey string) ([]byte, error) {
	switch apiKey {
	case constants.StartSession:
		return json.Marshal(dtos.SessionStartedDTO{GameSessionID: NewSessionID()})
	case constants.StartPlaySession:
		return json.Marshal(dtos.PlaySessionStartedDTO{PlaySessionID: NewSessionID()})
	case constants.GetPlayerInfo:
		return json.Marshal(dtos.PlayerInfoDTO{})
	}
	return []byte(`{}`), nil
}
