package client

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/glasslab/go-glsdk/glsdk/constants"
	"github.com/glasslab/go-glsdk/glsdk/service"
	"github.com/glasslab/go-glsdk/glsdk/storage"
	"github.com/splitio/go-toolkit/v5/logging"
)

// logDisplay is the persisted switch that promotes request/response traces to Info level
type logDisplay struct {
	enabled atomic.Bool
	storage storage.LocalStorage
}

func newLogDisplay(localStorage storage.LocalStorage, logger logging.LoggerInterface) *logDisplay {
	display := &logDisplay{storage: localStorage}
	value, ok, err := localStorage.Get(constants.DisplayLogsKey)
	if err != nil {
		logger.Warning("Could not read the display logs flag:", err.Error())
		return display
	}
	if ok {
		// anything that is not a number means hidden
		flag, err := strconv.Atoi(value)
		display.enabled.Store(err == nil && flag != 0)
	}
	return display
}

func (d *logDisplay) set(enabled bool) error {
	d.enabled.Store(enabled)
	value := "0"
	if enabled {
		value = "1"
	}
	return d.storage.Set(constants.DisplayLogsKey, value)
}

func (d *logDisplay) isEnabled() bool {
	return d.enabled.Load()
}

// loggingTransport traces every request going through the wrapped transport
type loggingTransport struct {
	next    service.Transport
	display *logDisplay
	logger  logging.LoggerInterface
}

func (t *loggingTransport) log(msg string) {
	if t.display.isEnabled() {
		t.logger.Info(msg)
		return
	}
	t.logger.Debug(msg)
}

func (t *loggingTransport) Send(ctx context.Context, req *service.Request) (*service.Response, error) {
	t.log(fmt.Sprintf("GlassLabSDK request - apiKey: %s, %s %s", req.APIKey, req.Method, req.Path))
	resp, err := t.next.Send(ctx, req)
	if err != nil {
		t.log(fmt.Sprintf("GlassLabSDK request failed - apiKey: %s, error: %s", req.APIKey, err.Error()))
		return nil, err
	}
	t.log(fmt.Sprintf("GlassLabSDK response - apiKey: %s, status: %d, responseText: %s", req.APIKey, resp.StatusCode, string(resp.Body)))
	return resp, nil
}
