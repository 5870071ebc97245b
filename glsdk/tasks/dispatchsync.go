package tasks

import (
	"time"

	"github.com/glasslab/go-glsdk/glsdk/dispatch"
	"github.com/splitio/go-toolkit/v5/logging"
)

// NewDispatchTask creates a task that drains the dispatch queue on every period
func NewDispatchTask(
	dispatcher *dispatch.Dispatcher,
	period time.Duration,
	logger logging.LoggerInterface,
) *AsyncTask {
	tick := func(logger logging.LoggerInterface) error {
		dispatcher.Tick()
		return nil
	}

	return NewAsyncTask("DispatchQueue", tick, period, nil, logger)
}
