package tasks

import (
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/glasslab/go-glsdk/glsdk/conf"
	"github.com/glasslab/go-glsdk/glsdk/constants"
	"github.com/glasslab/go-glsdk/glsdk/dispatch"
	"github.com/glasslab/go-glsdk/glsdk/dtos"
	"github.com/glasslab/go-glsdk/glsdk/session"
	"github.com/splitio/go-toolkit/v5/logging"
)

// TotalTimePlayedPath returns the path the accumulated time played is pushed to
func TotalTimePlayedPath(gameID string) string {
	return fmt.Sprintf("/api/v2/data/game/%s/totalTimePlayed", url.PathEscape(gameID))
}

type timePlayedClock struct {
	mutex sync.Mutex
	last  time.Time
	now   func() time.Time
}

// elapsed returns the time since the previous call
func (c *timePlayedClock) elapsed() time.Duration {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	now := c.now()
	elapsed := now.Sub(c.last)
	c.last = now
	return elapsed
}

func pushTimePlayed(
	clock *timePlayedClock,
	tracker *session.Tracker,
	dispatcher *dispatch.Dispatcher,
	options *conf.Store,
	logger logging.LoggerInterface,
) error {
	elapsed := clock.elapsed()
	if !tracker.IsAuthenticated() {
		return nil
	}

	total := tracker.AddTimePlayed(elapsed)
	logger.Debug(fmt.Sprintf("Total time played: %dms", total))
	dispatcher.Enqueue(dispatch.NewEntry(
		constants.SendTotalTimePlayed,
		http.MethodPost,
		TotalTimePlayedPath(options.Get().GameID),
		constants.ContentTypeJSON,
		&dtos.TotalTimePlayedDTO{SetTime: total},
	))
	return nil
}

// NewTimePlayedTask creates a task that accumulates the elapsed play time of the authenticated
// player and queues it for the backend on every period. Time spent unauthenticated is not counted.
func NewTimePlayedTask(
	tracker *session.Tracker,
	dispatcher *dispatch.Dispatcher,
	options *conf.Store,
	period time.Duration,
	logger logging.LoggerInterface,
) *AsyncTask {
	clock := &timePlayedClock{last: time.Now(), now: time.Now}
	push := func(logger logging.LoggerInterface) error {
		return pushTimePlayed(clock, tracker, dispatcher, options, logger)
	}

	return NewAsyncTask("SendTotalTimePlayed", push, period, nil, logger)
}
