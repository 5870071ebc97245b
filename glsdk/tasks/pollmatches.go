package tasks

import (
	"context"
	"errors"
	"time"

	"github.com/glasslab/go-glsdk/glsdk/matches"
	"github.com/splitio/go-toolkit/v5/logging"
)

// NewPollMatchesTask creates a task that refreshes the match snapshot on every period while a
// player is authenticated
func NewPollMatchesTask(
	poller *matches.Poller,
	period time.Duration,
	logger logging.LoggerInterface,
) *AsyncTask {
	poll := func(logger logging.LoggerInterface) error {
		_, err := poller.Poll(context.Background())
		if errors.Is(err, matches.ErrNotAuthenticated) {
			return nil
		}
		return err
	}

	return NewAsyncTask("PollMatches", poll, period, nil, logger)
}
