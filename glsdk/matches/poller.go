// Package matches keeps the client side snapshot of the player's asynchronous multiplayer matches
package matches

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/glasslab/go-glsdk/glsdk/conf"
	"github.com/glasslab/go-glsdk/glsdk/constants"
	"github.com/glasslab/go-glsdk/glsdk/dtos"
	"github.com/glasslab/go-glsdk/glsdk/service"
	"github.com/glasslab/go-glsdk/glsdk/session"
	"github.com/glasslab/go-glsdk/glsdk/storage"
	"github.com/splitio/go-toolkit/v5/logging"
)

// ErrMatchNotFound is returned when reading a match that is not in the snapshot, or when
// the player is not authenticated
var ErrMatchNotFound = errors.New("match not found")

// ErrNotAuthenticated is returned by Poll when there is no authenticated player
var ErrNotAuthenticated = errors.New("player is not authenticated")

// Path returns the match list path for a game
func Path(gameID string) string {
	return fmt.Sprintf("/api/v2/data/game/%s/matches", url.PathEscape(gameID))
}

// Poller fetches the match list and keeps the latest successful snapshot
type Poller struct {
	transport service.Transport
	storage   storage.MatchStorage
	tracker   *session.Tracker
	options   *conf.Store
	logger    logging.LoggerInterface
}

// NewPoller creates a poller writing into the given match storage
func NewPoller(
	transport service.Transport,
	matchStorage storage.MatchStorage,
	tracker *session.Tracker,
	options *conf.Store,
	logger logging.LoggerInterface,
) *Poller {
	return &Poller{
		transport: transport,
		storage:   matchStorage,
		tracker:   tracker,
		options:   options,
		logger:    logger,
	}
}

// Poll fetches the match list. On success the snapshot is replaced as a whole and the raw
// response body is returned; on failure the previous snapshot is kept.
func (p *Poller) Poll(ctx context.Context) ([]byte, error) {
	if !p.tracker.IsAuthenticated() {
		return nil, ErrNotAuthenticated
	}

	body, err := service.Do(ctx, p.transport, &service.Request{
		APIKey: constants.PollMatches,
		Method: http.MethodGet,
		Path:   Path(p.options.Get().GameID),
	})
	if err != nil {
		return body, err
	}

	var polled map[string]dtos.Match
	if err := json.Unmarshal(body, &polled); err != nil {
		return body, fmt.Errorf("%s: decoding matches: %w", constants.PollMatches, err)
	}
	for id, match := range polled {
		if match.ID == "" {
			match.ID = id
			polled[id] = match
		}
	}

	p.storage.ReplaceAll(polled)
	p.logger.Debug(fmt.Sprintf("Match snapshot updated with %d matches", len(polled)))
	return body, nil
}

// Matches returns every match of the snapshot. Empty when not authenticated.
func (p *Poller) Matches() map[string]dtos.Match {
	if !p.tracker.IsAuthenticated() {
		return map[string]dtos.Match{}
	}
	return p.storage.All()
}

// MatchIDs returns the sorted ids of the snapshot. Empty when not authenticated.
func (p *Poller) MatchIDs() []string {
	if !p.tracker.IsAuthenticated() {
		return []string{}
	}
	return p.storage.IDs()
}

// Match returns a single match
func (p *Poller) Match(id string) (dtos.Match, error) {
	if !p.tracker.IsAuthenticated() {
		return dtos.Match{}, ErrMatchNotFound
	}
	match, ok := p.storage.Get(id)
	if !ok {
		return dtos.Match{}, fmt.Errorf("%w: %s", ErrMatchNotFound, id)
	}
	return match, nil
}

// Reset drops the snapshot, used on logout
func (p *Poller) Reset() {
	p.storage.Clear()
}
