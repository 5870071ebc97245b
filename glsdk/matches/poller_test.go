package matches

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/glasslab/go-glsdk/glsdk/conf"
	"github.com/glasslab/go-glsdk/glsdk/service"
	"github.com/glasslab/go-glsdk/glsdk/session"
	"github.com/glasslab/go-glsdk/glsdk/storage/mutexmap"
	"github.com/splitio/go-toolkit/v5/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTransport struct {
	status int
	body   string
	paths  []string
}

func (f *fakeTransport) Send(ctx context.Context, req *service.Request) (*service.Response, error) {
	f.paths = append(f.paths, req.Path)
	return &service.Response{StatusCode: f.status, Body: []byte(f.body)}, nil
}

func newTestPoller(transport service.Transport) (*Poller, *session.Tracker) {
	options := conf.DefaultOptions()
	options.GameID = "AA-1"
	tracker := session.NewTracker()
	logger := logging.NewLogger(&logging.LoggerOptions{})
	return NewPoller(transport, mutexmap.NewMMMatchStorage(), tracker, conf.NewStore(options), logger), tracker
}

func TestPollSkippedWhenUnauthenticated(t *testing.T) {
	transport := &fakeTransport{status: http.StatusOK, body: `{}`}
	poller, _ := newTestPoller(transport)

	_, err := poller.Poll(context.Background())
	assert.True(t, errors.Is(err, ErrNotAuthenticated))
	assert.Empty(t, transport.paths)
}

func TestPollReplacesSnapshot(t *testing.T) {
	transport := &fakeTransport{
		status: http.StatusOK,
		body:   `{"m1":{"id":"m1","players":["p1","p2"],"status":"active","turns":[]},"m2":{"players":["p1"],"status":"closed","turns":[{"x":1}]}}`,
	}
	poller, tracker := newTestPoller(transport)
	tracker.SetAuthenticated(true)

	_, err := poller.Poll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"/api/v2/data/game/AA-1/matches"}, transport.paths)
	assert.Equal(t, []string{"m1", "m2"}, poller.MatchIDs())

	m2, err := poller.Match("m2")
	require.NoError(t, err)
	assert.Equal(t, "m2", m2.ID)
	assert.Len(t, m2.Turns, 1)

	transport.body = `{"m2":{"id":"m2","players":["p1"],"status":"closed","turns":[]}}`
	_, err = poller.Poll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"m2"}, poller.MatchIDs())

	_, err = poller.Match("m1")
	assert.True(t, errors.Is(err, ErrMatchNotFound))
}

func TestPollFailureKeepsSnapshot(t *testing.T) {
	transport := &fakeTransport{status: http.StatusOK, body: `{"m1":{"id":"m1","status":"active"}}`}
	poller, tracker := newTestPoller(transport)
	tracker.SetAuthenticated(true)

	_, err := poller.Poll(context.Background())
	require.NoError(t, err)

	transport.status = http.StatusInternalServerError
	transport.body = `{"error":"down"}`
	body, err := poller.Poll(context.Background())
	var httpErr *service.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, `{"error":"down"}`, string(body))
	assert.Equal(t, []string{"m1"}, poller.MatchIDs())

	transport.status = http.StatusOK
	transport.body = `not json`
	_, err = poller.Poll(context.Background())
	assert.Error(t, err)
	assert.Len(t, poller.Matches(), 1)
}

func TestReadsRequireAuthentication(t *testing.T) {
	transport := &fakeTransport{status: http.StatusOK, body: `{"m1":{"id":"m1","status":"active"}}`}
	poller, tracker := newTestPoller(transport)
	tracker.SetAuthenticated(true)
	_, err := poller.Poll(context.Background())
	require.NoError(t, err)

	tracker.SetAuthenticated(false)
	assert.Empty(t, poller.MatchIDs())
	assert.Empty(t, poller.Matches())
	_, err = poller.Match("m1")
	assert.True(t, errors.Is(err, ErrMatchNotFound))

	tracker.SetAuthenticated(true)
	poller.Reset()
	assert.Empty(t, poller.MatchIDs())
}
