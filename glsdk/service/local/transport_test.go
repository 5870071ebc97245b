package local

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/glasslab/go-glsdk/glsdk/constants"
	"github.com/glasslab/go-glsdk/glsdk/dtos"
	"github.com/glasslab/go-glsdk/glsdk/service"
	"github.com/glasslab/go-glsdk/glsdk/storage/mutexmap"
	"github.com/splitio/go-toolkit/v5/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEchoTransportRecordsRequests(t *testing.T) {
	localStorage := mutexmap.NewMMLocalStorage()
	transport := NewEchoTransport(localStorage, logging.NewLogger(&logging.LoggerOptions{}))

	event := &dtos.TelemEventDTO{EventName: "A", GameSessionEventOrder: 1}
	event.BindSessions("", "")
	resp, err := transport.Send(context.Background(), &service.Request{
		APIKey: constants.SaveTelemEvent,
		Method: http.MethodPost,
		Path:   "/api/v2/data/events",
		Body:   event,
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	_, err = transport.Send(context.Background(), &service.Request{
		APIKey: constants.GetSaveGame,
		Method: http.MethodGet,
		Path:   "/api/v2/data/game/TEST",
	})
	require.NoError(t, err)

	blob, ok, err := localStorage.Get(constants.LocalTelemetryKey)
	require.NoError(t, err)
	require.True(t, ok)

	var lines []LogLine
	scanner := bufio.NewScanner(strings.NewReader(blob))
	for scanner.Scan() {
		var line LogLine
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &line))
		lines = append(lines, line)
	}
	require.Len(t, lines, 2)
	assert.Equal(t, constants.SaveTelemEvent, lines[0].APIKey)
	assert.Contains(t, string(lines[0].Data), `"eventName":"A"`)
	assert.Equal(t, "/api/v2/data/game/TEST", lines[1].Path)
	assert.Empty(t, lines[1].Data)
}

func TestEchoTransportSynthesizesSessions(t *testing.T) {
	transport := NewEchoTransport(mutexmap.NewMMLocalStorage(), logging.NewLogger(&logging.LoggerOptions{}))

	resp, err := transport.Send(context.Background(), &service.Request{APIKey: constants.StartSession, Body: &dtos.StartSessionDTO{}})
	require.NoError(t, err)
	var started dtos.SessionStartedDTO
	require.NoError(t, json.Unmarshal(resp.Body, &started))
	assert.True(t, strings.HasPrefix(started.GameSessionID, "local-"))

	resp, err = transport.Send(context.Background(), &service.Request{APIKey: constants.StartPlaySession})
	require.NoError(t, err)
	var play dtos.PlaySessionStartedDTO
	require.NoError(t, json.Unmarshal(resp.Body, &play))
	assert.NotEqual(t, started.GameSessionID, play.PlaySessionID)

	resp, err = transport.Send(context.Background(), &service.Request{APIKey: constants.GetPlayerInfo})
	require.NoError(t, err)
	assert.JSONEq(t, `{"totalTimePlayed":0}`, string(resp.Body))
}

func TestEchoTransportFailsOnClosedStorage(t *testing.T) {
	localStorage := mutexmap.NewMMLocalStorage()
	require.NoError(t, localStorage.Close())
	transport := NewEchoTransport(localStorage, logging.NewLogger(&logging.LoggerOptions{}))

	_, err := transport.Send(context.Background(), &service.Request{APIKey: constants.Connect})
	assert.Error(t, err)
}
