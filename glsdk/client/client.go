package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/glasslab/go-glsdk/glsdk/conf"
	"github.com/glasslab/go-glsdk/glsdk/constants"
	"github.com/glasslab/go-glsdk/glsdk/dispatch"
	"github.com/glasslab/go-glsdk/glsdk/dtos"
	"github.com/glasslab/go-glsdk/glsdk/matches"
	"github.com/glasslab/go-glsdk/glsdk/service"
	"github.com/glasslab/go-glsdk/glsdk/session"
	"github.com/glasslab/go-glsdk/glsdk/storage"
	"github.com/splitio/go-toolkit/v5/logging"
)

// Client is the game services SDK client. Reads and authentication calls go straight to the
// backend and block until it answers. Session scoped writes are queued and delivered in order;
// their outcome is published on the returned channel.
type Client struct {
	cfg          *conf.SdkConfig
	logger       logging.LoggerInterface
	options      *conf.Store
	tracker      *session.Tracker
	dispatcher   *dispatch.Dispatcher
	remote       service.Transport
	local        service.Transport
	localStorage storage.LocalStorage
	poller       *matches.Poller
	tasks        sdkTasks
	display      *logDisplay
	validator    inputValidation
	sequence     sync.Mutex // keeps event order assignment and queuing together
	status       atomic.Value
	now          func() time.Time
}

// switchingTransport sends through the local echo transport while local logging is on
type switchingTransport struct {
	client *Client
}

func (s *switchingTransport) Send(ctx context.Context, req *service.Request) (*service.Response, error) {
	return s.client.transport().Send(ctx, req)
}

func (c *Client) transport() service.Transport {
	if c.options.Get().LocalLogging {
		return c.local
	}
	return c.remote
}

func (c *Client) gamePath(suffix string) string {
	return "/api/v2/data/game/" + url.PathEscape(c.options.Get().GameID) + suffix
}

func (c *Client) timestamp() int64 {
	return c.now().UnixMilli()
}

// direct performs a request right away, bypassing the dispatch queue
func (c *Client) direct(ctx context.Context, apiKey string, method string, path string, contentType string, body interface{}) ([]byte, error) {
	if c.IsDestroyed() {
		return nil, ErrDestroyed
	}
	return service.Do(ctx, c.transport(), &service.Request{
		APIKey:      apiKey,
		Method:      method,
		Path:        path,
		ContentType: contentType,
		Body:        body,
	})
}

func failed(err error) <-chan dispatch.Result {
	result := make(chan dispatch.Result, 1)
	result <- dispatch.Result{Err: err}
	return result
}

func (c *Client) push(entry *dispatch.Entry) <-chan dispatch.Result {
	c.dispatcher.Enqueue(entry)
	return entry.Result()
}

// drainLocal delivers the queue right away in local logging mode, nothing has to wait for the backend
func (c *Client) drainLocal() {
	if c.options.Get().LocalLogging {
		c.dispatcher.Tick()
	}
}

// enqueue hands an entry without event order to the dispatch queue
func (c *Client) enqueue(entry *dispatch.Entry) <-chan dispatch.Result {
	if c.IsDestroyed() {
		return failed(ErrDestroyed)
	}
	result := c.push(entry)
	c.drainLocal()
	return result
}

// ** CONFIGURATION **

// GetOptions returns the current options
func (c *Client) GetOptions() conf.Options {
	return c.options.Get()
}

// SetOptions merges the present fields of update into the current options. Interval changes
// re-arm the corresponding periodic task.
func (c *Client) SetOptions(update conf.OptionsUpdate) {
	c.options.Set(update)
}

// SetOptionsJSON merges a JSON object of options. Unknown keys are ignored.
func (c *Client) SetOptionsJSON(raw []byte) error {
	return c.options.ApplyJSON(raw)
}

// Connect sets the game id, and the backend URI when not empty, then checks the backend is reachable
func (c *Client) Connect(ctx context.Context, gameID string, uri string) ([]byte, error) {
	gameID, err := c.validator.checkNotEmpty("Connect", "gameId", gameID)
	if err != nil {
		return nil, err
	}
	update := conf.OptionsUpdate{GameID: conf.String(gameID)}
	if uri = strings.TrimSpace(uri); uri != "" {
		if _, err := url.ParseRequestURI(uri); err != nil {
			return nil, c.validator.invalid("Connect", "invalid uri %q", uri)
		}
		update.URI = conf.String(strings.TrimRight(uri, "/"))
	}
	c.options.Set(update)

	return c.direct(ctx, constants.Connect, http.MethodGet, "/sdk/connect", constants.ContentTypeForm, nil)
}

// GetConfig fetches the game configuration and merges the events throttling keys into the options
func (c *Client) GetConfig(ctx context.Context) ([]byte, error) {
	gameID := url.PathEscape(c.options.Get().GameID)
	body, err := c.direct(ctx, constants.GetConfig, http.MethodGet, "/api/v2/data/config/"+gameID, constants.ContentTypeJSON, nil)
	if err != nil {
		return body, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return body, fmt.Errorf("%s: %w", constants.GetConfig, err)
	}
	events := make(map[string]json.RawMessage, 4)
	for key, value := range fields {
		if strings.HasPrefix(key, "events") {
			events[key] = value
		}
	}
	if len(events) == 0 {
		return body, nil
	}
	raw, err := json.Marshal(events)
	if err != nil {
		return body, fmt.Errorf("%s: %w", constants.GetConfig, err)
	}
	if err := c.options.ApplyJSON(raw); err != nil {
		return body, fmt.Errorf("%s: %w", constants.GetConfig, err)
	}
	return body, nil
}

// ** AUTHENTICATION **

// Login authenticates the player. The session cookie is kept for the following calls.
func (c *Client) Login(ctx context.Context, username string, password string) ([]byte, error) {
	username, err := c.validator.checkNotEmpty("Login", "username", username)
	if err != nil {
		return nil, err
	}
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)
	return c.direct(ctx, constants.Login, http.MethodPost, "/api/v2/auth/login/glasslab", constants.ContentTypeForm, form)
}

// Logout ends the player session. The client is unauthenticated afterwards whatever the outcome.
func (c *Client) Logout(ctx context.Context) ([]byte, error) {
	body, err := c.direct(ctx, constants.Logout, http.MethodPost, "/api/v2/auth/logout", constants.ContentTypeForm, nil)
	c.tracker.SetAuthenticated(false)
	c.poller.Reset()
	return body, err
}

// GetAuthStatus checks the player session. A failure demotes the authentication state.
func (c *Client) GetAuthStatus(ctx context.Context) ([]byte, error) {
	body, err := c.direct(ctx, constants.GetAuthStatus, http.MethodGet, "/api/v2/auth/login/status", constants.ContentTypeJSON, nil)
	if err != nil {
		c.tracker.SetAuthenticated(false)
	}
	return body, err
}

// GetPlayerInfo fetches the player info for the current game. Success marks the client as
// authenticated and seeds the time played accumulator; failure demotes the authentication state.
func (c *Client) GetPlayerInfo(ctx context.Context) ([]byte, error) {
	body, err := c.direct(ctx, constants.GetPlayerInfo, http.MethodGet, c.gamePath("/playInfo"), constants.ContentTypeJSON, nil)
	if err != nil {
		c.tracker.SetAuthenticated(false)
		return body, err
	}

	var info dtos.PlayerInfoDTO
	if err := json.Unmarshal(body, &info); err != nil {
		c.logger.Warning("GetPlayerInfo: could not read totalTimePlayed:", err.Error())
	} else {
		c.tracker.SetTotalTimePlayed(info.TotalTimePlayed)
	}
	c.tracker.SetAuthenticated(true)
	return body, nil
}

// IsAuthenticated returns true after a successful player info fetch, until an auth failure or logout
func (c *Client) IsAuthenticated() bool {
	return c.tracker.IsAuthenticated()
}

// GetUserInfo fetches the profile of the logged in user
func (c *Client) GetUserInfo(ctx context.Context) ([]byte, error) {
	return c.direct(ctx, constants.GetUserInfo, http.MethodGet, "/api/v2/auth/user/profile", constants.ContentTypeJSON, nil)
}

// ** COURSES **

// Enroll enrolls the player in the course with the given code
func (c *Client) Enroll(ctx context.Context, courseCode string) ([]byte, error) {
	courseCode, err := c.validator.checkNotEmpty("Enroll", "courseCode", courseCode)
	if err != nil {
		return nil, err
	}
	return c.direct(ctx, constants.Enroll, http.MethodPost, "/api/v2/lms/course/enroll", constants.ContentTypeForm,
		map[string]string{"courseCode": courseCode})
}

// Unenroll removes the player from a course
func (c *Client) Unenroll(ctx context.Context, courseID string) ([]byte, error) {
	courseID, err := c.validator.checkNotEmpty("Unenroll", "courseId", courseID)
	if err != nil {
		return nil, err
	}
	return c.direct(ctx, constants.Unenroll, http.MethodPost, "/api/v2/lms/course/unenroll", constants.ContentTypeForm,
		map[string]string{"courseId": courseID})
}

func showMembersQuery(showMembers bool) map[string]string {
	if showMembers {
		return map[string]string{"showMembers": "1"}
	}
	return map[string]string{"showMembers": "0"}
}

// GetCourses lists the courses of the player
func (c *Client) GetCourses(ctx context.Context, showMembers bool) ([]byte, error) {
	return c.direct(ctx, constants.GetCourses, http.MethodGet, "/api/v2/lms/courses", constants.ContentTypeForm,
		showMembersQuery(showMembers))
}

// GetCourse fetches a single course
func (c *Client) GetCourse(ctx context.Context, courseID string, showMembers bool) ([]byte, error) {
	courseID, err := c.validator.checkNotEmpty("GetCourse", "courseId", courseID)
	if err != nil {
		return nil, err
	}
	return c.direct(ctx, constants.GetCourse, http.MethodGet, "/api/v2/lms/course/"+url.PathEscape(courseID)+"/info",
		constants.ContentTypeForm, showMembersQuery(showMembers))
}

// ** SESSIONS **

// StartPlaySession queues the start of a play session. Play sessions span game sessions and
// keep their own event order.
func (c *Client) StartPlaySession() <-chan dispatch.Result {
	if c.IsDestroyed() {
		return failed(ErrDestroyed)
	}
	c.sequence.Lock()
	defer c.drainLocal()
	defer c.sequence.Unlock()

	c.tracker.StartPlaySession()
	entry := dispatch.NewEntry(constants.StartPlaySession, http.MethodGet, "/api/v2/data/playSession/start", constants.ContentTypeJSON, nil)
	return c.push(entry.OnSuccess(func(body []byte) error {
		var started dtos.PlaySessionStartedDTO
		if err := json.Unmarshal(body, &started); err != nil {
			return err
		}
		if started.PlaySessionID == "" {
			return errors.New("response has no playSessionId")
		}
		c.tracker.SetPlaySessionID(started.PlaySessionID)
		return nil
	}))
}

// StartSession queues the start of a game session followed by the implicit Game_start_unit event.
// The event order restarts at 1. Session scoped calls queued afterwards wait until the backend
// assigns the session id.
func (c *Client) StartSession() <-chan dispatch.Result {
	if c.IsDestroyed() {
		return failed(ErrDestroyed)
	}
	opts := c.options.Get()

	c.sequence.Lock()
	c.tracker.StartGameSession()
	entry := dispatch.NewEntry(constants.StartSession, http.MethodPost, "/api/v2/data/session/start", constants.ContentTypeJSON,
		&dtos.StartSessionDTO{
			GameID:    opts.GameID,
			DeviceID:  opts.DeviceID,
			GameLevel: opts.GameLevel,
			Timestamp: c.timestamp(),
		})
	result := c.push(entry.OnSuccess(func(body []byte) error {
		var started dtos.SessionStartedDTO
		if err := json.Unmarshal(body, &started); err != nil {
			return err
		}
		if started.GameSessionID == "" {
			return errors.New("response has no gameSessionId")
		}
		c.tracker.SetGameSessionID(started.GameSessionID)
		return nil
	}))

	c.push(c.telemEventEntry(constants.StartUnitEvent, map[string]interface{}{}))
	c.sequence.Unlock()

	c.drainLocal()
	return result
}

// EndSession queues the end of the active game session. Telemetry queued afterwards waits for
// the next session.
func (c *Client) EndSession() <-chan dispatch.Result {
	entry := dispatch.NewEntry(constants.EndSession, http.MethodPost, "/api/v2/data/session/end", constants.ContentTypeJSON,
		&dtos.EndSessionDTO{Timestamp: c.timestamp()})
	return c.enqueue(entry.OnSuccess(func([]byte) error {
		c.tracker.EndGameSession()
		return nil
	}))
}

// EndSessionAndFlush queues the end of the session and drains the queue right away
func (c *Client) EndSessionAndFlush() <-chan dispatch.Result {
	result := c.EndSession()
	c.Flush()
	return result
}

// ** TELEMETRY **

func (c *Client) telemEventEntry(name string, data interface{}) *dispatch.Entry {
	opts := c.options.Get()
	if data == nil {
		data = map[string]interface{}{}
	}
	event := &dtos.TelemEventDTO{
		ClientTimeStamp:       c.timestamp(),
		GameID:                opts.GameID,
		GameVersion:           opts.GameVersion,
		DeviceID:              opts.DeviceID,
		GameLevel:             opts.GameLevel,
		GameSessionEventOrder: c.tracker.NextGameEventOrder(),
		PlaySessionEventOrder: c.tracker.NextPlayEventOrder(),
		TotalTimePlayed:       c.tracker.TotalTimePlayed(),
		EventName:             name,
		EventData:             data,
	}
	return dispatch.NewEntry(constants.SaveTelemEvent, http.MethodPost, "/api/v2/data/events", constants.ContentTypeJSON, event)
}

// SaveTelemEvent queues a telemetry event. The event order is taken now; the session ids are
// bound when the event leaves the queue.
func (c *Client) SaveTelemEvent(name string, data interface{}) <-chan dispatch.Result {
	name, err := c.validator.ValidateEventName(name)
	if err != nil {
		return failed(err)
	}
	if c.IsDestroyed() {
		return failed(ErrDestroyed)
	}

	c.sequence.Lock()
	result := c.push(c.telemEventEntry(name, data))
	c.sequence.Unlock()

	c.drainLocal()
	return result
}

// ** ACHIEVEMENTS & SAVED GAMES **

// SaveAchievement queues an achievement for the player
func (c *Client) SaveAchievement(item string, group string, subGroup string) <-chan dispatch.Result {
	item, group, subGroup, err := c.validator.ValidateAchievement(item, group, subGroup)
	if err != nil {
		return failed(err)
	}
	return c.enqueue(dispatch.NewEntry(constants.SaveAchievement, http.MethodPost, c.gamePath("/achievement"), constants.ContentTypeJSON,
		&dtos.AchievementDTO{Item: item, Group: group, SubGroup: subGroup}))
}

// GetAchievements fetches the achievements of the player
func (c *Client) GetAchievements(ctx context.Context) ([]byte, error) {
	return c.direct(ctx, constants.GetAchievements, http.MethodGet, c.gamePath("/achievements"), constants.ContentTypeJSON, nil)
}

// PostSaveGame queues a saved game. data must be JSON serializable.
func (c *Client) PostSaveGame(data interface{}) <-chan dispatch.Result {
	if data == nil {
		return failed(c.validator.invalid("PostSaveGame", "data cannot be nil"))
	}
	return c.enqueue(dispatch.NewEntry(constants.PostSaveGame, http.MethodPost, c.gamePath(""), constants.ContentTypeJSON, data))
}

// GetSaveGame fetches the saved game
func (c *Client) GetSaveGame(ctx context.Context) ([]byte, error) {
	return c.direct(ctx, constants.GetSaveGame, http.MethodGet, c.gamePath(""), constants.ContentTypeJSON, nil)
}

// ** MATCHES **

// CreateMatch opens a new match with the given invitees
func (c *Client) CreateMatch(ctx context.Context, invitees []string) ([]byte, error) {
	invitees, err := c.validator.ValidateInvitees(invitees)
	if err != nil {
		return nil, err
	}
	return c.direct(ctx, constants.CreateMatch, http.MethodPost, c.gamePath("/create"), constants.ContentTypeJSON,
		&dtos.CreateMatchDTO{Invitees: invitees})
}

// UpdateMatch submits a turn. nextPlayerTurn can be empty to let the backend pick the next player.
func (c *Client) UpdateMatch(ctx context.Context, matchID string, turnData interface{}, nextPlayerTurn string) ([]byte, error) {
	matchID, err := c.validator.ValidateMatchID("UpdateMatch", matchID)
	if err != nil {
		return nil, err
	}
	return c.direct(ctx, constants.UpdateMatch, http.MethodPost, c.gamePath("/submit"), constants.ContentTypeJSON,
		&dtos.UpdateMatchDTO{MatchID: matchID, TurnData: turnData, NextPlayerTurn: strings.TrimSpace(nextPlayerTurn)})
}

// PollMatches refreshes the match snapshot now instead of waiting for the periodic poll
func (c *Client) PollMatches(ctx context.Context) ([]byte, error) {
	if c.IsDestroyed() {
		return nil, ErrDestroyed
	}
	return c.poller.Poll(ctx)
}

// GetMatches returns the match snapshot. Empty when not authenticated.
func (c *Client) GetMatches() map[string]dtos.Match {
	return c.poller.Matches()
}

// GetMatchIDs returns the sorted ids of the match snapshot
func (c *Client) GetMatchIDs() []string {
	return c.poller.MatchIDs()
}

// GetMatchForID returns a match of the snapshot, or an error wrapping matches.ErrMatchNotFound
func (c *Client) GetMatchForID(matchID string) (dtos.Match, error) {
	return c.poller.Match(matchID)
}

// ** LOGS **

// DisplayLogs promotes request and response traces to Info level. The setting is persisted.
func (c *Client) DisplayLogs() error {
	return c.display.set(true)
}

// HideLogs demotes request and response traces back to Debug level. The setting is persisted.
func (c *Client) HideLogs() error {
	return c.display.set(false)
}

// LogsDisplayed returns true when request and response traces are displayed
func (c *Client) LogsDisplayed() bool {
	return c.display.isEnabled()
}

// LocalLogs returns the requests recorded while local logging was on, one JSON object per line
func (c *Client) LocalLogs() (string, error) {
	blob, _, err := c.localStorage.Get(constants.LocalTelemetryKey)
	return blob, err
}

// ClearLocalLogs drops the requests recorded while local logging was on
func (c *Client) ClearLocalLogs() error {
	return c.localStorage.Delete(constants.LocalTelemetryKey)
}

// ** QUEUE **

// Flush drains the dispatch queue now instead of waiting for the next periodic drain
func (c *Client) Flush() {
	if c.IsDestroyed() {
		return
	}
	c.dispatcher.Flush()
}

// QueueLength returns the number of queued entries, not counting the one in flight
func (c *Client) QueueLength() int {
	return c.dispatcher.Len()
}
