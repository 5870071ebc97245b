package dtos

import "encoding/json"

// TelemEventDTO is a single telemetry event
type TelemEventDTO struct {
	ClientTimeStamp       int64       `json:"clientTimeStamp"`
	GameID                string      `json:"gameId"`
	GameVersion           string      `json:"gameVersion"`
	DeviceID              string      `json:"deviceId"`
	GameLevel             string      `json:"gameLevel"`
	GameSessionID         SessionRef  `json:"gameSessionId"`
	GameSessionEventOrder int64       `json:"gameSessionEventOrder"`
	PlaySessionID         SessionRef  `json:"playSessionId"`
	PlaySessionEventOrder int64       `json:"playSessionEventOrder"`
	TotalTimePlayed       int64       `json:"totalTimePlayed"`
	EventName             string      `json:"eventName"`
	EventData             interface{} `json:"eventData"`
}

// BindSessions implements SessionBinder
func (e *TelemEventDTO) BindSessions(gameSessionID string, playSessionID string) {
	e.GameSessionID.Bind(gameSessionID)
	e.PlaySessionID.Bind(playSessionID)
}

// AchievementDTO is posted when the player earns an achievement
type AchievementDTO struct {
	Item     string `json:"item"`
	Group    string `json:"group"`
	SubGroup string `json:"subGroup"`
}

// Match statuses
const (
	MatchActive = "active"
	MatchClosed = "closed"
)

// Match is the state of an asynchronous multiplayer match
type Match struct {
	ID      string            `json:"id"`
	Players []string          `json:"players"`
	Status  string            `json:"status"`
	Turns   []json.RawMessage `json:"turns"`
	Meta    json.RawMessage   `json:"meta,omitempty"`
}

// CreateMatchDTO is posted to open a new match with the given invitees
type CreateMatchDTO struct {
	Invitees []string `json:"invitees"`
}

// UpdateMatchDTO submits a turn for a match
type UpdateMatchDTO struct {
	MatchID        string      `json:"matchId"`
	TurnData       interface{} `json:"turnData"`
	NextPlayerTurn string      `json:"nextPlayerTurn,omitempty"`
}
