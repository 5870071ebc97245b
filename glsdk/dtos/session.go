// Package dtos contains the payloads exchanged with the game services backend
package dtos

import (
	"encoding/json"
	"errors"
)

// ErrUnboundSessionRef is returned when serializing a session reference that was never bound
var ErrUnboundSessionRef = errors.New("session reference has not been bound")

// SessionRef is a session identifier whose value is only known when the owning request is dispatched.
// The dispatch queue binds it right before handing the request to the transport.
type SessionRef struct {
	id    string
	bound bool
}

// BoundSessionRef returns an already bound reference
func BoundSessionRef(id string) SessionRef {
	return SessionRef{id: id, bound: true}
}

// Bind sets the reference value
func (r *SessionRef) Bind(id string) {
	r.id = id
	r.bound = true
}

// ID returns the bound value, or an empty string when unbound
func (r SessionRef) ID() string {
	return r.id
}

// Bound returns true once a value has been bound
func (r SessionRef) Bound() bool {
	return r.bound
}

// MarshalJSON serializes the bound id as a string. Unbound references fail to serialize.
func (r SessionRef) MarshalJSON() ([]byte, error) {
	if !r.bound {
		return nil, ErrUnboundSessionRef
	}
	return json.Marshal(r.id)
}

// UnmarshalJSON reads a session id string and marks the reference as bound
func (r *SessionRef) UnmarshalJSON(data []byte) error {
	var id string
	if err := json.Unmarshal(data, &id); err != nil {
		return err
	}
	r.Bind(id)
	return nil
}

// SessionBinder is implemented by payloads that carry deferred session ids
type SessionBinder interface {
	BindSessions(gameSessionID string, playSessionID string)
}

// StartSessionDTO is posted to open a game session
type StartSessionDTO struct {
	GameID    string `json:"gameId"`
	DeviceID  string `json:"deviceId"`
	GameLevel string `json:"gameLevel"`
	Timestamp int64  `json:"timestamp"`
}

// SessionStartedDTO is the backend answer to a session start
type SessionStartedDTO struct {
	GameSessionID string `json:"gameSessionId"`
}

// PlaySessionStartedDTO is the backend answer to a play session start
type PlaySessionStartedDTO struct {
	PlaySessionID string `json:"playSessionId"`
}

// EndSessionDTO is posted to close the active game session
type EndSessionDTO struct {
	GameSessionID SessionRef `json:"gameSessionId"`
	Timestamp     int64      `json:"timestamp"`
}

// BindSessions implements SessionBinder
func (e *EndSessionDTO) BindSessions(gameSessionID string, _ string) {
	e.GameSessionID.Bind(gameSessionID)
}

// TotalTimePlayedDTO pushes the accumulated play time, in milliseconds
type TotalTimePlayedDTO struct {
	SetTime int64 `json:"setTime"`
}

// PlayerInfoDTO contains the player info fields read by the SDK. The rest of the payload is opaque.
type PlayerInfoDTO struct {
	TotalTimePlayed int64 `json:"totalTimePlayed"`
}
