// Package session keeps the server-assigned session ids and the per-session event counters
package session

import (
	"sync"
	"time"
)

// IDs is a snapshot of the active session identifiers. Empty strings mean no active session.
type IDs struct {
	GameSessionID string
	PlaySessionID string
}

// Tracker owns the game/play session ids, their event order counters, the time played
// accumulator and the authentication flag. It is safe for concurrent use.
type Tracker struct {
	mutex                 sync.RWMutex
	activeGameSessionID   string
	activePlaySessionID   string
	gameSessionEventOrder int64
	playSessionEventOrder int64
	totalTimePlayed       int64
	isAuthenticated       bool
}

// NewTracker returns a tracker with no active sessions
func NewTracker() *Tracker {
	return &Tracker{gameSessionEventOrder: 1, playSessionEventOrder: 1}
}

// StartGameSession resets the game session event order. The id is assigned later through
// SetGameSessionID, once the backend acknowledges the session.
func (t *Tracker) StartGameSession() {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.gameSessionEventOrder = 1
}

// SetGameSessionID stores the id assigned by the backend
func (t *Tracker) SetGameSessionID(id string) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.activeGameSessionID = id
}

// EndGameSession clears the active game session id
func (t *Tracker) EndGameSession() {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.activeGameSessionID = ""
}

// StartPlaySession resets the play session event order
func (t *Tracker) StartPlaySession() {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.playSessionEventOrder = 1
}

// SetPlaySessionID stores the play session id assigned by the backend
func (t *Tracker) SetPlaySessionID(id string) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.activePlaySessionID = id
}

// NextGameEventOrder returns the current game session event order and increments it
func (t *Tracker) NextGameEventOrder() int64 {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	order := t.gameSessionEventOrder
	t.gameSessionEventOrder++
	return order
}

// NextPlayEventOrder returns the current play session event order and increments it
func (t *Tracker) NextPlayEventOrder() int64 {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	order := t.playSessionEventOrder
	t.playSessionEventOrder++
	return order
}

// IDs returns the active session ids
func (t *Tracker) IDs() IDs {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	return IDs{GameSessionID: t.activeGameSessionID, PlaySessionID: t.activePlaySessionID}
}

// HasGameSession returns true when a game session id is known
func (t *Tracker) HasGameSession() bool {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	return t.activeGameSessionID != ""
}

// SetAuthenticated sets the authentication flag
func (t *Tracker) SetAuthenticated(authenticated bool) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.isAuthenticated = authenticated
}

// IsAuthenticated returns true after a successful player info fetch, until an auth failure or logout
func (t *Tracker) IsAuthenticated() bool {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	return t.isAuthenticated
}

// SetTotalTimePlayed overrides the accumulated time played, in milliseconds
func (t *Tracker) SetTotalTimePlayed(ms int64) {
	if ms < 0 {
		ms = 0
	}
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.totalTimePlayed = ms
}

// AddTimePlayed accumulates elapsed play time and returns the new total in milliseconds
func (t *Tracker) AddTimePlayed(elapsed time.Duration) int64 {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	if elapsed > 0 {
		t.totalTimePlayed += elapsed.Milliseconds()
	}
	return t.totalTimePlayed
}

// TotalTimePlayed returns the accumulated time played in milliseconds
func (t *Tracker) TotalTimePlayed() int64 {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	return t.totalTimePlayed
}
