package mutexmap

import (
	"encoding/json"
	"sort"
	"sync"

	"github.com/glasslab/go-glsdk/glsdk/dtos"
	"github.com/glasslab/go-glsdk/glsdk/storage"
)

// ** LOCAL STORAGE **

// MMLocalStorage struct contains is an in-memory implementation of the local key-value storage.
// Values do not survive the process, use the sqlite or redis storages for that.
type MMLocalStorage struct {
	data   map[string]string
	closed bool
	mutex  *sync.RWMutex
}

// NewMMLocalStorage instantiates a new MMLocalStorage
func NewMMLocalStorage() *MMLocalStorage {
	return &MMLocalStorage{
		data:  make(map[string]string),
		mutex: &sync.RWMutex{},
	}
}

// Get retrieves a value
func (m *MMLocalStorage) Get(key string) (string, bool, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if m.closed {
		return "", false, storage.ErrStorageClosed
	}
	value, exists := m.data[key]
	return value, exists, nil
}

// Set stores a value
func (m *MMLocalStorage) Set(key string, value string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.closed {
		return storage.ErrStorageClosed
	}
	m.data[key] = value
	return nil
}

// Append concatenates value to the one stored under key
func (m *MMLocalStorage) Append(key string, value string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.closed {
		return storage.ErrStorageClosed
	}
	m.data[key] += value
	return nil
}

// Delete removes a key
func (m *MMLocalStorage) Delete(key string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.closed {
		return storage.ErrStorageClosed
	}
	delete(m.data, key)
	return nil
}

// Close drops every value
func (m *MMLocalStorage) Close() error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.closed = true
	m.data = make(map[string]string)
	return nil
}

// ** MATCH STORAGE **

// MMMatchStorage struct contains is an in-memory snapshot of the player's matches
type MMMatchStorage struct {
	data  map[string]dtos.Match
	mutex *sync.RWMutex
}

// NewMMMatchStorage instantiates a new MMMatchStorage
func NewMMMatchStorage() *MMMatchStorage {
	return &MMMatchStorage{
		data:  make(map[string]dtos.Match),
		mutex: &sync.RWMutex{},
	}
}

// ReplaceAll swaps the snapshot for the given matches
func (m *MMMatchStorage) ReplaceAll(matches map[string]dtos.Match) {
	fresh := make(map[string]dtos.Match, len(matches))
	for id, match := range matches {
		fresh[id] = copyMatch(match)
	}
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.data = fresh
}

// Clear empties the snapshot
func (m *MMMatchStorage) Clear() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.data = make(map[string]dtos.Match)
}

// Get retrieves a match.
// NOTE: A copy is returned, in order to avoid race conditions between readers and the poller
func (m *MMMatchStorage) Get(id string) (dtos.Match, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	match, exists := m.data[id]
	if !exists {
		return dtos.Match{}, false
	}
	return copyMatch(match), true
}

// IDs returns the sorted ids of the matches in the snapshot
func (m *MMMatchStorage) IDs() []string {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	ids := make([]string, 0, len(m.data))
	for id := range m.data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// All returns a copy of the whole snapshot
func (m *MMMatchStorage) All() map[string]dtos.Match {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	all := make(map[string]dtos.Match, len(m.data))
	for id, match := range m.data {
		all[id] = copyMatch(match)
	}
	return all
}

func copyMatch(match dtos.Match) dtos.Match {
	c := match
	if match.Players != nil {
		c.Players = append([]string(nil), match.Players...)
	}
	if match.Turns != nil {
		c.Turns = make([]json.RawMessage, len(match.Turns))
		copy(c.Turns, match.Turns)
	}
	if match.Meta != nil {
		c.Meta = append(json.RawMessage(nil), match.Meta...)
	}
	return c
}
