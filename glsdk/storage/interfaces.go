package storage

import (
	"errors"

	"github.com/glasslab/go-glsdk/glsdk/dtos"
)

// ErrStorageClosed is returned by local storages used after Close
var ErrStorageClosed = errors.New("storage is closed")

// LocalStorage is the persistent key-value mirror kept on the player's machine.
// It holds small values only: the log display flag, the local telemetry blob and the device id.
type LocalStorage interface {
	// Get returns the value stored under key and whether it exists
	Get(key string) (string, bool, error)
	Set(key string, value string) error
	// Append concatenates value to the current value of key, creating it if needed
	Append(key string, value string) error
	Delete(key string) error
	Close() error
}

// MatchStorageProducer interface should be implemented by the poller side of the match snapshot
type MatchStorageProducer interface {
	// ReplaceAll swaps the whole snapshot. Matches absent from the new set are dropped.
	ReplaceAll(matches map[string]dtos.Match)
	Clear()
}

// MatchStorageConsumer interface should be implemented by readers of the match snapshot
type MatchStorageConsumer interface {
	Get(id string) (dtos.Match, bool)
	IDs() []string
	All() map[string]dtos.Match
}

// MatchStorage is the full match snapshot interface
type MatchStorage interface {
	MatchStorageProducer
	MatchStorageConsumer
}
