package conf

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// Options holds the connection and throttling parameters used by the SDK at runtime.
// The zero value is not useful, use DefaultOptions.
type Options struct {
	URI                         string
	GameID                      string
	GameVersion                 string
	GameSecret                  string
	DeviceID                    string
	GameLevel                   string
	DispatchQueueUpdateInterval time.Duration
	SendTotalTimePlayedInterval time.Duration
	PollMatchesInterval         time.Duration
	EventsDetailLevel           int
	EventsPeriodSecs            int
	EventsMinSize               int
	EventsMaxSize               int
	LocalLogging                bool
}

// DefaultOptions returns the options a freshly created SDK starts with
func DefaultOptions() Options {
	return Options{
		URI:                         defaultURI,
		GameID:                      defaultGameID,
		GameVersion:                 defaultGameVersion,
		DeviceID:                    defaultDeviceID,
		GameLevel:                   defaultGameLevel,
		DispatchQueueUpdateInterval: defaultDispatchInterval,
		SendTotalTimePlayedInterval: defaultTimePlayedInterval,
		PollMatchesInterval:         defaultPollMatchesInterval,
		EventsDetailLevel:           defaultEventsDetailLevel,
		EventsPeriodSecs:            defaultEventsPeriodSecs,
		EventsMinSize:               defaultEventsMinSize,
		EventsMaxSize:               defaultEventsMaxSize,
	}
}

// OptionsUpdate is a partial set of options. Nil fields are left untouched when merged.
type OptionsUpdate struct {
	URI                         *string
	GameID                      *string
	GameVersion                 *string
	GameSecret                  *string
	DeviceID                    *string
	GameLevel                   *string
	DispatchQueueUpdateInterval *time.Duration
	SendTotalTimePlayedInterval *time.Duration
	PollMatchesInterval         *time.Duration
	EventsDetailLevel           *int
	EventsPeriodSecs            *int
	EventsMinSize               *int
	EventsMaxSize               *int
	LocalLogging                *bool
}

// String returns a pointer to s, handy for building OptionsUpdate literals
func String(s string) *string { return &s }

// Int returns a pointer to i
func Int(i int) *int { return &i }

// Bool returns a pointer to b
func Bool(b bool) *bool { return &b }

// Duration returns a pointer to d
func Duration(d time.Duration) *time.Duration { return &d }

// Interval identifies one of the periodic tasks driven by the options
type Interval int

const (
	// DispatchInterval drives the dispatch queue drain
	DispatchInterval Interval = iota
	// TimePlayedInterval drives the total-time-played push
	TimePlayedInterval
	// PollMatchesInterval drives the match poll
	PollMatchesInterval
)

func (i Interval) String() string {
	switch i {
	case DispatchInterval:
		return "dispatchQueueUpdateInterval"
	case TimePlayedInterval:
		return "sendTotalTimePlayedInterval"
	case PollMatchesInterval:
		return "pollMatchesInterval"
	}
	return fmt.Sprintf("Interval(%d)", int(i))
}

// IntervalListener is notified each time an update sets one of the periodic intervals
type IntervalListener func(interval Interval, period time.Duration)

// Store keeps the current Options of one SDK instance and merges partial updates into them
type Store struct {
	mutex     sync.RWMutex
	options   Options
	listeners []IntervalListener
}

// NewStore creates a store seeded with the given options
func NewStore(initial Options) *Store {
	return &Store{options: initial}
}

// Get returns a snapshot of the current options
func (s *Store) Get() Options {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.options
}

// OnIntervalChange registers a listener for interval updates
func (s *Store) OnIntervalChange(listener IntervalListener) {
	if listener == nil {
		return
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.listeners = append(s.listeners, listener)
}

// Set merges the present fields of update into the current options.
// Non-positive intervals are ignored. Interval listeners are called after the merge.
func (s *Store) Set(update OptionsUpdate) {
	s.mutex.Lock()
	o := &s.options
	if update.URI != nil {
		o.URI = *update.URI
	}
	if update.GameID != nil {
		o.GameID = *update.GameID
	}
	if update.GameVersion != nil {
		o.GameVersion = *update.GameVersion
	}
	if update.GameSecret != nil {
		o.GameSecret = *update.GameSecret
	}
	if update.DeviceID != nil {
		o.DeviceID = *update.DeviceID
	}
	if update.GameLevel != nil {
		o.GameLevel = *update.GameLevel
	}
	if update.EventsDetailLevel != nil {
		o.EventsDetailLevel = *update.EventsDetailLevel
	}
	if update.EventsPeriodSecs != nil {
		o.EventsPeriodSecs = *update.EventsPeriodSecs
	}
	if update.EventsMinSize != nil {
		o.EventsMinSize = *update.EventsMinSize
	}
	if update.EventsMaxSize != nil {
		o.EventsMaxSize = *update.EventsMaxSize
	}
	if update.LocalLogging != nil {
		o.LocalLogging = *update.LocalLogging
	}

	changed := make(map[Interval]time.Duration, 3)
	if d := update.DispatchQueueUpdateInterval; d != nil && *d > 0 {
		o.DispatchQueueUpdateInterval = *d
		changed[DispatchInterval] = *d
	}
	if d := update.SendTotalTimePlayedInterval; d != nil && *d > 0 {
		o.SendTotalTimePlayedInterval = *d
		changed[TimePlayedInterval] = *d
	}
	if d := update.PollMatchesInterval; d != nil && *d > 0 {
		o.PollMatchesInterval = *d
		changed[PollMatchesInterval] = *d
	}
	listeners := make([]IntervalListener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mutex.Unlock()

	for _, interval := range []Interval{DispatchInterval, TimePlayedInterval, PollMatchesInterval} {
		period, ok := changed[interval]
		if !ok {
			continue
		}
		for _, listener := range listeners {
			listener(interval, period)
		}
	}
}

// ApplyJSON merges a JSON object of options, as returned by the backend's config endpoint,
// into the current options. Intervals are expressed in milliseconds. Unrecognized keys are ignored.
func (s *Store) ApplyJSON(raw []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return fmt.Errorf("parsing options: %w", err)
	}

	var update OptionsUpdate
	for key, value := range fields {
		var err error
		switch key {
		case "uri":
			update.URI, err = decodeString(value)
		case "gameId":
			update.GameID, err = decodeString(value)
		case "gameVersion":
			update.GameVersion, err = decodeString(value)
		case "gameSecret":
			update.GameSecret, err = decodeString(value)
		case "deviceId":
			update.DeviceID, err = decodeString(value)
		case "gameLevel":
			update.GameLevel, err = decodeString(value)
		case "dispatchQueueUpdateInterval":
			update.DispatchQueueUpdateInterval, err = decodeMillis(value)
		case "sendTotalTimePlayedInterval":
			update.SendTotalTimePlayedInterval, err = decodeMillis(value)
		case "pollMatchesInterval":
			update.PollMatchesInterval, err = decodeMillis(value)
		case "eventsDetailLevel":
			update.EventsDetailLevel, err = decodeInt(value)
		case "eventsPeriodSecs":
			update.EventsPeriodSecs, err = decodeInt(value)
		case "eventsMinSize":
			update.EventsMinSize, err = decodeInt(value)
		case "eventsMaxSize":
			update.EventsMaxSize, err = decodeInt(value)
		case "localLogging":
			var b bool
			err = json.Unmarshal(value, &b)
			update.LocalLogging = &b
		}
		if err != nil {
			return fmt.Errorf("option %s: %w", key, err)
		}
	}

	s.Set(update)
	return nil
}

func decodeString(raw json.RawMessage) (*string, error) {
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// numeric options are sometimes sent quoted by the backend
func decodeInt(raw json.RawMessage) (*int, error) {
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		var quoted string
		if errQuoted := json.Unmarshal(raw, &quoted); errQuoted != nil {
			return nil, err
		}
		n = json.Number(quoted)
	}
	v, err := n.Int64()
	if err != nil {
		return nil, err
	}
	i := int(v)
	return &i, nil
}

func decodeMillis(raw json.RawMessage) (*time.Duration, error) {
	ms, err := decodeInt(raw)
	if err != nil {
		return nil, err
	}
	d := time.Duration(*ms) * time.Millisecond
	return &d, nil
}
