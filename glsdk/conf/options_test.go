package conf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetMergesOnlyPresentFields(t *testing.T) {
	store := NewStore(DefaultOptions())

	store.Set(OptionsUpdate{GameID: String("SC"), GameLevel: String("level-2")})
	opts := store.Get()
	assert.Equal(t, "SC", opts.GameID)
	assert.Equal(t, "level-2", opts.GameLevel)
	assert.Equal(t, "VERSION_NOT_SET", opts.GameVersion)
	assert.Equal(t, "http://localhost:8001", opts.URI)

	store.Set(OptionsUpdate{LocalLogging: Bool(true), EventsMaxSize: Int(7)})
	opts = store.Get()
	assert.True(t, opts.LocalLogging)
	assert.Equal(t, 7, opts.EventsMaxSize)
	assert.Equal(t, "SC", opts.GameID)
}

func TestSetNotifiesIntervalListeners(t *testing.T) {
	store := NewStore(DefaultOptions())
	got := map[Interval]time.Duration{}
	store.OnIntervalChange(func(interval Interval, period time.Duration) {
		got[interval] = period
	})

	store.Set(OptionsUpdate{GameID: String("x")})
	assert.Empty(t, got)

	store.Set(OptionsUpdate{
		DispatchQueueUpdateInterval: Duration(500 * time.Millisecond),
		PollMatchesInterval:         Duration(0),
	})
	assert.Equal(t, map[Interval]time.Duration{DispatchInterval: 500 * time.Millisecond}, got)
	assert.Equal(t, 10*time.Second, store.Get().PollMatchesInterval, "non-positive interval must be ignored")
}

func TestApplyJSON(t *testing.T) {
	store := NewStore(DefaultOptions())
	var rearmed []Interval
	store.OnIntervalChange(func(interval Interval, _ time.Duration) {
		rearmed = append(rearmed, interval)
	})

	err := store.ApplyJSON([]byte(`{
		"eventsDetailLevel": 3,
		"eventsPeriodSecs": "60",
		"eventsMinSize": 2,
		"eventsMaxSize": 50,
		"sendTotalTimePlayedInterval": 2000,
		"somethingElse": {"nested": true}
	}`))
	require.NoError(t, err)

	opts := store.Get()
	assert.Equal(t, 3, opts.EventsDetailLevel)
	assert.Equal(t, 60, opts.EventsPeriodSecs)
	assert.Equal(t, 2, opts.EventsMinSize)
	assert.Equal(t, 50, opts.EventsMaxSize)
	assert.Equal(t, 2*time.Second, opts.SendTotalTimePlayedInterval)
	assert.Equal(t, []Interval{TimePlayedInterval}, rearmed)
}

func TestApplyJSONErrors(t *testing.T) {
	store := NewStore(DefaultOptions())
	assert.Error(t, store.ApplyJSON([]byte(`not json`)))
	assert.Error(t, store.ApplyJSON([]byte(`{"eventsMinSize": "lots"}`)))
	assert.Equal(t, DefaultOptions(), store.Get(), "failed merges must not change the options")
}
