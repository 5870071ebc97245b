// Package client contains the game services SDK client and the setup needed to instantiate it.
package client

import (
	"errors"
	"fmt"
	"time"

	"github.com/glasslab/go-glsdk/glsdk"
	"github.com/glasslab/go-glsdk/glsdk/conf"
	"github.com/glasslab/go-glsdk/glsdk/dispatch"
	"github.com/glasslab/go-glsdk/glsdk/dtos"
	"github.com/glasslab/go-glsdk/glsdk/matches"
	"github.com/glasslab/go-glsdk/glsdk/service"
	"github.com/glasslab/go-glsdk/glsdk/service/api"
	"github.com/glasslab/go-glsdk/glsdk/service/local"
	"github.com/glasslab/go-glsdk/glsdk/session"
	"github.com/glasslab/go-glsdk/glsdk/storage"
	"github.com/glasslab/go-glsdk/glsdk/storage/mutexmap"
	"github.com/glasslab/go-glsdk/glsdk/storage/redisdb"
	"github.com/glasslab/go-glsdk/glsdk/storage/sqlite"
	"github.com/glasslab/go-glsdk/glsdk/tasks"
	"github.com/splitio/go-toolkit/v5/logging"
)

const (
	sdkStatusDestroyed = iota
	sdkStatusReady
)

// ErrDestroyed is returned by every operation of a destroyed client
var ErrDestroyed = errors.New("client has been destroyed")

type sdkTasks struct {
	dispatch    *tasks.AsyncTask
	timePlayed  *tasks.AsyncTask
	pollMatches *tasks.AsyncTask
}

func (t *sdkTasks) all() []*tasks.AsyncTask {
	return []*tasks.AsyncTask{t.dispatch, t.timePlayed, t.pollMatches}
}

// setupLogger sets up the logger according to the parameters submitted by the sdk user
func setupLogger(cfg *conf.SdkConfig) logging.LoggerInterface {
	var logger logging.LoggerInterface
	if cfg.Logger != nil {
		// If a custom logger is supplied, use it.
		logger = cfg.Logger
	} else {
		logger = logging.NewLogger(&cfg.LoggerConfig)
	}
	return logger
}

// setupLocalStorage opens the local key-value mirror selected by the advanced config
func setupLocalStorage(cfg *conf.SdkConfig, logger logging.LoggerInterface) (storage.LocalStorage, error) {
	switch cfg.Advanced.Storage {
	case conf.StorageMemory:
		return mutexmap.NewMMLocalStorage(), nil
	case conf.StorageSQLite:
		return sqlite.Open(cfg.Advanced.SQLitePath)
	case conf.StorageRedis:
		localStorage, err := redisdb.NewRedisLocalStorage(cfg.Advanced.Redis, logger)
		if err != nil {
			logger.Error("Failed to instantiate redis client.")
			return nil, err
		}
		return localStorage, nil
	}
	return nil, fmt.Errorf("Invalid storage \"%s\"", cfg.Advanced.Storage)
}

// NewClient instantiates a new Client. Accepts a SdkConfig struct as an argument; a nil config
// means defaults. The periodic tasks are started before returning.
func NewClient(cfg *conf.SdkConfig) (*Client, error) {
	if cfg == nil {
		cfg = conf.Default()
	}

	logger := setupLogger(cfg)

	if err := conf.Normalize(cfg); err != nil {
		logger.Error("Error occurred when processing configuration")
		return nil, err
	}

	localStorage, err := setupLocalStorage(cfg, logger)
	if err != nil {
		return nil, err
	}

	deviceID, err := resolveDeviceID(cfg.Options.DeviceID, localStorage)
	if err != nil {
		logger.Error("Could not resolve the device id:", err.Error())
		localStorage.Close()
		return nil, err
	}
	initial := cfg.Options
	initial.DeviceID = deviceID
	options := conf.NewStore(initial)

	metadata := dtos.Metadata{
		SDKVersion:  "go-" + glsdk.Version,
		MachineIP:   cfg.IPAddress,
		MachineName: cfg.InstanceName,
	}

	display := newLogDisplay(localStorage, logger)
	remote := &loggingTransport{
		next:    api.NewHTTPTransport(cfg, options, metadata, logger),
		display: display,
		logger:  logger,
	}
	echo := &loggingTransport{
		next:    local.NewEchoTransport(localStorage, logger),
		display: display,
		logger:  logger,
	}

	tracker := session.NewTracker()
	dispatcher := dispatch.NewDispatcher(tracker, remote, echo, options, logger)

	client := &Client{
		cfg:          cfg,
		logger:       logger,
		options:      options,
		tracker:      tracker,
		dispatcher:   dispatcher,
		remote:       remote,
		local:        echo,
		localStorage: localStorage,
		display:      display,
		validator:    inputValidation{logger: logger},
		now:          time.Now,
	}
	client.poller = matches.NewPoller(client.transportFor(), mutexmap.NewMMMatchStorage(), tracker, options, logger)

	opts := options.Get()
	client.tasks = sdkTasks{
		dispatch:    tasks.NewDispatchTask(dispatcher, opts.DispatchQueueUpdateInterval, logger),
		timePlayed:  tasks.NewTimePlayedTask(tracker, dispatcher, options, opts.SendTotalTimePlayedInterval, logger),
		pollMatches: tasks.NewPollMatchesTask(client.poller, opts.PollMatchesInterval, logger),
	}
	options.OnIntervalChange(client.rearm)

	for _, task := range client.tasks.all() {
		task.Start()
	}

	registerInstance(cfg.Options.GameID, logger)
	client.status.Store(sdkStatusReady)
	return client, nil
}

// rearm applies a new period to the running task. The previous period is replaced, never added to.
func (c *Client) rearm(interval conf.Interval, period time.Duration) {
	c.logger.Debug(fmt.Sprintf("Re-arming %s with a period of %s", interval, period))
	switch interval {
	case conf.DispatchInterval:
		c.tasks.dispatch.SetPeriod(period)
	case conf.TimePlayedInterval:
		c.tasks.timePlayed.SetPeriod(period)
	case conf.PollMatchesInterval:
		c.tasks.pollMatches.SetPeriod(period)
	}
}

// transportFor returns a transport that routes each request according to the current
// local logging option
func (c *Client) transportFor() service.Transport {
	return &switchingTransport{client: c}
}

// IsDestroyed returns true if the client has been destroyed
func (c *Client) IsDestroyed() bool {
	return c.status.Load() == sdkStatusDestroyed
}

// Destroy stops all async tasks and closes the local storage. Queued entries that were not
// delivered yet fail with ErrDestroyed; the entry in flight, if any, completes.
func (c *Client) Destroy() {
	if !c.status.CompareAndSwap(sdkStatusReady, sdkStatusDestroyed) {
		return
	}
	removeInstance(c.cfg.Options.GameID)
	c.dispatcher.Stop(ErrDestroyed)

	for _, task := range c.tasks.all() {
		task.Stop(true)
	}
	if err := c.localStorage.Close(); err != nil {
		c.logger.Error("Error closing local storage:", err.Error())
	}
}
