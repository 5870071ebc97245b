// Package conf contains configuration structures used to setup the SDK
package conf

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/splitio/go-toolkit/v5/datastructures/set"
	"github.com/splitio/go-toolkit/v5/logging"
	"github.com/splitio/go-toolkit/v5/nethelpers"
)

// SdkConfig struct ...
// struct used to setup a game services SDK client.
//
// Parameters:
// - Options (Required) Initial connection and throttling options. Can be changed later through the client.
// - InstanceName (Optional) Name to be sent as metadata with every request
// - IPAddress (Optional) Address to be sent as metadata with every request
// - Logger: (Optional) Custom logger complying with logging.LoggerInterface
// - LoggerConfig: (Optional) Options to setup the sdk's own logger
// - Advanced: (Optional) Sets up various advanced options for the sdk
type SdkConfig struct {
	Options      Options
	InstanceName string
	IPAddress    string
	Logger       logging.LoggerInterface
	LoggerConfig logging.LoggerOptions
	Advanced     AdvancedConfig
}

// RedisConfig struct is used to cofigure the redis parameters of the local store
type RedisConfig struct {
	Host     string
	Port     int
	Database int
	Password string
	Prefix   string
}

// AdvancedConfig exposes more configurable parameters that can be used to further tailor the sdk to the user's needs
// - HTTPTimeout - Timeout in seconds for HTTP requests
// - Storage - Backend of the local key-value mirror. One of ["memory", "sqlite", "redis"]
// - SQLitePath - Database file used when Storage is "sqlite"
// - Redis - Connection parameters used when Storage is "redis"
type AdvancedConfig struct {
	HTTPTimeout int
	Storage     string
	SQLitePath  string
	Redis       RedisConfig
}

// Default returns a config struct with all the default values
func Default() *SdkConfig {
	ipAddress, err := nethelpers.ExternalIP()
	if err != nil {
		ipAddress = "unknown"
	}

	return &SdkConfig{
		Options:      DefaultOptions(),
		IPAddress:    ipAddress,
		InstanceName: fmt.Sprintf("ip-%s", strings.Replace(ipAddress, ".", "-", -1)),
		Logger:       nil,
		LoggerConfig: logging.LoggerOptions{},
		Advanced: AdvancedConfig{
			HTTPTimeout: defaultHTTPTimeout,
			Storage:     StorageMemory,
			SQLitePath:  defaultSQLitePath,
			Redis: RedisConfig{
				Host:   defaultRedisHost,
				Port:   defaultRedisPort,
				Prefix: defaultRedisPrefix,
			},
		},
	}
}

// Normalize checks that the parameters passed by the user are correct and updates parameters if necessary.
// returns an error if something is wrong
func Normalize(cfg *SdkConfig) error {
	if cfg == nil {
		return errors.New("SDK config is nil")
	}

	if !cfg.Options.LocalLogging {
		if strings.TrimSpace(cfg.Options.URI) == "" {
			return errors.New("URI parameter must be a non-empty string unless local logging is enabled")
		}
		if _, err := url.ParseRequestURI(cfg.Options.URI); err != nil {
			return fmt.Errorf("invalid URI %q: %w", cfg.Options.URI, err)
		}
	}
	cfg.Options.URI = strings.TrimRight(cfg.Options.URI, "/")

	defaults := DefaultOptions()
	if cfg.Options.DispatchQueueUpdateInterval <= 0 {
		cfg.Options.DispatchQueueUpdateInterval = defaults.DispatchQueueUpdateInterval
	}
	if cfg.Options.SendTotalTimePlayedInterval <= 0 {
		cfg.Options.SendTotalTimePlayedInterval = defaults.SendTotalTimePlayedInterval
	}
	if cfg.Options.PollMatchesInterval <= 0 {
		cfg.Options.PollMatchesInterval = defaults.PollMatchesInterval
	}

	if cfg.Advanced.HTTPTimeout <= 0 {
		cfg.Advanced.HTTPTimeout = defaultHTTPTimeout
	}
	if cfg.Advanced.Storage == "" {
		cfg.Advanced.Storage = StorageMemory
	}

	storageModes := set.NewSet(StorageMemory, StorageSQLite, StorageRedis)
	if !storageModes.Has(cfg.Advanced.Storage) {
		return fmt.Errorf("Storage parameter must be one of: %v", storageModes.List())
	}
	if cfg.Advanced.Storage == StorageSQLite && strings.TrimSpace(cfg.Advanced.SQLitePath) == "" {
		cfg.Advanced.SQLitePath = defaultSQLitePath
	}

	return nil
}
