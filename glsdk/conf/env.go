package conf

import (
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/splitio/go-toolkit/v5/logging"
)

type envConfig struct {
	URI                 string        `env:"GLSDK_URI" envDefault:"http://localhost:8001"`
	GameID              string        `env:"GLSDK_GAME_ID" envDefault:"TEST"`
	GameVersion         string        `env:"GLSDK_GAME_VERSION" envDefault:"VERSION_NOT_SET"`
	GameSecret          string        `env:"GLSDK_GAME_SECRET"`
	DeviceID            string        `env:"GLSDK_DEVICE_ID" envDefault:"DEVICE_NOT_SET"`
	GameLevel           string        `env:"GLSDK_GAME_LEVEL" envDefault:"TEST"`
	DispatchInterval    time.Duration `env:"GLSDK_DISPATCH_INTERVAL" envDefault:"10s"`
	TimePlayedInterval  time.Duration `env:"GLSDK_TIME_PLAYED_INTERVAL" envDefault:"5s"`
	PollMatchesInterval time.Duration `env:"GLSDK_POLL_MATCHES_INTERVAL" envDefault:"10s"`
	LocalLogging        bool          `env:"GLSDK_LOCAL_LOGGING" envDefault:"false"`

	LogLevel    string `env:"GLSDK_LOG_LEVEL" envDefault:"info"`
	HTTPTimeout int    `env:"GLSDK_HTTP_TIMEOUT" envDefault:"30"`
	Storage     string `env:"GLSDK_STORAGE" envDefault:"memory"`
	SQLitePath  string `env:"GLSDK_SQLITE_PATH" envDefault:"glsdk.db"`

	RedisHost     string `env:"GLSDK_REDIS_HOST" envDefault:"localhost"`
	RedisPort     int    `env:"GLSDK_REDIS_PORT" envDefault:"6379"`
	RedisDB       int    `env:"GLSDK_REDIS_DB" envDefault:"0"`
	RedisPassword string `env:"GLSDK_REDIS_PASSWORD"`
	RedisPrefix   string `env:"GLSDK_REDIS_PREFIX" envDefault:"glsdk"`
}

// FromEnv builds an SdkConfig from GLSDK_* environment variables on top of Default()
func FromEnv() (*SdkConfig, error) {
	var ec envConfig
	if err := env.Parse(&ec); err != nil {
		return nil, err
	}

	cfg := Default()
	cfg.Options.URI = ec.URI
	cfg.Options.GameID = ec.GameID
	cfg.Options.GameVersion = ec.GameVersion
	cfg.Options.GameSecret = ec.GameSecret
	cfg.Options.DeviceID = ec.DeviceID
	cfg.Options.GameLevel = ec.GameLevel
	cfg.Options.DispatchQueueUpdateInterval = ec.DispatchInterval
	cfg.Options.SendTotalTimePlayedInterval = ec.TimePlayedInterval
	cfg.Options.PollMatchesInterval = ec.PollMatchesInterval
	cfg.Options.LocalLogging = ec.LocalLogging

	cfg.LoggerConfig.LogLevel = ParseLogLevel(ec.LogLevel)
	cfg.Advanced.HTTPTimeout = ec.HTTPTimeout
	cfg.Advanced.Storage = ec.Storage
	cfg.Advanced.SQLitePath = ec.SQLitePath
	cfg.Advanced.Redis = RedisConfig{
		Host:     ec.RedisHost,
		Port:     ec.RedisPort,
		Database: ec.RedisDB,
		Password: ec.RedisPassword,
		Prefix:   ec.RedisPrefix,
	}

	return cfg, Normalize(cfg)
}

// ParseLogLevel maps a level name to a go-toolkit log level. Unknown names map to info.
func ParseLogLevel(level string) int {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "none", "off":
		return logging.LevelNone
	case "error":
		return logging.LevelError
	case "warn", "warning":
		return logging.LevelWarning
	case "debug":
		return logging.LevelDebug
	case "verbose", "trace":
		return logging.LevelVerbose
	case "all":
		return logging.LevelAll
	default:
		return logging.LevelInfo
	}
}
