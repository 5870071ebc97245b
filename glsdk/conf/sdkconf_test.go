package conf

import (
	"testing"
	"time"

	"github.com/splitio/go-toolkit/v5/logging"
)

func TestSdkConfNormalization(t *testing.T) {
	cfg := Default()
	cfg.Advanced.Storage = "invalid_mode"
	err := Normalize(cfg)
	if err == nil {
		t.Error("Should throw an error when setting an invalid storage mode")
	}

	cfg = Default()
	cfg.Options.URI = ""
	err = Normalize(cfg)
	if err == nil {
		t.Error("Should throw an error if no URI is passed and local logging is disabled")
	}

	cfg.Options.LocalLogging = true
	err = Normalize(cfg)
	if err != nil {
		t.Error("Empty URI should be accepted in local logging mode", err)
	}

	cfg = Default()
	cfg.Options.URI = "https://developer.example.org/"
	err = Normalize(cfg)
	if err != nil {
		t.Error("Should not return an error with proper parameters")
	}
	if cfg.Options.URI != "https://developer.example.org" {
		t.Error("Trailing slash should be trimmed. Got:", cfg.Options.URI)
	}

	cfg = Default()
	cfg.Options.URI = "not a uri"
	if Normalize(cfg) == nil {
		t.Error("Should reject a malformed URI")
	}
}

func TestNormalizeRestoresDefaults(t *testing.T) {
	cfg := Default()
	cfg.Options.DispatchQueueUpdateInterval = 0
	cfg.Options.SendTotalTimePlayedInterval = -1
	cfg.Options.PollMatchesInterval = 0
	cfg.Advanced.HTTPTimeout = 0
	cfg.Advanced.Storage = ""

	if err := Normalize(cfg); err != nil {
		t.Error("It should not return err", err)
	}

	if cfg.Options.DispatchQueueUpdateInterval != 10*time.Second ||
		cfg.Options.SendTotalTimePlayedInterval != 5*time.Second ||
		cfg.Options.PollMatchesInterval != 10*time.Second {
		t.Error("Intervals should fall back to defaults", cfg.Options)
	}
	if cfg.Advanced.HTTPTimeout != 30 {
		t.Error("HTTP timeout should fall back to 30")
	}
	if cfg.Advanced.Storage != StorageMemory {
		t.Error("Storage should fall back to memory")
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("GLSDK_URI", "https://games.example.org")
	t.Setenv("GLSDK_GAME_ID", "SC")
	t.Setenv("GLSDK_DISPATCH_INTERVAL", "500ms")
	t.Setenv("GLSDK_LOCAL_LOGGING", "true")
	t.Setenv("GLSDK_LOG_LEVEL", "debug")
	t.Setenv("GLSDK_STORAGE", "sqlite")
	t.Setenv("GLSDK_SQLITE_PATH", "/tmp/some.db")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Options.URI != "https://games.example.org" || cfg.Options.GameID != "SC" {
		t.Error("Connection options not loaded", cfg.Options)
	}
	if cfg.Options.DispatchQueueUpdateInterval != 500*time.Millisecond {
		t.Error("Dispatch interval not loaded", cfg.Options.DispatchQueueUpdateInterval)
	}
	if !cfg.Options.LocalLogging {
		t.Error("Local logging should be enabled")
	}
	if cfg.LoggerConfig.LogLevel != logging.LevelDebug {
		t.Error("Log level should be debug")
	}
	if cfg.Advanced.Storage != StorageSQLite || cfg.Advanced.SQLitePath != "/tmp/some.db" {
		t.Error("Storage options not loaded", cfg.Advanced)
	}
}

func TestFromEnvInvalidStorage(t *testing.T) {
	t.Setenv("GLSDK_STORAGE", "cassandra")
	if _, err := FromEnv(); err == nil {
		t.Error("Unknown storage should fail normalization")
	}
}
