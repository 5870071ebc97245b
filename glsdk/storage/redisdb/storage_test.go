package redisdb

import (
	"os"
	"strconv"
	"testing"

	"github.com/glasslab/go-glsdk/glsdk/conf"
	"github.com/splitio/go-toolkit/v5/logging"
)

// Requires a running redis. Set GLSDK_TEST_REDIS_HOST (and optionally GLSDK_TEST_REDIS_PORT) to run it.
func TestRedisLocalStorage(t *testing.T) {
	host := os.Getenv("GLSDK_TEST_REDIS_HOST")
	if host == "" {
		t.Skip("GLSDK_TEST_REDIS_HOST not set")
	}
	port := 6379
	if raw := os.Getenv("GLSDK_TEST_REDIS_PORT"); raw != "" {
		port, _ = strconv.Atoi(raw)
	}

	local, err := NewRedisLocalStorage(conf.RedisConfig{Host: host, Port: port, Prefix: "glsdk-test"}, logging.NewLogger(&logging.LoggerOptions{}))
	if err != nil {
		t.Fatal(err)
	}
	defer local.Close()
	defer local.Delete("localTelemetry")
	defer local.Delete("displayLogs")

	local.Delete("localTelemetry")
	if _, exists, err := local.Get("localTelemetry"); err != nil || exists {
		t.Error("Key should not exist", err)
	}

	local.Append("localTelemetry", "a;")
	local.Append("localTelemetry", "b;")
	if value, _, _ := local.Get("localTelemetry"); value != "a;b;" {
		t.Error("Append should concatenate values. Got:", value)
	}

	local.Set("displayLogs", "1")
	if value, exists, _ := local.Get("displayLogs"); !exists || value != "1" {
		t.Error("Stored value not returned")
	}
}

func TestRedisLocalStorageUnreachable(t *testing.T) {
	_, err := NewRedisLocalStorage(conf.RedisConfig{Host: "127.0.0.1", Port: 1}, logging.NewLogger(&logging.LoggerOptions{}))
	if err == nil {
		t.Error("Connecting to a closed port should fail")
	}
}
