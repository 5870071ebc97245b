package conf

import "time"

const (
	defaultURI                 = "http://localhost:8001"
	defaultGameID              = "TEST"
	defaultGameVersion         = "VERSION_NOT_SET"
	defaultDeviceID            = "DEVICE_NOT_SET"
	defaultGameLevel           = "TEST"
	defaultDispatchInterval    = 10 * time.Second
	defaultTimePlayedInterval  = 5 * time.Second
	defaultPollMatchesInterval = 10 * time.Second
	defaultEventsDetailLevel   = 10
	defaultEventsPeriodSecs    = 30
	defaultEventsMinSize       = 5
	defaultEventsMaxSize       = 100
	defaultHTTPTimeout         = 30
	defaultSQLitePath          = "glsdk.db"
	defaultRedisHost           = "localhost"
	defaultRedisPort           = 6379
	defaultRedisPrefix         = "glsdk"
)

// DefaultDeviceID is the placeholder device id used until a device-id provider assigns a real one
const DefaultDeviceID = defaultDeviceID

// Storage modes for the local key-value mirror
const (
	StorageMemory = "memory"
	StorageSQLite = "sqlite"
	StorageRedis  = "redis"
)
