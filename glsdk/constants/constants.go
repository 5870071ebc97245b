package constants

// API keys name the logical operation carried by a request
const (
	// Connect connect
	Connect = "connect"
	// GetConfig getConfig
	GetConfig = "getConfig"
	// Login login
	Login = "login"
	// Logout logout
	Logout = "logout"
	// GetAuthStatus getAuthStatus
	GetAuthStatus = "getAuthStatus"
	// GetPlayerInfo getPlayerInfo
	GetPlayerInfo = "getPlayerInfo"
	// GetUserInfo getUserInfo
	GetUserInfo = "getUserInfo"
	// Enroll enroll
	Enroll = "enroll"
	// Unenroll unenroll
	Unenroll = "unenroll"
	// GetCourses getCourses
	GetCourses = "getCourses"
	// GetCourse getCourse
	GetCourse = "getCourse"
	// StartPlaySession startPlaySession
	StartPlaySession = "startPlaySession"
	// StartSession startSession
	StartSession = "startSession"
	// EndSession endSession
	EndSession = "endSession"
	// SaveTelemEvent saveTelemEvent
	SaveTelemEvent = "saveTelemEvent"
	// SaveAchievement saveAchievement
	SaveAchievement = "saveAchievement"
	// GetAchievements getAchievements
	GetAchievements = "getAchievements"
	// PostSaveGame postSaveGame
	PostSaveGame = "postSaveGame"
	// GetSaveGame getSaveGame
	GetSaveGame = "getSaveGame"
	// SendTotalTimePlayed sendTotalTimePlayed
	SendTotalTimePlayed = "sendTotalTimePlayed"
	// CreateMatch createMatch
	CreateMatch = "createMatch"
	// UpdateMatch updateMatch
	UpdateMatch = "updateMatch"
	// PollMatches pollMatches
	PollMatches = "pollMatches"
)

const (
	// ContentTypeJSON is used for JSON encoded bodies
	ContentTypeJSON = "application/json"
	// ContentTypeForm is used for URL-encoded bodies
	ContentTypeForm = "application/x-www-form-urlencoded"
)

// StartUnitEvent is the telemetry event implicitly queued when a game session starts
const StartUnitEvent = "Game_start_unit"

// Keys of the local key-value mirror
const (
	DisplayLogsKey    = "displayLogs"
	LocalTelemetryKey = "localTelemetry"
	DeviceIDKey       = "deviceId"
)
