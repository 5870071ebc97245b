// Package backend is an in-memory game services backend. It implements the subset of the API
// the SDK talks to and is used by the SDK end-to-end tests and the glsdk-backend command.
package backend

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/glasslab/go-glsdk/glsdk/dtos"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog/v3"
	"github.com/oklog/ulid/v2"
)

const sessionCookie = "glsdk.sid"

// Config sets up the backend
type Config struct {
	// Users maps usernames to passwords
	Users map[string]string
	// GameSecret, when set, is required in the Game-Secret header of every data call
	GameSecret string
	// EventsConfig is served by the config endpoint
	EventsConfig map[string]int
	Logger       *slog.Logger
}

// ReceivedEvent is a telemetry event accepted by the backend
type ReceivedEvent struct {
	GameSessionID         string          `json:"gameSessionId"`
	GameSessionEventOrder int64           `json:"gameSessionEventOrder"`
	PlaySessionID         string          `json:"playSessionId"`
	PlaySessionEventOrder int64           `json:"playSessionEventOrder"`
	EventName             string          `json:"eventName"`
	EventData             json.RawMessage `json:"eventData"`
	GameID                string          `json:"gameId"`
	DeviceID              string          `json:"deviceId"`
}

type course struct {
	ID      string   `json:"id"`
	Code    string   `json:"code"`
	Title   string   `json:"title"`
	Members []string `json:"members,omitempty"`
}

// Server keeps the backend state
type Server struct {
	cfg    Config
	mutex  sync.Mutex
	logins map[string]string
	// open game sessions
	gameSessions map[string]bool
	events       []ReceivedEvent
	achievements map[string][]dtos.AchievementDTO
	saves        map[string]json.RawMessage
	timePlayed   map[string]int64
	matches      map[string]*dtos.Match
	courses      map[string]*course
	calls        map[string]int
}

// New creates a backend
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if cfg.EventsConfig == nil {
		cfg.EventsConfig = map[string]int{
			"eventsDetailLevel": 10,
			"eventsPeriodSecs":  30,
			"eventsMinSize":     5,
			"eventsMaxSize":     100,
		}
	}
	return &Server{
		cfg:          cfg,
		logins:       make(map[string]string),
		gameSessions: make(map[string]bool),
		achievements: make(map[string][]dtos.AchievementDTO),
		saves:        make(map[string]json.RawMessage),
		timePlayed:   make(map[string]int64),
		matches:      make(map[string]*dtos.Match),
		courses: map[string]*course{
			"c1": {ID: "c1", Code: "ABC12", Title: "Intro to Systems"},
		},
		calls: make(map[string]int),
	}
}

// Router returns the HTTP handler of the backend
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(httplog.RequestLogger(s.cfg.Logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.Schema{ResponseStatus: "status", ResponseDuration: "duration_ms"},
		LogExtraAttrs: func(req *http.Request, _ string, _ int) []slog.Attr {
			return []slog.Attr{slog.String("request_id", chimw.GetReqID(req.Context()))}
		},
	}))
	r.Use(chimw.Compress(5, "application/json"))
	r.Use(s.countCalls)

	r.Get("/sdk/connect", s.connect)

	r.Route("/api/v2", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login/glasslab", s.login)
			r.Post("/logout", s.logout)
			r.With(s.requireLogin).Get("/login/status", s.authStatus)
			r.With(s.requireLogin).Get("/user/profile", s.userProfile)
		})

		r.Route("/lms", func(r chi.Router) {
			r.Use(s.requireLogin)
			r.Post("/course/enroll", s.enroll)
			r.Post("/course/unenroll", s.unenroll)
			r.Get("/courses", s.listCourses)
			r.Get("/course/{courseId}/info", s.courseInfo)
		})

		r.Route("/data", func(r chi.Router) {
			r.Use(s.requireSecret)
			r.Get("/config/{gameId}", s.gameConfig)
			r.Get("/playSession/start", s.startPlaySession)
			r.Post("/session/start", s.startSession)
			r.Post("/session/end", s.endSession)
			r.Post("/events", s.saveEvent)

			r.Route("/game/{gameId}", func(r chi.Router) {
				r.Use(s.requireLogin)
				r.Get("/", s.getSaveGame)
				r.Post("/", s.postSaveGame)
				r.Get("/playInfo", s.playInfo)
				r.Post("/totalTimePlayed", s.setTotalTimePlayed)
				r.Post("/achievement", s.saveAchievement)
				r.Get("/achievements", s.getAchievements)
				r.Post("/create", s.createMatch)
				r.Post("/submit", s.submitTurn)
				r.Get("/matches", s.listMatches)
			})
		})
	})
	return r
}

// Events returns the telemetry events accepted so far, in arrival order
func (s *Server) Events() []ReceivedEvent {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	events := make([]ReceivedEvent, len(s.events))
	copy(events, s.events)
	return events
}

// TotalTimePlayed returns the last time played pushed for a user and game
func (s *Server) TotalTimePlayed(username string, gameID string) int64 {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.timePlayed[username+"/"+gameID]
}

// Calls returns how many requests reached the given route pattern, e.g. "POST /api/v2/data/events"
func (s *Server) Calls(route string) int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.calls[route]
}

func (s *Server) countCalls(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r)
		rc := chi.RouteContext(r.Context())
		route := r.URL.Path
		if rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		s.mutex.Lock()
		s.calls[r.Method+" "+route]++
		s.mutex.Unlock()
	})
}

func newID() string {
	return ulid.Make().String()
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, out interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body: "+err.Error())
		return false
	}
	return true
}

func now() int64 {
	return time.Now().UnixMilli()
}
