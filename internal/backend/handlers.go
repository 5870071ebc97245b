package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"

	"github.com/glasslab/go-glsdk/glsdk/dtos"
	"github.com/go-chi/chi/v5"
)

type userContextKey struct{}

func userFromContext(ctx context.Context) string {
	user, _ := ctx.Value(userContextKey{}).(string)
	return user
}

func (s *Server) currentUser(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		return "", false
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()
	user, ok := s.logins[cookie.Value]
	return user, ok
}

func (s *Server) requireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := s.currentUser(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "not logged in")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userContextKey{}, user)))
	})
}

func (s *Server) requireSecret(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.GameSecret != "" && r.Header.Get("Game-Secret") != s.cfg.GameSecret {
			writeError(w, http.StatusForbidden, "invalid game secret")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) connect(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ** AUTH **

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	username := r.PostForm.Get("username")
	password, ok := s.cfg.Users[username]
	if !ok || password != r.PostForm.Get("password") {
		writeError(w, http.StatusUnauthorized, "invalid username or password")
		return
	}

	token := newID()
	s.mutex.Lock()
	s.logins[token] = username
	s.mutex.Unlock()

	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: token, Path: "/", HttpOnly: true})
	writeJSON(w, http.StatusOK, map[string]string{"username": username})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		s.mutex.Lock()
		delete(s.logins, cookie.Value)
		s.mutex.Unlock()
	}
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "", Path: "/", MaxAge: -1})
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) authStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged in"})
}

func (s *Server) userProfile(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"username": userFromContext(r.Context()), "role": "student"})
}

// ** COURSES **

func (s *Server) enroll(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	code := r.PostForm.Get("courseCode")
	user := userFromContext(r.Context())

	s.mutex.Lock()
	defer s.mutex.Unlock()
	for _, c := range s.courses {
		if c.Code != code {
			continue
		}
		for _, member := range c.Members {
			if member == user {
				writeError(w, http.StatusBadRequest, "already enrolled")
				return
			}
		}
		c.Members = append(c.Members, user)
		writeJSON(w, http.StatusOK, c)
		return
	}
	writeError(w, http.StatusNotFound, "invalid course code")
}

func (s *Server) unenroll(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	user := userFromContext(r.Context())

	s.mutex.Lock()
	defer s.mutex.Unlock()
	c, ok := s.courses[r.PostForm.Get("courseId")]
	if !ok {
		writeError(w, http.StatusNotFound, "course not found")
		return
	}
	members := c.Members[:0]
	for _, member := range c.Members {
		if member != user {
			members = append(members, member)
		}
	}
	c.Members = members
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) courseView(c *course, showMembers bool) course {
	view := course{ID: c.ID, Code: c.Code, Title: c.Title}
	if showMembers {
		view.Members = append([]string(nil), c.Members...)
	}
	return view
}

func (s *Server) listCourses(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	showMembers := r.URL.Query().Get("showMembers") == "1"

	s.mutex.Lock()
	defer s.mutex.Unlock()
	courses := make([]course, 0)
	for _, c := range s.courses {
		for _, member := range c.Members {
			if member == user {
				courses = append(courses, s.courseView(c, showMembers))
				break
			}
		}
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].ID < courses[j].ID })
	writeJSON(w, http.StatusOK, courses)
}

func (s *Server) courseInfo(w http.ResponseWriter, r *http.Request) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	c, ok := s.courses[chi.URLParam(r, "courseId")]
	if !ok {
		writeError(w, http.StatusNotFound, "course not found")
		return
	}
	writeJSON(w, http.StatusOK, s.courseView(c, r.URL.Query().Get("showMembers") == "1"))
}

// ** SESSIONS & TELEMETRY **

func (s *Server) gameConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.cfg.EventsConfig)
}

func (s *Server) startPlaySession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dtos.PlaySessionStartedDTO{PlaySessionID: newID()})
}

func (s *Server) startSession(w http.ResponseWriter, r *http.Request) {
	var req dtos.StartSessionDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.GameID == "" {
		writeError(w, http.StatusBadRequest, "missing gameId")
		return
	}

	id := newID()
	s.mutex.Lock()
	s.gameSessions[id] = true
	s.mutex.Unlock()
	writeJSON(w, http.StatusOK, dtos.SessionStartedDTO{GameSessionID: id})
}

func (s *Server) endSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		GameSessionID string `json:"gameSessionId"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()
	if !s.gameSessions[req.GameSessionID] {
		writeError(w, http.StatusBadRequest, "unknown game session")
		return
	}
	delete(s.gameSessions, req.GameSessionID)
	writeJSON(w, http.StatusOK, map[string]int64{"endedAt": now()})
}

func (s *Server) saveEvent(w http.ResponseWriter, r *http.Request) {
	var event ReceivedEvent
	if !decodeJSON(w, r, &event) {
		return
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()
	if !s.gameSessions[event.GameSessionID] {
		writeError(w, http.StatusBadRequest, "unknown game session")
		return
	}
	s.events = append(s.events, event)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ** PLAYER DATA **

func playerKey(r *http.Request) string {
	return userFromContext(r.Context()) + "/" + chi.URLParam(r, "gameId")
}

func (s *Server) playInfo(w http.ResponseWriter, r *http.Request) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"totalTimePlayed": s.timePlayed[playerKey(r)],
		"username":        userFromContext(r.Context()),
	})
}

func (s *Server) setTotalTimePlayed(w http.ResponseWriter, r *http.Request) {
	var req dtos.TotalTimePlayedDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	s.mutex.Lock()
	s.timePlayed[playerKey(r)] = req.SetTime
	s.mutex.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) saveAchievement(w http.ResponseWriter, r *http.Request) {
	var req dtos.AchievementDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Item == "" {
		writeError(w, http.StatusBadRequest, "missing item")
		return
	}
	key := playerKey(r)
	s.mutex.Lock()
	s.achievements[key] = append(s.achievements[key], req)
	s.mutex.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) getAchievements(w http.ResponseWriter, r *http.Request) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	achievements := append([]dtos.AchievementDTO{}, s.achievements[playerKey(r)]...)
	writeJSON(w, http.StatusOK, achievements)
}

func (s *Server) postSaveGame(w http.ResponseWriter, r *http.Request) {
	var data json.RawMessage
	if !decodeJSON(w, r, &data) {
		return
	}
	s.mutex.Lock()
	s.saves[playerKey(r)] = data
	s.mutex.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) getSaveGame(w http.ResponseWriter, r *http.Request) {
	s.mutex.Lock()
	data, ok := s.saves[playerKey(r)]
	s.mutex.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "no saved game")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// ** MATCHES **

func (s *Server) createMatch(w http.ResponseWriter, r *http.Request) {
	var req dtos.CreateMatchDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.Invitees) == 0 {
		writeError(w, http.StatusBadRequest, "no invitees")
		return
	}

	match := &dtos.Match{
		ID:      newID(),
		Players: append([]string{userFromContext(r.Context())}, req.Invitees...),
		Status:  dtos.MatchActive,
		Turns:   []json.RawMessage{},
	}
	s.mutex.Lock()
	s.matches[match.ID] = match
	s.mutex.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"matchId": match.ID})
}

func (s *Server) submitTurn(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MatchID        string          `json:"matchId"`
		TurnData       json.RawMessage `json:"turnData"`
		NextPlayerTurn string          `json:"nextPlayerTurn"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	user := userFromContext(r.Context())

	s.mutex.Lock()
	defer s.mutex.Unlock()
	match, ok := s.matches[req.MatchID]
	if !ok || !isPlayer(match, user) {
		writeError(w, http.StatusNotFound, "match not found")
		return
	}
	if match.Status == dtos.MatchClosed {
		writeError(w, http.StatusBadRequest, "match is closed")
		return
	}
	match.Turns = append(match.Turns, req.TurnData)
	if req.NextPlayerTurn == "" {
		match.Status = dtos.MatchClosed
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"matchId": match.ID, "turns": len(match.Turns)})
}

func (s *Server) listMatches(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	s.mutex.Lock()
	defer s.mutex.Unlock()
	matches := make(map[string]dtos.Match)
	for id, match := range s.matches {
		if isPlayer(match, user) {
			matches[id] = *match
		}
	}
	writeJSON(w, http.StatusOK, matches)
}

func isPlayer(match *dtos.Match, user string) bool {
	for _, player := range match.Players {
		if player == user {
			return true
		}
	}
	return false
}
