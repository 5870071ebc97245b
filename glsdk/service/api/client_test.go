package api

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/glasslab/go-glsdk/glsdk/conf"
	"github.com/glasslab/go-glsdk/glsdk/constants"
	"github.com/glasslab/go-glsdk/glsdk/dtos"
	"github.com/glasslab/go-glsdk/glsdk/service"
	"github.com/splitio/go-toolkit/v5/logging"
)

func newTestTransport(uri string, update conf.OptionsUpdate) *HTTPTransport {
	cfg := conf.Default()
	opts := conf.DefaultOptions()
	opts.URI = uri
	store := conf.NewStore(opts)
	store.Set(update)
	return NewHTTPTransport(cfg, store, dtos.Metadata{
		SDKVersion:  "go-1.2.0",
		MachineIP:   "127.0.0.1",
		MachineName: "SOME_MACHINE_NAME",
	}, logging.NewLogger(&logging.LoggerOptions{}))
}

func TestGet(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("GLSDK-Version") != "go-1.2.0" {
			t.Error("SDK Version HEADER not match")
		}
		if r.Header.Get("GLSDK-Machine-IP") != "127.0.0.1" {
			t.Error("SDK Machine HEADER not match")
		}
		if r.Header.Get("Game-Secret") != "" {
			t.Error("Game-Secret should not be sent when not configured")
		}
		fmt.Fprintln(w, "Hello, client")
	}))
	defer ts.Close()

	transport := newTestTransport(ts.URL, conf.OptionsUpdate{})
	resp, err := transport.Send(context.Background(), &service.Request{APIKey: constants.Connect, Method: "GET", Path: "/sdk/connect"})
	if err != nil {
		t.Fatal(err)
	}

	if resp.StatusCode != 200 || string(resp.Body) != "Hello, client\n" {
		t.Error("Given message failed ")
	}
}

func TestGetGZIP(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Content-Encoding", "gzip")

		gzw := gzip.NewWriter(w)
		defer gzw.Close()
		fmt.Fprintln(gzw, "Hello, client")
	}))
	defer ts.Close()

	transport := newTestTransport(ts.URL, conf.OptionsUpdate{})
	resp, err := transport.Send(context.Background(), &service.Request{APIKey: constants.Connect, Method: "GET", Path: "/"})
	if err != nil {
		t.Fatal(err)
	}

	if string(resp.Body) != "Hello, client\n" {
		t.Error("Given message failed ")
	}
}

func TestPostJSON(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/api/v2/data/events" {
			t.Error("Invalid request", r.Method, r.URL.Path)
		}
		if r.Header.Get("Content-Type") != constants.ContentTypeJSON {
			t.Error("Wrong content type", r.Header.Get("Content-Type"))
		}
		if r.Header.Get("Game-Secret") != "s3cr3t" {
			t.Error("Game-Secret HEADER not match")
		}

		var event map[string]interface{}
		raw, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(raw, &event); err != nil {
			t.Error(err)
		}
		if event["eventName"] != "A" || event["gameSessionId"] != "S1" {
			t.Error("Posted event arrived mal-formed", string(raw))
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	transport := newTestTransport(ts.URL+"/", conf.OptionsUpdate{GameSecret: conf.String("s3cr3t")})
	event := &dtos.TelemEventDTO{EventName: "A"}
	event.BindSessions("S1", "")
	body, err := service.Do(context.Background(), transport, &service.Request{
		APIKey:      constants.SaveTelemEvent,
		Method:      "POST",
		Path:        "/api/v2/data/events",
		ContentType: constants.ContentTypeJSON,
		Body:        event,
	})
	if err != nil {
		t.Error(err)
	}
	if len(body) != 0 {
		t.Error("No content expected")
	}
}

func TestFormBodies(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case "GET":
			if r.URL.Query().Get("showMembers") != "1" {
				t.Error("Form body of a GET should travel as query string", r.URL.RawQuery)
			}
		case "POST":
			if err := r.ParseForm(); err != nil {
				t.Error(err)
			}
			if r.PostForm.Get("username") != "player" || r.PostForm.Get("password") != "pw" {
				t.Error("Form body arrived mal-formed", r.PostForm)
			}
		}
		fmt.Fprint(w, "{}")
	}))
	defer ts.Close()

	transport := newTestTransport(ts.URL, conf.OptionsUpdate{})
	_, err := service.Do(context.Background(), transport, &service.Request{
		APIKey:      constants.GetCourses,
		Method:      "GET",
		Path:        "/api/v2/lms/courses",
		ContentType: constants.ContentTypeForm,
		Body:        map[string]string{"showMembers": "1"},
	})
	if err != nil {
		t.Error(err)
	}

	_, err = service.Do(context.Background(), transport, &service.Request{
		APIKey:      constants.Login,
		Method:      "POST",
		Path:        "/api/v2/auth/login/glasslab",
		ContentType: constants.ContentTypeForm,
		Body:        url.Values{"username": {"player"}, "password": {"pw"}},
	})
	if err != nil {
		t.Error(err)
	}

	_, err = transport.Send(context.Background(), &service.Request{
		APIKey:      constants.Login,
		Method:      "POST",
		Path:        "/",
		ContentType: constants.ContentTypeForm,
		Body:        42,
	})
	if err == nil {
		t.Error("Unsupported form bodies should fail before sending")
	}
}

func TestErrorStatusIsSurfacedWithBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":"not logged in"}`)
	}))
	defer ts.Close()

	transport := newTestTransport(ts.URL, conf.OptionsUpdate{})
	_, err := service.Do(context.Background(), transport, &service.Request{APIKey: constants.GetPlayerInfo, Method: "GET", Path: "/"})

	var httpErr *service.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatal("Expected an HTTPError. Got:", err)
	}
	if httpErr.StatusCode != 401 || string(httpErr.Body) != `{"error":"not logged in"}` {
		t.Error("Raw response should be preserved", httpErr)
	}
}

func TestNotModifiedIsSuccess(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotModified)
	}))
	defer ts.Close()

	transport := newTestTransport(ts.URL, conf.OptionsUpdate{})
	if _, err := service.Do(context.Background(), transport, &service.Request{APIKey: constants.GetSaveGame, Method: "GET", Path: "/"}); err != nil {
		t.Error("304 should map to success", err)
	}
}

func TestNetworkFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	uri := ts.URL
	ts.Close()

	transport := newTestTransport(uri, conf.OptionsUpdate{})
	_, err := service.Do(context.Background(), transport, &service.Request{APIKey: constants.Connect, Method: "GET", Path: "/"})
	if err == nil {
		t.Error("Request to a closed server should fail")
	}
	var httpErr *service.HTTPError
	if errors.As(err, &httpErr) {
		t.Error("Network failures are not HTTP errors")
	}
}

func TestSessionCookiePersists(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/login" {
			http.SetCookie(w, &http.Cookie{Name: "connect.sid", Value: "abc", Path: "/"})
			return
		}
		if c, err := r.Cookie("connect.sid"); err != nil || c.Value != "abc" {
			w.WriteHeader(http.StatusUnauthorized)
		}
	}))
	defer ts.Close()

	transport := newTestTransport(ts.URL, conf.OptionsUpdate{})
	ctx := context.Background()
	if _, err := service.Do(ctx, transport, &service.Request{APIKey: constants.Login, Method: "POST", Path: "/login"}); err != nil {
		t.Fatal(err)
	}
	if _, err := service.Do(ctx, transport, &service.Request{APIKey: constants.GetAuthStatus, Method: "GET", Path: "/status"}); err != nil {
		t.Error("Session cookie should be sent on following requests", err)
	}
}
