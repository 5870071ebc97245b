package dtos

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestUnboundSessionRefDoesNotSerialize(t *testing.T) {
	event := TelemEventDTO{EventName: "A"}
	_, err := json.Marshal(event)
	if !errors.Is(err, ErrUnboundSessionRef) {
		t.Error("Serializing an event before binding its session should fail. Got:", err)
	}
}

func TestBindSessions(t *testing.T) {
	var binder SessionBinder = &TelemEventDTO{EventName: "A", GameSessionEventOrder: 3}
	binder.BindSessions("S1", "P1")

	raw, err := json.Marshal(binder)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), `"gameSessionId":"S1"`) || !strings.Contains(string(raw), `"playSessionId":"P1"`) {
		t.Error("Bound ids missing from payload:", string(raw))
	}

	var decoded TelemEventDTO
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatal(err)
	}
	if !decoded.GameSessionID.Bound() || decoded.GameSessionID.ID() != "S1" || decoded.GameSessionEventOrder != 3 {
		t.Error("Decoded event does not match", decoded)
	}
}

func TestEndSessionBindsOnlyGameSession(t *testing.T) {
	end := &EndSessionDTO{Timestamp: 10}
	end.BindSessions("S9", "ignored")
	raw, err := json.Marshal(end)
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) != `{"gameSessionId":"S9","timestamp":10}` {
		t.Error("Unexpected payload", string(raw))
	}
}
