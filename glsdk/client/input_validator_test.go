package client

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/splitio/go-toolkit/v5/logging"
)

type MockWriter struct {
	mutex    sync.RWMutex
	messages []string
}

func (m *MockWriter) Write(p []byte) (n int, err error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.messages = append(m.messages, string(p[:]))
	return len(p), nil
}

func (m *MockWriter) Matches(expected string) bool {
	m.mutex.Lock()
	defer func() {
		m.messages = make([]string, 0)
		m.mutex.Unlock()
	}()
	for _, msg := range m.messages {
		if strings.Contains(msg, expected) {
			return true
		}
	}
	return false
}

var mW MockWriter

func getMockedLogger() logging.LoggerInterface {
	return logging.NewLogger(&logging.LoggerOptions{
		LogLevel:      5,
		ErrorWriter:   &mW,
		WarningWriter: &mW,
		InfoWriter:    nil,
		DebugWriter:   nil,
		VerboseWriter: nil,
	})
}

func TestValidateEventName(t *testing.T) {
	validator := inputValidation{logger: getMockedLogger()}

	name, err := validator.ValidateEventName("  Level_up ")
	if err != nil || name != "Level_up" {
		t.Error("Event name should be trimmed")
	}
	if !mW.Matches("SaveTelemEvent: eventName '  Level_up ' has extra whitespace, trimming") {
		t.Error("Wrong message")
	}

	_, err = validator.ValidateEventName("")
	if !errors.Is(err, ErrInvalidArgument) {
		t.Error("Empty event names should be rejected")
	}
	if !mW.Matches("SaveTelemEvent: eventName must be a non-empty string") {
		t.Error("Wrong message")
	}
}

func TestValidateAchievement(t *testing.T) {
	validator := inputValidation{logger: getMockedLogger()}

	item, group, subGroup, err := validator.ValidateAchievement("Gold", " Badges ", "")
	if err != nil || item != "Gold" || group != "Badges" || subGroup != "" {
		t.Error("Unexpected achievement", item, group, subGroup, err)
	}

	if _, _, _, err = validator.ValidateAchievement(" ", "Badges", "x"); !errors.Is(err, ErrInvalidArgument) {
		t.Error("Achievements without item should be rejected")
	}
}

func TestValidateInvitees(t *testing.T) {
	validator := inputValidation{logger: getMockedLogger()}

	invitees, err := validator.ValidateInvitees([]string{"bo", "", "cy", "bo"})
	if err != nil {
		t.Error("It should not return err")
	}
	if len(invitees) != 2 || invitees[0] != "bo" || invitees[1] != "cy" {
		t.Error("Unexpected invitees", invitees)
	}
	if !mW.Matches("CreateMatch: invitee bo is duplicated, discarding") {
		t.Error("Wrong message")
	}

	if _, err = validator.ValidateInvitees(nil); !errors.Is(err, ErrInvalidArgument) {
		t.Error("Empty invitees should be rejected")
	}
}

func TestValidateMatchID(t *testing.T) {
	validator := inputValidation{logger: getMockedLogger()}
	if _, err := validator.ValidateMatchID("UpdateMatch", "\t"); !errors.Is(err, ErrInvalidArgument) {
		t.Error("Blank match ids should be rejected")
	}
	if id, err := validator.ValidateMatchID("UpdateMatch", "m1"); err != nil || id != "m1" {
		t.Error("Valid match id rejected")
	}
}
