package client

import (
	"errors"
	"fmt"
	"strings"

	"github.com/splitio/go-toolkit/v5/datastructures/set"
	"github.com/splitio/go-toolkit/v5/logging"
)

// ErrInvalidArgument is wrapped by every error caused by a bad argument. Rejected calls never
// reach the backend nor the dispatch queue.
var ErrInvalidArgument = errors.New("invalid argument")

// inputValidation struct is responsible for checking the arguments of the client operations
type inputValidation struct {
	logger logging.LoggerInterface
}

func (i *inputValidation) invalid(operation string, format string, args ...interface{}) error {
	err := fmt.Errorf("%w: %s: %s", ErrInvalidArgument, operation, fmt.Sprintf(format, args...))
	i.logger.Error(err.Error())
	return err
}

// checkNotEmpty returns the trimmed value, failing when nothing is left
func (i *inputValidation) checkNotEmpty(operation string, name string, value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", i.invalid(operation, "%s must be a non-empty string", name)
	}
	if trimmed != value {
		i.logger.Warning(fmt.Sprintf("%s: %s '%s' has extra whitespace, trimming", operation, name, value))
	}
	return trimmed, nil
}

// ValidateEventName validates the name of a telemetry event
func (i *inputValidation) ValidateEventName(name string) (string, error) {
	return i.checkNotEmpty("SaveTelemEvent", "eventName", name)
}

// ValidateAchievement validates the achievement identifiers. Only the item is mandatory.
func (i *inputValidation) ValidateAchievement(item string, group string, subGroup string) (string, string, string, error) {
	item, err := i.checkNotEmpty("SaveAchievement", "item", item)
	if err != nil {
		return "", "", "", err
	}
	return item, strings.TrimSpace(group), strings.TrimSpace(subGroup), nil
}

// ValidateInvitees drops empty and duplicated invitees, failing when none is left
func (i *inputValidation) ValidateInvitees(invitees []string) ([]string, error) {
	seen := set.NewSet()
	valid := make([]string, 0, len(invitees))
	for _, invitee := range invitees {
		invitee = strings.TrimSpace(invitee)
		if invitee == "" {
			i.logger.Warning("CreateMatch: discarding empty invitee")
			continue
		}
		if seen.Has(invitee) {
			i.logger.Warning(fmt.Sprintf("CreateMatch: invitee %s is duplicated, discarding", invitee))
			continue
		}
		seen.Add(invitee)
		valid = append(valid, invitee)
	}
	if len(valid) == 0 {
		return nil, i.invalid("CreateMatch", "at least one invitee is required")
	}
	return valid, nil
}

// ValidateMatchID validates a match id
func (i *inputValidation) ValidateMatchID(operation string, matchID string) (string, error) {
	return i.checkNotEmpty(operation, "matchId", matchID)
}
