package engine

import (
	"errors"
	"fmt"
)

// ErrUnknownAction is returned for action tags or types the reducer does not
// handle.
var ErrUnknownAction = errors.New("unknown action")

// ValidationError indicates malformed action input. It should be shown to the
// user.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid action: %s", e.Reason)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// RejectedError explains why a well-formed action changed nothing. The
// reducer reports rejections as an empty update; the service surfaces this
// error to callers that ask for a reason.
type RejectedError struct {
	Action ActionType
	Reason string
}

func (e RejectedError) Error() string {
	return fmt.Sprintf("%s rejected: %s", e.Action, e.Reason)
}
