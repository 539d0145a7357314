package companion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"adhdrpg/internal/engine"
)

// UnexpectedResponse is shown when the companion replies with something
// that cannot be understood.
const UnexpectedResponse = "Sorry, I got an unexpected response from the companion. Please try again."

var (
	// ErrServerUnavailable means the companion server could not be reached.
	ErrServerUnavailable = errors.New("companion server unavailable")
	// ErrDisabled is returned when no companion provider is configured.
	ErrDisabled = errors.New("companion is disabled")
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message of the chat history.
type Turn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// Request is the body sent to the companion.
type Request struct {
	Message   string           `json:"message"`
	GameState engine.GameState `json:"gameState"`
	History   []Turn           `json:"history"`
}

// FunctionCall asks the app to perform an action. Arguments is a JSON object,
// possibly encoded as a JSON string.
type FunctionCall struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// Object returns the arguments as a JSON object, unwrapping a stringified
// object if needed.
func (f FunctionCall) Object() (json.RawMessage, error) {
	raw := bytes.TrimSpace(f.Arguments)
	if len(raw) == 0 || string(raw) == "null" {
		return json.RawMessage(`{}`), nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("decode %s arguments: %w", f.Name, err)
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return json.RawMessage(`{}`), nil
		}
		raw = []byte(s)
	}
	if !json.Valid(raw) || raw[0] != '{' {
		return nil, fmt.Errorf("decode %s arguments: not a JSON object", f.Name)
	}
	return raw, nil
}

// Reply is either text, a function call or both.
type Reply struct {
	Text         string        `json:"text,omitempty"`
	FunctionCall *FunctionCall `json:"functionCall,omitempty"`
}

// Client talks to a chat provider.
type Client interface {
	Chat(ctx context.Context, req Request) (Reply, error)
	// Status returns nil when the provider is reachable.
	Status(ctx context.Context) error
}

// Functions is the set of function calls the companion may make.
var Functions = []string{
	"add_quest",
	"complete_quest",
	"log_health_activity",
	"set_main_quest",
	"set_season_name",
	"get_player_status",
	"suggest_next_task",
	"provide_help",
}
