package companion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"adhdrpg/internal/engine"
)

const maxHistory = 20

// Game is the part of the state owner the companion drives.
type Game interface {
	State() engine.GameState
	Dispatch(ctx context.Context, a engine.Action) (engine.Outcome, error)
	FindQuest(ref string) (engine.Quest, bool)
	SuggestNextQuest() (engine.Quest, bool)
}

// Response is what the player sees after one chat turn.
type Response struct {
	Text     string          `json:"text"`
	Function string          `json:"function,omitempty"`
	Outcome  *engine.Outcome `json:"-"`
}

type handler func(ctx context.Context, args json.RawMessage) (string, *engine.Outcome, error)

// Companion relays chat to a Client and turns function calls into actions.
type Companion struct {
	client Client
	game   Game

	mu      sync.Mutex
	history []Turn

	handlers map[string]handler
}

func New(client Client, game Game) *Companion {
	c := &Companion{client: client, game: game}
	c.handlers = map[string]handler{
		"add_quest":           c.addQuest,
		"complete_quest":      c.completeQuest,
		"log_health_activity": c.logHealth,
		"set_main_quest":      c.setMainQuest,
		"set_season_name":     c.setSeasonName,
		"get_player_status":   c.playerStatus,
		"suggest_next_task":   c.suggestNext,
		"provide_help":        c.help,
	}
	return c
}

// History returns a copy of the chat so far.
func (c *Companion) History() []Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Turn{}, c.history...)
}

func (c *Companion) Reset() {
	c.mu.Lock()
	c.history = nil
	c.mu.Unlock()
}

func (c *Companion) Status(ctx context.Context) error {
	if c.client == nil {
		return ErrDisabled
	}
	return c.client.Status(ctx)
}

// Send sends one player message. Connectivity errors are returned; replies
// that cannot be understood come back as UnexpectedResponse text.
func (c *Companion) Send(ctx context.Context, message string) (Response, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return Response{}, errors.New("message is empty")
	}
	if c.client == nil {
		return Response{}, ErrDisabled
	}

	req := Request{Message: message, GameState: c.game.State(), History: c.History()}
	reply, err := c.client.Chat(ctx, req)
	if err != nil {
		return Response{}, fmt.Errorf("companion chat: %w", err)
	}

	resp := Response{Text: strings.TrimSpace(reply.Text)}
	if reply.FunctionCall != nil {
		resp.Function = reply.FunctionCall.Name
		text, outcome, err := c.call(ctx, *reply.FunctionCall)
		if err != nil {
			log.Printf("[companion] function %s: %v", reply.FunctionCall.Name, err)
			text = fmt.Sprintf("I couldn't do that: %v", err)
		}
		resp.Outcome = outcome
		resp.Text = joinText(resp.Text, text)
	}
	if resp.Text == "" {
		resp.Text = UnexpectedResponse
	}

	c.remember(Turn{Role: RoleUser, Text: message}, Turn{Role: RoleAssistant, Text: resp.Text})
	return resp, nil
}

func (c *Companion) remember(turns ...Turn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.history = append(c.history, turns...)
	if len(c.history) > maxHistory {
		c.history = append([]Turn{}, c.history[len(c.history)-maxHistory:]...)
	}
}

func (c *Companion) call(ctx context.Context, fc FunctionCall) (string, *engine.Outcome, error) {
	h, ok := c.handlers[fc.Name]
	if !ok {
		log.Printf("[companion] unknown function %q", fc.Name)
		return UnexpectedResponse, nil, nil
	}
	args, err := fc.Object()
	if err != nil {
		log.Printf("[companion] %v", err)
		return UnexpectedResponse, nil, nil
	}
	return h(ctx, args)
}

func joinText(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + "\n\n" + b
	}
}

func (c *Companion) dispatch(ctx context.Context, a engine.Action, success string) (string, *engine.Outcome, error) {
	out, err := c.game.Dispatch(ctx, a)
	if err != nil {
		return "", nil, err
	}
	if !out.Changed {
		return fmt.Sprintf("Nothing changed: %s.", out.Reason), &out, nil
	}
	text := success
	for _, n := range out.Notices {
		text = joinText(text, n.Message)
	}
	return text, &out, nil
}

func (c *Companion) addQuest(ctx context.Context, raw json.RawMessage) (string, *engine.Outcome, error) {
	var args struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Category    string `json:"category"`
		Difficulty  string `json:"difficulty"`
		Priority    string `json:"priority"`
		QuestType   string `json:"questType"`
		XPReward    int    `json:"xpReward"`
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return "", nil, fmt.Errorf("add_quest arguments: %w", err)
	}
	// Invalid enum values from the model fall back to the defaults.
	category, _ := engine.ParseCategory(args.Category)
	if category == "" {
		category = engine.CategoryPersonal
	}
	difficulty, _ := engine.ParseDifficulty(args.Difficulty)
	if difficulty == "" {
		difficulty = engine.DifficultyMedium
	}
	priority, _ := engine.ParsePriority(args.Priority)
	if priority == "" {
		priority = engine.PriorityMedium
	}
	qtype, _ := engine.ParseQuestType(args.QuestType)
	if qtype == "" {
		qtype = engine.QuestSide
	}
	return c.dispatch(ctx, engine.AddQuest{
		Title:       args.Title,
		Description: args.Description,
		Category:    category,
		Difficulty:  difficulty,
		Priority:    priority,
		QuestType:   qtype,
		XPReward:    max(args.XPReward, 0),
	}, fmt.Sprintf("Added quest %q.", strings.TrimSpace(args.Title)))
}

func (c *Companion) completeQuest(ctx context.Context, raw json.RawMessage) (string, *engine.Outcome, error) {
	var args struct {
		QuestID string `json:"questId"`
		ID      string `json:"id"`
		Title   string `json:"title"`
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return "", nil, fmt.Errorf("complete_quest arguments: %w", err)
	}
	var (
		q  engine.Quest
		ok bool
	)
	for _, ref := range []string{args.QuestID, args.ID, args.Title} {
		if ref == "" {
			continue
		}
		if q, ok = c.game.FindQuest(ref); ok {
			break
		}
	}
	if !ok {
		return "I couldn't find that quest.", nil, nil
	}
	return c.dispatch(ctx, engine.CompleteQuest{ID: q.ID}, fmt.Sprintf("Quest complete: %s!", q.Title))
}

func (c *Companion) logHealth(ctx context.Context, raw json.RawMessage) (string, *engine.Outcome, error) {
	var args struct {
		ActivityType string `json:"activityType"`
		TypeID       string `json:"typeId"`
		Duration     int    `json:"duration"`
		Notes        string `json:"notes"`
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return "", nil, fmt.Errorf("log_health_activity arguments: %w", err)
	}
	id := args.ActivityType
	if id == "" {
		id = args.TypeID
	}
	return c.dispatch(ctx, engine.LogHealthActivity{
		TypeID:          strings.ToLower(strings.TrimSpace(id)),
		DurationMinutes: max(args.Duration, 0),
		Notes:           args.Notes,
	}, fmt.Sprintf("Logged %s.", id))
}

func (c *Companion) setMainQuest(ctx context.Context, raw json.RawMessage) (string, *engine.Outcome, error) {
	var args struct {
		Title string `json:"title"`
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return "", nil, fmt.Errorf("set_main_quest arguments: %w", err)
	}
	return c.dispatch(ctx, engine.SetMainQuest{Title: args.Title}, fmt.Sprintf("Main quest set: %s.", args.Title))
}

func (c *Companion) setSeasonName(ctx context.Context, raw json.RawMessage) (string, *engine.Outcome, error) {
	var args struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return "", nil, fmt.Errorf("set_season_name arguments: %w", err)
	}
	return c.dispatch(ctx, engine.SetSeasonName{Name: args.Name}, fmt.Sprintf("Welcome to %s.", args.Name))
}

func (c *Companion) playerStatus(context.Context, json.RawMessage) (string, *engine.Outcome, error) {
	return PlayerStatus(c.game.State()), nil, nil
}

func (c *Companion) suggestNext(context.Context, json.RawMessage) (string, *engine.Outcome, error) {
	q, ok := c.game.SuggestNextQuest()
	if !ok {
		return "No open quests. Add one, or take a well-earned break!", nil, nil
	}
	return fmt.Sprintf("Try %q next (%s, %s priority).", q.Title, q.Difficulty, q.Priority), nil, nil
}

func (c *Companion) help(_ context.Context, raw json.RawMessage) (string, *engine.Outcome, error) {
	var args struct {
		Topic string `json:"topic"`
	}
	_ = json.Unmarshal(raw, &args)
	text := "Add quests for the things you want to do, complete them for XP and gold, " +
		"log health activities to refill your gauges, and check in daily to grow your streak."
	if t := strings.TrimSpace(args.Topic); t != "" {
		text = fmt.Sprintf("About %s: %s", t, text)
	}
	return text, nil, nil
}

// PlayerStatus is a one-paragraph summary of the player.
func PlayerStatus(s engine.GameState) string {
	p := s.Player
	open := 0
	for _, q := range s.Quests {
		if q.Status.Open() {
			open++
		}
	}
	return fmt.Sprintf("Level %d (%d/%d XP), %d gold, %d day streak (best %d), health %d, energy %d, %d open quests.",
		p.Level, p.XP, p.XPToNextLevel, p.Gold, p.CurrentStreak, p.LongestStreak, p.Health, p.Energy, open)
}
