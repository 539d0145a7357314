package companion

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/param"
)

const DefaultModel = "claude-sonnet-4-5"

const systemPrompt = `You are a warm, upbeat RPG companion for a player with ADHD.
Keep replies short and concrete. Celebrate progress, never shame.
When the player asks you to change their game, call one of the provided tools.
The player's current game state is below as JSON.`

// AnthropicClient uses the Anthropic Messages API. The companion functions
// are exposed as tools.
type AnthropicClient struct {
	client  *anthropic.Client
	model   string
	apiKey  string
	retries int
}

func NewAnthropicClient(apiKey, model string) *AnthropicClient {
	if model == "" {
		model = DefaultModel
	}
	client := anthropic.NewClient(
		option.WithAPIKey(apiKey),
	)
	return &AnthropicClient{client: &client, model: model, apiKey: apiKey, retries: 2}
}

func (c *AnthropicClient) Status(ctx context.Context) error {
	if strings.TrimSpace(c.apiKey) == "" {
		return fmt.Errorf("%w: no API key configured", ErrServerUnavailable)
	}
	return nil
}

func (c *AnthropicClient) Chat(ctx context.Context, req Request) (Reply, error) {
	state, err := json.Marshal(stateSummary(req))
	if err != nil {
		return Reply{}, fmt.Errorf("encode game state: %w", err)
	}

	messages := make([]anthropic.MessageParam, 0, len(req.History)+1)
	for _, t := range req.History {
		if strings.TrimSpace(t.Text) == "" {
			continue
		}
		if t.Role == RoleAssistant {
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(t.Text)))
		} else {
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(t.Text)))
		}
	}
	messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(req.Message)))

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   1024,
		Temperature: param.NewOpt(0.7),
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt + "\n\n" + string(state)},
		},
		Messages: messages,
		Tools:    toolDefinitions(),
	}

	message, err := c.callWithRetry(ctx, params)
	if err != nil {
		return Reply{}, err
	}

	var reply Reply
	for _, block := range message.Content {
		switch block.Type {
		case "text":
			if reply.Text == "" {
				reply.Text = block.Text
			}
		case "tool_use":
			if reply.FunctionCall == nil {
				reply.FunctionCall = &FunctionCall{Name: block.Name, Arguments: block.Input}
			}
		}
	}
	if reply.Text == "" && reply.FunctionCall == nil {
		return Reply{Text: UnexpectedResponse}, nil
	}
	return reply, nil
}

func (c *AnthropicClient) callWithRetry(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error) {
	var lastErr error
	for attempt := 0; attempt < c.retries; attempt++ {
		if attempt > 0 {
			wait := time.Duration(1<<uint(attempt)) * time.Second
			log.Printf("[companion] retrying Anthropic call in %v (attempt %d)", wait, attempt+1)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}

		message, err := c.client.Messages.New(ctx, params)
		if err == nil {
			return message, nil
		}
		lastErr = err
		log.Printf("[companion] Anthropic attempt %d failed: %v", attempt+1, err)
	}
	return nil, fmt.Errorf("%w: %v", ErrServerUnavailable, lastErr)
}

// stateSummary trims the tree to what the model needs.
func stateSummary(req Request) map[string]any {
	s := req.GameState
	var open []map[string]any
	for _, q := range s.Quests {
		if !q.Status.Open() {
			continue
		}
		open = append(open, map[string]any{
			"id":         q.ID,
			"title":      q.Title,
			"category":   q.Category,
			"priority":   q.Priority,
			"difficulty": q.Difficulty,
			"status":     q.Status,
		})
	}
	return map[string]any{
		"player":     s.Player,
		"quests":     open,
		"mainQuest":  s.MainQuest,
		"seasonName": s.SeasonName,
		"realm":      s.CurrentRealm,
	}
}

func tool(name, description string, props map[string]any, required ...string) anthropic.ToolUnionParam {
	return anthropic.ToolUnionParam{
		OfTool: &anthropic.ToolParam{
			Name:        name,
			Description: anthropic.String(description),
			InputSchema: anthropic.ToolInputSchemaParam{
				Properties: props,
				Required:   required,
			},
		},
	}
}

func str(description string) map[string]any {
	return map[string]any{"type": "string", "description": description}
}

func toolDefinitions() []anthropic.ToolUnionParam {
	return []anthropic.ToolUnionParam{
		tool("add_quest", "Add a new quest to the player's quest log.", map[string]any{
			"title":       str("Short quest title"),
			"description": str("Optional details"),
			"category":    str("work, health, personal, learning, social, creative or chores"),
			"difficulty":  str("easy, medium, hard or epic"),
			"priority":    str("low, medium, high or urgent"),
		}, "title"),
		tool("complete_quest", "Mark an open quest as completed.", map[string]any{
			"questId": str("Quest id"),
			"title":   str("Quest title, used when the id is unknown"),
		}),
		tool("log_health_activity", "Log a health activity such as a walk or water.", map[string]any{
			"activityType": str("Activity id, e.g. walk, run, stretch, meditation, sleep, water"),
			"duration":     map[string]any{"type": "integer", "description": "Minutes"},
			"notes":        str("Optional notes"),
		}, "activityType"),
		tool("set_main_quest", "Set the player's main quest for the season.", map[string]any{
			"title": str("Main quest title"),
		}, "title"),
		tool("set_season_name", "Name the current season of the adventure.", map[string]any{
			"name": str("Season name"),
		}, "name"),
		tool("get_player_status", "Summarize the player's level, XP, streak and gold.", map[string]any{}),
		tool("suggest_next_task", "Suggest the next quest to work on.", map[string]any{}),
		tool("provide_help", "Explain how to use the app.", map[string]any{
			"topic": str("What the player needs help with"),
		}),
	}
}
