package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"

	"github.com/cory-johannsen/aviary/internal/game/combat"
)

// DefaultClaudeModel is used when no model is configured.
const DefaultClaudeModel = "claude-sonnet-4-5"

const claudeSystemPrompt = `You control a bird of prey in a turn-based battle.
You receive the battle state as JSON. Pick exactly one move from legalMoves.
altitudeDelta may be -1, 0 or 1; moves with requiresTopAltitude need altitude equal to maxAltitude.
Answer with a single JSON object and nothing else: {"moveId": "<id>", "altitudeDelta": <int>}`

// MessageSender is the subset of the Anthropic messages API the advisor uses.
// *anthropic.MessageService satisfies it.
type MessageSender interface {
	New(ctx context.Context, body anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

// ClaudeAdvisor asks a Claude model for the opponent's move.
type ClaudeAdvisor struct {
	sender    MessageSender
	model     string
	maxTokens int64
	logger    *zap.Logger
}

// NewClaudeClient builds a MessageSender for the Anthropic API.
//
// Precondition: apiKey must be non-empty.
func NewClaudeClient(apiKey string) MessageSender {
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &client.Messages
}

// NewClaudeAdvisor constructs a ClaudeAdvisor. An empty model selects
// DefaultClaudeModel.
//
// Precondition: sender and logger must not be nil.
func NewClaudeAdvisor(sender MessageSender, model string, logger *zap.Logger) *ClaudeAdvisor {
	if sender == nil {
		panic("ai.NewClaudeAdvisor: sender must not be nil")
	}
	if logger == nil {
		panic("ai.NewClaudeAdvisor: logger must not be nil")
	}
	if model == "" {
		model = DefaultClaudeModel
	}
	return &ClaudeAdvisor{sender: sender, model: model, maxTokens: 128, logger: logger}
}

// WithMaxTokens sets the response token limit. Non-positive n keeps the
// current limit.
func (a *ClaudeAdvisor) WithMaxTokens(n int64) *ClaudeAdvisor {
	if n > 0 {
		a.maxTokens = n
	}
	return a
}

// Choose implements combat.Advisor.
func (a *ClaudeAdvisor) Choose(ctx context.Context, v combat.View) (combat.Choice, error) {
	state, err := json.Marshal(v)
	if err != nil {
		return combat.Choice{}, fmt.Errorf("encoding view: %w", err)
	}
	msg, err := a.sender.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: a.maxTokens,
		System:    []anthropic.TextBlockParam{{Text: claudeSystemPrompt}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(string(state))),
		},
	})
	if err != nil {
		return combat.Choice{}, fmt.Errorf("claude advisor: %w", err)
	}
	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	choice, err := ParseChoice(text.String())
	if err != nil {
		a.logger.Debug("claude advisor: unparseable answer", zap.String("text", text.String()), zap.Error(err))
		return combat.Choice{}, err
	}
	return choice, nil
}

// ParseChoice extracts the first JSON object from text and decodes it as a
// combat.Choice.
//
// Postcondition: returns ErrNoAdvice when text has no object or no move id.
func ParseChoice(text string) (combat.Choice, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return combat.Choice{}, ErrNoAdvice
	}
	var c combat.Choice
	if err := json.Unmarshal([]byte(text[start:end+1]), &c); err != nil {
		return combat.Choice{}, fmt.Errorf("%w: %v", ErrNoAdvice, err)
	}
	if c.MoveID == "" {
		return combat.Choice{}, ErrNoAdvice
	}
	return c, nil
}
