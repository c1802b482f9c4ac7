package genai

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/colonyops/runway/internal/core/logging"
	"github.com/colonyops/runway/pkg/tmpl"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gpt-4o-mini"

// OpenAIConfig configures the OpenAI-compatible backend.
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	// Prompts overrides entries of DefaultPrompts.
	Prompts map[Action]string
}

// OpenAIGenerator renders a prompt per action and calls a chat completions
// endpoint.
type OpenAIGenerator struct {
	client      *openai.Client
	model       string
	temperature float32
	prompts     map[Action]string
}

func NewOpenAIGenerator(cfg OpenAIConfig) (*OpenAIGenerator, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("openai: api key is required")
	}

	prompts := maps.Clone(DefaultPrompts)
	for action, p := range cfg.Prompts {
		if _, err := ParseAction(string(action)); err != nil {
			return nil, fmt.Errorf("openai: prompt override: %w", err)
		}
		if err := tmpl.Validate(p); err != nil {
			return nil, fmt.Errorf("openai: prompt override for %s: %w", action, err)
		}
		prompts[action] = p
	}

	occ := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		occ.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	return &OpenAIGenerator{
		client:      openai.NewClientWithConfig(occ),
		model:       model,
		temperature: cfg.Temperature,
		prompts:     prompts,
	}, nil
}

func (g *OpenAIGenerator) Generate(ctx context.Context, req Request) (Result, error) {
	if err := Validate(req); err != nil {
		return Result{}, err
	}

	prompt, err := g.prompt(req)
	if err != nil {
		return Result{}, fmt.Errorf("render %s prompt: %w", req.Action(), err)
	}

	log := logging.Component("genai").With().
		Str("backend", "openai").
		Str("action", string(req.Action())).
		Str("model", g.model).
		Logger()
	log.Debug().Msg("requesting chat completion")

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		Temperature: g.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return Result{}, fmt.Errorf("generate %s: %w", req.Action(), err)
	}
	if len(resp.Choices) == 0 {
		return Result{}, fmt.Errorf("%w: %s: no choices returned", ErrInvalidResponse, req.Action())
	}

	log.Debug().Str("finish_reason", string(resp.Choices[0].FinishReason)).Msg("chat completion received")

	res := interpret(req.Action(), resp.Choices[0].Message.Content)
	if err := res.Validate(); err != nil {
		return Result{}, err
	}
	return res, nil
}

// interpret fills the structured parts of a Result from free text.
func interpret(action Action, text string) Result {
	res := Result{Action: action, Content: strings.TrimSpace(text)}
	switch action {
	case ActionLeadScore:
		if n, ok := ParseScore(text); ok {
			res.Score = &n
		}
	case ActionInsights:
		res.Insights = ParseInsights(text)
	}
	return res
}

func (g *OpenAIGenerator) prompt(req Request) (string, error) {
	return tmpl.Render(g.prompts[req.Action()], req)
}
