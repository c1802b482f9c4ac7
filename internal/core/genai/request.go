// Package genai turns typed generation requests into text from a hosted
// model. Requests are validated before they leave the process and results are
// validated after they come back.
package genai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/colonyops/runway/internal/core/validate"
)

var (
	// ErrInvalidRequest marks a request rejected before it was sent.
	ErrInvalidRequest = errors.New("invalid generation request")
	// ErrInvalidResponse marks a reply that did not satisfy its action's
	// result contract.
	ErrInvalidResponse = errors.New("invalid generation response")
)

// Action names a generation endpoint.
type Action string

const (
	ActionPitchDeck    Action = "pitch_deck"
	ActionEmail        Action = "email"
	ActionMarketSizing Action = "market_sizing"
	ActionLeadScore    Action = "lead_score"
	ActionInsights     Action = "insights"
)

// Actions lists every supported action.
func Actions() []Action {
	return []Action{ActionPitchDeck, ActionEmail, ActionMarketSizing, ActionLeadScore, ActionInsights}
}

// ParseAction accepts the wire name of an action, tolerating dashes and case.
func ParseAction(s string) (Action, error) {
	norm := Action(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	for _, a := range Actions() {
		if a == norm {
			return a, nil
		}
	}
	return "", fmt.Errorf("%w: unknown action %q", ErrInvalidRequest, s)
}

// Request is one of the typed request payloads below.
type Request interface {
	Action() Action
}

type PitchDeckRequest struct {
	Company  string `json:"company"  validate:"notblank"`
	Problem  string `json:"problem"  validate:"notblank"`
	Solution string `json:"solution" validate:"notblank"`
	Market   string `json:"market,omitempty"`
	Traction string `json:"traction,omitempty"`
	Slides   int    `json:"slides,omitempty" validate:"omitempty,min=3,max=20"`
}

func (PitchDeckRequest) Action() Action { return ActionPitchDeck }

type EmailRequest struct {
	Recipient string `json:"recipient" validate:"notblank"`
	Company   string `json:"company,omitempty"`
	Purpose   string `json:"purpose"   validate:"notblank"`
	Tone      string `json:"tone,omitempty" validate:"omitempty,oneof=formal friendly direct"`
	Context   string `json:"context,omitempty"`
}

func (EmailRequest) Action() Action { return ActionEmail }

type MarketSizingRequest struct {
	Product  string `json:"product"  validate:"notblank"`
	Industry string `json:"industry" validate:"notblank"`
	Region   string `json:"region,omitempty"`
	Segment  string `json:"segment,omitempty"`
}

func (MarketSizingRequest) Action() Action { return ActionMarketSizing }

type LeadScoreRequest struct {
	Name    string  `json:"name" validate:"notblank"`
	Company string  `json:"company,omitempty"`
	Email   string  `json:"email,omitempty" validate:"omitempty,email"`
	Title   string  `json:"title,omitempty"`
	Value   float64 `json:"value,omitempty" validate:"min=0"`
	Notes   string  `json:"notes,omitempty"`
}

func (LeadScoreRequest) Action() Action { return ActionLeadScore }

type InsightsRequest struct {
	Summary string `json:"summary" validate:"notblank"`
	Focus   string `json:"focus,omitempty"`
	Max     int    `json:"max,omitempty" validate:"omitempty,min=1,max=10"`
}

func (InsightsRequest) Action() Action { return ActionInsights }

// Validate checks req against its field rules.
func Validate(req Request) error {
	if req == nil {
		return fmt.Errorf("%w: nil request", ErrInvalidRequest)
	}
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidRequest, req.Action(), err)
	}
	return nil
}

// Generator produces text for a request.
type Generator interface {
	Generate(ctx context.Context, req Request) (Result, error)
}

// NewRequest builds the request for action from loose string fields, as
// collected by CLI flags or a form. Unknown fields are ignored.
func NewRequest(action Action, fields map[string]string) (Request, error) {
	get := func(k string) string { return fields[k] }

	switch action {
	case ActionPitchDeck:
		slides, err := atoiField(fields, "slides")
		if err != nil {
			return nil, err
		}
		return PitchDeckRequest{
			Company: get("company"), Problem: get("problem"), Solution: get("solution"),
			Market: get("market"), Traction: get("traction"), Slides: slides,
		}, nil
	case ActionEmail:
		return EmailRequest{
			Recipient: get("recipient"), Company: get("company"), Purpose: get("purpose"),
			Tone: get("tone"), Context: get("context"),
		}, nil
	case ActionMarketSizing:
		return MarketSizingRequest{
			Product: get("product"), Industry: get("industry"),
			Region: get("region"), Segment: get("segment"),
		}, nil
	case ActionLeadScore:
		value, err := floatField(fields, "value")
		if err != nil {
			return nil, err
		}
		return LeadScoreRequest{
			Name: get("name"), Company: get("company"), Email: get("email"),
			Title: get("title"), Value: value, Notes: get("notes"),
		}, nil
	case ActionInsights:
		limit, err := atoiField(fields, "max")
		if err != nil {
			return nil, err
		}
		return InsightsRequest{Summary: get("summary"), Focus: get("focus"), Max: limit}, nil
	default:
		return nil, fmt.Errorf("%w: unknown action %q", ErrInvalidRequest, action)
	}
}
