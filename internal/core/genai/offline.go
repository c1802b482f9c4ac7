package genai

import (
	"context"
	"fmt"
	"hash/fnv"

	"github.com/colonyops/runway/pkg/tmpl"
)

var offlineTemplates = map[Action]string{
	ActionPitchDeck: `# {{ .Company }}

## Slide 1: Problem
- {{ .Problem }}

## Slide 2: Solution
- {{ .Solution }}

## Slide 3: Market
- {{ .Market | default "Who feels this pain most, and how many of them are there?" }}

## Slide 4: Traction
- {{ .Traction | default "Early design partners and pilot results." }}

## Slide 5: Ask
- Amount, use of funds, and the milestones it buys.
`,
	ActionEmail: `Subject: {{ .Purpose }}

Hi {{ .Recipient }},

I wanted to reach out about {{ .Purpose | lower }}{{ if .Company }} for the team at {{ .Company }}{{ end }}.
{{- if .Context }} {{ .Context }}{{ end }}

Would you have 20 minutes this week to talk it through?

Best,
`,
	ActionMarketSizing: `## {{ .Product }} in {{ .Industry }}{{ if .Region }} ({{ .Region }}){{ end }}

- **TAM**: every {{ .Industry }} business that could buy {{ .Product }}.
- **SAM**: the {{ .Segment | default "segment" }} you can reach with today's channels.
- **SOM**: the share you can win in the next 24 months.

_Offline draft: connect a generation backend for real estimates._
`,
	ActionLeadScore: `Score: {{ .Score }}

{{ .Name }}{{ if .Company }} at {{ .Company }}{{ end }} scored from profile completeness only. Connect a generation backend for a real assessment.
`,
}

// OfflineGenerator drafts placeholder text locally. It backs demo mode and
// any setup without a generation backend.
type OfflineGenerator struct{}

func (OfflineGenerator) Generate(_ context.Context, req Request) (Result, error) {
	if err := Validate(req); err != nil {
		return Result{}, err
	}

	res := Result{Action: req.Action()}
	var err error
	switch r := req.(type) {
	case LeadScoreRequest:
		score := offlineScore(r)
		res.Score = &score
		res.Content, err = tmpl.Render(offlineTemplates[ActionLeadScore], struct {
			LeadScoreRequest
			Score int
		}{r, score})
	case InsightsRequest:
		res.Insights = []string{
			"Follow up on deals that have not moved stage this week.",
			"Close out overdue tasks before adding new ones.",
		}
		if r.Focus != "" {
			res.Insights = append(res.Insights, fmt.Sprintf("Review the pipeline with a focus on %s.", r.Focus))
		}
	default:
		res.Content, err = tmpl.Render(offlineTemplates[req.Action()], req)
	}
	if err != nil {
		return Result{}, fmt.Errorf("render offline %s: %w", req.Action(), err)
	}
	return res, res.Validate()
}

// offlineScore is stable for a given lead: a base for each known detail plus
// a name-derived jitter.
func offlineScore(r LeadScoreRequest) int {
	score := 20
	for _, s := range []string{r.Company, r.Email, r.Title, r.Notes} {
		if s != "" {
			score += 12
		}
	}
	if r.Value > 0 {
		score += 10
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(r.Name))
	score += int(h.Sum32() % 11)
	return min(score, 100)
}
