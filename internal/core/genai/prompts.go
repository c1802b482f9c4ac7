package genai

const systemPrompt = `You are the operations assistant for an early-stage startup. ` +
	`Answer in concise GitHub-flavoured markdown. Do not add preambles.`

// DefaultPrompts are the user prompt templates per action, rendered with the
// request as data.
var DefaultPrompts = map[Action]string{
	ActionPitchDeck: `Draft a {{ if .Slides }}{{ .Slides }}{{ else }}10{{ end }}-slide investor pitch deck outline for {{ .Company }}.
Problem: {{ .Problem }}
Solution: {{ .Solution }}
{{- if .Market }}
Market: {{ .Market }}{{ end }}
{{- if .Traction }}
Traction: {{ .Traction }}{{ end }}
Give each slide a "## Slide N: Title" heading followed by 2-4 bullets.`,

	ActionEmail: `Write a {{ .Tone | default "friendly" }} email to {{ .Recipient }}{{ if .Company }} at {{ .Company }}{{ end }}.
Purpose: {{ .Purpose }}
{{- if .Context }}
Context: {{ .Context }}{{ end }}
Start with a "Subject:" line. Keep the body under 150 words.`,

	ActionMarketSizing: `Estimate TAM, SAM and SOM for {{ .Product }} in the {{ .Industry }} industry{{ if .Region }} in {{ .Region }}{{ end }}{{ if .Segment }}, focused on {{ .Segment }}{{ end }}.
Show the bottom-up arithmetic for each figure and list the assumptions.`,

	ActionLeadScore: `Score this lead from 0 to 100 for likelihood to convert within a quarter.
Name: {{ .Name }}
{{- if .Company }}
Company: {{ .Company }}{{ end }}
{{- if .Title }}
Title: {{ .Title }}{{ end }}
{{- if .Value }}
Potential value: {{ .Value }}{{ end }}
{{- if .Notes }}
Notes: {{ .Notes }}{{ end }}
Reply with "Score: N" on the first line, then two sentences of reasoning.`,

	ActionInsights: `Here is the current state of our sales pipeline:
{{ .Summary }}
{{ if .Focus }}Focus on {{ .Focus }}. {{ end }}List up to {{ if .Max }}{{ .Max }}{{ else }}5{{ end }} actionable insights as "- " bullets, one sentence each.`,
}
