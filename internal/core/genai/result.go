package genai

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Result is the validated output of a generation.
type Result struct {
	Action   Action   `json:"action"`
	Content  string   `json:"content"`
	Score    *int     `json:"score,omitempty"`
	Insights []string `json:"insights,omitempty"`
}

// Validate checks the result contract for its action: content is required
// for every action except insights, which instead needs at least one
// non-blank insight; lead scores must be within 0-100.
func (r Result) Validate() error {
	switch r.Action {
	case ActionInsights:
		for _, in := range r.Insights {
			if strings.TrimSpace(in) != "" {
				return nil
			}
		}
		return fmt.Errorf("%w: %s: no insights returned", ErrInvalidResponse, r.Action)
	case ActionLeadScore:
		if r.Score == nil {
			return fmt.Errorf("%w: %s: missing score", ErrInvalidResponse, r.Action)
		}
		if *r.Score < 0 || *r.Score > 100 {
			return fmt.Errorf("%w: %s: score %d out of range 0-100", ErrInvalidResponse, r.Action, *r.Score)
		}
	}

	if strings.TrimSpace(r.Content) == "" {
		return fmt.Errorf("%w: %s: empty content", ErrInvalidResponse, r.Action)
	}
	return nil
}

// Text is what a reader sees: the content, or the insights as a list.
func (r Result) Text() string {
	if strings.TrimSpace(r.Content) != "" {
		return r.Content
	}
	var b strings.Builder
	for _, in := range r.Insights {
		b.WriteString("- ")
		b.WriteString(in)
		b.WriteByte('\n')
	}
	return b.String()
}

var (
	scoreLabelRe = regexp.MustCompile(`(?i)score[^0-9\n]{0,12}(\d{1,3})`)
	numberRe     = regexp.MustCompile(`\b(\d{1,3})\b`)
	listItemRe   = regexp.MustCompile(`^\s*(?:[-*•]|\d+[.)])\s+(.+)$`)
)

// ParseScore finds a 0-100 lead score in free text. A number labelled
// "score" wins over the first bare number.
func ParseScore(text string) (int, bool) {
	if m := scoreLabelRe.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n <= 100 {
			return n, true
		}
	}
	for _, m := range numberRe.FindAllStringSubmatch(text, -1) {
		if n, err := strconv.Atoi(m[1]); err == nil && n <= 100 {
			return n, true
		}
	}
	return 0, false
}

// ParseInsights extracts list items from text. When the text has no list
// markers, each non-blank line is an insight.
func ParseInsights(text string) []string {
	var items, lines []string
	for line := range strings.Lines(text) {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
		if m := listItemRe.FindStringSubmatch(line); m != nil {
			items = append(items, strings.TrimSpace(m[1]))
		}
	}
	if len(items) > 0 {
		return items
	}
	return lines
}

func atoiField(fields map[string]string, key string) (int, error) {
	s := strings.TrimSpace(fields[key])
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: not a number: %q", ErrInvalidRequest, key, s)
	}
	return n, nil
}

func floatField(fields map[string]string, key string) (float64, error) {
	s := strings.TrimSpace(fields[key])
	if s == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: not a number: %q", ErrInvalidRequest, key, s)
	}
	return f, nil
}
