// Package tmpl renders the text templates used for AI prompts and offline
// drafts.
package tmpl

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// bullets renders each item as a markdown list entry.
func bullets(items []string) string {
	var b strings.Builder
	for i, it := range items {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("- ")
		b.WriteString(strings.TrimSpace(it))
	}
	return b.String()
}

func stringOrDefault(def, s string) string {
	if strings.TrimSpace(s) != "" {
		return s
	}
	return def
}

var funcs = template.FuncMap{
	"join":    strings.Join,
	"upper":   strings.ToUpper,
	"lower":   strings.ToLower,
	"trim":    strings.TrimSpace,
	"bullets": bullets,
	"default": stringOrDefault,
}

func parse(tmpl string) (*template.Template, error) {
	t, err := template.New("").Funcs(funcs).Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}
	return t, nil
}

// Validate reports whether tmpl parses. It does not execute it.
func Validate(tmpl string) error {
	_, err := parse(tmpl)
	return err
}

// Render executes a Go template string with the given data.
// Returns an error if the template is invalid or references undefined keys.
//
// Available template functions:
//   - join: Join string slice with separator (e.g., join .Tags ", ")
//   - upper, lower, trim: string helpers
//   - bullets: Render a string slice as a markdown list
//   - default: Fall back when a value is blank (e.g., .Tone | default "friendly")
func Render(tmpl string, data any) (string, error) {
	t, err := parse(tmpl)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute template: %w", err)
	}

	return buf.String(), nil
}
