// Package iojson reads and writes JSON for command line output: indented
// documents for humans, one object per line for pipes.
package iojson

import (
	"encoding/json"
	"fmt"
	"io"
)

// WriteLine encodes obj as a single compact line.
func WriteLine(w io.Writer, obj any) error {
	bits, err := json.Marshal(obj)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	_, err = fmt.Fprintln(w, string(bits))
	return err
}

// WriteLines writes each item with WriteLine.
func WriteLines[T any](w io.Writer, items []T) error {
	for _, item := range items {
		if err := WriteLine(w, item); err != nil {
			return err
		}
	}
	return nil
}

// WriteIndent writes obj as an indented document.
func WriteIndent(w io.Writer, obj any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(obj)
}
