// Package printer writes styled, human-oriented command output.
package printer

import (
	"context"
	"fmt"
	"io"
	"os"

	lipgloss "charm.land/lipgloss/v2"

	"github.com/colonyops/runway/internal/core/styles"
)

type ctxKey struct{}

// Printer writes status lines to out and errors to errOut.
type Printer struct {
	out    io.Writer
	errOut io.Writer
}

// New returns a printer writing to out and errOut. Nil writers fall back to
// stdout and stderr.
func New(out, errOut io.Writer) *Printer {
	if out == nil {
		out = os.Stdout
	}
	if errOut == nil {
		errOut = os.Stderr
	}
	return &Printer{out: out, errOut: errOut}
}

// NewContext stores p on ctx.
func NewContext(ctx context.Context, p *Printer) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// Ctx returns the printer stored on ctx, or one writing to stdout and stderr.
func Ctx(ctx context.Context) *Printer {
	if p, ok := ctx.Value(ctxKey{}).(*Printer); ok {
		return p
	}
	return New(os.Stdout, os.Stderr)
}

func (p *Printer) line(w io.Writer, style lipgloss.Style, icon, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if icon != "" {
		msg = style.Render(icon) + " " + msg
	}
	_, _ = fmt.Fprintln(w, msg)
}

// Printf writes an unstyled line.
func (p *Printer) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.out, format+"\n", args...)
}

func (p *Printer) Successf(format string, args ...any) {
	p.line(p.out, styles.TextSuccessStyle, "✔", format, args...)
}

func (p *Printer) Infof(format string, args ...any) {
	p.line(p.out, styles.TextPrimaryStyle, "•", format, args...)
}

func (p *Printer) Warnf(format string, args ...any) {
	p.line(p.errOut, styles.TextWarningStyle, "!", format, args...)
}

// Errorf writes to the error stream.
func (p *Printer) Errorf(format string, args ...any) {
	p.line(p.errOut, styles.TextErrorStyle, "✘", format, args...)
}

// Section writes a heading.
func (p *Printer) Section(title string) {
	_, _ = fmt.Fprintln(p.out, styles.CommandHeaderStyle.Render(title))
}

// Writer is the standard output stream.
func (p *Printer) Writer() io.Writer {
	return p.out
}
