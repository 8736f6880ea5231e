// Package printer writes styled status lines for CLI commands. Commands obtain
// the printer from the context so tests can capture the output.
package printer

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/hay-kot/taskdeck/internal/core/styles"
)

type ctxKey struct{}

// Printer writes status lines to a single writer.
type Printer struct {
	mu sync.Mutex
	w  io.Writer
}

// New returns a printer writing to w.
func New(w io.Writer) *Printer {
	return &Printer{w: w}
}

// NewContext returns a context carrying p.
func NewContext(ctx context.Context, p *Printer) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// Ctx returns the printer stored in ctx, or one writing to stderr.
func Ctx(ctx context.Context) *Printer {
	if p, ok := ctx.Value(ctxKey{}).(*Printer); ok && p != nil {
		return p
	}
	return New(os.Stderr)
}

func (p *Printer) line(s string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = fmt.Fprintln(p.w, s)
}

// Success prints a titled success line followed by an indented detail.
func (p *Printer) Success(title, detail string) {
	p.line(styles.SuccessStyle.Render("✔ " + title))
	if detail != "" {
		p.line("  " + styles.MutedStyle.Render(detail))
	}
}

func (p *Printer) Successf(format string, args ...any) {
	p.line(styles.SuccessStyle.Render("✔ " + fmt.Sprintf(format, args...)))
}

func (p *Printer) Infof(format string, args ...any) {
	p.line(styles.TitleStyle.Render("•") + " " + fmt.Sprintf(format, args...))
}

func (p *Printer) Warnf(format string, args ...any) {
	p.line(styles.WarningStyle.Render("! " + fmt.Sprintf(format, args...)))
}

func (p *Printer) Errorf(format string, args ...any) {
	p.line(styles.ErrorStyle.Render("✘ " + fmt.Sprintf(format, args...)))
}

// Printf prints an unstyled line.
func (p *Printer) Printf(format string, args ...any) {
	p.line(fmt.Sprintf(format, args...))
}
