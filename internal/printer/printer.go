// Package printer writes styled status lines for command output.
package printer

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/colonyops/todosync/internal/core/styles"
)

type ctxKey struct{}

// Printer writes human-oriented messages. Machine-readable output goes to the
// command writer instead.
type Printer struct {
	out io.Writer
}

// New returns a printer writing to out.
func New(out io.Writer) *Printer {
	return &Printer{out: out}
}

// NewContext returns a copy of ctx carrying p.
func NewContext(ctx context.Context, p *Printer) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// Ctx returns the printer stored in ctx, or a stderr printer.
func Ctx(ctx context.Context) *Printer {
	if p, ok := ctx.Value(ctxKey{}).(*Printer); ok && p != nil {
		return p
	}
	return New(os.Stderr)
}

func (p *Printer) line(s string) {
	_, _ = fmt.Fprintln(p.out, s)
}

// Printf writes an unstyled line.
func (p *Printer) Printf(format string, args ...any) {
	p.line(fmt.Sprintf(format, args...))
}

// Section writes a header line underlined to the title's width.
func (p *Printer) Section(title string) {
	p.line(styles.HeaderStyle.Render(title))
	p.line(styles.DividerStyle.Render(strings.Repeat("─", lipgloss.Width(title))))
}

// Success writes a success line with a muted detail.
func (p *Printer) Success(msg, detail string) {
	s := styles.SuccessStyle.Render(styles.IconSynced + " " + msg)
	if detail != "" {
		s += " " + styles.MutedStyle.Render(detail)
	}
	p.line(s)
}

func (p *Printer) Successf(format string, args ...any) {
	p.line(styles.SuccessStyle.Render(styles.IconSynced + " " + fmt.Sprintf(format, args...)))
}

func (p *Printer) Infof(format string, args ...any) {
	p.line(styles.MutedStyle.Render(fmt.Sprintf(format, args...)))
}

func (p *Printer) Warnf(format string, args ...any) {
	p.line(styles.WarningStyle.Render(styles.IconDirty + " " + fmt.Sprintf(format, args...)))
}

func (p *Printer) Errorf(format string, args ...any) {
	p.line(styles.ErrorStyle.Render("✗ " + fmt.Sprintf(format, args...)))
}
