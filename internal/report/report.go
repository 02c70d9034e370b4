// Package report renders build issues and fatal errors for a terminal.
package report

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/reoring/envschema"
)

var (
	errorStyle = color.New(color.FgRed, color.Bold)
	pathStyle  = color.New(color.FgCyan)
	keyStyle   = color.New(color.FgYellow)
	mutedStyle = color.New(color.FgHiBlack)
)

// Printer writes one line per issue. Prefix is prepended to issue keys so the
// full variable name is shown.
type Printer struct {
	w       io.Writer
	prefix  string
	noColor bool
}

func New(w io.Writer, prefix string, noColor bool) *Printer {
	return &Printer{w: w, prefix: prefix, noColor: noColor}
}

func (p *Printer) paint(c *color.Color, s string) string {
	if p.noColor {
		return s
	}
	return c.Sprint(s)
}

// Issues prints every issue followed by a count.
func (p *Printer) Issues(iss envschema.Issues) {
	for _, it := range iss {
		line := fmt.Sprintf("%s %s %s: %s",
			p.paint(errorStyle, "error"),
			p.paint(pathStyle, it.Location()),
			p.paint(keyStyle, p.prefix+it.Key),
			it.Message)
		if it.Code == envschema.CodeRequired {
			line += p.paint(mutedStyle, " (not set)")
		}
		fmt.Fprintln(p.w, line)
	}
	if n := len(iss); n > 0 {
		noun := "issues"
		if n == 1 {
			noun = "issue"
		}
		fmt.Fprintln(p.w, p.paint(mutedStyle, fmt.Sprintf("%d %s", n, noun)))
	}
}

// Error prints a fatal error such as a malformed schema.
func (p *Printer) Error(err error) {
	fmt.Fprintf(p.w, "%s %v\n", p.paint(errorStyle, "error"), err)
}
