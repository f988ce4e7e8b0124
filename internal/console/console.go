// Package console prints levelled, coloured progress messages for the CLI.
package console

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// Printer writes one message per line to out. Colours follow fatih/color's
// terminal detection unless disabled with NoColor.
type Printer struct {
	out     io.Writer
	info    *color.Color
	step    *color.Color
	success *color.Color
	warn    *color.Color
	err     *color.Color
}

// New returns a Printer writing to out, or to stdout when out is nil.
func New(out io.Writer) *Printer {
	if out == nil {
		out = os.Stdout
	}
	return &Printer{
		out:     out,
		info:    color.New(color.FgCyan),
		step:    color.New(color.Faint),
		success: color.New(color.FgGreen, color.Bold),
		warn:    color.New(color.FgYellow),
		err:     color.New(color.FgRed, color.Bold),
	}
}

// NoColor disables colouring for every level.
func (p *Printer) NoColor() *Printer {
	for _, c := range []*color.Color{p.info, p.step, p.success, p.warn, p.err} {
		c.DisableColor()
	}
	return p
}

func (p *Printer) Info(format string, args ...any) {
	p.line(p.info, "", format, args...)
}

// Step reports one unit of work inside a larger operation.
func (p *Printer) Step(format string, args ...any) {
	p.line(p.step, "  ", format, args...)
}

func (p *Printer) Success(format string, args ...any) {
	p.line(p.success, "", format, args...)
}

func (p *Printer) Warn(format string, args ...any) {
	p.line(p.warn, "Warning: ", format, args...)
}

func (p *Printer) Error(format string, args ...any) {
	p.line(p.err, "Error: ", format, args...)
}

// Raw writes s unchanged.
func (p *Printer) Raw(s string) {
	fmt.Fprint(p.out, s)
}

func (p *Printer) line(c *color.Color, prefix, format string, args ...any) {
	c.Fprintf(p.out, prefix+format+"\n", args...)
}
