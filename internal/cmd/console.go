package cmd

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// console writes user-facing output. Styles come from a renderer bound to
// the writer, so plain text is emitted when it is not a terminal.
type console struct {
	w       io.Writer
	heading lipgloss.Style
	success lipgloss.Style
	warn    lipgloss.Style
	fail    lipgloss.Style
	info    lipgloss.Style
}

func newConsole(w io.Writer) *console {
	r := lipgloss.NewRenderer(w)
	return &console{
		w:       w,
		heading: r.NewStyle().Bold(true).Foreground(lipgloss.Color("6")),
		success: r.NewStyle().Foreground(lipgloss.Color("2")),
		warn:    r.NewStyle().Foreground(lipgloss.Color("3")),
		fail:    r.NewStyle().Foreground(lipgloss.Color("1")),
		info:    r.NewStyle().Foreground(lipgloss.Color("4")),
	}
}

func (c *console) print(s lipgloss.Style, format string, a ...any) {
	fmt.Fprintln(c.w, s.Render(fmt.Sprintf(format, a...)))
}

func (c *console) Heading(format string, a ...any) {
	fmt.Fprintln(c.w)
	c.print(c.heading, format, a...)
}

func (c *console) Success(format string, a ...any) { c.print(c.success, format, a...) }
func (c *console) Warn(format string, a ...any)    { c.print(c.warn, format, a...) }
func (c *console) Error(format string, a ...any)   { c.print(c.fail, format, a...) }
func (c *console) Info(format string, a ...any)    { c.print(c.info, format, a...) }

func (c *console) Plain(format string, a ...any) {
	fmt.Fprintf(c.w, format+"\n", a...)
}
