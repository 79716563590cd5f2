package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	traceCountStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
	traceFuncStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#98FB98"))
	traceArgStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#87CEEB"))
)

// tracer writes one line per stub call. Colors are used only when out is a
// terminal.
type tracer struct {
	out   io.Writer
	color bool
}

func newTracer(out io.Writer) *tracer {
	color := false
	if f, ok := out.(*os.File); ok {
		color = term.IsTerminal(int(f.Fd()))
	}
	return &tracer{out: out, color: color}
}

func (t *tracer) call(n int64, name string, args []any) {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = formatValue(a)
	}

	count := fmt.Sprintf("[%d]", n)
	argList := strings.Join(parts, ", ")
	if t.color {
		count = traceCountStyle.Render(count)
		name = traceFuncStyle.Render(name)
		argList = traceArgStyle.Render(argList)
	}
	fmt.Fprintf(t.out, "%s %s(%s)\n", count, name, argList)
}

func formatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return "null"
	case string:
		return fmt.Sprintf("%q", v)
	case []any:
		parts := make([]string, len(v))
		for i, e := range v {
			parts[i] = formatValue(e)
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprintf("%v", v)
	}
}
