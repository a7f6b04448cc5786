// Package ui formats terminal output for the restmap CLI.
package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Level is the severity of a message
type Level int

const (
	LevelError Level = iota
	LevelWarning
	LevelInfo
)

// Message describes a formatted CLI message
type Message struct {
	Level       Level
	Context     string
	Problem     string
	Detail      string
	Suggestions []string
	Hints       []string
	NoColor     bool
}

func (l Level) colors() (header, body *color.Color, symbol string) {
	switch l {
	case LevelWarning:
		return color.New(color.FgYellow, color.Bold), color.New(color.FgYellow), "!"
	case LevelInfo:
		return color.New(color.FgCyan, color.Bold), color.New(color.FgCyan), "i"
	default:
		return color.New(color.FgRed, color.Bold), color.New(color.FgRed), "x"
	}
}

// Format renders m.
//
// Example output:
//
//	x RESOURCE NOT FOUND: Nte
//	   Did you mean: Note?
//
//	   → See defined resources: restmap list
func Format(m Message) string {
	var b strings.Builder

	header, body, symbol := m.Level.colors()
	hint := color.New(color.FgCyan)
	if m.NoColor {
		header.DisableColor()
		body.DisableColor()
		hint.DisableColor()
	}

	if m.Context != "" {
		header.Fprintf(&b, "%s %s: %s\n", symbol, strings.ToUpper(m.Context), m.Problem)
	} else {
		header.Fprintf(&b, "%s %s\n", symbol, m.Problem)
	}

	if m.Detail != "" {
		body.Fprintf(&b, "   %s\n", m.Detail)
	}

	if len(m.Suggestions) > 0 {
		body.Fprintf(&b, "   Did you mean: %s?\n", strings.Join(m.Suggestions, ", "))
	}

	if len(m.Hints) > 0 {
		b.WriteString("\n")
		for _, h := range m.Hints {
			hint.Fprintf(&b, "   → %s\n", h)
		}
	}

	return b.String()
}

// Write writes the formatted message to w
func Write(w io.Writer, m Message) {
	fmt.Fprint(w, Format(m))
}

// ResourceNotFound formats an unknown resource type error with close matches
func ResourceNotFound(name string, defined []string, noColor bool) string {
	return Format(Message{
		Level:       LevelError,
		Context:     "resource not found",
		Problem:     name,
		Suggestions: Suggest(name, defined),
		Hints:       []string{"See defined resources: restmap list"},
		NoColor:     noColor,
	})
}

// NoURL formats the warning shown when no template matches the given variables
func NoURL(resource, role string, vars []string, noColor bool) string {
	detail := "no variables given"
	if len(vars) > 0 {
		detail = "variables: " + strings.Join(vars, ", ")
	}
	return Format(Message{
		Level:   LevelWarning,
		Context: "no url resolvable",
		Problem: fmt.Sprintf("%s (%s)", resource, role),
		Detail:  detail,
		Hints:   []string{fmt.Sprintf("See templates: restmap list %s", resource)},
		NoColor: noColor,
	})
}

// ConfigError formats a configuration loading error
func ConfigError(err error, noColor bool) string {
	return Format(Message{
		Level:   LevelError,
		Context: "configuration error",
		Problem: err.Error(),
		Hints:   []string{"View config: cat restmap.yaml", "Get help: restmap --help"},
		NoColor: noColor,
	})
}

// Error formats any other command failure
func Error(err error, noColor bool) string {
	return Format(Message{Level: LevelError, Problem: err.Error(), NoColor: noColor})
}

// Success formats a success line
func Success(message string, noColor bool) string {
	green := color.New(color.FgGreen, color.Bold)
	if noColor {
		green.DisableColor()
	}
	return green.Sprintf("✓ %s", message)
}
