package output

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

const (
	defaultNoteWidth = 80
	minNoteWidth     = 20
)

// TerminalWidth returns the current terminal width or a fallback when
// unavailable (piped output, CI).
func TerminalWidth(fallback int) int {
	if fallback <= 0 {
		fallback = defaultNoteWidth
	}
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		return width
	}
	if cols := os.Getenv("COLUMNS"); cols != "" {
		if parsed, err := strconv.Atoi(cols); err == nil && parsed > 0 {
			return parsed
		}
	}
	return fallback
}

// RenderNote renders an item note as markdown with terminal-aware wrapping.
// Empty notes render as empty, render errors fall back to the raw text so a
// bad note never hides its own content.
func RenderNote(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	width := TerminalWidth(defaultNoteWidth)
	if width < minNoteWidth {
		width = minNoteWidth
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return text
	}
	rendered, err := renderer.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(rendered, "\n")
}
