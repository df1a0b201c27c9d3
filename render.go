package main

import (
	"log/slog"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return min(width, 120)
}

// renderMarkdown styles content for the terminal; on any renderer error the
// content is returned as-is.
func renderMarkdown(content string) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(terminalWidth()),
		glamour.WithColorProfile(termenv.EnvColorProfile()),
	)
	if err != nil {
		slog.Warn("markdown renderer init failed", slog.Any("error", err))
		return content
	}
	out, err := r.Render(content)
	if err != nil {
		slog.Warn("markdown render failed", slog.Any("error", err))
		return content
	}
	return out
}
