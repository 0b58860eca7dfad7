package utils

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/lipgloss"
)

// Display cut-off lengths in the results table.
const (
	PathLengthCutoff = 36
	LangLengthCutoff = 10
)

// FormatFileSize renders a byte size for the results table. An unknown size
// (known == false) renders as a dash.
func FormatFileSize(size int, known bool) string {
	if !known {
		return "-"
	}
	if size < 1024 {
		return fmt.Sprintf("%d", size)
	}
	return fmt.Sprintf("%.2f KB", float64(size)/1024.0)
}

// PathDisplay cuts off a long path from the left, keeping the tail visible.
func PathDisplay(path string) string {
	if len(path) > PathLengthCutoff {
		return "..." + path[len(path)-PathLengthCutoff:]
	}
	return path
}

// LangDisplay cuts off a long language name from the right.
func LangDisplay(lang string) string {
	if len(lang) > LangLengthCutoff {
		return lang[:LangLengthCutoff] + "..."
	}
	return lang
}

// ScoreStyle returns a lipgloss style on a green-red spectrum for an AI
// authorship percentage. Uses a hardcoded, pre-calculated interpolation.
func ScoreStyle(percent uint8) lipgloss.Style {
	var hex string
	switch {
	case percent < 10:
		hex = "#047608"
	case percent < 20:
		hex = "#197804"
	case percent < 30:
		hex = "#327904"
	case percent < 40:
		hex = "#4d7b04"
	case percent < 50:
		hex = "#687d04"
	case percent < 60:
		hex = "#7e7a05"
	case percent < 70:
		hex = "#806105"
	case percent < 80:
		hex = "#824705"
	case percent < 90:
		hex = "#832d05"
	default:
		hex = "#851205"
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(hex))
}

// RenderCodePreview syntax-highlights the first maxLines lines of a code file
// for terminal display. Highlighting failures fall back to plain text.
func RenderCodePreview(content string, language string, theme string, maxLines int) string {
	lines := strings.Split(content, "\n")
	truncated := false
	if maxLines > 0 && len(lines) > maxLines {
		lines = lines[:maxLines]
		truncated = true
	}
	snippet := strings.Join(lines, "\n")

	var buf bytes.Buffer
	if err := quick.Highlight(&buf, snippet, language, "terminal256", theme); err != nil {
		buf.Reset()
		buf.WriteString(snippet)
	}
	if truncated {
		buf.WriteString("\n...")
	}
	return buf.String()
}
