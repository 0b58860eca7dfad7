package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Test byte sizes render as a dash, raw bytes, or KB with two decimals
func TestFormatFileSize(t *testing.T) {
	assert.Equal(t, "-", FormatFileSize(0, false))
	assert.Equal(t, "0", FormatFileSize(0, true))
	assert.Equal(t, "512", FormatFileSize(512, true))
	assert.Equal(t, "1.00 KB", FormatFileSize(1024, true))
	assert.Equal(t, "1.50 KB", FormatFileSize(1536, true))
}

// Test long paths are cut off from the left, keeping the tail visible
func TestPathDisplay(t *testing.T) {
	short := "src/main.go"
	assert.Equal(t, short, PathDisplay(short))

	long := strings.Repeat("deep/", 12) + "file.go"
	display := PathDisplay(long)
	assert.True(t, strings.HasPrefix(display, "..."))
	assert.Equal(t, PathLengthCutoff+3, len(display))
	assert.True(t, strings.HasSuffix(display, "file.go"))
}

// Test long language names are cut off from the right
func TestLangDisplay(t *testing.T) {
	assert.Equal(t, "Go", LangDisplay("Go"))
	assert.Equal(t, "SystemVeri...", LangDisplay("SystemVerilog"))
}

// Test the score spectrum ends are stable
func TestScoreStyle(t *testing.T) {
	low := ScoreStyle(0)
	high := ScoreStyle(100)
	assert.NotEqual(t, low.GetForeground(), high.GetForeground())
	assert.Equal(t, ScoreStyle(5).GetForeground(), ScoreStyle(9).GetForeground())
}

// Test previews keep at most maxLines lines and mark truncation
func TestRenderCodePreview(t *testing.T) {
	content := "line1\nline2\nline3\nline4\n"
	preview := RenderCodePreview(content, "go", "dracula", 2)
	assert.True(t, strings.HasSuffix(preview, "\n..."))

	full := RenderCodePreview("one line", "go", "dracula", 10)
	assert.False(t, strings.HasSuffix(full, "\n..."))
}
