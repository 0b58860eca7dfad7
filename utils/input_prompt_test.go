package utils

import (
	"bufio"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test a single-line prompt returns the trimmed line
func TestInputPrompt_TrimsLine(t *testing.T) {
	reader := bufio.NewReader(strings.NewReader("  dracula  \n"))

	line, err := InputPrompt(reader)
	require.NoError(t, err)
	assert.Equal(t, "dracula", line)
}

// Test end of input yields an empty line without an error
func TestInputPrompt_EndOfInput(t *testing.T) {
	reader := bufio.NewReader(strings.NewReader(""))

	line, err := InputPrompt(reader)
	require.NoError(t, err)
	assert.Equal(t, "", line)
}

// Test multi-line reads stop at the terminator line and keep inner content
func TestReadMultiline_StopsAtTerminator(t *testing.T) {
	reader := bufio.NewReader(strings.NewReader("fn main() {\n}\nEOF\nignored\n"))

	content, err := ReadMultiline(reader, "EOF")
	require.NoError(t, err)
	assert.Equal(t, "fn main() {\n}\n", content)
}
