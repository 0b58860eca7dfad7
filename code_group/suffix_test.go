package code_group

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Test extension parsing stops at path separators and requires a real suffix
func TestExtensionOf(t *testing.T) {
	ext, ok := extensionOf("src/main.rs")
	assert.True(t, ok)
	assert.Equal(t, ".rs", ext)

	ext, ok = extensionOf("archive.tar.gz")
	assert.True(t, ok)
	assert.Equal(t, ".gz", ext)

	_, ok = extensionOf("Makefile")
	assert.False(t, ok)

	// a dot in a directory name is not an extension
	_, ok = extensionOf("v1.2/README")
	assert.False(t, ok)

	// trailing dot carries no extension
	_, ok = extensionOf("weird.")
	assert.False(t, ok)
}

// Test the allow-list predicate and display name resolution
func TestLangNameOf(t *testing.T) {
	assert.True(t, IsCodeExtension(".go"))
	assert.True(t, IsCodeExtension(".rs"))
	assert.False(t, IsCodeExtension(".png"))
	assert.False(t, IsCodeExtension(".txt"))

	assert.Equal(t, "Go", LangNameOf(".go", true))
	assert.Equal(t, "Rust", LangNameOf(".rs", true))
	assert.Equal(t, "-", LangNameOf(".unknownext", true))
	assert.Equal(t, "-", LangNameOf("", false))

	// long names are cut off for the table column
	assert.Equal(t, "SystemVeri...", LangNameOf(".sv", true))
}

// Test pasted content gets a content-based language guess with the dash
// fallback when the guesser comes up empty
func TestContentLangName(t *testing.T) {
	lang := ContentLangName("package main\n\nimport \"fmt\"\n\nfunc main() {\n\tfmt.Println(\"hi\")\n}\n")
	assert.NotEmpty(t, lang)

	// the cut-off applies to whatever name comes back
	assert.LessOrEqual(t, len(lang), 13)
}
