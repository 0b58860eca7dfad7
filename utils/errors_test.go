package utils

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Test constructors tag errors with their kind and render a stable message
func TestKindedError_Kinds(t *testing.T) {
	err := ParseErr("bad input: %s", "xyz")
	assert.Equal(t, "Parse error: bad input: xyz", err.Error())
	assert.True(t, ErrorIsKind(err, ErrParse))
	assert.False(t, ErrorIsKind(err, ErrStatus))

	assert.True(t, ErrorIsKind(ExistsErr("dup"), ErrExists))
	assert.True(t, ErrorIsKind(ExtenErr("ext"), ErrExten))
	assert.True(t, ErrorIsKind(StatusErr("http"), ErrStatus))
	assert.True(t, ErrorIsKind(LimitErr("cap"), ErrLimit))
	assert.True(t, ErrorIsKind(AsciiErr("key"), ErrAscii))
	assert.True(t, ErrorIsKind(GitHubErr("repo"), ErrGitHub))
	assert.True(t, ErrorIsKind(UploadErr("zip"), ErrUpload))
}

// Test kind checks see through fmt.Errorf wrapping
func TestKindedError_Wrapped(t *testing.T) {
	inner := LimitErr("quota exceeded")
	wrapped := fmt.Errorf("importing archive: %w", inner)
	assert.True(t, ErrorIsKind(wrapped, ErrLimit))
	assert.False(t, ErrorIsKind(wrapped, ErrUpload))
}

// Test non-kinded errors never match a kind
func TestKindedError_Plain(t *testing.T) {
	assert.False(t, ErrorIsKind(fmt.Errorf("plain"), ErrParse))
	assert.False(t, ErrorIsKind(nil, ErrParse))
}
