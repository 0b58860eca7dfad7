package code_group

import (
	"fmt"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josehu07/codetective/utils"
)

func mustParseURL(t *testing.T, urlStr string) *url.URL {
	t.Helper()
	u, err := url.Parse(urlStr)
	require.NoError(t, err)
	return u
}

// Test textbox import rejects empty or whitespace-only content
func TestCodeGroup_ImportTextboxEmpty(t *testing.T) {
	group := NewCodeGroup()

	err := group.ImportTextbox("")
	require.Error(t, err)
	assert.True(t, utils.ErrorIsKind(err, utils.ErrParse))
	assert.Equal(t, 0, group.NumFiles())

	err = group.ImportTextbox("   \n\t  ")
	require.Error(t, err)
	assert.True(t, utils.ErrorIsKind(err, utils.ErrParse))
	assert.Equal(t, 0, group.NumFiles())
}

// Test textbox import creates exactly one file under the fixed synthetic path
func TestCodeGroup_ImportTextboxPath(t *testing.T) {
	group := NewCodeGroup()

	err := group.ImportTextbox("fn main() {}\n")
	require.NoError(t, err)
	require.Equal(t, 1, group.NumFiles())

	files := group.SortedFiles()
	assert.Equal(t, TextboxPath, files[0].Path)
	assert.False(t, files[0].File.IsRemote())

	size, known := files[0].File.GetSize()
	assert.True(t, known)
	assert.Equal(t, len("fn main() {}\n"), size)
}

// Test duplicate paths are rejected per-file without rolling back earlier adds
func TestCodeGroup_DuplicatePathRejected(t *testing.T) {
	group := NewCodeGroup()

	require.NoError(t, group.ImportTextbox("first paste"))
	err := group.ImportTextbox("second paste")
	require.Error(t, err)
	assert.True(t, utils.ErrorIsKind(err, utils.ErrExists))

	// the first file stays admitted, unmodified
	require.Equal(t, 1, group.NumFiles())
	files := group.SortedFiles()
	size, _ := files[0].File.GetSize()
	assert.Equal(t, len("first paste"), size)
}

// Test reset clears files and the skipped flag, and is idempotent
func TestCodeGroup_ResetIdempotent(t *testing.T) {
	group := NewCodeGroup()
	require.NoError(t, group.ImportTextbox("some code"))
	group.setSkipped()

	group.Reset()
	assert.Equal(t, 0, group.NumFiles())
	assert.False(t, group.HasSkipped())

	group.Reset()
	assert.Equal(t, 0, group.NumFiles())
	assert.False(t, group.HasSkipped())
}

// Test the file count never exceeds the cap across a sequence of imports,
// with over-cap candidates silently dropped
func TestCodeGroup_CountCapAcrossImports(t *testing.T) {
	group := NewCodeGroup()

	var files []UploadFile
	for i := 0; i < MaxNumFiles; i++ {
		files = append(files, UploadFile{
			Name: fmt.Sprintf("file_%03d.go", i),
			Data: []byte("package main\n"),
		})
	}
	require.NoError(t, group.ImportUpload(files))
	require.Equal(t, MaxNumFiles, group.NumFiles())

	// further admissible candidates are dropped, not errored
	err := group.ImportUpload([]UploadFile{{Name: "extra.go", Data: []byte("package x\n")}})
	require.NoError(t, err)
	assert.Equal(t, MaxNumFiles, group.NumFiles())

	err = group.ImportTextbox("more code")
	require.NoError(t, err)
	assert.Equal(t, MaxNumFiles, group.NumFiles())
}

// Test the upload list path stops listing at the remaining quota
func TestCodeGroup_UploadStopsAtQuota(t *testing.T) {
	group := NewCodeGroup()

	var files []UploadFile
	for i := 0; i < MaxNumFiles+20; i++ {
		files = append(files, UploadFile{
			Name: fmt.Sprintf("file_%03d.py", i),
			Data: []byte("print('hi')\n"),
		})
	}
	require.NoError(t, group.ImportUpload(files))
	assert.Equal(t, MaxNumFiles, group.NumFiles())
}

// Test total size is unknown as soon as any constituent size is unknown
func TestCodeGroup_TotalSizeUnknown(t *testing.T) {
	group := NewCodeGroup()
	require.NoError(t, group.ImportTextbox("0123456789"))

	total, known := group.TotalSize()
	assert.True(t, known)
	assert.Equal(t, 10, total)

	// a remote file without a length header has unknown size
	require.NoError(t, group.addFile("remote/thing.rs", NewRemoteFile(mustParseURL(t, "https://example.com/thing.rs"), 0)))
	_, known = group.TotalSize()
	assert.False(t, known)
}

// Test sorted listing is lexicographic by path
func TestCodeGroup_SortedFiles(t *testing.T) {
	group := NewCodeGroup()
	require.NoError(t, group.ImportUpload([]UploadFile{
		{Name: "zeta.go", Data: []byte("package z")},
		{Name: "alpha.go", Data: []byte("package a")},
		{Name: "mid.go", Data: []byte("package m")},
	}))

	files := group.SortedFiles()
	require.Len(t, files, 3)
	assert.Equal(t, "alpha.go", files[0].Path)
	assert.Equal(t, "mid.go", files[1].Path)
	assert.Equal(t, "zeta.go", files[2].Path)
}
