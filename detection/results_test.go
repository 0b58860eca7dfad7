package detection

import (
	"encoding/json"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josehu07/codetective/code_group"
)

// Test the exported report carries one entry per tracked file with the
// status-dependent fields mutually exclusive
func TestExportResults_Fields(t *testing.T) {
	succeeded := &Task{
		Path:   "src/main.go",
		File:   code_group.NewLocalFile(".go", "package main\n"),
		Status: NewStatusCell(),
	}
	succeeded.Status.markFlying()
	succeeded.Status.succeed(73, "structured like generated code")

	failed := &Task{
		Path:   "src/lib.rs",
		File:   code_group.NewLocalFile(".rs", "pub fn f() {}\n"),
		Status: NewStatusCell(),
	}
	failed.Status.markFlying()
	failed.Status.fail("Status error: rate limited")

	data, err := ExportResults([]*Task{succeeded, failed})
	require.NoError(t, err)

	var report ExportReport
	require.NoError(t, json.Unmarshal(data, &report))
	require.Len(t, report.Results, 2)

	first := report.Results[0]
	assert.Equal(t, "src/main.go", first.File)
	assert.Equal(t, "Go", first.Lang)
	require.NotNil(t, first.Size)
	assert.Equal(t, len("package main\n"), *first.Size)
	assert.True(t, first.Finished)
	require.NotNil(t, first.Likelihood)
	assert.Equal(t, uint8(73), *first.Likelihood)
	require.NotNil(t, first.Reasoning)
	assert.Equal(t, "structured like generated code", *first.Reasoning)
	assert.Nil(t, first.ErrorMsg)

	second := report.Results[1]
	assert.Equal(t, "Rust", second.Lang)
	assert.True(t, second.Finished)
	assert.Nil(t, second.Likelihood)
	assert.Nil(t, second.Reasoning)
	require.NotNil(t, second.ErrorMsg)
	assert.Contains(t, *second.ErrorMsg, "rate limited")
}

// Test a file still mid-flight at export time gets a placeholder note rather
// than being omitted
func TestExportResults_InFlightPlaceholder(t *testing.T) {
	flying := &Task{
		Path:   "slow.py",
		File:   code_group.NewLocalFile(".py", "print()\n"),
		Status: NewStatusCell(),
	}
	flying.Status.markFlying()

	data, err := ExportResults([]*Task{flying})
	require.NoError(t, err)

	var report ExportReport
	require.NoError(t, json.Unmarshal(data, &report))
	require.Len(t, report.Results, 1)

	entry := report.Results[0]
	assert.False(t, entry.Finished)
	assert.Nil(t, entry.Likelihood)
	require.NotNil(t, entry.ErrorMsg)
	assert.Equal(t, "still in progress", *entry.ErrorMsg)
}

// Test an unknown remote size serializes as null, not zero
func TestExportResults_UnknownSize(t *testing.T) {
	u, err := url.Parse("https://example.com/r.go")
	require.NoError(t, err)

	task := &Task{
		Path:   "r.go",
		File:   code_group.NewRemoteFile(u, 0),
		Status: NewStatusCell(),
	}
	data, err := ExportResults([]*Task{task})
	require.NoError(t, err)

	var raw map[string][]map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Len(t, raw["results"], 1)
	size, present := raw["results"][0]["size"]
	assert.True(t, present)
	assert.Nil(t, size)
}
