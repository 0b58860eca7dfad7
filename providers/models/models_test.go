package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josehu07/codetective/utils"
)

// Test a clean JSON response parses into likelihood and reasoning
func TestParseDetectResult_Plain(t *testing.T) {
	result, err := ParseDetectResult(`{"likelihood": 85, "reasoning": "very uniform comments"}`)
	require.NoError(t, err)
	assert.Equal(t, uint8(85), result.Likelihood)
	assert.Equal(t, "very uniform comments", result.Reasoning)
}

// Test markdown fences and surrounding prose around the JSON are tolerated
func TestParseDetectResult_Fenced(t *testing.T) {
	text := "Here is my analysis:\n```json\n{\"likelihood\": 12, \"reasoning\": \"idiosyncratic style\"}\n```\n"
	result, err := ParseDetectResult(text)
	require.NoError(t, err)
	assert.Equal(t, uint8(12), result.Likelihood)
}

// Test out-of-range likelihood values are clamped into [0, 100]
func TestParseDetectResult_Clamping(t *testing.T) {
	result, err := ParseDetectResult(`{"likelihood": 137, "reasoning": "r"}`)
	require.NoError(t, err)
	assert.Equal(t, uint8(100), result.Likelihood)

	result, err = ParseDetectResult(`{"likelihood": -5, "reasoning": "r"}`)
	require.NoError(t, err)
	assert.Equal(t, uint8(0), result.Likelihood)
}

// Test responses without a JSON object are Parse-kind errors
func TestParseDetectResult_Malformed(t *testing.T) {
	_, err := ParseDetectResult("I cannot analyze this code.")
	require.Error(t, err)
	assert.True(t, utils.ErrorIsKind(err, utils.ErrParse))

	_, err = ParseDetectResult(`{"likelihood": "not a number"}`)
	require.Error(t, err)
	assert.True(t, utils.ErrorIsKind(err, utils.ErrParse))
}
