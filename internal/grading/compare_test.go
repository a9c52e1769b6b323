package grading

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEqualArraysAreOrderSensitive(t *testing.T) {
	require.True(t, Equal([]any{1, 2, 3}, []any{1, 2, 3}))
	require.False(t, Equal([]any{1, 2}, []any{2, 1}))
	require.False(t, Equal([]any{1, 2}, []any{1, 2, 3}))
}

func TestEqualMapsIgnoreKeyOrder(t *testing.T) {
	left := map[string]any{"a": 1, "b": 2}
	right := map[string]any{"b": 2, "a": 1}
	require.True(t, Equal(left, right))

	require.False(t, Equal(map[string]any{"a": 1}, map[string]any{"a": 1, "b": 2}))
	require.False(t, Equal(map[string]any{"a": 1}, map[string]any{"c": 1}))
}

func TestEqualTreatsIntAndFloatOfSameValueAsEqual(t *testing.T) {
	require.True(t, Equal(2, 2.0))
	require.True(t, Equal([]any{0, 1}, []any{float64(0), float64(1)}))
	require.False(t, Equal(2, 2.5))
}

func TestEqualNestedStructures(t *testing.T) {
	expected := map[string]any{
		"pairs": []any{[]any{0, 1}, []any{2, 3}},
		"count": 2,
	}
	actual := map[string]any{
		"count": float64(2),
		"pairs": []any{[]any{float64(0), float64(1)}, []any{float64(2), float64(3)}},
	}
	require.True(t, Equal(expected, actual))
}

func TestEqualRejectsTypeMismatches(t *testing.T) {
	require.False(t, Equal([]any{1}, map[string]any{"0": 1}))
	require.False(t, Equal("1", 1))
	require.False(t, Equal(nil, 0))
	require.True(t, Equal(nil, nil))
}

func TestEqualToleratesFloatRoundOff(t *testing.T) {
	require.True(t, Equal(0.3, 0.1+0.2))
	require.True(t, Equal(1e12, 1e12+0.0001))
	require.False(t, Equal(1.0, 1.1))
}

func TestParseOutputDecodesJSON(t *testing.T) {
	value := ParseOutput("[0, 1]\n")
	require.True(t, Equal([]any{0, 1}, value))

	value = ParseOutput(`{"a": 1}`)
	require.True(t, Equal(map[string]any{"a": 1}, value))

	value = ParseOutput("42\n")
	require.True(t, Equal(42, value))
}

func TestParseOutputFallsBackToTrimmedString(t *testing.T) {
	require.Equal(t, "hello world", ParseOutput("  hello world\n"))
	require.Equal(t, "", ParseOutput("   \n"))
	require.Equal(t, "[1,2] trailing", ParseOutput("[1,2] trailing"))
}
