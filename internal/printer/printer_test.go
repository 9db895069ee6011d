package printer

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// capture redirects output for the duration of the test, without colors.
func capture(t *testing.T) (*bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	SetOutput(&out, &errOut)

	noColor := color.NoColor
	color.NoColor = true
	t.Cleanup(func() {
		SetOutput(os.Stdout, os.Stderr)
		color.NoColor = noColor
	})
	return &out, &errOut
}

func TestError(t *testing.T) {
	t.Run("returns error with title", func(t *testing.T) {
		_, errOut := capture(t)
		err := Error("Test Error", "This is a test error", []string{})
		require.Error(t, err)
		require.Equal(t, "Test Error", err.Error())
		assert.Contains(t, errOut.String(), "This is a test error")
	})

	t.Run("single suggestion printed as is", func(t *testing.T) {
		_, errOut := capture(t)
		err := Error("Test Error", "Explanation", []string{"Try this fix"})
		require.Equal(t, "Test Error", err.Error())
		assert.Contains(t, errOut.String(), "Try this fix")
		assert.NotContains(t, errOut.String(), "Either:")
	})

	t.Run("multiple suggestions are numbered", func(t *testing.T) {
		_, errOut := capture(t)
		err := Error("Test Error", "Explanation", []string{"First", "Second"})
		require.Equal(t, "Test Error", err.Error())
		assert.Contains(t, errOut.String(), "Either:")
		assert.Contains(t, errOut.String(), "1. First")
		assert.Contains(t, errOut.String(), "2. Second")
	})
}

func TestErrorWithContext(t *testing.T) {
	_, errOut := capture(t)
	context := map[string]string{
		"Team":  "night-owls",
		"Cache": "/tmp/roster",
	}
	err := ErrorWithContext("Test Error", "Explanation", context, nil)
	require.Error(t, err)
	require.Equal(t, "Test Error", err.Error())

	out := errOut.String()
	assert.Less(t, strings.Index(out, "Cache:"), strings.Index(out, "Team:"), "context printed in key order")
}

func TestOutputDestinations(t *testing.T) {
	out, errOut := capture(t)

	Success("saved\n")
	Info("plain %d\n", 1)
	Step("step\n")
	Warning("careful\n")
	Banner("local-only mode")

	assert.Equal(t, "✓ saved\nplain 1\n→ step\n", out.String())
	assert.Contains(t, errOut.String(), "careful")
	assert.Contains(t, errOut.String(), "local-only mode")
}
