package tui

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTTYOutput(t *testing.T) {
	t.Run("success line", func(t *testing.T) {
		var buf bytes.Buffer
		out := NewTTYOutput(&buf)
		out.Success("built 5.6")

		assert.Contains(t, buf.String(), "✓")
		assert.Contains(t, buf.String(), "built 5.6")
	})

	t.Run("error line", func(t *testing.T) {
		var buf bytes.Buffer
		out := NewTTYOutput(&buf)
		out.Error(errors.New("clone failed"))

		assert.Contains(t, buf.String(), "✗")
		assert.Contains(t, buf.String(), "clone failed")
	})

	t.Run("warning line", func(t *testing.T) {
		var buf bytes.Buffer
		out := NewTTYOutput(&buf)
		out.Warning("gradle exited non-zero")

		assert.Contains(t, buf.String(), "⚠")
		assert.Contains(t, buf.String(), "gradle exited non-zero")
	})

	t.Run("info line", func(t *testing.T) {
		var buf bytes.Buffer
		out := NewTTYOutput(&buf)
		out.Info("fetching refs")

		assert.Contains(t, buf.String(), "fetching refs")
	})

	t.Run("json payload", func(t *testing.T) {
		var buf bytes.Buffer
		out := NewTTYOutput(&buf)
		require.NoError(t, out.JSON(map[string]string{"subproject": "5.6"}))

		var decoded map[string]string
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, "5.6", decoded["subproject"])
	})
}

func TestJSONOutput(t *testing.T) {
	t.Run("decoration methods are silent", func(t *testing.T) {
		var buf bytes.Buffer
		out := NewJSONOutput(&buf)
		out.Success("built")
		out.Warning("slow")
		out.Info("fetching")

		assert.Empty(t, buf.String())
	})

	t.Run("error is structured", func(t *testing.T) {
		var buf bytes.Buffer
		out := NewJSONOutput(&buf)
		out.Error(errors.New("missing artifacts"))

		var decoded map[string]string
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, "missing artifacts", decoded["error"])
	})

	t.Run("json payload", func(t *testing.T) {
		var buf bytes.Buffer
		out := NewJSONOutput(&buf)
		require.NoError(t, out.JSON([]string{"deb", "rpm", "zip"}))

		var decoded []string
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, []string{"deb", "rpm", "zip"}, decoded)
	})
}

func TestNewOutput(t *testing.T) {
	var buf bytes.Buffer

	_, isJSON := NewOutput(&buf, "json").(*JSONOutput)
	assert.True(t, isJSON)

	_, isTTY := NewOutput(&buf, "text").(*TTYOutput)
	assert.True(t, isTTY)

	// unknown formats fall back to the terminal renderer
	_, isTTY = NewOutput(&buf, "yaml").(*TTYOutput)
	assert.True(t, isTTY)
}
