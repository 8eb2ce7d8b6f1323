package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	t.Run("quiet by default", func(t *testing.T) {
		var buf bytes.Buffer
		logger := New(false, &buf)
		logger.Debug("lifecycle detail")
		logger.Info("progress")
		logger.Warn("width query failed")

		out := buf.String()
		assert.NotContains(t, out, "lifecycle detail")
		assert.NotContains(t, out, "progress")
		assert.Contains(t, out, "width query failed")
		assert.Contains(t, out, "WARN")
		assert.Contains(t, out, "dromus")
	})

	t.Run("verbose shows debug", func(t *testing.T) {
		var buf bytes.Buffer
		New(true, &buf).Debug("lifecycle detail")
		assert.Contains(t, buf.String(), "lifecycle detail")
	})

	t.Run("nil writer", func(t *testing.T) {
		assert.NotNil(t, New(false, nil))
	})
}
