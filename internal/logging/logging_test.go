package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New("info", &buf)

	logger.Debug("hidden")
	logger.Info("bloom started", "run", "bloom_1")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "bloom started")
	assert.Contains(t, out, "bloom_1")
}

func TestNewUnknownLevelIsWarn(t *testing.T) {
	var buf bytes.Buffer
	logger := New("chatty", &buf)

	logger.Info("quiet")
	logger.Warn("loud")

	assert.NotContains(t, buf.String(), "quiet")
	assert.Contains(t, buf.String(), "loud")
}
