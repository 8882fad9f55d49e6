package testutil

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogCapture(t *testing.T) {
	logger, capture := NewTestLogger(t)

	logger.Info("datasæt indlæst", slog.Int("rows", 12))
	logger.With(slog.String("component", "forecast")).Warn("model fit skipped")
	logger.Debug("noise")

	assert.Len(t, capture.Records(), 3)
	assert.Len(t, capture.AtLevel(slog.LevelWarn), 1)
	assert.True(t, capture.HasMessage("indlæst"))
	assert.True(t, capture.HasAttr("rows", int64(12)))
	assert.True(t, capture.HasAttr("component", "forecast"))
	assert.False(t, capture.HasAttr("component", "charts"))
	AssertLogged(t, capture, slog.LevelWarn, "skipped")
	AssertNoErrors(t, capture)

	capture.Reset()
	assert.Empty(t, capture.Records())
}
