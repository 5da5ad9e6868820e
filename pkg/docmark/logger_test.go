package docmark

import (
	"bytes"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, LogWarn)

	logger.Debug("debug %d", 1)
	logger.Info("info")
	logger.Warn("warn %s", "x")
	logger.Error("error")

	out := buf.String()
	assert.NotContains(t, out, "debug 1")
	assert.NotContains(t, out, "[INFO]")
	assert.Contains(t, out, "[WARN] warn x")
	assert.Contains(t, out, "[ERROR] error")
	assert.False(t, logger.IsDebugMode())

	logger.SetLevel(LogDebug)
	assert.True(t, logger.IsDebugMode())
}

func TestLogger_FieldsAreSorted(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, LogInfo).WithFields(Fields{"zeta": 1, "alpha": "a"}).WithField("mid", true)

	logger.Info("hello")

	assert.True(t, strings.HasSuffix(strings.TrimSpace(buf.String()), "[INFO] hello alpha=a mid=true zeta=1"))
}

func TestLogger_DerivedLoggersShareLevel(t *testing.T) {
	var buf bytes.Buffer
	base := NewLogger(&buf, LogInfo)
	child := base.WithField("k", "v")

	base.SetLevel(LogOff)
	child.Error("hidden")

	assert.Empty(t, buf.String())
}

func TestLogger_RenderID(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, LogInfo)

	logger.WithRenderID().Info("one")
	logger.WithRenderID().Info("two")

	ids := regexp.MustCompile(`render_id=([0-9a-f-]{36})`).FindAllStringSubmatch(buf.String(), -1)
	if assert.Len(t, ids, 2) {
		assert.NotEqual(t, ids[0][1], ids[1][1])
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"debug": LogDebug,
		"INFO":  LogInfo,
		" warn": LogWarn,
		"error": LogError,
		"off":   LogOff,
		"???":   LogInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLogLevel(in), in)
	}
	assert.Equal(t, "WARN", LogWarn.String())
	assert.Equal(t, "UNKNOWN", LogLevel(42).String())
}
