package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewWithSink_JSONFields(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewWithSink(Config{Level: "info", JSON: true}, zapcore.AddSync(&buf))
	require.NoError(t, err)

	WithComponent(WithRun(l, "run-1"), "montecarlo").Info("run finished")
	require.NoError(t, l.Sync())

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "run finished", entry["msg"])
	assert.Equal(t, "run-1", entry["run_id"])
	assert.Equal(t, "montecarlo", entry["component"])
	assert.Contains(t, entry, "timestamp")
}

func TestNewWithSink_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewWithSink(Config{Level: "warn", JSON: true}, zapcore.AddSync(&buf))
	require.NoError(t, err)

	l.Info("dropped")
	assert.Zero(t, buf.Len())

	l.Warn("kept")
	assert.NotZero(t, buf.Len())
}

func TestNewWithSink_BadLevel(t *testing.T) {
	_, err := NewWithSink(Config{Level: "loud"}, zapcore.AddSync(&bytes.Buffer{}))
	assert.Error(t, err)
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))
}
