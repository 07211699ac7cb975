package logging

import (
	"bytes"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogrusAdapter(t *testing.T) {
	tests := []struct {
		name        string
		level       string
		format      string
		expectLevel logrus.Level
		expectJSON  bool
	}{
		{name: "debug level with text format", level: "debug", format: "text", expectLevel: logrus.DebugLevel},
		{name: "info level with json format", level: "info", format: "json", expectLevel: logrus.InfoLevel, expectJSON: true},
		{name: "upper case level", level: "WARN", format: "text", expectLevel: logrus.WarnLevel},
		{name: "invalid level defaults to info", level: "chatty", format: "text", expectLevel: logrus.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := NewLogrusAdapter(tt.level, tt.format)
			adapter, ok := logger.(*LogrusAdapter)
			require.True(t, ok, "logger should be a LogrusAdapter")

			assert.Equal(t, tt.expectLevel, adapter.logger.Level)
			_, isJSON := adapter.logger.Formatter.(*logrus.JSONFormatter)
			assert.Equal(t, tt.expectJSON, isJSON)
		})
	}
}

func newBufferedAdapter(level logrus.Level) (Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.SetLevel(level)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	return NewLogrusAdapterFromLogger(l), &buf
}

func TestLogrusAdapter_FieldsAndErrors(t *testing.T) {
	logger, buf := newBufferedAdapter(logrus.DebugLevel)

	logger.WithError(errors.New("upstream 502")).
		WithField(FieldBatch, 2).
		Warn("extraction batch failed", F(FieldFile, "card.csv"))

	out := buf.String()
	assert.Contains(t, out, "extraction batch failed")
	assert.Contains(t, out, "upstream 502")
	assert.Contains(t, out, "batch=2")
	assert.Contains(t, out, "file_path=card.csv")
}

func TestLogrusAdapter_LevelFiltering(t *testing.T) {
	logger, buf := newBufferedAdapter(logrus.InfoLevel)

	logger.Debug("strategy matched")
	assert.Empty(t, buf.String())

	logger.Info("ingestion finished", F(FieldCount, 3))
	assert.Contains(t, buf.String(), "count=3")
}

func TestNewLogrusAdapterFromLogger_Nil(t *testing.T) {
	logger := NewLogrusAdapterFromLogger(nil)
	adapter, ok := logger.(*LogrusAdapter)
	require.True(t, ok)
	assert.NotNil(t, adapter.logger)
}

func TestNewDiscardLogger(t *testing.T) {
	logger := NewDiscardLogger()
	assert.NotPanics(t, func() {
		logger.WithFields(F("a", 1), F("b", 2)).Error("nobody hears this")
	})
}

func TestConvertFields(t *testing.T) {
	fields := convertFields([]Field{F("key1", "value1"), F("key2", 42)})
	assert.Len(t, fields, 2)
	assert.Equal(t, "value1", fields["key1"])
	assert.Equal(t, 42, fields["key2"])

	assert.Empty(t, convertFields(nil))
}

func TestLogrusAdapter_SetOutputReturnsPrevious(t *testing.T) {
	logger, first := newBufferedAdapter(logrus.InfoLevel)
	r, ok := logger.(OutputRedirector)
	require.True(t, ok)

	var second bytes.Buffer
	prev := r.SetOutput(&second)
	assert.Same(t, first, prev)

	logger.WithField("k", "v").Info("redirected")
	assert.Empty(t, first.String())
	assert.Contains(t, second.String(), "redirected")
}
