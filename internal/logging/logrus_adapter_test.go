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
		{name: "upper case level and format", level: "WARN", format: "JSON", expectLevel: logrus.WarnLevel, expectJSON: true},
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

func TestNewLogrusAdapterWithOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogrusAdapterWithOutput("debug", "json", &buf)

	logger.WithField(FieldProvider, "gemini").Debug("completion call", Field{Key: FieldAttempt, Value: 2})

	output := buf.String()
	assert.Contains(t, output, `"msg":"completion call"`)
	assert.Contains(t, output, `"provider":"gemini"`)
	assert.Contains(t, output, `"attempt":2`)
}

func TestNewLogrusAdapterFromLogger(t *testing.T) {
	existing := logrus.New()
	adapter, ok := NewLogrusAdapterFromLogger(existing).(*LogrusAdapter)
	require.True(t, ok)
	assert.Same(t, existing, adapter.logger)

	adapter, ok = NewLogrusAdapterFromLogger(nil).(*LogrusAdapter)
	require.True(t, ok)
	assert.NotNil(t, adapter.logger)
}

func newBufferedAdapter(level logrus.Level) (Logger, *bytes.Buffer) {
	logrusLogger := logrus.New()
	var buf bytes.Buffer
	logrusLogger.SetOutput(&buf)
	logrusLogger.SetLevel(level)
	logrusLogger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	return NewLogrusAdapterFromLogger(logrusLogger), &buf
}

func TestLogrusAdapter_LoggingMethods(t *testing.T) {
	tests := []struct {
		name    string
		logFunc func(Logger, string, ...Field)
		message string
	}{
		{name: "Debug", logFunc: Logger.Debug, message: "debug message"},
		{name: "Info", logFunc: Logger.Info, message: "info message"},
		{name: "Warn", logFunc: Logger.Warn, message: "warn message"},
		{name: "Error", logFunc: Logger.Error, message: "error message"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, buf := newBufferedAdapter(logrus.DebugLevel)
			tt.logFunc(logger, tt.message, Field{Key: FieldCategory, Value: "Groceries"})

			assert.Contains(t, buf.String(), tt.message)
			assert.Contains(t, buf.String(), "category=Groceries")
		})
	}
}

func TestLogrusAdapter_LevelFiltering(t *testing.T) {
	logger, buf := newBufferedAdapter(logrus.WarnLevel)
	logger.Info("hidden")
	logger.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestLogrusAdapter_ChainedCalls(t *testing.T) {
	logger, buf := newBufferedAdapter(logrus.InfoLevel)

	logger.
		WithField(FieldChunk, 3).
		WithFields(Field{Key: FieldDiagnosis, Value: "rate_limit"}).
		WithError(errors.New("quota exceeded")).
		Error("chunk failed")

	output := buf.String()
	assert.Contains(t, output, "chunk failed")
	assert.Contains(t, output, "chunk=3")
	assert.Contains(t, output, "diagnosis=rate_limit")
	assert.Contains(t, output, "quota exceeded")
}

func TestConvertFields(t *testing.T) {
	logrusFields := convertFields([]Field{
		{Key: "key1", Value: "value1"},
		{Key: "key2", Value: 42},
	})
	assert.Len(t, logrusFields, 2)
	assert.Equal(t, 42, logrusFields["key2"])
	assert.Len(t, convertFields(nil), 0)
}

func TestOrNop(t *testing.T) {
	assert.IsType(t, NopLogger{}, OrNop(nil))

	mock := NewMockLogger()
	assert.Same(t, mock, OrNop(mock))

	// NopLogger must absorb every call without panicking.
	nop := OrNop(nil)
	nop.WithError(errors.New("x")).WithField("k", "v").WithFields().Info("ignored")
}

func TestLogrusAdapter_ImplementsInterface(t *testing.T) {
	var _ Logger = (*LogrusAdapter)(nil)
	var _ Logger = (*MockLogger)(nil)
	var _ Logger = NopLogger{}
}
