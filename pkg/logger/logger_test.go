package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureJSON(t *testing.T) (*Logger, *bytes.Buffer) {
	t.Helper()
	l := New(LoggingConfig{Level: "debug", Format: "json"})
	buf := &bytes.Buffer{}
	l.Logger.SetOutput(buf)
	return l, buf
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &fields))
	return fields
}

func TestNewLevels(t *testing.T) {
	assert.Equal(t, logrus.WarnLevel, New(LoggingConfig{Level: "warn"}).Logger.GetLevel())
	assert.Equal(t, logrus.InfoLevel, New(LoggingConfig{Level: "chatty"}).Logger.GetLevel())
}

func TestNewDefaultTagsComponent(t *testing.T) {
	l := NewDefault("posts")
	assert.Equal(t, "posts", l.Data["component"])
}

func TestWithContextAddsTraceID(t *testing.T) {
	l, buf := captureJSON(t)
	ctx := WithTraceID(context.Background(), "trace-123")

	l.WithContext(ctx).Info("hello")

	fields := decodeLine(t, buf)
	assert.Equal(t, "trace-123", fields["trace_id"])
	assert.Equal(t, "hello", fields["msg"])
}

func TestLogRequestLevels(t *testing.T) {
	tests := []struct {
		status int
		level  string
	}{
		{http.StatusOK, "info"},
		{http.StatusNotFound, "warning"},
		{http.StatusInternalServerError, "error"},
	}
	for _, tt := range tests {
		l, buf := captureJSON(t)
		l.LogRequest(context.Background(), http.MethodGet, "/posts", tt.status, 15*time.Millisecond)

		fields := decodeLine(t, buf)
		assert.Equal(t, tt.level, fields["level"])
		assert.Equal(t, float64(tt.status), fields["status"])
		assert.Equal(t, "/posts", fields["path"])
	}
}

func TestTraceIDHelpers(t *testing.T) {
	a, b := NewTraceID(), NewTraceID()
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 36)

	assert.Equal(t, "", GetTraceID(context.Background()))
	assert.Equal(t, a, GetTraceID(WithTraceID(context.Background(), a)))
}

func TestFileOutput(t *testing.T) {
	prefix := filepath.Join(t.TempDir(), "logs", "blog")
	l := New(LoggingConfig{Level: "info", Format: "text", Output: "file", FilePrefix: prefix})
	l.Info("to file")

	matches, err := filepath.Glob(prefix + "-*.log")
	require.NoError(t, err)
	require.Len(t, matches, 1)

	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "to file")
}
