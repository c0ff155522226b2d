package sl_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/UnknownOlympus/aeolus/internal/lib/logger/sl"
	"github.com/stretchr/testify/assert"
)

func TestErr(t *testing.T) {
	t.Parallel()

	var logBuf bytes.Buffer // buffer for log capturing
	// Create slog.Logger, which writes in logBuf
	testLogger := slog.New(slog.NewTextHandler(&logBuf, &slog.HandlerOptions{}))

	errAttr := sl.Err(assert.AnError)
	testLogger.Warn("expected result:", errAttr)

	loggedOutput := logBuf.String()

	assert.Contains(t, loggedOutput, assert.AnError.Error())
}

func TestRedact(t *testing.T) {
	t.Parallel()

	var logBuf bytes.Buffer
	testLogger := slog.New(slog.NewTextHandler(&logBuf, &slog.HandlerOptions{ReplaceAttr: sl.Redact}))

	testLogger.Info("login", "user", "u1", "Authorization", "Bearer abc.def", "token", "xyz")

	loggedOutput := logBuf.String()
	assert.Contains(t, loggedOutput, "user=u1")
	assert.NotContains(t, loggedOutput, "abc.def")
	assert.NotContains(t, loggedOutput, "xyz")
	assert.Contains(t, loggedOutput, "token=[REDACTED]")
}

func TestRedactFields(t *testing.T) {
	t.Parallel()

	fields := map[string]string{"title": "required", "password": "hunter2"}

	got := sl.RedactFields(fields)

	assert.Equal(t, "required", got["title"])
	assert.Equal(t, "[REDACTED]", got["password"])
	assert.Equal(t, "hunter2", fields["password"], "input must not be modified")
}
