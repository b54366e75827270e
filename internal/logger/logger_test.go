package logger

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fixedClock() time.Time {
	return time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
}

func TestLoggerFormat(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf)
	l.now = fixedClock

	l.Info("loaded %d users", 3)
	assert.Equal(t, "[26-03-04 05:06:07] INFO  loaded 3 users\n", buf.String())
}

func TestLoggerDebugRequiresVerbose(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf)

	l.Debug("hidden")
	assert.Empty(t, buf.String())

	l.SetVerbose(true)
	assert.True(t, l.IsVerbose())
	l.Debug("shown")
	assert.Contains(t, buf.String(), "DEBUG shown")
}

func TestLoggerWithPrefixesComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf).With("directory").With("delete")

	l.Error("boom")
	assert.True(t, strings.HasSuffix(buf.String(), "ERROR directory: delete: boom\n"), buf.String())
}

func TestLoggerColor(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf)
	l.SetColor(true)

	l.Warn("careful")
	assert.Contains(t, buf.String(), ColorYellow+"WARN ")
}
