package zmqadapter

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriterLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriterLogger(LevelWarn, &buf)

	l.Log(Entry{Level: LevelInfo, Category: "test", Message: "should be dropped"})
	require.Empty(t, buf.String())

	l.Log(Entry{Level: LevelError, Category: "test", Message: "should appear"})
	require.Contains(t, buf.String(), "should appear")
	require.Contains(t, buf.String(), "ERROR")
}

func TestSetLoggerAffectsLogEvent(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriterLogger(LevelDebug, &buf)
	SetLogger(l)
	defer SetLogger(nil)

	logEvent("adapter", LevelInfo, "hello", nil, map[string]any{"n": 1})
	require.Contains(t, buf.String(), "hello")
	require.Contains(t, buf.String(), "n=1")
}

func TestNoopLoggerNeverWrites(t *testing.T) {
	SetLogger(nil)
	require.False(t, getLogger().IsEnabled(LevelError))
}
