package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"
)

func TestLoggerFromContext(t *testing.T) {
	require.Same(t, log.Default(), loggerFromContext(context.Background()))

	var buf bytes.Buffer
	l := newLogger(&buf, log.DebugLevel)
	ctx := withLogger(context.Background(), l)
	require.Same(t, l, loggerFromContext(ctx))
}

func TestLoggerLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, log.WarnLevel)
	l.Info("hidden")
	l.Warn("shown")
	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), "shown")
}

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	p := newProgress(newLogger(&buf, log.InfoLevel))
	p.done("Wrote out.png")
	out := buf.String()
	require.Contains(t, out, "Wrote out.png (")
	require.True(t, strings.HasSuffix(strings.TrimSpace(out), "s)"), out)
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, log.DebugLevel, parseLevel("DEBUG"))
	require.Equal(t, log.WarnLevel, parseLevel(" warn "))
	require.Equal(t, log.InfoLevel, parseLevel(""))
	require.Equal(t, log.InfoLevel, parseLevel("chatty"))
}
