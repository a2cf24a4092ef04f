package app

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewLoggerFormats(t *testing.T) {
	var buf bytes.Buffer
	newLoggerTo(&buf, "json").Info("ready", "format", "json")
	require.True(t, strings.HasPrefix(buf.String(), "{"))

	buf.Reset()
	newLoggerTo(&buf, "pretty").Info("ready")
	require.Contains(t, buf.String(), "msg=ready")
}
