package logadapter

import (
	"bytes"
	"strings"
	"testing"

	desim "github.com/joeycumines/go-desim"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestLoggerWritesStructuredFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(zerolog.New(&buf))

	var _ desim.Logger = l
	l.Info("replication started", desim.F("replication", 3), desim.F("seed", uint64(42)))

	out := buf.String()
	assert.True(t, strings.Contains(out, "replication started"))
	assert.True(t, strings.Contains(out, "\"replication\":3"))
	assert.True(t, strings.Contains(out, "\"seed\":42"))
}

func TestLoggerLevelsRoute(t *testing.T) {
	var buf bytes.Buffer
	l := New(zerolog.New(&buf))

	l.Debug("debug msg")
	l.Warn("warn msg")
	l.Error("error msg")

	out := buf.String()
	assert.True(t, strings.Contains(out, "\"level\":\"debug\""))
	assert.True(t, strings.Contains(out, "\"level\":\"warn\""))
	assert.True(t, strings.Contains(out, "\"level\":\"error\""))
}
