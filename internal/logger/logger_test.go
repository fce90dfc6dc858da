package logger

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func resetLogger() {
	SetVerbose(false)
	SetOutput(os.Stderr)
}

func TestDebugRespectsVerbose(t *testing.T) {
	defer resetLogger()

	var buf bytes.Buffer
	SetOutput(&buf)

	Debug("hidden %d", 1)
	assert.Empty(t, buf.String())

	SetVerbose(true)
	Debug("shown %d", 2)
	assert.Contains(t, buf.String(), "[DEBUG] shown 2")
}

func TestInfoRespectsVerbose(t *testing.T) {
	defer resetLogger()

	var buf bytes.Buffer
	SetOutput(&buf)

	Info("hidden")
	assert.Empty(t, buf.String())

	SetVerbose(true)
	Info("sync pass complete")
	assert.Contains(t, buf.String(), "[INFO] sync pass complete")
}

func TestWarnAndErrorAlwaysPrint(t *testing.T) {
	defer resetLogger()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(false)

	Warn("destination copy failed: %s", "/mnt/export")
	Error("connector closed unexpectedly")

	out := buf.String()
	assert.Contains(t, out, "[WARN] destination copy failed: /mnt/export")
	assert.Contains(t, out, "[ERROR] connector closed unexpectedly")
}

func TestIsVerbose(t *testing.T) {
	defer resetLogger()

	SetVerbose(true)
	assert.True(t, IsVerbose())
	SetVerbose(false)
	assert.False(t, IsVerbose())
}
