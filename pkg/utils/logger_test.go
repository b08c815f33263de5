package utils

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel(" WARN "))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("chatty"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel(""))
}

func TestNewWriterLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger(LoggerConfig{Level: "info", Format: "json"}, &buf)

	logger.Debug("hidden")
	logger.Info("Invoice created", zap.String("invoice_id", "abc"))
	require.NoError(t, logger.Close())

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "Invoice created", entry["msg"])
	assert.Equal(t, "abc", entry["invoice_id"])
	assert.Equal(t, "info", entry["level"])
	assert.Contains(t, entry, "timestamp")
}

func TestNewLogger_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "server.log")

	logger, err := NewLogger(LoggerConfig{Level: "debug", OutputPath: path, Format: "console"})
	require.NoError(t, err)

	logger.Debug("store opened", zap.String("driver", "file"))
	require.NoError(t, logger.Close())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "DEBUG")
	assert.Contains(t, string(content), "store opened")
}

func TestNewLogger_Stdout(t *testing.T) {
	logger, err := NewLogger(LoggerConfig{Level: "info", OutputPath: "stdout", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, logger.Logger)
	assert.Nil(t, logger.file)
}
