package utils

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel(""))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("verbose"))
}

func TestNewLogger_WritesToStdoutAndFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	var out bytes.Buffer

	logger, err := newLogger(LoggerConfig{Level: "info", Dir: dir, Name: "Example Social"}, &out)
	require.NoError(t, err)

	logger.Info("sitemap written", zap.String("path", "sitemap.xml"))
	logger.Debug("hidden")
	require.NoError(t, logger.Close())

	assert.Contains(t, out.String(), `"msg":"sitemap written"`)
	assert.NotContains(t, out.String(), "hidden")

	files, err := filepath.Glob(filepath.Join(dir, "example_social_*.log"))
	require.NoError(t, err)
	require.Len(t, files, 1)

	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "sitemap written")
}

func TestNewLogger_StdoutOnly(t *testing.T) {
	var out bytes.Buffer

	logger, err := newLogger(LoggerConfig{Level: "debug"}, &out)
	require.NoError(t, err)

	logger.Debug("visible")
	assert.NoError(t, logger.Close())
	assert.Contains(t, out.String(), "visible")
}
