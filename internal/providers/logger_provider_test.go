package providers

import (
	"os"
	"path/filepath"
	"testing"
	"weightsync/internal/structures"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeEnum_String(t *testing.T) {
	assert.Equal(t, "app", TypeApp.String())
	assert.Equal(t, "storage", TypeStorage.String())
	assert.Equal(t, "sync", TypeSync.String())
	assert.Equal(t, "http", TypeHTTP.String())
	assert.Equal(t, "capture", TypeCapture.String())
	assert.Equal(t, "unknown", TypeEnum(99).String())
}

func TestNewLogProvider_CreatesLogFiles(t *testing.T) {
	dir := t.TempDir()
	conf := &structures.Config{
		Logger: structures.LoggerConfig{
			Level:     "info",
			Mode:      0644,
			Dir:       dir,
			MaxSizeMb: 1,
		},
	}

	logger, err := NewLogProvider(conf)
	require.NoError(t, err)
	defer logger.Close()

	logger.Infof(TypeApp, "test message")
	logger.Debugf(TypeSync, "filtered out at info level")
	logger.Warnf(TypeStorage, "storage message")

	for _, name := range []string{"app", "storage", "sync", "http", "capture"} {
		_, err := os.Stat(filepath.Join(dir, name+".log"))
		assert.NoError(t, err, name)
	}

	data, err := os.ReadFile(filepath.Join(dir, "storage.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "storage message")
	assert.Contains(t, string(data), `"type":"storage"`)

	data, err = os.ReadFile(filepath.Join(dir, "sync.log"))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "filtered out")
}

func TestNewLogProvider_InvalidDir(t *testing.T) {
	conf := &structures.Config{
		Logger: structures.LoggerConfig{
			Level: "info",
			Mode:  0644,
			Dir:   "/nonexistent/directory/path",
		},
	}

	_, err := NewLogProvider(conf)
	assert.Error(t, err)
}

func TestNewLogProvider_InvalidLevel(t *testing.T) {
	conf := &structures.Config{
		Logger: structures.LoggerConfig{Level: "verbose", Mode: 0644, Dir: t.TempDir()},
	}

	_, err := NewLogProvider(conf)
	assert.Error(t, err)
}
