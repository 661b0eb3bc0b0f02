package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDotEnv(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDotEnv_LoadsValuesAndIgnoresNoise(t *testing.T) {
	t.Setenv("SW_A", "")
	t.Setenv("SW_B", "")
	t.Setenv("SW_C", "")

	path := writeDotEnv(t, `
# comment

SW_A=one
export SW_B=two
SW_C="three"
`)
	require.NoError(t, loadDotEnv(path))

	assert.Equal(t, "one", os.Getenv("SW_A"))
	assert.Equal(t, "two", os.Getenv("SW_B"))
	assert.Equal(t, "three", os.Getenv("SW_C"))
}

func TestLoadDotEnv_DoesNotOverwriteExistingEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")

	require.NoError(t, loadDotEnv(writeDotEnv(t, "LOG_LEVEL=debug\n")))
	assert.Equal(t, "warn", os.Getenv("LOG_LEVEL"))
}

func TestLoadDotEnv_StripsSingleQuotes(t *testing.T) {
	t.Setenv("REDIS_PASSWORD", "")

	require.NoError(t, loadDotEnv(writeDotEnv(t, "REDIS_PASSWORD='s3cret value'\n")))
	assert.Equal(t, "s3cret value", os.Getenv("REDIS_PASSWORD"))
}

func TestLoadDotEnv_MissingFile(t *testing.T) {
	assert.NoError(t, loadDotEnv(filepath.Join(t.TempDir(), "absent.env")))
}
