package env

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEnv_Precedence(t *testing.T) {
	t.Setenv("COVIDBOARD_TEST_KEY", "from-os")
	Env = map[string]string{}
	t.Cleanup(func() { Env = nil })

	assert.Equal(t, "from-os", GetEnv("COVIDBOARD_TEST_KEY", "default"))

	Env["COVIDBOARD_TEST_KEY"] = "from-file"
	assert.Equal(t, "from-file", GetEnv("COVIDBOARD_TEST_KEY", "default"))

	assert.Equal(t, "default", GetEnv("COVIDBOARD_UNSET_KEY", "default"))
}

func TestGetBoolAndDuration(t *testing.T) {
	Env = map[string]string{
		"FLAG_ON":  "true",
		"FLAG_BAD": "maybe",
		"TTL":      "90s",
		"TTL_BAD":  "soon",
	}
	t.Cleanup(func() { Env = nil })

	assert.True(t, GetBool("FLAG_ON", false))
	assert.True(t, GetBool("FLAG_BAD", true))
	assert.False(t, GetBool("FLAG_UNSET", false))

	assert.Equal(t, 90*time.Second, GetDuration("TTL", time.Minute))
	assert.Equal(t, time.Minute, GetDuration("TTL_BAD", time.Minute))
}

func TestSetupEnvFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("APP_ENV=dev\nAPP_PORT=9000\n"), 0o644))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		_ = os.Chdir(wd)
		Env = nil
	})

	SetupEnvFile()
	assert.True(t, IsDev())
	assert.Equal(t, "9000", GetEnv("APP_PORT", "8050"))
}

func TestSetupEnvFile_Missing(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "a", "b", "c")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(nested))
	t.Cleanup(func() {
		_ = os.Chdir(wd)
		Env = nil
	})

	assert.NotPanics(t, SetupEnvFile)
	assert.NotNil(t, Env)
}
