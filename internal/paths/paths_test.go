package paths

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigDir_Linux(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("linux-only test")
	}

	t.Run("uses XDG_CONFIG_HOME when set", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-config")
		got, err := DefaultConfigDir()
		require.NoError(t, err)
		assert.Equal(t, "/tmp/xdg-config/keeper", got)
	})

	t.Run("falls back to ~/.config when XDG unset", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "")
		home, err := os.UserHomeDir()
		require.NoError(t, err)

		got, err := DefaultConfigDir()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(home, ".config", "keeper"), got)
	})

	t.Run("home lookup failure", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "")
		orig := platformDir.homeDir
		platformDir.homeDir = func() (string, error) { return "", errors.New("no home") }
		t.Cleanup(func() { platformDir.homeDir = orig })

		_, err := DefaultConfigDir()
		assert.Error(t, err)
	})
}

func TestResolveConfigDir(t *testing.T) {
	tests := []struct {
		name    string
		flag    string
		envVal  string
		wantSub string
	}{
		{"flag wins over env", "/explicit/config", "/env/config", "/explicit/config"},
		{"env wins when flag empty", "", "/env/config", "/env/config"},
		{"platform default when both empty", "", "", "keeper"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvConfigDir, tt.envVal)
			got, err := ResolveConfigDir(tt.flag)
			require.NoError(t, err)
			assert.Contains(t, got, tt.wantSub)
		})
	}
}

func TestResolveDataDir(t *testing.T) {
	cwd, err := os.Getwd()
	require.NoError(t, err)

	tests := []struct {
		name        string
		flag        string
		configValue string
		envVal      string
		want        string
	}{
		{"flag wins over all", "/flag/data", "/config/data", "/env/data", "/flag/data"},
		{"config wins over env", "", "/config/data", "/env/data", "/config/data"},
		{"env wins when flag and config empty", "", "", "/env/data", "/env/data"},
		{"CWD default when all empty", "", "", "", filepath.Join(cwd, DefaultDataDirName)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvDataDir, tt.envVal)
			got, err := ResolveDataDir(tt.flag, tt.configValue)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveDataDir_AbsolutePath(t *testing.T) {
	t.Setenv(EnvDataDir, "")
	got, err := ResolveDataDir("relative/path", "")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(got), "expected absolute path, got %s", got)

	got, err = ResolveDataDir("", "relative/config")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(got), "expected absolute path, got %s", got)
}

func TestResolveFile(t *testing.T) {
	got, err := ResolveFile("/data", "", DatabaseFileName)
	require.NoError(t, err)
	assert.Equal(t, "/data/keeper.db", got)

	got, err = ResolveFile("/data", ":memory:", DatabaseFileName)
	require.NoError(t, err)
	assert.Equal(t, ":memory:", got)

	got, err = ResolveFile("/data", "/elsewhere/users.jsonl", UsersFileName)
	require.NoError(t, err)
	assert.Equal(t, "/elsewhere/users.jsonl", got)
}
