package cmd

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigConstants(t *testing.T) {
	assert.Equal(t, "pscan", configBaseName)
	assert.Equal(t, "pscan.yaml", configFileName)
	assert.Equal(t, ".", configFolderPath)
	assert.Equal(t, "output", outputFlagName)
	assert.Equal(t, "parallel", runParallelFlagName)
	assert.Equal(t, "run.parallel", runParallelConfigKey)
	assert.Equal(t, "param_scan_output", defaultOutputDir)
	assert.Equal(t, 1, defaultRunParallel)
	assert.Equal(t, "PSCAN", envPrefix)
}

func TestConfigVersionConstants(t *testing.T) {
	assert.Equal(t, "version", configVersionKey)
	assert.Equal(t, 1, currentConfigVersion)
}

func TestConfigDefaults(t *testing.T) {
	assert.Equal(t, 30*time.Second, secondsKey(lockTimeoutKey))
	assert.Equal(t, time.Minute, secondsKey(retryMaxElapsedKey))
	assert.Equal(t, time.Duration(0), secondsKey(simulationTimeoutKey))
	assert.Equal(t, int64(50), viper.GetInt64(lockRetryDelayKey))
	assert.Equal(t, 0, viper.GetInt(maxClaimsConfigKey))
	assert.False(t, viper.GetBool(failFastConfigKey))
}

func TestParseSlogLevel(t *testing.T) {
	tests := []struct {
		value string
		want  slog.Level
	}{
		{"", slog.LevelWarn},
		{"debug", slog.LevelDebug},
		{" INFO ", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"-4", slog.LevelDebug},
		{"loud", slog.LevelWarn},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, parseSlogLevel(tt.value, slog.LevelWarn))
		})
	}
}

func TestReadConfigFile(t *testing.T) {
	newConfig := func(t *testing.T, content string) *viper.Viper {
		t.Helper()

		path := filepath.Join(t.TempDir(), configFileName)
		if content != "" {
			require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
		}

		v := viper.New()
		v.SetConfigType("yaml")
		v.SetConfigFile(path)

		return v
	}

	t.Run("missing file", func(t *testing.T) {
		assert.NoError(t, readConfigFile(newConfig(t, "")))
	})

	t.Run("valid file", func(t *testing.T) {
		v := newConfig(t, "run:\n  parallel: 4\n")

		require.NoError(t, readConfigFile(v))
		assert.Equal(t, 4, v.GetInt(runParallelConfigKey))
	})

	t.Run("malformed file", func(t *testing.T) {
		assert.Error(t, readConfigFile(newConfig(t, "run: [parallel\n")))
	})
}
