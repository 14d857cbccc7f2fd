package cmd

import (
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	configVersionKey     = "version"
	currentConfigVersion = 1

	configBaseName   = "pscan"
	configFileName   = configBaseName + ".yaml"
	configFolderPath = "."

	outputFlagName            = "output"
	verboseFlagName           = "verbose"
	specFlagName              = "spec"
	projectFlagName           = "project"
	runParallelFlagName       = "parallel"
	maxClaimsFlagName         = "max-claims"
	failFastFlagName          = "fail-fast"
	simulationTimeoutFlagName = "sim-timeout"
	lockTimeoutFlagName       = "lock-timeout"

	runParallelConfigKey  = "run.parallel"
	maxClaimsConfigKey    = "run.max_claims"
	failFastConfigKey     = "run.fail_fast"
	simulationTimeoutKey  = "run.simulation_timeout"
	lockTimeoutKey        = "lock.timeout"
	lockRetryDelayKey     = "lock.retry_delay"
	retryMaxElapsedKey    = "retry.max_elapsed"
	defaultOutputDir      = "param_scan_output"
	defaultRunParallel    = 1
	defaultMaxClaims      = 0
	defaultFailFast       = false
	defaultSimTimeout     = time.Duration(0)
	defaultLockTimeout    = 30 * time.Second
	defaultLockRetryDelay = 50 * time.Millisecond
	defaultRetryElapsed   = time.Minute

	envPrefix = "PSCAN"

	logFilenameKey   = "log.filename"
	logLevelKey      = "log.level"
	logVerboseKey    = "log.verbose"
	logMaxSizeKey    = "log.max_size"
	logMaxBackupsKey = "log.max_backups"
	logMaxAgeKey     = "log.max_age"
	logCompressKey   = "log.compress"

	defaultLogFilename   = ".pscan.log"
	defaultLogLevel      = int(slog.LevelInfo)
	defaultLogVerbose    = false
	defaultLogMaxSize    = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAge     = 28
	defaultLogCompress   = true
)

var globalLogger *slog.Logger

func init() {
	viper.SetConfigName(configBaseName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configFolderPath)
	viper.SetConfigFile(filepath.Join(configFolderPath, configFileName))
	viper.AutomaticEnv()
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	viper.SetDefault(configVersionKey, currentConfigVersion)
	viper.SetDefault(outputFlagName, defaultOutputDir)
	viper.SetDefault(runParallelConfigKey, defaultRunParallel)
	viper.SetDefault(maxClaimsConfigKey, defaultMaxClaims)
	viper.SetDefault(failFastConfigKey, defaultFailFast)

	// Durations are stored as whole seconds, the lock poll delay as
	// milliseconds.
	viper.SetDefault(simulationTimeoutKey, int64(defaultSimTimeout.Seconds()))
	viper.SetDefault(lockTimeoutKey, int64(defaultLockTimeout.Seconds()))
	viper.SetDefault(lockRetryDelayKey, defaultLockRetryDelay.Milliseconds())
	viper.SetDefault(retryMaxElapsedKey, int64(defaultRetryElapsed.Seconds()))

	// Logging defaults (used by config/env and as fallbacks for flags).
	viper.SetDefault(logFilenameKey, defaultLogFilename)
	viper.SetDefault(logLevelKey, defaultLogLevel)
	viper.SetDefault(logVerboseKey, defaultLogVerbose)
	viper.SetDefault(logMaxSizeKey, defaultLogMaxSize)
	viper.SetDefault(logMaxBackupsKey, defaultLogMaxBackups)
	viper.SetDefault(logMaxAgeKey, defaultLogMaxAge)
	viper.SetDefault(logCompressKey, defaultLogCompress)

	if err := readConfigFile(viper.GetViper()); err != nil {
		slog.Warn("Ignoring unreadable config file", "file", viper.ConfigFileUsed(), "error", err)
	}
}

// readConfigFile loads the config file into v. A missing file is not an
// error.
func readConfigFile(v *viper.Viper) error {
	err := v.ReadInConfig()
	if err == nil {
		return nil
	}

	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	return err
}

func secondsKey(key string) time.Duration {
	return time.Duration(viper.GetInt64(key)) * time.Second
}

func parseSlogLevel(value string, defaultLevel slog.Level) slog.Level {
	level := strings.ToLower(strings.TrimSpace(value))
	if level == "" {
		return defaultLevel
	}

	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	// Allow numeric slog levels as well (e.g. -4 for debug).
	if n, err := strconv.Atoi(level); err == nil {
		return slog.Level(n)
	}

	return defaultLevel
}

// configureLogger configures the global slog logger.
//
// By default it logs at Info; if verbose is true it logs at Debug.
func configureLogger(logPath string, verbose bool) {
	if strings.TrimSpace(logPath) == "" {
		logPath = viper.GetString(logFilenameKey)
	}

	if strings.TrimSpace(logPath) == "" {
		logPath = defaultLogFilename
	}

	var logLevel slog.Level
	if verbose {
		logLevel = slog.LevelDebug
	} else {
		logLevel = parseSlogLevel(viper.GetString(logLevelKey), slog.LevelInfo)
	}

	logWriter := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    viper.GetInt(logMaxSizeKey),
		MaxBackups: viper.GetInt(logMaxBackupsKey),
		MaxAge:     viper.GetInt(logMaxAgeKey),
		Compress:   viper.GetBool(logCompressKey),
	}

	handler := slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		AddSource: true,
		Level:     logLevel,
	})

	globalLogger = slog.New(handler)
	slog.SetDefault(globalLogger)
}
