package logger_test

import (
	"context"
	"referralflow/pkg/logger"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestSetup(t *testing.T) {
	for _, env := range []string{logger.DevelopmentEnvironment, logger.ProductionEnvironment} {
		t.Run(env, func(t *testing.T) {
			require.NotPanics(t, func() {
				logger.Setup(env)
			})
			require.NotNil(t, logger.Get(context.Background()))
		})
	}
}

func TestSetupWithLevel(t *testing.T) {
	require.NoError(t, logger.SetupWithLevel(logger.DevelopmentEnvironment, "warn"))
	require.False(t, logger.IsDebug(context.Background()))
	require.False(t, logger.Get(context.Background()).Core().Enabled(zap.InfoLevel))

	require.NoError(t, logger.SetupWithLevel(logger.ProductionEnvironment, "DEBUG"))
	require.True(t, logger.IsDebug(context.Background()))

	// an unknown level still installs a usable logger
	err := logger.SetupWithLevel(logger.DevelopmentEnvironment, "loud")
	require.Error(t, err)
	require.NotNil(t, logger.Get(context.Background()))

	logger.Setup(logger.DevelopmentEnvironment)
}

func TestGet_ContextLoggerWins(t *testing.T) {
	logger.Setup(logger.DevelopmentEnvironment)

	ctx := context.Background()
	require.NotNil(t, logger.Get(ctx))

	custom := zap.NewNop()
	require.Same(t, custom, logger.Get(logger.WithLogger(ctx, custom)))
}

func TestWithFields_AttachesFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	ctx := logger.WithLogger(context.Background(), zap.New(core))

	ctx = logger.WithFields(ctx, zap.String("runID", "r-1"))
	ctx = logger.Named(ctx, "pipeline")
	logger.Info(ctx, "stage changed", zap.String("stage", "Searching"))

	entries := logs.All()
	require.Len(t, entries, 1)
	require.Equal(t, "pipeline", entries[0].LoggerName)
	fields := entries[0].ContextMap()
	require.Equal(t, "r-1", fields["runID"])
	require.Equal(t, "Searching", fields["stage"])
}

func TestIsDebug(t *testing.T) {
	logger.Setup(logger.DevelopmentEnvironment)
	ctx := context.Background()
	require.True(t, logger.IsDebug(ctx))

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	infoLogger, err := cfg.Build()
	require.NoError(t, err)
	require.False(t, logger.IsDebug(logger.WithLogger(ctx, infoLogger)))
}

func TestLoggingFunctions(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	ctx := logger.WithLogger(context.Background(), zap.New(core))

	logger.Debug(ctx, "debug message")
	logger.Info(ctx, "info message")
	logger.Warn(ctx, "warn message")
	logger.Error(ctx, "error message")

	require.Equal(t, 4, logs.Len())
	require.Equal(t, 1, logs.FilterLevelExact(zapcore.WarnLevel).Len())
}
