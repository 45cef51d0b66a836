package utils

import (
	"context"
	"testing"
	"time"

	"golang-forex-pulse/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestSplitEpoch(t *testing.T) {
	date, clock := SplitEpoch(1709296200) // 2024-03-01 12:30:00 UTC
	assert.Equal(t, "2024-03-01", date)
	assert.Equal(t, "12:30", clock)
}

func TestShouldContinue(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	assert.True(t, ShouldContinue(ctx))
	cancel()
	assert.False(t, ShouldContinue(ctx))
}

func TestGoSafe_LogsRecoveredPanic(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	log := &logger.Logger{Logger: zap.New(core)}

	GoSafe(log, func() {
		panic("boom")
	})

	require.Eventually(t, func() bool { return logs.Len() == 1 }, time.Second, 5*time.Millisecond)
	entry := logs.All()[0]
	assert.Equal(t, "Recovered from panic", entry.Message)
	assert.Equal(t, "boom", entry.ContextMap()["panic"])
	assert.Contains(t, entry.ContextMap()["stack"], "goroutine")
}
