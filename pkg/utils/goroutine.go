package utils

import (
	"context"
	"fmt"
	"runtime/debug"

	"golang-forex-pulse/pkg/logger"

	"go.uber.org/zap"
)

// GoSafe runs fn in a goroutine and logs a panic instead of crashing the process.
func GoSafe(log *logger.Logger, fn func()) {
	go func() {
		defer Recover(log)
		fn()
	}()
}

// Recover logs a recovered panic with its stack. It must be deferred directly.
func Recover(log *logger.Logger) {
	if r := recover(); r != nil {
		if log == nil {
			log = &logger.Logger{Logger: zap.L()}
		}
		log.Error("Recovered from panic",
			logger.StringField("panic", fmt.Sprint(r)),
			logger.StringField("stack", string(debug.Stack())),
		)
	}
}

// ShouldContinue reports whether ctx is still alive.
func ShouldContinue(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	default:
		return true
	}
}

// ToPointer returns a pointer to v.
func ToPointer[T any](v T) *T {
	return &v
}
