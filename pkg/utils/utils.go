package utils

import (
	"context"
	"log"
	"runtime/debug"

	"rss-ai-curator/pkg/logger"
)

// GoSafe runs fn in a goroutine and recovers from panics so one failing
// task cannot take down the process.
func GoSafe(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("recovered from panic: %v\n%s", r, debug.Stack())
			}
		}()
		fn()
	}()
}

// ShouldContinue reports whether the context is still alive.
func ShouldContinue(ctx context.Context, log *logger.Logger) bool {
	select {
	case <-ctx.Done():
		log.Info("Context cancelled, stopping work")
		return false
	default:
		return true
	}
}
