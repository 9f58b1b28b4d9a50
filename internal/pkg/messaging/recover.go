package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/shandysiswandi/otpgate/internal/pkg/stacktrace"
)

// handle runs the handler with panic recovery and applies auto-ack.
func handle(ctx context.Context, driver string, handler Handler, msg Message, autoAck bool) {
	err := callHandlerWithRecover(ctx, driver, func() error {
		return handler(ctx, msg)
	})
	if !autoAck {
		return
	}

	var ackErr error
	if err == nil {
		ackErr = msg.Ack(ctx)
	} else {
		ackErr = msg.Nack(ctx)
	}
	if ackErr != nil {
		slog.WarnContext(ctx, "failed to respond to message", "driver", driver, "subject", msg.Subject(), "error", ackErr)
	}
}

func callHandlerWithRecover(ctx context.Context, driver string, fn func() error) (err error) {
	defer func() {
		rvr := recover()
		if rvr == nil {
			return
		}

		stack := debug.Stack()
		if paths := stacktrace.InternalPaths(stack); len(paths) > 0 {
			slog.ErrorContext(ctx, "panic in messaging handler", "driver", driver, "panic", rvr, "stack", paths)
		} else {
			slog.ErrorContext(ctx, "panic in messaging handler", "driver", driver, "panic", rvr, "stack", string(stack))
		}
		err = fmt.Errorf("messaging: panic in %s handler: %v", driver, rvr)
	}()

	return fn()
}
