package app

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/shandysiswandi/otpgate/internal/pkg/messaging"
)

// Start serves HTTP and returns a channel closed on SIGINT/SIGTERM/SIGHUP or
// when the listener fails.
func (a *App) Start() <-chan struct{} {
	terminateChan := make(chan struct{})
	var once sync.Once
	terminate := func(reason string) {
		once.Do(func() {
			slog.Info("application is shutting down", "reason", reason)
			if a.cancel != nil {
				a.cancel()
			}
			close(terminateChan)
		})
	}

	go func() {
		slog.Info("http server listening",
			"address", a.httpServer.Addr,
			"login", a.config.GetBool("modules.login.enabled"),
			"notification", a.config.GetBool("modules.notification.enabled"),
			"messaging_driver", a.config.GetString("messaging.driver"),
		)

		if err := a.httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			slog.Error("failed to listen and serve http server", "error", err)
			terminate("http server failed")
		}
	}()

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
		defer signal.Stop(sigint)

		select {
		case sig := <-sigint:
			terminate(sig.String())
		case <-terminateChan:
		}
	}()

	return terminateChan
}

// Serve runs the HTTP server on l; tests use it with an ephemeral port.
func (a *App) Serve(l net.Listener) <-chan error {
	errChan := make(chan error, 1)

	go func() {
		errChan <- a.httpServer.Serve(l)
		close(errChan)
	}()

	return errChan
}

// Stop drains HTTP first so no new codes are requested, then waits for the
// consumers, then releases resources in closer order.
func (a *App) Stop(ctx context.Context) {
	if err := a.httpServer.Shutdown(ctx); err != nil {
		slog.ErrorContext(ctx, "failed to close resources", "name", "HTTP Server", "error", err)
	}

	if a.cancel != nil {
		a.cancel()
	}

	slog.InfoContext(ctx, "waiting for consumers to finish")
	if err := a.goroutine.Wait(); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, messaging.ErrClosed) {
		slog.ErrorContext(ctx, "error from goroutines executions", "error", err)
	}

	for _, closer := range a.closers {
		if err := closer.fn(ctx); err != nil {
			slog.ErrorContext(ctx, "failed to close resources", "name", closer.name, "error", err)
			continue
		}
		slog.DebugContext(ctx, "resource closed", "name", closer.name)
	}

	slog.InfoContext(ctx, "application gracefully shutdown")
}
