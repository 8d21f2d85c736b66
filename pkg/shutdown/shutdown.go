package shutdown

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func WithSignals(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(ch)
		select {
		case <-ctx.Done():
			return
		case <-ch:
			cancel()
		}
	}()

	return ctx, cancel
}

// Drain runs graceful, and falls back to force if graceful has not returned
// within timeout.
func Drain(log *slog.Logger, timeout time.Duration, graceful func(), force func()) {
	stopped := make(chan struct{})
	go func() {
		graceful()
		close(stopped)
	}()

	t := time.NewTimer(timeout)
	defer t.Stop()

	select {
	case <-t.C:
		log.Warn("graceful stop timeout, forcing stop", slog.Duration("timeout", timeout))
		force()
	case <-stopped:
	}
}
