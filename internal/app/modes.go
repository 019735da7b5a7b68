package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"bsprep/internal/session"
	"bsprep/pkg/logging"
)

// WaitAndComplete blocks until SIGINT, SIGTERM or ctx cancellation, then
// tears the session down. It returns the pid of a force-killed tunnel, or 0.
func WaitAndComplete(ctx context.Context, preparer *session.Preparer) (int, error) {
	logging.Info("CLI", "Session prepared. Press Ctrl+C to stop the tunnel and exit.")

	// Wait for interrupt signal to gracefully shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-sigChan:
	case <-ctx.Done():
	}

	logging.Info("CLI", "--- Shutting down session ---")
	return preparer.OnComplete(context.WithoutCancel(ctx))
}
