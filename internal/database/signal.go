package database

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// SetupSignalHandler derives a context from parent that is cancelled on SIGTERM
// or SIGINT. onSignal, when non-nil, runs before cancellation so callers can log
// which signal arrived. The returned cancel func stops signal delivery.
func SetupSignalHandler(parent context.Context, onSignal func(os.Signal)) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			if onSignal != nil {
				onSignal(sig)
			}
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
