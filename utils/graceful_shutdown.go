package utils

import (
	"context"
	"os"
	"os/signal"
)

// GracefulShutdown waits for a termination signal, disables further
// signal handling, then waits for the running pipeline to observe the
// cancellation and unwind before running the cleanup synchronously and
// exiting with a success code. Signal-triggered termination is a
// controlled shutdown path, not an error: source files must be restored
// before the process is allowed to die. Cleanup must not start while
// sanitizer workers are still in flight: a restore running concurrently
// with a worker can consume a file's backup right before the worker
// overwrites the file with its sanitized form, leaving nothing to
// recover from.
func GracefulShutdown(ctx context.Context, pipelineDone <-chan struct{}, onShutdown func()) {
	<-ctx.Done()
	signal.Reset()
	<-pipelineDone
	onShutdown()
	os.Exit(0)
}
