package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// NewSigctx returns a context canceled on the usual termination signals.
// Canceling mid-transfer kills the send/receive pair; the operator
// re-runs to recover.
func NewSigctx() context.Context {
	ctx, cancel := context.WithCancelCause(context.Background())
	go func() {
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGHUP, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
		cancel(fmt.Errorf("got signal: %s", <-sigs))
	}()
	return ctx
}
