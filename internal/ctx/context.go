// Package ctx holds a process-wide context canceled on SIGTERM/SIGINT, used
// by cmd/ entrypoints to trigger the server's graceful shutdown without
// wiring signal handling into every binary that embeds the runtime.
package ctx

import (
	"context"
	"os/signal"
	"syscall"
)

// Process is canceled the moment the process receives SIGTERM or SIGINT.
// A server started with Serve(ln) can be stopped on signal via:
//
//	go func() { <-ctx.Process.Done(); srv.Stop(context.Background()) }()
var Process context.Context

func init() {
	Process, _ = signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
}
