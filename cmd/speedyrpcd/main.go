// Command speedyrpcd is a minimal standalone host for server.Server: it
// registers nothing on its own and exists to demonstrate wiring an embedding
// program's lifecycle (listen, serve, drain on signal) around the library.
// A real embedder links server.Server directly instead of shelling out to
// this binary.
package main

import (
	"context"
	"flag"
	"net"
	"time"

	"github.com/speedy-rpc/speedygo/internal/ctx"
	"github.com/speedy-rpc/speedygo/rlog"
	"github.com/speedy-rpc/speedygo/server"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:0", "address to listen on")
	drain := flag.Duration("drain", 5*time.Second, "grace period for in-flight calls on shutdown")
	flag.Parse()

	ln, err := net.Listen("tcp", *addr)
	if err != nil {
		rlog.Error("listen failed", "addr", *addr, "err", err)
		return
	}

	s := server.New()
	rlog.Info("starting speedyrpcd", "addr", ln.Addr().String())

	done := s.Start(ln)

	<-ctx.Process.Done()
	rlog.Info("received shutdown signal, draining")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), *drain)
	defer cancel()
	if err := s.Stop(shutdownCtx); err != nil {
		rlog.Error("shutdown error", "err", err)
	}
	<-done
}
