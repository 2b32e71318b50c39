// Command raftd runs a local, in-process Raft cluster: the bootstrap,
// flag parsing, and logging plumbing kept out of the core, wired up
// here so the module is a runnable repository. Real
// deployments would replace the in-process transport.Network with
// transport.StreamTransport dialing out to separate processes; this
// binary favors a single-process demo that is easy to run and watch.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreraft/raftcore/internal/httpapi"
	"github.com/coreraft/raftcore/raft"
	"github.com/coreraft/raftcore/raft/driver"
	"github.com/coreraft/raftcore/raft/store"
	"github.com/coreraft/raftcore/transport"
)

func main() {
	nodes := flag.Int("nodes", 3, "number of servers in the demo cluster")
	dataDir := flag.String("data-dir", "./data", "directory for persistent state files")
	httpBasePort := flag.Int("http-base-port", 8080, "first HTTP debug port; node i listens on base+i")
	verbose := flag.Bool("verbose", false, "enable debug-level logging")
	flag.Parse()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *nodes, *dataDir, *httpBasePort, logger); err != nil && err != context.Canceled {
		log.Fatal().Err(err).Msg("raftd exited with error")
	}
}

func run(ctx context.Context, nodeCount int, dataDir string, httpBasePort int, logger zerolog.Logger) error {
	ids := make([]raft.ServerId, nodeCount)
	for i := range ids {
		ids[i] = raft.ServerId(i + 1)
	}
	network := transport.NewNetwork(ids)

	drivers := make([]*driver.Driver, 0, nodeCount)
	for _, id := range ids {
		peers := make([]raft.ServerId, 0, nodeCount-1)
		for _, other := range ids {
			if other != id {
				peers = append(peers, other)
			}
		}

		statePath := fmt.Sprintf("%s/node-%d/state.json", dataDir, id)
		srv, err := raft.NewServer(raft.Config{Self: id, Peers: peers}, store.FromName(statePath), logger)
		if err != nil {
			return fmt.Errorf("raftd: start server %d: %w", id, err)
		}

		applied := func(index raft.LogIndex, command []byte) {
			logger.Info().Int64("server_id", int64(id)).Int64("index", int64(index)).
				Bytes("command", command).Msg("applied")
		}

		d := driver.New(srv, network.Transport(id), driver.DefaultConfig(), applied, logger)
		drivers = append(drivers, d)

		addr := fmt.Sprintf(":%d", httpBasePort+int(id))
		httpSrv := &http.Server{Addr: addr, Handler: httpapi.NewRouter(srv)}
		go func() {
			if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error().Err(err).Str("addr", addr).Msg("debug http server failed")
			}
		}()
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			httpSrv.Shutdown(shutdownCtx)
		}()
	}

	errs := make(chan error, len(drivers))
	for _, d := range drivers {
		d := d
		go func() { errs <- d.Run(ctx) }()
	}

	for range drivers {
		if err := <-errs; err != nil && err != context.Canceled {
			return err
		}
	}
	return nil
}
