package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/eternalApril/greenis/internal/config"
	"github.com/eternalApril/greenis/internal/logger"
	"github.com/eternalApril/greenis/internal/server"
	"github.com/eternalApril/greenis/internal/storage"
	"go.uber.org/zap"
)

// demoSet is the sample sorted set the keyspace can start with
var demoSet = []storage.Member{
	{Score: 11, Name: "minxo"},
	{Score: 12, Name: "catorro"},
	{Score: 13, Name: "capeta"},
	{Score: 14, Name: "caixa"},
	{Score: 21, Name: "cerva"},
}

func main() {
	cfg, err := config.Load(".")
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n") //nolint:errcheck
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		os.Stderr.WriteString("logger: " + err.Error() + "\n") //nolint:errcheck
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	log.Info("Greenis starting",
		zap.String("port", cfg.Server.Port),
		zap.Bool("seed_demo", cfg.Storage.SeedDemo),
	)

	ks := storage.NewKeyspace(log.Named("keyspace"))
	defer ks.Close()

	if cfg.Storage.SeedDemo {
		for _, m := range demoSet {
			if _, _, err := ks.ZAdd("chave", m.Score, m.Name); err != nil {
				log.Error("cant seed keyspace", zap.Error(err))
				return
			}
		}
	}

	engine := server.NewEngine(ks, log.Named("engine"))

	if log.Core().Enabled(zap.DebugLevel) {
		for _, info := range engine.Commands() {
			log.Debug("command registered",
				zap.String("name", info.Name),
				zap.Int("arity", info.Arity),
				zap.Strings("flags", info.Flags),
			)
		}
	}

	address := net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)
	listener, err := net.Listen("tcp", address)
	if err != nil {
		log.Error("listener error", zap.Error(err))
		return
	}
	log.Info("listening on", zap.String("address", address))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	done := make(chan error, 1)
	go func() {
		done <- server.Serve(ctx, listener, engine, log)
	}()

	select {
	case err := <-done:
		if err != nil {
			log.Error("server stopped", zap.Error(err))
		}
		return
	case <-ctx.Done():
	}

	log.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	select {
	case <-done:
		log.Info("All connections closed gracefully")
	case <-shutdownCtx.Done():
		log.Warn("Shutdown timed out, forcing exit", zap.Duration("timeout", cfg.Server.ShutdownTimeout))
	}

	log.Info("Greenis stopped", zap.Int("keys", ks.Len()))
}
