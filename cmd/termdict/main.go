// termdict gRPC Server
// Serves a naturally ordered term dictionary backed by an in-memory B-Tree
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"google.golang.org/grpc/reflection"

	"github.com/nainya/termdict/internal/config"
	"github.com/nainya/termdict/internal/logger"
	"github.com/nainya/termdict/internal/metrics"
	"github.com/nainya/termdict/internal/server"
	"github.com/nainya/termdict/pkg/dictionary"
)

var (
	configPath  = flag.String("config", "", "YAML configuration file")
	port        = flag.Int("port", 50051, "The server port")
	metricsPort = flag.Int("metrics-port", 9090, "The observability HTTP port")
	logLevel    = flag.String("log-level", "info", "Log level: debug, info, warn, error")
	pretty      = flag.Bool("pretty", false, "Human-readable console logs")
	seedPath    = flag.String("seed", "", "File of term<TAB>value lines loaded at start")
	dump        = flag.Bool("dump", false, "Load the seed, print the tree and exit")
)

// loadConfig reads the config file and applies flags set on the command line
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return cfg, err
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			cfg.Server.Port = *port
		case "metrics-port":
			cfg.Server.MetricsPort = *metricsPort
		case "log-level":
			cfg.Log.Level = *logLevel
		case "pretty":
			cfg.Log.Pretty = *pretty
		case "seed":
			cfg.Dictionary.SeedFile = *seedPath
		}
	})
	return cfg, cfg.Validate()
}

func main() {
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "termdict: %v\n", err)
		os.Exit(2)
	}

	logger.InitGlobalLogger(logger.Config{
		Level:      cfg.Log.Level,
		Pretty:     cfg.Log.Pretty,
		WithCaller: cfg.Log.Caller,
	})
	log := logger.GetGlobalLogger()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewMetrics(reg)

	dict := dictionary.New(dictionary.Options{
		Logger:           log,
		Metrics:          m,
		VerifyInvariants: cfg.Dictionary.VerifyInvariants,
	})

	if cfg.Dictionary.SeedFile != "" {
		n, err := dictionary.LoadSeedFile(dict, cfg.Dictionary.SeedFile)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.Dictionary.SeedFile).Msg("Failed to load seed")
		}
		log.LogSeedLoaded(cfg.Dictionary.SeedFile, n, dict.Len())
	}

	if *dump {
		dict.Dump(os.Stdout)
		return
	}

	log.LogServerStart(cfg.Server.Port, cfg.Server.MetricsPort)

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Server.Port))
	if err != nil {
		log.Fatal().Err(err).Int("port", cfg.Server.Port).Msg("Failed to listen")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.UpdateUptime(ctx)

	dictServer := server.NewServer(dict)
	grpcServer := server.NewGRPCServer(m, log, cfg.Server.MaxMsgBytes)
	dictServer.Register(grpcServer)

	// Register reflection service for grpcurl/grpcui
	reflection.Register(grpcServer)

	obs := server.NewObservabilityServer(cfg.Server.MetricsPort, reg, dict, log)
	errChan := make(chan error, 2)
	go func() {
		errChan <- obs.Start()
	}()
	go func() {
		errChan <- grpcServer.Serve(lis)
	}()

	obs.SetReady(true)
	log.LogServerReady(cfg.Server.Port)

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.Info().Str("signal", sig.String()).Msg("Received signal")
	case err := <-errChan:
		if err != nil {
			log.Error().Err(err).Msg("Server stopped")
		}
	}

	log.LogServerShutdown()
	dictServer.Shutdown()
	cancel()

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := obs.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Observability shutdown failed")
	}
	grpcServer.GracefulStop()
}
