package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/reflection"

	"github.com/dasmlab/vartrans/pkg/config"
	"github.com/dasmlab/vartrans/pkg/server"
	"github.com/dasmlab/vartrans/pkg/service"
	"github.com/dasmlab/vartrans/pkg/status"
	"github.com/dasmlab/vartrans/pkg/translate"
)

var (
	// Server configuration flags
	port     = flag.Int("port", 50051, "gRPC server port")
	httpPort = flag.Int("http-port", 8080, "HTTP server port (health, metrics, REST)")

	// Configuration sources
	configPath = flag.String("config", config.DefaultPath(), "Path to the YAML config file (reloaded on SIGHUP)")
	envFile    = flag.String("env-file", ".env", "Optional .env file with VARTRANS_* variables")
	engine     = flag.String("engine", "", "Pin the translation engine, ignoring the config file")

	// Request log retention
	requestTTL = flag.Duration("request-ttl", 10*time.Minute, "How long finished requests stay inspectable")

	// Logging configuration
	logLevel = flag.String("log-level", "", "Log level: debug, info, warn, error (overrides config)")
)

func main() {
	flag.Parse()

	bootstrap := logrus.New()
	bootstrap.SetOutput(io.Discard)
	store, err := config.NewStore(*configPath, *envFile, bootstrap)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	cfg := store.Config()
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	logger, closer, err := cfg.NewLogger(false)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer closer.Close()
	bootstrap.SetOutput(logger.Out)
	bootstrap.SetLevel(logger.Level)

	if *engine != "" {
		store.SetEngine(*engine)
	}

	// The gateway is the remote engine; it must not forward to itself.
	engineCfg := cfg.Translate(logger)
	engineCfg.RemoteAddr = ""
	registry := translate.NewDefaultRegistry(engineCfg)
	defer registry.Close()

	logger.WithFields(logrus.Fields{
		"port":      *port,
		"http_port": *httpPort,
		"config":    store.Path(),
		"engine":    store.Engine(),
		"engines":   registry.Names(),
		"log_level": logger.Level.String(),
	}).Info("Starting vartrans translation gateway")

	// Verify the configured engine is reachable
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if id, t, err := registry.Resolve(store.Engine()); err != nil {
		logger.WithError(err).Fatal("No usable translation engine")
	} else if err := t.CheckHealth(ctx); err != nil {
		logger.WithError(err).WithField("engine", id).Warn("Engine health check failed, but continuing anyway")
	} else {
		logger.WithField("engine", id).Info("Engine health check passed")
	}
	cancel()

	client := translate.NewClient(translate.ClientConfig{
		Registry: registry,
		Engines:  store,
		Sink:     status.NewLogSink(logger, "gateway"),
		Logger:   logger,
	})
	translationService := service.NewTranslationService(client, store, logger)

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", *port))
	if err != nil {
		logger.WithError(err).WithFields(logrus.Fields{
			"port": *port,
		}).Fatal("Failed to listen on port")
	}

	// Client sends pings every 30s, so allow pings down to 15s apart.
	s := grpc.NewServer(
		grpc.Creds(insecure.NewCredentials()),
		grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{
			MinTime:             15 * time.Second,
			PermitWithoutStream: true,
		}),
		grpc.KeepaliveParams(keepalive.ServerParameters{
			MaxConnectionIdle:     5 * time.Minute,
			MaxConnectionAge:      30 * time.Minute,
			MaxConnectionAgeGrace: 5 * time.Second,
			Time:                  30 * time.Second,
			Timeout:               10 * time.Second,
		}),
	)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(s, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(translate.GatewayService, grpc_health_v1.HealthCheckResponse_SERVING)

	translationService.Register(s)

	// Enable reflection for grpcurl/debugging
	reflection.Register(s)

	// Prune finished requests
	bgCtx, bgCancel := context.WithCancel(context.Background())
	defer bgCancel()
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				translationService.Requests.Prune(*requestTTL)
			case <-bgCtx.Done():
				return
			}
		}
	}()

	// Log cache size every minute
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				logger.WithFields(logrus.Fields{
					"cache_entries": client.Cache().Len(),
					"requests":      translationService.Requests.Len(),
				}).Debug("Gateway metrics")
			case <-bgCtx.Done():
				return
			}
		}
	}()

	httpServer := server.NewHTTPServer(translationService, logger, *httpPort)

	errChan := make(chan error, 2)
	go func() {
		logger.WithFields(logrus.Fields{
			"port": *port,
		}).Info("gRPC server listening")
		if err := s.Serve(lis); err != nil {
			errChan <- fmt.Errorf("failed to serve: %w", err)
		}
	}()
	go func() {
		if err := httpServer.Start(); err != nil {
			errChan <- fmt.Errorf("http server: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)

	for {
		select {
		case err := <-errChan:
			logger.WithError(err).Fatal("Server error")
		case sig := <-sigChan:
			if sig == syscall.SIGHUP {
				if err := store.Reload(); err == nil {
					if lvl, err := logrus.ParseLevel(store.Config().LogLevel); err == nil && *logLevel == "" {
						logger.SetLevel(lvl)
					}
				}
				continue
			}

			logger.WithFields(logrus.Fields{
				"signal": sig.String(),
			}).Info("Received signal, shutting down gracefully...")
			shutdown(logger, s, healthServer, httpServer)
			return
		}
	}
}

func shutdown(logger *logrus.Logger, s *grpc.Server, healthServer *health.Server, httpServer *server.HTTPServer) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	healthServer.SetServingStatus(translate.GatewayService, grpc_health_v1.HealthCheckResponse_NOT_SERVING)

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.WithError(err).Warn("HTTP server shutdown failed")
	}

	stopped := make(chan struct{})
	go func() {
		s.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
		logger.Info("Server stopped gracefully")
	case <-ctx.Done():
		logger.Warn("Graceful shutdown timeout, forcing stop...")
		s.Stop()
	}
}
