package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/mwnav/mediawikinav/internal/adapters/logger"
	"github.com/mwnav/mediawikinav/internal/adapters/normalizer"
	"github.com/mwnav/mediawikinav/internal/config"
	"github.com/mwnav/mediawikinav/internal/ports"
	"github.com/mwnav/mediawikinav/internal/warmup"
)

// Default configuration
const (
	DefaultReadTimeout    = 30 * time.Second
	DefaultWriteTimeout   = 30 * time.Second
	DefaultMaxRequestSize = 10 * 1024 * 1024 // 10MB
	DefaultConcurrency    = 0                // 0 means use fasthttp's default
)

func main() {
	configPath := flag.String("config", "", "YAML config file (empty = defaults and MWNAV_ environment)")
	addr := flag.String("addr", "", "Listen address, overrides server.addr")
	readTimeout := flag.Duration("read-timeout", DefaultReadTimeout, "HTTP read timeout")
	writeTimeout := flag.Duration("write-timeout", DefaultWriteTimeout, "HTTP write timeout")
	maxRequestSize := flag.Int("max-request-size", DefaultMaxRequestSize, "Maximum request size in bytes")
	concurrency := flag.Int("concurrency", DefaultConcurrency, "Maximum number of concurrent connections")
	warmUp := flag.Bool("warm-up", true, "Run the pipeline over sample text on startup")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	log, err := createLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	factory := normalizer.NewNormalizerFactory()
	pipeline := cfg.Normalize.Pipeline(factory, log)
	h := newHandler(factory, pipeline, cfg.Normalize.RenderOptions(), log)

	if *warmUp {
		wm := warmup.NewManager(log, warmup.DefaultWarmupConfig())
		wm.RegisterPipeline(pipeline)
		wm.WarmUp(context.Background())
	}

	log.Info("Starting normalization server",
		"addr", cfg.Server.Addr,
		"read_timeout", *readTimeout,
		"write_timeout", *writeTimeout,
		"max_request_size", *maxRequestSize,
		"transforms", cfg.Normalize.Transforms,
		"derived", cfg.Normalize.Derived,
	)

	server := &fasthttp.Server{
		Handler:               h.serve,
		ReadTimeout:           *readTimeout,
		WriteTimeout:          *writeTimeout,
		MaxRequestBodySize:    *maxRequestSize,
		Concurrency:           *concurrency,
		TCPKeepalive:          true,
		TCPKeepalivePeriod:    3 * time.Minute,
		MaxIdleWorkerDuration: 10 * time.Second,
	}

	idleConnsClosed := make(chan struct{})
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		log.Info("Shutting down server...")
		if err := server.Shutdown(); err != nil {
			log.Error("Error during server shutdown", "error", err)
		}
		close(idleConnsClosed)
	}()

	log.Info("Server listening", "address", cfg.Server.Addr)
	if err := server.ListenAndServe(cfg.Server.Addr); err != nil {
		log.Error("Server error", "error", err)
		return
	}

	<-idleConnsClosed
	log.Info("Server stopped")
}

// createLogger creates and configures a logger
func createLogger(cfg config.LogConfig) (ports.Logger, error) {
	var output io.Writer = os.Stdout
	if cfg.File != "" {
		file, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		output = file
	}

	lc := logger.DefaultConfig(output)
	lc.JsonFormat = cfg.JSON
	lc.AsyncWrite = cfg.Async
	return logger.NewCustomStdLogger(lc)
}
