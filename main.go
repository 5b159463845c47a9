package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "", "Path to config file")
	bindFlag := flag.String("bind", "", "Override bind address")
	portFlag := flag.Int("port", 0, "Override port")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *versionFlag {
		fmt.Println(version)
		return
	}

	cfgPath := *configPath
	if cfgPath == "" {
		cfgPath = defaultConfigPath()
	}

	config, err := loadConfig(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Apply flag overrides
	if *bindFlag != "" {
		config.Bind = *bindFlag
	}
	if *portFlag != 0 {
		config.Port = *portFlag
	}

	logger, err := config.newLogger()
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	handle, err := newMetricsHandle(ctx, gopsutilSource{}, logger.Named("handle"))
	if err != nil {
		logger.Fatal("cannot observe host counters", zap.Error(err))
	}

	stats := newBridgeMetrics()
	srv := newServer(config, newCommandSet(handle, stats), stats, logger.Named("bridge"))

	listener, err := net.Listen("tcp", config.ListenAddr())
	if err != nil {
		logger.Fatal("listen", zap.String("addr", config.ListenAddr()), zap.Error(err))
	}

	mem := handle.MemoryUsage(ctx)
	logger.Info("sysmon-agent listening",
		zap.String("version", version),
		zap.String("addr", listener.Addr().String()),
		zap.Int("cores", handle.CoreCount()),
		zap.String("memory", humanize.IBytes(mem.Total)))
	if config.Token == "" {
		logger.Warn("no auth token configured")
	}

	httpSrv := &http.Server{
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("shutdown", zap.Error(err))
		}
	}()

	if err := httpSrv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("http serve", zap.Error(err))
	}
	<-shutdownDone
}
