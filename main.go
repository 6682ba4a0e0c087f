// Command z-image-mps serves a Z-Image Turbo generation API with a
// single-slot pipeline cache, LoRA support and SQLite run history.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/dax8it/z-image-mps/core"
	"github.com/dax8it/z-image-mps/history"
	"github.com/dax8it/z-image-mps/imagegen"
	"github.com/dax8it/z-image-mps/logging"
	"github.com/dax8it/z-image-mps/shutdown"
	"github.com/dax8it/z-image-mps/webui"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		// Use fmt here since logger isn't initialized yet
		fmt.Printf("Warning: could not load .env file: %v\n", err)
	}

	host := flag.String("host", "", "bind address (overrides ZIMAGE_HOST)")
	port := flag.Int("port", 0, "listen port (overrides ZIMAGE_PORT)")
	flag.Parse()

	config, err := core.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		return core.ExitCodeError
	}
	if *host != "" {
		config.Host = *host
	}
	if *port != 0 {
		config.Port = *port
	}

	logger := logging.NewLogger(config.DevMode, config.LogFile)
	defer logger.Sync()

	if code := runStartupChecks(config, os.Stdout); code != core.ExitCodeSuccess {
		return code
	}
	if err := ensureDirs(config); err != nil {
		logger.Error("startup failed", zap.Error(err))
		return core.ExitCodeError
	}

	logger.Info("configuration loaded",
		zap.String("host", config.Host),
		zap.Int("port", config.Port),
		zap.String("device", config.DeviceChoice),
		zap.String("attention_backend", config.AttentionBackend),
		zap.String("lora_dir", config.LoRADir),
		zap.String("history_db", config.HistoryDBPath),
		zap.Bool("dev_mode", config.DevMode),
	)

	registry := shutdown.NewRegistry()

	// Aspect presets: built-in table unless a YAML override is configured.
	presets := imagegen.DefaultAspectTable()
	if config.PresetsFile != "" {
		presets, err = imagegen.LoadAspectTable(config.PresetsFile)
		if err != nil {
			logger.Error("load aspect presets", zap.Error(err))
			return core.ExitCodeError
		}
	}

	cache := imagegen.NewPipelineCache(config.LoRADir)
	registry.Register("pipeline cache", 20, func(ctx context.Context) error {
		return cache.Close()
	})
	processor := imagegen.NewProcessor(cache, presets)

	// Run history is optional: an empty path disables it.
	var runs *history.Repository
	if config.HistoryDBPath != "" {
		store, err := history.Open(config.HistoryDBPath)
		if err != nil {
			logger.Error("open history database", zap.Error(err))
			return core.ExitCodeError
		}
		registry.Register("history database", 30, func(ctx context.Context) error {
			return store.Close()
		})
		runs = history.NewRepository(store)
	}

	serverConfig := webui.DefaultServerConfig()
	serverConfig.Host = config.Host
	serverConfig.Port = config.Port
	serverConfig.LoRADir = config.LoRADir
	serverConfig.ThumbnailSize = config.ThumbnailSize
	serverConfig.Version = core.Version

	server, err := webui.NewServer(serverConfig, processor, runs, logger)
	if err != nil {
		logger.Error("create server", zap.Error(err))
		return core.ExitCodeError
	}
	registry.Register("http server", 10, server.Shutdown)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.Start()
	}()

	// Block until a shutdown signal or a listener failure. A second
	// signal forces an immediate exit.
	done := make(chan struct{})
	go func() {
		shutdown.Wait(func() {
			fmt.Println("Forced shutdown")
			os.Exit(core.ExitCodeError)
		})
		close(done)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			logger.Error("server failed", zap.Error(err))
			return core.ExitCodeError
		}
		return core.ExitCodeSuccess
	case <-done:
		logger.Info("shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), serverConfig.ShutdownTimeout)
	defer cancel()
	for _, err := range registry.Shutdown(ctx) {
		logger.Error("shutdown error", zap.Error(err))
	}

	logger.Info("goodbye")
	return core.ExitCodeSuccess
}
