package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/eigenplayer/playerd/internal/repl"
	"github.com/eigenplayer/playerd/pkg/runtime"
)

func main() {
	configPath := flag.String("config", "", "path to conf.yaml (default: discover from working directory)")
	scriptPath := flag.String("script", "", "lua script to run against the core at startup")
	interactive := flag.Bool("repl", false, "run the interactive REPL on stdin")
	memStore := flag.Bool("mem", false, "use an in-memory playlist database")
	flag.Parse()

	server, err := runtime.New(runtime.Options{
		ConfigPath:  *configPath,
		ConsoleLog:  *interactive,
		MemoryStore: *memStore,
	})
	if err != nil {
		fallback, _ := zap.NewProduction()
		defer fallback.Sync()
		fallback.Fatal("failed to start", zap.Error(err))
	}

	logger := server.Logger()
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := server.Watch(ctx); err != nil {
		logger.Warn("config watcher not started", zap.Error(err))
	}

	go func() {
		if err := server.Run(); err != nil {
			logger.Fatal("http server error", zap.Error(err))
		}
	}()

	if *scriptPath != "" {
		if err := server.Script().RunFile(*scriptPath); err != nil {
			logger.Error("startup script failed", zap.String("path", *scriptPath), zap.Error(err))
		}
	}

	if *interactive {
		r := repl.New(server.Core(), server.Store(), server.Holder(), os.Stdin, os.Stdout)
		if err := r.Run(ctx); err != nil {
			logger.Error("repl error", zap.Error(err))
		}
	} else {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		<-stop
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", zap.Error(err))
	}
}
