package runtime

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	appconfig "github.com/eigenplayer/playerd/internal/config"
	"github.com/eigenplayer/playerd/internal/core"
	apphttp "github.com/eigenplayer/playerd/internal/http"
	applogger "github.com/eigenplayer/playerd/internal/logger"
	"github.com/eigenplayer/playerd/internal/playback"
	"github.com/eigenplayer/playerd/internal/script"
	"github.com/eigenplayer/playerd/internal/storage"
	"github.com/eigenplayer/playerd/internal/ws"
)

// Server wires the player daemon together: config, logger, property core,
// storage, scripting, and the HTTP/WebSocket control surface.
type Server struct {
	holder  *appconfig.Holder
	logger  *zap.Logger
	server  *http.Server
	store   *storage.Store
	core    *core.Core
	machine *playback.Machine
	engine  *script.Engine

	configPath string
}

// Options represents an options.
type Options struct {
	// ConfigPath selects an explicit config file; empty uses root discovery.
	ConfigPath string
	// ConsoleLog forces the readable console encoder, used in REPL mode.
	ConsoleLog bool
	// MemoryStore replaces the sqlite file with an in-memory database.
	MemoryStore bool
}

// New executes the new function.
func New(opts Options) (*Server, error) {
	cfg, err := appconfig.LoadConfig(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load player config: %w", err)
	}
	if opts.ConsoleLog {
		cfg.Log.Console = true
	}

	logger, err := applogger.New(cfg.Log)
	if err != nil {
		logger, _ = zap.NewProduction()
	}
	logger.Info("config loaded",
		zap.String("config_path", opts.ConfigPath),
		zap.String("root_dir", cfg.RootDir),
		zap.String("http_addr", cfg.HTTPAddr),
		zap.Int("ring_buffer_size", cfg.RingBufferSize),
		zap.Float64("default_volume", cfg.DefaultVolume),
		zap.Bool("enable_eq", cfg.EnableEQ),
		zap.Int("eq_bands", len(cfg.EQBands)),
	)

	var store *storage.Store
	if opts.MemoryStore {
		store, err = storage.OpenInMemory()
	} else {
		store, err = storage.Open(cfg.DBPath)
	}
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	c := core.New(logger)
	core.RegisterProperties(c, cfg)
	machine := playback.New()
	core.RegisterCommands(c, machine, store)

	engine := script.New(c, logger)

	loadPath := opts.ConfigPath
	holder := appconfig.NewHolder(cfg, func() (appconfig.Config, error) {
		return appconfig.LoadConfig(loadPath)
	}, logger)
	holder.Subscribe(func(newCfg appconfig.Config) {
		core.ApplyConfig(c, newCfg)
	})

	wsHandler := ws.NewHandler(logger, c, store)
	router := apphttp.NewRouter(holder, c, store, wsHandler, logger)

	return &Server{
		holder: holder,
		logger: logger,
		server: &http.Server{
			Addr:    cfg.HTTPAddr,
			Handler: router,
		},
		store:      store,
		core:       c,
		machine:    machine,
		engine:     engine,
		configPath: opts.ConfigPath,
	}, nil
}

// Run executes the run method.
func (s *Server) Run() error {
	if s == nil || s.server == nil {
		return nil
	}
	s.logger.Info("starting http server", zap.String("addr", s.server.Addr))
	err := s.server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Watch starts hot reloading of the config file and the Lua overlay.
func (s *Server) Watch(ctx context.Context) error {
	cfg := s.holder.Get()

	confPath := strings.TrimSpace(s.configPath)
	if confPath == "" {
		confPath = filepath.Join(cfg.RootDir, "conf.yaml")
	}

	return s.holder.Watch(ctx, confPath, cfg.ScriptPath)
}

// Addr executes the addr method.
func (s *Server) Addr() string {
	if s == nil || s.server == nil {
		return ""
	}
	return s.server.Addr
}

// Core executes the core method.
func (s *Server) Core() *core.Core { return s.core }

// Store executes the store method.
func (s *Server) Store() *storage.Store { return s.store }

// Holder executes the holder method.
func (s *Server) Holder() *appconfig.Holder { return s.holder }

// Script executes the script method.
func (s *Server) Script() *script.Engine { return s.engine }

// Logger executes the logger method.
func (s *Server) Logger() *zap.Logger { return s.logger }

// Shutdown executes the shutdown method.
func (s *Server) Shutdown(ctx context.Context) error {
	if s == nil {
		return nil
	}

	var firstErr error
	if s.server != nil {
		if err := ignoreServerClosed(s.server.Shutdown(ctx)); err != nil {
			firstErr = err
		}
	}
	if err := s.holder.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	s.engine.Close()
	if err := s.store.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

func ignoreServerClosed(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
