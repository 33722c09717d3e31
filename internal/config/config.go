package config

import (
	"bytes"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	appdefaults "github.com/eigenplayer/playerd/config"

	"github.com/eigenplayer/playerd/internal/logger"
	"github.com/spf13/viper"
)

// SystemConfig represents a systemConfig.
type SystemConfig struct {
	Host string `mapstructure:"host" yaml:"host" json:"host"`
	Port int    `mapstructure:"port" yaml:"port" json:"port"`
}

// Config represents a config.
type Config struct {
	RootDir  string `mapstructure:"-" yaml:"-" json:"-"`
	HTTPAddr string `mapstructure:"http_addr" yaml:"http_addr,omitempty" json:"http_addr"`

	// Engine properties handed to the host audio engine at startup.
	RingBufferSize  int      `mapstructure:"ring_buffer_size" yaml:"ring_buffer_size" json:"ring_buffer_size"`
	DefaultVolume   float64  `mapstructure:"default_volume" yaml:"default_volume" json:"default_volume"`
	EnableEQ        bool     `mapstructure:"enable_eq" yaml:"enable_eq" json:"enable_eq"`
	ProducerSleepMS int      `mapstructure:"producer_sleep_ms" yaml:"producer_sleep_ms" json:"producer_sleep_ms"`
	EQBands         []EQBand `mapstructure:"-" yaml:"eq_bands" json:"eq_bands"`

	DBPath     string `mapstructure:"db_path" yaml:"db_path" json:"db_path"`
	ScriptPath string `mapstructure:"script_path" yaml:"script_path" json:"script_path"`
	PresetsDir string `mapstructure:"presets_dir" yaml:"presets_dir" json:"presets_dir"`

	SystemConfig SystemConfig  `mapstructure:"system_config" yaml:"system_config" json:"system_config"`
	Log          logger.Config `mapstructure:"log" yaml:"log" json:"log"`

	// Values holds extra scalar keys set by the Lua overlay that are not part
	// of the typed schema. They are published as-is to scripting consumers.
	Values map[string]any `mapstructure:"-" yaml:"-" json:"values,omitempty"`
}

// Load executes the load function.
func Load() (Config, error) {
	rootDir, err := resolveRootDir()
	if err != nil {
		return Config{}, err
	}

	v := newViper()
	v.SetConfigName("conf")
	v.SetConfigType("yaml")
	v.AddConfigPath(rootDir)

	if err := v.ReadConfig(bytes.NewReader(appdefaults.Default)); err != nil {
		return Config{}, fmt.Errorf("load embedded config: %w", err)
	}

	if err := v.MergeInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, err
		}
	}

	return finishLoad(v, rootDir)
}

// LoadConfig executes the loadConfig function.
func LoadConfig(configPath string) (Config, error) {
	path := strings.TrimSpace(configPath)
	if path == "" {
		return Load()
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return Config{}, err
	}

	rootDir := strings.TrimSpace(os.Getenv("EIGEN_ROOT_DIR"))
	if rootDir == "" {
		rootDir = filepath.Dir(absPath)
		if filepath.Base(rootDir) == "config" {
			rootDir = filepath.Dir(rootDir)
		}
	}

	v := newViper()
	v.SetConfigType("yaml")

	if err := v.ReadConfig(bytes.NewReader(appdefaults.Default)); err != nil {
		return Config{}, fmt.Errorf("load embedded config: %w", err)
	}

	v.SetConfigFile(absPath)
	if err := v.MergeInConfig(); err != nil {
		return Config{}, err
	}

	return finishLoad(v, rootDir)
}

func newViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("http_addr", "")
	v.SetDefault("ring_buffer_size", 88200)
	v.SetDefault("default_volume", 0.5)
	v.SetDefault("enable_eq", false)
	v.SetDefault("producer_sleep_ms", 10)
	v.SetDefault("db_path", filepath.Join("data", "eigenplayer.db"))
	v.SetDefault("script_path", "config.lua")
	v.SetDefault("presets_dir", "presets")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.stdout", true)
	v.SetDefault("log.console", false)
	v.SetDefault("log.file.enabled", true)
	v.SetDefault("log.file.path", "./data/logs")
	v.SetDefault("log.file.name", "eigenplayerd.log")
	v.SetDefault("log.file.max_size_mb", 100)
	v.SetDefault("log.file.max_backups", 5)
	v.SetDefault("log.file.max_age_days", 30)
	v.SetDefault("log.file.compress", true)

	v.SetEnvPrefix("eigen")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

func finishLoad(v *viper.Viper, rootDir string) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	bands, err := BandsFromAny(v.Get("eq_bands"))
	if err != nil {
		return Config{}, err
	}
	cfg.EQBands = bands

	cfg.RootDir = rootDir
	deriveHTTPAddr(&cfg)
	derivePaths(&cfg)

	if cfg.ScriptPath != "" && fileExists(cfg.ScriptPath) {
		if err := ApplyScript(&cfg, cfg.ScriptPath); err != nil {
			return Config{}, fmt.Errorf("apply %s: %w", cfg.ScriptPath, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks the constraints the host engine relies on.
func (c Config) Validate() error {
	if c.RingBufferSize <= 0 {
		return fmt.Errorf("ring_buffer_size must be positive, got %d", c.RingBufferSize)
	}
	if c.DefaultVolume < 0 || c.DefaultVolume > 1 {
		return fmt.Errorf("default_volume must be within [0,1], got %v", c.DefaultVolume)
	}
	if c.ProducerSleepMS < 0 {
		return fmt.Errorf("producer_sleep_ms must not be negative, got %d", c.ProducerSleepMS)
	}
	if err := ValidateBands(c.EQBands); err != nil {
		return err
	}
	return nil
}

// Marshal re-serializes the configuration to YAML, preserving band order.
func (c Config) Marshal() ([]byte, error) {
	return marshalYAML(c)
}

// Save executes the save method.
func (c Config) Save(path string) error {
	data, err := c.Marshal()
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

func deriveHTTPAddr(cfg *Config) {
	if cfg.HTTPAddr != "" {
		return
	}
	host := cfg.SystemConfig.Host
	port := cfg.SystemConfig.Port
	if port == 0 {
		port = 8201
	}
	if host == "" {
		cfg.HTTPAddr = fmt.Sprintf(":%d", port)
		return
	}
	cfg.HTTPAddr = net.JoinHostPort(host, strconv.Itoa(port))
}

func derivePaths(cfg *Config) {
	cfg.DBPath = resolvePath(cfg.RootDir, cfg.DBPath, filepath.Join("data", "eigenplayer.db"))
	cfg.ScriptPath = resolvePath(cfg.RootDir, cfg.ScriptPath, "config.lua")
	cfg.PresetsDir = resolvePath(cfg.RootDir, cfg.PresetsDir, "presets")
}

func resolveRootDir() (string, error) {
	if root := strings.TrimSpace(os.Getenv("EIGEN_ROOT_DIR")); root != "" {
		return filepath.Abs(root)
	}

	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}

	dir := wd
	for i := 0; i < 6; i++ {
		if fileExists(filepath.Join(dir, "conf.yaml")) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return wd, nil
}

func resolvePath(rootDir string, configured string, fallback string) string {
	path := strings.TrimSpace(configured)
	if path == "" {
		path = fallback
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(rootDir, path)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
