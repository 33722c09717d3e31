package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "conf.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, "enable_eq: true\n")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}
	if !cfg.EnableEQ {
		t.Fatalf("EnableEQ=%v, want true", cfg.EnableEQ)
	}
	if cfg.RingBufferSize != 88200 {
		t.Fatalf("RingBufferSize=%d, want 88200", cfg.RingBufferSize)
	}
	if cfg.DefaultVolume != 0.5 {
		t.Fatalf("DefaultVolume=%v, want 0.5", cfg.DefaultVolume)
	}
	if cfg.ProducerSleepMS != 10 {
		t.Fatalf("ProducerSleepMS=%d, want 10", cfg.ProducerSleepMS)
	}
	if len(cfg.EQBands) != 0 {
		t.Fatalf("len(EQBands)=%d, want 0", len(cfg.EQBands))
	}
	if cfg.HTTPAddr != ":8201" {
		t.Fatalf("HTTPAddr=%q, want :8201", cfg.HTTPAddr)
	}
}

func TestLoadConfigBands(t *testing.T) {
	path := writeConfig(t, `
eq_bands:
  - [100, 0.7, 3.0, 0]
  - [1000, 1.0, -2.0, 1]
  - [8000, 0.9, 1.5, 2]
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}
	if len(cfg.EQBands) != 3 {
		t.Fatalf("len(EQBands)=%d, want 3", len(cfg.EQBands))
	}
	want := []EQBand{
		{Freq: 100, Q: 0.7, GainDB: 3, Type: BandLowShelf},
		{Freq: 1000, Q: 1, GainDB: -2, Type: BandPeak},
		{Freq: 8000, Q: 0.9, GainDB: 1.5, Type: BandHighShelf},
	}
	for i := range want {
		if cfg.EQBands[i] != want[i] {
			t.Fatalf("EQBands[%d]=%+v, want %+v", i, cfg.EQBands[i], want[i])
		}
	}
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"zero ring buffer":  "ring_buffer_size: 0\n",
		"negative sleep":    "producer_sleep_ms: -1\n",
		"volume above one":  "default_volume: 1.5\n",
		"volume below zero": "default_volume: -0.1\n",
		"short band":        "eq_bands:\n  - [100, 0.7, 3.0]\n",
		"bad band type":     "eq_bands:\n  - [100, 0.7, 3.0, 7]\n",
	}
	for name, contents := range cases {
		path := writeConfig(t, contents)
		if _, err := LoadConfig(path); err == nil {
			t.Fatalf("%s: LoadConfig error=nil, want non-nil", name)
		}
	}
}

func TestLoadConfigDeriveHTTPAddr(t *testing.T) {
	path := writeConfig(t, `
system_config:
  host: 127.0.0.1
  port: 9000
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}
	if cfg.HTTPAddr != "127.0.0.1:9000" {
		t.Fatalf("HTTPAddr=%q, want 127.0.0.1:9000", cfg.HTTPAddr)
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("EIGEN_PRESETS_DIR", "custom-presets")

	path := writeConfig(t, "enable_eq: false\n")
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}
	if filepath.Base(cfg.PresetsDir) != "custom-presets" {
		t.Fatalf("PresetsDir=%q, want custom-presets base", cfg.PresetsDir)
	}
}

func TestConfigRoundTrip(t *testing.T) {
	path := writeConfig(t, `
ring_buffer_size: 44100
default_volume: 0.8
enable_eq: true
eq_bands:
  - [60, 0.7, 4.0, 0]
  - [1200, 1.4, -3.0, 1]
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}

	saved := filepath.Join(t.TempDir(), "conf.yaml")
	if err := cfg.Save(saved); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	reloaded, err := LoadConfig(saved)
	if err != nil {
		t.Fatalf("LoadConfig(saved) error: %v", err)
	}
	if reloaded.RingBufferSize != cfg.RingBufferSize {
		t.Fatalf("RingBufferSize=%d, want %d", reloaded.RingBufferSize, cfg.RingBufferSize)
	}
	if reloaded.DefaultVolume != cfg.DefaultVolume {
		t.Fatalf("DefaultVolume=%v, want %v", reloaded.DefaultVolume, cfg.DefaultVolume)
	}
	if reloaded.EnableEQ != cfg.EnableEQ {
		t.Fatalf("EnableEQ=%v, want %v", reloaded.EnableEQ, cfg.EnableEQ)
	}
	if len(reloaded.EQBands) != len(cfg.EQBands) {
		t.Fatalf("len(EQBands)=%d, want %d", len(reloaded.EQBands), len(cfg.EQBands))
	}
	for i := range cfg.EQBands {
		if reloaded.EQBands[i] != cfg.EQBands[i] {
			t.Fatalf("EQBands[%d]=%+v, want %+v", i, reloaded.EQBands[i], cfg.EQBands[i])
		}
	}
}

func TestValidate(t *testing.T) {
	cfg := Config{RingBufferSize: 4096, DefaultVolume: 0.5}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate error: %v", err)
	}

	cfg.DefaultVolume = 2
	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate error=nil, want non-nil")
	}
}
