package config

import (
	"fmt"
	"math"

	lua "github.com/yuin/gopher-lua"
)

// ApplyScript executes a Lua configuration script and merges its global
// `config` table into cfg. Recognized keys override the values loaded from
// YAML and the environment; unrecognized scalar keys are collected into
// cfg.Values. Entries with unsupported types are skipped.
func ApplyScript(cfg *Config, path string) error {
	state := lua.NewState()
	defer state.Close()

	if err := state.DoFile(path); err != nil {
		return err
	}

	table, ok := state.GetGlobal("config").(*lua.LTable)
	if !ok {
		return fmt.Errorf("script defines no config table")
	}

	var applyErr error
	table.ForEach(func(key lua.LValue, value lua.LValue) {
		if applyErr != nil {
			return
		}
		name, ok := key.(lua.LString)
		if !ok {
			return
		}
		if err := applyLuaValue(cfg, string(name), value); err != nil {
			applyErr = fmt.Errorf("config.%s: %w", string(name), err)
		}
	})
	return applyErr
}

func applyLuaValue(cfg *Config, name string, value lua.LValue) error {
	switch name {
	case "ring_buffer_size":
		n, err := luaInt(value)
		if err != nil {
			return err
		}
		cfg.RingBufferSize = n
	case "default_volume":
		n, err := luaFloat(value)
		if err != nil {
			return err
		}
		cfg.DefaultVolume = n
	case "enable_eq":
		b, ok := value.(lua.LBool)
		if !ok {
			return fmt.Errorf("expected boolean, got %s", value.Type())
		}
		cfg.EnableEQ = bool(b)
	case "producer_sleep_ms":
		n, err := luaInt(value)
		if err != nil {
			return err
		}
		cfg.ProducerSleepMS = n
	case "eq_bands":
		bands, err := luaBands(value)
		if err != nil {
			return err
		}
		cfg.EQBands = bands
	case "http_addr":
		s, ok := value.(lua.LString)
		if !ok {
			return fmt.Errorf("expected string, got %s", value.Type())
		}
		cfg.HTTPAddr = string(s)
	default:
		if scalar, ok := luaScalar(value); ok {
			if cfg.Values == nil {
				cfg.Values = make(map[string]any)
			}
			cfg.Values[name] = scalar
		}
	}
	return nil
}

func luaBands(value lua.LValue) ([]EQBand, error) {
	table, ok := value.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("expected table, got %s", value.Type())
	}
	bands := make([]EQBand, 0, table.Len())
	for i := 1; i <= table.Len(); i++ {
		entry, ok := table.RawGetInt(i).(*lua.LTable)
		if !ok {
			return nil, fmt.Errorf("band %d: expected table", i)
		}
		fields := make([]float64, 0, entry.Len())
		for j := 1; j <= entry.Len(); j++ {
			f, err := luaFloat(entry.RawGetInt(j))
			if err != nil {
				return nil, fmt.Errorf("band %d field %d: %w", i, j, err)
			}
			fields = append(fields, f)
		}
		band, err := BandFromSlice(fields)
		if err != nil {
			return nil, fmt.Errorf("band %d: %w", i, err)
		}
		bands = append(bands, band)
	}
	return bands, nil
}

func luaFloat(value lua.LValue) (float64, error) {
	n, ok := value.(lua.LNumber)
	if !ok {
		return 0, fmt.Errorf("expected number, got %s", value.Type())
	}
	return float64(n), nil
}

func luaInt(value lua.LValue) (int, error) {
	f, err := luaFloat(value)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("expected integer, got %v", f)
	}
	return int(f), nil
}

func luaScalar(value lua.LValue) (any, bool) {
	switch v := value.(type) {
	case lua.LString:
		return string(v), true
	case lua.LNumber:
		return float64(v), true
	case lua.LBool:
		return bool(v), true
	default:
		return nil, false
	}
}
