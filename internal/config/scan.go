package config

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Preset represents a preset.
type Preset struct {
	Name     string   `yaml:"name"`
	EnableEQ *bool    `yaml:"enable_eq,omitempty"`
	EQBands  []EQBand `yaml:"eq_bands"`
}

// PresetInfo represents a presetInfo.
type PresetInfo struct {
	Filename string `json:"filename"`
	Name     string `json:"name"`
}

// ScanPresets lists the EQ preset files under presetsDir. Files that fail to
// parse are still listed under their filename so the caller can surface them.
func ScanPresets(presetsDir string) []PresetInfo {
	presets := []PresetInfo{}
	if presetsDir == "" {
		return presets
	}
	_ = filepath.WalkDir(presetsDir, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil || d == nil {
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !strings.HasSuffix(d.Name(), ".yaml") && !strings.HasSuffix(d.Name(), ".yml") {
			return nil
		}
		name := d.Name()
		if preset, err := ReadPreset(path); err == nil && preset.Name != "" {
			name = preset.Name
		}
		presets = append(presets, PresetInfo{Filename: d.Name(), Name: name})
		return nil
	})
	return presets
}

// ReadPreset executes the readPreset function.
func ReadPreset(path string) (Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Preset{}, err
	}
	var preset Preset
	if err := yaml.Unmarshal(data, &preset); err != nil {
		return Preset{}, err
	}
	if err := ValidateBands(preset.EQBands); err != nil {
		return Preset{}, err
	}
	if preset.Name == "" {
		preset.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return preset, nil
}

// FindPreset loads a preset by its declared name or filename stem.
func FindPreset(presetsDir string, name string) (Preset, bool) {
	for _, info := range ScanPresets(presetsDir) {
		preset, err := ReadPreset(filepath.Join(presetsDir, info.Filename))
		if err != nil {
			continue
		}
		stem := strings.TrimSuffix(info.Filename, filepath.Ext(info.Filename))
		if preset.Name == name || stem == name {
			return preset, true
		}
	}
	return Preset{}, false
}
