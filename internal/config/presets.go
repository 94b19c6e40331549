package config

import (
	"sort"

	"github.com/san-kum/pvsim/internal/thermo"
)

var Presets = map[string]*Config{
	"monatomic": DefaultConfig(),
	"diatomic": {
		Pressure: Range{Min: 0, Max: 10}, Volume: Range{Min: 0, Max: 10}, Resolution: 1000,
		Gas: GasConfig{R: thermo.GasConstant, N: 1, DOF: 5},
	},
	"polyatomic": {
		Pressure: Range{Min: 0, Max: 10}, Volume: Range{Min: 0, Max: 10}, Resolution: 1000,
		Gas: GasConfig{R: thermo.GasConstant, N: 1, DOF: 6},
	},
	"two_moles": {
		Pressure: Range{Min: 0, Max: 10}, Volume: Range{Min: 0, Max: 10}, Resolution: 1000,
		Gas: GasConfig{R: thermo.GasConstant, N: 2, DOF: 3},
	},
	"lab": {
		Pressure: Range{Min: 50e3, Max: 250e3}, Volume: Range{Min: 1e-3, Max: 5e-2}, Resolution: 2000,
		Gas:     GasConfig{R: thermo.GasConstant, N: 1, DOF: 5},
		Initial: &InitialState{Pressure: 101325, Volume: 2.24e-2},
	},
	"coarse": {
		Pressure: Range{Min: 0, Max: 10}, Volume: Range{Min: 0, Max: 10}, Resolution: 100,
		Gas: GasConfig{R: thermo.GasConstant, N: 1, DOF: 3},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

// ListPresets returns the preset names in sorted order.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
