package config

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/pvsim/internal/thermo"
)

const (
	DefaultPMin       = 0.0
	DefaultPMax       = 10.0
	DefaultVMin       = 0.0
	DefaultVMax       = 10.0
	DefaultResolution = thermo.DefaultResolution
)

type Config struct {
	Pressure   Range         `yaml:"pressure"`
	Volume     Range         `yaml:"volume"`
	Resolution int           `yaml:"resolution"`
	Gas        GasConfig     `yaml:"gas"`
	Initial    *InitialState `yaml:"initial,omitempty"`
}

type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

type GasConfig struct {
	R   float64 `yaml:"r"`
	N   float64 `yaml:"n"`
	DOF float64 `yaml:"dof"`
}

// InitialState overrides the start-up point. Without it the state starts at
// the middle of both ranges.
type InitialState struct {
	Pressure float64 `yaml:"pressure"`
	Volume   float64 `yaml:"volume"`
}

func DefaultConfig() *Config {
	return &Config{
		Pressure:   Range{Min: DefaultPMin, Max: DefaultPMax},
		Volume:     Range{Min: DefaultVMin, Max: DefaultVMax},
		Resolution: DefaultResolution,
		Gas: GasConfig{
			R:   thermo.GasConstant,
			N:   thermo.DefaultMoles,
			DOF: thermo.DefaultDOF,
		},
	}
}

// Load reads a YAML file on top of the defaults.
func Load(path string) (*Config, error) {
	return LoadOver(path, DefaultConfig())
}

// LoadOver reads a YAML file on top of a copy of base. Keys missing from the
// file keep base's values.
func LoadOver(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := base.Clone()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Encode writes cfg as YAML to w.
func Encode(w io.Writer, cfg *Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return err
	}
	return enc.Close()
}

// Clone returns a deep copy of c.
func (c *Config) Clone() *Config {
	out := *c
	if c.Initial != nil {
		init := *c.Initial
		out.Initial = &init
	}
	return &out
}

// Validate reports the first degenerate setting as a *thermo.ConfigError.
func (c *Config) Validate() error {
	if _, err := c.Bounds(); err != nil {
		return err
	}
	if _, err := c.GasParams(); err != nil {
		return err
	}
	if c.Resolution < 2 {
		return &thermo.ConfigError{Field: "resolution", Reason: "must be at least 2"}
	}
	if c.Initial != nil && !(thermo.Query{Pressure: c.Initial.Pressure, Volume: c.Initial.Volume}).IsValid() {
		return &thermo.ConfigError{Field: "initial", Reason: "must be finite"}
	}
	return nil
}

func (c *Config) Bounds() (thermo.Bounds, error) {
	return thermo.NewBounds(c.Pressure.Min, c.Pressure.Max, c.Volume.Min, c.Volume.Max)
}

func (c *Config) GasParams() (thermo.Gas, error) {
	return thermo.NewGas(c.Gas.R, c.Gas.N, c.Gas.DOF)
}

// Engine validates c and builds the process engine it describes.
func (c *Config) Engine() (*thermo.Engine, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	b, _ := c.Bounds()
	g, _ := c.GasParams()
	return thermo.NewEngine(g, b, c.Resolution)
}

// InitialState returns the configured start-up state, or the midpoint of
// the ranges. Work always starts at zero.
func (c *Config) InitialState() thermo.State {
	if c.Initial != nil {
		return thermo.State{Pressure: c.Initial.Pressure, Volume: c.Initial.Volume}
	}
	mid := thermo.Query{
		Pressure: (c.Pressure.Min + c.Pressure.Max) / 2,
		Volume:   (c.Volume.Min + c.Volume.Max) / 2,
	}
	return thermo.State{Pressure: mid.Pressure, Volume: mid.Volume}
}
