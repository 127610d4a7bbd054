// Package config loads normalmap settings from defaults, a TOML file, the
// environment and finally command-line flags, in that order.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/Fepozopo/normalmap/pkg/normal"
)

// DefaultFile is read from the working directory when no path is given.
const DefaultFile = "normalmap.toml"

// EnvPrefix starts every environment variable the loader reads.
const EnvPrefix = "NORMALMAP_"

// Selection holds estimator settings.
type Selection struct {
	EdgeWidth     float64  `toml:"edge_width"`
	StepSize      float64  `toml:"step_size"`
	FromCenter    bool     `toml:"from_center"`
	CenterX       *float64 `toml:"center_x"`
	CenterY       *float64 `toml:"center_y"`
	LinearFalloff bool     `toml:"linear_falloff"`
	Invert        bool     `toml:"invert"`
	Threshold     int      `toml:"threshold"`
}

// Renormalize holds texture renormalizer settings.
type Renormalize struct {
	FullImage  bool    `toml:"full_image"`
	Scalar     float64 `toml:"scalar"`
	Degenerate string  `toml:"degenerate"`
}

// Runtime holds settings shared by every command.
type Runtime struct {
	Workers  int    `toml:"workers"`
	LogLevel string `toml:"log_level"`
}

// Config is the merged configuration of one invocation.
type Config struct {
	Selection   Selection   `toml:"selection"`
	Renormalize Renormalize `toml:"renormalize"`
	Runtime     Runtime     `toml:"runtime"`
}

// Default returns the built-in settings.
func Default() Config {
	o := normal.DefaultOptions()
	r := normal.DefaultRenormalizeOptions()
	return Config{
		Selection: Selection{
			EdgeWidth: o.EdgeWidth,
			StepSize:  o.StepSize,
			Threshold: int(normal.DefaultThreshold),
		},
		Renormalize: Renormalize{
			Scalar:     r.Scalar,
			Degenerate: r.Degenerate.String(),
		},
		Runtime: Runtime{LogLevel: "info"},
	}
}

// Load returns the defaults overlaid with the TOML file at path. An empty
// path reads DefaultFile if it exists. Unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	if keys := md.Undecoded(); len(keys) > 0 {
		names := make([]string, len(keys))
		for i, k := range keys {
			names[i] = k.String()
		}
		return Config{}, fmt.Errorf("config %s: unknown keys %s", path, strings.Join(names, ", "))
	}
	return cfg, nil
}

// LoadEnv loads the given .env files (".env" when none are given) into the
// process environment. Missing files are ignored; variables already set
// are kept.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("env file %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overlays NORMALMAP_* variables read through lookup, which is
// normally os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	floats := map[string]*float64{
		"EDGE_WIDTH": &c.Selection.EdgeWidth,
		"STEP_SIZE":  &c.Selection.StepSize,
		"SCALAR":     &c.Renormalize.Scalar,
	}
	bools := map[string]*bool{
		"FROM_CENTER":    &c.Selection.FromCenter,
		"LINEAR_FALLOFF": &c.Selection.LinearFalloff,
		"INVERT":         &c.Selection.Invert,
		"FULL_IMAGE":     &c.Renormalize.FullImage,
	}
	ints := map[string]*int{
		"THRESHOLD": &c.Selection.Threshold,
		"WORKERS":   &c.Runtime.Workers,
	}
	strs := map[string]*string{
		"DEGENERATE": &c.Renormalize.Degenerate,
		"LOG_LEVEL":  &c.Runtime.LogLevel,
	}

	for k, dst := range floats {
		if v, ok := lookup(EnvPrefix + k); ok && v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("invalid %s%s: %w", EnvPrefix, k, err)
			}
			*dst = f
		}
	}
	for _, k := range []string{"CENTER_X", "CENTER_Y"} {
		if v, ok := lookup(EnvPrefix + k); ok && v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("invalid %s%s: %w", EnvPrefix, k, err)
			}
			if k == "CENTER_X" {
				c.Selection.CenterX = &f
			} else {
				c.Selection.CenterY = &f
			}
		}
	}
	for k, dst := range bools {
		if v, ok := lookup(EnvPrefix + k); ok && v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid %s%s: %w", EnvPrefix, k, err)
			}
			*dst = b
		}
	}
	for k, dst := range ints {
		if v, ok := lookup(EnvPrefix + k); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid %s%s: %w", EnvPrefix, k, err)
			}
			*dst = n
		}
	}
	for k, dst := range strs {
		if v, ok := lookup(EnvPrefix + k); ok && v != "" {
			*dst = v
		}
	}
	return nil
}

// Estimator converts the selection settings to estimator options. The
// second result reports whether a center was configured; callers default
// it to the canvas middle otherwise.
func (c Config) Estimator() (normal.Options, bool, error) {
	s := c.Selection
	o := normal.Options{
		EdgeWidth:  s.EdgeWidth,
		StepSize:   s.StepSize,
		FromCenter: s.FromCenter,
		Falloff:    normal.FalloffFor(s.LinearFalloff),
		Invert:     s.Invert,
		Workers:    c.Runtime.Workers,
	}
	if (s.CenterX == nil) != (s.CenterY == nil) {
		return normal.Options{}, false, fmt.Errorf("center needs both x and y: %w", normal.ErrInvalidConfiguration)
	}
	set := s.CenterX != nil
	if set {
		o.Center = normal.Point{X: *s.CenterX, Y: *s.CenterY}
	}
	if err := o.Validate(); err != nil {
		return normal.Options{}, false, err
	}
	return o, set, nil
}

// MaskThreshold returns the selection threshold as a mask value.
func (c Config) MaskThreshold() (uint8, error) {
	t := c.Selection.Threshold
	if t < 1 || t > 255 {
		return 0, fmt.Errorf("threshold %d outside 1..255: %w", t, normal.ErrInvalidConfiguration)
	}
	return uint8(t), nil
}

// Renormalizer converts the renormalize settings to renormalizer options.
func (c Config) Renormalizer() (normal.RenormalizeOptions, error) {
	p, err := normal.ParseDegeneratePolicy(c.Renormalize.Degenerate)
	if err != nil {
		return normal.RenormalizeOptions{}, err
	}
	o := normal.RenormalizeOptions{
		Scalar:     c.Renormalize.Scalar,
		Degenerate: p,
		Workers:    c.Runtime.Workers,
	}
	if err := o.Validate(); err != nil {
		return normal.RenormalizeOptions{}, err
	}
	return o, nil
}
