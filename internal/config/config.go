// Package config loads the viewer's YAML configuration and holds the render
// settings that can change while it runs.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/Eirikalv1/cc-websockets/internal/logging"
)

// Environment fallbacks, consulted when the file leaves a key unset.
const (
	EnvRadius   = "SCANVIEW_RADIUS"
	EnvListen   = "SCANVIEW_LISTEN"
	EnvLogLevel = "SCANVIEW_LOG_LEVEL"
)

// MaxRadius bounds the scan radius; radius 16 is a 33³ cube.
const MaxRadius = 16

var ErrInvalid = errors.New("invalid config")

// Config is the root of the YAML document.
type Config struct {
	Scan   ScanConfig   `yaml:"scan"`
	Link   LinkConfig   `yaml:"link"`
	Mesh   MeshConfig   `yaml:"mesh"`
	Pick   PickConfig   `yaml:"pick"`
	Window WindowConfig `yaml:"window"`
	Log    LogConfig    `yaml:"log"`
}

type ScanConfig struct {
	// Radius must match the scanning agent's; the grid is (2*Radius+1)³.
	Radius int `yaml:"radius"`
}

type LinkConfig struct {
	Listen      string `yaml:"listen"`
	Path        string `yaml:"path"`
	MetricsPath string `yaml:"metrics_path"`
	InboxSize   int    `yaml:"inbox_size"`
}

type MeshConfig struct {
	MaxVertices int `yaml:"max_vertices"`
	MaxIndices  int `yaml:"max_indices"`
}

type PickConfig struct {
	MaxSteps         int     `yaml:"max_steps"`
	MaxDistance      float32 `yaml:"max_distance"`
	SurfaceThreshold float32 `yaml:"surface_threshold"`
}

type WindowConfig struct {
	Width    int    `yaml:"width"`
	Height   int    `yaml:"height"`
	Title    string `yaml:"title"`
	FPSLimit int    `yaml:"fps_limit"`
	// Texture is an optional image applied to every face, tinted by the
	// block colour. Empty means flat colours.
	Texture string `yaml:"texture"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Defaults returns the configuration used when nothing else is set.
func Defaults() Config {
	return Config{
		Scan: ScanConfig{Radius: 8},
		Link: LinkConfig{
			Listen:      ":1234",
			Path:        "/",
			MetricsPath: "/metrics",
			InboxSize:   64,
		},
		Mesh: MeshConfig{MaxVertices: 9800, MaxIndices: 4800},
		Pick: PickConfig{MaxSteps: 10000, MaxDistance: 100, SurfaceThreshold: 0.01},
		Window: WindowConfig{
			Width:    1260,
			Height:   768,
			Title:    "scanview",
			FPSLimit: 120,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads path. An empty path yields the defaults with environment
// fallbacks applied. Priority per key is file, then environment, then default.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	c.Scan.Radius = intWithEnvFallback(c.Scan.Radius, EnvRadius)
	c.Link.Listen = stringWithEnvFallback(c.Link.Listen, EnvListen)
	c.Log.Level = stringWithEnvFallback(c.Log.Level, EnvLogLevel)
}

func (c *Config) fillDefaults() {
	d := Defaults()
	setInt(&c.Scan.Radius, d.Scan.Radius)
	setString(&c.Link.Listen, d.Link.Listen)
	setString(&c.Link.Path, d.Link.Path)
	setString(&c.Link.MetricsPath, d.Link.MetricsPath)
	setInt(&c.Link.InboxSize, d.Link.InboxSize)
	setInt(&c.Mesh.MaxVertices, d.Mesh.MaxVertices)
	setInt(&c.Mesh.MaxIndices, d.Mesh.MaxIndices)
	setInt(&c.Pick.MaxSteps, d.Pick.MaxSteps)
	if c.Pick.MaxDistance == 0 {
		c.Pick.MaxDistance = d.Pick.MaxDistance
	}
	if c.Pick.SurfaceThreshold == 0 {
		c.Pick.SurfaceThreshold = d.Pick.SurfaceThreshold
	}
	setInt(&c.Window.Width, d.Window.Width)
	setInt(&c.Window.Height, d.Window.Height)
	setString(&c.Window.Title, d.Window.Title)
	setInt(&c.Window.FPSLimit, d.Window.FPSLimit)
	setString(&c.Log.Level, d.Log.Level)
}

// Validate rejects values the viewer cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Scan.Radius < 1 || c.Scan.Radius > MaxRadius {
		errs = append(errs, fmt.Errorf("scan.radius %d outside [1, %d]", c.Scan.Radius, MaxRadius))
	}
	if c.Link.InboxSize < 1 {
		errs = append(errs, fmt.Errorf("link.inbox_size must be positive, got %d", c.Link.InboxSize))
	}
	// One batch must fit a fully visible voxel: 24 vertices, 36 indices.
	if c.Mesh.MaxVertices < 24 || c.Mesh.MaxVertices > 1<<16 {
		errs = append(errs, fmt.Errorf("mesh.max_vertices %d outside [24, 65536]", c.Mesh.MaxVertices))
	}
	if c.Mesh.MaxIndices < 36 {
		errs = append(errs, fmt.Errorf("mesh.max_indices %d below 36", c.Mesh.MaxIndices))
	}
	if c.Pick.MaxSteps < 1 || c.Pick.MaxDistance <= 0 || c.Pick.SurfaceThreshold <= 0 {
		errs = append(errs, fmt.Errorf("pick limits must be positive: %+v", c.Pick))
	}
	if c.Window.Width < 1 || c.Window.Height < 1 {
		errs = append(errs, fmt.Errorf("window size %dx%d", c.Window.Width, c.Window.Height))
	}
	if c.Window.FPSLimit < 0 {
		errs = append(errs, fmt.Errorf("window.fps_limit %d is negative", c.Window.FPSLimit))
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}

// LogLevel returns the parsed log level; Validate has already vetted it.
func (c *Config) LogLevel() logging.Level {
	l, _ := logging.ParseLevel(c.Log.Level)
	return l
}

func intWithEnvFallback(v int, env string) int {
	if v != 0 {
		return v
	}
	if s := os.Getenv(env); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return v
}

func stringWithEnvFallback(v, env string) string {
	if v != "" {
		return v
	}
	return os.Getenv(env)
}

func setInt(dst *int, def int) {
	if *dst == 0 {
		*dst = def
	}
}

func setString(dst *string, def string) {
	if *dst == "" {
		*dst = def
	}
}
