// Package config loads and persists atlas configuration.
//
// Configuration lives in a single TOML file, by default at
// $XDG_CONFIG_HOME/atlas/config.toml (~/.config/atlas/config.toml when
// XDG_CONFIG_HOME is unset). A missing file is not an error: every
// setting has a default, and [Load] layers the file and then ATLAS_*
// environment overrides on top of [Default].
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/atlas/pkg/docstore"
	"github.com/matzehuels/atlas/pkg/errors"
	"github.com/matzehuels/atlas/pkg/geometry"
	"github.com/matzehuels/atlas/pkg/render"
)

// Config holds atlas configuration.
type Config struct {
	Document DocumentConfig  `toml:"document"`
	Canvas   CanvasConfig    `toml:"canvas"`
	Store    docstore.Config `toml:"store"`
	Server   ServerConfig    `toml:"server"`
	Render   RenderConfig    `toml:"render"`
	Cache    CacheConfig     `toml:"cache"`
}

// DocumentConfig selects the document commands operate on when no
// argument is given.
type DocumentConfig struct {
	Path string `toml:"path"`
}

// CanvasConfig sets the canonical canvas dimensions in pixels.
type CanvasConfig struct {
	Width  int `toml:"width"`
	Height int `toml:"height"`
}

// Geometry converts the configured dimensions to a geometry canvas.
func (c CanvasConfig) Geometry() geometry.Canvas {
	return geometry.Canvas{Width: float64(c.Width), Height: float64(c.Height)}
}

// ServerConfig controls the HTTP API server.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// RenderConfig sets overview rendering defaults.
type RenderConfig struct {
	Format  string `toml:"format"`
	Rankdir string `toml:"rankdir"`
	Labels  bool   `toml:"labels"`
	Orphans bool   `toml:"orphans"`
	URLs    bool   `toml:"urls"`
}

// CacheConfig controls the render cache.
type CacheConfig struct {
	Dir      string `toml:"dir"` // empty means DefaultCacheDir
	Disabled bool   `toml:"disabled"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Document: DocumentConfig{Path: "atlas.json"},
		Canvas:   CanvasConfig{Width: 1600, Height: 1200},
		Store:    docstore.Config{Backend: docstore.BackendFile},
		Server:   ServerConfig{Addr: ":8080"},
		Render:   RenderConfig{Format: "svg", Rankdir: "TB", Labels: true},
	}
}

// Dir returns the atlas config directory path.
func Dir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "atlas")
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.toml")
}

// DefaultCacheDir returns the render cache directory, honoring
// XDG_CACHE_HOME.
func DefaultCacheDir() string {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, "atlas")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".atlas-cache"
	}
	return filepath.Join(home, ".cache", "atlas")
}

// CacheDir returns the effective render cache directory: the configured
// cache.dir when set, otherwise [DefaultCacheDir].
func (c *Config) CacheDir() string {
	if c.Cache.Dir != "" {
		return c.Cache.Dir
	}
	return DefaultCacheDir()
}

// Load reads the config file at path, layering it over the defaults.
// An empty path means [DefaultPath]. A missing file yields the
// defaults; a file that exists but does not parse is an error.
// Environment overrides are applied last, so deployments can skip the
// file entirely.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// no file, defaults apply
	case err != nil:
		return nil, errors.Wrap(errors.ErrCodeStore, err, "read config %s", path)
	default:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse config %s", path)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv applies ATLAS_* environment overrides.
func (c *Config) applyEnv() {
	set := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	set(&c.Document.Path, "ATLAS_DOCUMENT")
	set(&c.Store.Backend, "ATLAS_STORE_BACKEND")
	set(&c.Store.Path, "ATLAS_STORE_PATH")
	set(&c.Store.URL, "ATLAS_STORE_URL")
	set(&c.Store.Database, "ATLAS_STORE_DATABASE")
	set(&c.Server.Addr, "ATLAS_SERVER_ADDR")
	set(&c.Cache.Dir, "ATLAS_CACHE_DIR")
}

// Validate checks settings that would otherwise fail deep inside a
// command.
func (c *Config) Validate() error {
	if !c.Canvas.Geometry().Valid() {
		return errors.New(errors.ErrCodeInvalidInput,
			"canvas dimensions must be positive, got %dx%d", c.Canvas.Width, c.Canvas.Height)
	}
	if _, err := render.ParseFormat(c.Render.Format); err != nil {
		return err
	}
	return nil
}

// Save writes cfg to path, creating parent directories as needed. An
// empty path means [DefaultPath].
func Save(cfg *Config, path string) error {
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "create config dir")
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "write config %s", path)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "encode config")
	}
	return nil
}

// EnsureExists writes a default config file if none is present, giving
// users a file to edit.
func EnsureExists() error {
	path := DefaultPath()
	if _, err := os.Stat(path); err == nil {
		return nil // already exists
	}
	return Save(Default(), path)
}
