// Package config loads editor configuration from TOML.
package config

import (
	"fmt"
	"io"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Depth bounds mirrored from the undo engine so a config file cannot
// configure an unbounded history.
const (
	minUndoLevels     = 1
	defaultUndoLevels = 5
	maxUndoLevels     = 200
)

// Config is the full configuration tree.
type Config struct {
	Editor   EditorConfig   `toml:"editor"`
	Document DocumentConfig `toml:"document"`
	Memory   MemoryConfig   `toml:"memory"`
}

// EditorConfig configures editing behavior.
type EditorConfig struct {
	// UndoLevels is the undo/redo queue depth, clamped to [1, 200].
	UndoLevels int `toml:"undo_levels"`
	// RichText starts documents in rich-text mode.
	RichText bool `toml:"rich_text"`
}

// DocumentConfig configures new documents.
type DocumentConfig struct {
	DefaultFont     string `toml:"default_font"`
	DefaultFontSize int    `toml:"default_font_size"`
}

// MemoryConfig configures the engine's memory policy.
type MemoryConfig struct {
	// UndoBudget is the byte budget for retained undo state.
	// Zero means unlimited.
	UndoBudget int `toml:"undo_budget"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Editor: EditorConfig{
			UndoLevels: defaultUndoLevels,
			RichText:   true,
		},
		Document: DocumentConfig{
			DefaultFont:     "Sans",
			DefaultFontSize: 16,
		},
	}
}

// Load reads TOML from r on top of the defaults.
func Load(r io.Reader) (*Config, error) {
	cfg := Default()
	if err := toml.NewDecoder(r).Decode(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.normalize()
	return cfg, nil
}

// LoadFile reads a TOML config file on top of the defaults.
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()
	cfg, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) normalize() {
	if c.Editor.UndoLevels < minUndoLevels {
		c.Editor.UndoLevels = minUndoLevels
	}
	if c.Editor.UndoLevels > maxUndoLevels {
		c.Editor.UndoLevels = maxUndoLevels
	}
	if c.Memory.UndoBudget < 0 {
		c.Memory.UndoBudget = 0
	}
	if c.Document.DefaultFontSize <= 0 {
		c.Document.DefaultFontSize = Default().Document.DefaultFontSize
	}
}
