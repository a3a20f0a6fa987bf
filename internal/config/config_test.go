package config

import (
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Editor.UndoLevels != defaultUndoLevels {
		t.Errorf("UndoLevels = %d, want %d", cfg.Editor.UndoLevels, defaultUndoLevels)
	}
	if !cfg.Editor.RichText {
		t.Error("rich text not on by default")
	}
	if cfg.Memory.UndoBudget != 0 {
		t.Error("default budget not unlimited")
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	cfg, err := Load(strings.NewReader(`
[editor]
undo_levels = 20

[memory]
undo_budget = 65536
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Editor.UndoLevels != 20 {
		t.Errorf("UndoLevels = %d, want 20", cfg.Editor.UndoLevels)
	}
	if !cfg.Editor.RichText {
		t.Error("unset field lost its default")
	}
	if cfg.Memory.UndoBudget != 65536 {
		t.Errorf("UndoBudget = %d, want 65536", cfg.Memory.UndoBudget)
	}
	if cfg.Document.DefaultFont != "Sans" {
		t.Errorf("DefaultFont = %q, want default", cfg.Document.DefaultFont)
	}
}

func TestLoadClampsUndoLevels(t *testing.T) {
	tests := []struct {
		name string
		toml string
		want int
	}{
		{"too small", "[editor]\nundo_levels = 0", minUndoLevels},
		{"negative", "[editor]\nundo_levels = -4", minUndoLevels},
		{"too large", "[editor]\nundo_levels = 9999", maxUndoLevels},
		{"in range", "[editor]\nundo_levels = 42", 42},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(strings.NewReader(tt.toml))
			if err != nil {
				t.Fatal(err)
			}
			if cfg.Editor.UndoLevels != tt.want {
				t.Errorf("UndoLevels = %d, want %d", cfg.Editor.UndoLevels, tt.want)
			}
		})
	}
}

func TestLoadRejectsBadTOML(t *testing.T) {
	if _, err := Load(strings.NewReader("[editor\nbroken")); err == nil {
		t.Error("malformed TOML accepted")
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile("/does/not/exist.toml"); err == nil {
		t.Error("missing file accepted")
	}
}
