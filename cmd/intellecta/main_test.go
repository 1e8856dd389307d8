package main

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestBuildQueryText(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected string
	}{
		{"single word", []string{"capacity"}, "capacity"},
		{"multiple words", []string{"peak", "demand", "2024"}, "peak demand 2024"},
		{"single quoted phrase", []string{"peak demand 2024"}, "peak demand 2024"},
		{"empty args", []string{}, ""},
		{"whitespace only", []string{" ", ""}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := buildQueryText(tt.args); got != tt.expected {
				t.Errorf("buildQueryText(%v) = %q, want %q", tt.args, got, tt.expected)
			}
		})
	}
}

func TestSplitDocumentIDs(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected []string
	}{
		{"empty", "", nil},
		{"single", "doc-1", []string{"doc-1"}},
		{"multiple", "doc-1,doc-2", []string{"doc-1", "doc-2"}},
		{"spaces and empties", " doc-1, ,doc-2 ,", []string{"doc-1", "doc-2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := splitDocumentIDs(tt.raw); !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("splitDocumentIDs(%q) = %v, want %v", tt.raw, got, tt.expected)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "server:\n  port: 9090\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, err := loadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if resolved != path {
		t.Errorf("resolved = %q, want %q", resolved, path)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.Server.Port)
	}
	// Defaults are applied to unset fields.
	if cfg.History.Capacity != 200 {
		t.Errorf("history capacity default = %d, want 200", cfg.History.Capacity)
	}

	if _, _, err := loadConfig(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("missing config file should fail")
	}
}
