package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Assembler.MaxRecursionDepth != 256 {
		t.Errorf("Expected MaxRecursionDepth=256, got %d", cfg.Assembler.MaxRecursionDepth)
	}
	if cfg.Assembler.MaxIncludeDepth != 16 {
		t.Errorf("Expected MaxIncludeDepth=16, got %d", cfg.Assembler.MaxIncludeDepth)
	}
	if cfg.Assembler.StopAfter != "" {
		t.Errorf("Expected StopAfter=\"\", got %s", cfg.Assembler.StopAfter)
	}
	if cfg.Linker.DefaultOutput != "a.g10" {
		t.Errorf("Expected DefaultOutput=a.g10, got %s", cfg.Linker.DefaultOutput)
	}
}

func TestGetConfigPath(t *testing.T) {
	path := GetConfigPath()

	if path == "" {
		t.Error("GetConfigPath returned empty string")
	}
	if filepath.Base(path) != "config.toml" {
		t.Errorf("Expected path to end with config.toml, got %s", path)
	}

	switch runtime.GOOS {
	case "windows":
		if !filepath.IsAbs(path) && path != "config.toml" {
			t.Errorf("Expected absolute path on Windows, got %s", path)
		}
	case "darwin", "linux":
		dir := filepath.Dir(path)
		if filepath.Base(dir) != "g10toolchain" && path != "config.toml" {
			t.Errorf("Expected path in g10toolchain directory or fallback, got %s", path)
		}
	}
}

func TestGetLogPath(t *testing.T) {
	path := GetLogPath()

	if path == "" {
		t.Error("GetLogPath returned empty string")
	}

	switch runtime.GOOS {
	case "windows":
		if !filepath.IsAbs(path) && path != "logs" {
			t.Errorf("Expected absolute path on Windows, got %s", path)
		}
	case "darwin", "linux":
		if filepath.Base(path) != "logs" {
			t.Errorf("Expected path to end with logs, got %s", path)
		}
	}
}

func TestSaveAndLoad(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "test_config.toml")

	cfg := DefaultConfig()
	cfg.Assembler.IncludeDirs = []string{"include", "lib/g10"}
	cfg.Assembler.MaxRecursionDepth = 64
	cfg.Assembler.StopAfter = "parse"
	cfg.Linker.DefaultOutput = "firmware.g10"

	if err := cfg.SaveTo(configPath); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Fatal("Config file was not created")
	}

	loaded, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if len(loaded.Assembler.IncludeDirs) != 2 || loaded.Assembler.IncludeDirs[1] != "lib/g10" {
		t.Errorf("Expected IncludeDirs=[include lib/g10], got %v", loaded.Assembler.IncludeDirs)
	}
	if loaded.Assembler.MaxRecursionDepth != 64 {
		t.Errorf("Expected MaxRecursionDepth=64, got %d", loaded.Assembler.MaxRecursionDepth)
	}
	if loaded.Assembler.StopAfter != "parse" {
		t.Errorf("Expected StopAfter=parse, got %s", loaded.Assembler.StopAfter)
	}
	if loaded.Linker.DefaultOutput != "firmware.g10" {
		t.Errorf("Expected DefaultOutput=firmware.g10, got %s", loaded.Linker.DefaultOutput)
	}
}

func TestLoadNonExistent(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "nonexistent.toml")

	cfg, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("LoadFrom should not error on non-existent file: %v", err)
	}
	if cfg.Assembler.MaxRecursionDepth != 256 {
		t.Error("Expected default config when file doesn't exist")
	}
}

func TestLoadInvalidTOML(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "invalid.toml")

	invalidTOML := `
[assembler]
max_recursion_depth = "not a number"
`
	if err := os.WriteFile(configPath, []byte(invalidTOML), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	if _, err := LoadFrom(configPath); err == nil {
		t.Error("Expected error when loading invalid TOML")
	}
}

func TestSaveCreatesDirectory(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "subdir1", "subdir2", "config.toml")

	cfg := DefaultConfig()
	if err := cfg.SaveTo(configPath); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Error("Config file was not created")
	}
	dir := filepath.Dir(configPath)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		t.Error("Parent directories were not created")
	}
}
