package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoader_LoadDefaults(t *testing.T) {
	cfg, err := NewLoader().Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Check defaults
	if cfg.App.Name != "weaver" {
		t.Errorf("expected app name 'weaver', got %s", cfg.App.Name)
	}
	if cfg.Loader.MaxConcurrentFetch != 4 {
		t.Errorf("expected loader max_concurrent_fetch 4, got %d", cfg.Loader.MaxConcurrentFetch)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Log.Level)
	}
	if cfg.Metrics.Port != 9090 {
		t.Errorf("expected metrics port 9090, got %d", cfg.Metrics.Port)
	}
	if cfg.Resolver.MaxExtendsDepth != 32 {
		t.Errorf("expected resolver max_extends_depth 32, got %d", cfg.Resolver.MaxExtendsDepth)
	}
}

func TestLoader_LoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
app:
  name: custom-tool
  version: 2.0.0
  environment: staging
loader:
  max_concurrent_fetch: 8
log:
  level: debug
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	if err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	loader := NewLoader(WithConfigPaths(configPath))
	cfg, err := loader.Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.App.Name != "custom-tool" {
		t.Errorf("expected app name 'custom-tool', got %s", cfg.App.Name)
	}
	if cfg.App.Version != "2.0.0" {
		t.Errorf("expected version '2.0.0', got %s", cfg.App.Version)
	}
	if cfg.Loader.MaxConcurrentFetch != 8 {
		t.Errorf("expected max_concurrent_fetch 8, got %d", cfg.Loader.MaxConcurrentFetch)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Log.Level)
	}
}

func TestLoader_LoadFromEnv(t *testing.T) {
	// Set env vars
	os.Setenv("WEAVER_APP_NAME", "env-tool")
	os.Setenv("WEAVER_LOADER_MAX_CONCURRENT_FETCH", "16")
	defer func() {
		os.Unsetenv("WEAVER_APP_NAME")
		os.Unsetenv("WEAVER_LOADER_MAX_CONCURRENT_FETCH")
	}()

	cfg, err := NewLoader().Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.App.Name != "env-tool" {
		t.Errorf("expected app name 'env-tool', got %s", cfg.App.Name)
	}
	if cfg.Loader.MaxConcurrentFetch != 16 {
		t.Errorf("expected max_concurrent_fetch 16, got %d", cfg.Loader.MaxConcurrentFetch)
	}
}

func TestLoader_EnvOverridesFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
app:
  name: file-tool
loader:
  max_concurrent_fetch: 2
`
	os.WriteFile(configPath, []byte(configContent), 0644)

	// Env should override file
	os.Setenv("WEAVER_APP_NAME", "env-override")
	defer os.Unsetenv("WEAVER_APP_NAME")

	cfg, err := NewLoader(WithConfigPaths(configPath)).Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.App.Name != "env-override" {
		t.Errorf("expected env override, got %s", cfg.App.Name)
	}
	// Value should come from file
	if cfg.Loader.MaxConcurrentFetch != 2 {
		t.Errorf("expected max_concurrent_fetch from file 2, got %d", cfg.Loader.MaxConcurrentFetch)
	}
}

func TestLoader_WithEnvPrefix(t *testing.T) {
	os.Setenv("CUSTOM_APP_NAME", "custom-prefix-tool")
	defer os.Unsetenv("CUSTOM_APP_NAME")

	cfg, err := NewLoader(WithEnvPrefix("CUSTOM_")).Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.App.Name != "custom-prefix-tool" {
		t.Errorf("expected 'custom-prefix-tool', got %s", cfg.App.Name)
	}
}

func TestMustLoad_Success(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Errorf("MustLoad should not panic with valid config")
		}
	}()

	cfg := MustLoad()
	if cfg == nil {
		t.Error("expected non-nil config")
	}
}

func TestLoad_Simple(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg == nil {
		t.Error("expected non-nil config")
	}
}

func TestLoader_ConfigEnvVar(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "custom-config.yaml")

	configContent := `
app:
  name: config-env-var-tool
`
	os.WriteFile(configPath, []byte(configContent), 0644)

	os.Setenv("CONFIG_PATH", configPath)
	defer os.Unsetenv("CONFIG_PATH")

	cfg, err := NewLoader().Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.App.Name != "config-env-var-tool" {
		t.Errorf("expected 'config-env-var-tool', got %s", cfg.App.Name)
	}
}
