package config

import (
	"testing"
	"time"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "valid config",
			cfg: Config{
				App:       AppConfig{Name: "weaver"},
				Log:       LogConfig{Level: "info"},
				Resolver:  ResolverConfig{MaxExtendsDepth: 32, MaxIncludeDepth: 32},
				LiveCheck: LiveCheckConfig{InactivityTimeout: 30 * time.Second},
				Loader:    LoaderConfig{MaxConcurrentFetch: 4},
			},
			wantErr: false,
		},
		{
			name: "missing app name",
			cfg: Config{
				Log:       LogConfig{Level: "info"},
				Resolver:  ResolverConfig{MaxExtendsDepth: 32, MaxIncludeDepth: 32},
				LiveCheck: LiveCheckConfig{InactivityTimeout: 30 * time.Second},
				Loader:    LoaderConfig{MaxConcurrentFetch: 4},
			},
			wantErr: true,
		},
		{
			name: "invalid log level",
			cfg: Config{
				App:       AppConfig{Name: "test"},
				Log:       LogConfig{Level: "invalid"},
				Resolver:  ResolverConfig{MaxExtendsDepth: 32, MaxIncludeDepth: 32},
				LiveCheck: LiveCheckConfig{InactivityTimeout: 30 * time.Second},
				Loader:    LoaderConfig{MaxConcurrentFetch: 4},
			},
			wantErr: true,
		},
		{
			name: "valid debug level",
			cfg: Config{
				App:       AppConfig{Name: "test"},
				Log:       LogConfig{Level: "debug"},
				Resolver:  ResolverConfig{MaxExtendsDepth: 32, MaxIncludeDepth: 32},
				LiveCheck: LiveCheckConfig{InactivityTimeout: 30 * time.Second},
				Loader:    LoaderConfig{MaxConcurrentFetch: 4},
			},
			wantErr: false,
		},
		{
			name: "missing resolver depth",
			cfg: Config{
				App:       AppConfig{Name: "test"},
				Log:       LogConfig{Level: "info"},
				LiveCheck: LiveCheckConfig{InactivityTimeout: 30 * time.Second},
				Loader:    LoaderConfig{MaxConcurrentFetch: 4},
			},
			wantErr: true,
		},
		{
			name: "missing live-check timeout",
			cfg: Config{
				App:      AppConfig{Name: "test"},
				Log:      LogConfig{Level: "info"},
				Resolver: ResolverConfig{MaxExtendsDepth: 32, MaxIncludeDepth: 32},
				Loader:   LoaderConfig{MaxConcurrentFetch: 4},
			},
			wantErr: true,
		},
		{
			name: "missing loader concurrency",
			cfg: Config{
				App:       AppConfig{Name: "test"},
				Log:       LogConfig{Level: "info"},
				Resolver:  ResolverConfig{MaxExtendsDepth: 32, MaxIncludeDepth: 32},
				LiveCheck: LiveCheckConfig{InactivityTimeout: 30 * time.Second},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_IsDevelopment(t *testing.T) {
	tests := []struct {
		env  string
		want bool
	}{
		{"development", true},
		{"dev", true},
		{"production", false},
		{"staging", false},
	}

	for _, tt := range tests {
		cfg := &Config{App: AppConfig{Environment: tt.env}}
		if got := cfg.IsDevelopment(); got != tt.want {
			t.Errorf("IsDevelopment() for %s = %v, want %v", tt.env, got, tt.want)
		}
	}
}

func TestConfig_IsProduction(t *testing.T) {
	tests := []struct {
		env  string
		want bool
	}{
		{"production", true},
		{"prod", true},
		{"development", false},
		{"staging", false},
	}

	for _, tt := range tests {
		cfg := &Config{App: AppConfig{Environment: tt.env}}
		if got := cfg.IsProduction(); got != tt.want {
			t.Errorf("IsProduction() for %s = %v, want %v", tt.env, got, tt.want)
		}
	}
}

func TestLoaderConfig_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Loader.DependencyCacheDir == "" {
		t.Error("expected a non-empty dependency cache dir default")
	}
	if cfg.Loader.FetchTimeout <= 0 {
		t.Error("expected a positive fetch timeout default")
	}
}

func TestPolicyConfig_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if !cfg.Policy.Enabled {
		t.Error("expected policy engine enabled by default")
	}
	if !cfg.Policy.EnableJQTransform {
		t.Error("expected jq transform enabled by default")
	}
}
