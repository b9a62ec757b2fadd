//go:build unit

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	yml := `
server:
  port: "9090"
data:
  dir: /srv/garage/data
cache:
  maxSize: 42
  ttl: 30s
auth:
  adminToken: from-file
`
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("GARAGE_AUTH_ADMINTOKEN", "from-env")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("expected port 9090, got %q", cfg.Server.Port)
	}
	if cfg.Data.Dir != "/srv/garage/data" {
		t.Errorf("expected data dir from file, got %q", cfg.Data.Dir)
	}
	if cfg.Cache.MaxSize != 42 {
		t.Errorf("expected cache max size 42, got %d", cfg.Cache.MaxSize)
	}
	if cfg.Cache.TTL != 30*time.Second {
		t.Errorf("expected cache ttl 30s, got %v", cfg.Cache.TTL)
	}
	if cfg.Auth.AdminToken != "from-env" {
		t.Errorf("expected env to override admin token, got %q", cfg.Auth.AdminToken)
	}
	// Untouched keys keep their defaults.
	if cfg.Session.Store != "memory" {
		t.Errorf("expected default session store 'memory', got %q", cfg.Session.Store)
	}
	if cfg.Cache.CleanInterval != 5*time.Minute {
		t.Errorf("expected default clean interval 5m, got %v", cfg.Cache.CleanInterval)
	}
}

func TestConfig_Validate(t *testing.T) {
	testCases := []struct {
		name    string
		token   string
		dir     string
		wantErr bool
	}{
		{"valid", "s3cret", "data", false},
		{"empty token", "", "data", true},
		{"default token", DefaultAdminToken, "data", true},
		{"empty data dir", "s3cret", "", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &Config{Auth: AuthConfig{AdminToken: tc.token}, Data: DataConfig{Dir: tc.dir}}
			err := cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}
