package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if errWrite := os.WriteFile(path, []byte(content), 0600); errWrite != nil {
		t.Fatalf("write config: %v", errWrite)
	}
	return path
}

func TestLoadValidConfig(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":9000"
database:
  dsn: "file:test.db"
jwt:
  secret: "s3cret"
  expiry-hours: 12
redis:
  addr: "localhost:6379"
`)

	cfg, errLoad := Load(path)
	if errLoad != nil {
		t.Fatalf("load: %v", errLoad)
	}
	if cfg.Server.Addr != ":9000" {
		t.Fatalf("addr = %q", cfg.Server.Addr)
	}
	if cfg.JWT.Expiry().Hours() != 12 {
		t.Fatalf("expiry = %v", cfg.JWT.Expiry())
	}
}

func TestLoadRequiresDSNAndSecret(t *testing.T) {
	if _, errLoad := Load(writeConfig(t, "jwt:\n  secret: x\n")); errLoad == nil {
		t.Fatal("expected error for missing dsn")
	}
	if _, errLoad := Load(writeConfig(t, "database:\n  dsn: file:x.db\n")); errLoad == nil {
		t.Fatal("expected error for missing jwt secret")
	}
}

func TestLoadDefaultsAddr(t *testing.T) {
	cfg, errLoad := Load(writeConfig(t, "database:\n  dsn: file:x.db\njwt:\n  secret: x\n"))
	if errLoad != nil {
		t.Fatalf("load: %v", errLoad)
	}
	if cfg.Server.Addr == "" {
		t.Fatal("expected default addr")
	}
}

func TestResolveConfigPath(t *testing.T) {
	if got := ResolveConfigPath(" explicit.yaml "); got != "explicit.yaml" {
		t.Fatalf("explicit path = %q", got)
	}
	t.Setenv("PARTNEROPS_CONFIG", "/etc/partnerops/config.yaml")
	if got := ResolveConfigPath(""); got != "/etc/partnerops/config.yaml" {
		t.Fatalf("env path = %q", got)
	}
	t.Setenv("PARTNEROPS_CONFIG", "")
	if got := ResolveConfigPath(""); got != defaultConfigFile {
		t.Fatalf("default path = %q", got)
	}
}
