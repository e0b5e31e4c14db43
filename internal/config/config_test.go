package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"sigrep/internal/config"
)

func TestDefaultValidates(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Reports.FolioPrefix != "TSR" {
		t.Fatalf("folio prefix = %q", cfg.Reports.FolioPrefix)
	}
}

func TestFromYAMLOverridesDefaults(t *testing.T) {
	cfg, err := config.FromYAML([]byte("reports:\n  folio_prefix: SRV\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Reports.FolioPrefix != "SRV" {
		t.Fatalf("folio prefix = %q", cfg.Reports.FolioPrefix)
	}
	if cfg.Server.Addr != ":8787" {
		t.Fatalf("addr default lost: %q", cfg.Server.Addr)
	}
}

func TestFromYAMLRejectsBadYAML(t *testing.T) {
	if _, err := config.FromYAML([]byte(":\n-")); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestLoadOptionalMissingFile(t *testing.T) {
	cfg, err := config.LoadOptional(t.TempDir())
	if err != nil {
		t.Fatalf("load optional: %v", err)
	}
	if cfg == nil || cfg.Server.Addr == "" {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestLoadReadsWorkspaceFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "sigrep.yml"), []byte(config.GenerateDefault()), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := config.Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.BasePath != "/v0" {
		t.Fatalf("base path = %q", cfg.Server.BasePath)
	}
}
