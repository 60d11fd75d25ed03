package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.ServerAddr != ":8080" {
		t.Fatalf("unexpected server addr %q", cfg.ServerAddr)
	}
	if cfg.Pipeline.GlobalTimeout != 90*time.Second {
		t.Fatalf("unexpected global timeout %v", cfg.Pipeline.GlobalTimeout)
	}
	if !cfg.Browser.Headless {
		t.Fatal("headless should default to true")
	}
	if cfg.Site == nil || cfg.Site.Domain != "serpavi.mivau.gob.es" {
		t.Fatalf("unexpected site config: %+v", cfg.Site)
	}
	if cfg.Site.RentMin != 100 || cfg.Site.RentMax != 20000 {
		t.Fatalf("unexpected rent bounds %v-%v", cfg.Site.RentMin, cfg.Site.RentMax)
	}
	if cfg.S3.Enabled() {
		t.Fatal("S3 should be disabled without a bucket")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_ADDR", ":9999")
	t.Setenv("PIPELINE_TIMEOUT", "2m")
	t.Setenv("BROWSER_HEADLESS", "false")
	t.Setenv("RETENTION_DAYS", "7")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ServerAddr != ":9999" {
		t.Fatalf("unexpected server addr %q", cfg.ServerAddr)
	}
	if cfg.Pipeline.GlobalTimeout != 2*time.Minute {
		t.Fatalf("unexpected global timeout %v", cfg.Pipeline.GlobalTimeout)
	}
	if cfg.Browser.Headless {
		t.Fatal("headless override not applied")
	}
	if cfg.Scheduler.RetentionDays != 7 {
		t.Fatalf("unexpected retention %d", cfg.Scheduler.RetentionDays)
	}
}

func TestLoadSiteConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "site.yaml")
	yaml := "id: serpavi\ndomain: example.gob.es\nrent_max: 5000\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("writing site config: %v", err)
	}
	t.Setenv("SITE_CONFIG", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Site.Domain != "example.gob.es" {
		t.Fatalf("site file not applied, domain %q", cfg.Site.Domain)
	}
	if cfg.Site.RentMax != 5000 {
		t.Fatalf("site file not applied, rent max %v", cfg.Site.RentMax)
	}
	// Fields the file omits keep their defaults.
	if cfg.Site.AppURL != "https://serpavi.mivau.gob.es/" {
		t.Fatalf("default app URL lost: %q", cfg.Site.AppURL)
	}
}
