package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Auth.CookieExpiry != 7*24*time.Hour {
		t.Errorf("cookie expiry = %v", cfg.Auth.CookieExpiry)
	}
	if !cfg.Browser.Headless || !cfg.Browser.Stealth {
		t.Error("browser defaults should be headless + stealth")
	}
	if cfg.Scrape.OutputDir != "downloads" {
		t.Errorf("output dir = %q", cfg.Scrape.OutputDir)
	}
	if len(cfg.Scrape.Tabs) != 1 || cfg.Scrape.Tabs[0] != "overview" {
		t.Errorf("tabs = %v", cfg.Scrape.Tabs)
	}
	if cfg.API.PageSize != 100 || cfg.API.MaxPages != 100 {
		t.Errorf("api paging = %d/%d", cfg.API.PageSize, cfg.API.MaxPages)
	}
	if cfg.Storage.Type != "json" {
		t.Errorf("storage type = %q", cfg.Storage.Type)
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("KOGSCRAPE_SITE_BASE_URL", "https://app.kognity.com")
	t.Setenv("KOGSCRAPE_SCRAPE_OUTPUT_DIR", "/tmp/kog")
	t.Setenv("KOGSCRAPE_AUTH_STRICT", "true")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Site.BaseURL != "https://app.kognity.com" {
		t.Errorf("base url = %q", cfg.Site.BaseURL)
	}
	if cfg.Scrape.OutputDir != "/tmp/kog" {
		t.Errorf("output dir = %q", cfg.Scrape.OutputDir)
	}
	if !cfg.Auth.Strict {
		t.Error("auth.strict env override not applied")
	}
}

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kogscrape.yaml")
	content := `
site:
  base_url: https://app.kognity.com
  email: staff@school.org
scrape:
  subjects: [biology, physics]
  tabs: [overview, book]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Site.Email != "staff@school.org" {
		t.Errorf("email = %q", cfg.Site.Email)
	}
	if len(cfg.Scrape.Subjects) != 2 {
		t.Errorf("subjects = %v", cfg.Scrape.Subjects)
	}
	if len(cfg.Scrape.Tabs) != 2 || cfg.Scrape.Tabs[1] != "book" {
		t.Errorf("tabs = %v", cfg.Scrape.Tabs)
	}
	// Untouched keys keep their defaults.
	if cfg.Scrape.ElementTimeout != 10*time.Second {
		t.Errorf("element timeout = %v", cfg.Scrape.ElementTimeout)
	}
}

func TestMissingExplicitFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for explicitly named missing file")
	}
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	if err := Validate(cfg); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}

	bad := DefaultConfig()
	bad.Scrape.NewTabPolls = 0
	if err := Validate(bad); err == nil {
		t.Error("new_tab_polls 0 should fail")
	}

	bad = DefaultConfig()
	bad.Storage.Type = "mongodb"
	if err := Validate(bad); err == nil {
		t.Error("mongodb without uri should fail")
	}
	bad.Storage.MongoURI = "mongodb://localhost:27017"
	if err := Validate(bad); err != nil {
		t.Errorf("mongodb with uri should pass: %v", err)
	}
}

func TestValidateSite(t *testing.T) {
	cfg := DefaultConfig()
	if err := ValidateSite(cfg); err == nil {
		t.Error("empty base_url should fail")
	}

	cfg.Site.BaseURL = "ftp://example.com"
	if err := ValidateSite(cfg); err == nil {
		t.Error("non-http scheme should fail")
	}

	cfg.Site.BaseURL = "https://app.kognity.com/"
	if err := ValidateSite(cfg); err != nil {
		t.Errorf("valid url rejected: %v", err)
	}
}

func TestValidateCredentials(t *testing.T) {
	cfg := DefaultConfig()
	if err := ValidateCredentials(cfg); err == nil {
		t.Error("missing credentials should fail")
	}
	cfg.Site.Email = "staff@school.org"
	cfg.Site.Password = "secret"
	if err := ValidateCredentials(cfg); err != nil {
		t.Errorf("credentials rejected: %v", err)
	}
}
