package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks configuration invariants shared by every subcommand.
func Validate(cfg *Config) error {
	if cfg.Auth.CookieExpiry <= 0 {
		return fmt.Errorf("auth.cookie_expiry must be > 0")
	}
	if cfg.Scrape.OutputDir == "" {
		return fmt.Errorf("scrape.output_dir must not be empty")
	}
	if cfg.Scrape.ElementTimeout <= 0 {
		return fmt.Errorf("scrape.element_timeout must be > 0")
	}
	if cfg.Scrape.NewTabPolls < 1 {
		return fmt.Errorf("scrape.new_tab_polls must be >= 1, got %d", cfg.Scrape.NewTabPolls)
	}
	if cfg.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be > 0")
	}
	if cfg.API.PageSize < 1 {
		return fmt.Errorf("api.page_size must be >= 1, got %d", cfg.API.PageSize)
	}
	if cfg.API.MaxPages < 1 {
		return fmt.Errorf("api.max_pages must be >= 1, got %d", cfg.API.MaxPages)
	}
	switch cfg.Storage.Type {
	case "json", "mongodb":
	default:
		return fmt.Errorf("storage.type must be json or mongodb, got %q", cfg.Storage.Type)
	}
	if cfg.Storage.Type == "mongodb" && cfg.Storage.MongoURI == "" {
		return fmt.Errorf("storage.mongo_uri is required when storage.type is mongodb")
	}
	return nil
}

// ValidateSite checks the fields only needed when the run talks to the
// platform (scrape, assignments, assessment).
func ValidateSite(cfg *Config) error {
	if cfg.Site.BaseURL == "" {
		return fmt.Errorf("site.base_url is required")
	}
	u, err := url.Parse(cfg.Site.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid site.base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("site.base_url scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("site.base_url must have a host")
	}
	return nil
}

// ValidateCredentials checks that login can even be attempted.
func ValidateCredentials(cfg *Config) error {
	if strings.TrimSpace(cfg.Site.Email) == "" {
		return fmt.Errorf("site.email is required (or KOGSCRAPE_SITE_EMAIL)")
	}
	if cfg.Site.Password == "" {
		return fmt.Errorf("site.password is required (or KOGSCRAPE_SITE_PASSWORD)")
	}
	return nil
}
