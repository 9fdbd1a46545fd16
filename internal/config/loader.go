package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration from file and environment.
// Priority (highest to lowest): env vars > config file > defaults.
// Credentials (site.email, site.password) are expected from the config file
// or KOGSCRAPE_SITE_EMAIL / KOGSCRAPE_SITE_PASSWORD, never from flags.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")

	setDefaults(v, cfg)

	v.SetEnvPrefix("KOGSCRAPE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("kogscrape")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".kogscrape"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && configPath != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is okay if not explicitly specified
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// setDefaults registers default values in viper.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("site.base_url", cfg.Site.BaseURL)
	v.SetDefault("site.login_path", cfg.Site.LoginPath)

	v.SetDefault("auth.cookie_file", cfg.Auth.CookieFile)
	v.SetDefault("auth.cookie_expiry", cfg.Auth.CookieExpiry)
	v.SetDefault("auth.strict", cfg.Auth.Strict)

	v.SetDefault("browser.headless", cfg.Browser.Headless)
	v.SetDefault("browser.stealth", cfg.Browser.Stealth)
	v.SetDefault("browser.user_data_dir", cfg.Browser.UserDataDir)
	v.SetDefault("browser.window_size", cfg.Browser.WindowSize)

	v.SetDefault("scrape.output_dir", cfg.Scrape.OutputDir)
	v.SetDefault("scrape.subjects", cfg.Scrape.Subjects)
	v.SetDefault("scrape.tabs", cfg.Scrape.Tabs)
	v.SetDefault("scrape.element_timeout", cfg.Scrape.ElementTimeout)
	v.SetDefault("scrape.page_settle", cfg.Scrape.PageSettle)
	v.SetDefault("scrape.after_click", cfg.Scrape.AfterClick)
	v.SetDefault("scrape.after_login", cfg.Scrape.AfterLogin)
	v.SetDefault("scrape.new_tab_polls", cfg.Scrape.NewTabPolls)

	v.SetDefault("api.timeout", cfg.API.Timeout)
	v.SetDefault("api.page_size", cfg.API.PageSize)
	v.SetDefault("api.max_pages", cfg.API.MaxPages)

	v.SetDefault("storage.type", cfg.Storage.Type)
	v.SetDefault("storage.mongo_uri", cfg.Storage.MongoURI)
	v.SetDefault("storage.mongo_database", cfg.Storage.MongoDatabase)
	v.SetDefault("storage.mongo_collection", cfg.Storage.MongoCollection)

	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.file", cfg.Logging.File)
}
