package config

import (
	"time"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Config is the root configuration for kogscrape.
type Config struct {
	Site    SiteConfig    `mapstructure:"site"    yaml:"site"`
	Auth    AuthConfig    `mapstructure:"auth"    yaml:"auth"`
	Browser BrowserConfig `mapstructure:"browser" yaml:"browser"`
	Scrape  ScrapeConfig  `mapstructure:"scrape"  yaml:"scrape"`
	API     APIConfig     `mapstructure:"api"     yaml:"api"`
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Selectors overrides entries of the built-in selector table with
	// CSS selectors, keyed by logical target name.
	Selectors map[string][]string `mapstructure:"selectors" yaml:"selectors"`
}

// SiteConfig identifies the platform and account.
type SiteConfig struct {
	BaseURL   string `mapstructure:"base_url"   yaml:"base_url"`
	LoginPath string `mapstructure:"login_path" yaml:"login_path"`
	Email     string `mapstructure:"email"      yaml:"email"`
	Password  string `mapstructure:"password"   yaml:"password"`
}

// AuthConfig controls session persistence and the login success policy.
type AuthConfig struct {
	CookieFile   string        `mapstructure:"cookie_file"   yaml:"cookie_file"`
	CookieExpiry time.Duration `mapstructure:"cookie_expiry" yaml:"cookie_expiry"`

	// Strict makes an ambiguous post-login state (URL still matches the
	// login pattern) a hard failure instead of a warning.
	Strict bool `mapstructure:"strict" yaml:"strict"`
}

// BrowserConfig controls the Chromium instance.
type BrowserConfig struct {
	Headless    bool   `mapstructure:"headless"      yaml:"headless"`
	Stealth     bool   `mapstructure:"stealth"       yaml:"stealth"`
	UserDataDir string `mapstructure:"user_data_dir" yaml:"user_data_dir"`
	WindowSize  string `mapstructure:"window_size"   yaml:"window_size"`
}

// ScrapeConfig controls the traversal and capture run.
type ScrapeConfig struct {
	OutputDir string   `mapstructure:"output_dir" yaml:"output_dir"`
	Subjects  []string `mapstructure:"subjects"   yaml:"subjects"`
	Tabs      []string `mapstructure:"tabs"       yaml:"tabs"`

	ElementTimeout time.Duration `mapstructure:"element_timeout" yaml:"element_timeout"`
	PageSettle     time.Duration `mapstructure:"page_settle"     yaml:"page_settle"`
	AfterClick     time.Duration `mapstructure:"after_click"     yaml:"after_click"`
	AfterLogin     time.Duration `mapstructure:"after_login"     yaml:"after_login"`

	// NewTabPolls is the number of one-second polls waiting for a leaf
	// click to spawn a new browser tab before falling back to in-place
	// navigation detection.
	NewTabPolls int `mapstructure:"new_tab_polls" yaml:"new_tab_polls"`
}

// APIConfig controls the REST API clients.
type APIConfig struct {
	Timeout  time.Duration `mapstructure:"timeout"   yaml:"timeout"`
	PageSize int           `mapstructure:"page_size" yaml:"page_size"`
	MaxPages int           `mapstructure:"max_pages" yaml:"max_pages"`
}

// StorageConfig selects the question-set storage backend.
type StorageConfig struct {
	Type            string `mapstructure:"type"             yaml:"type"` // json, mongodb
	MongoURI        string `mapstructure:"mongo_uri"        yaml:"mongo_uri"`
	MongoDatabase   string `mapstructure:"mongo_database"   yaml:"mongo_database"`
	MongoCollection string `mapstructure:"mongo_collection" yaml:"mongo_collection"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	File  string `mapstructure:"file"  yaml:"file"` // empty = <output_dir>/scraper_log.txt
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Site: SiteConfig{
			LoginPath: "accounts/login/",
		},
		Auth: AuthConfig{
			CookieFile:   "cookies.json",
			CookieExpiry: 7 * 24 * time.Hour,
			Strict:       false,
		},
		Browser: BrowserConfig{
			Headless:   true,
			Stealth:    true,
			WindowSize: "1920,1080",
		},
		Scrape: ScrapeConfig{
			OutputDir:      "downloads",
			Tabs:           []string{"overview"},
			ElementTimeout: 10 * time.Second,
			PageSettle:     3 * time.Second,
			AfterClick:     2 * time.Second,
			AfterLogin:     5 * time.Second,
			NewTabPolls:    5,
		},
		API: APIConfig{
			Timeout:  30 * time.Second,
			PageSize: 100,
			MaxPages: 100,
		},
		Storage: StorageConfig{
			Type:            "json",
			MongoDatabase:   "kogscrape",
			MongoCollection: "exam_questions",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
