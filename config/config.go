package config

import (
	"log"
	"path/filepath"

	"bridge_cao/utility/logger"

	"github.com/caarlos0/env"
	"github.com/joho/godotenv"
)

// Configuration holds the static settings the bridge needs at runtime.
// Values come from environment variables (systemd EnvironmentFile) with a
// .env file fallback for development.
type Configuration struct {
	// Upstream Gambio shop
	ShopBaseURL string `env:"SHOP_BASE_URL,required"` // base URL of the shop, without /api.php
	APIVersion  string `env:"SHOP_API_VERSION" envDefault:"v2"`
	BasicUser   string `env:"SHOP_API_USER"`
	BasicPass   string `env:"SHOP_API_PASS"`
	JWT         string `env:"SHOP_API_JWT"` // bearer token, v3 only

	// CAO entry point
	ListenAddr  string   `env:"LISTEN_ADDR" envDefault:":8080"`
	AccessToken string   `env:"CAO_ACCESS_TOKEN"` // X-CAO-Token / X-Api-Key / ?token=
	AllowedIPs  []string `env:"CAO_ALLOWED_IPS" envSeparator:","`
	MaxXMLBytes int64    `env:"CAO_MAX_XML_BYTES" envDefault:"2097152"`

	// Export behaviour
	ExportDir      string `env:"EXPORT_DIR" envDefault:"./exports"`
	ExportSchedule string `env:"EXPORT_SCHEDULE"` // cron spec for the incremental order export, empty = disabled

	// Default order-status window: include when status < OpenBelow OR status > ClosedAbove.
	// The bounds mirror the legacy CAO behaviour but are tunable per shop.
	StatusOpenBelow   int `env:"STATUS_OPEN_BELOW" envDefault:"30"`
	StatusClosedAbove int `env:"STATUS_CLOSED_ABOVE" envDefault:"50"`

	// Language block emitted on description elements
	LangCode string `env:"EXPORT_LANG_CODE" envDefault:"de"`
	LangName string `env:"EXPORT_LANG_NAME" envDefault:"Deutsch"`
	LangID   string `env:"EXPORT_LANG_ID" envDefault:"2"`
}

// LogConfig returns the logger configuration read from environment variables.
func LogConfig() *logger.Config {
	return logger.NewConfig()
}

// NewConfig reads the configuration, preferring real environment variables
// over a local .env file. The .env file is only consulted when the required
// variables are not already set.
func NewConfig(files ...string) *Configuration {
	cfg := Configuration{}

	if err := env.Parse(&cfg); err == nil && cfg.ShopBaseURL != "" {
		log.Printf("configuration loaded from environment variables")
		return &cfg
	}

	envPath := filepath.Join(".env")
	if err := godotenv.Load(envPath); err != nil {
		log.Printf("no .env file at %s, relying on environment variables", envPath)
	} else {
		log.Printf("loaded .env file from %s", envPath)
	}

	if err := env.Parse(&cfg); err != nil {
		log.Printf("error parsing configuration: %+v", err)
	}

	return &cfg
}
