package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	HTTP        HTTPConfig        `mapstructure:"http"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Distributor DistributorConfig `mapstructure:"distributor"`
	Invoicing   InvoicingConfig   `mapstructure:"invoicing"`
	IFirma      IFirmaConfig      `mapstructure:"ifirma"`
	InFakt      InFaktConfig      `mapstructure:"infakt"`
	Catalog     CatalogConfig     `mapstructure:"catalog"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

type DatabaseConfig struct {
	// Driver is "postgres" or "sqlite". sqlite is used by local setups
	// and tests; production runs postgres.
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type DistributorConfig struct {
	BaseURL  string `mapstructure:"base_url"`
	Login    string `mapstructure:"login"`
	Password string `mapstructure:"password"`
}

type InvoicingConfig struct {
	// Provider selects the active accounting integration: "inFakt" or
	// "iFirma". Resolved on every submission, not cached.
	Provider       string `mapstructure:"provider"`
	PlaceOfIssue   string `mapstructure:"place_of_issue"`
	PaymentMethod  string `mapstructure:"payment_method"`
	PaymentDueDays int    `mapstructure:"payment_due_days"`
}

type IFirmaConfig struct {
	BaseURL string `mapstructure:"base_url"`
	User    string `mapstructure:"user"`
	// Secrets maps an endpoint category (faktura, abonent, rachunek,
	// wydatek) to its hex-encoded HMAC key.
	Secrets map[string]string `mapstructure:"secrets"`
}

type InFaktConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
}

type CatalogConfig struct {
	SyncInterval time.Duration `mapstructure:"sync_interval"`
	CacheTTL     time.Duration `mapstructure:"cache_ttl"`
}

func Load() (Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/motodesk")

	v.SetEnvPrefix("MOTODESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("invoicing.provider", "inFakt")
	v.SetDefault("invoicing.place_of_issue", "Warszawa")
	v.SetDefault("invoicing.payment_method", "transfer")
	v.SetDefault("invoicing.payment_due_days", 14)
	v.SetDefault("ifirma.base_url", "https://www.ifirma.pl")
	v.SetDefault("infakt.base_url", "https://api.infakt.pl/api/v3")
	v.SetDefault("catalog.sync_interval", 24*time.Hour)
	v.SetDefault("catalog.cache_ttl", time.Hour)

	if err := v.ReadInConfig(); err != nil {
		// Config file is optional, env vars can carry everything.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
