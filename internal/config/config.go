package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/Dan9191/autosmc/internal/models"
)

// Config holds application configuration
type Config struct {
	Port     string
	LogLevel string
	City     string

	FIPEURL     string
	FIPETimeout time.Duration
	CacheTTL    time.Duration
	RedisAddr   string
	SessionTTL  time.Duration

	BCBURL     string
	BCBSeries  string
	BankSpread float64

	RateLimit  int
	RateWindow time.Duration

	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SenderEmail  string

	Rates models.RegionalRates
}

// DefaultRates are the Alagoas constants used when nothing overrides them
func DefaultRates() models.RegionalRates {
	return models.RegionalRates{
		TaxRate:              0.03,
		InsuranceRate:        0.05,
		LicensingFee:         180.00,
		DefaultMonthlyRate:   1.95,
		OilChangeEstimate:    350.00,
		LocalMarketMarkup:    1.02,
		DepreciationEstimate: -4.2,
		MaintenanceFactor:    0.1,
		MaintenanceScores: []models.MaintenanceScore{
			{Item: "Peças de Motor", Score: 85},
			{Item: "Suspensão", Score: 70},
			{Item: "Funilaria", Score: 60},
			{Item: "Revenda local", Score: 90},
		},
	}
}

// NewConfig loads configuration from environment variables
func NewConfig() (*Config, error) {
	cfg := &Config{
		Port:         getEnv("PORT", "8080"),
		LogLevel:     getEnv("LOG_LEVEL", "INFO"),
		City:         getEnv("CITY", "São Miguel dos Campos - AL"),
		FIPEURL:      getEnv("FIPE_URL", "https://parallelum.com.br/fipe/api/v1/carros/marcas"),
		RedisAddr:    getEnv("REDIS_ADDR", ""),
		BCBURL:       getEnv("BCB_URL", "https://api.bcb.gov.br/dados/serie"),
		BCBSeries:    getEnv("BCB_SERIES", "4390"),
		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnv("SMTP_PORT", "587"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SenderEmail:  getEnv("SENDER_EMAIL", "relatorios@autosmc.com.br"),
		Rates:        DefaultRates(),
	}

	var err error
	if cfg.FIPETimeout, err = getDuration("FIPE_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = getDuration("CACHE_TTL", time.Hour); err != nil {
		return nil, err
	}
	if cfg.SessionTTL, err = getDuration("SESSION_TTL", 2*time.Hour); err != nil {
		return nil, err
	}
	if cfg.RateWindow, err = getDuration("RATE_WINDOW", time.Minute); err != nil {
		return nil, err
	}
	if cfg.RateLimit, err = getInt("RATE_LIMIT", 60); err != nil {
		return nil, err
	}
	if cfg.BankSpread, err = getFloat("BANK_SPREAD", 0.8); err != nil {
		return nil, err
	}

	if path := getEnv("REGION_FILE", ""); path != "" {
		if err := loadRegionFile(path, &cfg.Rates); err != nil {
			return nil, err
		}
	}
	if err := overrideRates(&cfg.Rates); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// MailEnabled reports whether an SMTP server is configured
func (c *Config) MailEnabled() bool {
	return c.SMTPHost != ""
}

func (c *Config) validate() error {
	if c.FIPEURL == "" {
		return fmt.Errorf("FIPE_URL is required")
	}
	if c.FIPETimeout <= 0 {
		return fmt.Errorf("FIPE_TIMEOUT must be positive")
	}
	if c.RateLimit <= 0 {
		return fmt.Errorf("RATE_LIMIT must be positive")
	}
	if c.Rates.TaxRate < 0 || c.Rates.InsuranceRate < 0 || c.Rates.LicensingFee < 0 {
		return fmt.Errorf("regional rates must not be negative")
	}
	if c.Rates.DefaultMonthlyRate <= 0 {
		return fmt.Errorf("DEFAULT_MONTHLY_RATE must be positive")
	}
	return nil
}

// loadRegionFile reads regional constants from YAML; omitted keys keep their defaults
func loadRegionFile(path string, rates *models.RegionalRates) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read region file: %w", err)
	}
	if err := yaml.Unmarshal(data, rates); err != nil {
		return fmt.Errorf("failed to parse region file %s: %w", path, err)
	}
	return nil
}

func overrideRates(rates *models.RegionalRates) error {
	overrides := []struct {
		key string
		dst *float64
	}{
		{"TAX_RATE", &rates.TaxRate},
		{"INSURANCE_RATE", &rates.InsuranceRate},
		{"LICENSING_FEE", &rates.LicensingFee},
		{"DEFAULT_MONTHLY_RATE", &rates.DefaultMonthlyRate},
	}
	for _, o := range overrides {
		v, err := getFloat(o.key, *o.dst)
		if err != nil {
			return err
		}
		*o.dst = v
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getFloat(key string, defaultVal float64) (float64, error) {
	raw, exists := os.LookupEnv(key)
	if !exists || raw == "" {
		return defaultVal, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}

func getInt(key string, defaultVal int) (int, error) {
	raw, exists := os.LookupEnv(key)
	if !exists || raw == "" {
		return defaultVal, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}

func getDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	raw, exists := os.LookupEnv(key)
	if !exists || raw == "" {
		return defaultVal, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}
