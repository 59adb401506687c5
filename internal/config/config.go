package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"smartinvoice/internal/domain"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Log       LogConfig
	Store     StoreConfig
	DB        DBConfig
	Redis     RedisConfig
	S3        S3Config
	SmartFill SmartFillConfig
	Numbering NumberingConfig
	Seller    SellerConfig
	Drafts    DraftsConfig
	CORS      CORSConfig
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// StoreConfig selects the history and sequence backend.
type StoreConfig struct {
	Driver domain.StoreDriver `mapstructure:"driver"`
}

// RedisConfig holds the key-value store settings used by the redis driver.
type RedisConfig struct {
	Addr      string        `mapstructure:"addr"`
	Password  string        `mapstructure:"password"`
	DB        int           `mapstructure:"db"`
	KeyPrefix string        `mapstructure:"key_prefix"`
	LockTTL   time.Duration `mapstructure:"lock_ttl"`
}

// NumberingConfig controls invoice number allocation.
type NumberingConfig struct {
	Prefix string `mapstructure:"prefix"`
	Start  int    `mapstructure:"start"`
	Width  int    `mapstructure:"width"`
}

// SellerConfig is the sender block copied onto every new invoice.
type SellerConfig struct {
	Name      string  `mapstructure:"name"`
	Email     string  `mapstructure:"email"`
	Address   string  `mapstructure:"address"`
	GSTIN     string  `mapstructure:"gstin"`
	PAN       string  `mapstructure:"pan"`
	CIN       string  `mapstructure:"cin"`
	StateCode string  `mapstructure:"state_code"`
	TaxRate   float64 `mapstructure:"tax_rate"`
}

// DraftsConfig bounds the in-process store of invoices being edited.
type DraftsConfig struct {
	IdleTTL time.Duration `mapstructure:"idle_ttl"`
	Max     int           `mapstructure:"max"`
}

// SmartFillProviderConfig holds settings for a single text-extraction provider.
type SmartFillProviderConfig struct {
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	MaxRetries   int    `mapstructure:"max_retries"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
}

// SmartFillConfig holds smart-fill provider settings with fallback support.
type SmartFillConfig struct {
	// Legacy flat fields
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	MaxRetries   int    `mapstructure:"max_retries"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`

	Primary   SmartFillProviderConfig `mapstructure:"primary"`
	Secondary SmartFillProviderConfig `mapstructure:"secondary"`
	Tertiary  SmartFillProviderConfig `mapstructure:"tertiary"`
}

// PrimaryConfig returns the primary provider config, falling back to the flat fields.
func (p *SmartFillConfig) PrimaryConfig() *SmartFillProviderConfig {
	if p.Primary.Provider != "" {
		return &p.Primary
	}
	return &SmartFillProviderConfig{
		Provider:     p.Provider,
		APIKey:       p.APIKey,
		DefaultModel: p.DefaultModel,
		MaxRetries:   p.MaxRetries,
		TimeoutSecs:  p.TimeoutSecs,
	}
}

// SecondaryConfig returns the secondary provider config, or nil if not configured.
func (p *SmartFillConfig) SecondaryConfig() *SmartFillProviderConfig {
	if p.Secondary.Provider != "" {
		return &p.Secondary
	}
	return nil
}

// TertiaryConfig returns the tertiary provider config, or nil if not configured.
func (p *SmartFillConfig) TertiaryConfig() *SmartFillProviderConfig {
	if p.Tertiary.Provider != "" {
		return &p.Tertiary
	}
	return nil
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// S3Config holds the PDF archive bucket settings.
type S3Config struct {
	Enabled       bool   `mapstructure:"enabled"`
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	KeyPrefix     string `mapstructure:"key_prefix"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

const envPrefix = "SMARTINVOICE"

var envBindings = map[string]string{
	"server.port":                       "SMARTINVOICE_SERVER_PORT",
	"server.read_timeout":               "SMARTINVOICE_SERVER_READ_TIMEOUT",
	"server.write_timeout":              "SMARTINVOICE_SERVER_WRITE_TIMEOUT",
	"server.environment":                "SMARTINVOICE_SERVER_ENVIRONMENT",
	"log.level":                         "SMARTINVOICE_LOG_LEVEL",
	"log.format":                        "SMARTINVOICE_LOG_FORMAT",
	"store.driver":                      "SMARTINVOICE_STORE_DRIVER",
	"db.host":                           "SMARTINVOICE_DB_HOST",
	"db.port":                           "SMARTINVOICE_DB_PORT",
	"db.user":                           "SMARTINVOICE_DB_USER",
	"db.password":                       "SMARTINVOICE_DB_PASSWORD",
	"db.name":                           "SMARTINVOICE_DB_NAME",
	"db.sslmode":                        "SMARTINVOICE_DB_SSLMODE",
	"db.max_open":                       "SMARTINVOICE_DB_MAX_OPEN",
	"db.max_idle":                       "SMARTINVOICE_DB_MAX_IDLE",
	"redis.addr":                        "SMARTINVOICE_REDIS_ADDR",
	"redis.password":                    "SMARTINVOICE_REDIS_PASSWORD",
	"redis.db":                          "SMARTINVOICE_REDIS_DB",
	"redis.key_prefix":                  "SMARTINVOICE_REDIS_KEY_PREFIX",
	"redis.lock_ttl":                    "SMARTINVOICE_REDIS_LOCK_TTL",
	"s3.enabled":                        "SMARTINVOICE_S3_ENABLED",
	"s3.region":                         "SMARTINVOICE_S3_REGION",
	"s3.bucket":                         "SMARTINVOICE_S3_BUCKET",
	"s3.endpoint":                       "SMARTINVOICE_S3_ENDPOINT",
	"s3.access_key":                     "SMARTINVOICE_S3_ACCESS_KEY",
	"s3.secret_key":                     "SMARTINVOICE_S3_SECRET_KEY",
	"s3.key_prefix":                     "SMARTINVOICE_S3_KEY_PREFIX",
	"s3.presign_expiry":                 "SMARTINVOICE_S3_PRESIGN_EXPIRY",
	"smart_fill.provider":               "SMARTINVOICE_SMART_FILL_PROVIDER",
	"smart_fill.api_key":                "SMARTINVOICE_SMART_FILL_API_KEY",
	"smart_fill.default_model":          "SMARTINVOICE_SMART_FILL_DEFAULT_MODEL",
	"smart_fill.max_retries":            "SMARTINVOICE_SMART_FILL_MAX_RETRIES",
	"smart_fill.timeout_secs":           "SMARTINVOICE_SMART_FILL_TIMEOUT_SECS",
	"smart_fill.primary.provider":       "SMARTINVOICE_SMART_FILL_PRIMARY_PROVIDER",
	"smart_fill.primary.api_key":        "SMARTINVOICE_SMART_FILL_PRIMARY_API_KEY",
	"smart_fill.primary.default_model":  "SMARTINVOICE_SMART_FILL_PRIMARY_DEFAULT_MODEL",
	"smart_fill.primary.max_retries":    "SMARTINVOICE_SMART_FILL_PRIMARY_MAX_RETRIES",
	"smart_fill.primary.timeout_secs":   "SMARTINVOICE_SMART_FILL_PRIMARY_TIMEOUT_SECS",
	"smart_fill.secondary.provider":     "SMARTINVOICE_SMART_FILL_SECONDARY_PROVIDER",
	"smart_fill.secondary.api_key":      "SMARTINVOICE_SMART_FILL_SECONDARY_API_KEY",
	"smart_fill.secondary.default_model": "SMARTINVOICE_SMART_FILL_SECONDARY_DEFAULT_MODEL",
	"smart_fill.secondary.max_retries":  "SMARTINVOICE_SMART_FILL_SECONDARY_MAX_RETRIES",
	"smart_fill.secondary.timeout_secs": "SMARTINVOICE_SMART_FILL_SECONDARY_TIMEOUT_SECS",
	"smart_fill.tertiary.provider":      "SMARTINVOICE_SMART_FILL_TERTIARY_PROVIDER",
	"smart_fill.tertiary.api_key":       "SMARTINVOICE_SMART_FILL_TERTIARY_API_KEY",
	"smart_fill.tertiary.default_model": "SMARTINVOICE_SMART_FILL_TERTIARY_DEFAULT_MODEL",
	"smart_fill.tertiary.max_retries":   "SMARTINVOICE_SMART_FILL_TERTIARY_MAX_RETRIES",
	"smart_fill.tertiary.timeout_secs":  "SMARTINVOICE_SMART_FILL_TERTIARY_TIMEOUT_SECS",
	"numbering.prefix":                  "SMARTINVOICE_NUMBERING_PREFIX",
	"numbering.start":                   "SMARTINVOICE_NUMBERING_START",
	"numbering.width":                   "SMARTINVOICE_NUMBERING_WIDTH",
	"seller.name":                       "SMARTINVOICE_SELLER_NAME",
	"seller.email":                      "SMARTINVOICE_SELLER_EMAIL",
	"seller.address":                    "SMARTINVOICE_SELLER_ADDRESS",
	"seller.gstin":                      "SMARTINVOICE_SELLER_GSTIN",
	"seller.pan":                        "SMARTINVOICE_SELLER_PAN",
	"seller.cin":                        "SMARTINVOICE_SELLER_CIN",
	"seller.state_code":                 "SMARTINVOICE_SELLER_STATE_CODE",
	"seller.tax_rate":                   "SMARTINVOICE_SELLER_TAX_RATE",
	"drafts.idle_ttl":                   "SMARTINVOICE_DRAFTS_IDLE_TTL",
	"drafts.max":                        "SMARTINVOICE_DRAFTS_MAX",
	"cors.allowed_origins":              "SMARTINVOICE_CORS_ALLOWED_ORIGINS",
}

// Load reads configuration from environment variables with the SMARTINVOICE_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if SMARTINVOICE_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("SMARTINVOICE_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.Store = StoreConfig{
		Driver: domain.StoreDriver(strings.ToLower(v.GetString("store.driver"))),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.Redis = RedisConfig{
		Addr:      v.GetString("redis.addr"),
		Password:  v.GetString("redis.password"),
		DB:        v.GetInt("redis.db"),
		KeyPrefix: v.GetString("redis.key_prefix"),
		LockTTL:   v.GetDuration("redis.lock_ttl"),
	}
	cfg.S3 = S3Config{
		Enabled:       v.GetBool("s3.enabled"),
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		KeyPrefix:     v.GetString("s3.key_prefix"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.SmartFill = SmartFillConfig{
		Provider:     v.GetString("smart_fill.provider"),
		APIKey:       v.GetString("smart_fill.api_key"),
		DefaultModel: v.GetString("smart_fill.default_model"),
		MaxRetries:   v.GetInt("smart_fill.max_retries"),
		TimeoutSecs:  v.GetInt("smart_fill.timeout_secs"),
		Primary:      providerConfig(v, "smart_fill.primary"),
		Secondary:    providerConfig(v, "smart_fill.secondary"),
		Tertiary:     providerConfig(v, "smart_fill.tertiary"),
	}
	cfg.Numbering = NumberingConfig{
		Prefix: strings.ToUpper(v.GetString("numbering.prefix")),
		Start:  v.GetInt("numbering.start"),
		Width:  v.GetInt("numbering.width"),
	}
	cfg.Seller = SellerConfig{
		Name:      v.GetString("seller.name"),
		Email:     v.GetString("seller.email"),
		Address:   v.GetString("seller.address"),
		GSTIN:     v.GetString("seller.gstin"),
		PAN:       v.GetString("seller.pan"),
		CIN:       v.GetString("seller.cin"),
		StateCode: v.GetString("seller.state_code"),
		TaxRate:   v.GetFloat64("seller.tax_rate"),
	}
	cfg.Drafts = DraftsConfig{
		IdleTTL: v.GetDuration("drafts.idle_ttl"),
		Max:     v.GetInt("drafts.max"),
	}

	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{AllowedOrigins: corsOrigins}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.environment", "development")

	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	v.SetDefault("store.driver", string(domain.StoreMemory))

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "smartinvoice")
	v.SetDefault("db.password", "smartinvoice_secret")
	v.SetDefault("db.name", "smartinvoice_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 10)
	v.SetDefault("db.max_idle", 5)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.key_prefix", "smartinvoice_")
	v.SetDefault("redis.lock_ttl", "5s")

	v.SetDefault("s3.enabled", false)
	v.SetDefault("s3.region", "ap-south-1")
	v.SetDefault("s3.bucket", "smartinvoice-pdfs")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.key_prefix", "invoices/")
	v.SetDefault("s3.presign_expiry", 3600)

	v.SetDefault("smart_fill.provider", "gemini")
	v.SetDefault("smart_fill.api_key", "")
	v.SetDefault("smart_fill.default_model", "gemini-2.0-flash")
	v.SetDefault("smart_fill.max_retries", 1)
	v.SetDefault("smart_fill.timeout_secs", 30)
	for _, slot := range []string{"primary", "secondary", "tertiary"} {
		v.SetDefault("smart_fill."+slot+".provider", "")
		v.SetDefault("smart_fill."+slot+".api_key", "")
		v.SetDefault("smart_fill."+slot+".default_model", "")
		v.SetDefault("smart_fill."+slot+".max_retries", 1)
		v.SetDefault("smart_fill."+slot+".timeout_secs", 30)
	}

	v.SetDefault("numbering.prefix", "INDY")
	v.SetDefault("numbering.start", 187)
	v.SetDefault("numbering.width", 4)

	v.SetDefault("seller.name", "Incanto Dynamics Pvt. Ltd.")
	v.SetDefault("seller.email", "enquiry@digitalmaven.co.in")
	v.SetDefault("seller.address", "No.373, 2nd Stage, 2nd Phase,\nWOC Road Rajajinagar\nBengaluru - 560 086.")
	v.SetDefault("seller.gstin", "29AAHCI4821K1Z9")
	v.SetDefault("seller.pan", "AAHCI4821K")
	v.SetDefault("seller.cin", "U62099KA2024PTC183531")
	v.SetDefault("seller.state_code", "29")
	v.SetDefault("seller.tax_rate", 18)

	v.SetDefault("drafts.idle_ttl", "24h")
	v.SetDefault("drafts.max", 1000)

	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000,http://localhost:5173")
}

func providerConfig(v *viper.Viper, prefix string) SmartFillProviderConfig {
	return SmartFillProviderConfig{
		Provider:     v.GetString(prefix + ".provider"),
		APIKey:       v.GetString(prefix + ".api_key"),
		DefaultModel: v.GetString(prefix + ".default_model"),
		MaxRetries:   v.GetInt(prefix + ".max_retries"),
		TimeoutSecs:  v.GetInt(prefix + ".timeout_secs"),
	}
}

func (c *Config) validate() error {
	switch c.Store.Driver {
	case domain.StoreMemory, domain.StoreRedis, domain.StorePostgres:
	default:
		return fmt.Errorf("config: unknown store driver %q", c.Store.Driver)
	}
	if len(c.Numbering.Prefix) != 4 {
		return fmt.Errorf("config: numbering prefix %q must be 4 letters", c.Numbering.Prefix)
	}
	for _, r := range c.Numbering.Prefix {
		if r < 'A' || r > 'Z' {
			return fmt.Errorf("config: numbering prefix %q must be 4 letters", c.Numbering.Prefix)
		}
	}
	if c.Numbering.Width < 1 {
		return fmt.Errorf("config: numbering width must be positive, got %d", c.Numbering.Width)
	}
	if c.Numbering.Start < 0 {
		return fmt.Errorf("config: numbering start must not be negative, got %d", c.Numbering.Start)
	}
	return nil
}
