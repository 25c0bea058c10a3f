package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/privatinsolvenz/lead-dashboard/internal/secrets"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Database drivers
const (
	DriverMongoDB  = "mongodb"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Operational log drivers
const (
	OplogDriverMemory = "memory"
	OplogDriverRedis  = "redis"
)

// Config holds all application configuration
type Config struct {
	App         AppConfig
	Database    DatabaseConfig
	MongoDB     MongoDBConfig
	ClickUp     ClickUpConfig
	Integration IntegrationConfig
	Auth        AuthConfig
	Session     SessionConfig
	ApiKey      ApiKeyConfig
	Oplog       OplogConfig
	Redis       RedisConfig
	Sync        SyncConfig
	Secrets     SecretsConfig
	Logging     LoggingConfig
	Server      ServerConfig
	CORS        CORSConfig
	Security    SecurityConfig
	RateLimit   RateLimitConfig
}

type AppConfig struct {
	Name        string
	Environment string
	Port        int
}

type DatabaseConfig struct {
	// Driver selects the record store: mongodb, postgres or sqlite
	Driver          string
	Host            string
	Port            int
	Name            string
	User            string
	Password        string
	SSLMode         string
	SQLitePath      string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
	// ConnectRetries is the number of connection attempts at startup
	ConnectRetries int
	// ConnectRetryDelay is the pause between attempts (seconds)
	ConnectRetryDelay int
}

type MongoDBConfig struct {
	URI      string
	Database string
	Timeout  int // seconds
}

type ClickUpConfig struct {
	APIKey       string
	BaseURL      string
	ListID       string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Timeout      int // seconds
}

// IntegrationConfig holds the automation platform webhook targets
type IntegrationConfig struct {
	MakeWebhookURL string
	N8nWebhookURL  string
	Timeout        int // seconds
}

type AuthConfig struct {
	// Enabled requires an API key or session token on dashboard routes
	Enabled bool
	// StateTTL bounds the OAuth round trip (seconds)
	StateTTL int
}

type SessionConfig struct {
	Secret string
	TTL    int // seconds
}

type ApiKeyConfig struct {
	Value string // Loaded from secrets or environment
}

type OplogConfig struct {
	// Driver is memory or redis
	Driver   string
	Key      string
	Capacity int
}

type RedisConfig struct {
	URL string
}

type SyncConfig struct {
	// Schedule is a cron expression with seconds. Empty disables the job.
	Schedule string
	Timeout  int // seconds
}

type SecretsConfig struct {
	KeyVaultName string
	CacheEnabled bool
	CacheTTL     int // seconds
}

type LoggingConfig struct {
	Level  string
	Format string
}

type ServerConfig struct {
	ReadTimeout    int
	WriteTimeout   int
	RequestTimeout int
	EnableSwagger  bool
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	// AllowedOrigins is a list of allowed origins for CORS requests.
	// "*" allows all origins.
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

// SecurityConfig holds security header configuration
type SecurityConfig struct {
	EnableHSTS            bool
	HSTSMaxAge            int
	HSTSIncludeSubdomains bool
	HSTSPreload           bool
	ContentSecurityPolicy string
	FrameOptions          string
	ContentTypeNosniff    bool
	ReferrerPolicy        string
	PermissionsPolicy     string
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled bool
	// RequestsPerMinute is the limit for dashboard routes (per IP)
	RequestsPerMinute int
	// WebhookRequestsPerMinute is the limit for the public webhook routes (per IP)
	WebhookRequestsPerMinute int
	WhitelistIPs             []string
	WhitelistPaths           []string
}

// ConnectionString builds PostgreSQL connection string
func (d *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

// ConnMaxLifetimeDuration returns connection max lifetime as duration
func (d *DatabaseConfig) ConnMaxLifetimeDuration() time.Duration {
	return time.Duration(d.ConnMaxLifetime) * time.Second
}

// ConnectRetryDelayDuration returns the delay between connection attempts
func (d *DatabaseConfig) ConnectRetryDelayDuration() time.Duration {
	return time.Duration(d.ConnectRetryDelay) * time.Second
}

func (m *MongoDBConfig) TimeoutDuration() time.Duration {
	return time.Duration(m.Timeout) * time.Second
}

func (c *ClickUpConfig) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

func (i *IntegrationConfig) TimeoutDuration() time.Duration {
	return time.Duration(i.Timeout) * time.Second
}

func (a *AuthConfig) StateTTLDuration() time.Duration {
	return time.Duration(a.StateTTL) * time.Second
}

func (s *SessionConfig) TTLDuration() time.Duration {
	return time.Duration(s.TTL) * time.Second
}

func (s *SyncConfig) TimeoutDuration() time.Duration {
	return time.Duration(s.Timeout) * time.Second
}

// ReadTimeoutDuration returns read timeout as duration
func (s *ServerConfig) ReadTimeoutDuration() time.Duration {
	return time.Duration(s.ReadTimeout) * time.Second
}

// WriteTimeoutDuration returns write timeout as duration
func (s *ServerConfig) WriteTimeoutDuration() time.Duration {
	return time.Duration(s.WriteTimeout) * time.Second
}

// RequestTimeoutDuration returns request timeout as duration
func (s *ServerConfig) RequestTimeoutDuration() time.Duration {
	return time.Duration(s.RequestTimeout) * time.Second
}

// Load loads configuration from file and environment variables.
// Secrets are read from the environment only; use LoadWithSecrets for the vault.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Environment variables override config file
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.ApiKey.Value == "" {
		cfg.ApiKey.Value = v.GetString("ADMIN_API_KEY")
	}
	if cfg.Secrets.KeyVaultName == "" {
		cfg.Secrets.KeyVaultName = v.GetString("AZURE_KEY_VAULT_NAME")
	}

	cfg.Database.Driver = strings.ToLower(cfg.Database.Driver)
	cfg.Oplog.Driver = strings.ToLower(cfg.Oplog.Driver)

	return &cfg, nil
}

// LoadWithSecrets loads configuration and resolves secrets from Azure Key Vault
// when USE_AZURE_KEY_VAULT=true and the environment is staging or production.
// Otherwise secrets come from the environment.
func LoadWithSecrets(ctx context.Context, logger *zap.Logger) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	useKeyVault := strings.ToLower(os.Getenv("USE_AZURE_KEY_VAULT")) == "true"
	isValidEnv := cfg.App.Environment == "staging" || cfg.App.Environment == "production"

	if !useKeyVault {
		logger.Info("USE_AZURE_KEY_VAULT not enabled, using environment variables for secrets",
			zap.String("environment", cfg.App.Environment),
		)
		return cfg, nil
	}

	if !isValidEnv {
		logger.Warn("USE_AZURE_KEY_VAULT is enabled but environment is not staging or production, using environment variables for secrets",
			zap.String("environment", cfg.App.Environment),
		)
		return cfg, nil
	}

	if cfg.Secrets.KeyVaultName == "" {
		return nil, fmt.Errorf("AZURE_KEY_VAULT_NAME is required when USE_AZURE_KEY_VAULT=true")
	}

	logger.Info("Azure Key Vault enabled for secrets",
		zap.String("environment", cfg.App.Environment),
		zap.String("key_vault_name", cfg.Secrets.KeyVaultName),
	)

	provider, err := secrets.NewProvider(&secrets.ProviderConfig{
		Source:       secrets.SourceVault,
		VaultName:    cfg.Secrets.KeyVaultName,
		Environment:  cfg.App.Environment,
		CacheEnabled: cfg.Secrets.CacheEnabled,
		CacheTTL:     time.Duration(cfg.Secrets.CacheTTL) * time.Second,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize secrets provider (USE_AZURE_KEY_VAULT=true requires valid vault): %w", err)
	}

	resolveSecrets(ctx, provider, cfg)

	logger.Info("Secrets loaded from vault successfully")
	return cfg, nil
}

// SecretSource resolves a secret by vault name with an environment override
type SecretSource interface {
	GetSecretOrEnv(ctx context.Context, secretName, envName string) (string, error)
}

type secretBinding struct {
	secret string
	env    string
	target *string
}

// secretBindings maps vault secret names and their environment overrides to config fields
func secretBindings(cfg *Config) []secretBinding {
	return []secretBinding{
		{"clickup-api-key", "CLICKUP_APIKEY", &cfg.ClickUp.APIKey},
		{"clickup-client-id", "CLICKUP_CLIENTID", &cfg.ClickUp.ClientID},
		{"clickup-client-secret", "CLICKUP_CLIENTSECRET", &cfg.ClickUp.ClientSecret},
		{"mongodb-uri", "MONGODB_URI", &cfg.MongoDB.URI},
		{"POSTGRES-MAIN-HOST", "DATABASE_HOST", &cfg.Database.Host},
		{"POSTGRES-MAIN-USER", "DATABASE_USER", &cfg.Database.User},
		{"POSTGRES-MAIN-PASSWORD", "DATABASE_PASSWORD", &cfg.Database.Password},
		{"redis-url", "REDIS_URL", &cfg.Redis.URL},
		{"session-secret", "SESSION_SECRET", &cfg.Session.Secret},
		{"admin-api-key", "ADMIN_API_KEY", &cfg.ApiKey.Value},
		{"make-webhook-url", "INTEGRATION_MAKEWEBHOOKURL", &cfg.Integration.MakeWebhookURL},
		{"n8n-webhook-url", "INTEGRATION_N8NWEBHOOKURL", &cfg.Integration.N8nWebhookURL},
	}
}

// resolveSecrets overwrites every bound field the source can resolve. Missing
// secrets keep the value loaded from the environment.
func resolveSecrets(ctx context.Context, source SecretSource, cfg *Config) {
	for _, b := range secretBindings(cfg) {
		if value, err := source.GetSecretOrEnv(ctx, b.secret, b.env); err == nil && value != "" {
			*b.target = value
		}
	}
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "Lead Dashboard API")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.port", 8080)

	// Database defaults
	v.SetDefault("database.driver", DriverMongoDB)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "leads")
	v.SetDefault("database.user", "leads_user")
	v.SetDefault("database.password", "")
	v.SetDefault("database.sslMode", "disable")
	v.SetDefault("database.sqlitePath", "leads.db")
	v.SetDefault("database.maxOpenConns", 25)
	v.SetDefault("database.maxIdleConns", 5)
	v.SetDefault("database.connMaxLifetime", 300)
	v.SetDefault("database.connectRetries", 5)
	v.SetDefault("database.connectRetryDelay", 5)

	// MongoDB defaults
	v.SetDefault("mongodb.uri", "mongodb://localhost:27017")
	v.SetDefault("mongodb.database", "privatinsolvenz")
	v.SetDefault("mongodb.timeout", 10)

	// ClickUp defaults. Credentials have no default and must come from the
	// environment or the vault.
	v.SetDefault("clickup.apiKey", "")
	v.SetDefault("clickup.baseURL", "https://api.clickup.com/api/v2")
	v.SetDefault("clickup.listID", "")
	v.SetDefault("clickup.clientID", "")
	v.SetDefault("clickup.clientSecret", "")
	v.SetDefault("clickup.redirectURL", "")
	v.SetDefault("clickup.timeout", 10)

	// Automation platform defaults
	v.SetDefault("integration.makeWebhookURL", "")
	v.SetDefault("integration.n8nWebhookURL", "")
	v.SetDefault("integration.timeout", 10)

	// Auth defaults
	v.SetDefault("auth.enabled", true)
	v.SetDefault("auth.stateTTL", 600)
	v.SetDefault("session.secret", "")
	v.SetDefault("session.ttl", 86400)

	// Operational log defaults
	v.SetDefault("oplog.driver", OplogDriverMemory)
	v.SetDefault("oplog.key", "lead-dashboard:oplog")
	v.SetDefault("oplog.capacity", 100)
	v.SetDefault("redis.url", "redis://localhost:6379/0")

	// Sync job defaults (disabled)
	v.SetDefault("sync.schedule", "")
	v.SetDefault("sync.timeout", 15)

	// Secrets defaults
	v.SetDefault("secrets.cacheEnabled", true)
	v.SetDefault("secrets.cacheTTL", 300)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	// Server defaults
	v.SetDefault("server.readTimeout", 30)
	v.SetDefault("server.writeTimeout", 30)
	v.SetDefault("server.requestTimeout", 60)
	v.SetDefault("server.enableSwagger", true)

	// CORS defaults - restrictive by default
	v.SetDefault("cors.allowedOrigins", []string{})
	v.SetDefault("cors.allowedMethods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowedHeaders", []string{"Accept", "Authorization", "Content-Type", "X-API-Key", "X-Request-ID"})
	v.SetDefault("cors.exposedHeaders", []string{"Location", "X-Request-ID"})
	v.SetDefault("cors.allowCredentials", true)
	v.SetDefault("cors.maxAge", 300)

	// Security header defaults
	v.SetDefault("security.enableHSTS", false)
	v.SetDefault("security.hstsMaxAge", 31536000)
	v.SetDefault("security.hstsIncludeSubdomains", true)
	v.SetDefault("security.hstsPreload", false)
	v.SetDefault("security.contentSecurityPolicy", "default-src 'self'")
	v.SetDefault("security.frameOptions", "DENY")
	v.SetDefault("security.contentTypeNosniff", true)
	v.SetDefault("security.referrerPolicy", "strict-origin-when-cross-origin")
	v.SetDefault("security.permissionsPolicy", "geolocation=(), microphone=(), camera=()")

	// Rate limiting defaults
	v.SetDefault("rateLimit.enabled", true)
	v.SetDefault("rateLimit.requestsPerMinute", 120)
	v.SetDefault("rateLimit.webhookRequestsPerMinute", 300)
	v.SetDefault("rateLimit.whitelistIPs", []string{"127.0.0.1", "::1"})
	v.SetDefault("rateLimit.whitelistPaths", []string{"/health", "/health/ready"})
}
