package api

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"go.temporal.io/sdk/client"

	platformobservability "github.com/Apurer/pet-adoption-api/internal/platform/observability"
)

// Storage backends selectable through STORAGE_BACKEND.
const (
	BackendAuto     = "auto"
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendDynamoDB = "dynamodb"
)

const localJWTSecret = "dev-secret-change-me"

// Config carries environment-driven settings shared by the API, worker and jobs.
type Config struct {
	Environment    string `env:"ENVIRONMENT,default=local"`
	Port           string `env:"PORT,default=8080"`
	StorageBackend string `env:"STORAGE_BACKEND,default=auto"`
	PostgresDSN    string `env:"POSTGRES_DSN"`
	DynamoEndpoint string `env:"DYNAMODB_ENDPOINT"`
	AWSRegion      string `env:"AWS_REGION,default=us-east-1"`
	RedisAddr      string `env:"REDIS_ADDR"`

	JWTSecret string        `env:"JWT_SECRET"`
	JWTTTL    time.Duration `env:"JWT_TTL,default=24h"`

	AIServiceURL  string        `env:"AI_SERVICE_URL,default=http://localhost:5000"`
	ScorerTimeout time.Duration `env:"SCORER_TIMEOUT,default=3s"`
	FallbackScore float64       `env:"FALLBACK_SCORE,default=75"`

	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS,default=5"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST,default=10"`

	TemporalAddress   string `env:"TEMPORAL_ADDRESS"`
	TemporalNamespace string `env:"TEMPORAL_NAMESPACE"`
	TemporalDisabled  bool   `env:"TEMPORAL_DISABLED"`

	ReconcileSchedule string `env:"RECONCILE_SCHEDULE,default=@every 5m"`

	LogLevel     string `env:"LOG_LEVEL,default=info"`
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTLPInsecure bool   `env:"OTEL_EXPORTER_OTLP_INSECURE,default=true"`
}

// LoadConfig reads an optional .env file and the process environment, applies
// defaults, and validates the result.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return Config{}, fmt.Errorf("decode environment: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) normalize() {
	c.StorageBackend = strings.ToLower(strings.TrimSpace(c.StorageBackend))
	c.PostgresDSN = strings.TrimSpace(c.PostgresDSN)
	c.RedisAddr = strings.TrimSpace(c.RedisAddr)
	if c.TemporalAddress == "" {
		c.TemporalAddress = client.DefaultHostPort
	}
	if c.TemporalNamespace == "" {
		c.TemporalNamespace = client.DefaultNamespace
	}
	if c.JWTSecret == "" && c.IsLocal() {
		c.JWTSecret = localJWTSecret
	}
}

// IsLocal reports whether the process runs in a developer environment.
func (c Config) IsLocal() bool {
	return c.Environment == "" || strings.EqualFold(c.Environment, "local")
}

// Backend resolves auto to postgres when a DSN is configured, memory otherwise.
func (c Config) Backend() string {
	if c.StorageBackend == BackendAuto || c.StorageBackend == "" {
		if c.PostgresDSN != "" {
			return BackendPostgres
		}
		return BackendMemory
	}
	return c.StorageBackend
}

// Telemetry describes this deployment to the observability layer.
func (c Config) Telemetry(serviceName string) platformobservability.Settings {
	workflows := "temporal"
	if c.TemporalDisabled {
		workflows = "inline"
	}
	return platformobservability.Settings{
		ServiceName:    serviceName,
		Environment:    c.Environment,
		StorageBackend: c.Backend(),
		Workflows:      workflows,
		LogLevel:       c.LogLevel,
		OTLPEndpoint:   c.OTLPEndpoint,
		OTLPInsecure:   c.OTLPInsecure,
	}
}

// Validate checks the constraints LoadConfig enforces.
func (c Config) Validate() error {
	var errs []error
	switch c.StorageBackend {
	case BackendAuto, BackendMemory, BackendPostgres, BackendDynamoDB:
	default:
		errs = append(errs, fmt.Errorf("STORAGE_BACKEND must be one of auto, memory, postgres, dynamodb (got %q)", c.StorageBackend))
	}
	if c.StorageBackend == BackendPostgres && c.PostgresDSN == "" {
		errs = append(errs, errors.New("POSTGRES_DSN is required when STORAGE_BACKEND=postgres"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required outside ENVIRONMENT=local"))
	}
	if c.JWTTTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL must be positive"))
	}
	if c.ScorerTimeout <= 0 {
		errs = append(errs, errors.New("SCORER_TIMEOUT must be positive"))
	}
	if c.FallbackScore < 0 || c.FallbackScore > 100 {
		errs = append(errs, errors.New("FALLBACK_SCORE must be between 0 and 100"))
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive"))
	}
	return errors.Join(errs...)
}
