package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// DevJWTSecret is the signing key used when JWT_SECRET is unset. It is
// rejected outside development.
const DevJWTSecret = "dev-secret-key-change-in-production"

type Config struct {
	Port           string   `env:"PORT,            default=5000"`
	Env            string   `env:"ENV,             default=development"`
	LogLevel       string   `env:"LOG_LEVEL,       default=info"`
	LogPretty      bool     `env:"LOG_PRETTY,      default=false"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS, default=*"`
	SwaggerEnabled bool     `env:"SWAGGER_ENABLED, default=true"`
	MaxPageSize    int      `env:"MAX_PAGE_SIZE,   default=100"`

	Auth      AuthConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Files     FilesConfig
	RateLimit RateLimitConfig
}

type AuthConfig struct {
	JWTSecret  string        `env:"JWT_SECRET,           default=dev-secret-key-change-in-production"`
	AccessTTL  time.Duration `env:"ACCESS_TOKEN_EXPIRE,  default=30m"`
	RefreshTTL time.Duration `env:"REFRESH_TOKEN_EXPIRE, default=168h"`
}

type DatabaseConfig struct {
	Disabled     bool   `env:"DISABLE_DATABASE, default=false"`
	SeedFixtures bool   `env:"SEED_FIXTURES,    default=false"`
	MongoURI     string `env:"MONGO_URI,        default=mongodb://localhost:27017"`
	MongoDB      string `env:"MONGO_DB,         default=fpa-analysis"`
}

type RedisConfig struct {
	Disabled bool          `env:"DISABLE_REDIS,  default=true"`
	Addr     string        `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB,       default=0"`
	CacheTTL time.Duration `env:"CACHE_TTL,      default=1h"`
}

type FilesConfig struct {
	MaxSize      int64    `env:"MAX_FILE_SIZE,      default=52428800"`
	AllowedTypes []string `env:"ALLOWED_FILE_TYPES, default=application/pdf,application/vnd.openxmlformats-officedocument.spreadsheetml.sheet,application/vnd.ms-excel,text/csv"`
	Backend      string   `env:"STORAGE_BACKEND,    default=local"`
	UploadDir    string   `env:"UPLOAD_DIR,         default=uploads"`

	MinioEndpoint  string `env:"MINIO_ENDPOINT,   default=localhost:9000"`
	MinioRegion    string `env:"MINIO_REGION,     default=us-east-1"`
	MinioBucket    string `env:"MINIO_BUCKET,     default=fpa-files"`
	MinioAccessKey string `env:"MINIO_ACCESS_KEY"`
	MinioSecretKey string `env:"MINIO_SECRET_KEY"`
	MinioUseSSL    bool   `env:"MINIO_USE_SSL,    default=false"`
}

// RateLimitConfig holds per-minute budgets for the public auth endpoints.
type RateLimitConfig struct {
	Register int `env:"RATE_LIMIT_REGISTER, default=5"`
	Login    int `env:"RATE_LIMIT_LOGIN,    default=10"`
	Refresh  int `env:"RATE_LIMIT_REFRESH,  default=20"`
	Burst    int `env:"RATE_LIMIT_BURST,    default=0"`
}

// Load reads an optional .env file and then processes the environment into a
// Config. Variables already set in the environment win over .env entries.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: read .env: %w", err)
	}
	return load(envconfig.OsLookuper())
}

func load(lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(context.Background(), &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Env == "production" && c.Auth.JWTSecret == DevJWTSecret {
		return errors.New("config: JWT_SECRET must be set in production")
	}
	switch c.Files.Backend {
	case "local", "minio":
	default:
		return fmt.Errorf("config: STORAGE_BACKEND must be local or minio, got %q", c.Files.Backend)
	}
	if c.MaxPageSize < 1 {
		return fmt.Errorf("config: MAX_PAGE_SIZE must be positive, got %d", c.MaxPageSize)
	}
	for name, n := range map[string]int{
		"RATE_LIMIT_REGISTER": c.RateLimit.Register,
		"RATE_LIMIT_LOGIN":    c.RateLimit.Login,
		"RATE_LIMIT_REFRESH":  c.RateLimit.Refresh,
	} {
		if n < 1 {
			return fmt.Errorf("config: %s must be positive, got %d", name, n)
		}
	}
	if c.RateLimit.Burst < 0 {
		return fmt.Errorf("config: RATE_LIMIT_BURST must not be negative, got %d", c.RateLimit.Burst)
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}
