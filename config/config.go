package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"macrolog/models"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type DBConfig struct {
	Host     string `env:"DB_HOST,default=localhost"`
	User     string `env:"DB_USER,default=postgres"`
	Password string `env:"DB_PASSWORD"`
	Name     string `env:"DB_NAME,default=macrolog"`
	Port     string `env:"DB_PORT,default=5432"`
	SSLMode  string `env:"DB_SSLMODE,default=disable"`
}

func (c DBConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode)
}

type AuthConfig struct {
	JWTSecret     string        `env:"JWT_SECRET,required"`
	Issuer        string        `env:"JWT_ISSUER"`
	RedirectURL   string        `env:"AUTH_REDIRECT_URL,default=/auth"`
	RedirectAfter time.Duration `env:"AUTH_REDIRECT_AFTER,default=3s"`
	DevTokens     bool          `env:"DEV_TOKENS,default=false"` // exposes POST /dev/token
}

type AIConfig struct {
	Provider       string `env:"AI_PROVIDER,default=gateway"` // gateway | bedrock
	GatewayURL     string `env:"AI_GATEWAY_URL,default=https://ai.gateway.lovable.dev/v1/chat/completions"`
	APIKey         string `env:"AI_API_KEY"`
	Model          string `env:"AI_MODEL,default=google/gemini-2.5-flash"`
	BedrockModelID string `env:"BEDROCK_MODEL_ID"`
	AWSRegion      string `env:"AWS_REGION,default=us-east-1"`
}

type LookupConfig struct {
	USDAAPIKey       string        `env:"USDA_API_KEY,default=DEMO_KEY"`
	USDABaseURL      string        `env:"USDA_BASE_URL,default=https://api.nal.usda.gov/fdc/v1"`
	OFFBaseURL       string        `env:"OFF_BASE_URL,default=https://world.openfoodfacts.org"`
	Timeout          time.Duration `env:"LOOKUP_TIMEOUT,default=2s"`
	AverageEstimates bool          `env:"AVERAGE_ESTIMATES,default=true"`
	BarcodeCacheTTL  time.Duration `env:"BARCODE_CACHE_TTL,default=24h"`
}

type ExportConfig struct {
	S3Bucket  string `env:"S3_BUCKET"`
	S3Region  string `env:"S3_REGION"`
	PublicURL string `env:"EXPORT_PUBLIC_URL"`
}

type Config struct {
	Port     string `env:"PORT,default=8080"`
	Timezone string `env:"TIMEZONE,default=America/New_York"`
	LogLevel string `env:"LOG_LEVEL,default=info"`

	DB     DBConfig
	Auth   AuthConfig
	AI     AIConfig
	Lookup LookupConfig
	Export ExportConfig
}

// Load reads an optional .env file and decodes the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decoding environment: %w", err)
	}
	return &cfg, nil
}

// Location is the zone "today" is computed in. Unknown zones fall back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		slog.Warn("unknown TIMEZONE, using UTC", "timezone", c.Timezone, "error", err)
		return time.UTC
	}
	return loc
}

func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// NewLogger builds the process JSON logger.
func NewLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}

// InitDB connects to postgres and migrates every table.
func InitDB(c DBConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(c.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Meal{},
		&models.ConfirmedFood{},
		&models.Recipe{},
		&models.DailyStats{},
		&models.UserSettings{},
		&models.ExcludedFood{},
		&models.IngredientOnHand{},
	)
	if err != nil {
		return fmt.Errorf("AutoMigrate failed: %w", err)
	}
	return nil
}
