package config

import (
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/SscSPs/investment_bot/internal/core/domain"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

const defaultJWTSecret = "a-very-secret-key-should-be-longer-and-random"

// Storage drivers.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

var botTokenPattern = regexp.MustCompile(`^\d+:[A-Za-z0-9_-]{20,}$`)

// Config holds application configuration.
type Config struct {
	DatabaseURL         string
	Port                string
	IsProduction        bool
	StorageDriver       string
	DBConnectMaxElapsed time.Duration

	JWTSecret         string
	JWTExpiryDuration time.Duration
	JWTIssuer         string
	RateLimit         string
	CORSOrigins       []string

	UserBotToken  string
	AdminBotToken string
	AdminChatIDs  []int64

	ROIPercentage       decimal.Decimal
	ROICyclesRequired   int
	ROIInterval         time.Duration
	ROISweepInterval    time.Duration
	ROISweepConcurrency int
	OperationTimeout    time.Duration

	RedisURL   string
	SessionTTL time.Duration

	PosthogAPIKey   string
	PosthogEndpoint string

	BTCAddress       string
	USDTTRC20Address string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()
	return load(viper.New())
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("STORAGE_DRIVER", StoragePostgres)
	v.SetDefault("DB_CONNECT_MAX_ELAPSED", "1m")
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("JWT_EXPIRY_DURATION", "1h")
	v.SetDefault("JWT_ISSUER", "investment-bot")
	v.SetDefault("RATE_LIMIT", "60-M")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "")
	v.SetDefault("USER_BOT_TOKEN", "")
	v.SetDefault("ADMIN_BOT_TOKEN", "")
	v.SetDefault("ADMIN_CHAT_ID", "")
	v.SetDefault("ROI_PERCENTAGE", "8")
	v.SetDefault("ROI_CYCLES_REQUIRED", 4)
	v.SetDefault("ROI_INTERVAL_DAYS", 7)
	v.SetDefault("ROI_SWEEP_INTERVAL", "24h")
	v.SetDefault("ROI_SWEEP_CONCURRENCY", 1)
	v.SetDefault("OPERATION_TIMEOUT", "10s")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("SESSION_TTL", "15m")
	v.SetDefault("POSTHOG_API_KEY", "")
	v.SetDefault("POSTHOG_ENDPOINT", "https://eu.i.posthog.com")
	v.SetDefault("BTC_ADDRESS", "")
	v.SetDefault("USDT_TRC20_ADDRESS", "")
}

func load(v *viper.Viper) (*Config, error) {
	setDefaults(v)
	v.AutomaticEnv()

	cfg := &Config{
		DatabaseURL:         v.GetString("PGSQL_URL"),
		Port:                v.GetString("PORT"),
		IsProduction:        v.GetBool("IS_PRODUCTION"),
		StorageDriver:       strings.ToLower(v.GetString("STORAGE_DRIVER")),
		DBConnectMaxElapsed: v.GetDuration("DB_CONNECT_MAX_ELAPSED"),
		JWTSecret:           v.GetString("JWT_SECRET"),
		JWTIssuer:           v.GetString("JWT_ISSUER"),
		RateLimit:           v.GetString("RATE_LIMIT"),
		UserBotToken:        v.GetString("USER_BOT_TOKEN"),
		AdminBotToken:       v.GetString("ADMIN_BOT_TOKEN"),
		ROICyclesRequired:   v.GetInt("ROI_CYCLES_REQUIRED"),
		ROIInterval:         time.Duration(v.GetInt("ROI_INTERVAL_DAYS")) * 24 * time.Hour,
		ROISweepInterval:    v.GetDuration("ROI_SWEEP_INTERVAL"),
		ROISweepConcurrency: v.GetInt("ROI_SWEEP_CONCURRENCY"),
		OperationTimeout:    v.GetDuration("OPERATION_TIMEOUT"),
		RedisURL:            v.GetString("REDIS_URL"),
		SessionTTL:          v.GetDuration("SESSION_TTL"),
		PosthogAPIKey:       v.GetString("POSTHOG_API_KEY"),
		PosthogEndpoint:     v.GetString("POSTHOG_ENDPOINT"),
		BTCAddress:          v.GetString("BTC_ADDRESS"),
		USDTTRC20Address:    v.GetString("USDT_TRC20_ADDRESS"),
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	jwtExpiryStr := v.GetString("JWT_EXPIRY_DURATION")
	jwtExpiryDuration, err := time.ParseDuration(jwtExpiryStr)
	if err != nil {
		jwtExpiryDuration = time.Hour
		log.Printf("Warning: Invalid value for JWT_EXPIRY_DURATION ('%s'). Defaulting to %s.\n", jwtExpiryStr, jwtExpiryDuration)
	}
	cfg.JWTExpiryDuration = jwtExpiryDuration

	if cfg.JWTSecret == defaultJWTSecret {
		if cfg.IsProduction {
			return nil, fmt.Errorf("JWT_SECRET must be set in production")
		}
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	pct, err := decimal.NewFromString(v.GetString("ROI_PERCENTAGE"))
	if err != nil {
		return nil, fmt.Errorf("invalid ROI_PERCENTAGE: %w", err)
	}
	cfg.ROIPercentage = pct

	for _, origin := range strings.Split(v.GetString("CORS_ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, origin)
		}
	}

	cfg.AdminChatIDs, err = parseChatIDs(v.GetString("ADMIN_CHAT_ID"))
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseChatIDs(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ADMIN_CHAT_ID %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Validate rejects settings the application cannot run with.
func (c *Config) Validate() error {
	switch c.StorageDriver {
	case StoragePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("PGSQL_URL is required when STORAGE_DRIVER=%s", StoragePostgres)
		}
	case StorageMemory:
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}

	for name, token := range map[string]string{"USER_BOT_TOKEN": c.UserBotToken, "ADMIN_BOT_TOKEN": c.AdminBotToken} {
		if token != "" && !botTokenPattern.MatchString(token) {
			return fmt.Errorf("%s is not a valid bot token", name)
		}
	}
	if c.AdminBotToken != "" && len(c.AdminChatIDs) == 0 {
		return fmt.Errorf("ADMIN_CHAT_ID is required when ADMIN_BOT_TOKEN is set")
	}

	if !c.ROIPercentage.IsPositive() || c.ROIPercentage.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("ROI_PERCENTAGE must be in (0, 100], got %s", c.ROIPercentage)
	}
	if c.ROICyclesRequired < 1 {
		return fmt.Errorf("ROI_CYCLES_REQUIRED must be at least 1, got %d", c.ROICyclesRequired)
	}
	if c.ROIInterval <= 0 {
		return fmt.Errorf("ROI_INTERVAL_DAYS must be at least 1")
	}
	if c.ROISweepInterval <= 0 {
		return fmt.Errorf("ROI_SWEEP_INTERVAL must be positive")
	}
	if c.ROISweepConcurrency < 1 {
		return fmt.Errorf("ROI_SWEEP_CONCURRENCY must be at least 1, got %d", c.ROISweepConcurrency)
	}
	if c.OperationTimeout < 0 || c.SessionTTL <= 0 {
		return fmt.Errorf("OPERATION_TIMEOUT must not be negative and SESSION_TTL must be positive")
	}
	return nil
}

// IsAdmin reports whether chatID belongs to a configured admin.
func (c *Config) IsAdmin(chatID int64) bool {
	for _, id := range c.AdminChatIDs {
		if id == chatID {
			return true
		}
	}
	return false
}

// ROIPolicy returns the configured accrual parameters.
func (c *Config) ROIPolicy() domain.ROIPolicy {
	return domain.ROIPolicy{
		Percentage: c.ROIPercentage,
		Interval:   c.ROIInterval,
		MaxCycles:  c.ROICyclesRequired,
	}
}
