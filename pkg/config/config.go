package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool
	JWTSecret     string
	JWTIssuer     string

	// VAT aggregator feed
	AggregatorBaseURL string
	AggregatorAPIKey  string
	AggregatorTimeout time.Duration

	// Rate limit in ulule/limiter format, e.g. "100-M"
	RateLimit string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("JWT_ISSUER", "taxdesk-console")
	viper.SetDefault("AGGREGATOR_BASE_URL", "http://localhost:8081")
	viper.SetDefault("AGGREGATOR_API_KEY", "")
	viper.SetDefault("AGGREGATOR_TIMEOUT", "10s")
	viper.SetDefault("RATE_LIMIT", "100-M")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080" // Default port
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "a-very-secret-key-should-be-longer-and-random" // !! CHANGE IN PRODUCTION !!
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	cfg.JWTIssuer = viper.GetString("JWT_ISSUER")
	if cfg.JWTIssuer == "" {
		cfg.JWTIssuer = "taxdesk-console"
		log.Printf("Warning: JWT_ISSUER not set. Defaulting to %s.\n", cfg.JWTIssuer)
	}

	cfg.AggregatorBaseURL = viper.GetString("AGGREGATOR_BASE_URL")
	if cfg.AggregatorBaseURL == "" {
		log.Println("Warning: AGGREGATOR_BASE_URL environment variable not set.")
	}
	cfg.AggregatorAPIKey = viper.GetString("AGGREGATOR_API_KEY")

	aggregatorTimeoutStr := viper.GetString("AGGREGATOR_TIMEOUT")
	aggregatorTimeout, err := time.ParseDuration(aggregatorTimeoutStr)
	if err != nil {
		aggregatorTimeout = 10 * time.Second
		if aggregatorTimeoutStr != "" {
			log.Printf("Warning: Invalid value for AGGREGATOR_TIMEOUT ('%s'). Defaulting to %s.\n", aggregatorTimeoutStr, aggregatorTimeout.String())
		}
	}
	cfg.AggregatorTimeout = aggregatorTimeout

	cfg.RateLimit = viper.GetString("RATE_LIMIT")
	if cfg.RateLimit == "" {
		cfg.RateLimit = "100-M"
		log.Printf("Warning: RATE_LIMIT not set. Defaulting to %s.\n", cfg.RateLimit)
	}

	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")

	return cfg, nil
}
