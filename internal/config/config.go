package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port         string
	DBDSN        string
	MediaDir     string
	LogFile      string
	CookieSecure bool

	DealsCacheTTL time.Duration

	// Retailer credentials. Empty values switch the adapters to mock data.
	AWSAccessKey       string
	AWSSecretKey       string
	AmazonAssociateTag string
	WalmartAPIKey      string
	WalmartBaseURL     string
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Load reads the environment, after a .env file in the working directory if one exists.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Port:               getEnv("PORT", "8080"),
		DBDSN:              getEnv("DB_DSN", "campusmarket.db"), // sqlite file in project root
		MediaDir:           getEnv("MEDIA_DIR", "./web/media"),
		LogFile:            getEnv("LOG_FILE", "./campusmarket.log"),
		AWSAccessKey:       os.Getenv("AWS_ACCESS_KEY_ID"),
		AWSSecretKey:       os.Getenv("AWS_SECRET_ACCESS_KEY"),
		AmazonAssociateTag: os.Getenv("AMAZON_ASSOCIATE_TAG"),
		WalmartAPIKey:      os.Getenv("WALMART_API_KEY"),
		WalmartBaseURL:     getEnv("WALMART_BASE_URL", "https://developer.api.walmart.com/api-proxy/service/affil/product/v2"),
	}

	if v := os.Getenv("COOKIE_SECURE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid COOKIE_SECURE %q: %w", v, err)
		}
		cfg.CookieSecure = b
	}

	ttl := getEnv("DEALS_CACHE_TTL", "30m")
	d, err := time.ParseDuration(ttl)
	if err != nil {
		return Config{}, fmt.Errorf("invalid DEALS_CACHE_TTL %q: %w", ttl, err)
	}
	if d <= 0 {
		return Config{}, fmt.Errorf("invalid DEALS_CACHE_TTL %q: must be positive", ttl)
	}
	cfg.DealsCacheTTL = d

	log.Printf("[config] PORT=%s DB_DSN=%s MEDIA_DIR=%s LOG_FILE=%s DEALS_CACHE_TTL=%s amazon_creds=%t walmart_key=%t",
		cfg.Port, redactDSN(cfg.DBDSN), cfg.MediaDir, cfg.LogFile, cfg.DealsCacheTTL,
		cfg.AmazonConfigured(), cfg.WalmartAPIKey != "")
	return cfg, nil
}

// AmazonConfigured reports whether all three Amazon credentials are present.
func (c Config) AmazonConfigured() bool {
	return c.AWSAccessKey != "" && c.AWSSecretKey != "" && c.AmazonAssociateTag != ""
}

// redactDSN hides credentials in postgres URLs.
func redactDSN(dsn string) string {
	scheme, rest, ok := strings.Cut(dsn, "://")
	if !ok {
		return dsn
	}
	if _, host, ok := strings.Cut(rest, "@"); ok {
		return scheme + "://***@" + host
	}
	return dsn
}
