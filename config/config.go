package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port            string
	Env             string // local or prod
	Host            string
	Store           string // mongo or memory
	MongoURI        string
	MongoDBName     string
	GeoIPDB         string // path to a GeoLite2/GeoIP2 country MMDB; empty disables lookup
	CooldownBackend string // store, redis or memory
	RedisAddr       string
	CooldownTTL     time.Duration
}

// LoadConfig loads environment-specific config safely
func LoadConfig() (*Config, error) {
	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "local" // default to local
	}

	// Load .env file for local development only
	if env == "local" {
		if err := godotenv.Load(".env.local"); err != nil {
			log.Println("⚠️ No .env.local file found, using system environment variables")
		}
	}

	viper.AutomaticEnv() // read environment variables for prod in containerized application

	cfg := &Config{
		Env:             strings.ToLower(env),
		Port:            viper.GetString("PORT"),
		Store:           strings.ToLower(viper.GetString("STORE")),
		MongoURI:        viper.GetString("MONGO_URI"),
		MongoDBName:     viper.GetString("MONGO_DB"),
		GeoIPDB:         viper.GetString("GEOIP_DB"),
		CooldownBackend: strings.ToLower(viper.GetString("COOLDOWN_BACKEND")),
		RedisAddr:       viper.GetString("REDIS_ADDR"),
	}

	// Set hostname dynamically based on environment
	switch cfg.Env {
	case "local":
		if cfg.Port == "" {
			cfg.Port = "8080" // default port
		}
		cfg.Host = "localhost:" + cfg.Port
	case "prod":
		cfg.Host = viper.GetString("HOST")
		if cfg.Host == "" {
			return nil, fmt.Errorf("HOST environment variable must be set for production")
		}
	default:
		return nil, fmt.Errorf("unknown CONFIG_ENV: %s", cfg.Env)
	}

	// Validate critical values
	if cfg.Port == "" {
		cfg.Port = "8080" // default port
	}

	if cfg.Store == "" {
		cfg.Store = "mongo"
	}
	switch cfg.Store {
	case "mongo":
		if cfg.MongoURI == "" || cfg.MongoDBName == "" {
			return nil, fmt.Errorf("missing required MongoDB configuration for %s environment", cfg.Env)
		}
	case "memory":
		// Nothing to validate; counts do not survive a restart.
		log.Println("⚠️ STORE=memory: counters are not durable")
	default:
		return nil, fmt.Errorf("unknown STORE: %s", cfg.Store)
	}

	if cfg.CooldownBackend == "" {
		cfg.CooldownBackend = "store" // same backend as STORE
	}
	switch cfg.CooldownBackend {
	case "store", "memory":
	case "redis":
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("COOLDOWN_BACKEND=redis requires REDIS_ADDR")
		}
	default:
		return nil, fmt.Errorf("unknown COOLDOWN_BACKEND: %s", cfg.CooldownBackend)
	}

	cfg.CooldownTTL = 3 * time.Hour
	if hours := viper.GetInt("COOLDOWN_TTL_HOURS"); hours > 0 {
		if hours > 24 {
			return nil, fmt.Errorf("COOLDOWN_TTL_HOURS must be at most 24, got %d", hours)
		}
		cfg.CooldownTTL = time.Duration(hours) * time.Hour
	}

	// Log safe info only
	log.Printf("📦 Loaded Config: Env=%s, Port=%s, Store=%s, CooldownBackend=%s, CooldownTTL=%s",
		cfg.Env, cfg.Port, cfg.Store, cfg.CooldownBackend, cfg.CooldownTTL)

	return cfg, nil
}
