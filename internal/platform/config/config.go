package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	APIName  string
	APIPort  string
	JWTKey   []byte
	TokenTTL time.Duration
	LogLevel string

	BcryptCost int

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string
	DBConnStr  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	PostCacheTTL  time.Duration
}

// fileConfig mirrors the keys of the legacy config.json.
type fileConfig struct {
	APIName            string `json:"api_name"`
	SecretKey          string `json:"secret_key"`
	DBConnectionString string `json:"db_connection_string"`
}

// Load reads .env (if present), then the environment, then the optional JSON
// file named by CONFIG_FILE. Later sources win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	cfg := &Config{
		APIName:       getEnv("API_NAME", "blog-api"),
		APIPort:       getEnv("API_PORT", "9000"),
		JWTKey:        []byte(getEnv("JWT_SECRET", "")),
		TokenTTL:      time.Duration(getEnvAsInt("TOKEN_TTL_SECONDS", 9999)) * time.Second,
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		BcryptCost:    getEnvAsInt("BCRYPT_COST", 12),
		DBHost:        getEnv("DB_HOST", "localhost"),
		DBPort:        getEnv("DB_PORT", "5432"),
		DBUser:        getEnv("DB_USER", "user"),
		DBPassword:    getEnv("DB_PASSWORD", "password"),
		DBName:        getEnv("DB_NAME", "blog_api_db"),
		DBSslMode:     getEnv("DB_SSLMODE", "disable"),
		DBConnStr:     getEnv("DB_CONNECTION_STRING", ""),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),
		PostCacheTTL:  time.Duration(getEnvAsInt("POST_CACHE_TTL_SECONDS", 300)) * time.Second,
	}

	if path := getEnv("CONFIG_FILE", ""); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	if cfg.DBConnStr == "" {
		cfg.DBConnStr = "host=" + cfg.DBHost +
			" port=" + cfg.DBPort +
			" user=" + cfg.DBUser +
			" password=" + cfg.DBPassword +
			" dbname=" + cfg.DBName +
			" sslmode=" + cfg.DBSslMode
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	var fc fileConfig
	if err := json.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	if fc.APIName != "" {
		c.APIName = fc.APIName
	}
	if fc.SecretKey != "" {
		c.JWTKey = []byte(fc.SecretKey)
	}
	if fc.DBConnectionString != "" {
		c.DBConnStr = fc.DBConnectionString
	}
	return nil
}

// Validate reports settings the server cannot start with.
func (c *Config) Validate() error {
	if len(c.JWTKey) == 0 {
		return errors.New("config: JWT_SECRET (or secret_key) must be set")
	}
	if c.TokenTTL <= 0 {
		return errors.New("config: TOKEN_TTL_SECONDS must be positive")
	}
	if c.APIPort == "" {
		return errors.New("config: API_PORT must be set")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}
