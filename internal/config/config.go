package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Auth providers
const (
	AuthProviderLocal    = "local"
	AuthProviderSupabase = "supabase"
)

// Storage providers
const (
	StorageProviderDisk     = "disk"
	StorageProviderSupabase = "supabase"
)

type Config struct {
	Port        string
	Environment string
	Database    DatabaseConfig
	Supabase    SupabaseConfig
	Admin       AdminConfig
	Storage     StorageConfig
	Kafka       KafkaConfig
	LogLevel    string
	Currency    string

	// AuthProvider selects the identity backend: "local" (admin_users table) or "supabase"
	AuthProvider string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN returns the lib/pq connection string
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// SupabaseConfig is the hosted auth + storage project
type SupabaseConfig struct {
	URL            string
	AnonKey        string // SUPABASE_ANON_KEY: public key, used for auth calls
	ServiceRoleKey string // SUPABASE_SERVICE_ROLE_KEY: server only, used for storage writes
}

// AdminConfig holds the single-admin allowlist and the cookie login pair
type AdminConfig struct {
	AllowedEmail string // empty admits any authenticated identity
	Username     string
	Password     string
}

// CredentialsConfigured reports whether the cookie login pair is set
func (a AdminConfig) CredentialsConfigured() bool {
	return a.Username != "" && a.Password != ""
}

type StorageConfig struct {
	Provider      string
	Dir           string // disk provider root
	PublicBaseURL string // disk provider URL prefix, e.g. http://localhost:8080/media-files
}

type KafkaConfig struct {
	Brokers []string // empty disables event publishing
}

func Load() (*Config, error) {
	viper.SetConfigType("env")
	viper.SetConfigName(".env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("LOG_LEVEL", "info")

	// Read from environment variables
	viper.AutomaticEnv()

	// Try to read .env file (optional)
	if err := viper.ReadInConfig(); err != nil {
		// It's okay if .env doesn't exist, we'll use env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	port := getEnvOrViper("PORT", "8080")
	cfg := &Config{
		Port:        port,
		Environment: getEnvOrViper("ENVIRONMENT", "development"),
		Database:    loadDatabase(),
		Supabase: SupabaseConfig{
			URL:            strings.TrimSuffix(strings.TrimSpace(getEnvOrViper("SUPABASE_URL", "")), "/"),
			AnonKey:        strings.TrimSpace(getEnvOrViper("SUPABASE_ANON_KEY", "")),
			ServiceRoleKey: strings.TrimSpace(getEnvOrViper("SUPABASE_SERVICE_ROLE_KEY", "")),
		},
		Admin: AdminConfig{
			AllowedEmail: strings.TrimSpace(firstNonEmpty(getEnvOrViper("ADMIN_EMAIL", ""), getEnvOrViper("ADMIN_USER", ""))),
			Username:     strings.TrimSpace(getEnvOrViper("ADMIN_USER", "")),
			Password:     getEnvOrViper("ADMIN_PASS", ""),
		},
		Storage: StorageConfig{
			Provider:      strings.ToLower(getEnvOrViper("STORAGE_PROVIDER", StorageProviderDisk)),
			Dir:           getEnvOrViper("STORAGE_DIR", "./media-files"),
			PublicBaseURL: strings.TrimSuffix(getEnvOrViper("PUBLIC_BASE_URL", "http://localhost:"+port), "/") + "/media-files",
		},
		Kafka: KafkaConfig{
			Brokers: splitList(getEnvOrViper("KAFKA_BROKERS", "")),
		},
		LogLevel:     getEnvOrViper("LOG_LEVEL", "info"),
		Currency:     strings.ToUpper(getEnvOrViper("CURRENCY", "BDT")),
		AuthProvider: strings.ToLower(getEnvOrViper("AUTH_PROVIDER", AuthProviderLocal)),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDatabase reads only the database settings (ops tools)
func LoadDatabase() DatabaseConfig {
	viper.SetConfigType("env")
	viper.SetConfigName(".env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()
	_ = viper.ReadInConfig()
	return loadDatabase()
}

func loadDatabase() DatabaseConfig {
	return DatabaseConfig{
		Host:     getEnvOrViper("DB_HOST", "localhost"),
		Port:     getEnvOrViper("DB_PORT", "5432"),
		User:     getEnvOrViper("DB_USER", "postgres"),
		Password: getEnvOrViper("DB_PASSWORD", "postgres"),
		DBName:   getEnvOrViper("DB_NAME", "claydohscope"),
		SSLMode:  getEnvOrViper("DB_SSLMODE", "disable"),
	}
}

func (c *Config) validate() error {
	switch c.AuthProvider {
	case AuthProviderLocal:
	case AuthProviderSupabase:
		if c.Supabase.URL == "" || c.Supabase.AnonKey == "" {
			return fmt.Errorf("SUPABASE_URL and SUPABASE_ANON_KEY are required when AUTH_PROVIDER=supabase")
		}
	default:
		return fmt.Errorf("unknown AUTH_PROVIDER %q", c.AuthProvider)
	}

	switch c.Storage.Provider {
	case StorageProviderDisk:
		if c.Storage.Dir == "" {
			return fmt.Errorf("STORAGE_DIR is required when STORAGE_PROVIDER=disk")
		}
	case StorageProviderSupabase:
		if c.Supabase.URL == "" || c.Supabase.ServiceRoleKey == "" {
			return fmt.Errorf("SUPABASE_URL and SUPABASE_SERVICE_ROLE_KEY are required when STORAGE_PROVIDER=supabase")
		}
	default:
		return fmt.Errorf("unknown STORAGE_PROVIDER %q", c.Storage.Provider)
	}
	return nil
}

func getEnvOrViper(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return defaultValue
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
