package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ClientConfig configures the storefront command
type ClientConfig struct {
	APIURL       string
	DataDir      string // cart file and saved admin session
	CartRedisURL string // optional; when set the cart lives in Redis instead of DataDir
	AdminEmail   string // client-side allowlist re-check after sign-in
	Currency     string
	LogLevel     string
	Sound        bool
}

// LoadClient reads the storefront configuration. envFiles are loaded first
// (missing files are ignored) so real environment variables still win.
func LoadClient(envFiles ...string) (*ClientConfig, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("error reading %s: %w", f, err)
		}
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("STOREFRONT_API_URL", "http://localhost:8080")
	v.SetDefault("CURRENCY", "BDT")
	v.SetDefault("LOG_LEVEL", "warn")
	v.SetDefault("STOREFRONT_SOUND", true)

	dataDir := strings.TrimSpace(v.GetString("STOREFRONT_DATA_DIR"))
	if dataDir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			base = os.TempDir()
		}
		dataDir = filepath.Join(base, "claydohscope")
	}

	adminEmail := strings.TrimSpace(v.GetString("ADMIN_EMAIL"))
	if adminEmail == "" {
		adminEmail = strings.TrimSpace(v.GetString("ADMIN_USER"))
	}

	return &ClientConfig{
		APIURL:       strings.TrimSuffix(strings.TrimSpace(v.GetString("STOREFRONT_API_URL")), "/"),
		DataDir:      dataDir,
		CartRedisURL: strings.TrimSpace(v.GetString("CART_REDIS_URL")),
		AdminEmail:   adminEmail,
		Currency:     strings.ToUpper(v.GetString("CURRENCY")),
		LogLevel:     v.GetString("LOG_LEVEL"),
		Sound:        v.GetBool("STOREFRONT_SOUND"),
	}, nil
}
