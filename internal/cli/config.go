package cli

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// maxWalkDepth bounds config auto-discovery.
const maxWalkDepth = 25

// configNames are the file names tried during auto-discovery, in order.
var configNames = []string{"docsql.yaml", "docsql.yml"}

// Config represents the docsql configuration from docsql.yaml.
type Config struct {
	Schema         string            `mapstructure:"schema" json:"schema"`
	BaseURL        string            `mapstructure:"base_url" json:"base_url"`
	StrictKeywords bool              `mapstructure:"strict_keywords" json:"strict_keywords"`
	EmptyIncluded  bool              `mapstructure:"empty_included" json:"empty_included"`
	Formatters     map[string]string `mapstructure:"formatters" json:"formatters,omitempty"`

	Database DatabaseConfig `mapstructure:"database" json:"database"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Driver   string `mapstructure:"driver" json:"driver"`
	URL      string `mapstructure:"url" json:"url,omitempty"`
	Host     string `mapstructure:"host" json:"host,omitempty"`
	Port     int    `mapstructure:"port" json:"port"`
	Name     string `mapstructure:"name" json:"name,omitempty"`
	User     string `mapstructure:"user" json:"user,omitempty"`
	Password string `mapstructure:"password" json:"password,omitempty"`
	SSLMode  string `mapstructure:"sslmode" json:"sslmode,omitempty"`
}

// Supported database/sql driver names.
const (
	DriverPostgres = "postgres"
	DriverPgx      = "pgx"
)

// LoadConfig resolves the configuration in precedence order: DOCSQL_*
// environment variables, then the config file, then built-in defaults.
// Nested keys map to environment names with underscores, so
// database.url is read from DOCSQL_DATABASE_URL.
//
// The returned path names the config file that was read and is empty when
// none was found.
func LoadConfig(explicitConfigPath string) (*Config, string, error) {
	configPath, err := findConfigFile(explicitConfigPath)
	if err != nil {
		return nil, "", err
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix("DOCSQL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, configPath, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, configPath, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, configPath, err
	}
	return &cfg, configPath, nil
}

// defaults registers every key so that AutomaticEnv sees it even when the
// config file leaves it out.
var defaults = map[string]any{
	"schema":          "schema.yaml",
	"base_url":        "",
	"strict_keywords": true,
	"empty_included":  false,

	"database.driver":   DriverPostgres,
	"database.url":      "",
	"database.host":     "",
	"database.port":     5432,
	"database.name":     "",
	"database.user":     "",
	"database.password": "",
	"database.sslmode":  "prefer",
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverPgx:
	default:
		return fmt.Errorf("database.driver must be %q or %q, got %q", DriverPostgres, DriverPgx, c.Database.Driver)
	}
	if c.BaseURL != "" && !strings.HasSuffix(c.BaseURL, "/") {
		return fmt.Errorf("base_url must end with a slash: %s", c.BaseURL)
	}
	return nil
}

// findConfigFile returns explicitPath after checking it exists, or the
// nearest docsql.yaml/docsql.yml above the working directory.
func findConfigFile(explicitPath string) (string, error) {
	if explicitPath != "" {
		if _, err := os.Stat(explicitPath); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicitPath)
		}
		return explicitPath, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting cwd: %w", err)
	}
	return discoverConfig(cwd), nil
}

// discoverConfig walks from dir towards the filesystem root. The walk ends
// at the first directory holding a .git entry or after maxWalkDepth levels.
func discoverConfig(dir string) string {
	for range maxWalkDepth {
		for _, name := range configNames {
			if path := filepath.Join(dir, name); exists(path) {
				return path
			}
		}
		parent := filepath.Dir(dir)
		if exists(filepath.Join(dir, ".git")) || parent == dir {
			return ""
		}
		dir = parent
	}
	return ""
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// DSN returns database.url when set. Otherwise it assembles a postgres://
// URL from host, port, name, user, password and sslmode; host, name and
// user are required.
func (c *Config) DSN() (string, error) {
	db := c.Database
	if db.URL != "" {
		return db.URL, nil
	}

	required := []struct{ key, value string }{
		{"host", db.Host},
		{"name", db.Name},
		{"user", db.User},
	}
	for _, r := range required {
		if r.value == "" {
			return "", fmt.Errorf("database.%s is required when database.url is not set", r.key)
		}
	}

	u := url.URL{
		Scheme: "postgres",
		User:   url.User(db.User),
		Host:   net.JoinHostPort(db.Host, strconv.Itoa(db.Port)),
		Path:   "/" + db.Name,
	}
	if db.Password != "" {
		u.User = url.UserPassword(db.User, db.Password)
	}
	if db.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {db.SSLMode}}.Encode()
	}
	return u.String(), nil
}
