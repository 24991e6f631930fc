package cli

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	maxWalkDepth = 25
)

// Config represents the relgraphctl configuration from relgraph.yaml.
type Config struct {
	// Rules is the path to the schema file holding the RuleSet's filters
	// and rewrite rules (e.g., "schema/rules.json").
	Rules string `mapstructure:"rules"`

	// Tuples is the path to the local tuple log relgraphctl replays to
	// rebuild its in-memory index at the start of every invocation, and
	// appends/rewrites after a successful write/delete. A fresh path means
	// a fresh, empty index.
	Tuples string `mapstructure:"tuples"`

	// Store holds the optional persistence-mirror connection settings.
	Store StoreConfig `mapstructure:"store"`

	// Log holds logging settings.
	Log LogConfig `mapstructure:"log"`
}

// StoreConfig holds persistence-mirror connection settings (see package
// store). A zero-value StoreConfig means run without a mirror: the index
// is in-memory only.
type StoreConfig struct {
	URL      string `mapstructure:"url"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"sslmode"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// LoadConfig discovers and loads configuration with precedence
// env > config file > defaults. No flag values are bound here; the only
// flag input is explicitConfigPath, which picks the config file.
//
// Returns the loaded config, the path to the config file (empty if none found),
// and any error encountered.
func LoadConfig(explicitConfigPath string) (*Config, string, error) {
	v := viper.New()

	// 1. Set defaults first (lowest precedence)
	setDefaults(v)

	// 2. Set up environment variable binding
	v.SetEnvPrefix("RELGRAPH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 3. Find and load config file
	configPath, err := findConfigFile(explicitConfigPath)
	if err != nil {
		return nil, "", err
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, configPath, fmt.Errorf("reading config file: %w", err)
		}
	}

	// 4. Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, configPath, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, configPath, nil
}

func setDefaults(v *viper.Viper) {
	// Top-level defaults
	v.SetDefault("rules", "schema/rules.json")
	v.SetDefault("tuples", "tuples.json")

	// Store defaults
	v.SetDefault("store.url", "")
	v.SetDefault("store.host", "")
	v.SetDefault("store.port", 5432)
	v.SetDefault("store.name", "")
	v.SetDefault("store.user", "")
	v.SetDefault("store.password", "")
	v.SetDefault("store.sslmode", "prefer")

	// Log defaults
	v.SetDefault("log.level", "info")
}

// findConfigFile finds the config file to use.
// If explicitPath is provided, it validates the file exists.
// Otherwise, it walks up from cwd looking for relgraph.yaml or relgraph.yml,
// stopping at a .git directory or after maxWalkDepth levels.
func findConfigFile(explicitPath string) (string, error) {
	if explicitPath != "" {
		if _, err := os.Stat(explicitPath); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicitPath)
		}
		return explicitPath, nil
	}

	// Auto-discovery: walk up to .git or maxWalkDepth
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting cwd: %w", err)
	}

	dir := cwd
	for i := 0; i < maxWalkDepth; i++ {
		// Try relgraph.yaml then relgraph.yml
		for _, name := range []string{"relgraph.yaml", "relgraph.yml"} {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}

		// Check for repo boundary (.git file or directory)
		gitPath := filepath.Join(dir, ".git")
		if _, err := os.Stat(gitPath); err == nil {
			break // Stop at repo root
		}

		// Move up
		parent := filepath.Dir(dir)
		if parent == dir {
			break // Reached filesystem root
		}
		dir = parent
	}

	return "", nil // No config found, use defaults
}

// DSN returns the store connection string. If store.url is set, it's
// returned directly. Otherwise a DSN is built from discrete fields. An
// empty DSN (all StoreConfig fields unset) means "no persistence mirror".
func (c *Config) DSN() (string, error) {
	st := c.Store

	if st.URL != "" {
		return st.URL, nil
	}
	if st.Host == "" && st.Name == "" && st.User == "" {
		return "", nil
	}

	if st.Host == "" {
		return "", fmt.Errorf("store.host is required when store.url is not set")
	}
	if st.Name == "" {
		return "", fmt.Errorf("store.name is required when store.url is not set")
	}
	if st.User == "" {
		return "", fmt.Errorf("store.user is required when store.url is not set")
	}

	u := &url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%d", st.Host, st.Port),
		Path:   "/" + st.Name,
	}

	if st.Password != "" {
		u.User = url.UserPassword(st.User, st.Password)
	} else {
		u.User = url.User(st.User)
	}

	if st.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", st.SSLMode)
		u.RawQuery = q.Encode()
	}

	return u.String(), nil
}
