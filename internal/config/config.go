// Package config loads declarative resource definitions from restmap.yaml
// and the environment, and builds them into resource types.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultConfigName is the config file name searched for when no path is given
const DefaultConfigName = "restmap"

// EnvPrefix prefixes environment overrides, e.g. RESTMAP_ROOT_URL
const EnvPrefix = "RESTMAP"

// Config represents a restmap configuration file
type Config struct {
	RootURL         string           `mapstructure:"root_url"`
	UpdateMethod    string           `mapstructure:"update_method"`
	CollectionField string           `mapstructure:"collection_field"`
	AddSlash        bool             `mapstructure:"add_slash"`
	UpdateFromWrite bool             `mapstructure:"update_from_write"`
	Auth            *AuthConfig      `mapstructure:"auth"`
	Middleware      []string         `mapstructure:"middleware"`
	Cache           CacheConfig      `mapstructure:"cache"`
	Resources       []ResourceConfig `mapstructure:"resources"`
}

// AuthConfig selects the authorization middleware
type AuthConfig struct {
	// Type is one of basic, proxy or bearer
	Type      string                 `mapstructure:"type"`
	Username  string                 `mapstructure:"username"`
	Password  string                 `mapstructure:"password"`
	Endpoint  string                 `mapstructure:"endpoint"`
	SecretKey string                 `mapstructure:"secret_key"`
	Subject   string                 `mapstructure:"subject"`
	TokenTTL  time.Duration          `mapstructure:"token_ttl"`
	Claims    map[string]interface{} `mapstructure:"claims"`
}

// CacheConfig selects and configures the cache backend
type CacheConfig struct {
	Driver string        `mapstructure:"driver"`
	DSN    string        `mapstructure:"dsn"`
	TTL    time.Duration `mapstructure:"ttl"`
	Prefix string        `mapstructure:"prefix"`
	Table  string        `mapstructure:"table"`
}

// ResourceConfig declares one resource type
type ResourceConfig struct {
	Name            string                 `mapstructure:"name"`
	ResourceName    string                 `mapstructure:"resource_name"`
	RootURL         string                 `mapstructure:"root_url"`
	Extends         []string               `mapstructure:"extends"`
	URLs            []TemplateConfig       `mapstructure:"urls"`
	PrependURLs     []TemplateConfig       `mapstructure:"prepend_urls"`
	AppendURLs      []TemplateConfig       `mapstructure:"append_urls"`
	Fields          []FieldConfig          `mapstructure:"fields"`
	UpdateFromWrite *bool                  `mapstructure:"update_from_write"`
	DynamicSchema   bool                   `mapstructure:"dynamic_schema"`
	Options         map[string]interface{} `mapstructure:"options"`
}

// TemplateConfig declares one URL template
type TemplateConfig struct {
	Pattern string `mapstructure:"pattern"`
	// Params names variables required in addition to the pattern's placeholders
	Params     []string `mapstructure:"params"`
	Lookup     *bool    `mapstructure:"lookup"`
	Update     bool     `mapstructure:"update"`
	Create     bool     `mapstructure:"create"`
	Collection bool     `mapstructure:"collection"`
}

// FieldConfig declares one field
type FieldConfig struct {
	Name       string      `mapstructure:"name"`
	APIName    string      `mapstructure:"api_name"`
	Kind       string      `mapstructure:"kind"`
	Resource   string      `mapstructure:"resource"`
	Layout     string      `mapstructure:"layout"`
	Default    interface{} `mapstructure:"default"`
	ReadOnly   bool        `mapstructure:"read_only"`
	ResourceID bool        `mapstructure:"resource_id"`
}

// Load reads the config file at path, or restmap.yaml in the working
// directory when path is empty. A missing default file yields defaults.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("update_method", "PUT")
	v.SetDefault("collection_field", "")
	v.SetDefault("add_slash", false)
	v.SetDefault("update_from_write", true)
	v.SetDefault("cache.driver", "memory")
	v.SetDefault("cache.ttl", 5*time.Minute)
	v.SetDefault("cache.prefix", "restmap:")
	v.SetDefault("cache.table", "restmap_cache")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(DefaultConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var validKinds = map[string]bool{"": true, "scalar": true, "resource": true, "list": true, "datetime": true}

func validateConfig(cfg *Config) error {
	cfg.UpdateMethod = strings.ToUpper(cfg.UpdateMethod)

	if cfg.Auth != nil {
		switch cfg.Auth.Type {
		case "basic", "proxy", "bearer":
		default:
			return fmt.Errorf("auth.type must be one of basic, proxy, bearer, got: %q", cfg.Auth.Type)
		}
	}

	seen := make(map[string]bool, len(cfg.Resources))
	for i, res := range cfg.Resources {
		if res.Name == "" {
			return fmt.Errorf("resources[%d]: name is required", i)
		}
		if seen[res.Name] {
			return fmt.Errorf("resources[%d]: duplicate resource %q", i, res.Name)
		}
		seen[res.Name] = true

		for j, f := range res.Fields {
			if f.Name == "" {
				return fmt.Errorf("resource %s: fields[%d]: name is required", res.Name, j)
			}
			if !validKinds[f.Kind] {
				return fmt.Errorf("resource %s: field %s: unknown kind %q", res.Name, f.Name, f.Kind)
			}
			if (f.Kind == "resource" || f.Kind == "list") && f.Resource == "" {
				return fmt.Errorf("resource %s: field %s: kind %s requires resource", res.Name, f.Name, f.Kind)
			}
		}
	}
	return nil
}
