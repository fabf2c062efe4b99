// Package config loads service and planning settings from .env files, an
// optional YAML file and STABLE_ environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/arnavshah/stable-scheduler-go/pkg/models"
)

// EnvPrefix is the prefix of configuration environment variables
const EnvPrefix = "STABLE_"

type Config struct {
	Environment string         `json:"environment" validate:"oneof=development production test"`
	Server      ServerConfig   `json:"server"`
	Database    DatabaseConfig `json:"database"`
	Auth        AuthConfig     `json:"auth"`
	// Planning overrides the built-in planning defaults. Lists left unset
	// keep the defaults; an explicit empty list clears them.
	Planning models.PlanningOptions `json:"planning"`
}

type ServerConfig struct {
	Port string `json:"port" validate:"required,numeric"`
}

// DatabaseConfig selects Postgres when URL is set, SQLite at Path otherwise
type DatabaseConfig struct {
	URL  string `json:"url"`
	Path string `json:"path" validate:"required_without=URL"`
}

type AuthConfig struct {
	JWTSecret     string        `json:"jwt_secret"`
	MasterSecret  string        `json:"master_secret"`
	AdminUsername string        `json:"admin_username" validate:"required"`
	AdminPassword string        `json:"admin_password" validate:"required"`
	TokenTTL      time.Duration `json:"token_ttl" validate:"gt=0"`
	BcryptCost    int           `json:"bcrypt_cost" validate:"min=4,max=31"`
}

// RequireSecrets fails when the signing secrets are missing. Only the HTTP
// server needs them.
func (a AuthConfig) RequireSecrets() error {
	var errs []error
	if a.JWTSecret == "" {
		errs = append(errs, errors.New("auth.jwt_secret (JWT_SECRET) is not set"))
	}
	if a.MasterSecret == "" {
		errs = append(errs, errors.New("auth.master_secret (API_MASTER_SECRET) is not set"))
	}
	return errors.Join(errs...)
}

// Default returns the configuration used when nothing overrides it
func Default() Config {
	return Config{
		Environment: "production",
		Server:      ServerConfig{Port: "8000"},
		Database:    DatabaseConfig{Path: "stable_scheduler.db"},
		Auth: AuthConfig{
			AdminUsername: "admin",
			AdminPassword: "admin123",
			TokenTTL:      24 * time.Hour,
			BcryptCost:    14,
		},
	}
}

// platformEnv maps plain variables set by hosting platforms and older
// deployments onto config keys. They win over everything else.
var platformEnv = map[string]func(*Config, string){
	"PORT":              func(c *Config, v string) { c.Server.Port = v },
	"DATABASE_URL":      func(c *Config, v string) { c.Database.URL = v },
	"DATA_PATH":         func(c *Config, v string) { c.Database.Path = v },
	"JWT_SECRET":        func(c *Config, v string) { c.Auth.JWTSecret = v },
	"API_MASTER_SECRET": func(c *Config, v string) { c.Auth.MasterSecret = v },
	"ADMIN_USERNAME":    func(c *Config, v string) { c.Auth.AdminUsername = v },
	"ADMIN_PASSWORD":    func(c *Config, v string) { c.Auth.AdminPassword = v },
}

// LoadDotEnv loads the first .env found in the working directory or its
// parents
func LoadDotEnv() {
	for _, p := range []string{".env", "../.env", "../../.env"} {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
			return
		}
	}
}

// Load builds the configuration: defaults, then the YAML file at path (if
// any), then STABLE_ variables, then platform variables. The result is
// validated.
func Load(path string) (*Config, error) {
	LoadDotEnv()

	k := koanf.New(".")
	if path != "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
		default:
			return nil, fmt.Errorf("unsupported config format: %s", filepath.Ext(path))
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}

	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	for name, apply := range platformEnv {
		if v := os.Getenv(name); v != "" {
			apply(&cfg, v)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey turns STABLE_AUTH__JWT_SECRET into auth.jwt_secret. Comma separated
// values become lists.
func envKey(key, value string) (string, interface{}) {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	key = strings.ReplaceAll(key, "__", ".")
	if strings.HasPrefix(key, "planning.") && strings.Contains(value, ",") {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return key, parts
	}
	return key, value
}

var validate = validator.New()

// Validate checks the struct tags of the whole configuration
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Planning.StandardPaddocks < 0 || c.Planning.SpecialPaddocks < 0 {
		return errors.New("invalid config: paddock counts must not be negative")
	}
	return nil
}

// IsDevelopment reports whether the process runs in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
