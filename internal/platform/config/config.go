package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultEnvFile            = ".env"
	defaultEnvironment        = "local"
	defaultWebAddr            = ":8080"
	defaultAdminAddr          = ":8081"
	defaultAdminBasePath      = "/admin"
	defaultReadTimeout        = 15 * time.Second
	defaultWriteTimeout       = 30 * time.Second
	defaultIdleTimeout        = 120 * time.Second
	defaultStorageBackend     = BackendMemory
	defaultStorageDir         = "var/storage"
	defaultStorageMaxBytes    = 5 << 20
	defaultFirestoreColl      = "storefront_slots"
	defaultRedisPrefix        = "fashionshop:"
	defaultOrdersAPITimeout   = 10 * time.Second
	defaultCheckoutAPITimeout = 8 * time.Second
)

// Storage backend names accepted by SHOP_STORAGE_BACKEND.
const (
	BackendMemory    = "memory"
	BackendFile      = "file"
	BackendRedis     = "redis"
	BackendFirestore = "firestore"
)

// Config captures runtime configuration for the storefront, the admin panel and the CLI.
type Config struct {
	Environment string
	Web         ServerConfig
	Admin       AdminConfig
	Session     SessionConfig
	Storage     StorageConfig
	Catalog     CatalogConfig
	Checkout    CheckoutConfig
}

// ServerConfig configures an HTTP listener.
type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// AdminConfig configures the admin order panel.
type AdminConfig struct {
	Server            ServerConfig
	BasePath          string
	OrdersAPIURL      string
	OrdersAPITimeout  time.Duration
	FirebaseProjectID string
	AllowInsecureAuth bool
}

// SessionConfig holds the securecookie keys of the storefront session.
type SessionConfig struct {
	HashKey  string
	BlockKey string
	Secure   bool
}

// StorageConfig selects the cart slot backend.
type StorageConfig struct {
	Backend   string
	Dir       string
	MaxBytes  int
	Redis     RedisConfig
	Firestore FirestoreConfig
}

// RedisConfig configures the Redis backend.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	TTL      time.Duration
}

// FirestoreConfig configures the Firestore backend.
type FirestoreConfig struct {
	ProjectID    string
	Collection   string
	EmulatorHost string
}

// CatalogConfig points at the product catalog file. Empty loads the bundled catalog.
type CatalogConfig struct {
	File string
}

// CheckoutConfig configures the order placement backend.
type CheckoutConfig struct {
	APIURL  string
	Timeout time.Duration
}

// IsProduction reports whether the environment is prod.
func (c Config) IsProduction() bool {
	switch strings.ToLower(c.Environment) {
	case "prod", "production":
		return true
	}
	return false
}

// ValidationError is returned when required configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile overrides the .env file path. An empty path disables .env loading.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap injects explicit values that take precedence over the system environment.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables reading the process environment.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// Load combines defaults, .env values, the process environment and explicit overrides,
// in increasing order of precedence, and validates the result.
func Load(_ context.Context, opts ...Option) (Config, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	dotEnvValues, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		if options.envMap != nil {
			if value, ok := options.envMap[key]; ok {
				return value, true
			}
		}
		if options.useSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		if value, ok := dotEnvValues[key]; ok {
			return value, true
		}
		return "", false
	}

	env := strings.ToLower(stringWithDefault(lookup, "SHOP_ENV", defaultEnvironment))
	cfg := Config{
		Environment: env,
		Web: ServerConfig{
			Addr:         stringWithDefault(lookup, "SHOP_WEB_ADDR", defaultWebAddr),
			ReadTimeout:  durationWithDefault(lookup, "SHOP_WEB_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout: durationWithDefault(lookup, "SHOP_WEB_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:  durationWithDefault(lookup, "SHOP_WEB_IDLE_TIMEOUT", defaultIdleTimeout),
		},
		Admin: AdminConfig{
			Server: ServerConfig{
				Addr:         stringWithDefault(lookup, "SHOP_ADMIN_ADDR", defaultAdminAddr),
				ReadTimeout:  durationWithDefault(lookup, "SHOP_ADMIN_READ_TIMEOUT", defaultReadTimeout),
				WriteTimeout: durationWithDefault(lookup, "SHOP_ADMIN_WRITE_TIMEOUT", defaultWriteTimeout),
				IdleTimeout:  durationWithDefault(lookup, "SHOP_ADMIN_IDLE_TIMEOUT", defaultIdleTimeout),
			},
			BasePath:          normalizeBasePath(stringWithDefault(lookup, "SHOP_ADMIN_BASE_PATH", defaultAdminBasePath)),
			OrdersAPIURL:      strings.TrimRight(stringWithDefault(lookup, "SHOP_ORDERS_API_URL", ""), "/"),
			OrdersAPITimeout:  durationWithDefault(lookup, "SHOP_ORDERS_API_TIMEOUT", defaultOrdersAPITimeout),
			FirebaseProjectID: stringWithDefault(lookup, "FIREBASE_PROJECT_ID", ""),
			AllowInsecureAuth: boolWithDefault(lookup, "SHOP_ADMIN_ALLOW_INSECURE_AUTH", env == defaultEnvironment),
		},
		Session: SessionConfig{
			HashKey:  stringWithDefault(lookup, "SHOP_SESSION_HASH_KEY", ""),
			BlockKey: stringWithDefault(lookup, "SHOP_SESSION_BLOCK_KEY", ""),
			Secure:   env == "prod" || env == "production",
		},
		Storage: StorageConfig{
			Backend:  strings.ToLower(stringWithDefault(lookup, "SHOP_STORAGE_BACKEND", defaultStorageBackend)),
			Dir:      stringWithDefault(lookup, "SHOP_STORAGE_DIR", defaultStorageDir),
			MaxBytes: intWithDefault(lookup, "SHOP_STORAGE_MAX_BYTES", defaultStorageMaxBytes),
			Redis: RedisConfig{
				Addr:     stringWithDefault(lookup, "SHOP_REDIS_ADDR", ""),
				Password: stringWithDefault(lookup, "SHOP_REDIS_PASSWORD", ""),
				DB:       intWithDefault(lookup, "SHOP_REDIS_DB", 0),
				Prefix:   stringWithDefault(lookup, "SHOP_REDIS_PREFIX", defaultRedisPrefix),
				TTL:      durationWithDefault(lookup, "SHOP_REDIS_TTL", 0),
			},
			Firestore: FirestoreConfig{
				ProjectID:    stringWithDefault(lookup, "SHOP_FIRESTORE_PROJECT_ID", ""),
				Collection:   stringWithDefault(lookup, "SHOP_FIRESTORE_COLLECTION", defaultFirestoreColl),
				EmulatorHost: stringWithDefault(lookup, "FIRESTORE_EMULATOR_HOST", ""),
			},
		},
		Catalog: CatalogConfig{
			File: stringWithDefault(lookup, "SHOP_CATALOG_FILE", ""),
		},
		Checkout: CheckoutConfig{
			APIURL:  strings.TrimRight(stringWithDefault(lookup, "SHOP_CHECKOUT_API_URL", ""), "/"),
			Timeout: durationWithDefault(lookup, "SHOP_CHECKOUT_API_TIMEOUT", defaultCheckoutAPITimeout),
		},
	}

	if cfg.Storage.Firestore.ProjectID == "" {
		cfg.Storage.Firestore.ProjectID = cfg.Admin.FirebaseProjectID
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validateConfig(cfg Config) error {
	var missing []string

	if cfg.Web.Addr == "" {
		missing = append(missing, "Web.Addr")
	}
	if cfg.Admin.Server.Addr == "" {
		missing = append(missing, "Admin.Server.Addr")
	}
	switch cfg.Storage.Backend {
	case BackendMemory:
	case BackendFile:
		if strings.TrimSpace(cfg.Storage.Dir) == "" {
			missing = append(missing, "Storage.Dir")
		}
	case BackendRedis:
		if cfg.Storage.Redis.Addr == "" {
			missing = append(missing, "Storage.Redis.Addr")
		}
	case BackendFirestore:
		if cfg.Storage.Firestore.ProjectID == "" {
			missing = append(missing, "Storage.Firestore.ProjectID")
		}
	default:
		missing = append(missing, "Storage.Backend")
	}
	if cfg.Storage.MaxBytes < 0 {
		missing = append(missing, "Storage.MaxBytes")
	}
	if cfg.IsProduction() && len(cfg.Session.HashKey) < 32 {
		missing = append(missing, "Session.HashKey")
	}
	if cfg.Session.HashKey != "" && len(cfg.Session.HashKey) < 32 {
		missing = append(missing, "Session.HashKey")
	}
	switch len(cfg.Session.BlockKey) {
	case 0, 16, 24, 32:
	default:
		missing = append(missing, "Session.BlockKey")
	}
	if cfg.IsProduction() && !cfg.Admin.AllowInsecureAuth && cfg.Admin.FirebaseProjectID == "" {
		missing = append(missing, "Admin.FirebaseProjectID")
	}

	missing = dedupe(missing)
	if len(missing) > 0 {
		return &ValidationError{fields: missing}
	}
	return nil
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}
	values, err := godotenv.Read(absPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", absPath, err)
	}
	return values, nil
}

func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" || p == "/" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return strings.TrimRight(p, "/")
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := in[:0]
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func durationWithDefault(lookup func(string) (string, bool), key string, fallback time.Duration) time.Duration {
	if value, ok := lookup(key); ok && value != "" {
		if d, err := time.ParseDuration(strings.TrimSpace(value)); err == nil {
			return d
		}
	}
	return fallback
}

func intWithDefault(lookup func(string) (string, bool), key string, fallback int) int {
	if value, ok := lookup(key); ok && value != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return parsed
		}
	}
	return fallback
}

func boolWithDefault(lookup func(string) (string, bool), key string, fallback bool) bool {
	if value, ok := lookup(key); ok && value != "" {
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return fallback
}
