package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const defaultConfigPath = "config/config.yml"

// Supported backends
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMongo    = "mongo"

	CacheRedis     = "redis"
	CacheMemcached = "memcached"
	CacheNone      = "none"
)

type AppConfig struct {
	Port    int    `yaml:"port"`
	GinMode string `yaml:"gin_mode"`
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

type DatabaseConfig struct {
	Driver  string `yaml:"driver"`
	DSN     string `yaml:"dsn"`
	MongoDB string `yaml:"mongo_db"`
}

type JWTConfig struct {
	Secret string `yaml:"secret"`
	Issuer string `yaml:"issuer"`
	TTL    string `yaml:"ttl"`
}

type SecurityConfig struct {
	BcryptCost int `yaml:"bcrypt_cost"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type MemcachedConfig struct {
	Servers []string `yaml:"servers"`
}

type CacheConfig struct {
	Backend   string          `yaml:"backend"`
	Redis     RedisConfig     `yaml:"redis"`
	Memcached MemcachedConfig `yaml:"memcached"`
	LocalTTL  string          `yaml:"local_ttl"`
	RemoteTTL string          `yaml:"remote_ttl"`
	LocalSize int64           `yaml:"local_size"`
}

type EventsConfig struct {
	RabbitMQURL string `yaml:"rabbitmq_url"`
	Exchange    string `yaml:"exchange"`
}

type StorageConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
	PublicURL string `yaml:"public_url"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type CasbinConfig struct {
	Persist bool `yaml:"persist"`
}

type ConfigFile struct {
	App      AppConfig      `yaml:"app"`
	Database DatabaseConfig `yaml:"database"`
	JWT      JWTConfig      `yaml:"jwt"`
	Security SecurityConfig `yaml:"security"`
	Cache    CacheConfig    `yaml:"cache"`
	Events   EventsConfig   `yaml:"events"`
	Storage  StorageConfig  `yaml:"storage"`
	CORS     CORSConfig     `yaml:"cors"`
	Casbin   CasbinConfig   `yaml:"casbin"`
}

type Config struct {
	Port       string
	GinMode    string
	AppName    string
	AppVersion string

	DBDriver string
	DSN      string
	MongoDB  string

	JWTSecret  string
	JWTIssuer  string
	SessionTTL time.Duration
	BcryptCost int

	CacheBackend     string
	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	MemcachedServers []string
	CacheLocalTTL    time.Duration
	CacheRemoteTTL   time.Duration
	CacheLocalSize   int64

	RabbitMQURL    string
	EventsExchange string

	Storage StorageConfig

	AllowedOrigins []string
	CasbinPersist  bool
}

// defaults is the configuration used for any value the file leaves empty
func defaults() ConfigFile {
	return ConfigFile{
		App:      AppConfig{Port: 5000, GinMode: "release", Name: "staysvc", Version: "1.0.0"},
		Database: DatabaseConfig{Driver: DriverSQLite, DSN: "file:staysvc.db?cache=shared", MongoDB: "staysvc"},
		JWT:      JWTConfig{Issuer: "staysvc", TTL: "168h"},
		Security: SecurityConfig{BcryptCost: 10},
		Cache: CacheConfig{
			Backend:   CacheRedis,
			Redis:     RedisConfig{Addr: "localhost:6379"},
			LocalTTL:  "30s",
			RemoteTTL: "5m",
			LocalSize: 1000,
		},
		Events:  EventsConfig{Exchange: "staysvc.events"},
		Storage: StorageConfig{Bucket: "listing-images"},
		CORS:    CORSConfig{AllowedOrigins: []string{"*"}},
	}
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// Load reads .env (when present), then the YAML file named by STAYSVC_CONFIG or config/config.yml.
// A missing default file is not an error; the defaults and environment apply.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	path := env("STAYSVC_CONFIG", defaultConfigPath)
	file, err := loadConfigFile(path)
	if err != nil {
		if !(errors.Is(err, fs.ErrNotExist) && path == defaultConfigPath) {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
		d := defaults()
		file = &d
	}
	return build(file)
}

func loadConfigFile(path string) (*ConfigFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read config file at %s: %w", path, err)
	}
	return parse(raw)
}

// parse expands ${VAR} references and decodes the YAML over the defaults
func parse(raw []byte) (*ConfigFile, error) {
	file := defaults()
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(raw))), &file); err != nil {
		return nil, fmt.Errorf("could not parse config yaml: %w", err)
	}
	return &file, nil
}

func build(f *ConfigFile) (*Config, error) {
	sessionTTL, err := time.ParseDuration(f.JWT.TTL)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT TTL: %w", err)
	}
	localTTL, err := time.ParseDuration(f.Cache.LocalTTL)
	if err != nil {
		return nil, fmt.Errorf("invalid cache local TTL: %w", err)
	}
	remoteTTL, err := time.ParseDuration(f.Cache.RemoteTTL)
	if err != nil {
		return nil, fmt.Errorf("invalid cache remote TTL: %w", err)
	}

	redisDB := f.Cache.Redis.DB
	if v := os.Getenv("REDIS_DB"); v != "" {
		if redisDB, err = strconv.Atoi(v); err != nil {
			return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
		}
	}

	cfg := &Config{
		Port:       env("PORT", strconv.Itoa(f.App.Port)),
		GinMode:    f.App.GinMode,
		AppName:    f.App.Name,
		AppVersion: f.App.Version,

		DBDriver: strings.ToLower(f.Database.Driver),
		DSN:      f.Database.DSN,
		MongoDB:  f.Database.MongoDB,

		JWTSecret:  env("JWT_SECRET", f.JWT.Secret),
		JWTIssuer:  f.JWT.Issuer,
		SessionTTL: sessionTTL,
		BcryptCost: f.Security.BcryptCost,

		CacheBackend:     strings.ToLower(f.Cache.Backend),
		RedisAddr:        env("REDIS_ADDR", f.Cache.Redis.Addr),
		RedisPassword:    f.Cache.Redis.Password,
		RedisDB:          redisDB,
		MemcachedServers: f.Cache.Memcached.Servers,
		CacheLocalTTL:    localTTL,
		CacheRemoteTTL:   remoteTTL,
		CacheLocalSize:   f.Cache.LocalSize,

		RabbitMQURL:    env("RABBITMQ_URL", f.Events.RabbitMQURL),
		EventsExchange: f.Events.Exchange,

		Storage: f.Storage,

		AllowedOrigins: f.CORS.AllowedOrigins,
		CasbinPersist:  f.Casbin.Persist,
	}

	cfg.DSN = env("DATABASE_DSN", cfg.DSN)
	if cfg.DBDriver == DriverMongo {
		cfg.DSN = env("MONGO_URI", cfg.DSN)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the service cannot start with
func (c *Config) Validate() error {
	switch {
	case c.JWTSecret == "":
		return errors.New("jwt secret is required (set jwt.secret or JWT_SECRET)")
	case c.DSN == "":
		return errors.New("database dsn is required")
	case c.SessionTTL <= 0:
		return errors.New("jwt ttl must be positive")
	case c.CacheLocalTTL <= 0 || c.CacheRemoteTTL <= 0:
		return errors.New("cache ttls must be positive")
	}

	switch c.DBDriver {
	case DriverPostgres, DriverSQLite, DriverMongo:
	default:
		return fmt.Errorf("unknown database driver %q", c.DBDriver)
	}

	switch c.CacheBackend {
	case CacheRedis, CacheNone:
	case CacheMemcached:
		if len(c.MemcachedServers) == 0 {
			return errors.New("cache.memcached.servers is required for the memcached backend")
		}
	default:
		return fmt.Errorf("unknown cache backend %q", c.CacheBackend)
	}
	return nil
}
