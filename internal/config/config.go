// Package config loads CampusKart settings from defaults, an optional YAML
// file, a .env file and the process environment, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	StorageLocal      = "local"
	StorageCloudinary = "cloudinary"
	StorageMinio      = "minio"
)

// ConfigPathEnvVar overrides the YAML config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultConfigPaths are searched in order when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{"config.yaml", "config.yml"}

// Config is the flat application configuration. Keys are the lower-cased
// environment variable names, so PORT maps to "port" and MONGO_URI to "mongo_uri".
type Config struct {
	Port int    `koanf:"port"`
	Env  string `koanf:"node_env"`

	MongoURI string `koanf:"mongo_uri"`
	MongoDB  string `koanf:"mongo_db"`

	JWTSecret string        `koanf:"jwt_secret"`
	JWTExpiry time.Duration `koanf:"jwt_expiry"`

	// StorageDriver picks the image store. Empty means cloudinary in
	// production and local disk otherwise.
	StorageDriver string `koanf:"storage_driver"`
	UploadDir     string `koanf:"upload_dir"`
	PublicBaseURL string `koanf:"public_base_url"`
	MaxImageSize  int64  `koanf:"max_image_size"`
	MaxImages     int    `koanf:"max_images"`

	CloudinaryCloudName string `koanf:"cloudinary_cloud_name"`
	CloudinaryAPIKey    string `koanf:"cloudinary_api_key"`
	CloudinaryAPISecret string `koanf:"cloudinary_api_secret"`
	CloudinaryFolder    string `koanf:"cloudinary_folder"`

	MinioEndpoint  string `koanf:"minio_endpoint"`
	MinioAccessKey string `koanf:"minio_access_key"`
	MinioSecretKey string `koanf:"minio_secret_key"`
	MinioBucket    string `koanf:"minio_bucket"`
	MinioUseSSL    bool   `koanf:"minio_use_ssl"`

	// RedisAddr empty disables caching.
	RedisAddr     string        `koanf:"redis_addr"`
	RedisPassword string        `koanf:"redis_password"`
	RedisDB       int           `koanf:"redis_db"`
	CacheTTL      time.Duration `koanf:"cache_ttl"`

	// CORSOrigins is a comma separated list, passed to the CORS middleware as is.
	CORSOrigins string `koanf:"cors_origins"`

	LogLevel  string `koanf:"log_level"`
	LogFormat string `koanf:"log_format"`
}

func defaultConfig() *Config {
	return &Config{
		Port:             5000,
		Env:              EnvDevelopment,
		MongoURI:         "mongodb://localhost:27017",
		MongoDB:          "campuskart",
		JWTSecret:        "your-secret-key",
		JWTExpiry:        24 * time.Hour,
		UploadDir:        "uploads",
		PublicBaseURL:    "",
		MaxImageSize:     5 << 20,
		MaxImages:        5,
		CloudinaryFolder: "campuskart",
		MinioEndpoint:    "localhost:9000",
		MinioAccessKey:   "minioadmin",
		MinioSecretKey:   "minioadmin",
		MinioBucket:      "campuskart",
		CacheTTL:         5 * time.Minute,
		CORSOrigins:      "http://localhost:3000",
		LogLevel:         "info",
	}
}

// Load builds the configuration. Precedence: env > .env > YAML file > defaults.
func Load() (*Config, error) {
	// .env only fills variables that are not already set in the environment.
	_ = godotenv.Load()

	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", strings.ToLower), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	cfg.applyDerived()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func (c *Config) applyDerived() {
	c.Env = strings.ToLower(strings.TrimSpace(c.Env))
	if c.Env == "" {
		c.Env = EnvDevelopment
	}
	c.StorageDriver = strings.ToLower(strings.TrimSpace(c.StorageDriver))
	if c.StorageDriver == "" {
		if c.IsProduction() {
			c.StorageDriver = StorageCloudinary
		} else {
			c.StorageDriver = StorageLocal
		}
	}
	if c.LogFormat == "" {
		if c.IsProduction() {
			c.LogFormat = "json"
		} else {
			c.LogFormat = "console"
		}
	}
}

// Validate checks that the selected drivers have what they need.
func (c *Config) Validate() error {
	var errs []error

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.MongoURI == "" {
		errs = append(errs, errors.New("MONGO_URI is required"))
	}
	if c.JWTSecret == "" || (c.IsProduction() && c.JWTSecret == defaultConfig().JWTSecret) {
		errs = append(errs, errors.New("JWT_SECRET must be set"))
	}
	if c.JWTExpiry <= 0 {
		errs = append(errs, errors.New("JWT_EXPIRY must be positive"))
	}
	if c.MaxImageSize <= 0 || c.MaxImages <= 0 {
		errs = append(errs, errors.New("MAX_IMAGE_SIZE and MAX_IMAGES must be positive"))
	}

	switch c.StorageDriver {
	case StorageLocal:
		if c.UploadDir == "" {
			errs = append(errs, errors.New("UPLOAD_DIR is required for local storage"))
		}
	case StorageCloudinary:
		if c.CloudinaryCloudName == "" || c.CloudinaryAPIKey == "" || c.CloudinaryAPISecret == "" {
			errs = append(errs, errors.New("cloudinary storage needs CLOUDINARY_CLOUD_NAME, CLOUDINARY_API_KEY and CLOUDINARY_API_SECRET"))
		}
	case StorageMinio:
		if c.MinioEndpoint == "" || c.MinioBucket == "" {
			errs = append(errs, errors.New("minio storage needs MINIO_ENDPOINT and MINIO_BUCKET"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver))
	}

	return errors.Join(errs...)
}

func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
