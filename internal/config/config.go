package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage drivers.
const (
	StorageDriverCloudinary = "cloudinary"
	StorageDriverMemory     = "memory"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	JWT       JWTConfig
	Upload    UploadConfig
	Storage   StorageConfig
}

type ServerConfig struct {
	Port           string
	Env            string
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int32
}

// DSN returns the PostgreSQL connection string.
func (c DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     c.Host + ":" + c.Port,
		Path:     c.Database,
		RawQuery: "sslmode=" + c.SSLMode,
	}
	return u.String()
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Addr returns host:port.
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

type RateLimitConfig struct {
	Enabled          bool
	UploadsPerMinute int
}

// JWTConfig holds the shared secret for admin tokens. An empty secret leaves
// write endpoints open.
type JWTConfig struct {
	Secret string
}

type UploadConfig struct {
	Folder       string
	MaxFileBytes int64
	MaxFiles     int
}

type StorageConfig struct {
	Driver     string
	BaseURL    string // memory driver only
	Cloudinary CloudinaryConfig
}

type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
}

// IsDevelopment reports whether the server runs outside production.
func (c *Config) IsDevelopment() bool {
	return c.Server.Env != "production"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "3000")
	v.SetDefault("SERVER_ENV", "development")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3001")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "catalog")
	v.SetDefault("DB_DATABASE", "catalog")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("RATE_LIMIT_ENABLED", true)
	v.SetDefault("RATE_LIMIT_UPLOADS_PER_MINUTE", 30)
	v.SetDefault("UPLOAD_FOLDER", "zeroFear/products")
	v.SetDefault("UPLOAD_MAX_FILE_BYTES", 5*1024*1024)
	v.SetDefault("UPLOAD_MAX_FILES", 10)
	v.SetDefault("STORAGE_DRIVER", StorageDriverCloudinary)
	v.SetDefault("STORAGE_BASE_URL", "http://localhost:3000")
}

// Load reads configuration from .env and the environment. When SERVER_ENV is
// "local", .env.local is loaded into the environment first.
func Load() *Config {
	if strings.EqualFold(os.Getenv("SERVER_ENV"), "local") {
		if err := godotenv.Load(".env.local"); err != nil {
			log.Printf("Warning: Could not load .env.local: %v", err)
		}
	}

	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		log.Printf("Warning: Could not read config file: %v", err)
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Server: ServerConfig{
			Port:           v.GetString("SERVER_PORT"),
			Env:            v.GetString("SERVER_ENV"),
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			Database: v.GetString("DB_DATABASE"),
			SSLMode:  v.GetString("DB_SSLMODE"),
			MaxConns: v.GetInt32("DB_MAX_CONNS"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		RateLimit: RateLimitConfig{
			Enabled:          v.GetBool("RATE_LIMIT_ENABLED"),
			UploadsPerMinute: v.GetInt("RATE_LIMIT_UPLOADS_PER_MINUTE"),
		},
		JWT: JWTConfig{
			Secret: v.GetString("JWT_SECRET"),
		},
		Upload: UploadConfig{
			Folder:       v.GetString("UPLOAD_FOLDER"),
			MaxFileBytes: v.GetInt64("UPLOAD_MAX_FILE_BYTES"),
			MaxFiles:     v.GetInt("UPLOAD_MAX_FILES"),
		},
		Storage: StorageConfig{
			Driver:  strings.ToLower(v.GetString("STORAGE_DRIVER")),
			BaseURL: v.GetString("STORAGE_BASE_URL"),
			Cloudinary: CloudinaryConfig{
				CloudName: v.GetString("CLOUDINARY_CLOUD_NAME"),
				APIKey:    v.GetString("CLOUDINARY_API_KEY"),
				APISecret: v.GetString("CLOUDINARY_API_SECRET"),
			},
		},
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
