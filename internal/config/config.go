package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"
	_ "time/tzdata" // zone database for minimal images

	"northline/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "configs/config.yaml"

// DefaultHost keeps the API on loopback unless a host is configured.
const DefaultHost = "127.0.0.1"

const (
	DriverFile   = "file"
	DriverMemory = "memory"
	DriverRedis  = "redis"
	DriverSQLite = "sqlite"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	API        APIConfig        `yaml:"api"`
	Admin      AdminConfig      `yaml:"admin"`
	Storage    StorageConfig    `yaml:"storage"`
	Redis      RedisConfig      `yaml:"redis"`
	Backup     BackupConfig     `yaml:"backup"`
	Booking    BookingConfig    `yaml:"booking"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type APIConfig struct {
	HTTP APIHTTPConfig `yaml:"http"`
}

type APIHTTPConfig struct {
	Enabled         bool          `yaml:"enabled"`
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes"`
}

type AdminConfig struct {
	Passcode string `yaml:"passcode"`
	Header   string `yaml:"header"`
}

// UsesDefaultPasscode reports whether the well-known fallback passcode is active.
func (a AdminConfig) UsesDefaultPasscode() bool {
	return a.Passcode == models.DefaultAdminPasscode
}

type StorageConfig struct {
	Driver   string `yaml:"driver"`
	Path     string `yaml:"path"`
	RedisKey string `yaml:"redis_key"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type BackupConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Schedule      string `yaml:"schedule"`
	RetentionDays int    `yaml:"retention_days"`
	StoragePath   string `yaml:"storage_path"`
}

type BookingConfig struct {
	Timezone string `yaml:"timezone"`
}

// Location resolves the configured timezone; empty means the host's local zone.
func (b BookingConfig) Location() (*time.Location, error) {
	if b.Timezone == "" || strings.EqualFold(b.Timezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(b.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", b.Timezone, err)
	}
	return loc, nil
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

func Load(configPath string) (*Config, error) {
	// .env is optional
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	// expand environment variables before parsing
	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.API.HTTP.Port <= 0 || c.API.HTTP.Port > 65535 {
		return fmt.Errorf("api.http.port out of range: %d", c.API.HTTP.Port)
	}
	if c.Monitoring.PrometheusEnabled && (c.Monitoring.PrometheusPort <= 0 || c.Monitoring.PrometheusPort > 65535) {
		return fmt.Errorf("monitoring.prometheus_port out of range: %d", c.Monitoring.PrometheusPort)
	}

	if c.Admin.Passcode == "" {
		return errors.New("admin passcode is required")
	}

	switch c.Storage.Driver {
	case DriverFile, DriverSQLite:
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for the %s driver", c.Storage.Driver)
		}
	case DriverRedis:
		if c.Redis.Address == "" {
			return errors.New("redis.address is required for the redis driver")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	if c.Backup.Enabled && c.Backup.StoragePath == "" {
		return errors.New("backup.storage_path is required when backups are enabled")
	}

	if _, err := c.Booking.Location(); err != nil {
		return err
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "northline"
	}
	if c.App.Version == "" {
		c.App.Version = models.APIVersion
	}
	if c.API.HTTP.Host == "" {
		c.API.HTTP.Host = DefaultHost
	}
	if c.API.HTTP.Port == 0 {
		c.API.HTTP.Port = 3000
	}
	if c.API.HTTP.ReadTimeout == 0 {
		c.API.HTTP.ReadTimeout = 5 * time.Second
	}
	if c.API.HTTP.WriteTimeout == 0 {
		c.API.HTTP.WriteTimeout = 15 * time.Second
	}
	if c.API.HTTP.ShutdownTimeout == 0 {
		c.API.HTTP.ShutdownTimeout = 10 * time.Second
	}
	if c.API.HTTP.MaxBodyBytes == 0 {
		c.API.HTTP.MaxBodyBytes = 1 << 20
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}

	if c.Admin.Passcode == "" {
		c.Admin.Passcode = models.DefaultAdminPasscode
	}
	if c.Admin.Header == "" {
		c.Admin.Header = models.AdminPasscodeHeader
	}

	c.Storage.Driver = strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	if c.Storage.Driver == "" {
		c.Storage.Driver = DriverFile
	}
	if c.Storage.Path == "" {
		switch c.Storage.Driver {
		case DriverFile:
			c.Storage.Path = "data/bookings.json"
		case DriverSQLite:
			c.Storage.Path = "data/bookings.db"
		}
	}
	if c.Storage.RedisKey == "" {
		c.Storage.RedisKey = models.StorageKey
	}

	if c.Backup.Enabled && c.Backup.Schedule == "" {
		c.Backup.Schedule = "24h"
	}
}
