package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
)

// Config holds all application configuration
type Config struct {
	Server struct {
		Port  string `json:"port"`
		Debug bool   `json:"debug"`
		// Timezone names the zone calendar dates are computed in.
		Timezone string `json:"timezone"`
	} `json:"server"`

	Storage struct {
		Driver        string `json:"driver"` // "file", "sqlite" or "mongo"
		Path          string `json:"path"`
		MongoURI      string `json:"mongo_uri"`
		MongoDatabase string `json:"mongo_database"`
	} `json:"storage"`

	Log struct {
		Level string `json:"level"`
		Dir   string `json:"dir"`
	} `json:"log"`

	Discord struct {
		Token         string `json:"token"`
		CommandPrefix string `json:"command_prefix"`
	} `json:"discord"`
}

// LoadConfig reads the JSON file at configPath (a missing file is not an
// error), applies .env and environment overrides, fills defaults and
// validates the result.
func LoadConfig(configPath string) (*Config, error) {
	var config Config

	data, err := os.ReadFile(configPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// Load .env file if it exists
	_ = godotenv.Load()

	config.applyEnv()
	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) applyEnv() {
	setFromEnv(&c.Server.Port, "PORT")
	setFromEnv(&c.Server.Timezone, "TIMEZONE")
	setFromEnv(&c.Storage.Driver, "STORAGE_DRIVER")
	setFromEnv(&c.Storage.Path, "STORAGE_PATH")
	setFromEnv(&c.Storage.MongoURI, "MONGODB_URI")
	setFromEnv(&c.Storage.MongoDatabase, "MONGODB_DATABASE")
	setFromEnv(&c.Log.Level, "LOG_LEVEL")
	setFromEnv(&c.Log.Dir, "LOG_DIR")
	setFromEnv(&c.Discord.Token, "DISCORD_TOKEN")
	setFromEnv(&c.Discord.CommandPrefix, "COMMAND_PREFIX")

	if v := os.Getenv("DEBUG"); v != "" {
		if debug, err := strconv.ParseBool(v); err == nil {
			c.Server.Debug = debug
		}
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "5000"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "file"
	}
	if c.Storage.Path == "" {
		switch c.Storage.Driver {
		case "sqlite":
			c.Storage.Path = "nutrition.db"
		case "file":
			c.Storage.Path = "data"
		}
	}
	if c.Storage.MongoDatabase == "" {
		c.Storage.MongoDatabase = "nutrition"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Discord.CommandPrefix == "" {
		c.Discord.CommandPrefix = "!"
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is not set")
	}
	switch c.Storage.Driver {
	case "file", "sqlite":
	case "mongo":
		if c.Storage.MongoURI == "" {
			return fmt.Errorf("MONGODB_URI is required for the mongo storage driver")
		}
	default:
		return fmt.Errorf("unsupported storage driver: %s", c.Storage.Driver)
	}
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return fmt.Errorf("invalid log level %q", c.Log.Level)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves Server.Timezone, defaulting to the local zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Server.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Server.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Server.Timezone, err)
	}
	return loc, nil
}

// GetConfigPath returns the path to the configuration file
func GetConfigPath() string {
	// First try environment variable
	if path := os.Getenv("NUTRITION_CONFIG"); path != "" {
		return path
	}

	// Then try config directory
	configDir := "config"
	if _, err := os.Stat(configDir); err == nil {
		return filepath.Join(configDir, "config.json")
	}

	// Finally, try current directory
	return "config.json"
}

func setFromEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
