package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"

	"github.com/eokit/stacforge/errors"
)

var globalConfig *Config
var viperInstance *viper.Viper

// Load reads the stacforge configuration using Viper
func Load() (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	v := initViper()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	globalConfig = &config
	return globalConfig, nil
}

// LoadFromFile loads configuration from a specific file path. The result
// becomes the cached configuration, so later Load calls see the file's
// values.
func LoadFromFile(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")
	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %s", configPath)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal config from %s", configPath)
	}

	globalConfig = &config
	viperInstance = v
	return globalConfig, nil
}

// Reset clears the cached configuration (useful for testing)
func Reset() {
	globalConfig = nil
	viperInstance = nil
}

// initViper initializes Viper with configuration sources and defaults
func initViper() *viper.Viper {
	if viperInstance != nil {
		return viperInstance
	}

	v := viper.New()
	v.SetConfigName("stacforge")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "stacforge"))
	}

	v.SetEnvPrefix("STACFORGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	// Missing config file is fine, defaults and env cover everything
	_ = v.ReadInConfig()

	viperInstance = v
	return v
}

// SetDefaults applies default values to a Viper instance
func SetDefaults(v *viper.Viper) {
	v.SetDefault("batch.max_workers", runtime.NumCPU()*2)
	v.SetDefault("batch.concurrency_per_worker", 100)
	v.SetDefault("batch.task_timeout_seconds", 300.0)
	v.SetDefault("batch.strict", false)

	v.SetDefault("storage.s3_secure", true)
	v.SetDefault("storage.requests_per_sec", 100.0)
	v.SetDefault("storage.request_burst", 20)
	v.SetDefault("storage.connect_timeout_s", 20.0)

	v.SetDefault("output.ndjson", 0)
	v.SetDefault("output.minify", false)
	v.SetDefault("output.overwrite", false)
	v.SetDefault("output.fail_log", "fail.log")
}
