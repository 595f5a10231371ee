package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/huanfeng/updategen/internal/errors"
	"github.com/huanfeng/updategen/pkg/models"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up when no path is given
const FileName = "updategen.yaml"

// EnvPrefix prefixes every environment override
const EnvPrefix = "UPDATEGEN"

var defaultConfig = models.Config{
	SourceRoot:        "Updates",
	TemplatesDir:      "NewVersions",
	RecentIndexLength: 15,
	Lang:              "",
	Log: models.LogConfig{
		Level:      "warn",
		File:       "",
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     30,
		Compress:   true,
	},
}

// Default returns a copy of the built-in configuration
func Default() models.Config {
	return defaultConfig
}

// flagKeys maps persistent flags to the config keys they override
var flagKeys = map[string]string{
	"source-root":   "source_root",
	"templates-dir": "templates_dir",
	"recent-length": "recent_index_length",
	"lang":          "lang",
	"log-file":      "log.file",
}

// Load reads configuration from defaults, the config file, UPDATEGEN_*
// environment variables and, when given, explicitly set flags, in that
// order of increasing precedence.
func Load(configPath string, flags *pflag.FlagSet) (*models.Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	// Set defaults
	v.SetDefault("source_root", defaultConfig.SourceRoot)
	v.SetDefault("templates_dir", defaultConfig.TemplatesDir)
	v.SetDefault("recent_index_length", defaultConfig.RecentIndexLength)
	v.SetDefault("lang", defaultConfig.Lang)
	v.SetDefault("log.level", defaultConfig.Log.Level)
	v.SetDefault("log.file", defaultConfig.Log.File)
	v.SetDefault("log.max_size", defaultConfig.Log.MaxSize)
	v.SetDefault("log.max_backups", defaultConfig.Log.MaxBackups)
	v.SetDefault("log.max_age", defaultConfig.Log.MaxAge)
	v.SetDefault("log.compress", defaultConfig.Log.Compress)

	// Try to load config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(strings.TrimSuffix(FileName, filepath.Ext(FileName)))
		v.AddConfigPath(".")

		// Also check in user's home directory
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "updategen"))
		}
	}

	// Read config file if exists
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.NewConfigurationError(err, "CONFIG_READ_FAILED",
				"failed to read config file").WithContext("path", configPath)
		}
		// Config file not found is not an error, we'll use defaults
	}

	// Bind environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil && f.Changed {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, errors.NewConfigurationError(err, "FLAG_BIND_FAILED",
						fmt.Sprintf("failed to bind flag --%s", name))
				}
			}
		}
	}

	// Unmarshal configuration
	var config models.Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.NewConfigurationError(err, "CONFIG_DECODE_FAILED", "failed to decode configuration")
	}

	if err := Validate(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate checks values that would break the repository
func Validate(config *models.Config) error {
	if config.RecentIndexLength < 1 {
		return errors.NewConfigurationError(nil, "INVALID_RECENT_LENGTH",
			fmt.Sprintf("recent_index_length must be at least 1, got %d", config.RecentIndexLength))
	}
	if strings.TrimSpace(config.SourceRoot) == "" {
		return errors.NewConfigurationError(nil, "EMPTY_SOURCE_ROOT", "source_root must not be empty")
	}
	if strings.TrimSpace(config.TemplatesDir) == "" {
		return errors.NewConfigurationError(nil, "EMPTY_TEMPLATES_DIR", "templates_dir must not be empty")
	}
	switch strings.ToLower(config.Log.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return errors.NewConfigurationError(nil, "INVALID_LOG_LEVEL",
			fmt.Sprintf("unknown log level %q", config.Log.Level))
	}
	return nil
}

const templateContent = `# updategen configuration file

# Directory holding one folder per product
source_root: "Updates"

# Directory holding hand-edited version files waiting to be added
templates_dir: "NewVersions"

# Number of newest versions listed in each product's Index file
recent_index_length: 15

# Interface language (en, zh). Empty follows the system locale.
lang: ""

log:
  # debug, info, warn, error
  level: "warn"

  # Write logs to this file as well as the console. Empty disables it.
  file: ""

  # Rotation settings for the log file
  max_size: 10      # megabytes
  max_backups: 3
  max_age: 30       # days
  compress: true
`

// SaveTemplate saves a configuration template
func SaveTemplate(path string) error {
	// The template must stay loadable with the defaults it documents.
	var check models.Config
	if err := yaml.Unmarshal([]byte(templateContent), &check); err != nil {
		return errors.NewConfigurationError(err, "TEMPLATE_INVALID", "configuration template does not parse")
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.NewFileSystemError(err, "MKDIR_FAILED",
				fmt.Sprintf("failed to create directory %s", dir))
		}
	}
	if err := os.WriteFile(path, []byte(templateContent), 0644); err != nil {
		return errors.NewFileSystemError(err, "WRITE_FAILED",
			fmt.Sprintf("failed to write %s", path)).WithContext("path", path)
	}
	return nil
}
