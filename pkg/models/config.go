package models

// Config represents the application configuration
type Config struct {
	SourceRoot        string    `mapstructure:"source_root" json:"source_root" yaml:"source_root"`
	TemplatesDir      string    `mapstructure:"templates_dir" json:"templates_dir" yaml:"templates_dir"`
	RecentIndexLength int       `mapstructure:"recent_index_length" json:"recent_index_length" yaml:"recent_index_length"`
	Lang              string    `mapstructure:"lang" json:"lang" yaml:"lang"`
	Log               LogConfig `mapstructure:"log" json:"log" yaml:"log"`
}

// LogConfig contains logging configuration
type LogConfig struct {
	Level      string `mapstructure:"level" json:"level" yaml:"level"`                   // debug, info, warn, error
	File       string `mapstructure:"file" json:"file" yaml:"file"`                      // empty = console only
	MaxSize    int    `mapstructure:"max_size" json:"max_size" yaml:"max_size"`          // megabytes
	MaxBackups int    `mapstructure:"max_backups" json:"max_backups" yaml:"max_backups"` // rotated files kept
	MaxAge     int    `mapstructure:"max_age" json:"max_age" yaml:"max_age"`             // days
	Compress   bool   `mapstructure:"compress" json:"compress" yaml:"compress"`
}
