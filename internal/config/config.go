// Package config loads application configuration and initializes logging.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Data     DataConfig     `yaml:"data" mapstructure:"data"`
	Socrata  SocrataConfig  `yaml:"socrata" mapstructure:"socrata"`
	Geocode  GeocodeConfig  `yaml:"geocode" mapstructure:"geocode"`
	Pipeline PipelineConfig `yaml:"pipeline" mapstructure:"pipeline"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// DataConfig configures local storage.
type DataConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// SocrataConfig holds NYC OpenData API credentials. All fields are optional;
// without an app token the client runs anonymously with throttled quotas.
type SocrataConfig struct {
	AppToken    string `yaml:"app_token" mapstructure:"app_token"`
	Username    string `yaml:"username" mapstructure:"username"`
	Password    string `yaml:"password" mapstructure:"password"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// GeocodeConfig holds geocoding API settings.
type GeocodeConfig struct {
	AppToken string `yaml:"app_token" mapstructure:"app_token"`
	BaseURL  string `yaml:"base_url" mapstructure:"base_url"`
	State    string `yaml:"state" mapstructure:"state"`
}

// PipelineConfig configures the dataset join pipeline.
type PipelineConfig struct {
	CommunityBoard    int    `yaml:"community_board" mapstructure:"community_board"`
	CommunityDistrict int    `yaml:"community_district" mapstructure:"community_district"`
	Translations      string `yaml:"translations" mapstructure:"translations"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment. A missing config file is
// not an error; the client degrades to anonymous access.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("BROWNSVILLE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("data.path", "./data/brownsville")
	v.SetDefault("socrata.app_token", "")
	v.SetDefault("socrata.username", "")
	v.SetDefault("socrata.password", "")
	v.SetDefault("socrata.timeout_secs", 40)
	v.SetDefault("geocode.app_token", "")
	v.SetDefault("geocode.base_url", "http://www.mapquestapi.com/geocoding/v1/address")
	v.SetDefault("geocode.state", "NY")
	v.SetDefault("pipeline.community_board", 16)
	v.SetDefault("pipeline.community_district", 316)
	v.SetDefault("pipeline.translations", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
