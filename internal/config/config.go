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
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Sizing  SizingConfig  `yaml:"sizing" mapstructure:"sizing"`
	Routing RoutingConfig `yaml:"routing" mapstructure:"routing"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// SizingConfig configures the cable sizing engine.
type SizingConfig struct {
	// Standard selects the coefficient profile: "IEC" (IEC 60287) or "IS" (IS 1554).
	Standard string `yaml:"standard" mapstructure:"standard"`
	// ClearingTimeSecs is the assumed fault clearing time for the adiabatic
	// short-circuit check.
	ClearingTimeSecs float64 `yaml:"clearing_time_secs" mapstructure:"clearing_time_secs"`
	// Concurrency bounds parallel cable calculations in bulk requests.
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`
	// Catalog names a stored catalog to use instead of the built-in table.
	Catalog string `yaml:"catalog" mapstructure:"catalog"`
}

// RoutingConfig configures the tray routing engine.
type RoutingConfig struct {
	// PenaltyFactor scales the fill penalty added to edge costs under the
	// least-fill strategy.
	PenaltyFactor float64 `yaml:"penalty_factor" mapstructure:"penalty_factor"`
	// TopologyPath points to a YAML tray network definition. Empty uses the
	// built-in sample network.
	TopologyPath string `yaml:"topology_path" mapstructure:"topology_path"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("SCEAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "sceap.db")
	v.SetDefault("sizing.standard", "IEC")
	v.SetDefault("sizing.clearing_time_secs", 1.0)
	v.SetDefault("sizing.concurrency", 8)
	v.SetDefault("routing.penalty_factor", 0.2)
	v.SetDefault("server.port", 8080)
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
