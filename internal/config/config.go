// Package config loads application configuration from file and environment
// and initializes the global logger.
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
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Travel     TravelConfig     `yaml:"travel" mapstructure:"travel"`
	Margin     MarginConfig     `yaml:"margin" mapstructure:"margin"`
	Simulation SimulationConfig `yaml:"simulation" mapstructure:"simulation"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Monitoring MonitoringConfig `yaml:"monitoring" mapstructure:"monitoring"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	SQLitePath  string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
}

// TravelConfig configures the travel-cost resolver cascade.
type TravelConfig struct {
	APIBaseURL        string      `yaml:"api_base_url" mapstructure:"api_base_url"`
	APIKey            string      `yaml:"api_key" mapstructure:"api_key"`
	RequestsPerSecond float64     `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	TimeoutSecs       int         `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	FallbackMinutes   float64     `yaml:"fallback_minutes" mapstructure:"fallback_minutes"`
	Cache             RedisConfig `yaml:"cache" mapstructure:"cache"`
}

// RedisConfig configures the travel-cost cache.
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled" mapstructure:"enabled"`
	Addr     string `yaml:"addr" mapstructure:"addr"`
	Password string `yaml:"password" mapstructure:"password"`
	DB       int    `yaml:"db" mapstructure:"db"`
	TTLHours int    `yaml:"ttl_hours" mapstructure:"ttl_hours"`
}

// MarginConfig holds the cost and revenue rates the margin estimator uses.
type MarginConfig struct {
	LaborRatePerHour       float64 `yaml:"labor_rate_per_hour" mapstructure:"labor_rate_per_hour"`
	EquipmentCostPerItem   float64 `yaml:"equipment_cost_per_item" mapstructure:"equipment_cost_per_item"`
	TravelCostPerMinute    float64 `yaml:"travel_cost_per_minute" mapstructure:"travel_cost_per_minute"`
	RevenuePerThousandSqFt float64 `yaml:"revenue_per_thousand_sqft" mapstructure:"revenue_per_thousand_sqft"`
	MinimumVisitRevenue    float64 `yaml:"minimum_visit_revenue" mapstructure:"minimum_visit_revenue"`
}

// SimulationConfig holds the generator defaults. Every field can be
// overridden per run.
type SimulationConfig struct {
	DateRangeDays        int `yaml:"date_range_days" mapstructure:"date_range_days"`
	SkillMatchMinPct     int `yaml:"skill_match_min_pct" mapstructure:"skill_match_min_pct"`
	EquipmentMatchMinPct int `yaml:"equipment_match_min_pct" mapstructure:"equipment_match_min_pct"`
	PersistTopN          int `yaml:"persist_top_n" mapstructure:"persist_top_n"`
	ReturnTopN           int `yaml:"return_top_n" mapstructure:"return_top_n"`
	Concurrency          int `yaml:"concurrency" mapstructure:"concurrency"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// MonitoringConfig configures the background health checker and its
// webhook alerting.
type MonitoringConfig struct {
	WebhookURL              string `yaml:"webhook_url" mapstructure:"webhook_url"`
	CheckIntervalSecs       int    `yaml:"check_interval_secs" mapstructure:"check_interval_secs"`
	PendingBacklogThreshold int    `yaml:"pending_backlog_threshold" mapstructure:"pending_backlog_threshold"`
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
	v.SetEnvPrefix("DISPATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("store.sqlite_path", "dispatch.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("travel.requests_per_second", 10)
	v.SetDefault("travel.timeout_secs", 10)
	v.SetDefault("travel.fallback_minutes", 15)
	v.SetDefault("travel.cache.enabled", false)
	v.SetDefault("travel.cache.addr", "localhost:6379")
	v.SetDefault("travel.cache.ttl_hours", 24)
	v.SetDefault("margin.labor_rate_per_hour", 35)
	v.SetDefault("margin.equipment_cost_per_item", 12)
	v.SetDefault("margin.travel_cost_per_minute", 0.9)
	v.SetDefault("margin.revenue_per_thousand_sqft", 18)
	v.SetDefault("margin.minimum_visit_revenue", 85)
	v.SetDefault("simulation.date_range_days", 7)
	v.SetDefault("simulation.skill_match_min_pct", 100)
	v.SetDefault("simulation.equipment_match_min_pct", 100)
	v.SetDefault("simulation.persist_top_n", 10)
	v.SetDefault("simulation.return_top_n", 3)
	v.SetDefault("simulation.concurrency", 4)
	v.SetDefault("monitoring.check_interval_secs", 300)
	v.SetDefault("monitoring.pending_backlog_threshold", 50)

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
