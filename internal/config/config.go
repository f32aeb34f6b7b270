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
	HubSpot  HubSpotConfig  `yaml:"hubspot" mapstructure:"hubspot"`
	Aircall  AircallConfig  `yaml:"aircall" mapstructure:"aircall"`
	OpenAI   OpenAIConfig   `yaml:"openai" mapstructure:"openai"`
	Dealer   DealerConfig   `yaml:"dealer" mapstructure:"dealer"`
	Roster   RosterConfig   `yaml:"roster" mapstructure:"roster"`
	SMS      SMSConfig      `yaml:"sms" mapstructure:"sms"`
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Pipeline PipelineConfig `yaml:"pipeline" mapstructure:"pipeline"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// HubSpotConfig holds HubSpot CRM API settings and pipeline identifiers.
type HubSpotConfig struct {
	Token        string `yaml:"token" mapstructure:"token"`
	BaseURL      string `yaml:"base_url" mapstructure:"base_url"`
	PageLimit    int    `yaml:"page_limit" mapstructure:"page_limit"`
	TotalCap     int    `yaml:"total_cap" mapstructure:"total_cap"`
	RateLimitRPS int    `yaml:"rate_limit_rps" mapstructure:"rate_limit_rps"`

	PipelineID     string `yaml:"pipeline_id" mapstructure:"pipeline_id"`
	StageEnquiry   string `yaml:"stage_enquiry" mapstructure:"stage_enquiry"`
	StageBooked    string `yaml:"stage_booked" mapstructure:"stage_booked"`
	StageConducted string `yaml:"stage_conducted" mapstructure:"stage_conducted"`

	// ActivePurchaseStages are deal stage IDs, across all pipelines,
	// that mean a purchase is already in flight.
	ActivePurchaseStages []string `yaml:"active_purchase_stages" mapstructure:"active_purchase_stages"`
}

// AircallConfig holds Aircall SMS API settings.
type AircallConfig struct {
	ID             string `yaml:"id" mapstructure:"id"`
	Token          string `yaml:"token" mapstructure:"token"`
	BaseURL        string `yaml:"base_url" mapstructure:"base_url"`
	ReminderNumber string `yaml:"reminder_number" mapstructure:"reminder_number"`
	OutreachNumber string `yaml:"outreach_number" mapstructure:"outreach_number"`
}

// OpenAIConfig holds OpenAI API settings.
type OpenAIConfig struct {
	Key string `yaml:"key" mapstructure:"key"`
	// Models are tried in order until one accepts the request.
	Models []string `yaml:"models" mapstructure:"models"`
}

// DealerConfig identifies the dealership on whose behalf SMS are sent.
type DealerConfig struct {
	Name        string `yaml:"name" mapstructure:"name"`
	ManagerName string `yaml:"manager_name" mapstructure:"manager_name"`
	Timezone    string `yaml:"timezone" mapstructure:"timezone"`
	// BlacklistDomains are email domains treated as internal/test traffic.
	BlacklistDomains []string `yaml:"blacklist_domains" mapstructure:"blacklist_domains"`
}

// RosterConfig configures where associate availability comes from.
type RosterConfig struct {
	// Source is "xlsx" or "fixed".
	Source string `yaml:"source" mapstructure:"source"`
	Path   string `yaml:"path" mapstructure:"path"`
	// Fixed is "Name <email>" entries used when Source is "fixed";
	// fixed associates are treated as available every day.
	Fixed []string `yaml:"fixed" mapstructure:"fixed"`
}

// SMSConfig configures dispatch behavior.
type SMSConfig struct {
	// PaceSecs is the delay between consecutive sends.
	PaceSecs int  `yaml:"pace_secs" mapstructure:"pace_secs"`
	DryRun   bool `yaml:"dry_run" mapstructure:"dry_run"`
	MaxChars int  `yaml:"max_chars" mapstructure:"max_chars"`
}

// StoreConfig configures the local run history database.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// PipelineConfig configures fetch and filter behavior.
type PipelineConfig struct {
	// LookbackDays bounds the conducted-date range for follow-up and
	// unsold workflows.
	LookbackDays int `yaml:"lookback_days" mapstructure:"lookback_days"`
	// AuditDir is where removal and dispatch CSVs are written.
	AuditDir string `yaml:"audit_dir" mapstructure:"audit_dir"`
}

// ServerConfig configures the status HTTP server.
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
	v.SetEnvPrefix("CONNECTOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("hubspot.base_url", "https://api.hubapi.com")
	v.SetDefault("hubspot.page_limit", 100)
	v.SetDefault("hubspot.total_cap", 1000)
	v.SetDefault("hubspot.rate_limit_rps", 8)
	v.SetDefault("hubspot.pipeline_id", "2345821")
	v.SetDefault("hubspot.stage_enquiry", "1119198251")
	v.SetDefault("hubspot.stage_booked", "1119198252")
	v.SetDefault("hubspot.stage_conducted", "1119198253")
	v.SetDefault("hubspot.active_purchase_stages", []string{
		"8082239", "8082240", "8082241", "8082242", "8082243",
		"8406593", "14816089", "14804235", "14804236", "14804237",
		"14804238", "14804239", "14804240",
	})
	v.SetDefault("aircall.base_url", "https://api.aircall.io/v1")
	v.SetDefault("openai.models", []string{"gpt-4o-mini", "o4-mini", "gpt-4o", "gpt-3.5-turbo"})
	v.SetDefault("dealer.name", "Cars24 Laverton")
	v.SetDefault("dealer.manager_name", "Pawan")
	v.SetDefault("dealer.timezone", "Australia/Melbourne")
	v.SetDefault("dealer.blacklist_domains", []string{"cars24.com", "yopmail.com"})
	v.SetDefault("roster.source", "xlsx")
	v.SetDefault("roster.path", "roster.xlsx")
	v.SetDefault("sms.pace_secs", 1)
	v.SetDefault("sms.dry_run", false)
	v.SetDefault("sms.max_chars", 400)
	v.SetDefault("store.path", "connector.db")
	v.SetDefault("pipeline.lookback_days", 7)
	v.SetDefault("pipeline.audit_dir", "audit")

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
