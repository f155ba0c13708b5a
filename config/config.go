package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"autoapply/model"
)

// GlobalConfig is the full runtime configuration, loaded from config.yaml.
type GlobalConfig struct {
	Run        RunConfig            `mapstructure:"run"`
	Automation AutomationConfig     `mapstructure:"automation"`
	Discovery  DiscoveryConfig      `mapstructure:"discovery"`
	Search     model.SearchCriteria `mapstructure:"search"`
	Storage    StorageConfig        `mapstructure:"storage"`
	LLM        LLMConfig            `mapstructure:"llm"`
	Profile    ProfileConfig        `mapstructure:"profile"`
	Resume     ResumeConfig         `mapstructure:"resume"`
}

// RunConfig bounds a single orchestrator run.
type RunConfig struct {
	Board               string `mapstructure:"board" validate:"required"`
	DryRun              bool   `mapstructure:"dryRun"`
	MaxApplications     int    `mapstructure:"maxApplications" validate:"gte=0"`
	KeepOpen            bool   `mapstructure:"keepOpen"`
	PauseOnVerification bool   `mapstructure:"pauseOnVerification"`
	LogDir              string `mapstructure:"logDir"`
}

// AutomationConfig selects and tunes the browser backend.
type AutomationConfig struct {
	Engine     string `mapstructure:"engine" validate:"oneof=playwright chromedp"`
	Headless   bool   `mapstructure:"headless"`
	SlowMoMs   int    `mapstructure:"slowMoMs" validate:"gte=0"`
	CookiePath string `mapstructure:"cookiePath"`
}

// DiscoveryConfig lists the company boards to poll for open listings.
type DiscoveryConfig struct {
	Greenhouse    []string `mapstructure:"greenhouse"`
	Lever         []string `mapstructure:"lever"`
	Ashby         []string `mapstructure:"ashby"`
	RatePerSecond float64  `mapstructure:"ratePerSecond" validate:"gte=0"`
}

// StorageConfig chooses the ledger backend.
type StorageConfig struct {
	Driver  string `mapstructure:"driver" validate:"oneof=file mysql memory"`
	DataDir string `mapstructure:"dataDir"`
	MySQL   MySQLConfig `mapstructure:"mysql"`
}

type MySQLConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
}

// DSN renders the gorm mysql connection string.
func (c MySQLConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.User, c.Password, c.Host, c.Port, c.Database)
}

// LLMConfig configures screening-answer generation. Disabled when APIKey is
// empty; the mapper then records missing-answer skips instead of guessing.
type LLMConfig struct {
	BaseURL     string `mapstructure:"baseUrl"`
	APIKey      string `mapstructure:"apiKey"`
	Model       string `mapstructure:"model"`
	MaxRequests int    `mapstructure:"maxRequests" validate:"gte=0"`
}

func (c LLMConfig) Enabled() bool {
	return c.APIKey != "" && c.Model != ""
}

// ProfileConfig points at the candidate profile document.
type ProfileConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// ResumeConfig lists resume files available for upload.
type ResumeConfig struct {
	Assets []model.ResumeAsset `mapstructure:"assets"`
}

// Default returns the default label's asset, or the first one.
func (c ResumeConfig) Default() *model.ResumeAsset {
	for i := range c.Assets {
		if c.Assets[i].IsDefault {
			return &c.Assets[i]
		}
	}
	if len(c.Assets) > 0 {
		return &c.Assets[0]
	}
	return nil
}

// InitConfig reads config.yaml from ./config, applies defaults and validates.
func InitConfig() (*GlobalConfig, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")

	viper.SetDefault("run.maxApplications", 1)
	viper.SetDefault("run.logDir", "logs")
	viper.SetDefault("automation.engine", "playwright")
	viper.SetDefault("automation.headless", false)
	viper.SetDefault("discovery.ratePerSecond", 1)
	viper.SetDefault("storage.driver", "file")
	viper.SetDefault("storage.dataDir", "data")
	viper.SetDefault("llm.maxRequests", 8)

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg GlobalConfig
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate enforces structural constraints on a loaded configuration.
func Validate(cfg *GlobalConfig) error {
	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if cfg.Storage.Driver == "mysql" && cfg.Storage.MySQL.Database == "" {
		return fmt.Errorf("invalid config: storage.mysql.database required for mysql driver")
	}
	return nil
}
