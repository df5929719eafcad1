package main

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type AliasOverride struct {
	LastName string `yaml:"last_name"`
	Alias    string `yaml:"alias"`
}

type Config struct {
	SlackBotToken string `yaml:"slack_bot_token"`
	SlackAppToken string `yaml:"slack_app_token"`
	BotUserID     string `yaml:"bot_user_id"`

	PapersChannelID string `yaml:"papers_channel_id"`

	ADSToken   string `yaml:"ads_token"`
	ADSBaseURL string `yaml:"ads_base_url"`

	DBPath string `yaml:"db_path"`

	RoundUpSchedule     string `yaml:"round_up_schedule"`
	SearchWindowWeeks   int    `yaml:"search_window_weeks"`
	AstronomyCollection bool   `yaml:"astronomy_collection"`

	AllowedDocTypes []string        `yaml:"allowed_doc_types"`
	AliasOverrides  []AliasOverride `yaml:"alias_overrides"`

	Timezone string `yaml:"timezone"`
	Location *time.Location
}

func LoadConfig() Config {
	cfg := Config{AstronomyCollection: true}

	configPath := "config.yaml"
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		configPath = envPath
	}
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			log.Fatalf("Error parsing %s: %v", configPath, err)
		}
		log.Printf("Loaded config from %s", configPath)
	}

	// Env vars override YAML values
	envOverride(&cfg.SlackBotToken, "SLACK_BOT_TOKEN")
	envOverride(&cfg.SlackAppToken, "SLACK_APP_TOKEN")
	envOverride(&cfg.BotUserID, "BOT_USER_ID")
	envOverride(&cfg.PapersChannelID, "PAPERS_CHANNEL_ID")
	envOverride(&cfg.ADSToken, "ADS_TOKEN")
	envOverride(&cfg.ADSBaseURL, "ADS_BASE_URL")
	envOverride(&cfg.DBPath, "DB_PATH")
	envOverride(&cfg.RoundUpSchedule, "ROUND_UP_SCHEDULE")
	envOverrideInt(&cfg.SearchWindowWeeks, "SEARCH_WINDOW_WEEKS")
	envOverride(&cfg.Timezone, "TIMEZONE")

	// Defaults
	if cfg.ADSBaseURL == "" {
		cfg.ADSBaseURL = "https://api.adsabs.harvard.edu/v1/search/query"
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "./paperbot.db"
	}
	if cfg.RoundUpSchedule == "" {
		// Wednesday mornings.
		cfg.RoundUpSchedule = "32 9 * * 3"
	}
	if cfg.SearchWindowWeeks == 0 {
		cfg.SearchWindowWeeks = 4
	}
	if len(cfg.AllowedDocTypes) == 0 {
		cfg.AllowedDocTypes = []string{"article", "eprint"}
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "Local"
	}

	// Validate required fields
	required := map[string]string{
		"slack_bot_token":   cfg.SlackBotToken,
		"slack_app_token":   cfg.SlackAppToken,
		"papers_channel_id": cfg.PapersChannelID,
		"ads_token":         cfg.ADSToken,
	}
	for name, val := range required {
		if val == "" {
			log.Fatalf("Required config '%s' is not set (via config.yaml or env var)", name)
		}
	}

	if strings.EqualFold(cfg.Timezone, "Local") {
		cfg.Location = time.Local
	} else {
		loc, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			log.Fatalf("invalid timezone '%s': %v", cfg.Timezone, err)
		}
		cfg.Location = loc
	}

	if cfg.SearchWindowWeeks < 1 {
		log.Fatalf("invalid search_window_weeks '%d': must be >= 1", cfg.SearchWindowWeeks)
	}
	for _, ov := range cfg.AliasOverrides {
		if strings.TrimSpace(ov.LastName) == "" || strings.TrimSpace(ov.Alias) == "" {
			log.Fatalf("invalid alias_overrides entry: last_name and alias are both required")
		}
	}

	return cfg
}

// AliasMap groups configured alias overrides by normalized last name.
func (c Config) AliasMap() map[string][]string {
	if len(c.AliasOverrides) == 0 {
		return nil
	}
	out := make(map[string][]string, len(c.AliasOverrides))
	for _, ov := range c.AliasOverrides {
		key := normalizeLastName(ov.LastName)
		out[key] = append(out[key], strings.ToLower(strings.TrimSpace(ov.Alias)))
	}
	return out
}

func envOverride(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}

func envOverrideInt(field *int, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			log.Fatalf("invalid %s '%s': %v", envKey, val, err)
		}
		*field = parsed
	}
}
