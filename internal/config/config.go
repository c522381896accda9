// internal/config/config.go
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		DataDir   string `yaml:"data_dir"`
		ExportDir string `yaml:"export_dir"`
	} `yaml:"app"`

	Scraping struct {
		Sites             []string `yaml:"sites"`
		MaxPagesPerSite   int      `yaml:"max_pages_per_site"`
		DailyQuota        int      `yaml:"daily_quota"`
		LookbackHours     int      `yaml:"lookback_hours"`
		RequestsPerSecond float64  `yaml:"requests_per_second"`
		FetchTimeoutSecs  int      `yaml:"fetch_timeout_seconds"`
	} `yaml:"scraping"`

	Analysis struct {
		UseLLM            bool   `yaml:"use_llm"`
		Model             string `yaml:"model"`
		MinDescriptionLen int    `yaml:"min_description_length"`
		CacheMaxAgeDays   int    `yaml:"cache_max_age_days"`
		MaxRetries        int    `yaml:"max_retries"`
		RetryBaseDelaySec int    `yaml:"retry_base_delay_seconds"`
	} `yaml:"analysis"`

	Keywords struct {
		OnsiteHigh       []string `yaml:"onsite_high"`
		RemoteStrong     []string `yaml:"remote_strong"`
		OnsiteStrong     []string `yaml:"onsite_strong"`
		RemoteCategories []string `yaml:"remote_categories"`
	} `yaml:"keywords"`
}

func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.App.DataDir == "" {
		c.App.DataDir = "."
	}
	if c.App.ExportDir == "" {
		c.App.ExportDir = "exports"
	}
	if c.Scraping.MaxPagesPerSite == 0 {
		c.Scraping.MaxPagesPerSite = 10
	}
	if c.Scraping.DailyQuota == 0 {
		c.Scraping.DailyQuota = 250
	}
	if c.Scraping.LookbackHours == 0 {
		c.Scraping.LookbackHours = 24
	}
	if c.Scraping.RequestsPerSecond == 0 {
		c.Scraping.RequestsPerSecond = 2
	}
	if c.Scraping.FetchTimeoutSecs == 0 {
		c.Scraping.FetchTimeoutSecs = 30
	}
	if c.Analysis.Model == "" {
		c.Analysis.Model = "moonshotai/kimi-k2-instruct"
	}
	if c.Analysis.MinDescriptionLen == 0 {
		c.Analysis.MinDescriptionLen = 100
	}
	if c.Analysis.CacheMaxAgeDays == 0 {
		c.Analysis.CacheMaxAgeDays = 30
	}
	if c.Analysis.MaxRetries == 0 {
		c.Analysis.MaxRetries = 3
	}
	if c.Analysis.RetryBaseDelaySec == 0 {
		c.Analysis.RetryBaseDelaySec = 2
	}
	if len(c.Keywords.OnsiteHigh) == 0 {
		c.Keywords.OnsiteHigh = DefaultOnsiteHigh()
	}
	if len(c.Keywords.RemoteStrong) == 0 {
		c.Keywords.RemoteStrong = DefaultRemoteStrong()
	}
	if len(c.Keywords.OnsiteStrong) == 0 {
		c.Keywords.OnsiteStrong = DefaultOnsiteStrong()
	}
	if len(c.Keywords.RemoteCategories) == 0 {
		c.Keywords.RemoteCategories = DefaultRemoteCategories()
	}
}
