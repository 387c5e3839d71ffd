package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Range is a numeric bound pair; a nil side is unconstrained.
type Range struct {
	Min *float64 `yaml:"min" json:"min,omitempty"`
	Max *float64 `yaml:"max" json:"max,omitempty"`
}

type SearchCriteria struct {
	Location      string   `yaml:"location" json:"location"`
	Neighborhoods []string `yaml:"neighborhoods" json:"neighborhoods,omitempty"`
	PriceRange    Range    `yaml:"price_range" json:"priceRange"`
	Bedrooms      Range    `yaml:"bedrooms" json:"bedrooms"`
	Bathrooms     Range    `yaml:"bathrooms" json:"bathrooms"`
	SquareFeet    Range    `yaml:"square_feet" json:"squareFeet"`
}

type ScraperSettings struct {
	CheckIntervalMinutes     int  `yaml:"check_interval_minutes" json:"checkIntervalMinutes"`
	MaxRetries               int  `yaml:"max_retries" json:"maxRetries"`
	TimeoutSeconds           int  `yaml:"timeout_seconds" json:"timeoutSeconds"`
	Headless                 bool `yaml:"headless" json:"headless"`
	ParallelNeighborhoods    bool `yaml:"parallel_neighborhoods" json:"parallelNeighborhoods"`
	PageDelaySeconds         int  `yaml:"page_delay_seconds" json:"pageDelaySeconds"`
	NeighborhoodDelaySeconds int  `yaml:"neighborhood_delay_seconds" json:"neighborhoodDelaySeconds"`
	DetailPageDelayMin       int  `yaml:"detail_page_delay_min" json:"detailPageDelayMin"`
	DetailPageDelayMax       int  `yaml:"detail_page_delay_max" json:"detailPageDelayMax"`
}

type NotificationSettings struct {
	Enabled                    bool   `yaml:"enabled" json:"enabled"`
	NotificationType           string `yaml:"notification_type" json:"notificationType"` // console | sms
	MaxListingsPerNotification int    `yaml:"max_listings_per_notification" json:"maxListingsPerNotification"`
}

type DatabaseSettings struct {
	DBPath        string `yaml:"db_path" json:"dbPath"`
	RetentionDays int    `yaml:"retention_days" json:"retentionDays"`
}

type Config struct {
	SearchCriteria       SearchCriteria       `yaml:"search_criteria" json:"searchCriteria"`
	ScraperSettings      ScraperSettings      `yaml:"scraper_settings" json:"scraperSettings"`
	NotificationSettings NotificationSettings `yaml:"notification_settings" json:"notificationSettings"`
	DatabaseSettings     DatabaseSettings     `yaml:"database_settings" json:"databaseSettings"`
}

// Default returns a Config with every optional key at its documented
// default. Load unmarshals on top of this, so absent keys keep their
// defaults and only keys present in the file override them.
func Default() Config {
	var cfg Config
	cfg.ScraperSettings.CheckIntervalMinutes = 30
	cfg.ScraperSettings.MaxRetries = 3
	cfg.ScraperSettings.TimeoutSeconds = 30
	cfg.ScraperSettings.Headless = true
	cfg.ScraperSettings.ParallelNeighborhoods = false
	cfg.ScraperSettings.PageDelaySeconds = 3
	cfg.ScraperSettings.NeighborhoodDelaySeconds = 5
	cfg.ScraperSettings.DetailPageDelayMin = 5
	cfg.ScraperSettings.DetailPageDelayMax = 10
	cfg.NotificationSettings.Enabled = true
	cfg.NotificationSettings.NotificationType = "console"
	cfg.NotificationSettings.MaxListingsPerNotification = 10
	cfg.DatabaseSettings.DBPath = "data/listings.db"
	cfg.DatabaseSettings.RetentionDays = 30
	return cfg
}

func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}
