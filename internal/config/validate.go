package config

import (
	"fmt"
	"strings"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate trims list inputs and checks the config before any
// network activity happens. A missing location is a hard error; everything
// else that is merely suspicious becomes a warning.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	out := cfg
	var res Validation

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.TrimSpace(x)
			if x == "" {
				continue
			}
			key := strings.ToLower(x)
			if seen[key] {
				continue
			}
			seen[key] = true
			ys = append(ys, x)
		}
		return ys
	}

	out.SearchCriteria.Location = strings.TrimSpace(out.SearchCriteria.Location)
	out.SearchCriteria.Neighborhoods = trimList(out.SearchCriteria.Neighborhoods)
	out.NotificationSettings.NotificationType = strings.ToLower(strings.TrimSpace(out.NotificationSettings.NotificationType))

	// ---- Validation rules ----

	if out.SearchCriteria.Location == "" {
		res.addErr("search_criteria.location is required")
	}

	checkRange := func(name string, r Range) {
		if r.Min != nil && r.Max != nil && *r.Min > *r.Max {
			res.addErr("search_criteria.%s: min (%g) cannot be greater than max (%g)", name, *r.Min, *r.Max)
		}
	}
	checkRange("price_range", out.SearchCriteria.PriceRange)
	checkRange("bedrooms", out.SearchCriteria.Bedrooms)
	checkRange("bathrooms", out.SearchCriteria.Bathrooms)
	checkRange("square_feet", out.SearchCriteria.SquareFeet)

	if out.ScraperSettings.CheckIntervalMinutes <= 0 {
		res.addErr("scraper_settings.check_interval_minutes must be > 0")
	}
	if out.ScraperSettings.MaxRetries < 0 {
		res.addErr("scraper_settings.max_retries cannot be negative")
	}
	if out.ScraperSettings.TimeoutSeconds <= 0 {
		res.addErr("scraper_settings.timeout_seconds must be > 0")
	}
	if out.ScraperSettings.PageDelaySeconds < 1 {
		res.addWarn("scraper_settings.page_delay_seconds is %d; fetching pages back-to-back tends to trip bot detection.",
			out.ScraperSettings.PageDelaySeconds)
	}
	if out.ScraperSettings.NeighborhoodDelaySeconds < 1 {
		res.addWarn("scraper_settings.neighborhood_delay_seconds is %d; consider keeping a pause between neighborhoods.",
			out.ScraperSettings.NeighborhoodDelaySeconds)
	}
	if out.ScraperSettings.ParallelNeighborhoods && len(out.SearchCriteria.Neighborhoods) == 0 {
		res.addWarn("parallel_neighborhoods is enabled but no neighborhoods are configured; the whole city is one target.")
	}

	switch out.NotificationSettings.NotificationType {
	case "console", "sms":
	default:
		res.addErr("notification_settings.notification_type must be \"console\" or \"sms\", got %q",
			out.NotificationSettings.NotificationType)
	}
	if out.NotificationSettings.MaxListingsPerNotification <= 0 {
		res.addErr("notification_settings.max_listings_per_notification must be > 0")
	}

	if strings.TrimSpace(out.DatabaseSettings.DBPath) == "" {
		res.addErr("database_settings.db_path is required")
	}
	if out.DatabaseSettings.RetentionDays <= 0 {
		res.addErr("database_settings.retention_days must be > 0")
	}

	return out, res
}
