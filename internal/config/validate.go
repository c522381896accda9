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

// NormalizeAndValidate returns a normalized copy plus anything a run
// should refuse to start on (errors) or log about (warnings).
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	var out = cfg
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

	out.Scraping.Sites = trimList(out.Scraping.Sites)
	out.Keywords.OnsiteHigh = trimList(out.Keywords.OnsiteHigh)
	out.Keywords.RemoteStrong = trimList(out.Keywords.RemoteStrong)
	out.Keywords.OnsiteStrong = trimList(out.Keywords.OnsiteStrong)
	out.Keywords.RemoteCategories = trimList(out.Keywords.RemoteCategories)

	if len(out.Scraping.Sites) == 0 {
		res.addErr("scraping.sites is empty: nothing to scrape")
	}
	if out.Scraping.DailyQuota <= 0 {
		res.addErr("scraping.daily_quota must be > 0")
	}
	if out.Scraping.MaxPagesPerSite <= 0 {
		res.addErr("scraping.max_pages_per_site must be > 0")
	}
	if out.Scraping.LookbackHours <= 0 {
		res.addErr("scraping.lookback_hours must be > 0")
	}
	if out.Scraping.RequestsPerSecond > 5 {
		res.addWarn("scraping.requests_per_second is high (%.1f); sites may block you.", out.Scraping.RequestsPerSecond)
	}
	if out.Analysis.MaxRetries > 5 {
		res.addWarn("analysis.max_retries is high (%d); backoff delays compound quickly.", out.Analysis.MaxRetries)
	}
	if out.Analysis.CacheMaxAgeDays < 1 {
		res.addErr("analysis.cache_max_age_days must be >= 1")
	}
	if len(out.Keywords.OnsiteHigh) == 0 {
		res.addWarn("keywords.onsite_high is empty; the pre-filter will route every job to semantic analysis.")
	}

	return out, res
}
