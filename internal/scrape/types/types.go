package types

import (
	"context"

	"remotejobs-engine/internal/domain"
)

// SiteScraper is one job platform. ScrapePage fetches page (1-based)
// and reports whether more pages are likely available.
type SiteScraper interface {
	Name() string
	ScrapePage(ctx context.Context, page int) ([]domain.JobRecord, bool, error)
}

// SiteStatus is the per-site outcome of a run, kept for the run report.
type SiteStatus struct {
	Site         string `json:"site"`
	PagesFetched int    `json:"pages_fetched"`
	Scraped      int    `json:"scraped"`
	NewJobs      int    `json:"new_jobs"`
	CachedJobs   int    `json:"cached_jobs"`
	Budget       int    `json:"budget"`
	LastError    string `json:"last_error,omitempty"`
}
