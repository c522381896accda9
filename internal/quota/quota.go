// Quota-aware scraping: a shared daily budget of analysis slots is
// spent page by page across the configured sites.
package quota

import (
	"context"
	"log"
	"time"

	"remotejobs-engine/internal/domain"
	"remotejobs-engine/internal/scrape/types"
)

// Splitter separates a page of records into those needing analysis and
// those whose historical verdict can be reused.
type Splitter interface {
	Split(ctx context.Context, records []domain.JobRecord, lookback time.Duration, forceReanalyze bool) ([]domain.JobRecord, []domain.ClassifiedJob)
}

// Runner walks sites in order. Each site's budget is an equal split of
// whatever remains when its turn comes, so budget a site couldn't spend
// flows forward to later sites.
type Runner struct {
	Quota          int
	MaxPages       int // 0 means no page limit
	Lookback       time.Duration
	ForceReanalyze bool
	Splitter       Splitter
}

// Result is everything one allocator run produced.
type Result struct {
	Scraped   []domain.JobRecord     // every record seen, pre-filtering
	ToAnalyze []domain.JobRecord     // new records, within budget
	FromCache []domain.ClassifiedJob // verdicts reused from history
	QuotaUsed int
	Sites     []types.SiteStatus
}

func (r *Runner) Run(ctx context.Context, scrapers []types.SiteScraper) Result {
	var out Result
	remaining := r.Quota

	for i, sc := range scrapers {
		if remaining <= 0 {
			log.Printf("[quota] budget exhausted, skipping %s and all later sites", sc.Name())
			break
		}
		budget := remaining / (len(scrapers) - i)
		status := types.SiteStatus{Site: sc.Name(), Budget: budget}
		log.Printf("[quota] [%d/%d] %s: budget %d, remaining %d/%d",
			i+1, len(scrapers), sc.Name(), budget, remaining, r.Quota)

		var siteNew []domain.JobRecord
		for page := 1; ; page++ {
			if r.MaxPages > 0 && page > r.MaxPages {
				break
			}
			if len(siteNew) >= budget {
				break
			}

			records, hasMore, err := sc.ScrapePage(ctx, page)
			if err != nil {
				// One broken page ends this site, not the run.
				log.Printf("[quota] %s page %d: %v", sc.Name(), page, err)
				status.LastError = err.Error()
				break
			}
			status.PagesFetched++
			if len(records) == 0 {
				break
			}
			out.Scraped = append(out.Scraped, records...)
			status.Scraped += len(records)

			pageNew, pageCached := r.Splitter.Split(ctx, records, r.Lookback, r.ForceReanalyze)

			// Cached verdicts are free; only new records spend budget.
			out.FromCache = append(out.FromCache, pageCached...)
			status.CachedJobs += len(pageCached)

			space := budget - len(siteNew)
			if space > len(pageNew) {
				space = len(pageNew)
			}
			if space < len(pageNew) {
				log.Printf("[quota] %s page %d: taking %d/%d new jobs (budget)",
					sc.Name(), page, space, len(pageNew))
			}
			siteNew = append(siteNew, pageNew[:space]...)

			if !hasMore {
				break
			}
		}

		out.ToAnalyze = append(out.ToAnalyze, siteNew...)
		status.NewJobs = len(siteNew)
		remaining -= len(siteNew)
		out.Sites = append(out.Sites, status)
		log.Printf("[quota] %s: scraped %d, new %d, cached %d, remaining %d",
			sc.Name(), status.Scraped, status.NewJobs, status.CachedJobs, remaining)
	}

	out.QuotaUsed = r.Quota - remaining
	return out
}
