// Pipeline: one full run from scraping through classification to the
// exported artifacts. Stages fail soft; only export errors abort.
package pipeline

import (
	"context"
	"log"
	"time"

	"remotejobs-engine/internal/describe"
	"remotejobs-engine/internal/domain"
	"remotejobs-engine/internal/export"
	"remotejobs-engine/internal/fingerprint"
	"remotejobs-engine/internal/history"
	"remotejobs-engine/internal/metrics"
	"remotejobs-engine/internal/prefilter"
	"remotejobs-engine/internal/quota"
	"remotejobs-engine/internal/scrape/types"
)

// Semantic is the classification gateway (cache, external service,
// offline fallback).
type Semantic interface {
	Classify(ctx context.Context, title, description, location, price string) domain.Classification
	CacheStats() fingerprint.Stats
}

// History is the sighting log consulted for export metadata and updated
// after every run.
type History interface {
	Sighting(ctx context.Context, url, title string, isRemote bool, now time.Time) error
	AnalyzePatterns(ctx context.Context, now time.Time) (history.Patterns, error)
}

type Exporter interface {
	WriteAll(env export.Envelope, run *metrics.RunMetrics) error
}

type Pipeline struct {
	Scrapers  []types.SiteScraper
	Allocator *quota.Runner
	Prefilter *prefilter.Classifier
	Describe  *describe.Completer
	Semantic  Semantic
	History   History
	Exporter  Exporter

	UseLLM      bool
	Incremental bool

	now func() time.Time
}

func New() *Pipeline {
	return &Pipeline{now: time.Now}
}

// Run executes one full cycle and returns its metrics. Per-record and
// per-site failures are folded into the metrics; only a failed export
// returns an error.
func (p *Pipeline) Run(ctx context.Context) (*metrics.RunMetrics, error) {
	if p.now == nil {
		p.now = time.Now
	}
	start := p.now()
	m := metrics.New(start)
	m.IncrementalEnabled = p.Incremental

	log.Printf("[pipeline] starting run: %d sites", len(p.Scrapers))

	res := p.Allocator.Run(ctx, p.Scrapers)
	m.JobsScraped = len(res.Scraped)
	m.NewJobs = len(res.ToAnalyze)
	m.CachedJobs = len(res.FromCache)
	m.QuotaUsed = res.QuotaUsed
	m.Sites = res.Sites
	for _, st := range res.Sites {
		if st.LastError != "" {
			m.Errors = append(m.Errors, st.Site+": "+st.LastError)
		}
	}

	var stats export.Statistics
	classified := make([]domain.ClassifiedJob, 0, len(res.ToAnalyze)+len(res.FromCache))

	for _, rec := range res.ToAnalyze {
		verdict := p.Prefilter.Classify(rec.Title, rec.Description, rec.Location)

		if domain.TierFor(verdict.Confidence) != domain.TierHigh {
			// Uncertain record: give the semantic stage the best
			// description we can get first.
			if p.Describe.NeedsFetch(rec.Description) {
				if full := p.Describe.Complete(ctx, rec); full != rec.Description {
					rec.Description = full
					stats.FullDescriptionFetched++
				}
			}
			verdict = p.Semantic.Classify(ctx, rec.Title, rec.Description, rec.Location, rec.Price)
			if verdict.Stage == domain.StageSemanticLive {
				stats.AnalyzedWithLLM++
				m.LLMCalls++
			}
		} else {
			stats.HighConfidenceSkip++
		}

		m.Observe(verdict)
		m.JobsAnalyzed++
		classified = append(classified, domain.ClassifiedJob{JobRecord: rec, Classification: verdict})
	}

	// Cached verdicts ride along after the analyzed ones, keeping site
	// order within each group.
	for _, job := range res.FromCache {
		m.Observe(job.Classification)
		classified = append(classified, job)
	}

	p.recordSightings(ctx, classified, m)

	stats.Total = len(classified)
	stats.Remote = m.RemoteJobs
	stats.OnSite = stats.Total - stats.Remote
	if stats.Total > 0 {
		stats.RemotePercentage = 100 * float64(stats.Remote) / float64(stats.Total)
	}

	m.CacheStats = p.Semantic.CacheStats()

	patterns, err := p.History.AnalyzePatterns(ctx, p.now())
	if err != nil {
		log.Printf("[pipeline] history analytics failed: %v", err)
		m.AddError(err)
	}

	env := export.Envelope{
		Metadata: export.Metadata{
			ExportDate:   start.Format("2006-01-02 15:04:05"),
			TotalJobs:    stats.Total,
			AnalysisMode: analysisMode(p.UseLLM),
			HistoryStats: patterns,
		},
		Statistics: stats,
		Jobs:       classified,
	}

	m.Finish(p.now())
	if err := p.Exporter.WriteAll(env, m); err != nil {
		return m, err
	}

	log.Printf("[pipeline] run done in %ds: %d scraped, %d analyzed, %d cached, %d remote",
		m.DurationSeconds, m.JobsScraped, m.JobsAnalyzed, m.CachedJobs, m.RemoteJobs)
	return m, nil
}

// recordSightings logs every classified job so the next run's freshness
// filter can skip it.
func (p *Pipeline) recordSightings(ctx context.Context, jobs []domain.ClassifiedJob, m *metrics.RunMetrics) {
	now := p.now()
	for _, j := range jobs {
		if j.URL == domain.Absent || j.URL == "" {
			continue
		}
		if err := p.History.Sighting(ctx, j.URL, j.Title, j.IsRemote, now); err != nil {
			log.Printf("[pipeline] sighting failed for %s: %v", j.URL, err)
			m.AddError(err)
		}
	}
}

func analysisMode(useLLM bool) string {
	if useLLM {
		return "LLM-Enhanced"
	}
	return "Keyword-Only"
}
