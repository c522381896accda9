// Freshness filter: routes previously-seen, recently-classified jobs
// around the whole analysis pipeline, not just around the LLM call.
package freshness

import (
	"context"
	"fmt"
	"log"
	"time"

	"remotejobs-engine/internal/domain"
	"remotejobs-engine/internal/history"
)

// Reasons a record was routed one way or the other.
const (
	ReasonNewJob     = "NEW_JOB"
	ReasonNoHistory  = "NO_HISTORY"
	ReasonParseError = "PARSE_ERROR"
	ReasonStale      = "STALE"
	ReasonRecent     = "RECENT"
	ReasonForced     = "REANALYSIS"
)

// History is the lookup side of the job history store.
type History interface {
	Get(ctx context.Context, url string) (history.Entry, bool, error)
}

type Filter struct {
	history History
	now     func() time.Time
}

func New(h History) *Filter {
	return &Filter{history: h, now: time.Now}
}

// Decision is the per-record routing verdict, kept for logging and the
// run report.
type Decision struct {
	Analyze bool
	Reason  string
}

// Decide routes one URL. Any anomaly (missing row, missing or
// unparseable last_seen, store error) fails open toward re-analysis:
// trusting possibly-corrupt cached data is the one mistake this stage
// must not make.
func (f *Filter) Decide(ctx context.Context, url string, lookback time.Duration) (Decision, history.Entry) {
	entry, ok, err := f.history.Get(ctx, url)
	if err != nil {
		log.Printf("[freshness] history lookup failed for %s: %v", url, err)
		return Decision{Analyze: true, Reason: ReasonNoHistory}, history.Entry{}
	}
	if !ok {
		return Decision{Analyze: true, Reason: ReasonNewJob}, history.Entry{}
	}
	if entry.LastSeen == "" {
		return Decision{Analyze: true, Reason: ReasonNoHistory}, entry
	}

	lastSeen, err := time.Parse(history.TimeLayout, entry.LastSeen)
	if err != nil {
		log.Printf("[freshness] bad last_seen for %s: %v", url, err)
		return Decision{Analyze: true, Reason: ReasonParseError}, entry
	}

	age := f.now().Sub(lastSeen)
	// Strictly greater than the lookback is stale; a job seen exactly
	// lookback hours ago still rides the cache.
	if age > lookback {
		return Decision{
			Analyze: true,
			Reason:  fmt.Sprintf("%s (%dh old)", ReasonStale, int(age.Hours())),
		}, entry
	}
	return Decision{
		Analyze: false,
		Reason:  fmt.Sprintf("%s (seen %dh ago)", ReasonRecent, int(age.Hours())),
	}, entry
}

// Split partitions scraped records into those that need the analysis
// pipeline and those that can reuse their historical verdict. Order is
// preserved within both partitions.
func (f *Filter) Split(ctx context.Context, records []domain.JobRecord, lookback time.Duration, forceReanalyze bool) (toAnalyze []domain.JobRecord, fromCache []domain.ClassifiedJob) {
	for _, rec := range records {
		rec = rec.Sanitize()

		if rec.URL == domain.Absent {
			// Without a URL there is nothing to look up.
			toAnalyze = append(toAnalyze, rec)
			continue
		}

		d, entry := f.Decide(ctx, rec.URL, lookback)
		if !d.Analyze && forceReanalyze {
			d = Decision{Analyze: true, Reason: ReasonForced + ": " + d.Reason}
		}

		if d.Analyze {
			toAnalyze = append(toAnalyze, rec)
			continue
		}

		fromCache = append(fromCache, hydrate(rec, entry, d.Reason))
	}
	return toAnalyze, fromCache
}

// Passthrough is the splitter used when incremental mode is off: every
// record is treated as new and analyzed.
type Passthrough struct{}

func (Passthrough) Split(_ context.Context, records []domain.JobRecord, _ time.Duration, _ bool) ([]domain.JobRecord, []domain.ClassifiedJob) {
	out := make([]domain.JobRecord, 0, len(records))
	for _, rec := range records {
		out = append(out, rec.Sanitize())
	}
	return out, nil
}

// hydrate rebuilds a classified job from its history row. Fields a
// listing page cannot supply are filled with the absent sentinel.
func hydrate(rec domain.JobRecord, entry history.Entry, reason string) domain.ClassifiedJob {
	rec.Category = domain.Absent
	rec.Poster = domain.Absent
	rec.DatePosted = domain.Absent

	return domain.ClassifiedJob{
		JobRecord: rec,
		Classification: domain.Classification{
			IsRemote:   entry.IsRemote,
			Confidence: domain.ConfidenceHistory,
			Reason:     "Cached from history: " + reason,
			Stage:      domain.StageHistoryCache,
		},
	}
}
