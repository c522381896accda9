// Run metrics: the operational summary written next to each export.
package metrics

import (
	"time"

	"remotejobs-engine/internal/domain"
	"remotejobs-engine/internal/fingerprint"
	"remotejobs-engine/internal/scrape/types"
)

type ConfidenceDistribution struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

type RunMetrics struct {
	Timestamp       time.Time `json:"timestamp"`
	DurationSeconds int       `json:"duration_seconds"`

	JobsScraped  int `json:"jobs_scraped"`
	JobsAnalyzed int `json:"jobs_analyzed"`
	NewJobs      int `json:"new_jobs"`
	CachedJobs   int `json:"cached_jobs"`
	RemoteJobs   int `json:"remote_jobs"`
	LLMCalls     int `json:"llm_calls"`
	QuotaUsed    int `json:"quota_used"`

	IncrementalEnabled bool `json:"incremental_enabled"`

	CacheStats             fingerprint.Stats      `json:"cache_stats"`
	ConfidenceDistribution ConfidenceDistribution `json:"confidence_distribution"`

	Sites  []types.SiteStatus `json:"sites"`
	Errors []string           `json:"errors,omitempty"`
}

func New(now time.Time) *RunMetrics {
	return &RunMetrics{Timestamp: now}
}

// Observe folds one final verdict into the distribution counters.
func (m *RunMetrics) Observe(c domain.Classification) {
	switch domain.TierFor(c.Confidence) {
	case domain.TierHigh:
		m.ConfidenceDistribution.High++
	case domain.TierMedium:
		m.ConfidenceDistribution.Medium++
	default:
		m.ConfidenceDistribution.Low++
	}
	if c.IsRemote {
		m.RemoteJobs++
	}
}

func (m *RunMetrics) AddError(err error) {
	if err != nil {
		m.Errors = append(m.Errors, err.Error())
	}
}

func (m *RunMetrics) Finish(now time.Time) {
	m.DurationSeconds = int(now.Sub(m.Timestamp).Seconds())
}
