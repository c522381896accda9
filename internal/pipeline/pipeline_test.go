package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

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

type fakeSite struct {
	name  string
	pages [][]domain.JobRecord
}

func (f *fakeSite) Name() string { return f.name }

func (f *fakeSite) ScrapePage(_ context.Context, page int) ([]domain.JobRecord, bool, error) {
	if page > len(f.pages) {
		return nil, false, nil
	}
	return f.pages[page-1], page < len(f.pages), nil
}

type fakeSplitter struct {
	cached map[string]domain.Classification
}

func (f fakeSplitter) Split(_ context.Context, records []domain.JobRecord, _ time.Duration, _ bool) ([]domain.JobRecord, []domain.ClassifiedJob) {
	var fresh []domain.JobRecord
	var reused []domain.ClassifiedJob
	for _, r := range records {
		if c, ok := f.cached[r.URL]; ok {
			reused = append(reused, domain.ClassifiedJob{JobRecord: r, Classification: c})
		} else {
			fresh = append(fresh, r)
		}
	}
	return fresh, reused
}

type fakeSemantic struct {
	calls  []string
	result domain.Classification
}

func (f *fakeSemantic) Classify(_ context.Context, title, _, _, _ string) domain.Classification {
	f.calls = append(f.calls, title)
	return f.result
}

func (f *fakeSemantic) CacheStats() fingerprint.Stats { return fingerprint.Stats{} }

type fakeHistory struct {
	sightings []string
	patterns  history.Patterns
}

func (f *fakeHistory) Sighting(_ context.Context, url, _ string, _ bool, _ time.Time) error {
	f.sightings = append(f.sightings, url)
	return nil
}

func (f *fakeHistory) AnalyzePatterns(_ context.Context, _ time.Time) (history.Patterns, error) {
	return f.patterns, nil
}

type fakeExporter struct {
	env export.Envelope
	run *metrics.RunMetrics
}

func (f *fakeExporter) WriteAll(env export.Envelope, run *metrics.RunMetrics) error {
	f.env = env
	f.run = run
	return nil
}

type noFetch struct{}

func (noFetch) FetchDescription(context.Context, domain.JobRecord) (string, error) {
	return "", context.Canceled
}

func rec(url, title string) domain.JobRecord {
	return domain.JobRecord{
		URL: url, Title: title,
		Description: "description longue et suffisante pour ne pas déclencher la complétion automatique du texte",
		Location:    "Paris", Price: "20€", Source: "jemepropose",
	}
}

func newTestPipeline(site *fakeSite, split fakeSplitter, sem *fakeSemantic, hist *fakeHistory, exp *fakeExporter) *Pipeline {
	p := New()
	p.Scrapers = []types.SiteScraper{site}
	p.Allocator = &quota.Runner{Quota: 100, MaxPages: 10, Splitter: split}
	p.Prefilter = prefilter.New([]string{"ménage"})
	p.Describe = describe.New(noFetch{}, 50, nil)
	p.Semantic = sem
	p.History = hist
	p.Exporter = exp
	p.UseLLM = true
	p.Incremental = true
	return p
}

func TestHighConfidencePrefilterSkipsSemantic(t *testing.T) {
	site := &fakeSite{name: "jemepropose", pages: [][]domain.JobRecord{{
		rec("https://j.example/1", "Ménage à domicile"),
	}}}
	sem := &fakeSemantic{result: domain.Classification{IsRemote: true, Confidence: 0.9, Stage: domain.StageSemanticLive}}
	exp := &fakeExporter{}

	p := newTestPipeline(site, fakeSplitter{}, sem, &fakeHistory{}, exp)
	m, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Empty(t, sem.calls, "an on-site keyword verdict must not reach the semantic stage")
	assert.Equal(t, 0, m.LLMCalls)
	assert.Equal(t, 1, exp.env.Statistics.HighConfidenceSkip)

	require.Len(t, exp.env.Jobs, 1)
	got := exp.env.Jobs[0]
	assert.False(t, got.IsRemote)
	assert.Equal(t, domain.ConfidenceKeywordHigh, got.Confidence)
	assert.Equal(t, domain.StageKeyword, got.Stage)
}

func TestUncertainRecordsReachSemanticStage(t *testing.T) {
	site := &fakeSite{name: "malt", pages: [][]domain.JobRecord{{
		rec("https://m.example/1", "Développeur web"),
		rec("https://m.example/2", "Rédaction d'articles"),
	}}}
	sem := &fakeSemantic{result: domain.Classification{IsRemote: true, Confidence: 0.85, Reason: "LLM: ok", Stage: domain.StageSemanticLive}}
	exp := &fakeExporter{}

	p := newTestPipeline(site, fakeSplitter{}, sem, &fakeHistory{}, exp)
	m, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"Développeur web", "Rédaction d'articles"}, sem.calls)
	assert.Equal(t, 2, m.LLMCalls)
	assert.Equal(t, 2, exp.env.Statistics.AnalyzedWithLLM)
	assert.Equal(t, 2, m.RemoteJobs)
}

func TestCachedJobsAppendAfterAnalyzed(t *testing.T) {
	site := &fakeSite{name: "malt", pages: [][]domain.JobRecord{{
		rec("https://m.example/cached", "Traduction"),
		rec("https://m.example/new", "Graphisme"),
	}}}
	split := fakeSplitter{cached: map[string]domain.Classification{
		"https://m.example/cached": {IsRemote: true, Confidence: domain.ConfidenceHistory, Stage: domain.StageHistoryCache},
	}}
	sem := &fakeSemantic{result: domain.Classification{IsRemote: false, Confidence: 0.6, Stage: domain.StageSemanticFallback}}
	exp := &fakeExporter{}

	p := newTestPipeline(site, split, sem, &fakeHistory{}, exp)
	m, err := p.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, exp.env.Jobs, 2)
	assert.Equal(t, "https://m.example/new", exp.env.Jobs[0].URL, "analyzed jobs come first")
	assert.Equal(t, "https://m.example/cached", exp.env.Jobs[1].URL)

	assert.Equal(t, 1, m.CachedJobs)
	assert.Equal(t, 1, m.JobsAnalyzed)
	assert.Equal(t, 1, m.RemoteJobs, "cached remote verdicts count in totals")
	assert.Equal(t, 0, m.LLMCalls, "fallback verdicts are not LLM calls")
}

func TestSightingsRecordedForEveryJob(t *testing.T) {
	site := &fakeSite{name: "malt", pages: [][]domain.JobRecord{{
		rec("https://m.example/1", "Ménage"),
		rec("https://m.example/2", "Développeur"),
		{Title: "Sans lien", Description: "texte assez long pour passer la complétion sans souci particulier ici", Location: "Nice", Price: "1€", Source: "malt"},
	}}}
	sem := &fakeSemantic{result: domain.Classification{IsRemote: true, Confidence: 0.85, Stage: domain.StageSemanticLive}}
	hist := &fakeHistory{}

	p := newTestPipeline(site, fakeSplitter{}, sem, hist, &fakeExporter{})
	_, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"https://m.example/1", "https://m.example/2"}, hist.sightings,
		"records without a URL cannot be remembered")
}

func TestExportEnvelopeMetadata(t *testing.T) {
	site := &fakeSite{name: "malt", pages: [][]domain.JobRecord{{
		rec("https://m.example/1", "Développeur"),
	}}}
	sem := &fakeSemantic{result: domain.Classification{IsRemote: true, Confidence: 0.85, Stage: domain.StageSemanticLive}}
	hist := &fakeHistory{patterns: history.Patterns{TotalUniqueJobs: 42}}
	exp := &fakeExporter{}

	p := newTestPipeline(site, fakeSplitter{}, sem, hist, exp)
	p.now = func() time.Time { return time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC) }
	_, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "2026-08-29 12:00:00", exp.env.Metadata.ExportDate)
	assert.Equal(t, "LLM-Enhanced", exp.env.Metadata.AnalysisMode)
	assert.Equal(t, 42, exp.env.Metadata.HistoryStats.TotalUniqueJobs)
	assert.Equal(t, 1, exp.env.Statistics.Total)
	assert.Equal(t, 100.0, exp.env.Statistics.RemotePercentage)
}
