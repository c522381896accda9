package quota

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"remotejobs-engine/internal/domain"
	"remotejobs-engine/internal/scrape/types"
)

type fakeSite struct {
	name  string
	pages [][]domain.JobRecord
	err   error
	calls int
}

func (f *fakeSite) Name() string { return f.name }

func (f *fakeSite) ScrapePage(_ context.Context, page int) ([]domain.JobRecord, bool, error) {
	f.calls++
	if f.err != nil {
		return nil, false, f.err
	}
	if page > len(f.pages) {
		return nil, false, nil
	}
	return f.pages[page-1], page < len(f.pages), nil
}

// fakeSplitter routes URLs in cached straight to FromCache and treats
// everything else as new.
type fakeSplitter struct {
	cached map[string]bool
}

func (f fakeSplitter) Split(_ context.Context, records []domain.JobRecord, _ time.Duration, _ bool) ([]domain.JobRecord, []domain.ClassifiedJob) {
	var fresh []domain.JobRecord
	var reused []domain.ClassifiedJob
	for _, r := range records {
		if f.cached[r.URL] {
			reused = append(reused, domain.ClassifiedJob{JobRecord: r})
		} else {
			fresh = append(fresh, r)
		}
	}
	return fresh, reused
}

func pageOf(site string, page, n int) []domain.JobRecord {
	out := make([]domain.JobRecord, n)
	for i := range out {
		out[i] = domain.JobRecord{
			URL:    fmt.Sprintf("https://%s.example/j/%d-%d", site, page, i),
			Title:  "t",
			Source: site,
		}
	}
	return out
}

func deepSite(name string) *fakeSite {
	pages := make([][]domain.JobRecord, 10)
	for p := range pages {
		pages[p] = pageOf(name, p+1, 10)
	}
	return &fakeSite{name: name, pages: pages}
}

func TestBudgetSplitsEquallyAcrossSites(t *testing.T) {
	r := &Runner{Quota: 30, MaxPages: 10, Splitter: fakeSplitter{}}
	sites := []*fakeSite{deepSite("a"), deepSite("b"), deepSite("c")}

	res := r.Run(context.Background(), []types.SiteScraper{sites[0], sites[1], sites[2]})

	require.Len(t, res.Sites, 3)
	for _, st := range res.Sites {
		assert.Equal(t, 10, st.Budget, st.Site)
		assert.Equal(t, 10, st.NewJobs, st.Site)
	}
	assert.Equal(t, 30, res.QuotaUsed)
	assert.Len(t, res.ToAnalyze, 30)
}

func TestUnusedBudgetFlowsForward(t *testing.T) {
	shallow := &fakeSite{name: "a", pages: [][]domain.JobRecord{pageOf("a", 1, 4)}}
	r := &Runner{Quota: 30, MaxPages: 10, Splitter: fakeSplitter{}}

	res := r.Run(context.Background(), []types.SiteScraper{shallow, deepSite("b"), deepSite("c")})

	require.Len(t, res.Sites, 3)
	assert.Equal(t, 4, res.Sites[0].NewJobs)
	// 26 left over two sites.
	assert.Equal(t, 13, res.Sites[1].Budget)
	assert.Equal(t, 13, res.Sites[1].NewJobs)
	assert.Equal(t, 13, res.Sites[2].Budget)
	assert.Equal(t, 13, res.Sites[2].NewJobs)
	assert.Equal(t, 30, res.QuotaUsed)
}

func TestZeroQuotaRunsNoSiteAtAll(t *testing.T) {
	site := deepSite("a")
	r := &Runner{Quota: 0, MaxPages: 10, Splitter: fakeSplitter{}}

	res := r.Run(context.Background(), []types.SiteScraper{site, deepSite("b")})

	assert.Empty(t, res.Sites, "an exhausted budget is a hard ceiling")
	assert.Equal(t, 0, site.calls)
	assert.Equal(t, 0, res.QuotaUsed)
}

func TestTinyQuotaStarvesEarlySites(t *testing.T) {
	r := &Runner{Quota: 2, MaxPages: 10, Splitter: fakeSplitter{}}

	res := r.Run(context.Background(), []types.SiteScraper{deepSite("a"), deepSite("b"), deepSite("c")})

	require.Len(t, res.Sites, 3)
	// 2/3 truncates to zero; the first site scrapes nothing and its
	// share flows to the later sites.
	assert.Equal(t, 0, res.Sites[0].Budget)
	assert.Equal(t, 0, res.Sites[0].PagesFetched)
	assert.Equal(t, 1, res.Sites[1].NewJobs)
	assert.Equal(t, 1, res.Sites[2].NewJobs)
	assert.Equal(t, 2, res.QuotaUsed)
}

func TestCachedRecordsDoNotSpendBudget(t *testing.T) {
	site := &fakeSite{name: "a", pages: [][]domain.JobRecord{
		pageOf("a", 1, 5),
		pageOf("a", 2, 5),
	}}
	cached := map[string]bool{}
	for _, p := range site.pages {
		for _, rec := range p {
			cached[rec.URL] = true
		}
	}
	r := &Runner{Quota: 3, MaxPages: 10, Splitter: fakeSplitter{cached: cached}}

	res := r.Run(context.Background(), []types.SiteScraper{site})

	assert.Len(t, res.Scraped, 10, "both pages are walked even though budget is 3")
	assert.Len(t, res.FromCache, 10)
	assert.Empty(t, res.ToAnalyze)
	assert.Equal(t, 0, res.QuotaUsed)
}

func TestPageYieldTruncatedAtBudget(t *testing.T) {
	site := &fakeSite{name: "a", pages: [][]domain.JobRecord{pageOf("a", 1, 8)}}
	r := &Runner{Quota: 5, MaxPages: 10, Splitter: fakeSplitter{}}

	res := r.Run(context.Background(), []types.SiteScraper{site})

	assert.Len(t, res.Scraped, 8, "full page is still recorded as scraped")
	require.Len(t, res.ToAnalyze, 5)
	assert.Equal(t, "https://a.example/j/1-0", res.ToAnalyze[0].URL, "truncation keeps page order")
	assert.Equal(t, "https://a.example/j/1-4", res.ToAnalyze[4].URL)
	assert.Equal(t, 5, res.QuotaUsed)
}

func TestScrapeErrorEndsSiteNotRun(t *testing.T) {
	broken := &fakeSite{name: "a", err: errors.New("boom")}
	r := &Runner{Quota: 20, MaxPages: 10, Splitter: fakeSplitter{}}

	res := r.Run(context.Background(), []types.SiteScraper{broken, deepSite("b")})

	require.Len(t, res.Sites, 2)
	assert.Equal(t, "boom", res.Sites[0].LastError)
	assert.Equal(t, 0, res.Sites[0].NewJobs)
	// The whole remaining budget lands on the last site.
	assert.Equal(t, 20, res.Sites[1].Budget)
	assert.Equal(t, 20, res.Sites[1].NewJobs)
}

func TestMaxPagesCapsASite(t *testing.T) {
	r := &Runner{Quota: 100, MaxPages: 2, Splitter: fakeSplitter{}}

	res := r.Run(context.Background(), []types.SiteScraper{deepSite("a")})

	require.Len(t, res.Sites, 1)
	assert.Equal(t, 2, res.Sites[0].PagesFetched)
	assert.Len(t, res.Scraped, 20)
}
