package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/joho/godotenv"

	"remotejobs-engine/internal/config"
	"remotejobs-engine/internal/describe"
	"remotejobs-engine/internal/export"
	"remotejobs-engine/internal/fingerprint"
	"remotejobs-engine/internal/freshness"
	"remotejobs-engine/internal/history"
	"remotejobs-engine/internal/pipeline"
	"remotejobs-engine/internal/prefilter"
	"remotejobs-engine/internal/quota"
	"remotejobs-engine/internal/scheduler"
	"remotejobs-engine/internal/scrape"
	"remotejobs-engine/internal/scrape/detail"
	"remotejobs-engine/internal/scrape/util"
	"remotejobs-engine/internal/secrets"
	"remotejobs-engine/internal/semantic"
)

func main() {
	var (
		sitesFlag      = flag.String("sites", "", "comma-separated sites to scrape (overrides config)")
		pagesFlag      = flag.Int("pages", 0, "max pages per site (overrides config)")
		quotaFlag      = flag.Int("quota", 0, "daily analysis quota (overrides config)")
		lookbackFlag   = flag.Int("lookback", 0, "freshness lookback in hours (overrides config)")
		noLLM          = flag.Bool("no-llm", false, "skip the external classifier, keyword scoring only")
		noIncremental  = flag.Bool("no-incremental", false, "analyze every scraped job, ignoring history")
		forceReanalyze = flag.Bool("force-reanalyze", false, "re-analyze jobs even when seen recently")
		verbose        = flag.Bool("verbose", false, "more detailed log output")
		every          = flag.Duration("every", 0, "run repeatedly at this interval (e.g. 6h); 0 means run once")
		dataDirFlag    = flag.String("data-dir", "", "data directory (default $REMOTEJOBS_DATA_DIR, else .)")
	)
	flag.Parse()

	if *verbose {
		log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	}

	// .env is optional; the keychain is the primary secret store.
	_ = godotenv.Load()

	dataDir := *dataDirFlag
	if dataDir == "" {
		dataDir = os.Getenv("REMOTEJOBS_DATA_DIR")
	}
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		log.Fatal(err)
	}

	// The history db and export files cannot take two concurrent runs.
	lock := flock.New(filepath.Join(dataDir, "scraper.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		log.Fatalf("lock %s: %v", lock.Path(), err)
	}
	if !locked {
		log.Fatalf("another run holds %s; exiting", lock.Path())
	}
	defer lock.Unlock()

	userCfgPath, err := config.EnsureUserConfig(dataDir, filepath.Join("config", "config.yml"))
	if err != nil {
		log.Fatalf("config bootstrap failed: %v", err)
	}
	cfg, err := config.Load(userCfgPath)
	if err != nil {
		log.Fatalf("config load failed (%s): %v", userCfgPath, err)
	}

	if *sitesFlag != "" {
		cfg.Scraping.Sites = strings.Split(*sitesFlag, ",")
	}
	if *pagesFlag > 0 {
		cfg.Scraping.MaxPagesPerSite = *pagesFlag
	}
	if *quotaFlag > 0 {
		cfg.Scraping.DailyQuota = *quotaFlag
	}
	if *lookbackFlag > 0 {
		cfg.Scraping.LookbackHours = *lookbackFlag
	}

	cfg, validation := config.NormalizeAndValidate(cfg)
	for _, w := range validation.Warnings {
		log.Printf("[config] warning: %s", w)
	}
	if !validation.OK() {
		for _, e := range validation.Errors {
			log.Printf("[config] error: %s", e)
		}
		os.Exit(1)
	}

	limiter := util.NewHostLimiter(cfg.Scraping.RequestsPerSecond, 1)
	client := util.NewClient(time.Duration(cfg.Scraping.FetchTimeoutSecs)*time.Second, limiter)

	scrapers := scrape.BuildScrapers(cfg.Scraping.Sites, client)
	if len(scrapers) == 0 {
		log.Fatal("no usable sites configured")
	}

	hist, err := history.Open(filepath.Join(dataDir, "history.db"))
	if err != nil {
		log.Fatalf("history db: %v", err)
	}
	defer hist.Close()

	cache := fingerprint.Open(
		filepath.Join(dataDir, "semantic_cache.json"),
		time.Duration(cfg.Analysis.CacheMaxAgeDays)*24*time.Hour,
	)

	useLLM := cfg.Analysis.UseLLM && !*noLLM
	var external semantic.Classifier
	if useLLM {
		key, err := secrets.GetAPIKey()
		if err != nil {
			log.Printf("[main] %v; continuing with keyword fallback only", err)
			useLLM = false
		} else {
			external = semantic.NewGroqClassifier(key, cfg.Analysis.Model)
		}
	}

	gateway := semantic.NewGateway(
		cache,
		external,
		semantic.NewFallback(cfg.Keywords.RemoteStrong, cfg.Keywords.OnsiteStrong, cfg.Keywords.RemoteCategories),
		cfg.Analysis.MaxRetries,
		time.Duration(cfg.Analysis.RetryBaseDelaySec)*time.Second,
	)

	var splitter quota.Splitter = freshness.New(hist)
	if *noIncremental {
		splitter = freshness.Passthrough{}
	}

	exportDir := cfg.App.ExportDir
	if !filepath.IsAbs(exportDir) {
		exportDir = filepath.Join(dataDir, exportDir)
	}
	exporter, err := export.NewWriter(exportDir)
	if err != nil {
		log.Fatalf("exports: %v", err)
	}

	p := pipeline.New()
	p.Scrapers = scrapers
	p.Allocator = &quota.Runner{
		Quota:          cfg.Scraping.DailyQuota,
		MaxPages:       cfg.Scraping.MaxPagesPerSite,
		Lookback:       time.Duration(cfg.Scraping.LookbackHours) * time.Hour,
		ForceReanalyze: *forceReanalyze,
		Splitter:       splitter,
	}
	p.Prefilter = prefilter.New(cfg.Keywords.OnsiteHigh)
	p.Describe = describe.New(detail.New(client), cfg.Analysis.MinDescriptionLen, []string{"jemepropose"})
	p.Semantic = gateway
	p.History = hist
	p.Exporter = exporter
	p.UseLLM = useLLM
	p.Incremental = !*noIncremental

	run := func(ctx context.Context) error {
		m, err := p.Run(ctx)
		if removed := cache.Cleanup(); removed > 0 {
			log.Printf("[main] dropped %d expired cache entries", removed)
		}
		if serr := cache.Save(); serr != nil {
			log.Printf("[main] cache save failed: %v", serr)
		}
		if err != nil {
			return err
		}
		log.Printf("[main] %d jobs exported (%d remote), quota used %d, cache hit rate %.0f%%",
			m.JobsAnalyzed+m.CachedJobs, m.RemoteJobs, m.QuotaUsed, 100*m.CacheStats.HitRate)
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *every > 0 {
		log.Printf("[main] scheduled mode: running every %s", *every)
		scheduler.Every(ctx, *every, "scraper", run)
		return
	}
	if err := run(ctx); err != nil {
		log.Fatal(err)
	}
}
