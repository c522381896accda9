// Export artifacts: JSON and CSV job dumps plus the run metrics file,
// written under the configured export directory. The "latest" files are
// overwritten every run; timestamped copies accumulate.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"remotejobs-engine/internal/domain"
	"remotejobs-engine/internal/history"
	"remotejobs-engine/internal/metrics"
)

const tsLayout = "20060102_150405"

// Statistics summarizes the exported job set.
type Statistics struct {
	Total                  int     `json:"total"`
	Remote                 int     `json:"remote"`
	OnSite                 int     `json:"on_site"`
	RemotePercentage       float64 `json:"remote_percentage"`
	AnalyzedWithLLM        int     `json:"analyzed_with_llm"`
	HighConfidenceSkip     int     `json:"high_confidence_skip"`
	FullDescriptionFetched int     `json:"full_description_fetched"`
}

type Metadata struct {
	ExportDate   string           `json:"export_date"`
	TotalJobs    int              `json:"total_jobs"`
	AnalysisMode string           `json:"analysis_mode"` // LLM-Enhanced or Keyword-Only
	HistoryStats history.Patterns `json:"history_stats"`
}

// Envelope is the top-level JSON export document.
type Envelope struct {
	Metadata   Metadata               `json:"metadata"`
	Statistics Statistics             `json:"statistics"`
	Jobs       []domain.ClassifiedJob `json:"jobs"`
}

type Writer struct {
	dir string
	now func() time.Time
}

func NewWriter(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("export dir: %w", err)
	}
	return &Writer{dir: dir, now: time.Now}, nil
}

// WriteAll produces the run's artifacts: full JSON, full CSV, the
// remote-only JSON subset and the metrics file. The four writes are
// independent, so they run concurrently; the first error wins but does
// not stop the others.
func (w *Writer) WriteAll(env Envelope, run *metrics.RunMetrics) error {
	ts := w.now().Format(tsLayout)

	var g errgroup.Group
	g.Go(func() error {
		if err := w.writeJSON("jobs_"+ts+".json", env); err != nil {
			return err
		}
		return w.writeJSON("jobs_latest.json", env)
	})
	g.Go(func() error {
		if err := w.writeCSV("jobs_"+ts+".csv", env.Jobs); err != nil {
			return err
		}
		return w.writeCSV("jobs_latest.csv", env.Jobs)
	})
	g.Go(func() error {
		return w.writeJSON("remote_jobs_latest.json", RemoteOnly(env))
	})
	g.Go(func() error {
		return w.writeJSON("metrics_latest.json", run)
	})
	return g.Wait()
}

// RemoteOnly narrows an envelope to remote verdicts, with statistics
// recomputed for the subset.
func RemoteOnly(env Envelope) Envelope {
	var remote []domain.ClassifiedJob
	for _, j := range env.Jobs {
		if j.IsRemote {
			remote = append(remote, j)
		}
	}

	stats := env.Statistics
	stats.Total = len(remote)
	stats.Remote = len(remote)
	stats.OnSite = 0
	stats.RemotePercentage = 0
	if len(remote) > 0 {
		stats.RemotePercentage = 100
	}

	meta := env.Metadata
	meta.TotalJobs = len(remote)

	return Envelope{Metadata: meta, Statistics: stats, Jobs: remote}
}

func (w *Writer) writeJSON(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}
	path := filepath.Join(w.dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

var csvHeader = []string{
	"title", "location", "category", "price", "poster", "date_posted",
	"confidence", "is_remote", "stage", "reason",
	"description_preview", "source", "url",
}

func (w *Writer) writeCSV(name string, jobs []domain.ClassifiedJob) error {
	path := filepath.Join(w.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	// UTF-8 BOM so Excel opens the accented French text correctly.
	if _, err := f.WriteString("\uFEFF"); err != nil {
		return err
	}

	cw := csv.NewWriter(f)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, j := range jobs {
		row := []string{
			j.Title, j.Location, j.Category, j.Price, j.Poster, j.DatePosted,
			strconv.FormatFloat(j.Confidence, 'f', 2, 64),
			yesNo(j.IsRemote),
			string(j.Stage),
			j.Reason,
			preview(j.Description),
			j.Source, j.URL,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func preview(desc string) string {
	const max = 200
	if len(desc) <= max {
		return desc
	}
	// Cut on a rune boundary; descriptions are French text.
	runes := []rune(desc)
	if len(runes) <= max {
		return desc
	}
	return string(runes[:max]) + "..."
}
