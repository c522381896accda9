package history

import (
	"context"
	"time"
)

// Patterns summarizes how listings move through the history over time.
type Patterns struct {
	TotalUniqueJobs        int     `json:"total_unique_jobs"`
	ActiveJobs             int     `json:"active_jobs"`  // seen in last 24h
	RecentJobs             int     `json:"recent_jobs"`  // seen in last 7 days
	StaleJobs              int     `json:"stale_jobs"`   // not seen in 7+ days
	RemoteJobs             int     `json:"remote_jobs"`
	OnsiteJobs             int     `json:"onsite_jobs"`
	AverageJobLifetimeDays float64 `json:"average_job_lifetime_days"`
}

// AnalyzePatterns walks the whole history. Rows with unparseable
// timestamps are skipped; they only matter to the freshness filter,
// which handles them separately.
func (s *Store) AnalyzePatterns(ctx context.Context, now time.Time) (Patterns, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT is_remote, first_seen, last_seen FROM seen_jobs;`)
	if err != nil {
		return Patterns{}, err
	}
	defer rows.Close()

	var p Patterns
	var lifetimes []float64

	for rows.Next() {
		var isRemote bool
		var firstSeenStr, lastSeenStr string
		if err := rows.Scan(&isRemote, &firstSeenStr, &lastSeenStr); err != nil {
			return Patterns{}, err
		}
		p.TotalUniqueJobs++

		if isRemote {
			p.RemoteJobs++
		} else {
			p.OnsiteJobs++
		}

		firstSeen, err1 := time.Parse(TimeLayout, firstSeenStr)
		lastSeen, err2 := time.Parse(TimeLayout, lastSeenStr)
		if err1 != nil || err2 != nil {
			continue
		}

		lifetimes = append(lifetimes, lastSeen.Sub(firstSeen).Hours()/24)

		switch age := now.Sub(lastSeen); {
		case age < 24*time.Hour:
			p.ActiveJobs++
		case age < 7*24*time.Hour:
			p.RecentJobs++
		default:
			p.StaleJobs++
		}
	}
	if err := rows.Err(); err != nil {
		return Patterns{}, err
	}

	if len(lifetimes) > 0 {
		var sum float64
		for _, l := range lifetimes {
			sum += l
		}
		p.AverageJobLifetimeDays = sum / float64(len(lifetimes))
	}
	return p, nil
}
