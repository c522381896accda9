package domain

// Absent is the sentinel for fields a listing page did not provide.
const Absent = "N/A"

// Stage identifies which pipeline stage produced a classification.
type Stage string

const (
	StageKeyword          Stage = "keyword"
	StageSemanticCache    Stage = "semantic-cache"
	StageSemanticLive     Stage = "semantic-live"
	StageSemanticFallback Stage = "semantic-fallback"
	StageHistoryCache     Stage = "history-cache"
)

// Confidence tier boundaries, shared by every stage. Stages emit numeric
// confidence; tiers are derived from it, never stored.
const (
	TierHighMin   = 0.8
	TierMediumMin = 0.5

	ConfidenceKeywordHigh = 0.95
	ConfidenceKeywordLow  = 0.2
	ConfidenceHistory     = 0.99
)

type Tier string

const (
	TierHigh   Tier = "HIGH"
	TierMedium Tier = "MEDIUM"
	TierLow    Tier = "LOW"
)

func TierFor(confidence float64) Tier {
	switch {
	case confidence >= TierHighMin:
		return TierHigh
	case confidence >= TierMediumMin:
		return TierMedium
	default:
		return TierLow
	}
}

// JobRecord is one scraped listing. Parsers create it; pipeline stages
// read it and return augmented copies rather than mutating in place.
type JobRecord struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Price       string `json:"price"`
	Source      string `json:"source"`

	// Only available from a detail page; Absent when scraped off a
	// listing page or restored from history.
	Category   string `json:"category,omitempty"`
	Poster     string `json:"poster,omitempty"`
	DatePosted string `json:"date_posted,omitempty"`
}

// Classification is the verdict attached to a JobRecord after analysis.
type Classification struct {
	IsRemote   bool    `json:"is_remote"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
	Stage      Stage   `json:"stage"`
}

// ClassifiedJob pairs a record with its final classification.
type ClassifiedJob struct {
	JobRecord
	Classification
}

// Sanitize fills empty boundary fields with the Absent sentinel so
// downstream stages never see missing values.
func (j JobRecord) Sanitize() JobRecord {
	if j.URL == "" {
		j.URL = Absent
	}
	if j.Title == "" {
		j.Title = Absent
	}
	if j.Description == "" {
		j.Description = Absent
	}
	if j.Location == "" {
		j.Location = Absent
	}
	if j.Price == "" {
		j.Price = Absent
	}
	return j
}
