// Description completion: decides when a listing-page description is
// too thin to classify and supplements it from the listing's own detail
// page.
package describe

import (
	"context"
	"log"
	"strings"

	"remotejobs-engine/internal/domain"
)

// DetailFetcher is the external collaborator that pulls the full
// description off a listing's detail page.
type DetailFetcher interface {
	FetchDescription(ctx context.Context, rec domain.JobRecord) (string, error)
}

type Completer struct {
	fetcher DetailFetcher
	minLen  int

	// Sites whose detail pages embed "similar listings" content; for
	// those only a vetted first paragraph is trusted.
	strictSites map[string]bool
}

var truncationMarkers = []string{"...", "…", "Lire la suite", "Voir plus"}

func New(fetcher DetailFetcher, minLen int, strictSites []string) *Completer {
	strict := make(map[string]bool, len(strictSites))
	for _, s := range strictSites {
		strict[strings.ToLower(s)] = true
	}
	return &Completer{fetcher: fetcher, minLen: minLen, strictSites: strict}
}

// NeedsFetch reports whether the listing-page description is absent,
// too short, or visibly truncated.
func (c *Completer) NeedsFetch(description string) bool {
	if description == "" || description == domain.Absent {
		return true
	}
	if len(description) < c.minLen {
		return true
	}
	for _, marker := range truncationMarkers {
		if strings.Contains(description, marker) {
			return true
		}
	}
	return false
}

// Complete returns the best available description: the fetched one when
// it is longer, the original otherwise. Fetch failures never propagate
// past this boundary.
func (c *Completer) Complete(ctx context.Context, rec domain.JobRecord) string {
	current := rec.Description
	if rec.URL == domain.Absent {
		return current
	}

	fetched, err := c.fetcher.FetchDescription(ctx, rec)
	if err != nil {
		log.Printf("[describe] fetch failed for %s: %v", rec.URL, err)
		return current
	}

	if c.strictSites[strings.ToLower(rec.Source)] {
		fetched = FirstCleanParagraph(fetched)
	}

	if len(fetched) > len(current) {
		return fetched
	}
	return current
}

// FirstCleanParagraph applies the strict extraction policy for sites
// that append unrelated "similar requests" below the real description:
// take the first paragraph longer than 50 chars that is not
// quote-prefixed and not inside the similar-requests block. Returning
// empty is deliberate; the caller falls back to the original rather
// than risk classifying on a neighbouring listing's text.
func FirstCleanParagraph(text string) string {
	for _, para := range strings.Split(text, "\n") {
		para = strings.TrimSpace(para)
		if isSimilarBlockHeader(para) {
			return ""
		}
		if len(para) <= 50 {
			continue
		}
		if strings.HasPrefix(para, `"`) || strings.HasPrefix(para, "«") {
			continue
		}
		return para
	}
	return ""
}

func isSimilarBlockHeader(para string) bool {
	l := strings.ToLower(para)
	return strings.Contains(l, "demandes similaires") || strings.Contains(l, "annonces similaires")
}
