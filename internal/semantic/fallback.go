package semantic

import (
	"fmt"
	"strings"

	"remotejobs-engine/internal/domain"
)

// Fallback is the offline keyword scorer used when the external service
// is unavailable. It must never depend on anything that can fail:
// service unavailability is the very condition it exists to handle.
type Fallback struct {
	remoteStrong     []string
	onsiteStrong     []string
	remoteCategories []string
}

func NewFallback(remoteStrong, onsiteStrong, remoteCategories []string) *Fallback {
	lower := func(xs []string) []string {
		out := make([]string, 0, len(xs))
		for _, x := range xs {
			x = strings.ToLower(strings.TrimSpace(x))
			if x != "" {
				out = append(out, x)
			}
		}
		return out
	}
	return &Fallback{
		remoteStrong:     lower(remoteStrong),
		onsiteStrong:     lower(onsiteStrong),
		remoteCategories: lower(remoteCategories),
	}
}

// Classify scores keyword hits: +2 per strong remote keyword, +2 per
// strong on-site keyword, +3 per remote job category. A gap of more
// than one point is a high-confidence call (0.8), a smaller gap a
// medium one (0.6), a tie a low-confidence on-site default (0.3).
func (f *Fallback) Classify(title, description, location string) domain.Classification {
	text := strings.ToLower(title + " " + description + " " + location)

	var remoteScore, onsiteScore int
	for _, kw := range f.remoteStrong {
		if strings.Contains(text, kw) {
			remoteScore += 2
		}
	}
	for _, kw := range f.onsiteStrong {
		if strings.Contains(text, kw) {
			onsiteScore += 2
		}
	}
	for _, cat := range f.remoteCategories {
		if strings.Contains(text, cat) {
			remoteScore += 3
		}
	}

	scores := fmt.Sprintf("(score: %d vs %d)", remoteScore, onsiteScore)

	switch {
	case remoteScore > onsiteScore+1:
		return result(true, 0.8, "Strong remote indicators "+scores)
	case remoteScore > onsiteScore:
		return result(true, 0.6, "Likely remote work "+scores)
	case onsiteScore > remoteScore+1:
		return result(false, 0.8, "Strong on-site indicators "+scores)
	case onsiteScore > remoteScore:
		return result(false, 0.6, "Likely on-site work "+scores)
	default:
		return result(false, 0.3, "Ambiguous signals "+scores)
	}
}

func result(isRemote bool, confidence float64, reason string) domain.Classification {
	return domain.Classification{
		IsRemote:   isRemote,
		Confidence: confidence,
		Reason:     "Fallback: " + reason,
		Stage:      domain.StageSemanticFallback,
	}
}
