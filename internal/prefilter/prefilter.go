// Deterministic pre-filter: triages obviously on-site work away from
// the semantic stage. It is the only zero-cost stage, so it runs on
// every new record.
package prefilter

import (
	"fmt"
	"strings"

	"remotejobs-engine/internal/domain"
)

type Classifier struct {
	onsiteHigh []string
}

func New(onsiteHigh []string) *Classifier {
	lowered := make([]string, 0, len(onsiteHigh))
	for _, kw := range onsiteHigh {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			lowered = append(lowered, kw)
		}
	}
	return &Classifier{onsiteHigh: lowered}
}

// Classify is a pure function of its three inputs. Rules are
// order-sensitive and the first match wins. The pre-filter never asserts
// remote with high confidence: a wrong on-site/HIGH verdict would skip
// verification, whereas an "uncertain" verdict just costs one semantic
// call.
func (c *Classifier) Classify(title, description, location string) domain.Classification {
	text := strings.ToLower(title + " " + description + " " + location)

	for _, kw := range c.onsiteHigh {
		if strings.Contains(text, kw) {
			return domain.Classification{
				IsRemote:   false,
				Confidence: domain.ConfidenceKeywordHigh,
				Reason:     fmt.Sprintf("On-site keyword: %s", kw),
				Stage:      domain.StageKeyword,
			}
		}
	}

	return domain.Classification{
		IsRemote:   false,
		Confidence: domain.ConfidenceKeywordLow,
		Reason:     "Uncertain - needs deeper analysis",
		Stage:      domain.StageKeyword,
	}
}
