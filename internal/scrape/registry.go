package scrape

import (
	"log"
	"strings"

	"remotejobs-engine/internal/scrape/allovoisins"
	"remotejobs-engine/internal/scrape/jemepropose"
	"remotejobs-engine/internal/scrape/malt"
	"remotejobs-engine/internal/scrape/types"
	"remotejobs-engine/internal/scrape/util"
)

// BuildScrapers maps configured site names to their scrapers,
// preserving configuration order. Unknown names are logged and skipped
// so one typo doesn't kill the whole run.
func BuildScrapers(sites []string, client *util.Client) []types.SiteScraper {
	var out []types.SiteScraper
	for _, name := range sites {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "jemepropose":
			out = append(out, jemepropose.New(client))
		case "allovoisins":
			out = append(out, allovoisins.New(client))
		case "malt":
			out = append(out, malt.New(client))
		default:
			log.Printf("[scrape] unknown site %q, skipping", name)
		}
	}
	return out
}
