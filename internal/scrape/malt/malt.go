package malt

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"remotejobs-engine/internal/domain"
	"remotejobs-engine/internal/scrape/util"
)

const (
	baseURL  = "https://www.malt.fr/s?q=&l="
	pageSize = 20
)

type Scraper struct {
	client *util.Client
}

func New(client *util.Client) *Scraper {
	return &Scraper{client: client}
}

func (s *Scraper) Name() string { return "malt" }

func pageURL(page int) string {
	// Malt paginates by offset, 20 missions per page.
	return fmt.Sprintf("%s&offset=%d", baseURL, (page-1)*pageSize)
}

func (s *Scraper) ScrapePage(ctx context.Context, page int) ([]domain.JobRecord, bool, error) {
	u := pageURL(page)
	doc, err := s.client.GetDocument(ctx, u)
	if err != nil {
		return nil, false, err
	}

	var jobs []domain.JobRecord
	doc.Find(`div.project-card, article.mission-card, div[data-testid="project-card"]`).Each(func(_ int, card *goquery.Selection) {
		href, _ := card.Find("a[href]").First().Attr("href")

		location := util.CleanText(card.Find(".location").First().Text())
		if location == "" {
			// Malt is a freelance marketplace; missions without an
			// explicit city are remote by default.
			location = "Remote"
		}

		price := util.CleanText(card.Find(".budget").First().Text())
		if price == "" {
			price = findEuroAmount(card)
		}

		rec := domain.JobRecord{
			URL:         util.CanonicalURL(util.ResolveURL(u, href)),
			Title:       util.CleanText(card.Find("h3, h2, .title").First().Text()),
			Description: util.CleanText(card.Find("p.description, div.content").First().Text()),
			Location:    location,
			Price:       price,
			Source:      s.Name(),
		}
		jobs = append(jobs, rec.Sanitize())
	})

	return jobs, len(jobs) > 0, nil
}

func findEuroAmount(card *goquery.Selection) string {
	amount := ""
	card.Find("span").EachWithBreak(func(_ int, sp *goquery.Selection) bool {
		if t := util.CleanText(sp.Text()); strings.Contains(t, "€") {
			amount = t
			return false
		}
		return true
	})
	return amount
}
