package allovoisins

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"remotejobs-engine/internal/domain"
	"remotejobs-engine/internal/scrape/util"
)

const baseURL = "https://www.allovoisins.com/r/-3/0/33908"

// The board has gone through several redesigns, so card markup varies.
// Specific selectors are tried first, generic containers last.
var cardSelectors = []string{
	"article.job-card",
	"div.job-item",
	"div.listing-item",
	"article.listing",
	"div[data-job-id]",
	"a.job-link",
	"article",
	"div.card",
}

type Scraper struct {
	client *util.Client
}

func New(client *util.Client) *Scraper {
	return &Scraper{client: client}
}

func (s *Scraper) Name() string { return "allovoisins" }

func pageURL(page int) string {
	// Pagination is 0-indexed: /r/-3/0/33908/<page>/Job/location-vente
	return fmt.Sprintf("%s/%d/Job/location-vente", baseURL, page-1)
}

func (s *Scraper) ScrapePage(ctx context.Context, page int) ([]domain.JobRecord, bool, error) {
	u := pageURL(page)
	doc, err := s.client.GetDocument(ctx, u)
	if err != nil {
		return nil, false, err
	}

	var cards *goquery.Selection
	for _, sel := range cardSelectors {
		if found := doc.Find(sel); found.Length() > 0 {
			cards = found
			break
		}
	}
	if cards == nil {
		return nil, false, nil
	}

	var jobs []domain.JobRecord
	cards.Each(func(_ int, card *goquery.Selection) {
		title := util.CleanText(card.Find("h2, h3, h4, .title, .job-title, .listing-title").First().Text())
		if len(title) < 3 {
			return
		}

		link := card.Find("a[href]").First()
		href, _ := link.Attr("href")
		if href == "" && goquery.NodeName(card) == "a" {
			href, _ = card.Attr("href")
		}

		location := util.CleanText(card.Find(".location, span.city, .address").First().Text())
		if location == "" {
			location = "France"
		}

		price := util.CleanText(card.Find(".price, .rate").First().Text())
		if price == "" {
			price = findEuroAmount(card)
		}

		rec := domain.JobRecord{
			URL:         util.CanonicalURL(util.ResolveURL(u, href)),
			Title:       title,
			Description: util.CleanText(card.Find("p.description, div.description, p.excerpt, div.content").First().Text()),
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
