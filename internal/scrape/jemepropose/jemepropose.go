package jemepropose

import (
	"context"
	"fmt"

	"github.com/PuerkitoBio/goquery"

	"remotejobs-engine/internal/domain"
	"remotejobs-engine/internal/scrape/util"
)

const baseURL = "https://www.jemepropose.com/annonces/?offer_type=2&provider_type=1"

type Scraper struct {
	client *util.Client
}

func New(client *util.Client) *Scraper {
	return &Scraper{client: client}
}

func (s *Scraper) Name() string { return "jemepropose" }

func pageURL(page int) string {
	if page <= 1 {
		return baseURL
	}
	return fmt.Sprintf("%s&page=%d", baseURL, page)
}

func (s *Scraper) ScrapePage(ctx context.Context, page int) ([]domain.JobRecord, bool, error) {
	u := pageURL(page)
	doc, err := s.client.GetDocument(ctx, u)
	if err != nil {
		return nil, false, err
	}

	jobs := parseListing(doc, u)
	return jobs, len(jobs) > 0, nil
}

func parseListing(doc *goquery.Document, pageURL string) []domain.JobRecord {
	var jobs []domain.JobRecord
	doc.Find("div[data-url]").Each(func(_ int, card *goquery.Selection) {
		href, _ := card.Attr("data-url")

		rec := domain.JobRecord{
			URL:         util.CanonicalURL(util.ResolveURL(pageURL, href)),
			Title:       util.CleanText(card.Find("span.card-title").First().Text()),
			Description: util.CleanText(card.Find("p.card-text").First().Text()),
			Location:    util.CleanText(card.Find("a.grey_jmp_text").First().Text()),
			Price:       extractPrice(card),
			Source:      "jemepropose",
		}
		jobs = append(jobs, rec.Sanitize())
	})
	return jobs
}

// extractPrice finds the amount shown on a listing card. The price
// lives in a <b class="orange_jmp_text"> directly under a div, with the
// unit in an adjacent <small> ("25 €" + "par heure").
func extractPrice(card *goquery.Selection) string {
	price := ""
	card.Find("b.orange_jmp_text").EachWithBreak(func(_ int, b *goquery.Selection) bool {
		if goquery.NodeName(b.Parent()) != "div" {
			return true
		}
		price = util.CleanText(b.Text())
		if small := b.NextFiltered("small"); small.Length() > 0 {
			price += " " + util.CleanText(small.Text())
		}
		return false
	})
	return price
}
