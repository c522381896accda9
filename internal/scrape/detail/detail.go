// Detail-page fetcher for jemepropose listings. Listing cards truncate
// descriptions; the full text lives on the job's own page.
package detail

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"remotejobs-engine/internal/domain"
	"remotejobs-engine/internal/scrape/util"
)

type Fetcher struct {
	client *util.Client
}

func New(client *util.Client) *Fetcher {
	return &Fetcher{client: client}
}

// FetchDescription pulls the full description off the job page. The
// description block is a <div class="col s12 pt-8"> headed by
// <h2 class="title_page"><b>Description</b></h2>; older pages only have
// the card-content body.
func (f *Fetcher) FetchDescription(ctx context.Context, rec domain.JobRecord) (string, error) {
	doc, err := f.client.GetDocument(ctx, rec.URL)
	if err != nil {
		return "", err
	}

	if text := descriptionSection(doc); text != "" {
		return text, nil
	}
	if text := cardContentParagraphs(doc); text != "" {
		return text, nil
	}
	return "", fmt.Errorf("no description section on %s", rec.URL)
}

func descriptionSection(doc *goquery.Document) string {
	var section *goquery.Selection

	doc.Find("h2.title_page").EachWithBreak(func(_ int, h *goquery.Selection) bool {
		if !strings.Contains(h.Text(), "Description") {
			return true
		}
		if p := h.ParentsFiltered("div.col.s12.pt-8").First(); p.Length() > 0 {
			section = p
			return false
		}
		return true
	})
	if section == nil {
		if p := doc.Find("div.col.s12.pt-8").First(); p.Length() > 0 {
			section = p
		}
	}
	if section == nil {
		return ""
	}

	seen := map[string]bool{}
	var parts []string
	section.Find("p, div, span").Each(func(_ int, el *goquery.Selection) {
		t := util.CleanText(el.Text())
		if t == "" || seen[t] || strings.Contains(t, "Description") {
			return
		}
		seen[t] = true
		parts = append(parts, t)
	})
	return strings.Join(parts, " ")
}

func cardContentParagraphs(doc *goquery.Document) string {
	var parts []string
	doc.Find("div.card-content").First().Find("p").Each(func(_ int, p *goquery.Selection) {
		if t := util.CleanText(p.Text()); t != "" {
			parts = append(parts, t)
		}
	})
	return strings.Join(parts, " ")
}
