package scraper

import (
	"fmt"
	"io"
	"net/url"
	"referralflow/pkg/domain"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Selector lists are tried in order; the first element matched wins. Listing
// sites change their markup often, so several known variants are kept.
var (
	CardSelectors = []string{
		".base-card",
		".base-search-card",
		".result-card",
		".job-card-list__entity",
		".jobs-search-results__list-item",
	}
	TitleSelectors = []string{
		".base-search-card__title",
		".job-result-card__title",
		".job-card-list__title",
		"h3",
	}
	CompanySelectors = []string{
		".base-search-card__subtitle",
		".job-result-card__subtitle",
		".job-card-container__company-name",
		".hidden-nested-link",
	}
	LocationSelectors = []string{
		".job-search-card__location",
		".job-result-card__location",
		".job-card-container__metadata-item",
	}
	LinkSelectors = []string{
		"a.base-card__full-link",
		"a.result-card__full-link",
		"a[href]",
	}
)

// ParseListings extracts job cards from an HTML listing page. Cards without a
// title are skipped. Missing company and location become placeholders and a
// missing link becomes pageURL. Relative links are resolved against pageURL.
// No matching cards is not an error.
func ParseListings(r io.Reader, pageURL string) ([]domain.JobPosting, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("could not parse listing page %s: %w", pageURL, err)
	}

	base, _ := url.Parse(pageURL)

	var postings []domain.JobPosting
	doc.Find(strings.Join(CardSelectors, ", ")).Each(func(_ int, card *goquery.Selection) {
		// A card nested in another matched card is the same listing.
		if card.ParentsFiltered(strings.Join(CardSelectors, ", ")).Length() > 0 {
			return
		}

		title := firstText(card, TitleSelectors)
		if title == "" {
			return
		}

		posting := domain.JobPosting{
			Title:    title,
			Company:  firstText(card, CompanySelectors),
			Location: firstText(card, LocationSelectors),
			URL:      firstLink(card, LinkSelectors, base),
		}
		if posting.Company == "" {
			posting.Company = domain.UnknownCompany
		}
		if posting.Location == "" {
			posting.Location = domain.DefaultLocation
		}
		if posting.URL == "" {
			posting.URL = pageURL
		}
		postings = append(postings, posting)
	})

	return postings, nil
}

func firstText(card *goquery.Selection, selectors []string) string {
	for _, sel := range selectors {
		if el := card.Find(sel).First(); el.Length() > 0 {
			if text := strings.Join(strings.Fields(el.Text()), " "); text != "" {
				return text
			}
		}
	}

	return ""
}

func firstLink(card *goquery.Selection, selectors []string, base *url.URL) string {
	candidates := card.Find(strings.Join(selectors, ", "))
	if goquery.NodeName(card) == "a" {
		candidates = card.AddSelection(candidates)
	}

	for _, sel := range selectors {
		el := candidates.FilterFunction(func(_ int, s *goquery.Selection) bool {
			return s.Is(sel)
		}).First()
		href, ok := el.Attr("href")
		href = strings.TrimSpace(href)
		if !ok || href == "" {
			continue
		}
		if base == nil {
			return href
		}
		ref, err := url.Parse(href)
		if err != nil {
			continue
		}

		return base.ResolveReference(ref).String()
	}

	return ""
}
