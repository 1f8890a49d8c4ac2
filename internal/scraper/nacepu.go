package scraper

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"github.com/baxromumarov/lunch-menu/internal/httpx"
	"github.com/baxromumarov/lunch-menu/internal/menu"
	"github.com/baxromumarov/lunch-menu/internal/observability"
)

const (
	NacepuURL = "https://nacepu.com/poledni-menu/"

	nacepuContainerSel = "div#post-22"
	nacepuStopPhrase   = "NÁPOJE K OBĚDU"
)

// nacepuHeadings maps the upper-cased heading paragraphs to section names.
// Order here is the section order of the output.
var nacepuHeadings = []struct {
	text    string
	section string
}{
	{"POLÉVKY", "Polévky"},
	{"HLAVNÍ JÍDLA", "Hlavní jídla"},
	{"MENU", "Menu"},
}

type NacepuScraper struct {
	url        string
	fetcher    *httpx.CollyFetcher
	normalizer Normalizer
}

func NewNacepuScraper(pageURL string, fetcher *httpx.CollyFetcher) *NacepuScraper {
	if pageURL == "" {
		pageURL = NacepuURL
	}
	if fetcher == nil {
		fetcher = httpx.NewCollyFetcher(httpx.DefaultUserAgent)
	}
	return &NacepuScraper{
		url:        pageURL,
		fetcher:    fetcher,
		normalizer: NewLineNormalizer(),
	}
}

func (s *NacepuScraper) Name() string {
	return "nacepu"
}

func (s *NacepuScraper) FetchMenu(ctx context.Context) (*menu.Document, error) {
	var (
		doc      *menu.Document
		found    bool
		parseErr error
	)

	if err := s.fetcher.Fetch(ctx, s.url, func(c *colly.Collector) {
		c.OnHTML(nacepuContainerSel, func(e *colly.HTMLElement) {
			if found {
				return
			}
			found = true
			doc, parseErr = ExtractNacepu(e.DOM, s.normalizer)
		})
	}); err != nil {
		return nil, fmt.Errorf("nacepu fetch failed: %w", err)
	}
	observability.IncPagesFetched()

	if !found {
		return &menu.Document{}, ErrContainerNotFound
	}
	if parseErr != nil {
		return nil, parseErr
	}
	return doc, nil
}

// ExtractNacepu walks the paragraphs of the menu container. Heading
// paragraphs switch the current section, the stop phrase ends the menu and
// every other paragraph is normalized into the current section. All three
// sections are present in the result even when empty.
func ExtractNacepu(container *goquery.Selection, normalizer Normalizer) (*menu.Document, error) {
	names := make([]string, 0, len(nacepuHeadings))
	for _, h := range nacepuHeadings {
		names = append(names, h.section)
	}
	doc := menu.NewDocument(names...)

	var (
		current string
		err     error
	)
	container.Find("p").EachWithBreak(func(_ int, p *goquery.Selection) bool {
		raw := selectionText(p)
		upper := strings.ToUpper(raw)

		if strings.Contains(upper, nacepuStopPhrase) {
			return false
		}
		if section, ok := nacepuSection(strings.TrimSpace(upper)); ok {
			current = section
			return true
		}
		if current == "" {
			return true
		}

		cleaned, nerr := normalizer.Normalize(raw)
		if nerr != nil {
			err = fmt.Errorf("nacepu normalize failed for %q: %w", raw, nerr)
			return false
		}
		if cleaned == "" {
			observability.IncLineDropped()
			return true
		}
		observability.IncLineKept()
		doc.Append(current, cleaned)
		return true
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func nacepuSection(heading string) (string, bool) {
	for _, h := range nacepuHeadings {
		if h.text == heading {
			return h.section, true
		}
	}
	return "", false
}
