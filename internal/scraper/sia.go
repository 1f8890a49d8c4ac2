package scraper

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/dlclark/regexp2"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"

	"github.com/baxromumarov/lunch-menu/internal/httpx"
	"github.com/baxromumarov/lunch-menu/internal/menu"
	"github.com/baxromumarov/lunch-menu/internal/observability"
)

const SiaURL = "https://www.menubot.cz/app/users/sia484626412569856654/export/dailymenu_a.js"

// documentWritePattern captures the single-quoted literal of
// document.write('...'); honouring backslash escapes inside it.
var documentWritePattern = func() *regexp2.Regexp {
	re := regexp2.MustCompile(`document\.write\(\s*'((?:[^'\\]|\\.)*)'\s*\);`, regexp2.Singleline)
	re.MatchTimeout = patternTimeout
	return re
}()

type SiaScraper struct {
	url     string
	client  *httpx.PoliteClient
	charset string
}

func NewSiaScraper(scriptURL string, client *httpx.PoliteClient) *SiaScraper {
	if scriptURL == "" {
		scriptURL = SiaURL
	}
	if client == nil {
		client = httpx.NewPoliteClient(httpx.DefaultUserAgent)
	}
	return &SiaScraper{
		url:     scriptURL,
		client:  client,
		charset: "utf-8",
	}
}

// SetCharset selects the encoding of the script payload, e.g. "windows-1250".
func (s *SiaScraper) SetCharset(label string) {
	if label != "" {
		s.charset = label
	}
}

func (s *SiaScraper) Name() string {
	return "sia"
}

func (s *SiaScraper) FetchMenu(ctx context.Context) (*menu.Document, error) {
	body, err := s.client.Get(ctx, s.url)
	if err != nil {
		return nil, fmt.Errorf("sia fetch failed: %w", err)
	}
	observability.IncPagesFetched()

	script, err := DecodeScript(body, s.charset)
	if err != nil {
		return nil, err
	}
	fragment, err := ExtractFragment(script)
	if err != nil {
		return &menu.Document{}, err
	}
	return ParseSiaFragment(html.UnescapeString(fragment))
}

// DecodeScript converts the raw payload to UTF-8. Invalid UTF-8 input is
// repaired with U+FFFD; other labels go through the WHATWG encoding table.
func DecodeScript(body []byte, label string) (string, error) {
	enc, name := charset.Lookup(label)
	if enc == nil {
		return "", fmt.Errorf("sia decode failed: unknown charset %q", label)
	}
	if name == "utf-8" {
		if utf8.Valid(body) {
			return string(body), nil
		}
		return strings.ToValidUTF8(string(body), "\uFFFD"), nil
	}
	out, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return "", fmt.Errorf("sia decode failed: %w", err)
	}
	return string(out), nil
}

// ExtractFragment returns the HTML written by the script's document.write
// call with JavaScript string escapes resolved.
func ExtractFragment(script string) (string, error) {
	m, err := documentWritePattern.FindStringMatch(script)
	if err != nil {
		return "", fmt.Errorf("sia parse failed: %w", err)
	}
	if m == nil {
		return "", ErrPayloadNotFound
	}
	return unescapeJS(m.GroupByNumber(1).String()), nil
}

func unescapeJS(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			sb.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case 'u':
			if i+4 < len(s) {
				if r, err := strconv.ParseUint(s[i+1:i+5], 16, 32); err == nil {
					sb.WriteRune(rune(r))
					i += 4
					continue
				}
			}
			sb.WriteByte('u')
		case '\n':
			// line continuation
		default:
			sb.WriteByte(s[i])
		}
	}
	return sb.String()
}

// ParseSiaFragment builds one section per dm-cat block, titled by its h2.
// Items read "name: description", or just the name when the description is
// blank. A repeated title extends the earlier section.
func ParseSiaFragment(fragment string) (*menu.Document, error) {
	page, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return nil, fmt.Errorf("sia parse failed: %w", err)
	}

	doc := &menu.Document{}
	page.Find("div.dm-cat").Each(func(_ int, cat *goquery.Selection) {
		title := cat.Find("div.dm-cat-title").First().Find("h2").First()
		if title.Length() == 0 {
			return
		}
		section := selectionText(title)
		doc.Ensure(section)

		cat.Find("div.dm-item").Each(func(_ int, item *goquery.Selection) {
			content := item.Find("div.dm-content").First()
			if content.Length() == 0 {
				return
			}
			name := selectionText(content.Find("h3").First())
			description := strings.TrimSpace(selectionText(content.Find("p").First()))

			line := ItemLine(name, description)
			if line == "" {
				observability.IncLineDropped()
				return
			}
			observability.IncLineKept()
			doc.Append(section, line)
		})
	})
	return doc, nil
}

func ItemLine(name, description string) string {
	if strings.TrimSpace(description) != "" {
		return name + ": " + strings.TrimSpace(description)
	}
	return name
}
