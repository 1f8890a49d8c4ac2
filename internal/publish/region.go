package publish

import (
	"fmt"
	"time"

	"github.com/dlclark/regexp2"
)

const TimestampLayout = "2006-01-02 15:04"

// Region is an injection point in the page: the text after `id="ID">` up to
// the next closing tag of kind Tag. With Exact set the marker must be the
// whole opening tag `<Tag id="ID">`.
type Region struct {
	ID    string
	Tag   string
	Exact bool
}

var (
	NacepuRegion    = Region{ID: "nacepu-menu", Tag: "div"}
	SiaRegion       = Region{ID: "sia-menu", Tag: "div"}
	TimestampRegion = Region{ID: "last-updated", Tag: "span", Exact: true}
)

func (r Region) pattern() (*regexp2.Regexp, error) {
	if r.ID == "" || r.Tag == "" {
		return nil, fmt.Errorf("region needs both id and tag, got %+v", r)
	}
	marker := `id="` + regexp2.Escape(r.ID) + `">`
	if r.Exact {
		marker = `<` + regexp2.Escape(r.Tag) + ` ` + marker
	}
	expr := `(` + marker + `)(.*?)(</` + regexp2.Escape(r.Tag) + `>)`
	re, err := regexp2.Compile(expr, regexp2.Singleline)
	if err != nil {
		return nil, err
	}
	re.MatchTimeout = 5 * time.Second
	return re, nil
}

// ReplaceRegion swaps the inner content of every occurrence of region in
// page for content. The marker and closing tag are kept; content is inserted
// literally.
func ReplaceRegion(page string, region Region, content string) (string, error) {
	re, err := region.pattern()
	if err != nil {
		return "", err
	}
	out, err := re.ReplaceFunc(page, func(m regexp2.Match) string {
		return m.GroupByNumber(1).String() + content + m.GroupByNumber(3).String()
	}, -1, -1)
	if err != nil {
		return "", fmt.Errorf("replace region %s failed: %w", region.ID, err)
	}
	return out, nil
}

// StampTime writes now, formatted as YYYY-MM-DD HH:MM, into the timestamp span.
func StampTime(page string, now time.Time) (string, error) {
	return ReplaceRegion(page, TimestampRegion, now.Format(TimestampLayout))
}
