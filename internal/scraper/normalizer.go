package scraper

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dlclark/regexp2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Patterns use .NET semantics so \b, \d, \s and \W treat Czech letters as
// word characters.
var (
	portionPattern = mustCompile(`\b\d+([.,]\d+)?\s*[gGlL]\b`)
	bracketPattern = mustCompile(`\([^)]*\)`)
	pricePattern   = mustCompile(`\b\d+([.,]\d+)?\s*,?\s*-\s*(?=$|\W)`)
)

const patternTimeout = time.Second

func mustCompile(expr string) *regexp2.Regexp {
	re := regexp2.MustCompile(expr, regexp2.None)
	re.MatchTimeout = patternTimeout
	return re
}

// Stage is one step of the line cleaning pipeline.
type Stage func(string) (string, error)

// StripPortions removes quantities such as "130g" or "0,3 l".
func StripPortions(s string) (string, error) {
	return portionPattern.Replace(s, "", -1, -1)
}

// StripBrackets removes parenthesised annotations such as allergen codes.
// Nesting is not tracked: a match ends at the first ')'.
func StripBrackets(s string) (string, error) {
	return bracketPattern.Replace(s, "", -1, -1)
}

// StripPrices removes prices written as "55,-", "129.90,-" or "199 ,-".
func StripPrices(s string) (string, error) {
	return pricePattern.Replace(s, "", -1, -1)
}

func CollapseSpace(s string) (string, error) {
	return strings.Join(strings.Fields(s), " "), nil
}

// CapitalizeFirst upper-cases the first character and leaves the rest alone.
func CapitalizeFirst(s string) (string, error) {
	if s == "" {
		return s, nil
	}
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError && size <= 1 {
		return s, nil
	}
	return cases.Upper(language.Und).String(s[:size]) + s[size:], nil
}

// DefaultStages returns the cleaning pipeline in the order it must run:
// portions and brackets go before prices so "130g 55,-" is not misread.
func DefaultStages() []Stage {
	return []Stage{StripPortions, StripBrackets, StripPrices, CollapseSpace, CapitalizeFirst}
}

// LineNormalizer cleans single menu lines for display.
type LineNormalizer struct {
	stages []Stage
}

func NewLineNormalizer(stages ...Stage) *LineNormalizer {
	if len(stages) == 0 {
		stages = DefaultStages()
	}
	return &LineNormalizer{stages: stages}
}

// Normalize runs every stage over line. An empty result means nothing worth
// showing was left and the caller should drop the line.
func (n *LineNormalizer) Normalize(line string) (string, error) {
	var err error
	for _, stage := range n.stages {
		if line, err = stage(line); err != nil {
			return "", err
		}
	}
	return line, nil
}
