package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// StrippedText concatenates every text string below n after trimming each
// one, so "<p> Guláš <b>55,-</b></p>" reads "Guláš55,-". Comments and the
// bodies of script and style elements are skipped.
func StrippedText(n *html.Node) string {
	var sb strings.Builder
	writeStripped(&sb, n)
	return sb.String()
}

func writeStripped(sb *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		sb.WriteString(strings.TrimSpace(n.Data))
		return
	case html.CommentNode:
		return
	case html.ElementNode:
		if n.Data == "script" || n.Data == "style" {
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeStripped(sb, c)
	}
}

func selectionText(sel *goquery.Selection) string {
	var sb strings.Builder
	for _, n := range sel.Nodes {
		writeStripped(&sb, n)
	}
	return sb.String()
}
