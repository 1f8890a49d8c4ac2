package publish

import (
	"strings"

	"github.com/baxromumarov/lunch-menu/internal/menu"
)

// RenderList renders doc as a nested unordered list, one outer item per
// section. Section names and lines are embedded verbatim, without escaping.
func RenderList(doc *menu.Document) string {
	lines := []string{"<ul>"}
	if doc != nil {
		for _, s := range doc.Sections() {
			lines = append(lines, "  <li><strong>"+s.Name+"</strong>")
			lines = append(lines, "    <ul>")
			for _, item := range s.Items {
				lines = append(lines, "      <li>"+item+"</li>")
			}
			lines = append(lines, "    </ul>")
			lines = append(lines, "  </li>")
		}
	}
	lines = append(lines, "</ul>")
	return strings.Join(lines, "\n")
}
