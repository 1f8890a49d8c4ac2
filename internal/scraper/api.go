package scraper

import (
	"context"
	"fmt"

	"github.com/baxromumarov/lunch-menu/internal/menu"
)

var (
	ErrContainerNotFound = fmt.Errorf("%w: menu container not found", menu.ErrLayoutChanged)
	ErrPayloadNotFound   = fmt.Errorf("%w: document.write payload not found", menu.ErrLayoutChanged)
)

// MenuScraper fetches one restaurant's menu. Layout problems are reported
// with an error wrapping menu.ErrLayoutChanged and an empty document.
type MenuScraper interface {
	Name() string
	FetchMenu(ctx context.Context) (*menu.Document, error)
}

type Normalizer interface {
	Normalize(line string) (string, error)
}
