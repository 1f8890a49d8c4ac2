package observability

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/baxromumarov/lunch-menu/internal/httpx"
	"github.com/baxromumarov/lunch-menu/internal/menu"
)

const (
	ErrorNetwork   = "network"
	ErrorParsing   = "parsing"
	ErrorStructure = "structure"
	ErrorRateLimit = "rate_limit"
	ErrorStore     = "store"
	ErrorUnknown   = "unknown"
)

func ClassifyFetchError(err error) string {
	if err == nil {
		return ErrorUnknown
	}
	var fe *httpx.FetchError
	if errors.As(err, &fe) {
		if fe.Status == http.StatusTooManyRequests {
			return ErrorRateLimit
		}
		return ErrorNetwork
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ErrorNetwork
	}
	return ErrorUnknown
}

// ClassifyScrapeError maps an error returned by a menu scraper to one of the
// Error* kinds.
func ClassifyScrapeError(err error) string {
	if err == nil {
		return ErrorUnknown
	}
	if errors.Is(err, menu.ErrLayoutChanged) {
		return ErrorStructure
	}
	if kind := ClassifyFetchError(err); kind != ErrorUnknown {
		return kind
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "parse failed") ||
		strings.Contains(msg, "decode failed") ||
		strings.Contains(msg, "normalize failed") {
		return ErrorParsing
	}
	return ErrorUnknown
}
