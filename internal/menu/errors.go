package menu

import "errors"

// ErrLayoutChanged marks a source page that no longer has the structure the
// extractors expect.
var ErrLayoutChanged = errors.New("source layout changed")
