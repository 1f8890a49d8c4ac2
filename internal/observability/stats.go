package observability

import (
	"sync"
	"sync/atomic"
)

// StatsSnapshot holds counter totals. Snapshots taken in different processes
// can be combined with Add; Sub gives the activity between two snapshots of
// the same process.
type StatsSnapshot struct {
	PagesFetched      uint64            `json:"pages_fetched"`
	LinesKept         uint64            `json:"lines_kept"`
	LinesDropped      uint64            `json:"lines_dropped"`
	SectionsWritten   uint64            `json:"sections_written"`
	PagesPublished    uint64            `json:"pages_published"`
	ErrorsTotal       uint64            `json:"errors_total"`
	FetchCount        uint64            `json:"fetch_count"`
	FetchSeconds      float64           `json:"fetch_seconds"`
	FetchSecondsAvg   float64           `json:"fetch_seconds_avg"`
	ErrorsByType      map[string]uint64 `json:"errors_by_type,omitempty"`
	ErrorsByComponent map[string]uint64 `json:"errors_by_component,omitempty"`
}

var (
	pagesFetched    uint64
	linesKept       uint64
	linesDropped    uint64
	sectionsWritten uint64
	pagesPublished  uint64
	errorsTotal     uint64

	fetchCount uint64
	fetchNanos uint64

	statsMu           sync.Mutex
	errorsByType      = map[string]uint64{}
	errorsByComponent = map[string]uint64{}
)

func IncPagesFetched() {
	atomic.AddUint64(&pagesFetched, 1)
}

func IncLineKept() {
	atomic.AddUint64(&linesKept, 1)
}

func IncLineDropped() {
	atomic.AddUint64(&linesDropped, 1)
}

func AddSectionsWritten(n int) {
	if n <= 0 {
		return
	}
	atomic.AddUint64(&sectionsWritten, uint64(n))
}

func IncPagesPublished() {
	atomic.AddUint64(&pagesPublished, 1)
}

func ObserveFetchDuration(seconds float64) {
	if seconds <= 0 {
		return
	}
	atomic.AddUint64(&fetchCount, 1)
	atomic.AddUint64(&fetchNanos, uint64(seconds*1e9))
}

func IncError(errType, component string) {
	if errType == "" {
		errType = ErrorUnknown
	}
	if component == "" {
		component = "unknown"
	}
	atomic.AddUint64(&errorsTotal, 1)
	statsMu.Lock()
	errorsByType[errType]++
	errorsByComponent[component]++
	statsMu.Unlock()
}

func Snapshot() StatsSnapshot {
	statsMu.Lock()
	errorsTypeCopy := copyMap(errorsByType)
	errorsComponentCopy := copyMap(errorsByComponent)
	statsMu.Unlock()

	s := StatsSnapshot{
		PagesFetched:      atomic.LoadUint64(&pagesFetched),
		LinesKept:         atomic.LoadUint64(&linesKept),
		LinesDropped:      atomic.LoadUint64(&linesDropped),
		SectionsWritten:   atomic.LoadUint64(&sectionsWritten),
		PagesPublished:    atomic.LoadUint64(&pagesPublished),
		ErrorsTotal:       atomic.LoadUint64(&errorsTotal),
		FetchCount:        atomic.LoadUint64(&fetchCount),
		FetchSeconds:      float64(atomic.LoadUint64(&fetchNanos)) / 1e9,
		ErrorsByType:      errorsTypeCopy,
		ErrorsByComponent: errorsComponentCopy,
	}
	s.FetchSecondsAvg = s.avg()
	return s
}

// Add returns the sum of s and o.
func (s StatsSnapshot) Add(o StatsSnapshot) StatsSnapshot {
	out := StatsSnapshot{
		PagesFetched:      s.PagesFetched + o.PagesFetched,
		LinesKept:         s.LinesKept + o.LinesKept,
		LinesDropped:      s.LinesDropped + o.LinesDropped,
		SectionsWritten:   s.SectionsWritten + o.SectionsWritten,
		PagesPublished:    s.PagesPublished + o.PagesPublished,
		ErrorsTotal:       s.ErrorsTotal + o.ErrorsTotal,
		FetchCount:        s.FetchCount + o.FetchCount,
		FetchSeconds:      s.FetchSeconds + o.FetchSeconds,
		ErrorsByType:      copyMap(s.ErrorsByType),
		ErrorsByComponent: copyMap(s.ErrorsByComponent),
	}
	for k, v := range o.ErrorsByType {
		out.ErrorsByType[k] += v
	}
	for k, v := range o.ErrorsByComponent {
		out.ErrorsByComponent[k] += v
	}
	out.FetchSecondsAvg = out.avg()
	return out
}

// Sub returns the counts accumulated since earlier. Both snapshots must come
// from the same process, with earlier taken first.
func (s StatsSnapshot) Sub(earlier StatsSnapshot) StatsSnapshot {
	out := StatsSnapshot{
		PagesFetched:      s.PagesFetched - earlier.PagesFetched,
		LinesKept:         s.LinesKept - earlier.LinesKept,
		LinesDropped:      s.LinesDropped - earlier.LinesDropped,
		SectionsWritten:   s.SectionsWritten - earlier.SectionsWritten,
		PagesPublished:    s.PagesPublished - earlier.PagesPublished,
		ErrorsTotal:       s.ErrorsTotal - earlier.ErrorsTotal,
		FetchCount:        s.FetchCount - earlier.FetchCount,
		FetchSeconds:      s.FetchSeconds - earlier.FetchSeconds,
		ErrorsByType:      subMap(s.ErrorsByType, earlier.ErrorsByType),
		ErrorsByComponent: subMap(s.ErrorsByComponent, earlier.ErrorsByComponent),
	}
	out.FetchSecondsAvg = out.avg()
	return out
}

func (s StatsSnapshot) avg() float64 {
	if s.FetchCount == 0 {
		return 0
	}
	return s.FetchSeconds / float64(s.FetchCount)
}

func copyMap(src map[string]uint64) map[string]uint64 {
	out := make(map[string]uint64, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

func subMap(a, b map[string]uint64) map[string]uint64 {
	out := make(map[string]uint64)
	for k, v := range a {
		if d := v - b[k]; d > 0 {
			out[k] = d
		}
	}
	return out
}
