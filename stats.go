package phonecrawler

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// RunStats accumulates per-run counters. Increments are mutex-guarded so the
// bounded-parallel mode can share one instance across workers.
type RunStats struct {
	mu sync.Mutex

	BrandsProcessed int `json:"brands_processed"`
	BrandsFailed    int `json:"brands_failed"`
	ItemsFound      int `json:"items_found"`
	ItemsInserted   int `json:"items_inserted"`
	ItemsSkipped    int `json:"items_skipped"`
	ItemsFailed     int `json:"items_failed"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

func (s *RunStats) addBrandProcessed(found int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.BrandsProcessed++
	s.ItemsFound += found
}

func (s *RunStats) addBrandFailed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.BrandsFailed++
}

func (s *RunStats) addInserted() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ItemsInserted++
}

func (s *RunStats) addSkipped() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ItemsSkipped++
}

func (s *RunStats) addFailed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ItemsFailed++
}

// Summary renders the final run report.
func (s *RunStats) Summary(countBefore, countAfter int64) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var b strings.Builder
	line := strings.Repeat("=", 70)
	fmt.Fprintf(&b, "%s\n", line)
	fmt.Fprintf(&b, "Harvest complete in %v\n", s.FinishedAt.Sub(s.StartedAt).Round(time.Second))
	fmt.Fprintf(&b, "%s\n", line)
	fmt.Fprintf(&b, "  Brands processed:        %d\n", s.BrandsProcessed)
	fmt.Fprintf(&b, "  Brands failed:           %d\n", s.BrandsFailed)
	fmt.Fprintf(&b, "  Items found:             %d\n", s.ItemsFound)
	fmt.Fprintf(&b, "  Items inserted/updated:  %d\n", s.ItemsInserted)
	fmt.Fprintf(&b, "  Items skipped (existing):%d\n", s.ItemsSkipped)
	fmt.Fprintf(&b, "  Items failed:            %d\n", s.ItemsFailed)
	if countBefore >= 0 && countAfter >= 0 {
		fmt.Fprintf(&b, "  Records before/after:    %d / %d (net %+d)\n", countBefore, countAfter, countAfter-countBefore)
	}
	fmt.Fprintf(&b, "%s", line)
	return b.String()
}
