package phonecrawler

import (
	"context"
	"io"
	"log"
	"sync"
	"time"
)

// newTestHarvester builds a Harvester wired for tests: discard logger, no
// politeness delays, short retries, pointed at a local test server.
func newTestHarvester(baseURL string) *Harvester {
	logger := &defaultLogger{logger: log.New(io.Discard, "", 0)}
	selector := &TransportSelector{
		Logger:    logger,
		userAgent: defaultUserAgent,
		referer:   baseURL,
		timeout:   5 * time.Second,
	}
	return &Harvester{
		Name:        "test",
		BaseURL:     baseURL,
		Config:      newConfig(),
		Logger:      logger,
		selector:    selector,
		completed:   NewCompletionIndex(),
		preferred:   ChannelDirect,
		maxAttempts: 2,
		retryDelay:  time.Millisecond,
	}
}

func (app *Harvester) mustChannel() *Channel {
	ch, err := app.selector.Acquire(app.preferred)
	if err != nil {
		panic(err)
	}
	return ch
}

// fakeStore is an in-memory PhoneStore mimicking the upsert semantics of the
// Mongo implementation: version bumps on every write, first_seen_at sticks.
type fakeStore struct {
	mu      sync.Mutex
	records map[string]*PhoneRecord
	upserts int
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: make(map[string]*PhoneRecord)}
}

func (f *fakeStore) UpsertPhone(_ context.Context, record *PhoneRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := time.Now().UTC()
	stored := *record
	stored.LastUpdatedAt = now
	if previous, ok := f.records[record.DetailID]; ok {
		stored.Version = previous.Version + 1
		stored.FirstSeenAt = previous.FirstSeenAt
	} else {
		stored.Version = 1
		stored.FirstSeenAt = now
	}
	f.records[record.DetailID] = &stored
	f.upserts++
	return nil
}

func (f *fakeStore) PhoneExists(_ context.Context, detailID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.records[detailID]
	return ok, nil
}

func (f *fakeStore) PhoneCount(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.records)), nil
}

func (f *fakeStore) CompletedIDs(_ context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]string, 0, len(f.records))
	for id := range f.records {
		ids = append(ids, id)
	}
	return ids, nil
}

func (f *fakeStore) get(detailID string) *PhoneRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.records[detailID]
}
