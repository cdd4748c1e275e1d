package phonecrawler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

const (
	defaultBaseURL = "https://www.gsmarena.com"
	sourceTag      = "gsmarena"
)

// Harvester drives the brand → listing → detail → normalize → persist
// pipeline.
type Harvester struct {
	Name    string
	BaseURL string
	Config  *configService
	Logger  *defaultLogger

	selector  *TransportSelector
	store     PhoneStore
	completed *CompletionIndex

	preferred   ChannelKind
	maxAttempts int
	retryDelay  time.Duration
	pageDelay   time.Duration
	itemDelay   time.Duration
	brandDelay  time.Duration
}

// RunOptions bound a single run. Zero limits mean "all"; Workers <= 1 runs
// sequentially.
type RunOptions struct {
	MaxBrands        int
	MaxItemsPerBrand int
	SkipExisting     bool
	Workers          int
	WarmCompletion   bool
}

// New builds a Harvester from the environment. The store is attached
// separately (ConnectStore for MongoDB, or any PhoneStore via AttachStore).
func New(name string) *Harvester {
	config := newConfig()
	logger := newDefaultLogger(name)

	app := &Harvester{
		Name:        name,
		BaseURL:     config.EnvString("BASE_URL", defaultBaseURL),
		Config:      config,
		Logger:      logger,
		selector:    NewTransportSelector(config, logger),
		completed:   NewCompletionIndex(),
		maxAttempts: config.EnvInt("MAX_RETRY_ATTEMPTS", 3),
		retryDelay:  config.EnvDurationMs("RETRY_DELAY_MS", 500*time.Millisecond),
		pageDelay:   config.EnvDurationMs("DELAY_BETWEEN_PAGES_MS", 200*time.Millisecond),
		itemDelay:   config.EnvDurationMs("DELAY_BETWEEN_PHONES_MS", 300*time.Millisecond),
		brandDelay:  config.EnvDurationMs("DELAY_BETWEEN_BRANDS_MS", 500*time.Millisecond),
	}
	app.preferred = channelKindFromName(config.EnvString("FETCH_CHANNEL", "direct"))
	return app
}

func channelKindFromName(name string) ChannelKind {
	switch name {
	case "proxy":
		return ChannelProxyRotated
	case "render":
		return ChannelRenderAPI
	default:
		return ChannelDirect
	}
}

// ConnectStore attaches a MongoDB store built from the environment and
// ensures its indexes.
func (app *Harvester) ConnectStore(ctx context.Context) error {
	store, err := NewMongoStore(ctx, app.Config, app.Logger)
	if err != nil {
		return err
	}
	if err := store.EnsureIndexes(ctx); err != nil {
		// Index creation racing another run is harmless.
		app.Logger.Warn("EnsureIndexes: %v", err)
	}
	app.store = store
	return nil
}

// AttachStore sets the persistence collaborator.
func (app *Harvester) AttachStore(store PhoneStore) {
	app.store = store
}

// Close releases the store connection if it owns one.
func (app *Harvester) Close(ctx context.Context) {
	if closer, ok := app.store.(interface{ Close(context.Context) error }); ok {
		if err := closer.Close(ctx); err != nil {
			app.Logger.Error("Failed to close store: %v", err)
		}
	}
}

// completionLister is implemented by stores that can enumerate already
// persisted ids.
type completionLister interface {
	CompletedIDs(ctx context.Context) ([]string, error)
}

// Run executes one full harvest. Per-item and per-brand failures are counted
// and the run continues; credential exhaustion aborts the remaining brands
// since no transport can make progress. Partial statistics are always
// returned, alongside whatever error ended the run early.
func (app *Harvester) Run(ctx context.Context, opts RunOptions) (*RunStats, error) {
	if app.store == nil {
		return nil, fmt.Errorf("no store attached")
	}

	stats := &RunStats{StartedAt: time.Now()}
	defer func() { stats.FinishedAt = time.Now() }()

	if opts.WarmCompletion {
		if lister, ok := app.store.(completionLister); ok {
			ids, err := lister.CompletedIDs(ctx)
			if err != nil {
				app.Logger.Warn("Could not pre-warm completion index: %v", err)
			} else {
				app.completed.AddAll(ids)
				app.Logger.Info("Pre-warmed completion index with %d ids", len(ids))
			}
		}
	}

	channel, err := app.selector.Acquire(app.preferred)
	if err != nil {
		return stats, err
	}
	app.Logger.Info("Harvest started via %s channel 🚀", channel.Kind)

	brands, err := WithRetry(ctx, channel, app.maxAttempts, app.retryDelay, func() ([]Brand, error) {
		return app.FetchBrands(ctx, channel)
	})
	if err != nil {
		return stats, fmt.Errorf("could not fetch brand catalog: %w", err)
	}
	if len(brands) == 0 {
		app.Logger.Warn("Brand index yielded zero brands; likely a parse or block issue")
	}
	if opts.MaxBrands > 0 && len(brands) > opts.MaxBrands {
		brands = brands[:opts.MaxBrands]
	}
	app.Logger.Info("Processing %d brand(s)", len(brands))

	for i, brand := range brands {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		app.Logger.Info("[%d/%d] %s (%d devices)", i+1, len(brands), brand.Name, brand.DeviceCount)

		items, err := app.FetchListing(ctx, channel, brand.Slug, opts.MaxItemsPerBrand)
		if err != nil {
			stats.addBrandFailed()
			if errors.Is(err, ErrCredentialsExhausted) {
				app.Logger.Error("Aborting run, credentials exhausted during %s listing", brand.Name)
				return stats, err
			}
			if ctx.Err() != nil {
				return stats, ctx.Err()
			}
			app.Logger.Error("Listing for %s failed: %v", brand.Name, err)
			continue
		}
		stats.addBrandProcessed(len(items))
		app.Logger.Info("Found %d item(s) for %s", len(items), brand.Name)

		if err := app.processItems(ctx, channel, brand, items, opts, stats); err != nil {
			if errors.Is(err, ErrCredentialsExhausted) {
				app.Logger.Error("Aborting run, credentials exhausted during %s items", brand.Name)
			}
			return stats, err
		}

		if i < len(brands)-1 {
			if err := sleepCtx(ctx, app.brandDelay); err != nil {
				return stats, err
			}
		}
	}

	return stats, nil
}

// RunAndReport runs a harvest and logs the final summary, including the
// store's record count before and after when the store can report it.
func (app *Harvester) RunAndReport(ctx context.Context, opts RunOptions) (*RunStats, error) {
	countBefore := int64(-1)
	if app.store != nil {
		if n, err := app.store.PhoneCount(ctx); err == nil {
			countBefore = n
		}
	}

	stats, runErr := app.Run(ctx, opts)

	countAfter := int64(-1)
	if app.store != nil {
		if n, err := app.store.PhoneCount(context.WithoutCancel(ctx)); err == nil {
			countAfter = n
		}
	}
	if stats != nil {
		app.Logger.Printf("%s", stats.Summary(countBefore, countAfter))
	}
	return stats, runErr
}

// processItems ingests one brand's items, sequentially or with a bounded
// worker pool. Brands stay sequential either way so the outbound request rate
// against the origin stays bounded. The returned error is fatal-class only
// (credential exhaustion or cancellation); ordinary item failures are
// counted and swallowed.
func (app *Harvester) processItems(ctx context.Context, channel *Channel, brand Brand, items []ListingItem, opts RunOptions, stats *RunStats) error {
	if opts.Workers <= 1 {
		for _, item := range items {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := app.processItem(ctx, channel, brand, item, opts, stats); err != nil {
				return err
			}
			if err := sleepCtx(ctx, app.itemDelay); err != nil {
				return err
			}
		}
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	itemChan := make(chan ListingItem, len(items))
	for _, item := range items {
		itemChan <- item
	}
	close(itemChan)

	var wg sync.WaitGroup
	var once sync.Once
	var fatal error

	for i := 0; i < opts.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range itemChan {
				if workerCtx.Err() != nil {
					return
				}
				if err := app.processItem(workerCtx, channel, brand, item, opts, stats); err != nil {
					once.Do(func() {
						fatal = err
						cancel()
					})
					return
				}
				if sleepCtx(workerCtx, app.itemDelay) != nil {
					return
				}
			}
		}()
	}

	// Join barrier before the next brand.
	wg.Wait()
	if fatal != nil {
		return fatal
	}
	return ctx.Err()
}

func (app *Harvester) processItem(ctx context.Context, channel *Channel, brand Brand, item ListingItem, opts RunOptions, stats *RunStats) error {
	if opts.SkipExisting {
		if app.completed.Has(item.DetailID) {
			stats.addSkipped()
			return nil
		}
		exists, err := app.store.PhoneExists(ctx, item.DetailID)
		if err != nil {
			app.Logger.Error("Existence check for %s/%s failed: %v", brand.Name, item.DetailID, err)
			stats.addFailed()
			return nil
		}
		if exists {
			app.completed.Add(item.DetailID)
			stats.addSkipped()
			app.Logger.Info("Skipping %s, already ingested", item.DetailID)
			return nil
		}
	}

	type specResult struct {
		name       string
		categories []RawCategory
	}
	result, err := WithRetry(ctx, channel, app.maxAttempts, app.retryDelay, func() (specResult, error) {
		name, categories, err := app.FetchSpecification(ctx, channel, item.DetailID)
		return specResult{name: name, categories: categories}, err
	})
	if err != nil {
		if errors.Is(err, ErrCredentialsExhausted) || ctx.Err() != nil {
			return err
		}
		app.Logger.Error("Detail fetch for %s/%s (%s) failed: %v", brand.Name, item.Name, item.DetailID, err)
		stats.addFailed()
		return nil
	}

	record := app.buildRecord(brand, item, result.name, result.categories)
	if err := app.store.UpsertPhone(ctx, record); err != nil {
		app.Logger.Error("Persist for %s/%s failed: %v", brand.Name, item.DetailID, err)
		stats.addFailed()
		return nil
	}

	app.completed.Add(item.DetailID)
	stats.addInserted()
	return nil
}

// buildRecord assembles the persisted document from a listing stub and its
// extracted categories.
func (app *Harvester) buildRecord(brand Brand, item ListingItem, pageName string, categories []RawCategory) *PhoneRecord {
	name := item.Name
	if pageName != "" {
		name = pageName
	}
	record := &PhoneRecord{
		DetailID:       item.DetailID,
		Name:           name,
		Brand:          brand.Name,
		URL:            item.DetailURL,
		ThumbnailURL:   item.ThumbnailURL,
		Source:         sourceTag,
		NormalizedSpec: Normalize(categories),
		SpecsRaw:       categories,
	}
	if record.SpecsRaw == nil {
		record.SpecsRaw = []RawCategory{}
	}
	return record
}
