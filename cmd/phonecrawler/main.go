package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"phonecrawler"
)

var rootCmd = &cobra.Command{
	Use:   "phonecrawler [max-brands] [max-items-per-brand]",
	Short: "Harvest device brands and specifications into MongoDB",
	Long: `phonecrawler walks the brand catalog, paginates each brand's device
listing, fetches and normalizes every device's specification page and upserts
the records into MongoDB keyed by detail id. Runs are resumable: already
ingested devices are skipped unless SKIP_EXISTING=false.`,
	Args: cobra.MaximumNArgs(2),
	RunE: run,
	// Usage output on a failed run is just noise here.
	SilenceUsage: true,
}

func run(cmd *cobra.Command, args []string) error {
	maxBrands, err := positionalLimit(args, 0)
	if err != nil {
		return err
	}
	maxItems, err := positionalLimit(args, 1)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := phonecrawler.New("gsmarena")

	if app.Config.EnvBool("CHECK_ROBOTS_TXT", false) && !app.CheckRobotsTxt() {
		return fmt.Errorf("crawling disallowed by robots.txt")
	}

	if err := app.ConnectStore(ctx); err != nil {
		return err
	}
	defer app.Close(context.Background())

	if _, err := app.FetchProxyPool(ctx); err != nil {
		app.Logger.Warn("Proxy pool unavailable: %v", err)
	}

	opts := phonecrawler.RunOptions{
		MaxBrands:        maxBrands,
		MaxItemsPerBrand: maxItems,
		SkipExisting:     app.Config.EnvBool("SKIP_EXISTING", true),
		Workers:          app.Config.EnvInt("PARALLEL_WORKERS", 1),
		WarmCompletion:   app.Config.EnvBool("WARM_COMPLETION", false),
	}

	stats, runErr := app.RunAndReport(ctx, opts)
	if runErr != nil {
		if errors.Is(runErr, context.Canceled) {
			app.Logger.Warn("Run interrupted")
		} else {
			app.Logger.Error("Run ended early: %v", runErr)
		}
	}

	if app.Config.EnvBool("EXPORT_JSON", false) && stats != nil {
		if path, err := app.ExportJSON("run_stats", stats); err != nil {
			app.Logger.Error("Export failed: %v", err)
		} else {
			app.Logger.Info("Run statistics written to %s", path)
		}
	}

	// Partial item/brand failures never fail the process; only setup does.
	return nil
}

func positionalLimit(args []string, index int) (int, error) {
	if len(args) <= index {
		return 0, nil
	}
	value, err := strconv.Atoi(args[index])
	if err != nil || value < 0 {
		return 0, fmt.Errorf("argument %d must be a non-negative integer, got %q", index+1, args[index])
	}
	return value, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
