package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/solheim-lab/hyttevakt/internal/availability"
	"github.com/solheim-lab/hyttevakt/internal/config"
	"github.com/solheim-lab/hyttevakt/internal/dntapi"
	"github.com/solheim-lab/hyttevakt/internal/eventbus"
	"github.com/solheim-lab/hyttevakt/internal/logger"
	"github.com/solheim-lab/hyttevakt/internal/notification"
	"github.com/solheim-lab/hyttevakt/internal/storage"
	"github.com/solheim-lab/hyttevakt/internal/watcher"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run one check cycle and print the results",
	Long:  "Check every enabled cabin once, print availability statistics, send any due notifications, and exit.",
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().Bool("no-notify", false, "Skip sending notifications for this run")
}

func runCheck(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	noNotify, _ := cmd.Flags().GetBool("no-notify")

	log, err := logger.NewSystemLogger(cfg.LogDir(), cfg.SlogLevel())
	if err != nil {
		return err
	}

	registry, err := config.LoadCabinRegistry(cfg.CabinsFile)
	if err != nil {
		return err
	}
	if len(registry.Enabled()) == 0 {
		return fmt.Errorf("no enabled cabins in %s", cfg.CabinsFile)
	}

	db, _, err := storage.NewSQLiteDB(cfg.DBPath())
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	history := storage.NewSQLiteHistoryStore(db, cfg.KeepLast)

	wcfg := watcher.Config{
		Fetcher:     dntapi.NewClient(cfg.BookingAPIBaseURL, 0, log),
		Registry:    registry,
		History:     history,
		Logger:      log,
		Concurrency: cfg.FetchConcurrency,
	}

	var bus eventbus.EventBus
	if !noNotify {
		bus = eventbus.New(0, log)
		handler := notification.NewHandler(
			func() (*notification.Settings, error) {
				return notification.LoadSettings(cfg.NotificationsFile())
			},
			storage.NewSQLiteNotificationStore(db), log,
		)
		bus.Subscribe(handler.Listener())
		wcfg.Events = bus
	}

	w, err := watcher.New(wcfg)
	if err != nil {
		return err
	}

	result, err := w.RunCycle(context.Background())
	if err != nil {
		return err
	}
	printResults(result)

	if bus != nil {
		// Drain pending notification deliveries before exiting.
		bus.Close()
	}
	return nil
}

func printResults(result *watcher.CycleResult) {
	for _, c := range result.Cabins {
		if c.Err != nil {
			fmt.Fprintf(os.Stderr, "%s: check failed: %v\n", c.CabinName, c.Err)
			continue
		}
		fmt.Printf("%s: %d available day(s), %d full weekend(s)", c.CabinName, c.AvailableDays, len(c.Weekends))
		if c.Tier != availability.TierNoChange {
			fmt.Printf(" [%s, +%d]", c.Tier, c.Added)
		}
		fmt.Println()
		for _, weekend := range c.Weekends {
			fmt.Printf("  weekend %s to %s\n", weekend.Friday, weekend.Sunday)
		}
	}
}
