package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/solheim-lab/hyttevakt/internal/api"
	"github.com/solheim-lab/hyttevakt/internal/build"
	"github.com/solheim-lab/hyttevakt/internal/config"
	"github.com/solheim-lab/hyttevakt/internal/dntapi"
	"github.com/solheim-lab/hyttevakt/internal/eventbus"
	"github.com/solheim-lab/hyttevakt/internal/logger"
	"github.com/solheim-lab/hyttevakt/internal/metrics"
	"github.com/solheim-lab/hyttevakt/internal/notification"
	"github.com/solheim-lab/hyttevakt/internal/scheduler"
	"github.com/solheim-lab/hyttevakt/internal/server"
	"github.com/solheim-lab/hyttevakt/internal/storage"
	"github.com/solheim-lab/hyttevakt/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the watcher daemon",
	Long:  "Start the watcher daemon: periodic availability checks, notifications, and the HTTP API.",
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().Int("port", 0, "HTTP server port (overrides PORT env var)")
	watchCmd.Flags().String("cabins-file", "", "Path to the watched-cabins YAML file (overrides HYTTEVAKT_CABINS_FILE env var)")
}

func runWatch(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		cfg.Port, _ = cmd.Flags().GetInt("port")
	}
	if cmd.Flags().Changed("cabins-file") {
		cfg.CabinsFile, _ = cmd.Flags().GetString("cabins-file")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log, err := logger.NewSystemLogger(cfg.LogDir(), cfg.SlogLevel())
	if err != nil {
		return err
	}
	log.Info("starting hyttevakt", "version", build.String(), "data_dir", cfg.DataDir)

	registry, err := config.LoadCabinRegistry(cfg.CabinsFile)
	if err != nil {
		return err
	}
	if len(registry.Enabled()) == 0 {
		log.Warn("no enabled cabins configured", "cabins_file", cfg.CabinsFile)
	}

	db, fresh, err := storage.NewSQLiteDB(cfg.DBPath())
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	if fresh {
		log.Info("created new history database", "path", cfg.DBPath())
	}

	history := storage.NewSQLiteHistoryStore(db, cfg.KeepLast)
	notificationLog := storage.NewSQLiteNotificationStore(db)

	bus := eventbus.New(0, log)
	defer bus.Close()

	handler := notification.NewHandler(
		func() (*notification.Settings, error) {
			return notification.LoadSettings(cfg.NotificationsFile())
		},
		notificationLog, log,
	)
	bus.Subscribe(handler.Listener())

	m := metrics.New()

	w, err := watcher.New(watcher.Config{
		Fetcher:     dntapi.NewClient(cfg.BookingAPIBaseURL, 0, log),
		Registry:    registry,
		History:     history,
		Events:      bus,
		Metrics:     m,
		Logger:      log,
		Concurrency: cfg.FetchConcurrency,
	})
	if err != nil {
		return err
	}

	sched, err := scheduler.New(scheduler.Config{
		Runner:     w,
		Interval:   cfg.CheckInterval(),
		Logger:     log,
		RunOnStart: true,
	})
	if err != nil {
		return err
	}
	w.SetNextScheduler(sched)
	if err := sched.Start(ctx); err != nil {
		return err
	}
	defer func() { _ = sched.Stop() }()

	apiSrv := api.New(registry, history, notificationLog, w, m, log)
	srv := server.New(apiSrv, cfg.Port, log)

	fmt.Fprintf(os.Stderr, "hyttevakt watching %d cabin(s), HTTP API on http://localhost:%d\n",
		len(registry.Enabled()), cfg.Port)

	return srv.Run(ctx)
}
