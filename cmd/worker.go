package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/binrota/internal/bookings"
	"github.com/example/binrota/internal/config"
	"github.com/example/binrota/internal/council"
	"github.com/example/binrota/internal/db"
	"github.com/example/binrota/internal/migrate"
	"github.com/example/binrota/internal/worker"
	"github.com/spf13/cobra"
)

func newWorkerCmd() *cobra.Command {
	var migrateUp bool

	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Run the council-schedule reconciliation worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			d, err := db.Open(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer d.Close()

			if err := d.Ping(ctx); err != nil {
				return fmt.Errorf("db ping: %w", err)
			}

			if migrateUp {
				if err := migrate.Up(ctx, d); err != nil {
					return err
				}
			}

			w := &worker.Worker{
				Store: bookings.NewRepo(d),
				Source: &council.Scraper{
					CalendarURL: cfg.CouncilCalendarURL,
					Timeout:     cfg.ScrapeTimeout,
				},
				Interval: cfg.PollInterval,
			}

			err = w.Run(ctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&migrateUp, "migrate", true, "run database migrations on startup")
	cmd.Flags().Lookup("migrate").NoOptDefVal = "true"
	return cmd
}
