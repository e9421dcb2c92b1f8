package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/binrota/internal/auth"
	"github.com/example/binrota/internal/bookings"
	"github.com/example/binrota/internal/config"
	"github.com/example/binrota/internal/council"
	"github.com/example/binrota/internal/db"
	"github.com/example/binrota/internal/migrate"
	"github.com/example/binrota/internal/web"
	"github.com/example/binrota/internal/worker"
	"github.com/spf13/cobra"
)

func newServerCmd() *cobra.Command {
	var migrateUp bool
	var withWorker bool

	cmd := &cobra.Command{
		Use:   "server",
		Short: "Run the intake API + ops dashboard (and, by default, the worker)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			if err := cfg.RequireCookieKeys(); err != nil {
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

			authStore := auth.NewStore(d, cfg.CookieHashKey, cfg.CookieBlockKey)
			repo := bookings.NewRepo(d)

			if withWorker {
				w := &worker.Worker{
					Store: repo,
					Source: &council.Scraper{
						CalendarURL: cfg.CouncilCalendarURL,
						Timeout:     cfg.ScrapeTimeout,
					},
					Interval: cfg.PollInterval,
				}
				go func() { _ = w.Run(ctx) }()
			}

			ws := &web.Server{Auth: authStore, Bookings: repo}
			err = web.Start(ctx, cfg.ListenAddr, ws.Routes())
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&migrateUp, "migrate", true, "run database migrations on startup")
	cmd.Flags().Lookup("migrate").NoOptDefVal = "true"
	cmd.Flags().BoolVar(&withWorker, "worker", true, "also run the schedule worker in-process")
	return cmd
}
