package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/example/binrota/internal/bookings"
	"github.com/example/binrota/internal/config"
	"github.com/example/binrota/internal/db"
	"github.com/example/binrota/internal/migrate"
	"github.com/spf13/cobra"
)

func newBookingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "booking",
		Short: "Manage bookings (non-UI)",
	}
	cmd.AddCommand(newBookingCreateCmd())
	cmd.AddCommand(newBookingListCmd())
	return cmd
}

func newBookingCreateCmd() *cobra.Command {
	var (
		name     string
		email    string
		phone    string
		address  string
		postcode string
		locality string
		bins     string
	)

	c := &cobra.Command{
		Use:   "create",
		Short: "Queue a booking for the worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			ctx := context.Background()
			d, err := db.Open(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer d.Close()

			if err := migrate.Up(ctx, d); err != nil {
				return err
			}

			parsed, err := parseBins(bins)
			if err != nil {
				return err
			}

			repo := bookings.NewRepo(d)
			id, err := repo.Create(ctx, bookings.Booking{
				CustomerName:     name,
				Email:            email,
				Phone:            phone,
				AddressFormatted: address,
				Postcode:         postcode,
				Locality:         locality,
				Bins:             parsed,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "created booking id=%d status=new\n", id)
			return nil
		},
	}

	c.Flags().StringVar(&name, "name", "", "customer name")
	c.Flags().StringVar(&email, "email", "", "customer email")
	c.Flags().StringVar(&phone, "phone", "", "customer phone")
	c.Flags().StringVar(&address, "address", "", "formatted address as the council calendar expects it")
	c.Flags().StringVar(&postcode, "postcode", "", "postcode, e.g. BT20 5EY")
	c.Flags().StringVar(&locality, "locality", "", "town/locality free text")
	c.Flags().StringVar(&bins, "bins", "black=1", "comma-separated colour=quantity pairs, e.g. black=1,blue=2")
	_ = c.MarkFlagRequired("address")
	_ = c.MarkFlagRequired("postcode")
	return c
}

func newBookingListCmd() *cobra.Command {
	var limit int
	c := &cobra.Command{
		Use:   "list",
		Short: "List recent bookings",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			ctx := context.Background()
			d, err := db.Open(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer d.Close()

			repo := bookings.NewRepo(d)
			bs, err := repo.ListRecent(ctx, limit)
			if err != nil {
				return err
			}
			for _, b := range bs {
				line := fmt.Sprintf("id=%d status=%s postcode=%s", b.ID, b.Status, b.Postcode)
				if b.ProposedCleanDate != nil {
					line += fmt.Sprintf(" clean=%s area=%s", *b.ProposedCleanDate, deref(b.ProposedArea))
				}
				if b.ErrorMessage != nil {
					line += fmt.Sprintf(" message=%q", *b.ErrorMessage)
				}
				fmt.Fprintln(os.Stdout, line)
			}
			return nil
		},
	}
	c.Flags().IntVar(&limit, "limit", 50, "max bookings to list")
	return c
}

// parseBins turns "black=1,blue=2" into a bin request map.
func parseBins(s string) (bookings.Bins, error) {
	out := bookings.Bins{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		colour, qtyStr, found := strings.Cut(part, "=")
		qty := 1
		if found {
			var err error
			qty, err = strconv.Atoi(strings.TrimSpace(qtyStr))
			if err != nil || qty < 0 {
				return nil, fmt.Errorf("invalid bin quantity in %q", part)
			}
		}
		out[strings.ToLower(strings.TrimSpace(colour))] = bookings.BinRequest{Quantity: qty}
	}
	if !out.Requested() {
		return nil, fmt.Errorf("--bins must request at least one bin, e.g. black=1")
	}
	return out, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
