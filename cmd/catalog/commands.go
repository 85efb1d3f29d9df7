package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/matst80/dematerialized-catalog/pkg/tracking"
	"github.com/matst80/dematerialized-catalog/pkg/types"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var errNotLoaded = errors.New("the listing could not be loaded")

func newListCmd(opts *rootOptions) *cobra.Command {
	var address string
	var page int
	var groups map[types.Group]*[]string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show one listing page with the remaining filter options",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			boxes, err := checkboxesFromFlags(flagValues(groups))
			if err != nil {
				return err
			}
			addr, err := parseAddress(address)
			if err != nil {
				return fmt.Errorf("invalid address: %w", err)
			}
			if page > 0 {
				addr.Set("page", strconv.Itoa(page))
			}
			s, _, _ := opts.app.newSession(ctx, cmd.OutOrStdout(), boxes, addr)
			defer s.Close()
			if !s.Start(ctx) {
				return errNotLoaded
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&address, "address", "", "starting address, a query string or full url")
	cmd.Flags().IntVar(&page, "page", 0, "page to load")
	groups = filterFlags(cmd)
	return cmd
}

func newFacetsCmd(opts *rootOptions) *cobra.Command {
	var groups map[types.Group]*[]string
	cmd := &cobra.Command{
		Use:   "facets",
		Short: "Show the filter options that still yield results",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			boxes, err := checkboxesFromFlags(flagValues(groups))
			if err != nil {
				return err
			}
			s, _, _ := opts.app.newSession(ctx, cmd.OutOrStdout(), boxes, nil)
			defer s.Close()
			s.LoadOptions(ctx)
			s.DiscoverKeys(ctx)
			s.RefreshAvailability(ctx)
			return nil
		},
	}
	groups = filterFlags(cmd)
	return cmd
}

func newKeysCmd(opts *rootOptions) *cobra.Command {
	var groups map[types.Group]*[]string
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Detect and show the query parameter each filter group is sent as",
		Long: `Detected keys are stored in the configured store and reused by later runs.
Check a box per group to detect its key, e.g. --color Red.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			boxes, err := checkboxesFromFlags(flagValues(groups))
			if err != nil {
				return err
			}
			s, term, _ := opts.app.newSession(ctx, cmd.OutOrStdout(), boxes, nil)
			defer s.Close()
			term.RenderKeys(s.DiscoverKeys(ctx))
			return nil
		},
	}
	groups = filterFlags(cmd)
	return cmd
}

func newResetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Forget detected keys and show the unfiltered first page",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, _, _ := opts.app.newSession(ctx, cmd.OutOrStdout(), nil, nil)
			defer s.Close()
			if !s.ResetFilters(ctx) {
				return errNotLoaded
			}
			return nil
		},
	}
}

func newWishlistCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wishlist",
		Short: "Manage the wishlist",
	}
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List wishlisted item ids",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, _, _ := opts.app.newSession(ctx, cmd.OutOrStdout(), nil, nil)
			defer s.Close()
			items, err := s.Wishlist().Items(ctx)
			if err != nil {
				return err
			}
			for _, id := range items {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	}
	toggleCmd := &cobra.Command{
		Use:   "toggle <item-id>",
		Short: "Add or remove an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, _, _ := opts.app.newSession(ctx, cmd.OutOrStdout(), nil, nil)
			defer s.Close()
			added, err := s.ToggleWishlist(ctx, args[0])
			if err != nil {
				return err
			}
			if added {
				fmt.Fprintf(cmd.OutOrStdout(), "added %s\n", args[0])
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", args[0])
			}
			return nil
		},
	}
	cmd.AddCommand(listCmd, toggleCmd)
	return cmd
}

func newEventsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "events",
		Short: "Print tracking events as they are published",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := opts.app
			if a.cfg.Tracking.AmqpUrl == "" {
				return errors.New("tracking.amqp_url is not configured")
			}
			out := cmd.OutOrStdout()
			done, closeFn, err := tracking.Listen(a.cfg.Tracking.AmqpUrl, a.logger, func(body []byte) error {
				_, err := fmt.Fprintln(out, string(body))
				return err
			})
			if err != nil {
				return fmt.Errorf("could not listen for tracking events: %w", err)
			}
			defer func() {
				if err := closeFn(); err != nil {
					a.logger.Warn("error closing amqp connection", zap.Error(err))
				}
			}()
			select {
			case <-cmd.Context().Done():
			case <-done:
			}
			return nil
		},
	}
}
