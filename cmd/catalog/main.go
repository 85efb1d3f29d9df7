package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/matst80/dematerialized-catalog/pkg/config"
	"github.com/matst80/dematerialized-catalog/pkg/logging"
	"github.com/matst80/dematerialized-catalog/pkg/types"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type rootOptions struct {
	configFile string
	v          *viper.Viper
	app        *app
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{v: config.New()}

	root := &cobra.Command{
		Use:           "catalog",
		Short:         "Browse the Dematerialized clothing catalog from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.v, opts.configFile)
			if err != nil {
				return err
			}
			logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			a, err := newApp(cfg, logger)
			if err != nil {
				return err
			}
			opts.app = a
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.app != nil {
				opts.app.Close()
				_ = opts.app.logger.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "config file (default ./catalog.yaml if present)")
	flags.String("base-url", "", "catalog api base url")
	flags.Int("page-size", 0, "items per page")
	flags.String("store", "", "durable store: memory, disk or redis")
	flags.String("log-level", "", "log level")
	_ = opts.v.BindPFlag("base_url", flags.Lookup("base-url"))
	_ = opts.v.BindPFlag("page_size", flags.Lookup("page-size"))
	_ = opts.v.BindPFlag("store.kind", flags.Lookup("store"))
	_ = opts.v.BindPFlag("log.level", flags.Lookup("log-level"))

	root.AddCommand(
		newListCmd(opts),
		newFacetsCmd(opts),
		newKeysCmd(opts),
		newResetCmd(opts),
		newWishlistCmd(opts),
		newBrowseCmd(opts),
		newEventsCmd(opts),
	)
	return root
}

// filterFlags registers one repeatable flag per filter group.
func filterFlags(cmd *cobra.Command) map[types.Group]*[]string {
	ret := make(map[types.Group]*[]string, len(types.Groups))
	for _, g := range types.Groups {
		values := []string{}
		cmd.Flags().StringArrayVar(&values, string(g), nil, fmt.Sprintf("check a %s box, as name or name|id|slug", g))
		ret[g] = &values
	}
	return ret
}

func flagValues(flags map[types.Group]*[]string) map[types.Group][]string {
	ret := make(map[types.Group][]string, len(flags))
	for g, values := range flags {
		ret[g] = *values
	}
	return ret
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
