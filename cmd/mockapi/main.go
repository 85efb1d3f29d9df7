package main

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/matst80/dematerialized-catalog/pkg/backend"
	"github.com/matst80/dematerialized-catalog/pkg/common"
	"github.com/matst80/dematerialized-catalog/pkg/config"
	"github.com/matst80/dematerialized-catalog/pkg/logging"
	"github.com/matst80/dematerialized-catalog/pkg/types"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// parseHonored reads group=key[,key...] pairs.
func parseHonored(pairs []string) (map[types.Group][]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	ret := make(map[types.Group][]string)
	for _, pair := range pairs {
		name, keys, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("expected group=key, got %q", pair)
		}
		g := types.Group(strings.TrimSpace(name))
		known := false
		for _, candidate := range types.Groups {
			known = known || candidate == g
		}
		if !known {
			return nil, fmt.Errorf("unknown filter group %q", name)
		}
		for _, key := range strings.Split(keys, ",") {
			if key = strings.TrimSpace(key); key != "" {
				ret[g] = append(ret[g], key)
			}
		}
	}
	return ret, nil
}

func newMux(server *backend.Server) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", server.Handler())
	return mux
}

func newRootCmd() *cobra.Command {
	v := config.New()
	var configFile string
	var honored []string

	cmd := &cobra.Command{
		Use:          "mockapi",
		Short:        "Serve a reference clothing catalog api for local development",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v, configFile)
			if err != nil {
				return err
			}
			logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer logger.Sync()

			dataset := backend.DefaultDataset()
			if cfg.Dataset != "" {
				if dataset, err = backend.LoadDataset(cfg.Dataset); err != nil {
					return err
				}
			}
			keys, err := parseHonored(honored)
			if err != nil {
				return err
			}
			server := backend.NewServer(dataset, keys, logger)
			server.PageSize = cfg.PageSize
			logger.Info("serving catalog", zap.Int("items", len(dataset.Items)), zap.Any("honored", server.Honored))

			timeouts := common.LoadTimeoutConfig(common.TimeoutConfig{
				ReadHeader: 5 * time.Second,
				Read:       15 * time.Second,
				Write:      15 * time.Second,
				Idle:       60 * time.Second,
				Shutdown:   15 * time.Second,
				Hook:       5 * time.Second,
			})
			srv := common.NewServerWithTimeouts(&http.Server{
				Addr:    cfg.Listen,
				Handler: newMux(server),
			}, timeouts)
			return common.RunServerWithShutdown(logger, srv, "mockapi", timeouts.Shutdown, timeouts.Hook)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&configFile, "config", "", "config file")
	flags.String("listen", "", "listen address")
	flags.String("dataset", "", "json dataset file, the built in catalog when empty")
	flags.StringArrayVar(&honored, "honor", nil, "parameter keys a group is filtered by, e.g. color=color_slug[]")
	_ = v.BindPFlag("listen", flags.Lookup("listen"))
	_ = v.BindPFlag("dataset", flags.Lookup("dataset"))
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
