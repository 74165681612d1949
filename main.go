/*
Balancechart serves a single page of account balance charts that follow a simulated ledger
in realtime. The page is rendered once; afterwards every change reaches it as element updates
over a websocket, and each chart element is driven by a hook that destroys and recreates its
chart whenever the element's chart data changes.
*/

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"balancechart/config"
	"balancechart/ledger"
	"balancechart/logger"
	"balancechart/server"
	"balancechart/server/chart_views"
)

type rootOpts struct {
	cfgFile string
	host    string
	port    int
	debug   bool
	backend string
}

func newRootCmd() *cobra.Command {
	opts := &rootOpts{}
	cmd := &cobra.Command{
		Use:           "balancechart",
		Short:         "Serve realtime account balance charts",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.cfgFile, "config", "c", "", "config file (defaults apply when empty)")
	cmd.PersistentFlags().BoolVarP(&opts.debug, "debug", "d", false, "turn on debug logging")
	cmd.Flags().StringVar(&opts.host, "host", "", "listen host, overrides server.host")
	cmd.Flags().IntVarP(&opts.port, "port", "p", 0, "listen port, overrides server.port")
	cmd.Flags().StringVar(&opts.backend, "backend", "", "chart backend, echarts or svg, overrides chart.backend")

	cmd.AddCommand(newCheckCmd())
	return cmd
}

func loadConfig(cmd *cobra.Command, opts *rootOpts) (config.Config, error) {
	cfg := config.Default()
	if opts.cfgFile != "" {
		var err error
		if cfg, err = config.FromYaml(opts.cfgFile); err != nil {
			return cfg, err
		}
	}
	if cmd.Flags().Changed("host") {
		cfg.Server.Host = opts.host
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = opts.port
	}
	if cmd.Flags().Changed("backend") {
		cfg.Chart.Backend = opts.backend
	}
	if opts.debug {
		cfg.Log.Debug = true
	}

	if err := cfg.Validate(); err != nil {
		return cfg, errors.Wrap(err, "invalid config")
	}
	if err := logger.Init(logger.LogOptions{
		Debug:        cfg.Log.Debug,
		DisableColor: cfg.Log.DisableColor,
		LogDir:       cfg.Log.Dir,
	}); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func presentation(cfg config.ChartConfig) chart_views.Presentation {
	return chart_views.Presentation{
		CurrencySymbol: cfg.CurrencySymbol,
		XAxisTitle:     cfg.XAxisTitle,
		YAxisTitle:     cfg.YAxisTitle,
		TooltipTitle:   cfg.TooltipTitle,
		Tension:        cfg.Tension,
		PointRadius:    cfg.PointRadius,
		HoverRadius:    cfg.HoverRadius,
		Width:          cfg.Width,
		Height:         cfg.Height,
	}
}

// serve runs the ledger simulation and the server until ctx is done or either fails.
func serve(ctx context.Context, cfg config.Config) error {
	start, err := cfg.StartDate(time.Now())
	if err != nil {
		return err
	}
	book, err := ledger.NewBook(start, cfg.Ledger.Months, cfg.Accounts()...)
	if err != nil {
		return errors.Wrap(err, "open ledger")
	}

	srv, err := server.NewServer(cfg.Addr(), book, server.Options{
		Title:        cfg.Server.Title,
		EchartsURL:   cfg.Server.EchartsURL,
		Backend:      cfg.Chart.Backend,
		Presentation: presentation(cfg.Chart),
		SVGWidth:     cfg.Chart.SVGWidth,
		SVGHeight:    cfg.Chart.SVGHeight,
		BatchRate:    cfg.Server.BatchRate,
		Reporter:     chart_views.NewLogReporter(),
	})
	if err != nil {
		return err
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		ledger.Simulate(groupCtx, book, cfg.Simulation())
		return nil
	})
	group.Go(func() error {
		return srv.Serve(groupCtx)
	})
	return group.Wait()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		logrus.Errorf("balancechart: %v", err)
		stop()
		os.Exit(1)
	}
}
