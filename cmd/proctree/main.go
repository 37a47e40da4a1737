package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/proctree/internal/config"
	"github.com/Dicklesworthstone/proctree/internal/logging"
	"github.com/Dicklesworthstone/proctree/internal/poller"
	"github.com/Dicklesworthstone/proctree/internal/reader"
	"github.com/Dicklesworthstone/proctree/internal/server"
	"github.com/Dicklesworthstone/proctree/internal/service"
	"github.com/Dicklesworthstone/proctree/internal/ui"
	"github.com/Dicklesworthstone/proctree/internal/wire"
)

var log = logrus.WithField("source", "cli")

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		log.WithError(err).Error("proctree failed")
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cfg := config.Default()
	var path string

	cmd := &cobra.Command{
		Use:           "proctree",
		Short:         "Snapshot the host process table as a parent/child tree",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			resolved, err := config.Resolve(cmd.Root().PersistentFlags(), cfg, path)
			if err != nil {
				return err
			}
			cfg = resolved
			return logging.Setup(cfg.LogLevel, cfg.LogFormat)
		},
	}
	config.BindFlags(cmd.PersistentFlags(), &cfg, &path)

	cmd.AddCommand(
		newSnapshotCommand(&cfg),
		newServeCommand(&cfg),
		newWatchCommand(&cfg),
	)
	return cmd
}

func newService(cfg config.Config) (*service.Service, error) {
	r, err := reader.New(cfg.ReaderOptions())
	if err != nil {
		return nil, err
	}
	return service.New(r), nil
}

func newSnapshotCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot",
		Short: "Print one get_processes document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService(*cfg)
			if err != nil {
				return err
			}
			doc, err := svc.GetSnapshot(cmd.Context())
			if err != nil {
				return err
			}
			return wire.Encode(cmd.OutOrStdout(), doc, cfg.Format, cfg.Pretty)
		},
	}
}

func newServeCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve get_processes over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService(*cfg)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			log.WithFields(logrus.Fields{"listen": cfg.Listen, "backend": cfg.Backend}).Info("starting")
			return server.New(svc).ListenAndServe(ctx, cfg.Listen)
		},
	}
}

func newWatchCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Show a live process tree, local or from --remote",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				f      poller.Fetcher
				source = "local"
			)
			if cfg.Remote != "" {
				f, source = poller.NewClient(cfg.Remote), cfg.Remote
			} else {
				svc, err := newService(*cfg)
				if err != nil {
					return err
				}
				f = svc
			}
			return ui.RunTUI(poller.New(cfg.Interval, f), source)
		},
	}
}
