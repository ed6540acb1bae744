package cmd

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/masiarekpl/keypin/evt"
	"github.com/masiarekpl/keypin/log"
	"github.com/masiarekpl/keypin/metrics"
	"github.com/masiarekpl/keypin/server"
	"github.com/masiarekpl/keypin/util"
)

const stopTimeout = 10 * time.Second

//nolint:gochecknoglobals
var (
	signals         = make(chan os.Signal, 1)
	registerMetrics sync.Once
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "serve",
		Args:              cobra.NoArgs,
		Short:             "start the keys API server (default command)",
		RunE:              startServer,
		PersistentPreRunE: initConfigPreRun,
		SilenceUsage:      true,
	}
}

func startServer(_ *cobra.Command, _ []string) error {
	printBanner()

	if cfg == nil {
		if err := initConfig(); err != nil {
			return err
		}
	}

	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	registerMetrics.Do(metrics.RegisterEventListeners)

	srv, err := server.NewServer(ctx, cfg)
	if err != nil {
		return err
	}

	errChan := make(chan error, 1)

	srv.Start(ctx, errChan)

	evt.Bus().Publish(evt.ApplicationStarted, util.Version, util.BuildTime)

	var terminationErr error

	select {
	case <-signals:
		log.Log().Infof("Terminating...")

		stopCtx, stopCancel := context.WithTimeout(context.Background(), stopTimeout)
		defer stopCancel()

		util.LogOnError("can't stop server: ", srv.Stop(stopCtx))
	case err := <-errChan:
		log.Log().Error("server start failed: ", err)

		terminationErr = err
	}

	return terminationErr
}

func printBanner() {
	log.Log().Info("_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/")
	log.Log().Info("_/                                                              _/")
	log.Log().Info("_/     _/                                      _/               _/")
	log.Log().Info("_/    _/  _/      _/_/    _/    _/  _/_/_/          _/_/_/      _/")
	log.Log().Info("_/   _/_/      _/_/_/_/  _/    _/  _/    _/  _/    _/    _/     _/")
	log.Log().Info("_/  _/  _/    _/        _/    _/  _/    _/  _/    _/    _/      _/")
	log.Log().Info("_/ _/    _/    _/_/_/    _/_/_/  _/_/_/    _/    _/    _/       _/")
	log.Log().Info("_/                          _/  _/                              _/")
	log.Log().Info("_/                     _/_/    _/                               _/")
	log.Log().Info("_/                                                              _/")
	log.Log().Infof("_/  Version: %-18s Build time: %-18s  _/", util.Version, util.BuildTime)
	log.Log().Info("_/                                                              _/")
	log.Log().Info("_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/")
}
