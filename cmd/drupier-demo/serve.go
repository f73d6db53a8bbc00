package main

import (
	"github.com/spf13/cobra"

	"github.com/tothom/drupier-demo/internal/logging"
)

func newServeCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve blocks and themes over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := logging.HTTPLogger(a.module.Container().LoggerProvider())
			logger.Info("http.serve.starting", "addr", a.cfg.HTTP.Addr)
			if err := a.module.Serve(cmd.Context()); err != nil {
				return err
			}
			logger.Info("http.serve.stopped")
			return nil
		},
	}
	cmd.Flags().String("addr", "", "listen address (overrides http.addr)")
	_ = a.viper.BindPFlag("http.addr", cmd.Flags().Lookup("addr"))
	return cmd
}
