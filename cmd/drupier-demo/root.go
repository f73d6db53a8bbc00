package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tothom/drupier-demo"
	"github.com/tothom/drupier-demo/cmd/drupier-demo/internal/bootstrap"
)

var moduleBuilder = bootstrap.BuildModule

// app carries the module shared by the subcommands of one invocation.
type app struct {
	viper      *viper.Viper
	configFile string
	cfg        drupier.Config
	module     *drupier.Module
}

func newRootCommand() (*cobra.Command, *app) {
	a := &app{viper: bootstrap.NewViper()}

	root := &cobra.Command{
		Use:           "drupier-demo",
		Short:         "Render the Drupier demo blocks",
		Long:          "drupier-demo renders the Drupier marquee and README blocks, manages themes and serves blocks over HTTP.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (default ./drupier.yaml when present)")
	flags.String("themes", "", "theme base path")
	flags.String("log-level", "", "log level (trace, debug, info, warn, error)")
	_ = a.viper.BindPFlag("theme.base_path", flags.Lookup("themes"))
	_ = a.viper.BindPFlag("logging.level", flags.Lookup("log-level"))

	root.AddCommand(
		newBlocksCommand(a),
		newThemesCommand(a),
		newServeCommand(a),
	)
	return root, a
}

// execute runs root and then closes the module. Cobra skips post-run hooks
// when RunE fails, so the close happens here.
func (a *app) execute(ctx context.Context, root *cobra.Command) error {
	err := root.ExecuteContext(ctx)
	return errors.Join(err, a.close())
}

func (a *app) load() error {
	if a.module != nil {
		return nil
	}
	cfg, err := bootstrap.LoadConfig(a.viper, a.configFile)
	if err != nil {
		return err
	}
	module, err := moduleBuilder(cfg, bootstrap.Options{})
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.module = module
	return nil
}

func (a *app) close() error {
	if a.module == nil {
		return nil
	}
	err := a.module.Close()
	a.module = nil
	if err != nil {
		return fmt.Errorf("close module: %w", err)
	}
	return nil
}
