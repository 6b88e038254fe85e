// Package cmd holds the zxscan command tree.
package cmd

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ericlevine/zxpipe/internal/config"
)

// app is the state shared by every subcommand of one invocation.
type app struct {
	cfgFile string
	loader  *config.Loader
	cfg     *config.Config
	logger  *slog.Logger
}

// NewRootCommand builds a fresh zxscan command tree.
func NewRootCommand() *cobra.Command {
	a := &app{loader: config.NewLoader()}

	root := &cobra.Command{
		Use:   "zxscan",
		Short: "Decode barcodes from images",
		Long: `zxscan finds and decodes QR Code, Code 128, Code 39, EAN and UPC-A
symbols. Images are retried at 90 degree turns until a symbol is found.

Examples:
  zxscan decode label.png
  zxscan decode --multi --format json shelf.jpg
  zxscan serve --port 8080`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd.ErrOrStderr())
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default is zxscan.yaml in ., $HOME, $XDG_CONFIG_HOME/zxscan, /etc/zxscan)")
	pf.BoolP("verbose", "v", false, "verbose output (equivalent to --log-level=debug)")
	pf.String("log-level", "info", "log level (debug, info, warn, error)")
	a.bind(pf, "verbose", "verbose")
	a.bind(pf, "log_level", "log-level")

	root.AddCommand(newDecodeCommand(a), newServeCommand(a))
	return root
}

// bind lets flag name override config key. Flags are defined in this
// package, so a missing one is a programming error.
func (a *app) bind(fs *pflag.FlagSet, key, name string) {
	if err := a.loader.BindFlag(key, fs.Lookup(name)); err != nil {
		panic(fmt.Sprintf("zxscan: %v", err))
	}
}

// init loads the configuration once flags are parsed and installs the
// logger. Logs go to w so stdout carries only results.
func (a *app) init(w io.Writer) error {
	cfg, err := a.loader.Load(a.cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: cfg.Level()}))
	if f := a.loader.FileUsed(); f != "" {
		a.logger.Debug("configuration loaded", "file", f)
	}
	return nil
}
