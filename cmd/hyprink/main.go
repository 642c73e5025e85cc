// Command hyprink is the command-line front end: it logs lines and presets
// with the configured theme and packs, verifies and unpacks directories.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/crimson-sun/hyprink/internal/logging"
	"github.com/crimson-sun/hyprink/pkg/hyprink"
)

type rootFlags struct {
	config   string
	color    string
	logLevel string
	logJSON  bool
	appName  string
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "hyprink:", err)
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	var flags rootFlags
	root := &cobra.Command{
		Use:           "hyprink",
		Short:         "Themed logging and directory packaging",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if flags.logLevel != "" {
				logging.Init(logging.ParseLevel(flags.logLevel), flags.logJSON)
			}
		},
	}
	root.SetOut(out)

	pf := root.PersistentFlags()
	pf.StringVarP(&flags.config, "config", "c", "", "config file (default $XDG_CONFIG_HOME/hyprink/hyprink.toml)")
	pf.StringVar(&flags.color, "color", "", "colorize output (auto|always|never)")
	pf.StringVar(&flags.logLevel, "log-level", "", "diagnostic log level (debug|info|warn|error); off when empty")
	pf.BoolVar(&flags.logJSON, "log-json", false, "emit diagnostics as JSON")
	pf.StringVar(&flags.appName, "app", "", "application name for {app} placeholders")

	open := func(cmd *cobra.Command) (*hyprink.Context, error) {
		opts := []hyprink.Option{hyprink.WithWriter(cmd.OutOrStdout())}
		if flags.config != "" {
			opts = append(opts, hyprink.WithConfigFile(flags.config))
		}
		if flags.color != "" {
			opts = append(opts, hyprink.WithColor(flags.color))
		}
		if flags.logLevel != "" {
			opts = append(opts, hyprink.WithLogger(logging.New(cmd.ErrOrStderr(), logging.ParseLevel(flags.logLevel), flags.logJSON)))
		}
		hk, err := hyprink.New(opts...)
		if err != nil {
			return nil, err
		}
		if flags.appName != "" {
			hk.SetAppName(flags.appName)
		}
		return hk, nil
	}

	root.AddCommand(
		newLogCmd(open),
		newPresetCmd(open),
		newPresetsCmd(open),
		newPackCmd(open),
		newUnpackCmd(open),
		newVerifyCmd(open),
		newInitCmd(),
	)
	return root
}

// opener builds the Context a command runs against.
type opener func(cmd *cobra.Command) (*hyprink.Context, error)
