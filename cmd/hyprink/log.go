package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/crimson-sun/hyprink/pkg/hyprink"
)

func newLogCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "log <level> <scope> <message...>",
		Short: "Print one themed log line",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			level, ok := hyprink.ParseLevel(args[0])
			if !ok {
				return fmt.Errorf("unknown level %q", args[0])
			}
			hk, err := open(cmd)
			if err != nil {
				return err
			}
			defer hk.Close()
			hk.Log(level, args[1], strings.Join(args[2:], " "))
			return nil
		},
	}
}

func newPresetCmd(open opener) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "preset <name> [message...]",
		Short: "Print a named preset, optionally replacing its message",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hk, err := open(cmd)
			if err != nil {
				return err
			}
			defer hk.Close()
			if file != "" {
				if _, err := hk.LoadPresets(file); err != nil {
					return err
				}
			}
			return hk.LogPreset(args[0], strings.Join(args[1:], " "))
		},
	}
	cmd.Flags().StringVarP(&file, "dictionary", "d", "", "extra preset dictionary (TOML or YAML)")
	return cmd
}

func newPresetsCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List the available presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			hk, err := open(cmd)
			if err != nil {
				return err
			}
			defer hk.Close()

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tLEVEL\tSOURCE\tMESSAGE")
			for _, p := range hk.Presets() {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.Name, p.Level, p.Source, p.Message)
			}
			return tw.Flush()
		},
	}
}
