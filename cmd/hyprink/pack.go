package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

func newPackCmd(open opener) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "pack <dir>",
		Short: "Package a directory into a single file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src := args[0]
			dst := output
			if dst == "" {
				var err error
				if dst, err = defaultOutput(src); err != nil {
					return err
				}
			}
			hk, err := open(cmd)
			if err != nil {
				return err
			}
			defer hk.Close()

			sum, err := hk.Pack(cmd.Context(), src, dst)
			if err != nil {
				hk.LogPreset("pack_fail", err.Error())
				return err
			}
			return hk.LogPreset("pack_ok", fmt.Sprintf("packed %d files (%d bytes) to %s", sum.Count, sum.TotalSize, dst))
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default <dir>.pkg)")
	return cmd
}

// defaultOutput names the package after the source directory, so "." in
// /work/site gives "site.pkg".
func defaultOutput(src string) (string, error) {
	abs, err := filepath.Abs(src)
	if err != nil {
		return "", err
	}
	base := filepath.Base(abs)
	if base == string(filepath.Separator) {
		base = "root"
	}
	return base + ".pkg", nil
}

func newUnpackCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "unpack <package> <target-dir>",
		Short: "Verify a package and extract it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			hk, err := open(cmd)
			if err != nil {
				return err
			}
			defer hk.Close()

			m, err := hk.Unpack(cmd.Context(), args[0], args[1])
			if err != nil {
				hk.LogPreset("pack_fail", err.Error())
				return err
			}
			return hk.LogPreset("unpack_ok", fmt.Sprintf("extracted %d files to %s", m.Count, args[1]))
		},
	}
}

func newVerifyCmd(open opener) *cobra.Command {
	var list bool
	cmd := &cobra.Command{
		Use:   "verify <package>",
		Short: "Check a package's structure and checksums",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hk, err := open(cmd)
			if err != nil {
				return err
			}
			defer hk.Close()

			m, err := hk.Verify(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if list {
				for _, e := range m.Entries {
					fmt.Fprintf(cmd.OutOrStdout(), "%s %10d %s\n", e.Mode, e.Size, e.Path)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d files, %d bytes, sha256 %s\n", m.Root, m.Count, m.TotalSize, m.Checksum)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&list, "list", "l", false, "list entries")
	return cmd
}
