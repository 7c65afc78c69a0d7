package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/oldphoenix/umsftpd/internal/logger"
	"github.com/oldphoenix/umsftpd/vfs"
)

var lsCmd = &cobra.Command{
	Use:   "ls <virtual-path>",
	Short: "List a directory through the VFS",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		v, cleanup, err := buildVFS(ctx)
		if err != nil {
			return err
		}
		defer cleanup()
		defer v.Free()

		h, err := v.OpenDir(ctx, args[0])
		if err != nil {
			return err
		}
		defer v.CloseHandle(ctx, h)

		for {
			ent, err := v.ReadDir(ctx, h)
			if err != nil {
				return err
			}
			if ent.EOF {
				break
			}
			kind := "-"
			if !ent.IsFile {
				kind = "d"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %10d %s\n", kind, ent.Mode, ent.Size, ent.Filename)
		}
		return nil
	},
}

var statCmd = &cobra.Command{
	Use:   "stat <virtual-path>",
	Short: "Stat a path through the VFS",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		v, cleanup, err := buildVFS(ctx)
		if err != nil {
			return err
		}
		defer cleanup()
		defer v.Free()

		ent, err := v.Stat(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\tsize=%d\tmode=%s\n", ent.Filename, ent.Size, ent.Mode)
		return nil
	},
}

var catCmd = &cobra.Command{
	Use:   "cat <virtual-path>",
	Short: "Print a file's contents through the VFS",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		v, cleanup, err := buildVFS(ctx)
		if err != nil {
			return err
		}
		defer cleanup()
		defer v.Free()

		h, err := v.Open(ctx, args[0], vfs.ModeRead)
		if err != nil {
			return err
		}
		defer v.CloseHandle(ctx, h)

		buf := make([]byte, 32*1024)
		for {
			n, err := v.Read(ctx, h, buf)
			if n > 0 {
				if _, werr := cmd.OutOrStdout().Write(buf[:n]); werr != nil {
					return werr
				}
			}
			if err != nil {
				if err == io.EOF {
					break
				}
				return err
			}
			if n == 0 {
				break
			}
		}
		return nil
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics-serve <addr>",
	Short: "Serve Prometheus /metrics for a VFS built from --mount-config",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		_, cleanup, err := buildVFS(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		logger.Infof("serving metrics on %s", args[0])
		serveMetrics(args[0])
		<-ctx.Done()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(lsCmd, statCmd, catCmd, metricsCmd)
}
