// Package cmd is the demo CLI: a cobra command that builds a VFS from a
// mount-definition file and exercises ls/stat/cat against it, wiring a
// stdout trace exporter and a Prometheus metrics endpoint the same way
// the teacher's own mount command wires its FUSE filesystem.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/oldphoenix/umsftpd/cfg"
	"github.com/oldphoenix/umsftpd/internal/logger"
)

var (
	bindErr       error
	configFileErr error
	settings      cfg.Settings
)

var rootCmd = &cobra.Command{
	Use:   "umsftpd",
	Short: "Virtual filesystem demo for an SFTP-style user-mode file server",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if bindErr != nil {
			return bindErr
		}
		if configFileErr != nil {
			return configFileErr
		}
		s, err := cfg.FromViper()
		if err != nil {
			return err
		}
		settings = s
		if settings.Logging.FilePath != "" {
			logger.InitLogger(&lumberjack.Logger{Filename: settings.Logging.FilePath}, settings.Logging.Format, settings.Logging.Severity)
		} else {
			logger.SetLoggingLevel(settings.Logging.Severity)
			logger.SetLogFormat(settings.Logging.Format)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)
	bindErr = cfg.BindFlags(rootCmd.PersistentFlags())
}

func initConfig() {
	viper.AutomaticEnv()
}

// Execute runs the root command, exiting the process with status 1 on
// failure, matching the teacher's own Execute().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
