// Package cli implements siteops, the operator command line for the site API.
package cli

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"physiosite/api/internal/config"
	"physiosite/api/internal/logging"
)

func Execute() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// session holds what every subcommand needs, resolved once before it runs.
type session struct {
	cfg    config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	var debug bool
	s := &session{logger: zap.NewNop()}

	cmd := &cobra.Command{
		Use:          "siteops",
		Short:        "siteops: operator tools for the site API",
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			s.cfg = config.Load()
			level := s.cfg.LogLevel
			if debug {
				level = "debug"
			}
			logger, err := logging.New(level)
			if err != nil {
				return err
			}
			s.logger = logger
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			_ = s.logger.Sync()
		},
	}

	cmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging on stderr")
	cmd.AddCommand(translateCmd(s))
	cmd.AddCommand(cacheCmd(s))
	cmd.AddCommand(refreshTokenCmd(s))
	cmd.AddCommand(migrateCmd(s))
	cmd.AddCommand(contactsCmd(s))
	return cmd
}
