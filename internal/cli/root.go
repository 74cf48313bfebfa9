package cli

import (
	"fmt"

	"github.com/kyson-dev/sing-deploy/internal/env"
	"github.com/kyson-dev/sing-deploy/internal/logger"
	"github.com/spf13/cobra"
)

var GlobalDebug bool
var LogFile string

func NewRootCommand() *cobra.Command {
	var homeDir string
	cmd := &cobra.Command{
		Use:           "sing-deploy",
		Short:         "Compile and validate sing-box server configs",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			home, _ := cmd.Flags().GetString("home")

			if err := env.Init(home); err != nil {
				return fmt.Errorf("environment setup failed: %w", err)
			}

			if LogFile == "" {
				logger.Setup(logger.Config{Debug: GlobalDebug})
			} else {
				logger.Setup(logger.Config{Debug: GlobalDebug, FilePath: LogFile})
			}
			return nil
		},
	}

	// bind global flags
	cmd.PersistentFlags().BoolVarP(&GlobalDebug, "debug", "d", false, "Enable debug mode")
	cmd.PersistentFlags().StringVar(&homeDir, "home", "", "Working directory (default: $"+env.HomeEnv+" or "+env.FallbackHome+")")
	cmd.PersistentFlags().StringVar(&LogFile, "log", "", "Log file (default: stderr)")

	// register sub commands
	cmd.AddCommand(newVersionCommand(),
		newInitCommand(),
		newGenerateCommand(),
		newCheckCommand(),
		newMigrateCommand(),
		newKeysCommand(),
	)

	return cmd
}

// execute command
func Execute() error {
	return NewRootCommand().Execute()
}
