package cli

import (
	"fmt"
	"os"

	"github.com/kyson-dev/sing-deploy/internal/engine"
	"github.com/kyson-dev/sing-deploy/internal/env"
	"github.com/kyson-dev/sing-deploy/internal/logger"
	"github.com/kyson-dev/sing-deploy/internal/validate"
	"github.com/spf13/cobra"
)

func newCheckCommand() *cobra.Command {
	var (
		configPath string
		engineKind string
		binary     string
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate an existing sing-box config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				configPath = env.Get().OutputFile
			}
			return runCheck(cmd, configPath, engineKind, binary)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Config file to check (default: <home>/config.json)")
	cmd.Flags().StringVar(&engineKind, "engine", "auto", "Engine check: auto, binary, library, library-full, none")
	cmd.Flags().StringVar(&binary, "binary", "", "sing-box binary for engine check (default: sing-box)")

	return cmd
}

func runCheck(cmd *cobra.Command, configPath, engineKind, binary string) error {
	logger.Info("Check configuration file", "path", configPath)

	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	checker, err := engine.New(engineKind, binary)
	if err != nil {
		return err
	}
	pipeline := validate.New(validate.WithChecker(checker))

	report := pipeline.Run(data)
	printIssues(cmd, report.Issues)
	if err := report.Err(); err != nil {
		logger.Error("Config check failed", "errors", len(report.Errors()))
		return err
	}

	res, err := pipeline.Confirm(cmd.Context(), configPath)
	if err != nil {
		return fmt.Errorf("engine check failed: %w", err)
	}
	if res.Ran && !res.OK {
		return &validate.EngineRejectedError{Result: res}
	}

	out := cmd.OutOrStdout()
	switch {
	case res.Ran:
		fmt.Fprintf(out, "ok (%d warnings, confirmed by %s)\n", len(report.Warnings()), res.Engine)
	default:
		fmt.Fprintf(out, "ok (%d warnings)\n", len(report.Warnings()))
	}
	return nil
}
