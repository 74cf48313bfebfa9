package cli

import (
	"fmt"

	"github.com/kyson-dev/sing-deploy/internal/env"
	"github.com/kyson-dev/sing-deploy/internal/logger"
	"github.com/kyson-dev/sing-deploy/internal/settings"
	"github.com/spf13/cobra"
)

func newInitCommand() *cobra.Command {
	var (
		path        string
		force       bool
		fillSecrets bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write an example deployment file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if path == "" {
				path = env.Get().ConfigFile
			}
			if fileExists(path) && !force {
				return fmt.Errorf("%s already exists, use --force to overwrite", path)
			}

			f := settings.Example()
			if fillSecrets {
				filled, err := f.FillSecrets()
				if err != nil {
					return err
				}
				logger.Debug("Secrets generated", "fields", filled)
			}
			if err := settings.Save(path, f); err != nil {
				return err
			}
			logger.Info("Deployment file written", "path", path)
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&path, "config", "c", "", "Deployment file path (default: <home>/deployment.yaml)")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing file")
	cmd.Flags().BoolVar(&fillSecrets, "fill-secrets", true, "Generate uuid, password and reality keys")

	return cmd
}
