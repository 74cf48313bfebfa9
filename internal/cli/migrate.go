package cli

import (
	"fmt"
	"os"

	"github.com/kyson-dev/sing-deploy/internal/logger"
	"github.com/kyson-dev/sing-deploy/internal/migrate"
	"github.com/kyson-dev/sing-deploy/internal/persist"
	"github.com/kyson-dev/sing-deploy/internal/validate"
	"github.com/spf13/cobra"
)

func newMigrateCommand() *cobra.Command {
	var (
		input  string
		output string
		write  bool
	)

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Rewrite legacy inbound/outbound fields into route rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(input)
			if err != nil {
				return fmt.Errorf("failed to read config: %w", err)
			}

			res, err := migrate.Migrate(data)
			if err != nil {
				return err
			}
			for _, c := range res.Changes {
				fmt.Fprintln(cmd.ErrOrStderr(), c.String())
			}

			if write {
				output = input
			}
			if output == "" {
				_, err := cmd.OutOrStdout().Write(res.Data)
				return err
			}
			if len(res.Changes) == 0 && output == input {
				logger.Info("Nothing to migrate", "path", input)
				return nil
			}

			// 改写后的文档同样要通过流水线才能落盘
			if err := persist.WriteAtomic(output, res.Data, validate.New().Validator(cmd.Context())); err != nil {
				return err
			}
			logger.Info("Config migrated", "path", output, "changes", len(res.Changes))
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "config", "c", "config.json", "Config file to migrate")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the result here instead of stdout")
	cmd.Flags().BoolVarP(&write, "write", "w", false, "Rewrite the input file in place")

	return cmd
}
