package cli

import (
	"fmt"

	"github.com/kyson-dev/sing-deploy/internal/keys"
	"github.com/spf13/cobra"
)

func newKeysCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Generate credentials",
		Long: `Generate credentials.

Available subcommands:
  reality   - x25519 key pair for VLESS+Reality
  short-id  - Reality short id
  uuid      - VLESS user id
  password  - Hysteria2 password`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {},
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "reality",
			Short: "Generate a Reality key pair",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				pair, err := keys.NewRealityKeyPair()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "PrivateKey: %s\nPublicKey: %s\n", pair.PrivateKey, pair.PublicKey)
				return nil
			},
		},
		&cobra.Command{
			Use:   "short-id",
			Short: "Generate a Reality short id",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				sid, err := keys.NewShortID()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), sid)
				return nil
			},
		},
		&cobra.Command{
			Use:   "uuid",
			Short: "Generate a VLESS user id",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintln(cmd.OutOrStdout(), keys.NewUUID())
			},
		},
		&cobra.Command{
			Use:   "password",
			Short: "Generate a Hysteria2 password",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				pw, err := keys.NewPassword()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), pw)
				return nil
			},
		},
	)

	return cmd
}
