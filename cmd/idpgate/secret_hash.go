package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/idpgate/internal/security/secrethash"
)

func newSecretHashCmd(load loadFunc) *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "secret-hash",
		Short: "Print the SECRET_HASH for a username with the configured app client",
		RunE: func(cmd *cobra.Command, _ []string) error {
			username = strings.TrimSpace(username)
			if username == "" {
				return errors.New("--username is required")
			}
			cfg, err := load()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(),
				secrethash.Compute(username, cfg.IDP.ClientID, cfg.IDP.ClientSecret.Value()))
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "username to derive the hash for")
	return cmd
}
