package main

import (
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// NewTokenCommand creates `flagctl token`.
func NewTokenCommand(o *Options) *cobra.Command {
	var quiet bool
	cmd := &cobra.Command{
		Use:   "token <user-id>",
		Short: "Mint an access token signed with the server key",
		Long: `Mints a PASETO access token for user-id using the key in the data
directory. The server accepts it as an Authorization bearer token.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tokens, err := o.TokenService()
			if err != nil {
				return err
			}
			token, expires, err := tokens.GenerateAccessToken(args[0])
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if quiet {
				printInfo(w, "%s", token)
				return nil
			}
			printSuccess(w, "%s", token)
			printInfo(w, "expires %s (%s)", humanize.Time(expires), expires.Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "print only the token")
	return cmd
}
