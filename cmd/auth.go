package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/sheetsmcp/internal/google"
)

// newAuthCmd groups the credential management subcommands used for the
// copy-paste OAuth consent flow.
func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage Google OAuth credentials",
		Long: `Manage the stored Google OAuth credentials used to access the Sheets
and Drive APIs.

The consent flow is copy-paste based:

  1. Run 'sheetsmcp auth url' and open the printed URL in a browser
  2. Sign in, grant access, and copy the authorization code
  3. Run 'sheetsmcp auth exchange <code>' to store the credential

Credentials are stored per account so multiple Google accounts can be
used side by side (e.g. --account work).`,
	}

	cmd.AddCommand(newAuthURLCmd())
	cmd.AddCommand(newAuthExchangeCmd())
	cmd.AddCommand(newAuthStatusCmd())
	cmd.AddCommand(newAuthClearCmd())
	return cmd
}

func newAuthURLCmd() *cobra.Command {
	var account string
	var readOnly bool

	cmd := &cobra.Command{
		Use:   "url",
		Short: "Print the OAuth consent URL",
		RunE: func(cmd *cobra.Command, args []string) error {
			scopes := google.DefaultOAuthScopes
			if readOnly {
				scopes = google.ReadOnlyOAuthScopes
			}
			store := google.NewCredentialStoreForAccount(account, google.OAuthConfigWithScopes(scopes), nil)

			fmt.Printf("Open this URL in your browser to authorize account %q:\n\n  %s\n\n", account, store.AuthURL("state"))
			fmt.Println("Then run: sheetsmcp auth exchange <authorization-code>")
			return nil
		},
	}

	cmd.Flags().StringVar(&account, "account", "default", "Google account name to use")
	cmd.Flags().BoolVar(&readOnly, "read-only", false, "Request read-only scopes only")
	return cmd
}

func newAuthExchangeCmd() *cobra.Command {
	var account string

	cmd := &cobra.Command{
		Use:   "exchange <code>",
		Short: "Exchange an authorization code and store the credential",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if err := google.SaveTokenForAccount(ctx, account, strings.TrimSpace(args[0])); err != nil {
				return fmt.Errorf("failed to exchange authorization code: %w", err)
			}

			fmt.Printf("Credential stored for account %q at %s\n", account, google.StorePathForAccount(account))
			return nil
		},
	}

	cmd.Flags().StringVar(&account, "account", "default", "Google account name to use")
	return cmd
}

func newAuthStatusCmd() *cobra.Command {
	var account string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the stored credential for an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			store := google.NewCredentialStoreForAccount(account, google.OAuthConfig(), nil)

			cred, err := store.Load()
			if err != nil {
				fmt.Printf("No credential stored for account %q.\n", account)
				fmt.Println("Run 'sheetsmcp auth url' to authorize.")
				return nil
			}

			fmt.Printf("Account:  %s\n", account)
			fmt.Printf("Path:     %s\n", google.StorePathForAccount(account))
			if cred.Expiry.IsZero() {
				fmt.Println("Expiry:   unknown")
			} else {
				fmt.Printf("Expiry:   %s\n", cred.Expiry.Format(time.RFC3339))
			}
			fmt.Printf("Refresh:  %v\n", cred.RefreshToken != "")
			if len(cred.Scopes) > 0 {
				fmt.Printf("Scopes:\n")
				for _, s := range cred.Scopes {
					fmt.Printf("  - %s\n", s)
				}
			}
			if len(cred.RequestedScopes) > 0 {
				fmt.Printf("Pending scope upgrades (re-run the consent flow to grant):\n")
				for _, s := range cred.RequestedScopes {
					fmt.Printf("  - %s\n", s)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&account, "account", "default", "Google account name to use")
	return cmd
}

func newAuthClearCmd() *cobra.Command {
	var account string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove the stored credential for an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			store := google.NewCredentialStoreForAccount(account, google.OAuthConfig(), nil)
			if err := store.Clear(); err != nil {
				return fmt.Errorf("failed to clear credential: %w", err)
			}
			fmt.Printf("Credential cleared for account %q\n", account)
			return nil
		},
	}

	cmd.Flags().StringVar(&account, "account", "default", "Google account name to use")
	return cmd
}
