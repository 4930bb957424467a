package cli

import (
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mrz1836/ledgerbox/internal/auth"
	ledgererr "github.com/mrz1836/ledgerbox/pkg/errors"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	tokenUserID string
	tokenPhone  string
	tokenTTL    time.Duration
)

// tokenCmd issues a session token for scripted exports and imports.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a session token",
	Long: `Issue a session token signed with auth.token_secret.

Set the token as LEDGERBOX_TOKEN (or auth.token in the config file) to run
exports and imports as that user.

Example:
  ledgerbox token --user-id 6f1c2d3e-0000-4000-8000-000000000001 --ttl 1h`,
	Args: cobra.NoArgs,
	RunE: runToken,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(tokenCmd)

	tokenCmd.Flags().StringVar(&tokenUserID, "user-id", "", "user id the token is issued for (default from config)")
	tokenCmd.Flags().StringVar(&tokenPhone, "phone", "", "phone number stored in the token")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "token lifetime")
}

func runToken(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)

	secret := cc.Config.Auth.TokenSecret
	if secret == "" {
		return ledgererr.WithSuggestion(ledgererr.ErrInvalidInput,
			"set auth.token_secret or LEDGERBOX_TOKEN_SECRET")
	}
	if tokenTTL <= 0 {
		return ledgererr.WithSuggestion(ledgererr.ErrInvalidInput, "--ttl must be positive")
	}

	rawID := tokenUserID
	if rawID == "" {
		rawID = cc.Config.Auth.UserID
	}
	userID, err := uuid.Parse(rawID)
	if err != nil || userID == uuid.Nil {
		return ledgererr.WithDetails(ledgererr.ErrInvalidInput, map[string]string{"user_id": rawID})
	}

	phone := tokenPhone
	if phone == "" {
		phone = cc.Config.Auth.Phone
	}

	token, err := auth.IssueToken(auth.Identity{UserID: userID, Phone: phone}, []byte(secret), tokenTTL)
	if err != nil {
		return ledgererr.Wrap(err, "signing token")
	}

	if cc.Fmt.IsJSON() {
		return cc.Fmt.Print(map[string]any{
			"token":      token,
			"user_id":    userID.String(),
			"expires_in": tokenTTL.String(),
		})
	}
	return cc.Fmt.Println(token)
}
