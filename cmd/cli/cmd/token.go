// Package cmd - token command
package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	jwttoken "lanewise/internal/jwt_token"
)

var (
	tokenAgent string
	tokenRole  string
	tokenKey   string
	tokenTTL   time.Duration
)

// tokenCmd mints an agent JWT for development and testing. The signing key
// must match the server's LANEWISE_JWT_SIGNING_KEY.
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint an agent token for development",
	Long: `Generate a signed bearer token accepted by a server configured
with the same signing key.

Examples:
  lanewise token --agent agent-42
  lanewise token --agent ops-1 --role admin --ttl 8h`,
	RunE: runToken,
}

func init() {
	tokenCmd.Flags().StringVar(&tokenAgent, "agent", "", "agent identifier (required)")
	tokenCmd.Flags().StringVar(&tokenRole, "role", jwttoken.RoleAgent, "token role (agent, admin)")
	tokenCmd.Flags().StringVar(&tokenKey, "key", "dev-secret-key-change-in-production", "HMAC signing key")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", time.Hour, "token lifetime")
	_ = tokenCmd.MarkFlagRequired("agent")
}

func runToken(cmd *cobra.Command, args []string) error {
	if tokenRole != jwttoken.RoleAgent && tokenRole != jwttoken.RoleAdmin {
		return fmt.Errorf("unknown role %q", tokenRole)
	}
	svc := jwttoken.NewJWTService(tokenKey, "lanewise", "lanewise-api")
	token, err := svc.GenerateAccessToken(tokenAgent, tokenRole, tokenTTL)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}
