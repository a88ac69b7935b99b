package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"docgen-ai-api/pkg/utils"
)

// newTokenCommand 用配置中的密钥签发访问令牌，便于本地调试 API
func newTokenCommand(root *rootOptions) *cobra.Command {
	var (
		userID string
		email  string
		ttl    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an API access token signed with security.jwt.secret",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			if cfg.Security.JWT.Secret == "" {
				return fmt.Errorf("security.jwt.secret is not configured")
			}
			token, err := utils.NewJWTManager(cfg.Security.JWT.Secret, cfg.Security.JWT.Issuer).
				GenerateToken(userID, email, ttl)
			if err != nil {
				return fmt.Errorf("failed to sign token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVarP(&userID, "user", "u", "", "User ID written to the subject claim")
	cmd.Flags().StringVar(&email, "email", "", "Optional email claim")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
