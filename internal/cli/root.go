package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/lockgov/internal/app"
	"github.com/trebuchet-org/lockgov/internal/config"
)

// contextKey is the type for context keys
type contextKey string

const (
	// appKey is the context key for the app holder
	appKey contextKey = "app"
)

// appHolder carries the app built in PersistentPreRunE out to Execute,
// which releases it once the command finished.
type appHolder struct {
	app     *app.App
	cleanup func()
	cancel  context.CancelFunc
}

func (h *appHolder) close() {
	if h.cancel != nil {
		h.cancel()
	}
	if h.cleanup != nil {
		h.cleanup()
	}
}

// Execute runs the root command and closes the store afterwards
func Execute(ctx context.Context, rootCmd *cobra.Command) error {
	holder := &appHolder{}
	defer holder.close()
	return rootCmd.ExecuteContext(context.WithValue(ctx, appKey, holder))
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "lockgov",
		Short: "Token-locked governance: proposals, vote escrows and early redemption",
		Long: `lockgov runs on-chain style governance over a local record store.

Governors hold proposals voted on by an electorate. A locker is an
electorate whose members lock tokens in escrows: voting power grows with
the remaining lock time. Redeemers let escrow owners exit early in
exchange for receipt tokens.

Every mutating command acts as the identity given with --as.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Skip for help/version commands
			if cmd.Name() == "version" || cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}

			holder, ok := cmd.Context().Value(appKey).(*appHolder)
			if !ok {
				holder = &appHolder{}
			}

			// A missing lockgov.toml is fine: defaults and flags apply
			projectRoot, err := config.FindProjectRoot()
			if err != nil && !errors.Is(err, config.ErrNoProjectFile) {
				return err
			}

			v, err := config.SetupViper(projectRoot, cmd)
			if err != nil {
				return err
			}

			// Initialize app with DI
			appInstance, cleanup, err := app.InitApp(v)
			if err != nil {
				return fmt.Errorf("failed to initialize app: %w", err)
			}
			holder.app = appInstance
			holder.cleanup = cleanup

			ctx := context.WithValue(cmd.Context(), appKey, holder)

			// Add timeout if configured
			if appInstance.Config.Timeout > 0 {
				ctx, holder.cancel = context.WithTimeout(ctx, appInstance.Config.Timeout)
			}

			cmd.SetContext(ctx)

			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug output")
	rootCmd.PersistentFlags().Bool("non-interactive", false, "Disable interactive prompts")
	rootCmd.PersistentFlags().String("as", "", "Identity (address) the command acts as")
	rootCmd.PersistentFlags().String("at", "", "Override the clock (unix seconds or RFC 3339)")
	rootCmd.PersistentFlags().StringP("output", "o", "table", "Output format: table, json or yaml")
	rootCmd.PersistentFlags().String("data-dir", "", "Directory holding the record store (default .lockgov)")

	// Add command groups
	rootCmd.AddGroup(&cobra.Group{
		ID:    "governance",
		Title: "Governance Commands",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "locker",
		Title: "Locker Commands",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "redemption",
		Title: "Redemption Commands",
	})

	for _, c := range []*cobra.Command{NewGovernorCmd(), NewProposalCmd(), NewVoteCmd()} {
		c.GroupID = "governance"
		rootCmd.AddCommand(c)
	}
	for _, c := range []*cobra.Command{NewLockerCmd(), NewEscrowCmd(), NewTokenCmd()} {
		c.GroupID = "locker"
		rootCmd.AddCommand(c)
	}
	for _, c := range []*cobra.Command{NewRedeemerCmd(), NewBlacklistCmd()} {
		c.GroupID = "redemption"
		rootCmd.AddCommand(c)
	}

	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

// getApp retrieves the app instance from the command context
func getApp(cmd *cobra.Command) (*app.App, error) {
	holder, ok := cmd.Context().Value(appKey).(*appHolder)
	if !ok || holder.app == nil {
		return nil, fmt.Errorf("app not initialized")
	}
	return holder.app, nil
}
