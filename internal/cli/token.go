package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/lockgov/internal/cli/render"
	"github.com/trebuchet-org/lockgov/internal/domain/models"
)

// NewTokenCmd creates the token command group
func NewTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Inspect and fund token accounts",
	}

	cmd.AddCommand(
		newTokenAccountCmd(),
		newTokenMintCmd(),
		newTokenListCmd(),
	)
	return cmd
}

// ownerOrCaller parses --owner, falling back to --as.
func ownerOrCaller(cmd *cobra.Command, owner string) (common.Address, error) {
	app, err := getApp(cmd)
	if err != nil {
		return common.Address{}, err
	}
	if owner == "" {
		return requireCaller(app)
	}
	return parseAddress("--owner", owner)
}

func newTokenAccountCmd() *cobra.Command {
	var owner string

	cmd := &cobra.Command{
		Use:   "account <mint>",
		Short: "Open (or show) the token account of an owner",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			mint, err := parseAddress("mint", args[0])
			if err != nil {
				return err
			}
			ownerAddr, err := ownerOrCaller(cmd, owner)
			if err != nil {
				return err
			}

			result, err := app.ManageTokens.CreateAccount(cmd.Context(), mint, ownerAddr)
			if err != nil {
				return err
			}
			return report(cmd, app, result.Account, result.Events, func(out io.Writer) error {
				return render.RenderAccounts(out, []*models.TokenAccount{result.Account})
			})
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "Account owner (default --as)")
	return cmd
}

func newTokenMintCmd() *cobra.Command {
	var to string

	cmd := &cobra.Command{
		Use:   "mint <mint> <amount>",
		Short: "Mint tokens into an owner's account",
		Long: `Mint tokens into an owner's account, opening it when needed. The record
store has no token program, so this is how balances enter it.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			mint, err := parseAddress("mint", args[0])
			if err != nil {
				return err
			}
			amount, err := strconv.ParseUint(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", args[1], err)
			}
			owner, err := ownerOrCaller(cmd, to)
			if err != nil {
				return err
			}

			result, err := app.ManageTokens.MintTo(cmd.Context(), mint, owner, amount)
			if err != nil {
				return err
			}
			return report(cmd, app, result.Account, result.Events, func(out io.Writer) error {
				return render.RenderAccounts(out, []*models.TokenAccount{result.Account})
			})
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "Receiving owner (default --as)")
	return cmd
}

func newTokenListCmd() *cobra.Command {
	var owner string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List token accounts",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			ownerAddr, err := parseOptionalAddress("--owner", owner)
			if err != nil {
				return err
			}

			accounts, err := app.ManageTokens.ListAccounts(cmd.Context(), ownerAddr)
			if err != nil {
				return err
			}
			return show(cmd, app, accounts, func(out io.Writer) error {
				return render.RenderAccounts(out, accounts)
			})
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "Only accounts of this owner")
	return cmd
}
