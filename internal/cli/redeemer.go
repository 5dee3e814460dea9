package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/lockgov/internal/cli/render"
	"github.com/trebuchet-org/lockgov/internal/config"
	"github.com/trebuchet-org/lockgov/internal/domain/models"
	"github.com/trebuchet-org/lockgov/internal/usecase"
)

// NewRedeemerCmd creates the redeemer command group
func NewRedeemerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "redeemer",
		Short: "Run early-exit pools paying receipt tokens for locked escrows",
	}

	cmd.AddCommand(
		newRedeemerCreateCmd(),
		newRedeemerUpdateAdminCmd(),
		newRedeemerAcceptAdminCmd(),
		newRedeemerSetTreasuryCmd(),
		newRedeemerAddFundsCmd(),
		newRedeemerRemoveFundsCmd(),
		newRedeemerToggleCmd(),
		newRedeemerSetRateCmd(),
		newRedeemerWithdrawCmd(),
		newRedeemerShowCmd(),
		newRedeemerListCmd(),
	)
	return cmd
}

func renderRedeemerResult(cmd *cobra.Command, result *usecase.RedeemerResult) error {
	app, err := getApp(cmd)
	if err != nil {
		return err
	}
	return report(cmd, app, result.Redeemer, result.Events, func(out io.Writer) error {
		return render.NewRedeemerRenderer(out).RenderRedeemer(result.Redeemer)
	})
}

func newRedeemerCreateCmd() *cobra.Command {
	var (
		locker, receiptMint, treasury, cutoff string
		rate                                  uint64
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a redeemer for a locker (configured deployer only)",
		Long: `Create a redeemer for a locker. The caller must be the deployer set in
[redeemer] deployer of lockgov.toml (or LOCKGOV_DEPLOYER) and becomes the
admin.

Escrows started before --cutoff may withdraw instantly, receiving
floor(voting power / --rate) receipt tokens while their locked tokens go to
--treasury.

Examples:
  lockgov redeemer create --locker 0x... --receipt-mint 0xd2... --treasury 0x... \
    --rate 2 --cutoff 2024-01-01T00:00:00Z --as 0xa4...`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			caller, err := requireCaller(app)
			if err != nil {
				return err
			}

			p := usecase.CreateRedeemerParams{Caller: caller, RedemptionRate: rate}
			if p.Locker, err = parseAddress("--locker", locker); err != nil {
				return err
			}
			if p.ReceiptMint, err = parseAddress("--receipt-mint", receiptMint); err != nil {
				return err
			}
			if p.Treasury, err = parseAddress("--treasury", treasury); err != nil {
				return err
			}
			if p.CutoffDate, err = config.ParseTimestamp(cutoff); err != nil {
				return fmt.Errorf("invalid --cutoff: %w", err)
			}

			result, err := app.ManageRedeemer.Create(cmd.Context(), p)
			if err != nil {
				return err
			}
			return renderRedeemerResult(cmd, result)
		},
	}

	cmd.Flags().StringVar(&locker, "locker", "", "Locker whose escrows may redeem")
	cmd.Flags().StringVar(&receiptMint, "receipt-mint", "", "Mint of the receipt token paid out")
	cmd.Flags().StringVar(&treasury, "treasury", "", "Token account (locker mint) receiving redeemed principal")
	cmd.Flags().Uint64Var(&rate, "rate", 0, "Voting power per receipt token")
	cmd.Flags().StringVar(&cutoff, "cutoff", "", "Escrows started before this time may redeem (unix seconds or RFC 3339)")
	for _, name := range []string{"locker", "receipt-mint", "treasury", "rate", "cutoff"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func newRedeemerUpdateAdminCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update-admin <redeemer> <new-admin>",
		Short: "Nominate a new admin (admin only)",
		Long: `Nominate a new admin. The nominee takes over once they run
"redeemer accept-admin".`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			caller, err := requireCaller(app)
			if err != nil {
				return err
			}
			key, err := parseAddress("redeemer", args[0])
			if err != nil {
				return err
			}
			admin, err := parseAddress("new admin", args[1])
			if err != nil {
				return err
			}

			result, err := app.ManageRedeemer.UpdateAdmin(cmd.Context(), caller, key, admin)
			if err != nil {
				return err
			}
			return renderRedeemerResult(cmd, result)
		},
	}
}

func newRedeemerAcceptAdminCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "accept-admin <redeemer>",
		Short: "Accept a pending admin nomination (nominee only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			caller, err := requireCaller(app)
			if err != nil {
				return err
			}
			key, err := parseAddress("redeemer", args[0])
			if err != nil {
				return err
			}

			result, err := app.ManageRedeemer.AcceptAdmin(cmd.Context(), caller, key)
			if err != nil {
				return err
			}
			return renderRedeemerResult(cmd, result)
		},
	}
}

func newRedeemerSetTreasuryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-treasury <redeemer> <treasury>",
		Short: "Change where redeemed principal goes (admin only)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			caller, err := requireCaller(app)
			if err != nil {
				return err
			}
			key, err := parseAddress("redeemer", args[0])
			if err != nil {
				return err
			}
			treasury, err := parseAddress("treasury", args[1])
			if err != nil {
				return err
			}

			result, err := app.ManageRedeemer.UpdateTreasury(cmd.Context(), caller, key, treasury)
			if err != nil {
				return err
			}
			return renderRedeemerResult(cmd, result)
		},
	}
}

func newRedeemerAddFundsCmd() *cobra.Command {
	var (
		amount uint64
		source string
	)

	cmd := &cobra.Command{
		Use:   "add-funds <redeemer>",
		Short: "Deposit receipt tokens into the redeemer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			caller, err := requireCaller(app)
			if err != nil {
				return err
			}
			key, err := parseAddress("redeemer", args[0])
			if err != nil {
				return err
			}
			sourceAddr, err := parseOptionalAddress("--source", source)
			if err != nil {
				return err
			}

			result, err := app.ManageRedeemer.AddFunds(cmd.Context(), caller, key, sourceAddr, amount)
			if err != nil {
				return err
			}
			return renderRedeemerResult(cmd, result)
		},
	}

	cmd.Flags().Uint64Var(&amount, "amount", 0, "Receipt tokens to deposit")
	cmd.Flags().StringVar(&source, "source", "", "Receipt token account to debit (default the caller's account)")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func newRedeemerRemoveFundsCmd() *cobra.Command {
	var (
		destination string
		yes         bool
	)

	cmd := &cobra.Command{
		Use:   "remove-funds <redeemer>",
		Short: "Withdraw every receipt token from the redeemer (admin only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			caller, err := requireCaller(app)
			if err != nil {
				return err
			}
			key, err := parseAddress("redeemer", args[0])
			if err != nil {
				return err
			}
			dest, err := parseOptionalAddress("--destination", destination)
			if err != nil {
				return err
			}
			if err := confirm(cmd, app, yes, fmt.Sprintf("Remove all funds from redeemer %s", key.Hex())); err != nil {
				return err
			}

			result, err := app.ManageRedeemer.RemoveAllFunds(cmd.Context(), caller, key, dest)
			if err != nil {
				return err
			}
			return report(cmd, app, result.Redeemer, result.Events, func(out io.Writer) error {
				fmt.Fprintf(out, "Removed %d receipt tokens\n", result.Amount)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&destination, "destination", "", "Receipt token account owned by the caller (default the caller's account)")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

// parseRedeemerStatus accepts a status name or its number.
func parseRedeemerStatus(s string) (uint8, error) {
	switch strings.ToLower(s) {
	case models.RedeemerStatusActive.String():
		return uint8(models.RedeemerStatusActive), nil
	case models.RedeemerStatusPaused.String():
		return uint8(models.RedeemerStatusPaused), nil
	}
	n, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid status %q: want active, paused or a number", s)
	}
	return uint8(n), nil
}

func newRedeemerToggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <redeemer> <active|paused>",
		Short: "Pause or resume withdrawals (admin only)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			caller, err := requireCaller(app)
			if err != nil {
				return err
			}
			key, err := parseAddress("redeemer", args[0])
			if err != nil {
				return err
			}
			status, err := parseRedeemerStatus(args[1])
			if err != nil {
				return err
			}

			result, err := app.ManageRedeemer.Toggle(cmd.Context(), caller, key, status)
			if err != nil {
				return err
			}
			return renderRedeemerResult(cmd, result)
		},
	}
}

func newRedeemerSetRateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-rate <redeemer> <rate>",
		Short: "Change the voting power per receipt token (admin only)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			caller, err := requireCaller(app)
			if err != nil {
				return err
			}
			key, err := parseAddress("redeemer", args[0])
			if err != nil {
				return err
			}
			rate, err := strconv.ParseUint(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid rate %q: %w", args[1], err)
			}

			result, err := app.ManageRedeemer.UpdateRate(cmd.Context(), caller, key, rate)
			if err != nil {
				return err
			}
			return renderRedeemerResult(cmd, result)
		},
	}
}

func newRedeemerWithdrawCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "withdraw <redeemer> <escrow>",
		Short: "Exit a locked escrow now for receipt tokens (escrow owner only)",
		Long: `Exit a locked escrow before it ends. The locked tokens go to the
redeemer's treasury, the owner receives floor(voting power / rate) receipt
tokens, and the escrow is blacklisted from redeeming again.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			caller, err := requireCaller(app)
			if err != nil {
				return err
			}

			p := usecase.InstantWithdrawParams{Caller: caller}
			if p.Redeemer, err = parseAddress("redeemer", args[0]); err != nil {
				return err
			}
			if p.Escrow, err = parseAddress("escrow", args[1]); err != nil {
				return err
			}
			if err := confirm(cmd, app, yes, fmt.Sprintf("Redeem escrow %s now", p.Escrow.Hex())); err != nil {
				return err
			}

			result, err := app.InstantWithdraw.Execute(cmd.Context(), p)
			if err != nil {
				return err
			}
			return report(cmd, app, result, result.Events, func(out io.Writer) error {
				return render.NewRedeemerRenderer(out).RenderWithdraw(result)
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func newRedeemerShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <redeemer>",
		Short: "Show a redeemer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			key, err := parseAddress("redeemer", args[0])
			if err != nil {
				return err
			}

			rd, err := app.ManageRedeemer.Redeemer(cmd.Context(), key)
			if err != nil {
				return err
			}
			return show(cmd, app, rd, func(out io.Writer) error {
				return render.NewRedeemerRenderer(out).RenderRedeemer(rd)
			})
		},
	}
}

func newRedeemerListCmd() *cobra.Command {
	var locker string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List redeemers",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			lockerAddr, err := parseOptionalAddress("--locker", locker)
			if err != nil {
				return err
			}

			redeemers, err := app.ManageRedeemer.ListRedeemers(cmd.Context(), lockerAddr)
			if err != nil {
				return err
			}
			return show(cmd, app, redeemers, func(out io.Writer) error {
				return render.NewRedeemerRenderer(out).RenderRedeemers(redeemers)
			})
		},
	}

	cmd.Flags().StringVar(&locker, "locker", "", "Only redeemers of this locker")
	return cmd
}
