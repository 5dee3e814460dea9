package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/lockgov/internal/cli/render"
	"github.com/trebuchet-org/lockgov/internal/domain/models"
	"github.com/trebuchet-org/lockgov/internal/usecase"
)

// lockerFlags are the LockerParams flags shared by create and set-params
type lockerFlags struct {
	whitelist     bool
	multiplier    uint8
	minDuration   time.Duration
	maxDuration   time.Duration
	activationMin uint64
}

func (f *lockerFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.whitelist, "whitelist", false, "Only whitelisted programs may lock on behalf of owners")
	cmd.Flags().Uint8Var(&f.multiplier, "multiplier", 1, "Voting power multiplier of a maximum-length lock")
	cmd.Flags().DurationVar(&f.minDuration, "min-duration", 0, "Shortest allowed lock")
	cmd.Flags().DurationVar(&f.maxDuration, "max-duration", 365*24*time.Hour, "Longest allowed lock")
	cmd.Flags().Uint64Var(&f.activationMin, "activation-min-votes", 0, "Voting power an escrow needs to activate a proposal")
}

// apply writes the flags onto params. With onlyChanged, untouched flags
// keep the current value.
func (f *lockerFlags) apply(cmd *cobra.Command, params *models.LockerParams, onlyChanged bool) error {
	set := func(name string) bool { return !onlyChanged || cmd.Flags().Changed(name) }

	if set("whitelist") {
		params.WhitelistEnabled = f.whitelist
	}
	if set("multiplier") {
		params.MaxStakeVoteMultiplier = f.multiplier
	}
	if set("min-duration") {
		s, err := seconds("min-duration", f.minDuration)
		if err != nil {
			return err
		}
		params.MinStakeDuration = s
	}
	if set("max-duration") {
		s, err := seconds("max-duration", f.maxDuration)
		if err != nil {
			return err
		}
		params.MaxStakeDuration = s
	}
	if set("activation-min-votes") {
		params.ProposalActivationMinVotes = f.activationMin
	}
	return nil
}

// NewLockerCmd creates the locker command group
func NewLockerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "locker",
		Short: "Create and configure lockers",
	}

	whitelistCmd := &cobra.Command{
		Use:   "whitelist",
		Short: "Manage programs allowed to lock on behalf of escrow owners",
	}
	whitelistCmd.AddCommand(
		newLockPrivilegeCmd("approve", "Whitelist a program (governance only)", true),
		newLockPrivilegeCmd("revoke", "Remove a program from the whitelist (governance only)", false),
	)

	cmd.AddCommand(
		newLockerCreateCmd(),
		newLockerSetParamsCmd(),
		whitelistCmd,
		newLockerShowCmd(),
		newLockerListCmd(),
	)
	return cmd
}

func newLockerCreateCmd() *cobra.Command {
	var (
		base, mint, governor string
		params               lockerFlags
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a locker for a governor",
		Long: `Create a locker that escrows --mint tokens for --governor. Point the
governor's electorate at the locker address so escrows can vote.

Examples:
  lockgov locker create --base 0xb2... --mint 0xd1... --governor 0x... \
    --multiplier 4 --min-duration 24h --max-duration 8760h --activation-min-votes 1000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			p := usecase.CreateLockerParams{}
			if p.Base, err = parseAddress("--base", base); err != nil {
				return err
			}
			if p.TokenMint, err = parseAddress("--mint", mint); err != nil {
				return err
			}
			if p.Governor, err = parseAddress("--governor", governor); err != nil {
				return err
			}
			if err := params.apply(cmd, &p.Params, false); err != nil {
				return err
			}

			result, err := app.ManageLocker.Create(cmd.Context(), p)
			if err != nil {
				return err
			}
			return report(cmd, app, result.Locker, result.Events, func(out io.Writer) error {
				return render.NewLockerRenderer(out).RenderLocker(&usecase.LockerView{Locker: result.Locker})
			})
		},
	}

	cmd.Flags().StringVar(&base, "base", "", "Base identity the locker address is derived from")
	cmd.Flags().StringVar(&mint, "mint", "", "Mint of the token being locked")
	cmd.Flags().StringVar(&governor, "governor", "", "Governor the locker votes in")
	params.register(cmd)
	_ = cmd.MarkFlagRequired("base")
	_ = cmd.MarkFlagRequired("mint")
	_ = cmd.MarkFlagRequired("governor")

	return cmd
}

func newLockerSetParamsCmd() *cobra.Command {
	var params lockerFlags

	cmd := &cobra.Command{
		Use:   "set-params <locker>",
		Short: "Change locker parameters (governance only)",
		Long: `Change locker parameters. The caller must be the smart wallet of the
locker's governor. Only flags that are given change.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			caller, err := requireCaller(app)
			if err != nil {
				return err
			}
			key, err := parseAddress("locker", args[0])
			if err != nil {
				return err
			}

			current, err := app.ShowLocker.Locker(cmd.Context(), key)
			if err != nil {
				return err
			}
			next := current.Locker.Params
			if err := params.apply(cmd, &next, true); err != nil {
				return err
			}

			result, err := app.ManageLocker.SetParams(cmd.Context(), caller, key, next)
			if err != nil {
				return err
			}
			return report(cmd, app, result.Locker, result.Events, nil)
		},
	}

	params.register(cmd)
	return cmd
}

func newLockPrivilegeCmd(use, short string, approve bool) *cobra.Command {
	var owner string

	cmd := &cobra.Command{
		Use:   use + " <locker> <program>",
		Short: short,
		Long: short + `.

Without --owner the entry covers every escrow owner; with --owner it only
covers escrows of that owner.`,
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

			p := usecase.LockPrivilegeParams{Caller: caller}
			if p.Locker, err = parseAddress("locker", args[0]); err != nil {
				return err
			}
			if p.ProgramID, err = parseAddress("program", args[1]); err != nil {
				return err
			}
			if p.Owner, err = parseOptionalAddress("--owner", owner); err != nil {
				return err
			}

			var result *usecase.WhitelistResult
			if approve {
				result, err = app.ManageLocker.ApproveLockPrivilege(cmd.Context(), p)
			} else {
				result, err = app.ManageLocker.RevokeLockPrivilege(cmd.Context(), p)
			}
			if err != nil {
				return err
			}
			return report(cmd, app, result.Entry, result.Events, nil)
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "Restrict the entry to one escrow owner")
	return cmd
}

func newLockerShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <locker>",
		Short: "Show a locker with its whitelist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			key, err := parseAddress("locker", args[0])
			if err != nil {
				return err
			}

			view, err := app.ShowLocker.Locker(cmd.Context(), key)
			if err != nil {
				return err
			}
			return show(cmd, app, view, func(out io.Writer) error {
				return render.NewLockerRenderer(out).RenderLocker(view)
			})
		},
	}
}

func newLockerListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List lockers",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			lockers, err := app.ShowLocker.ListLockers(cmd.Context())
			if err != nil {
				return err
			}
			return show(cmd, app, lockers, func(out io.Writer) error {
				if len(lockers) > 0 {
					fmt.Fprintf(out, "%d locker(s)\n", len(lockers))
				}
				return render.NewLockerRenderer(out).RenderLockers(lockers)
			})
		},
	}
}
