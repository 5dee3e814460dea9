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

// NewEscrowCmd creates the escrow command group
func NewEscrowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "escrow",
		Short: "Lock tokens, delegate and vote through escrows",
	}

	cmd.AddCommand(
		newEscrowCreateCmd(),
		newEscrowLockCmd(),
		newEscrowExtendCmd(),
		newEscrowExitCmd(),
		newEscrowDelegateCmd(),
		newEscrowActivateCmd(),
		newEscrowVoteCmd(),
		newEscrowShowCmd(),
		newEscrowListCmd(),
	)
	return cmd
}

func renderEscrowResult(cmd *cobra.Command, result *usecase.EscrowResult) error {
	app, err := getApp(cmd)
	if err != nil {
		return err
	}
	return report(cmd, app, result.Escrow, result.Events, func(out io.Writer) error {
		view, err := app.ShowLocker.Escrow(cmd.Context(), result.Escrow.Key)
		if err != nil {
			return err
		}
		return render.NewLockerRenderer(out).RenderEscrow(view)
	})
}

func newEscrowCreateCmd() *cobra.Command {
	var owner string

	cmd := &cobra.Command{
		Use:   "create <locker>",
		Short: "Open an escrow in a locker",
		Long: `Open an escrow in a locker. Anyone may open an escrow for any owner;
the owner defaults to --as.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			locker, err := parseAddress("locker", args[0])
			if err != nil {
				return err
			}
			ownerAddr, err := parseOptionalAddress("--owner", owner)
			if err != nil {
				return err
			}
			if owner == "" {
				if ownerAddr, err = requireCaller(app); err != nil {
					return err
				}
			}

			result, err := app.ManageEscrow.Create(cmd.Context(), locker, ownerAddr)
			if err != nil {
				return err
			}
			return renderEscrowResult(cmd, result)
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "Escrow owner (default --as)")
	return cmd
}

func newEscrowLockCmd() *cobra.Command {
	var (
		amount    uint64
		duration  time.Duration
		source    string
		authority string
		program   string
	)

	cmd := &cobra.Command{
		Use:   "lock <escrow>",
		Short: "Add tokens and (re)start the lock (owner only)",
		Long: `Move --amount tokens into the escrow and set its end to now + --duration.
A lock may never end earlier than the escrow's current end.

--authority selects the path the lock goes through:
  owner           the owner locks directly (default)
  program         a whitelisted --program locks for the owner (whitelist enabled)
  permissionless  the owner locks without a whitelist (whitelist disabled)

Examples:
  lockgov escrow lock 0x... --amount 1000 --duration 8760h --as 0xc1...`,
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

			p := usecase.LockParams{Caller: caller, Amount: amount}
			if p.Escrow, err = parseAddress("escrow", args[0]); err != nil {
				return err
			}
			if p.SourceTokens, err = parseOptionalAddress("--source", source); err != nil {
				return err
			}
			if p.Duration, err = seconds("duration", duration); err != nil {
				return err
			}
			if p.Authority.Kind, err = usecase.ParseLockAuthorityKind(authority); err != nil {
				return err
			}
			if p.Authority.ProgramID, err = parseOptionalAddress("--program", program); err != nil {
				return err
			}

			result, err := app.ManageEscrow.Lock(cmd.Context(), p)
			if err != nil {
				return err
			}
			return renderEscrowResult(cmd, result)
		},
	}

	cmd.Flags().Uint64Var(&amount, "amount", 0, "Tokens to add to the escrow")
	cmd.Flags().DurationVar(&duration, "duration", 0, "Lock duration from now")
	cmd.Flags().StringVar(&source, "source", "", "Token account to debit (default the owner's account)")
	cmd.Flags().StringVar(&authority, "authority", string(usecase.LockAuthorityOwner), "Lock path: owner, program or permissionless")
	cmd.Flags().StringVar(&program, "program", "", "Whitelisted program locking on the owner's behalf")
	_ = cmd.MarkFlagRequired("duration")
	return cmd
}

func newEscrowExtendCmd() *cobra.Command {
	var duration time.Duration

	cmd := &cobra.Command{
		Use:   "extend <escrow>",
		Short: "Restart the lock without adding tokens (owner only)",
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
			key, err := parseAddress("escrow", args[0])
			if err != nil {
				return err
			}
			secs, err := seconds("duration", duration)
			if err != nil {
				return err
			}

			result, err := app.ManageEscrow.ExtendLockDuration(cmd.Context(), caller, key, secs)
			if err != nil {
				return err
			}
			return renderEscrowResult(cmd, result)
		},
	}

	cmd.Flags().DurationVar(&duration, "duration", 0, "New lock duration from now")
	_ = cmd.MarkFlagRequired("duration")
	return cmd
}

func newEscrowExitCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "exit <escrow>",
		Short: "Withdraw all tokens of an ended escrow (owner only)",
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
			key, err := parseAddress("escrow", args[0])
			if err != nil {
				return err
			}
			if err := confirm(cmd, app, yes, fmt.Sprintf("Withdraw everything from escrow %s", key.Hex())); err != nil {
				return err
			}

			result, err := app.ManageEscrow.Exit(cmd.Context(), caller, key)
			if err != nil {
				return err
			}
			return renderEscrowResult(cmd, result)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func newEscrowDelegateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delegate <escrow> <delegate>",
		Short: "Set who votes with the escrow (owner only)",
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
			key, err := parseAddress("escrow", args[0])
			if err != nil {
				return err
			}
			delegate, err := parseAddress("delegate", args[1])
			if err != nil {
				return err
			}

			result, err := app.ManageEscrow.SetVoteDelegate(cmd.Context(), caller, key, delegate)
			if err != nil {
				return err
			}
			return renderEscrowResult(cmd, result)
		},
	}
}

func parseEscrowProposal(cmd *cobra.Command, args []string) (usecase.EscrowProposalParams, error) {
	var p usecase.EscrowProposalParams
	app, err := getApp(cmd)
	if err != nil {
		return p, err
	}
	if p.Caller, err = requireCaller(app); err != nil {
		return p, err
	}
	if p.Escrow, err = parseAddress("escrow", args[0]); err != nil {
		return p, err
	}
	if p.Proposal, err = parseAddress("proposal", args[1]); err != nil {
		return p, err
	}
	return p, nil
}

func newEscrowActivateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "activate <escrow> <proposal>",
		Short: "Activate a proposal with the escrow's voting power (delegate only)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			params, err := parseEscrowProposal(cmd, args)
			if err != nil {
				return err
			}

			result, err := app.LockerVoting.ActivateProposal(cmd.Context(), params)
			if err != nil {
				return err
			}
			return report(cmd, app, result.Proposal, result.Events, func(out io.Writer) error {
				fmt.Fprintf(out, "Activated with voting power %d, voting ends %s\n", result.VotingPower, render.FormatTime(result.Proposal.VotingEndsAt))
				return nil
			})
		},
	}
}

func newEscrowVoteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "vote <escrow> <proposal> <side>",
		Short: "Vote with the escrow's current voting power (delegate only)",
		Long: `Vote with the escrow's current voting power. Voting again replaces the
earlier side and weight.

Side is one of pending, against, for, abstain (or 0-3).`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			params, err := parseEscrowProposal(cmd, args)
			if err != nil {
				return err
			}
			side, err := models.ParseVoteSideName(args[2])
			if err != nil {
				return err
			}

			result, err := app.LockerVoting.CastVote(cmd.Context(), usecase.CastVoteParams{EscrowProposalParams: params, Side: side})
			if err != nil {
				return err
			}
			return report(cmd, app, result.Vote, result.Events, func(out io.Writer) error {
				p := result.Proposal
				fmt.Fprintf(out, "Voted %s with %d\n", side, result.VotingPower)
				fmt.Fprintf(out, "Tally: for %d, against %d, abstain %d\n", p.ForVotes, p.AgainstVotes, p.AbstainVotes)
				return nil
			})
		},
	}
}

func newEscrowShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <escrow>",
		Short: "Show an escrow and its current voting power",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			key, err := parseAddress("escrow", args[0])
			if err != nil {
				return err
			}

			view, err := app.ShowLocker.Escrow(cmd.Context(), key)
			if err != nil {
				return err
			}
			return show(cmd, app, view, func(out io.Writer) error {
				return render.NewLockerRenderer(out).RenderEscrow(view)
			})
		},
	}
}

func newEscrowListCmd() *cobra.Command {
	var locker, owner string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List escrows",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			var filter usecase.EscrowFilter
			if filter.Locker, err = parseOptionalAddress("--locker", locker); err != nil {
				return err
			}
			if filter.Owner, err = parseOptionalAddress("--owner", owner); err != nil {
				return err
			}

			views, err := app.ShowLocker.ListEscrows(cmd.Context(), filter)
			if err != nil {
				return err
			}
			return show(cmd, app, views, func(out io.Writer) error {
				return render.NewLockerRenderer(out).RenderEscrows(views)
			})
		},
	}

	cmd.Flags().StringVar(&locker, "locker", "", "Only escrows of this locker")
	cmd.Flags().StringVar(&owner, "owner", "", "Only escrows of this owner")
	return cmd
}
