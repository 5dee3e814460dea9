package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/lockgov/internal/cli/render"
	"github.com/trebuchet-org/lockgov/internal/domain/models"
	"github.com/trebuchet-org/lockgov/internal/usecase"
)

// NewVoteCmd creates the vote command group
func NewVoteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vote",
		Short: "Record votes set directly by the electorate",
	}

	cmd.AddCommand(
		newVoteNewCmd(),
		newVoteSetCmd(),
		newVoteListCmd(),
	)
	return cmd
}

func newVoteNewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "new <proposal> <voter>",
		Short: "Create the pending vote record of a voter",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			proposal, err := parseAddress("proposal", args[0])
			if err != nil {
				return err
			}
			voter, err := parseAddress("voter", args[1])
			if err != nil {
				return err
			}

			result, err := app.ManageVote.NewVote(cmd.Context(), proposal, voter)
			if err != nil {
				return err
			}
			return report(cmd, app, result.Vote, result.Events, func(out io.Writer) error {
				fmt.Fprintf(out, "Vote %s\n", result.Vote.Key.Hex())
				return nil
			})
		},
	}
}

func newVoteSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <proposal> <voter> <side> <weight>",
		Short: "Set a voter's side and weight (electorate only)",
		Long: `Set a voter's side and weight on an active proposal. The previous
side and weight of the vote are removed from the tallies first.

Side is one of pending, against, for, abstain (or 0-3).`,
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			caller, err := requireCaller(app)
			if err != nil {
				return err
			}
			proposal, err := parseAddress("proposal", args[0])
			if err != nil {
				return err
			}
			voter, err := parseAddress("voter", args[1])
			if err != nil {
				return err
			}
			side, err := models.ParseVoteSideName(args[2])
			if err != nil {
				return err
			}
			weight, err := strconv.ParseUint(args[3], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid weight %q: %w", args[3], err)
			}

			result, err := app.ManageVote.SetVote(cmd.Context(), usecase.SetVoteParams{
				Caller:   caller,
				Proposal: proposal,
				Voter:    voter,
				Side:     side,
				Weight:   weight,
			})
			if err != nil {
				return err
			}
			return report(cmd, app, result.Vote, result.Events, func(out io.Writer) error {
				p := result.Proposal
				fmt.Fprintf(out, "Tally: for %d, against %d, abstain %d\n", p.ForVotes, p.AgainstVotes, p.AbstainVotes)
				return nil
			})
		},
	}
}

func newVoteListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list <proposal>",
		Aliases: []string{"ls"},
		Short:   "List the votes on a proposal",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			proposal, err := parseAddress("proposal", args[0])
			if err != nil {
				return err
			}

			votes, err := app.ShowGovernance.ListVotes(cmd.Context(), proposal)
			if err != nil {
				return err
			}
			return show(cmd, app, votes, func(out io.Writer) error {
				return render.NewGovernanceRenderer(out).RenderVotes(votes)
			})
		},
	}
}
