package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/lockgov/internal/cli/render"
	"github.com/trebuchet-org/lockgov/internal/domain/models"
	"github.com/trebuchet-org/lockgov/internal/usecase"
)

// NewProposalCmd creates the proposal command group
func NewProposalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "proposal",
		Short: "Create, activate, queue and inspect proposals",
	}

	cmd.AddCommand(
		newProposalCreateCmd(),
		newProposalActivateCmd(),
		newProposalCancelCmd(),
		newProposalQueueCmd(),
		newProposalMetaCmd(),
		newProposalShowCmd(),
		newProposalListCmd(),
		newProposalSyncCmd(),
	)
	return cmd
}

// readInstructions loads a JSON array of proposal instructions.
func readInstructions(path string) ([]models.ProposalInstruction, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read instructions: %w", err)
	}
	var instructions []models.ProposalInstruction
	if err := json.Unmarshal(data, &instructions); err != nil {
		return nil, fmt.Errorf("failed to parse instructions %s: %w", path, err)
	}
	return instructions, nil
}

func newProposalCreateCmd() *cobra.Command {
	var instructionsFile string

	cmd := &cobra.Command{
		Use:   "create <governor>",
		Short: "Create a draft proposal as --as",
		Long: `Create a draft proposal on a governor. The caller becomes the proposer.

Instructions are read from a JSON file holding an array of
{"programId": "0x..", "keys": [{"pubkey": "0x..", "isSigner": false, "isWritable": true}], "data": "0x.."}.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			proposer, err := requireCaller(app)
			if err != nil {
				return err
			}
			governor, err := parseAddress("governor", args[0])
			if err != nil {
				return err
			}
			instructions, err := readInstructions(instructionsFile)
			if err != nil {
				return err
			}

			result, err := app.ManageProposal.Create(cmd.Context(), usecase.CreateProposalParams{
				Governor:     governor,
				Proposer:     proposer,
				Instructions: instructions,
			})
			if err != nil {
				return err
			}
			return report(cmd, app, result.Proposal, result.Events, func(out io.Writer) error {
				fmt.Fprintf(out, "Proposal #%d: %s\n", result.Proposal.Index, result.Proposal.Key.Hex())
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&instructionsFile, "instructions", "i", "", "JSON file with the instructions to execute if the proposal passes")
	return cmd
}

func newProposalActivateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "activate <proposal>",
		Short: "Open a proposal for voting (electorate only)",
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
			key, err := parseAddress("proposal", args[0])
			if err != nil {
				return err
			}

			result, err := app.ManageProposal.Activate(cmd.Context(), caller, key)
			if err != nil {
				return err
			}
			return report(cmd, app, result.Proposal, result.Events, func(out io.Writer) error {
				fmt.Fprintf(out, "Voting ends %s\n", render.FormatTime(result.Proposal.VotingEndsAt))
				return nil
			})
		},
	}
}

func newProposalCancelCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "cancel <proposal>",
		Short: "Cancel a draft proposal (proposer only)",
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
			key, err := parseAddress("proposal", args[0])
			if err != nil {
				return err
			}
			if err := confirm(cmd, app, yes, fmt.Sprintf("Cancel proposal %s", key.Hex())); err != nil {
				return err
			}

			result, err := app.ManageProposal.Cancel(cmd.Context(), caller, key)
			if err != nil {
				return err
			}
			return report(cmd, app, result.Proposal, result.Events, nil)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func newProposalQueueCmd() *cobra.Command {
	var safeTxHash string

	cmd := &cobra.Command{
		Use:   "queue <proposal>",
		Short: "Queue a succeeded proposal on the governor's smart wallet",
		Long: `Queue a succeeded proposal on the governor's smart wallet.

Pass --safe-tx-hash when the batch was proposed to a Safe; "proposal sync"
then tracks its execution through the Safe Transaction Service.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			key, err := parseAddress("proposal", args[0])
			if err != nil {
				return err
			}

			result, err := app.ManageProposal.Queue(cmd.Context(), usecase.QueueProposalParams{
				Proposal:   key,
				SafeTxHash: safeTxHash,
			})
			if err != nil {
				return err
			}
			return report(cmd, app, result.Transaction, result.Events, func(out io.Writer) error {
				view := &usecase.ProposalView{Proposal: result.Proposal, State: models.ProposalStateQueued, Transaction: result.Transaction}
				return render.NewGovernanceRenderer(out).RenderProposal(view)
			})
		},
	}

	cmd.Flags().StringVar(&safeTxHash, "safe-tx-hash", "", "Safe transaction hash of the queued batch")
	return cmd
}

func newProposalMetaCmd() *cobra.Command {
	var title, link string

	cmd := &cobra.Command{
		Use:   "meta <proposal>",
		Short: "Attach a title and description link (proposer only, once)",
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
			key, err := parseAddress("proposal", args[0])
			if err != nil {
				return err
			}

			result, err := app.ManageProposal.CreateMeta(cmd.Context(), usecase.CreateMetaParams{
				Caller:          caller,
				Proposal:        key,
				Title:           title,
				DescriptionLink: link,
			})
			if err != nil {
				return err
			}
			return report(cmd, app, result.Meta, result.Events, nil)
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Proposal title")
	cmd.Flags().StringVar(&link, "link", "", "Link to the proposal description")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

// proposalFilterFlags narrows proposal listings
type proposalFilterFlags struct {
	governor string
	proposer string
	state    string
}

func (f *proposalFilterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.governor, "governor", "", "Only proposals of this governor")
	cmd.Flags().StringVar(&f.proposer, "proposer", "", "Only proposals by this proposer")
	cmd.Flags().StringVar(&f.state, "state", "", "Only proposals in this state (draft, active, canceled, defeated, succeeded, queued)")
}

func (f *proposalFilterFlags) params() (usecase.ListProposalsParams, error) {
	var (
		p   usecase.ListProposalsParams
		err error
	)
	if p.Governor, err = parseOptionalAddress("--governor", f.governor); err != nil {
		return p, err
	}
	if p.Proposer, err = parseOptionalAddress("--proposer", f.proposer); err != nil {
		return p, err
	}
	p.State = models.ProposalState(f.state)
	return p, nil
}

func newProposalShowCmd() *cobra.Command {
	var filter proposalFilterFlags

	cmd := &cobra.Command{
		Use:   "show [proposal]",
		Short: "Show a proposal with its votes",
		Long: `Show a proposal with its metadata, votes and queued transaction.

Without an argument an interactive picker searches the proposals matching
the filter flags.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			var view *usecase.ProposalView
			if len(args) == 1 {
				key, err := parseAddress("proposal", args[0])
				if err != nil {
					return err
				}
				if view, err = app.ShowGovernance.Proposal(cmd.Context(), key); err != nil {
					return err
				}
			} else {
				params, err := filter.params()
				if err != nil {
					return err
				}
				candidates, err := app.ShowGovernance.ListProposals(cmd.Context(), params)
				if err != nil {
					return err
				}
				picked, err := app.Selector.SelectProposal(cmd.Context(), candidates, "Select a proposal")
				if err != nil {
					return err
				}
				// reload with votes
				if view, err = app.ShowGovernance.Proposal(cmd.Context(), picked.Proposal.Key); err != nil {
					return err
				}
			}

			return show(cmd, app, view, func(out io.Writer) error {
				return render.NewGovernanceRenderer(out).RenderProposal(view)
			})
		},
	}

	filter.register(cmd)
	return cmd
}

func newProposalListCmd() *cobra.Command {
	var filter proposalFilterFlags

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List proposals",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			params, err := filter.params()
			if err != nil {
				return err
			}

			views, err := app.ShowGovernance.ListProposals(cmd.Context(), params)
			if err != nil {
				return err
			}
			return show(cmd, app, views, func(out io.Writer) error {
				return render.NewGovernanceRenderer(out).RenderProposals(views)
			})
		},
	}

	filter.register(cmd)
	return cmd
}

func newProposalSyncCmd() *cobra.Command {
	var governor, proposal string

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Mark queued proposals executed once their Safe transaction ran",
		Long: `Query the Safe Transaction Service for every queued transaction that
carries a Safe transaction hash and record the ones that were executed.

Configure the service with [safe] chain_id or service_url in lockgov.toml.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			var params usecase.SyncExecutionParams
			if params.Governor, err = parseOptionalAddress("--governor", governor); err != nil {
				return err
			}
			if params.Proposal, err = parseOptionalAddress("--proposal", proposal); err != nil {
				return err
			}

			result, err := app.SyncExecution.Execute(cmd.Context(), params)
			if err != nil {
				return err
			}
			return report(cmd, app, result.Transactions, result.Events, func(out io.Writer) error {
				return render.NewGovernanceRenderer(out).RenderSync(result)
			})
		},
	}

	cmd.Flags().StringVar(&governor, "governor", "", "Only sync proposals of this governor")
	cmd.Flags().StringVar(&proposal, "proposal", "", "Only sync this proposal")
	return cmd
}
