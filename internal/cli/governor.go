package cli

import (
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/lockgov/internal/cli/render"
	"github.com/trebuchet-org/lockgov/internal/domain/models"
	"github.com/trebuchet-org/lockgov/internal/usecase"
)

// governanceFlags are the GovernanceParameters flags shared by create and set-params
type governanceFlags struct {
	votingDelay   time.Duration
	votingPeriod  time.Duration
	quorum        uint64
	timelockDelay time.Duration
}

func (f *governanceFlags) register(cmd *cobra.Command) {
	cmd.Flags().DurationVar(&f.votingDelay, "voting-delay", 0, "Delay between proposal creation and activation")
	cmd.Flags().DurationVar(&f.votingPeriod, "voting-period", 72*time.Hour, "How long an active proposal accepts votes")
	cmd.Flags().Uint64Var(&f.quorum, "quorum", 0, "Minimum For votes for a proposal to pass")
	cmd.Flags().DurationVar(&f.timelockDelay, "timelock-delay", 0, "Delay before a queued transaction may execute (0 disables the timelock)")
}

// apply writes the flags onto params. With onlyChanged, untouched flags
// keep the current value.
func (f *governanceFlags) apply(cmd *cobra.Command, params *models.GovernanceParameters, onlyChanged bool) error {
	set := func(name string) bool { return !onlyChanged || cmd.Flags().Changed(name) }

	if set("voting-delay") {
		s, err := seconds("voting-delay", f.votingDelay)
		if err != nil {
			return err
		}
		params.VotingDelay = s
	}
	if set("voting-period") {
		s, err := seconds("voting-period", f.votingPeriod)
		if err != nil {
			return err
		}
		params.VotingPeriod = s
	}
	if set("quorum") {
		params.QuorumVotes = f.quorum
	}
	if set("timelock-delay") {
		params.TimelockDelaySeconds = int64(f.timelockDelay / time.Second)
	}
	return nil
}

// NewGovernorCmd creates the governor command group
func NewGovernorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "governor",
		Short: "Create and configure governors",
	}

	cmd.AddCommand(
		newGovernorCreateCmd(),
		newGovernorSetParamsCmd(),
		newGovernorSetElectorateCmd(),
		newGovernorShowCmd(),
		newGovernorListCmd(),
	)
	return cmd
}

func newGovernorCreateCmd() *cobra.Command {
	var (
		base, electorate, smartWallet string
		params                        governanceFlags
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a governor",
		Long: `Create a governor. Its address is derived from --base, so one base
yields exactly one governor.

Examples:
  lockgov governor create --base 0xb1... --electorate 0xa2... --smart-wallet 0xa1... --quorum 1000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			p := usecase.CreateGovernorParams{}
			if p.Base, err = parseAddress("--base", base); err != nil {
				return err
			}
			if p.Electorate, err = parseAddress("--electorate", electorate); err != nil {
				return err
			}
			if p.SmartWallet, err = parseAddress("--smart-wallet", smartWallet); err != nil {
				return err
			}
			if err := params.apply(cmd, &p.Params, false); err != nil {
				return err
			}

			result, err := app.ManageGovernor.Create(cmd.Context(), p)
			if err != nil {
				return err
			}
			return report(cmd, app, result.Governor, result.Events, func(out io.Writer) error {
				return render.NewGovernanceRenderer(out).RenderGovernor(&usecase.GovernorView{Governor: result.Governor})
			})
		},
	}

	cmd.Flags().StringVar(&base, "base", "", "Base identity the governor address is derived from")
	cmd.Flags().StringVar(&electorate, "electorate", "", "Identity allowed to activate proposals and set votes")
	cmd.Flags().StringVar(&smartWallet, "smart-wallet", "", "Smart wallet executing passed proposals")
	params.register(cmd)
	_ = cmd.MarkFlagRequired("base")
	_ = cmd.MarkFlagRequired("electorate")
	_ = cmd.MarkFlagRequired("smart-wallet")

	return cmd
}

func newGovernorSetParamsCmd() *cobra.Command {
	var params governanceFlags

	cmd := &cobra.Command{
		Use:   "set-params <governor>",
		Short: "Change the voting rules of a governor (smart wallet only)",
		Long: `Change the voting rules of a governor. Only flags that are given
change; the rest keep their current value.`,
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
			key, err := parseAddress("governor", args[0])
			if err != nil {
				return err
			}

			current, err := app.ShowGovernance.Governor(cmd.Context(), key)
			if err != nil {
				return err
			}
			next := current.Governor.Params
			if err := params.apply(cmd, &next, true); err != nil {
				return err
			}

			result, err := app.ManageGovernor.SetParams(cmd.Context(), caller, key, next)
			if err != nil {
				return err
			}
			return report(cmd, app, result.Governor, result.Events, nil)
		},
	}

	params.register(cmd)
	return cmd
}

func newGovernorSetElectorateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-electorate <governor> <electorate>",
		Short: "Replace the electorate of a governor (smart wallet only)",
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
			key, err := parseAddress("governor", args[0])
			if err != nil {
				return err
			}
			electorate, err := parseAddress("electorate", args[1])
			if err != nil {
				return err
			}

			result, err := app.ManageGovernor.SetElectorate(cmd.Context(), caller, key, electorate)
			if err != nil {
				return err
			}
			return report(cmd, app, result.Governor, result.Events, nil)
		},
	}
}

func newGovernorShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <governor>",
		Short: "Show a governor and its proposal counts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			key, err := parseAddress("governor", args[0])
			if err != nil {
				return err
			}

			view, err := app.ShowGovernance.Governor(cmd.Context(), key)
			if err != nil {
				return err
			}
			return show(cmd, app, view, func(out io.Writer) error {
				return render.NewGovernanceRenderer(out).RenderGovernor(view)
			})
		},
	}
}

func newGovernorListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List governors",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			governors, err := app.ShowGovernance.ListGovernors(cmd.Context())
			if err != nil {
				return err
			}
			return show(cmd, app, governors, func(out io.Writer) error {
				return render.NewGovernanceRenderer(out).RenderGovernors(governors)
			})
		},
	}
}
