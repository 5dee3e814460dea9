package cli

import (
	"io"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/lockgov/internal/cli/render"
	"github.com/trebuchet-org/lockgov/internal/usecase"
)

// NewBlacklistCmd creates the blacklist command group
func NewBlacklistCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "blacklist",
		Short: "Block escrows from redeeming",
	}

	cmd.AddCommand(
		newBlacklistMutateCmd("add", "Blacklist an escrow (redeemer admin only)", true),
		newBlacklistMutateCmd("remove", "Lift an escrow's blacklisting (redeemer admin only)", false),
		newBlacklistCheckCmd(),
	)
	return cmd
}

func newBlacklistMutateCmd(use, short string, add bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <redeemer> <escrow>",
		Short: short,
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

			p := usecase.BlacklistParams{Caller: caller}
			if p.Redeemer, err = parseAddress("redeemer", args[0]); err != nil {
				return err
			}
			if p.Escrow, err = parseAddress("escrow", args[1]); err != nil {
				return err
			}

			var result *usecase.BlacklistResult
			if add {
				result, err = app.ManageBlacklist.Add(cmd.Context(), p)
			} else {
				result, err = app.ManageBlacklist.Remove(cmd.Context(), p)
			}
			if err != nil {
				return err
			}
			return report(cmd, app, result.Entry, result.Events, nil)
		},
	}
}

func newBlacklistCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <locker> <escrow>",
		Short: "Show whether an escrow is blacklisted",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			locker, err := parseAddress("locker", args[0])
			if err != nil {
				return err
			}
			escrow, err := parseAddress("escrow", args[1])
			if err != nil {
				return err
			}

			entry, err := app.ManageBlacklist.Check(cmd.Context(), locker, escrow)
			if err != nil {
				return err
			}
			return show(cmd, app, map[string]any{"blacklisted": entry != nil, "entry": entry}, func(out io.Writer) error {
				return render.NewRedeemerRenderer(out).RenderBlacklist(escrow.Hex(), entry)
			})
		},
	}
}
