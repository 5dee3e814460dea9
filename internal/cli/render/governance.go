package render

import (
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/samber/lo"
	"github.com/trebuchet-org/lockgov/internal/domain/models"
	"github.com/trebuchet-org/lockgov/internal/usecase"
)

// GovernanceRenderer renders governors, proposals and votes
type GovernanceRenderer struct {
	out io.Writer
}

// NewGovernanceRenderer creates a new governance renderer
func NewGovernanceRenderer(out io.Writer) *GovernanceRenderer {
	return &GovernanceRenderer{out: out}
}

func stateStyle(state models.ProposalState) *color.Color {
	switch state {
	case models.ProposalStateActive:
		return color.New(color.FgCyan, color.Bold)
	case models.ProposalStateSucceeded, models.ProposalStateQueued:
		return okStyle
	case models.ProposalStateDefeated, models.ProposalStateCanceled:
		return badStyle
	default:
		return timestampStyle
	}
}

// RenderGovernor renders one governor with its proposal counts
func (r *GovernanceRenderer) RenderGovernor(view *usecase.GovernorView) error {
	g := view.Governor
	writeFields(r.out, "Governor "+g.Key.Hex(), []field{
		{"Base", FormatAddress(g.Base)},
		{"Electorate", addressStyle.Sprint(FormatAddress(g.Electorate))},
		{"Smart wallet", addressStyle.Sprint(FormatAddress(g.SmartWallet))},
		{"Proposals", fmt.Sprint(g.ProposalCount)},
		{"Voting delay", FormatDuration(g.Params.VotingDelay)},
		{"Voting period", FormatDuration(g.Params.VotingPeriod)},
		{"Quorum", fmt.Sprint(g.Params.QuorumVotes)},
		{"Timelock delay", formatTimelock(g.Params.TimelockDelaySeconds)},
	})

	if len(view.ByState) == 0 {
		return nil
	}
	states := lo.Keys(view.ByState)
	sort.Slice(states, func(i, j int) bool { return states[i] < states[j] })
	fmt.Fprintln(r.out)
	for _, state := range states {
		fmt.Fprintf(r.out, "  %s %d\n", stateStyle(state).Sprintf("%-10s", Title(string(state))), view.ByState[state])
	}
	return nil
}

func formatTimelock(seconds int64) string {
	if seconds <= 0 {
		return "none"
	}
	return FormatDuration(uint64(seconds))
}

// RenderGovernors renders a governor list
func (r *GovernanceRenderer) RenderGovernors(governors []*models.Governor) error {
	if len(governors) == 0 {
		fmt.Fprintln(r.out, "No governors found")
		return nil
	}

	t := newTable(table.Row{"Governor", "Electorate", "Smart Wallet", "Proposals", "Quorum"})
	for _, g := range governors {
		t.AppendRow(table.Row{g.Key.Hex(), FormatAddress(g.Electorate), FormatAddress(g.SmartWallet), g.ProposalCount, g.Params.QuorumVotes})
	}
	fmt.Fprintln(r.out, t.Render())
	return nil
}

// RenderProposal renders one proposal with its meta, votes and queued transaction
func (r *GovernanceRenderer) RenderProposal(view *usecase.ProposalView) error {
	p := view.Proposal
	fields := []field{
		{"State", stateStyle(view.State).Sprint(Title(string(view.State)))},
		{"Governor", FormatAddress(p.Governor)},
		{"Index", fmt.Sprint(p.Index)},
		{"Proposer", addressStyle.Sprint(FormatAddress(p.Proposer))},
	}
	if view.Meta != nil {
		fields = append(fields,
			field{"Title", view.Meta.Title},
			field{"Description", view.Meta.DescriptionLink},
		)
	}
	fields = append(fields,
		field{"For", fmt.Sprint(p.ForVotes)},
		field{"Against", fmt.Sprint(p.AgainstVotes)},
		field{"Abstain", fmt.Sprint(p.AbstainVotes)},
		field{"Quorum", fmt.Sprint(p.QuorumVotes)},
		field{"Created", timestampStyle.Sprint(FormatTime(p.CreatedAt))},
		field{"Activated", timestampStyle.Sprint(FormatTime(p.ActivatedAt))},
		field{"Voting ends", timestampStyle.Sprint(FormatTime(p.VotingEndsAt))},
		field{"Canceled", timestampStyle.Sprint(FormatTime(p.CanceledAt))},
		field{"Queued", timestampStyle.Sprint(FormatTime(p.QueuedAt))},
		field{"Instructions", fmt.Sprint(len(p.Instructions))},
	)
	writeFields(r.out, "Proposal "+p.Key.Hex(), fields)

	if tx := view.Transaction; tx != nil {
		fmt.Fprintln(r.out)
		txFields := []field{
			{"Status", transactionStatus(tx.Status)},
			{"Smart wallet", FormatAddress(tx.SmartWallet)},
			{"ETA", formatETA(tx.ETA)},
		}
		if tx.SafeTxHash != "" {
			txFields = append(txFields, field{"Safe tx", tx.SafeTxHash})
		}
		if tx.ExecutionTxHash != "" {
			txFields = append(txFields,
				field{"Executed", timestampStyle.Sprint(FormatTime(tx.ExecutedAt))},
				field{"Execution tx", tx.ExecutionTxHash},
			)
		}
		writeFields(r.out, "Transaction "+tx.Key.Hex(), txFields)
	}

	if len(view.Votes) > 0 {
		fmt.Fprintln(r.out)
		return r.RenderVotes(view.Votes)
	}
	return nil
}

func transactionStatus(status models.TransactionStatus) string {
	if status == models.TransactionStatusExecuted {
		return okStyle.Sprint(status)
	}
	return warnStyle.Sprint(status)
}

func formatETA(eta int64) string {
	if eta == models.NoETA {
		return "immediate"
	}
	return FormatTime(eta)
}

// RenderProposals renders a proposal list
func (r *GovernanceRenderer) RenderProposals(views []*usecase.ProposalView) error {
	if len(views) == 0 {
		fmt.Fprintln(r.out, "No proposals found")
		return nil
	}

	t := newTable(table.Row{"#", "Proposal", "Title", "State", "For", "Against", "Abstain"})
	for _, v := range views {
		p := v.Proposal
		t.AppendRow(table.Row{
			p.Index,
			p.Key.Hex(),
			v.Title(),
			stateStyle(v.State).Sprint(v.State),
			p.ForVotes,
			p.AgainstVotes,
			p.AbstainVotes,
		})
	}
	fmt.Fprintln(r.out, t.Render())
	return nil
}

// RenderVotes renders the votes of a proposal
func (r *GovernanceRenderer) RenderVotes(votes []*models.Vote) error {
	if len(votes) == 0 {
		fmt.Fprintln(r.out, "No votes found")
		return nil
	}

	t := newTable(table.Row{"Voter", "Side", "Weight"})
	for _, v := range votes {
		t.AppendRow(table.Row{v.Voter.Hex(), v.Side.String(), v.Weight})
	}
	fmt.Fprintln(r.out, t.Render())
	return nil
}

// RenderSync renders the outcome of a Safe execution sync
func (r *GovernanceRenderer) RenderSync(result *usecase.SyncExecutionResult) error {
	if len(result.Transactions) == 0 {
		fmt.Fprintln(r.out, "No queued transactions with a Safe transaction hash")
		return nil
	}

	for _, s := range result.Transactions {
		switch {
		case s.Error != "":
			fmt.Fprintf(r.out, "  ❌ %s - %s\n", s.Proposal.Hex(), badStyle.Sprint(s.Error))
		case s.NewlyExecuted:
			fmt.Fprintf(r.out, "  ✅ %s - executed in %s\n", s.Proposal.Hex(), s.ExecutionTxHash)
		case s.Executed:
			fmt.Fprintf(r.out, "  ✔️  %s - already executed\n", s.Proposal.Hex())
		default:
			fmt.Fprintf(r.out, "  ⏳ %s - %d/%d confirmations\n", s.Proposal.Hex(), s.Confirmations, s.ConfirmationsRequired)
		}
	}

	executed := lo.CountBy(result.Transactions, func(s *usecase.SyncedTransaction) bool { return s.NewlyExecuted })
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Synced %d transaction(s), %d newly executed", len(result.Transactions), executed)))
	return nil
}
