package render

import (
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/trebuchet-org/lockgov/internal/domain/models"
	"github.com/trebuchet-org/lockgov/internal/usecase"
)

// LockerRenderer renders lockers and escrows
type LockerRenderer struct {
	out io.Writer
}

// NewLockerRenderer creates a new locker renderer
func NewLockerRenderer(out io.Writer) *LockerRenderer {
	return &LockerRenderer{out: out}
}

// RenderLocker renders one locker with its whitelist
func (r *LockerRenderer) RenderLocker(view *usecase.LockerView) error {
	l := view.Locker
	writeFields(r.out, "Locker "+l.Key.Hex(), []field{
		{"Base", FormatAddress(l.Base)},
		{"Token mint", addressStyle.Sprint(FormatAddress(l.TokenMint))},
		{"Governor", addressStyle.Sprint(FormatAddress(l.Governor))},
		{"Locked supply", fmt.Sprint(l.LockedSupply)},
		{"Escrows", fmt.Sprint(view.Escrows)},
		{"Vote multiplier", fmt.Sprintf("%dx", l.Params.MaxStakeVoteMultiplier)},
		{"Min duration", FormatDuration(l.Params.MinStakeDuration)},
		{"Max duration", FormatDuration(l.Params.MaxStakeDuration)},
		{"Activation votes", fmt.Sprint(l.Params.ProposalActivationMinVotes)},
		{"Whitelist", whitelistState(l.Params.WhitelistEnabled)},
	})

	if len(view.Whitelist) == 0 {
		return nil
	}
	fmt.Fprintln(r.out)
	t := newTable(table.Row{"Program", "Owner"})
	for _, e := range view.Whitelist {
		owner := "any"
		if e.Owner != (common.Address{}) {
			owner = e.Owner.Hex()
		}
		t.AppendRow(table.Row{e.ProgramID.Hex(), owner})
	}
	fmt.Fprintln(r.out, t.Render())
	return nil
}

func whitelistState(enabled bool) string {
	if enabled {
		return warnStyle.Sprint("enabled")
	}
	return "disabled"
}

// RenderLockers renders a locker list
func (r *LockerRenderer) RenderLockers(lockers []*models.Locker) error {
	if len(lockers) == 0 {
		fmt.Fprintln(r.out, "No lockers found")
		return nil
	}

	t := newTable(table.Row{"Locker", "Token Mint", "Governor", "Locked Supply"})
	for _, l := range lockers {
		t.AppendRow(table.Row{l.Key.Hex(), l.TokenMint.Hex(), l.Governor.Hex(), l.LockedSupply})
	}
	fmt.Fprintln(r.out, t.Render())
	return nil
}

// RenderEscrow renders one escrow and its current voting power
func (r *LockerRenderer) RenderEscrow(view *usecase.EscrowView) error {
	e := view.Escrow
	status := okStyle.Sprint("locked")
	if view.Ended {
		status = timestampStyle.Sprint("unlocked")
	}
	writeFields(r.out, "Escrow "+e.Key.Hex(), []field{
		{"Locker", FormatAddress(e.Locker)},
		{"Owner", addressStyle.Sprint(FormatAddress(e.Owner))},
		{"Delegate", addressStyle.Sprint(FormatAddress(e.VoteDelegate))},
		{"Holding account", FormatAddress(e.Tokens)},
		{"Amount", fmt.Sprint(e.Amount)},
		{"Voting power", fmt.Sprint(view.VotingPower)},
		{"Status", status},
		{"Started", timestampStyle.Sprint(FormatTime(e.EscrowStartedAt))},
		{"Ends", timestampStyle.Sprint(FormatTime(e.EscrowEndsAt))},
	})
	return nil
}

// RenderEscrows renders an escrow list
func (r *LockerRenderer) RenderEscrows(views []*usecase.EscrowView) error {
	if len(views) == 0 {
		fmt.Fprintln(r.out, "No escrows found")
		return nil
	}

	t := newTable(table.Row{"Escrow", "Owner", "Amount", "Power", "Ends"})
	for _, v := range views {
		t.AppendRow(table.Row{v.Escrow.Key.Hex(), v.Escrow.Owner.Hex(), v.Escrow.Amount, v.VotingPower, FormatTime(v.Escrow.EscrowEndsAt)})
	}
	fmt.Fprintln(r.out, t.Render())
	return nil
}
