package render

import (
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/trebuchet-org/lockgov/internal/domain/models"
	"github.com/trebuchet-org/lockgov/internal/usecase"
)

// RedeemerRenderer renders redeemers, blacklist entries and withdrawals
type RedeemerRenderer struct {
	out io.Writer
}

// NewRedeemerRenderer creates a new redeemer renderer
func NewRedeemerRenderer(out io.Writer) *RedeemerRenderer {
	return &RedeemerRenderer{out: out}
}

func redeemerStatus(s models.RedeemerStatus) string {
	if s == models.RedeemerStatusActive {
		return okStyle.Sprint(s)
	}
	return warnStyle.Sprint(s)
}

// RenderRedeemer renders one redeemer
func (r *RedeemerRenderer) RenderRedeemer(rd *models.LockerRedeemer) error {
	fields := []field{
		{"Locker", FormatAddress(rd.Locker)},
		{"Status", redeemerStatus(rd.Status)},
		{"Admin", addressStyle.Sprint(FormatAddress(rd.Admin))},
	}
	if rd.PendingAdmin != (common.Address{}) {
		fields = append(fields, field{"Pending admin", addressStyle.Sprint(rd.PendingAdmin.Hex())})
	}
	fields = append(fields,
		field{"Receipt mint", FormatAddress(rd.ReceiptMint)},
		field{"Receipt account", FormatAddress(rd.ReceiptAccount)},
		field{"Funds", fmt.Sprint(rd.Amount)},
		field{"Rate", fmt.Sprintf("1 receipt per %d power", rd.RedemptionRate)},
		field{"Treasury", FormatAddress(rd.Treasury)},
		field{"Cutoff", timestampStyle.Sprint(FormatTime(rd.CutoffDate))},
	)
	writeFields(r.out, "Redeemer "+rd.Key.Hex(), fields)
	return nil
}

// RenderRedeemers renders a redeemer list
func (r *RedeemerRenderer) RenderRedeemers(redeemers []*models.LockerRedeemer) error {
	if len(redeemers) == 0 {
		fmt.Fprintln(r.out, "No redeemers found")
		return nil
	}

	t := newTable(table.Row{"Redeemer", "Locker", "Status", "Funds", "Rate", "Cutoff"})
	for _, rd := range redeemers {
		t.AppendRow(table.Row{rd.Key.Hex(), rd.Locker.Hex(), redeemerStatus(rd.Status), rd.Amount, rd.RedemptionRate, FormatTime(rd.CutoffDate)})
	}
	fmt.Fprintln(r.out, t.Render())
	return nil
}

// RenderBlacklist renders a blacklist entry, nil meaning not blacklisted
func (r *RedeemerRenderer) RenderBlacklist(escrow string, entry *models.Blacklist) error {
	if entry == nil {
		fmt.Fprintf(r.out, "Escrow %s is not blacklisted\n", escrow)
		return nil
	}
	writeFields(r.out, "Blacklisted escrow "+entry.Escrow.Hex(), []field{
		{"Locker", FormatAddress(entry.Locker)},
		{"Owner", FormatAddress(entry.Owner)},
		{"Since", timestampStyle.Sprint(FormatTime(entry.Timestamp))},
	})
	return nil
}

// RenderWithdraw renders an instant withdrawal
func (r *RedeemerRenderer) RenderWithdraw(result *usecase.InstantWithdrawResult) error {
	fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Withdrew %d tokens from escrow %s", result.Amount, result.Escrow.Key.Hex())))
	writeFields(r.out, "Redemption", []field{
		{"Voting power", fmt.Sprint(result.VotingPower)},
		{"Receipt paid", fmt.Sprint(result.ReceiptAmount)},
		{"Principal to", FormatAddress(result.Redeemer.Treasury)},
		{"Funds left", fmt.Sprint(result.Redeemer.Amount)},
	})
	fmt.Fprintln(r.out, FormatWarning("escrow is now blacklisted from further redemptions"))
	return nil
}
