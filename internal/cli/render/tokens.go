package render

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/trebuchet-org/lockgov/internal/domain/models"
)

// RenderAccounts renders token accounts
func RenderAccounts(out io.Writer, accounts []*models.TokenAccount) error {
	if len(accounts) == 0 {
		fmt.Fprintln(out, "No token accounts found")
		return nil
	}

	t := newTable(table.Row{"Account", "Mint", "Owner", "Amount"})
	for _, a := range accounts {
		t.AppendRow(table.Row{a.Key.Hex(), a.Mint.Hex(), a.Owner.Hex(), a.Amount})
	}
	fmt.Fprintln(out, t.Render())
	return nil
}
