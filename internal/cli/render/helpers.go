package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	labelStyle     = color.New(color.Faint)
	headerStyle    = color.New(color.Bold, color.FgHiWhite)
	addressStyle   = color.New(color.FgWhite)
	timestampStyle = color.New(color.Faint)
	okStyle        = color.New(color.FgGreen)
	warnStyle      = color.New(color.FgYellow)
	badStyle       = color.New(color.FgRed)

	titleCaser = cases.Title(language.English)
)

// FormatWarning formats a warning message with the warning icon
func FormatWarning(message string) string {
	return color.New(color.FgYellow).Sprintf("⚠️  %s", message)
}

// FormatError formats an error message with the error icon
func FormatError(message string) string {
	// Extract just the error message part (after the last colon if it's an error chain)
	parts := strings.Split(message, ": ")
	msg := parts[len(parts)-1]

	// Capitalize first letter
	if len(msg) > 0 {
		msg = strings.ToUpper(msg[:1]) + msg[1:]
	}

	return color.New(color.FgRed).Sprintf("❌ %s", msg)
}

// FormatSuccess formats a success message with the success icon
func FormatSuccess(message string) string {
	return color.New(color.FgGreen).Sprintf("✅ %s", message)
}

// Title upper-cases the first letter of every word.
func Title(s string) string {
	return titleCaser.String(s)
}

// FormatAddress renders the zero address as a dash.
func FormatAddress(addr common.Address) string {
	if addr == (common.Address{}) {
		return "-"
	}
	return addr.Hex()
}

// FormatTime renders unix seconds in UTC, 0 as a dash.
func FormatTime(ts int64) string {
	if ts == 0 {
		return "-"
	}
	return time.Unix(ts, 0).UTC().Format(time.RFC3339)
}

// FormatDuration renders seconds the way time.Duration does.
func FormatDuration(seconds uint64) string {
	return (time.Duration(seconds) * time.Second).String()
}

// field is one label/value line of a detail view.
type field struct {
	label string
	value string
}

// writeFields prints a header followed by aligned label/value lines.
func writeFields(out io.Writer, header string, fields []field) {
	fmt.Fprintln(out, headerStyle.Sprint(header))

	width := 0
	for _, f := range fields {
		width = max(width, len(f.label)+1)
	}
	for _, f := range fields {
		fmt.Fprintf(out, "  %s  %s\n", labelStyle.Sprintf("%-*s", width, f.label+":"), f.value)
	}
}

// newTable returns a borderless table in the style of the list views.
func newTable(header table.Row) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.Style().Options.DrawBorder = false
	t.Style().Options.SeparateColumns = false
	t.Style().Options.SeparateRows = false
	t.Style().Box = table.BoxStyle{
		PaddingRight:     "   ",
		MiddleHorizontal: "─",
	}
	t.Style().Format.Header = text.FormatUpper
	t.AppendHeader(header)
	return t
}
