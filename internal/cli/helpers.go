package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/lockgov/internal/app"
	"github.com/trebuchet-org/lockgov/internal/cli/render"
	"github.com/trebuchet-org/lockgov/internal/domain"
	"github.com/trebuchet-org/lockgov/internal/domain/events"
)

// parseAddress parses a positional argument or flag value naming an identity.
func parseAddress(name, s string) (common.Address, error) {
	addr, err := domain.ParseAddress(s)
	if err != nil {
		return common.Address{}, fmt.Errorf("invalid %s: %w", name, err)
	}
	return addr, nil
}

// parseOptionalAddress parses s when set, returning the zero address otherwise.
func parseOptionalAddress(name, s string) (common.Address, error) {
	if s == "" {
		return common.Address{}, nil
	}
	return parseAddress(name, s)
}

// requireCaller returns the --as identity.
func requireCaller(a *app.App) (common.Address, error) {
	if a.Config.Caller == (common.Address{}) {
		return common.Address{}, fmt.Errorf("this command needs an identity: pass --as <address> or set LOCKGOV_AS")
	}
	return a.Config.Caller, nil
}

// seconds converts a flag duration into whole seconds.
func seconds(name string, d time.Duration) (uint64, error) {
	if d < 0 {
		return 0, fmt.Errorf("--%s must not be negative", name)
	}
	return uint64(d / time.Second), nil
}

// confirm asks before an irreversible action unless --yes was given.
func confirm(cmd *cobra.Command, a *app.App, yes bool, prompt string) error {
	if yes {
		return nil
	}
	ok, err := a.Confirmer.Confirm(cmd.Context(), prompt)
	if err != nil {
		return fmt.Errorf("%w (pass --yes to skip the prompt)", err)
	}
	if !ok {
		return fmt.Errorf("aborted")
	}
	return nil
}

// show renders a read-only result as a table or as structured data.
func show(cmd *cobra.Command, a *app.App, data any, table func(out io.Writer) error) error {
	p := render.NewPrinter(cmd.OutOrStdout(), a.Config.Output)
	if p.Structured() {
		return p.Encode(data)
	}
	return table(p.Out())
}

// mutationOutput is the structured form of a mutating command's result.
type mutationOutput struct {
	Result any                  `json:"result" yaml:"result"`
	Events []render.EventRecord `json:"events" yaml:"events"`
}

// report renders the result of a mutating command: its committed events
// followed by the optional detail view.
func report(cmd *cobra.Command, a *app.App, result any, evts []events.Event, detail func(out io.Writer) error) error {
	p := render.NewPrinter(cmd.OutOrStdout(), a.Config.Output)
	if p.Structured() {
		return p.Encode(mutationOutput{Result: result, Events: render.EventRecords(evts)})
	}
	render.RenderEvents(p.Out(), evts)
	if detail == nil {
		return nil
	}
	if len(evts) > 0 {
		fmt.Fprintln(p.Out())
	}
	return detail(p.Out())
}
