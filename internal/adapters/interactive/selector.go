package interactive

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/manifoldco/promptui"
	"github.com/sahilm/fuzzy"
	"github.com/trebuchet-org/lockgov/internal/domain/config"
	"github.com/trebuchet-org/lockgov/internal/usecase"
)

// ErrNonInteractive is returned when a prompt is needed but prompts are disabled.
var ErrNonInteractive = errors.New("interactive prompt not available in non-interactive mode")

// SelectorAdapter handles interactive selection and confirmation
type SelectorAdapter struct {
	config *config.RuntimeConfig
}

// NewSelectorAdapter creates a new selector adapter
func NewSelectorAdapter(cfg *config.RuntimeConfig) *SelectorAdapter {
	return &SelectorAdapter{config: cfg}
}

// Confirm asks a yes/no question. Non-interactive runs are treated as a
// refusal so irreversible actions need an explicit --yes.
func (s *SelectorAdapter) Confirm(ctx context.Context, prompt string) (bool, error) {
	if s.config.NonInteractive {
		return false, ErrNonInteractive
	}

	p := promptui.Prompt{
		Label:     prompt,
		IsConfirm: true,
	}
	if _, err := p.Run(); err != nil {
		if errors.Is(err, promptui.ErrAbort) {
			return false, nil
		}
		return false, fmt.Errorf("confirmation cancelled: %w", err)
	}
	return true, nil
}

// SelectProposal picks one proposal, fuzzy-searching over index, title and state.
func (s *SelectorAdapter) SelectProposal(ctx context.Context, proposals []*usecase.ProposalView, prompt string) (*usecase.ProposalView, error) {
	if s.config.NonInteractive {
		return nil, ErrNonInteractive
	}

	if len(proposals) == 0 {
		return nil, fmt.Errorf("no proposals to select from")
	}

	// If only one match, return it directly
	if len(proposals) == 1 {
		return proposals[0], nil
	}

	options := formatProposalOptions(proposals)

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "▸ {{ . | cyan }}",
		Inactive: "  {{ . | faint }}",
		Selected: "✓ {{ . | green }}",
		Help:     color.New(color.FgYellow).Sprint("Use arrow keys to navigate, Enter to select"),
	}

	promptSelect := promptui.Select{
		Label:             prompt,
		Items:             options,
		Templates:         templates,
		Size:              10,
		StartInSearchMode: true,
		Searcher:          createFuzzySearchFunc(options),
	}

	index, _, err := promptSelect.Run()
	if err != nil {
		return nil, fmt.Errorf("selection cancelled: %w", err)
	}

	return proposals[index], nil
}

func formatProposalOptions(proposals []*usecase.ProposalView) []string {
	options := make([]string, len(proposals))
	for i, v := range proposals {
		title := v.Title()
		if title == "" {
			title = v.Proposal.Key.Hex()
		}
		options[i] = fmt.Sprintf("#%d %s [%s]", v.Proposal.Index, title, v.State)
	}
	return options
}

// createFuzzySearchFunc creates a fuzzy search function for promptui
func createFuzzySearchFunc(items []string) func(input string, index int) bool {
	return func(input string, index int) bool {
		// Empty search shows all items
		if input == "" {
			return true
		}

		input = strings.ToLower(input)
		item := strings.ToLower(items[index])

		if strings.Contains(item, input) {
			return true
		}

		return len(fuzzy.Find(input, []string{item})) > 0
	}
}

var (
	_ usecase.Confirmer        = (*SelectorAdapter)(nil)
	_ usecase.ProposalSelector = (*SelectorAdapter)(nil)
)
