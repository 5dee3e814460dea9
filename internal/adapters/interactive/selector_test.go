package interactive

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/lockgov/internal/domain/config"
	"github.com/trebuchet-org/lockgov/internal/domain/models"
	"github.com/trebuchet-org/lockgov/internal/usecase"
)

func TestFuzzySearch(t *testing.T) {
	items := []string{"#0 Raise quorum [active]", "#1 Fund grants [draft]"}
	search := createFuzzySearchFunc(items)

	assert.True(t, search("", 0))
	assert.True(t, search("quorum", 0))
	assert.False(t, search("quorum", 1))
	assert.True(t, search("fgrnt", 1))
}

func TestSelectorAdapter_NonInteractive(t *testing.T) {
	s := NewSelectorAdapter(&config.RuntimeConfig{NonInteractive: true})
	ctx := context.Background()

	ok, err := s.Confirm(ctx, "exit?")
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrNonInteractive)

	_, err = s.SelectProposal(ctx, []*usecase.ProposalView{{Proposal: &models.Proposal{}}}, "pick")
	assert.ErrorIs(t, err, ErrNonInteractive)
}

func TestSelectorAdapter_SingleProposal(t *testing.T) {
	s := NewSelectorAdapter(&config.RuntimeConfig{})
	only := &usecase.ProposalView{Proposal: &models.Proposal{Index: 3}, State: models.ProposalStateActive}

	got, err := s.SelectProposal(context.Background(), []*usecase.ProposalView{only}, "pick")
	require.NoError(t, err)
	assert.Same(t, only, got)
}
