package usecase_test

import (
	"math/rand"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/lockgov/internal/domain"
	"github.com/trebuchet-org/lockgov/internal/domain/models"
	"github.com/trebuchet-org/lockgov/internal/usecase"
)

func TestManageGovernor_Create(t *testing.T) {
	env := newTestEnv(t)
	g := env.createGovernor(t, electorate, defaultGovernanceParams())

	assert.Equal(t, domain.GovernorKey(governorBase), g.Key)
	assert.Equal(t, electorate, g.Electorate)
	assert.Zero(t, g.ProposalCount)

	t.Run("duplicate", func(t *testing.T) {
		_, err := env.governors.Create(env.ctx, usecase.CreateGovernorParams{Base: governorBase, Electorate: electorate})
		assert.ErrorIs(t, err, domain.ErrAlreadyExists)
	})

	t.Run("negative timelock delay", func(t *testing.T) {
		params := defaultGovernanceParams()
		params.TimelockDelaySeconds = -1
		_, err := env.governors.Create(env.ctx, usecase.CreateGovernorParams{Base: alice, Params: params})
		assert.ErrorIs(t, err, domain.ErrInvalidTimelockDelay)
		assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	})

	assert.Equal(t, []string{"GovernorCreate"}, env.sink.names())
}

func TestManageGovernor_SmartWalletOnly(t *testing.T) {
	env := newTestEnv(t)
	g := env.createGovernor(t, electorate, defaultGovernanceParams())

	params := defaultGovernanceParams()
	params.QuorumVotes = 99

	_, err := env.governors.SetParams(env.ctx, electorate, g.Key, params)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	res, err := env.governors.SetParams(env.ctx, smartWallet, g.Key, params)
	require.NoError(t, err)
	assert.Equal(t, uint64(99), res.Governor.Params.QuorumVotes)

	_, err = env.governors.SetElectorate(env.ctx, alice, g.Key, bob)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	res, err = env.governors.SetElectorate(env.ctx, smartWallet, g.Key, bob)
	require.NoError(t, err)
	assert.Equal(t, bob, res.Governor.Electorate)
	require.Len(t, res.Events, 1)
	assert.Equal(t, "GovernorSetElectorate", res.Events[0].EventName())
}

func TestManageProposal_CreateAssignsIndices(t *testing.T) {
	env := newTestEnv(t)
	g := env.createGovernor(t, electorate, defaultGovernanceParams())

	first := env.createProposal(t, g.Key)
	second := env.createProposal(t, g.Key)

	assert.Equal(t, uint64(0), first.Index)
	assert.Equal(t, uint64(1), second.Index)
	assert.Equal(t, domain.ProposalKey(g.Key, 1), second.Key)
	assert.Equal(t, uint64(10), second.QuorumVotes)

	view, err := env.governance.Governor(env.ctx, g.Key)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), view.Governor.ProposalCount)
	assert.Equal(t, 2, view.ByState[models.ProposalStateDraft])

	_, err = env.proposals.Create(env.ctx, usecase.CreateProposalParams{Governor: alice, Proposer: proposer})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestManageProposal_Lifecycle(t *testing.T) {
	t.Run("activate then cancel fails", func(t *testing.T) {
		env := newTestEnv(t)
		g := env.createGovernor(t, electorate, defaultGovernanceParams())
		p := env.createProposal(t, g.Key)

		_, err := env.proposals.Activate(env.ctx, electorate, p.Key)
		require.NoError(t, err)

		_, err = env.proposals.Cancel(env.ctx, proposer, p.Key)
		assert.ErrorIs(t, err, domain.ErrProposalNotDraft)
		assert.Equal(t, domain.KindPrecondition, domain.KindOf(err))
	})

	t.Run("cancel draft", func(t *testing.T) {
		env := newTestEnv(t)
		g := env.createGovernor(t, electorate, defaultGovernanceParams())
		p := env.createProposal(t, g.Key)

		_, err := env.proposals.Cancel(env.ctx, alice, p.Key)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)

		res, err := env.proposals.Cancel(env.ctx, proposer, p.Key)
		require.NoError(t, err)
		assert.Equal(t, models.ProposalStateCanceled, res.Proposal.State(env.clock.Now()))

		_, err = env.proposals.Activate(env.ctx, electorate, p.Key)
		assert.ErrorIs(t, err, domain.ErrProposalNotDraft)
	})

	t.Run("activation needs the electorate", func(t *testing.T) {
		env := newTestEnv(t)
		g := env.createGovernor(t, electorate, defaultGovernanceParams())
		p := env.createProposal(t, g.Key)

		_, err := env.proposals.Activate(env.ctx, proposer, p.Key)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("voting delay", func(t *testing.T) {
		env := newTestEnv(t)
		params := defaultGovernanceParams()
		params.VotingDelay = 100
		g := env.createGovernor(t, electorate, params)
		p := env.createProposal(t, g.Key)

		env.advance(99)
		_, err := env.proposals.Activate(env.ctx, electorate, p.Key)
		assert.ErrorIs(t, err, domain.ErrVotingDelayNotMet)

		env.advance(1)
		res, err := env.proposals.Activate(env.ctx, electorate, p.Key)
		require.NoError(t, err)
		assert.Equal(t, env.clock.Now()+3*day, res.Proposal.VotingEndsAt)
	})
}

func TestManageVote_SetVote(t *testing.T) {
	env := newTestEnv(t)
	g := env.createGovernor(t, electorate, defaultGovernanceParams())
	p := env.createProposal(t, g.Key)

	res, err := env.votes.NewVote(env.ctx, p.Key, alice)
	require.NoError(t, err)
	assert.Equal(t, models.VoteSidePending, res.Vote.Side)
	assert.Len(t, res.Events, 1)

	again, err := env.votes.NewVote(env.ctx, p.Key, alice)
	require.NoError(t, err)
	assert.Equal(t, res.Vote.Key, again.Vote.Key)
	assert.Empty(t, again.Events)

	set := usecase.SetVoteParams{Caller: electorate, Proposal: p.Key, Voter: alice, Side: models.VoteSideFor, Weight: 5}

	_, err = env.votes.SetVote(env.ctx, set)
	assert.ErrorIs(t, err, domain.ErrProposalNotActive)

	_, err = env.proposals.Activate(env.ctx, electorate, p.Key)
	require.NoError(t, err)

	bad := set
	bad.Caller = alice
	_, err = env.votes.SetVote(env.ctx, bad)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	bad = set
	bad.Side = 7
	_, err = env.votes.SetVote(env.ctx, bad)
	assert.ErrorIs(t, err, domain.ErrInvalidVoteSide)

	bad = set
	bad.Voter = bob
	_, err = env.votes.SetVote(env.ctx, bad)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	out, err := env.votes.SetVote(env.ctx, set)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), out.Proposal.ForVotes)

	set.Side = models.VoteSideAgainst
	set.Weight = 3
	out, err = env.votes.SetVote(env.ctx, set)
	require.NoError(t, err)
	assert.Zero(t, out.Proposal.ForVotes)
	assert.Equal(t, uint64(3), out.Proposal.AgainstVotes)
}

func TestManageVote_TallyMatchesVotes(t *testing.T) {
	env := newTestEnv(t)
	g := env.createGovernor(t, electorate, defaultGovernanceParams())
	p := env.createProposal(t, g.Key)
	_, err := env.proposals.Activate(env.ctx, electorate, p.Key)
	require.NoError(t, err)

	voters := []common.Address{alice, bob, carol, proposer, deployer}
	for _, v := range voters {
		_, err := env.votes.NewVote(env.ctx, p.Key, v)
		require.NoError(t, err)
	}

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		_, err := env.votes.SetVote(env.ctx, usecase.SetVoteParams{
			Caller:   electorate,
			Proposal: p.Key,
			Voter:    voters[rng.Intn(len(voters))],
			Side:     models.VoteSide(rng.Intn(4)),
			Weight:   uint64(rng.Intn(1000)),
		})
		require.NoError(t, err)

		view, err := env.governance.Proposal(env.ctx, p.Key)
		require.NoError(t, err)

		sums := map[models.VoteSide]uint64{}
		for _, v := range view.Votes {
			if v.Side != models.VoteSidePending {
				sums[v.Side] += v.Weight
			}
		}
		require.Equal(t, sums[models.VoteSideFor], view.Proposal.ForVotes, "step %d", i)
		require.Equal(t, sums[models.VoteSideAgainst], view.Proposal.AgainstVotes, "step %d", i)
		require.Equal(t, sums[models.VoteSideAbstain], view.Proposal.AbstainVotes, "step %d", i)
	}
}

// passedProposal returns a proposal that succeeded with 20 For votes.
func passedProposal(t *testing.T, env *testEnv) *models.Proposal {
	t.Helper()
	g := env.createGovernor(t, electorate, defaultGovernanceParams())
	p := env.createProposal(t, g.Key)
	_, err := env.proposals.Activate(env.ctx, electorate, p.Key)
	require.NoError(t, err)
	_, err = env.votes.NewVote(env.ctx, p.Key, alice)
	require.NoError(t, err)
	_, err = env.votes.SetVote(env.ctx, usecase.SetVoteParams{
		Caller: electorate, Proposal: p.Key, Voter: alice, Side: models.VoteSideFor, Weight: 20,
	})
	require.NoError(t, err)
	env.advance(3 * day)
	return p
}

func TestManageProposal_Queue(t *testing.T) {
	const safeTxHash = "0x9b1c2d3e4f5a6b7c8d9e0f1a2b3c4d5e6f708192a3b4c5d6e7f8091a2b3c4d5e"

	t.Run("queues succeeded proposal", func(t *testing.T) {
		env := newTestEnv(t)
		p := passedProposal(t, env)

		res, err := env.proposals.Queue(env.ctx, usecase.QueueProposalParams{Proposal: p.Key, SafeTxHash: safeTxHash})
		require.NoError(t, err)
		assert.Equal(t, models.ProposalStateQueued, res.Proposal.State(env.clock.Now()))
		assert.Equal(t, smartWallet, res.Transaction.SmartWallet)
		assert.Equal(t, env.clock.Now()+day, res.Transaction.ETA)
		assert.Equal(t, models.TransactionStatusQueued, res.Transaction.Status)
		assert.Equal(t, safeTxHash, res.Transaction.SafeTxHash)

		_, err = env.proposals.Queue(env.ctx, usecase.QueueProposalParams{Proposal: p.Key})
		assert.ErrorIs(t, err, domain.ErrProposalNotSucceeded)
	})

	t.Run("rejects malformed hash", func(t *testing.T) {
		env := newTestEnv(t)
		p := passedProposal(t, env)
		_, err := env.proposals.Queue(env.ctx, usecase.QueueProposalParams{Proposal: p.Key, SafeTxHash: "0x1234"})
		assert.ErrorIs(t, err, domain.ErrInvalidSafeTxHash)
	})

	t.Run("defeated proposal", func(t *testing.T) {
		env := newTestEnv(t)
		g := env.createGovernor(t, electorate, defaultGovernanceParams())
		p := env.createProposal(t, g.Key)
		_, err := env.proposals.Activate(env.ctx, electorate, p.Key)
		require.NoError(t, err)
		env.advance(3 * day)

		_, err = env.proposals.Queue(env.ctx, usecase.QueueProposalParams{Proposal: p.Key})
		assert.ErrorIs(t, err, domain.ErrProposalNotSucceeded)
	})
}

func TestManageProposal_CreateMeta(t *testing.T) {
	env := newTestEnv(t)
	g := env.createGovernor(t, electorate, defaultGovernanceParams())
	p := env.createProposal(t, g.Key)

	params := usecase.CreateMetaParams{Caller: alice, Proposal: p.Key, Title: "Fund the grants pool", DescriptionLink: "https://forum.example/t/42"}
	_, err := env.proposals.CreateMeta(env.ctx, params)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	params.Caller = proposer
	res, err := env.proposals.CreateMeta(env.ctx, params)
	require.NoError(t, err)
	assert.Equal(t, "Fund the grants pool", res.Meta.Title)

	_, err = env.proposals.CreateMeta(env.ctx, params)
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	views, err := env.governance.ListProposals(env.ctx, usecase.ListProposalsParams{Governor: g.Key, State: models.ProposalStateDraft})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "Fund the grants pool", views[0].Title())
}
