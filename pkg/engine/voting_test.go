package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVoteAbsoluteMajorityResolution(t *testing.T) {
	h := newTestHarness(t)
	h.voteLed.Mint("acct0", 1)
	h.voteLed.Mint("acct1", 1)
	h.voteLed.Mint("acct4", 10)
	h.voteLed.Mint("acct7", 100)
	h.voteLed.Mint("acct8", 100)
	// total supply 333; 51% support needs yea >= 169.83

	events := h.engine.Subscribe(32)
	id := h.mustCreate(t, "acct0")

	require.NoError(t, h.engine.Vote("acct0", id, false))
	require.NoError(t, h.engine.Vote("acct1", id, false))
	require.NoError(t, h.engine.Vote("acct4", id, false))
	require.NoError(t, h.engine.Vote("acct7", id, true))

	p, err := h.engine.GetProposal(id)
	require.NoError(t, err)
	assert.Equal(t, StateQueued, p.State, "yea=100 is short of the absolute majority")

	require.NoError(t, h.engine.Vote("acct8", id, true))

	p, err = h.engine.GetProposal(id)
	require.NoError(t, err)
	assert.Equal(t, uint64(200), p.Yea)
	assert.Equal(t, uint64(12), p.Nay)
	assert.Equal(t, StateResolved, p.State)

	// The state change lands on acct8's vote.
	var changes []Event
	for len(events) > 0 {
		ev := <-events
		if ev.Type == EventProposalStateChanged {
			changes = append(changes, ev)
		}
	}
	require.Len(t, changes, 1)
	assert.Equal(t, StateResolved, changes[0].State)
}

func TestVoteChange(t *testing.T) {
	h := newTestHarness(t)
	h.voteLed.Mint("acct0", 1)
	h.voteLed.Mint("acct3", 10)
	h.voteLed.Mint("acct6", 100)

	id := h.mustCreate(t, "acct0")

	require.NoError(t, h.engine.Vote("acct0", id, true))
	require.NoError(t, h.engine.Vote("acct3", id, true))
	require.NoError(t, h.engine.Vote("acct6", id, false))

	p, err := h.engine.GetProposal(id)
	require.NoError(t, err)
	assert.Equal(t, uint64(11), p.Yea)
	assert.Equal(t, uint64(100), p.Nay)

	// acct0 flips to nay; the others recast unchanged.
	require.NoError(t, h.engine.Vote("acct0", id, false))
	require.NoError(t, h.engine.Vote("acct3", id, true))
	require.NoError(t, h.engine.Vote("acct6", id, false))

	p, err = h.engine.GetProposal(id)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), p.Yea)
	assert.Equal(t, uint64(101), p.Nay)

	choice, err := h.engine.GetVote(id, "acct0")
	require.NoError(t, err)
	assert.Equal(t, VoteNay, choice)
}

func TestVoteRecastSubtractsStoredWeight(t *testing.T) {
	h := newTestHarness(t)
	h.voteLed.Mint("acct0", 10)
	h.voteLed.Mint("acct1", 1000)

	id := h.mustCreate(t, "acct0")
	require.NoError(t, h.engine.Vote("acct0", id, true))

	// The voter's balance changes between casts; the recast retracts the
	// weight recorded at the first vote, not the current balance.
	h.voteLed.Mint("acct0", 30)
	require.NoError(t, h.engine.Vote("acct0", id, false))

	p, err := h.engine.GetProposal(id)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), p.Yea)
	assert.Equal(t, uint64(40), p.Nay)
}

func TestVoteSameChoiceTwiceIsNetZero(t *testing.T) {
	h := newTestHarness(t)
	h.voteLed.Mint("acct0", 10)
	h.voteLed.Mint("acct1", 1000)

	id := h.mustCreate(t, "acct0")
	require.NoError(t, h.engine.Vote("acct0", id, true))
	require.NoError(t, h.engine.Vote("acct0", id, true))

	p, err := h.engine.GetProposal(id)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), p.Yea)
	assert.Equal(t, uint64(0), p.Nay)
}

func TestVoteErrors(t *testing.T) {
	h := newTestHarness(t)
	h.voteLed.Mint("acct0", 200)
	h.voteLed.Mint("acct1", 100)

	err := h.engine.Vote("acct0", 0, true)
	assert.ErrorIs(t, err, ErrProposalDoesNotExist)

	id := h.mustCreate(t, "acct0")

	err = h.engine.Vote("penniless", id, true)
	assert.ErrorIs(t, err, ErrUserHasNoVotingPower)

	// acct0 holds 200 of 300: an instant absolute majority.
	require.NoError(t, h.engine.Vote("acct0", id, true))
	p, err := h.engine.GetProposal(id)
	require.NoError(t, err)
	require.Equal(t, StateResolved, p.State)

	err = h.engine.Vote("acct1", id, false)
	assert.ErrorIs(t, err, ErrProposalIsClosed)
}

func TestVoteOnBoostedProposalResolves(t *testing.T) {
	h := newTestHarness(t)
	h.voteLed.Mint("acct0", 200)
	h.voteLed.Mint("acct1", 100)
	h.fundStaker("acct6", 100)

	id := h.mustCreate(t, "acct0")
	require.NoError(t, h.engine.Stake("acct6", id, 40, true))
	h.clk.Add(h.engine.cfg.PendedBoostPeriod)
	require.NoError(t, h.engine.BoostProposal("acct1", id))

	// A yea majority resolves on the boosted track too.
	require.NoError(t, h.engine.Vote("acct0", id, true))
	p, err := h.engine.GetProposal(id)
	require.NoError(t, err)
	assert.Equal(t, StateResolved, p.State)
}
