package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pendProposal sets up the canonical pended proposal: 40 upstake against 10
// downstake gives confidence exactly at the 4x threshold.
func pendProposal(t *testing.T, h *testHarness) uint64 {
	t.Helper()
	h.fundStaker("acct6", 100)
	h.fundStaker("acct7", 100)
	id := h.mustCreate(t, "acct0")
	require.NoError(t, h.engine.Stake("acct6", id, 40, true))
	require.NoError(t, h.engine.Stake("acct7", id, 10, false))

	p, err := h.engine.GetProposal(id)
	require.NoError(t, err)
	require.Equal(t, StatePended, p.State)
	return id
}

func TestBoostProposalWithFee(t *testing.T) {
	h := newTestHarness(t)
	id := pendProposal(t, h)

	h.clk.Add(h.engine.cfg.PendedBoostPeriod + 36*time.Second)
	require.NoError(t, h.engine.BoostProposal("acct0", id))

	p, err := h.engine.GetProposal(id)
	require.NoError(t, err)
	assert.Equal(t, StateBoosted, p.State)
	assert.Equal(t, h.engine.cfg.BoostPeriod, p.Lifetime)
	assert.True(t, p.LastPendedDate.IsZero())

	// upstake=40, fee pct=10, 36s late: portion=4e18, raw fee 9, capped at 4.
	assert.Equal(t, uint64(4), h.stakeLed.BalanceOf("acct0"))
	assert.Equal(t, uint64(46), h.stakeLed.BalanceOf(testCustody))
	require.NoError(t, h.engine.VerifyCustody())
}

func TestBoostProposalZeroFeeAtCutoff(t *testing.T) {
	h := newTestHarness(t)
	id := pendProposal(t, h)

	h.clk.Add(h.engine.cfg.PendedBoostPeriod)
	require.NoError(t, h.engine.BoostProposal("acct0", id))

	assert.Zero(t, h.stakeLed.BalanceOf("acct0"))
	assert.Equal(t, uint64(50), h.stakeLed.BalanceOf(testCustody))
}

func TestBoostProposalErrors(t *testing.T) {
	h := newTestHarness(t)
	h.fundStaker("acct6", 100)

	err := h.engine.BoostProposal("acct0", 0)
	assert.ErrorIs(t, err, ErrProposalDoesNotExist)

	id := h.mustCreate(t, "acct0")
	err = h.engine.BoostProposal("acct0", id)
	assert.ErrorIs(t, err, ErrProposalDoesNotHaveEnoughConfidence)

	require.NoError(t, h.engine.Stake("acct6", id, 40, true))

	// Pended, but the minimum pended interval has not elapsed.
	err = h.engine.BoostProposal("acct0", id)
	assert.ErrorIs(t, err, ErrProposalHasntHadConfidenceEnoughTime)
	h.clk.Add(h.engine.cfg.PendedBoostPeriod - time.Second)
	err = h.engine.BoostProposal("acct0", id)
	assert.ErrorIs(t, err, ErrProposalHasntHadConfidenceEnoughTime)

	h.clk.Add(time.Second)
	require.NoError(t, h.engine.BoostProposal("acct0", id))

	err = h.engine.BoostProposal("acct0", id)
	assert.ErrorIs(t, err, ErrProposalIsBoosted)
}

func TestExpireNonBoosted(t *testing.T) {
	h := newTestHarness(t)
	h.fundStaker("acct6", 100)

	id := h.mustCreate(t, "acct0")
	require.NoError(t, h.engine.Stake("acct6", id, 40, true))

	err := h.engine.ExpireNonBoosted("acct1", id)
	assert.ErrorIs(t, err, ErrProposalIsActive)

	// 36s past the queue deadline earns the capped fee of 4.
	h.clk.Add(h.engine.cfg.QueuePeriod + 36*time.Second)
	require.NoError(t, h.engine.ExpireNonBoosted("acct1", id))

	p, err := h.engine.GetProposal(id)
	require.NoError(t, err)
	assert.Equal(t, StateExpired, p.State)
	assert.True(t, p.LastPendedDate.IsZero())
	assert.Equal(t, uint64(4), h.stakeLed.BalanceOf("acct1"))
	require.NoError(t, h.engine.VerifyCustody())
}

func TestExpireNonBoostedFromQueuedAndUnpended(t *testing.T) {
	h := newTestHarness(t)
	h.fundStaker("acct6", 100)
	h.fundStaker("acct7", 100)

	id := h.mustCreate(t, "acct0")
	require.NoError(t, h.engine.Stake("acct6", id, 40, true))
	require.NoError(t, h.engine.Stake("acct7", id, 20, false))

	p, err := h.engine.GetProposal(id)
	require.NoError(t, err)
	require.Equal(t, StateUnpended, p.State)

	h.clk.Add(h.engine.cfg.QueuePeriod)
	require.NoError(t, h.engine.ExpireNonBoosted("acct1", id))

	p, err = h.engine.GetProposal(id)
	require.NoError(t, err)
	assert.Equal(t, StateExpired, p.State)
}

func TestExpireWithoutUpstakeFails(t *testing.T) {
	h := newTestHarness(t)

	id := h.mustCreate(t, "acct0")
	h.clk.Add(h.engine.cfg.QueuePeriod)

	err := h.engine.ExpireNonBoosted("acct1", id)
	assert.ErrorIs(t, err, ErrInvalidCompensationFee)

	p, err := h.engine.GetProposal(id)
	require.NoError(t, err)
	assert.Equal(t, StateQueued, p.State, "failed poke leaves state untouched")
}

func TestExpireBoostedRejected(t *testing.T) {
	h := newTestHarness(t)
	id := pendProposal(t, h)
	h.clk.Add(h.engine.cfg.PendedBoostPeriod)
	require.NoError(t, h.engine.BoostProposal("acct0", id))

	err := h.engine.ExpireNonBoosted("acct1", id)
	assert.ErrorIs(t, err, ErrProposalIsBoosted)
}

func TestResolveBoosted(t *testing.T) {
	h := newTestHarness(t)
	id := pendProposal(t, h)

	err := h.engine.ResolveBoosted("acct1", id)
	assert.ErrorIs(t, err, ErrProposalIsNotBoosted)

	h.clk.Add(h.engine.cfg.PendedBoostPeriod)
	require.NoError(t, h.engine.BoostProposal("acct0", id))

	err = h.engine.ResolveBoosted("acct1", id)
	assert.ErrorIs(t, err, ErrProposalIsActive)

	// The boosted deadline runs from the original start date.
	p, err := h.engine.GetProposal(id)
	require.NoError(t, err)
	h.clk.Set(p.Deadline().Add(36 * time.Second))

	require.NoError(t, h.engine.ResolveBoosted("acct1", id))

	p, err = h.engine.GetProposal(id)
	require.NoError(t, err)
	assert.Equal(t, StateResolved, p.State)
	assert.Equal(t, uint64(4), h.stakeLed.BalanceOf("acct1"))
	require.NoError(t, h.engine.VerifyCustody())
}

func TestTerminalityIsMonotone(t *testing.T) {
	h := newTestHarness(t)
	h.voteLed.Mint("acct0", 1)
	h.fundStaker("acct6", 100)

	id := h.mustCreate(t, "acct0")
	require.NoError(t, h.engine.Stake("acct6", id, 40, true))
	h.clk.Add(h.engine.cfg.QueuePeriod)
	require.NoError(t, h.engine.ExpireNonBoosted("acct1", id))

	assert.ErrorIs(t, h.engine.Vote("acct0", id, true), ErrProposalIsClosed)
	assert.ErrorIs(t, h.engine.Stake("acct6", id, 1, true), ErrProposalIsClosed)
	assert.ErrorIs(t, h.engine.Unstake("acct6", id, 1, true), ErrProposalIsClosed)
	assert.ErrorIs(t, h.engine.BoostProposal("acct1", id), ErrProposalIsClosed)
	assert.ErrorIs(t, h.engine.ExpireNonBoosted("acct1", id), ErrProposalIsClosed)
	assert.ErrorIs(t, h.engine.ResolveBoosted("acct1", id), ErrProposalIsClosed)

	p, err := h.engine.GetProposal(id)
	require.NoError(t, err)
	assert.Equal(t, StateExpired, p.State)
}

func TestCompensationFeeCap(t *testing.T) {
	h := newTestHarness(t)
	h.fundStaker("acct6", 100)

	id := h.mustCreate(t, "acct0")
	require.NoError(t, h.engine.Stake("acct6", id, 40, true))

	// Days past the deadline: the raw fee is enormous but stays capped at
	// upstake/fee_pct = 4.
	h.clk.Add(h.engine.cfg.QueuePeriod + 72*time.Hour)
	require.NoError(t, h.engine.ExpireNonBoosted("acct1", id))
	assert.Equal(t, uint64(4), h.stakeLed.BalanceOf("acct1"))
}
