package engine

import (
	"time"

	"go.uber.org/zap"

	"hc_engine/pkg/fixedpoint"
)

// BoostProposal promotes a proposal that has sustained sufficient confidence
// onto the boosted track. The caller earns a compensation fee out of engine
// custody, growing with how late the poke arrives.
func (e *Engine) BoostProposal(caller string, proposalID uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, err := e.store.get(proposalID)
	if err != nil {
		return err
	}
	if p.State.Terminal() {
		return ErrProposalIsClosed
	}
	if p.State == StateBoosted {
		return ErrProposalIsBoosted
	}
	if p.State != StatePended {
		return ErrProposalDoesNotHaveEnoughConfidence
	}

	cutoff := p.LastPendedDate.Add(e.cfg.PendedBoostPeriod)
	now := e.clk.Now()
	if now.Before(cutoff) {
		return ErrProposalHasntHadConfidenceEnoughTime
	}

	fee, err := e.compensationFee(p, cutoff, now)
	if err != nil {
		return err
	}
	if e.stakeTok.BalanceOf(e.cfg.CustodyAccount) < fee {
		return ErrVotingDoesNotHaveEnoughFunds
	}

	p.Lifetime = e.cfg.BoostPeriod
	p.LastPendedDate = time.Time{}
	e.transition(p, StateBoosted)
	e.payFee(caller, fee)
	e.recordProposalUpdate(p)

	e.logger.Info("proposal boosted",
		zap.Uint64("proposalID", p.ID),
		zap.String("caller", caller),
		zap.Uint64("fee", fee))

	return nil
}

// ExpireNonBoosted closes a queue-track proposal whose lifetime has elapsed
// without reaching a majority, paying the caller a compensation fee.
func (e *Engine) ExpireNonBoosted(caller string, proposalID uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, err := e.store.get(proposalID)
	if err != nil {
		return err
	}
	if p.State.Terminal() {
		return ErrProposalIsClosed
	}
	if p.State == StateBoosted {
		return ErrProposalIsBoosted
	}

	deadline := p.Deadline()
	now := e.clk.Now()
	if now.Before(deadline) {
		return ErrProposalIsActive
	}

	fee, err := e.compensationFee(p, deadline, now)
	if err != nil {
		return err
	}
	if e.stakeTok.BalanceOf(e.cfg.CustodyAccount) < fee {
		return ErrVotingDoesNotHaveEnoughFunds
	}

	p.LastPendedDate = time.Time{}
	e.transition(p, StateExpired)
	e.payFee(caller, fee)
	e.recordProposalUpdate(p)

	e.logger.Info("proposal expired",
		zap.Uint64("proposalID", p.ID),
		zap.String("caller", caller),
		zap.Uint64("fee", fee))

	return nil
}

// ResolveBoosted closes a boosted proposal whose boost period has elapsed,
// paying the caller a compensation fee. The recorded tallies stand as the
// outcome.
func (e *Engine) ResolveBoosted(caller string, proposalID uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, err := e.store.get(proposalID)
	if err != nil {
		return err
	}
	if p.State.Terminal() {
		return ErrProposalIsClosed
	}
	if p.State != StateBoosted {
		return ErrProposalIsNotBoosted
	}

	deadline := p.Deadline()
	now := e.clk.Now()
	if now.Before(deadline) {
		return ErrProposalIsActive
	}

	fee, err := e.compensationFee(p, deadline, now)
	if err != nil {
		return err
	}
	if e.stakeTok.BalanceOf(e.cfg.CustodyAccount) < fee {
		return ErrVotingDoesNotHaveEnoughFunds
	}

	e.transition(p, StateResolved)
	e.payFee(caller, fee)
	e.recordProposalUpdate(p)

	e.logger.Info("boosted proposal resolved",
		zap.Uint64("proposalID", p.ID),
		zap.String("caller", caller),
		zap.Uint64("fee", fee))

	return nil
}

// compensationFee computes the caller's reward for a poke past cutoff:
// whole seconds elapsed divided by the upstake portion, capped at
// upstake / compensation_fee_pct. An unstaked proposal cannot fund a fee.
func (e *Engine) compensationFee(p *Proposal, cutoff, now time.Time) (uint64, error) {
	if p.Upstake == 0 {
		return 0, ErrInvalidCompensationFee
	}

	elapsed := uint64(now.Sub(cutoff) / time.Second)

	portion, err := fixedpoint.MulDiv(fixedpoint.U(p.Upstake), fixedpoint.PrecisionInt(), fixedpoint.U(e.cfg.CompensationFeePct))
	if err != nil {
		return 0, err
	}
	if portion.IsZero() {
		return 0, ErrInvalidCompensationFee
	}
	feeRaw, err := fixedpoint.MulDiv(fixedpoint.U(elapsed), fixedpoint.PrecisionInt(), portion)
	if err != nil {
		return 0, err
	}
	feeCap, err := fixedpoint.Div(portion, fixedpoint.PrecisionInt())
	if err != nil {
		return 0, err
	}

	return fixedpoint.ToU64(fixedpoint.Min(feeRaw, feeCap))
}

// payFee transfers the fee from custody to the caller. Custody balance was
// checked before any state writes; a failure here is logged and counts as
// no fee paid.
func (e *Engine) payFee(caller string, fee uint64) {
	if fee > 0 {
		if err := e.stakeTok.Transfer(caller, fee); err != nil {
			e.logger.Error("compensation fee payout failed",
				zap.String("caller", caller),
				zap.Uint64("fee", fee),
				zap.Error(err))
			fee = 0
		}
	}
	e.metrics.RecordPoke(fee)
}
