package engine

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"hc_engine/pkg/data"
	"hc_engine/pkg/fixedpoint"
	"hc_engine/pkg/token"
)

// Stake moves stake tokens from the staker into engine custody on the chosen
// side of a proposal. The staker must have approved the custody account for
// at least the amount on the stake ledger.
func (e *Engine) Stake(staker string, proposalID, amount uint64, supports bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, err := e.store.get(proposalID)
	if err != nil {
		return err
	}
	if p.State.Terminal() {
		return ErrProposalIsClosed
	}
	if amount == 0 {
		return ErrInvalidAmount
	}
	if e.stakeTok.BalanceOf(staker) < amount {
		return ErrSenderDoesNotHaveEnoughFunds
	}

	side := p.Downstakes
	aggregate := &p.Downstake
	evType := EventDownstakeProposal
	if supports {
		side = p.Upstakes
		aggregate = &p.Upstake
		evType = EventUpstakeProposal
	}

	// Checked sums first so an overflow aborts before any tokens move.
	newAggregate, err := fixedpoint.AddU64(*aggregate, amount)
	if err != nil {
		return err
	}
	newHolding, err := fixedpoint.AddU64(side[staker], amount)
	if err != nil {
		return err
	}

	if err := e.stakeTok.TransferFrom(staker, e.cfg.CustodyAccount, amount); err != nil {
		switch {
		case errors.Is(err, token.ErrInsufficientAllowance):
			return ErrInsufficientAllowance
		case errors.Is(err, token.ErrInsufficientFunds):
			return ErrSenderDoesNotHaveEnoughFunds
		default:
			return fmt.Errorf("stake transfer: %w", err)
		}
	}

	*aggregate = newAggregate
	side[staker] = newHolding

	now := e.clk.Now()
	e.metrics.IncrementStakeOps()
	e.logger.Debug("stake placed",
		zap.Uint64("proposalID", p.ID),
		zap.String("staker", staker),
		zap.Bool("supports", supports),
		zap.Uint64("amount", amount))
	e.publish(Event{Type: evType, ProposalID: p.ID, Account: staker, Supports: supports, Amount: amount, Timestamp: now})
	e.recordStakeMovement(p.ID, staker, data.MovementStake, supports, amount, now)

	e.reassessConfidence(p)
	e.recordProposalUpdate(p)

	return nil
}

// Unstake returns previously staked tokens from engine custody to the
// staker. Partial withdrawals are allowed up to the staker's holding on
// that side.
func (e *Engine) Unstake(staker string, proposalID, amount uint64, supports bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, err := e.store.get(proposalID)
	if err != nil {
		return err
	}
	if p.State.Terminal() {
		return ErrProposalIsClosed
	}
	if amount == 0 {
		return ErrInvalidAmount
	}

	side := p.Downstakes
	aggregate := &p.Downstake
	evType := EventWithdrawDownstake
	if supports {
		side = p.Upstakes
		aggregate = &p.Upstake
		evType = EventWithdrawUpstake
	}

	held := side[staker]
	if held < amount {
		return ErrSenderDoesNotHaveRequiredStake
	}
	newAggregate, err := fixedpoint.SubU64(*aggregate, amount)
	if err != nil {
		return err
	}

	// Ledger write comes after the sub-ledger update; a failed payout rolls
	// the tallies back.
	prevAggregate := *aggregate
	*aggregate = newAggregate
	if held == amount {
		delete(side, staker)
	} else {
		side[staker] = held - amount
	}

	if err := e.stakeTok.Transfer(staker, amount); err != nil {
		*aggregate = prevAggregate
		side[staker] = held
		e.logger.Error("unstake payout failed",
			zap.Uint64("proposalID", p.ID),
			zap.String("staker", staker),
			zap.Uint64("amount", amount),
			zap.Error(err))
		return ErrVotingDoesNotHaveEnoughFunds
	}

	now := e.clk.Now()
	e.metrics.IncrementUnstakeOps()
	e.logger.Debug("stake withdrawn",
		zap.Uint64("proposalID", p.ID),
		zap.String("staker", staker),
		zap.Bool("supports", supports),
		zap.Uint64("amount", amount))
	e.publish(Event{Type: evType, ProposalID: p.ID, Account: staker, Supports: supports, Amount: amount, Timestamp: now})
	e.recordStakeMovement(p.ID, staker, data.MovementUnstake, supports, amount, now)

	e.reassessConfidence(p)
	e.recordProposalUpdate(p)

	return nil
}

// reassessConfidence re-evaluates the queue-track pending status after a
// stake movement. Boosted and terminal proposals keep their state.
func (e *Engine) reassessConfidence(p *Proposal) {
	if !p.State.queueTrack() {
		return
	}

	conf := e.confidence(p)
	switch {
	case conf.Cmp(e.threshold) >= 0:
		if p.State != StatePended {
			p.LastPendedDate = e.clk.Now()
			e.transition(p, StatePended)
		}
	case p.State == StatePended:
		p.LastPendedDate = time.Time{}
		e.transition(p, StateUnpended)
	}
}
