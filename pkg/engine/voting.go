package engine

import (
	"time"

	"go.uber.org/zap"

	"hc_engine/pkg/fixedpoint"
)

// Vote casts or recasts a token-weighted vote. The voter's full vote-token
// balance at call time becomes the weight; a recast first retracts the
// previously recorded weight. A yea tally at or above the support threshold
// resolves the proposal immediately, on either track.
func (e *Engine) Vote(voter string, proposalID uint64, supports bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, err := e.store.get(proposalID)
	if err != nil {
		return err
	}
	if p.State.Terminal() {
		return ErrProposalIsClosed
	}

	weight := e.voteTok.BalanceOf(voter)
	if weight == 0 {
		return ErrUserHasNoVotingPower
	}

	// Compute the post-vote tallies before mutating anything so a checked
	// overflow leaves the proposal untouched.
	yea, nay := p.Yea, p.Nay
	if prev, ok := p.Votes[voter]; ok {
		switch prev.Choice {
		case VoteYea:
			if yea, err = fixedpoint.SubU64(yea, prev.Weight); err != nil {
				return err
			}
		case VoteNay:
			if nay, err = fixedpoint.SubU64(nay, prev.Weight); err != nil {
				return err
			}
		}
	}
	choice := VoteNay
	if supports {
		choice = VoteYea
		if yea, err = fixedpoint.AddU64(yea, weight); err != nil {
			return err
		}
	} else {
		if nay, err = fixedpoint.AddU64(nay, weight); err != nil {
			return err
		}
	}

	p.Yea, p.Nay = yea, nay
	p.Votes[voter] = VoteEntry{Choice: choice, Weight: weight}

	now := e.clk.Now()
	e.metrics.IncrementVotesCast()
	e.logger.Debug("vote cast",
		zap.Uint64("proposalID", p.ID),
		zap.String("voter", voter),
		zap.Bool("supports", supports),
		zap.Uint64("weight", weight))
	e.publish(Event{Type: EventVoteCasted, ProposalID: p.ID, Account: voter, Supports: supports, Amount: weight, Timestamp: now})
	e.recordVote(p.ID, voter, supports, weight, now)

	passed, err := e.hasAbsoluteMajority(p)
	if err != nil {
		return err
	}
	if passed {
		if p.State == StatePended {
			p.LastPendedDate = time.Time{}
		}
		e.transition(p, StateResolved)
	}
	e.recordProposalUpdate(p)

	return nil
}

// hasAbsoluteMajority reports whether yea votes reach the configured support
// fraction of the whole vote-token supply:
// yea * PRECISION >= supportPct * total_supply.
func (e *Engine) hasAbsoluteMajority(p *Proposal) (bool, error) {
	supply := e.voteTok.TotalSupply()
	if supply == 0 {
		return false, nil
	}

	lhs, err := fixedpoint.Mul(fixedpoint.U(p.Yea), fixedpoint.PrecisionInt())
	if err != nil {
		return false, err
	}
	rhs, err := fixedpoint.Mul(fixedpoint.U(e.cfg.SupportPct), fixedpoint.U(supply))
	if err != nil {
		return false, err
	}
	return lhs.Cmp(rhs) >= 0, nil
}
