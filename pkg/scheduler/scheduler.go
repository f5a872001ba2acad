package scheduler

import (
	"errors"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"hc_engine/pkg/config"
	"hc_engine/pkg/engine"
)

// Poker periodically scans all proposals and fires the lifecycle pokes the
// engine is owed: expiring overdue queue-track proposals and resolving
// boosted ones past their deadline. Compensation fees accrue to the
// configured fee account.
type Poker struct {
	engine     *engine.Engine
	cron       *cron.Cron
	feeAccount string
	logger     *zap.Logger
}

// NewPoker creates a poker from the configuration. The schedule uses
// six-field cron syntax with a seconds column.
func NewPoker(eng *engine.Engine, cfg config.PokerConfig, logger *zap.Logger) (*Poker, error) {
	p := &Poker{
		engine:     eng,
		cron:       cron.New(cron.WithSeconds()),
		feeAccount: cfg.FeeAccount,
		logger:     logger,
	}

	if _, err := p.cron.AddFunc(cfg.ScanSchedule, func() {
		p.Scan()
	}); err != nil {
		return nil, fmt.Errorf("adding scan job: %w", err)
	}

	return p, nil
}

// Start begins the periodic scans.
func (p *Poker) Start() {
	p.logger.Info("starting lifecycle poker",
		zap.String("feeAccount", p.feeAccount))
	p.cron.Start()
}

// Stop halts the scans, waiting for a running scan to finish.
func (p *Poker) Stop() {
	ctx := p.cron.Stop()
	<-ctx.Done()
	p.logger.Info("lifecycle poker stopped")
}

// Scan walks every proposal once and pokes the overdue ones, returning the
// number of state changes made. Proposals that are simply not due yet are
// skipped silently.
func (p *Poker) Scan() int {
	poked := 0
	total := p.engine.NumProposals()
	for id := uint64(0); id < total; id++ {
		prop, err := p.engine.GetProposal(id)
		if err != nil {
			p.logger.Error("scan lookup failed", zap.Uint64("proposalID", id), zap.Error(err))
			continue
		}
		if prop.State.Terminal() {
			continue
		}

		if prop.State == engine.StateBoosted {
			err = p.engine.ResolveBoosted(p.feeAccount, id)
		} else {
			err = p.engine.ExpireNonBoosted(p.feeAccount, id)
		}
		switch {
		case err == nil:
			poked++
		case errors.Is(err, engine.ErrProposalIsActive):
			// not due yet
		case errors.Is(err, engine.ErrInvalidCompensationFee):
			p.logger.Debug("overdue proposal has no upstake to fund a fee",
				zap.Uint64("proposalID", id))
		default:
			p.logger.Error("lifecycle poke failed",
				zap.Uint64("proposalID", id),
				zap.Error(err))
		}
	}

	if poked > 0 {
		p.logger.Info("lifecycle scan complete",
			zap.Uint64("proposals", total),
			zap.Int("poked", poked))
	}
	return poked
}
