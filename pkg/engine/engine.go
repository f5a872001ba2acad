package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"hc_engine/pkg/config"
	"hc_engine/pkg/data"
	"hc_engine/pkg/fixedpoint"
	"hc_engine/pkg/token"
)

const recordTimeout = 5 * time.Second

// Engine is the holographic-consensus state machine. Every operation runs to
// completion under a single lock; observers see operations in one total
// order. Token custody for stakes lives on the stake ledger under
// cfg.CustodyAccount.
type Engine struct {
	id        string
	cfg       config.GovernanceConfig
	voteTok   token.Ledger
	stakeTok  token.Ledger
	threshold *uint256.Int
	store     *proposalStore
	clk       clock.Clock
	bus       *Bus
	metrics   *Metrics
	repo      data.Repository
	logger    *zap.Logger
	mu        sync.Mutex
}

// NewEngine validates the governance parameters and creates an engine.
// clk and repo may be nil (wall clock, no persistence).
func NewEngine(cfg *config.GovernanceConfig, voteTok, stakeTok token.Ledger, clk clock.Clock, repo data.Repository, logger *zap.Logger) (*Engine, error) {
	if cfg.SupportPct < config.MinSupportPct {
		return nil, ErrInitSupportTooSmall
	}
	if cfg.SupportPct >= config.PctBase {
		return nil, ErrInitSupportTooBig
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if clk == nil {
		clk = clock.New()
	}

	threshold, err := fixedpoint.Mul(fixedpoint.U(cfg.ConfidenceThresholdBase), fixedpoint.PrecisionInt())
	if err != nil {
		return nil, fmt.Errorf("computing confidence threshold: %w", err)
	}

	if cfg.BoostPeriod > cfg.QueuePeriod {
		logger.Warn("boost_period exceeds queue_period; boosting extends the deadline past the queue deadline",
			zap.Duration("boostPeriod", cfg.BoostPeriod),
			zap.Duration("queuePeriod", cfg.QueuePeriod))
	}

	return &Engine{
		id:        uuid.New().String(),
		cfg:       *cfg,
		voteTok:   voteTok,
		stakeTok:  stakeTok,
		threshold: threshold,
		store:     newProposalStore(),
		clk:       clk,
		bus:       NewBus(logger),
		metrics:   NewMetrics(),
		repo:      repo,
		logger:    logger,
	}, nil
}

// ID returns the engine instance identifier.
func (e *Engine) ID() string {
	return e.id
}

// CreateProposal installs a fresh proposal in Queued and returns its id.
func (e *Engine) CreateProposal(creator, metadata string) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.clk.Now()
	p := &Proposal{
		Metadata:   metadata,
		Creator:    creator,
		State:      StateQueued,
		StartDate:  now,
		Lifetime:   e.cfg.QueuePeriod,
		Votes:      make(map[string]VoteEntry),
		Upstakes:   make(map[string]uint64),
		Downstakes: make(map[string]uint64),
	}
	id := e.store.append(p)

	e.metrics.IncrementProposalsCreated()
	e.logger.Info("proposal created",
		zap.Uint64("proposalID", id),
		zap.String("creator", creator))
	e.publish(Event{Type: EventProposalCreated, ProposalID: id, Account: creator, Metadata: metadata, Timestamp: now})
	e.recordProposalInsert(p)

	return id, nil
}

// GetProposal returns a deep copy of the proposal.
func (e *Engine) GetProposal(id uint64) (*Proposal, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, err := e.store.get(id)
	if err != nil {
		return nil, err
	}
	return p.clone(), nil
}

// GetVote returns a voter's recorded choice, VoteAbsent when none.
func (e *Engine) GetVote(id uint64, voter string) (Vote, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, err := e.store.get(id)
	if err != nil {
		return VoteAbsent, err
	}
	return p.Votes[voter].Choice, nil
}

// GetUpstake returns a staker's pro-side commitment on a proposal.
func (e *Engine) GetUpstake(id uint64, staker string) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, err := e.store.get(id)
	if err != nil {
		return 0, err
	}
	return p.Upstakes[staker], nil
}

// GetDownstake returns a staker's con-side commitment on a proposal.
func (e *Engine) GetDownstake(id uint64, staker string) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, err := e.store.get(id)
	if err != nil {
		return 0, err
	}
	return p.Downstakes[staker], nil
}

// GetConfidence returns the proposal's upstake/downstake ratio in fixed point.
func (e *Engine) GetConfidence(id uint64) (*uint256.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, err := e.store.get(id)
	if err != nil {
		return nil, err
	}
	return e.confidence(p), nil
}

// NumProposals returns the number of proposals ever created.
func (e *Engine) NumProposals() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.len()
}

// Subscribe registers an event subscriber with the given channel buffer.
func (e *Engine) Subscribe(buffer int) <-chan Event {
	return e.bus.Subscribe(buffer)
}

// GetStats returns current engine statistics.
func (e *Engine) GetStats() Stats {
	e.mu.Lock()
	proposals := e.store.len()
	e.mu.Unlock()
	return e.metrics.GetStats(proposals)
}

// VerifyCustody checks that the custody account's stake-token balance equals
// the sum of all recorded stakes minus compensation fees already paid out.
func (e *Engine) VerifyCustody() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var total uint64
	var err error
	for _, p := range e.store.proposals {
		if total, err = fixedpoint.AddU64(total, p.Upstake); err != nil {
			return err
		}
		if total, err = fixedpoint.AddU64(total, p.Downstake); err != nil {
			return err
		}
	}
	expected, err := fixedpoint.SubU64(total, e.metrics.FeesPaid())
	if err != nil {
		return err
	}

	held := e.stakeTok.BalanceOf(e.cfg.CustodyAccount)
	if held != expected {
		return fmt.Errorf("stake custody mismatch: held %d, expected %d", held, expected)
	}
	return nil
}

// Close shuts down the event bus.
func (e *Engine) Close() {
	e.bus.Close()
}

// confidence is upstake/downstake in fixed point; an empty downstake side
// counts as a single token so the ratio stays defined.
func (e *Engine) confidence(p *Proposal) *uint256.Int {
	down := p.Downstake
	if down == 0 {
		down = 1
	}
	conf, err := fixedpoint.MulDiv(fixedpoint.U(p.Upstake), fixedpoint.PrecisionInt(), fixedpoint.U(down))
	if err != nil {
		e.logger.Error("confidence computation failed",
			zap.Uint64("proposalID", p.ID),
			zap.Error(err))
		return uint256.NewInt(0)
	}
	return conf
}

// transition moves the proposal to the next state and signals observers.
// Callers maintain Lifetime and LastPendedDate before transitioning.
func (e *Engine) transition(p *Proposal, next ProposalState) {
	p.State = next
	e.logger.Info("proposal state changed",
		zap.Uint64("proposalID", p.ID),
		zap.String("state", next.String()))
	e.publish(Event{Type: EventProposalStateChanged, ProposalID: p.ID, State: next, Timestamp: e.clk.Now()})
}

// publish signals subscribers and persists the event record.
func (e *Engine) publish(ev Event) {
	e.bus.Publish(ev)
	if e.repo == nil {
		return
	}
	rec := data.NewEventRecord(string(ev.Type), ev.ProposalID, ev.Account, ev.Supports, ev.Amount, int16(ev.State), ev.Metadata, ev.Timestamp)
	e.persist("event", func(ctx context.Context) error {
		return e.repo.SaveEvent(ctx, rec)
	})
}

// persist runs one best-effort repository write. Persistence failures are
// logged and never affect engine state: the in-memory store is the source
// of truth.
func (e *Engine) persist(op string, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()
	if err := fn(ctx); err != nil {
		e.logger.Error("persistence write failed",
			zap.String("op", op),
			zap.Error(err))
	}
}

func (e *Engine) proposalRecord(p *Proposal) *data.ProposalRecord {
	var lastPended *time.Time
	if !p.LastPendedDate.IsZero() {
		t := p.LastPendedDate
		lastPended = &t
	}
	return &data.ProposalRecord{
		ID:             p.ID,
		Metadata:       p.Metadata,
		Creator:        p.Creator,
		State:          int16(p.State),
		StateName:      p.State.String(),
		StartDate:      p.StartDate,
		LifetimeSecs:   int64(p.Lifetime / time.Second),
		LastPendedDate: lastPended,
		Yea:            p.Yea,
		Nay:            p.Nay,
		Upstake:        p.Upstake,
		Downstake:      p.Downstake,
		Confidence:     decimal.NewFromBigInt(e.confidence(p).ToBig(), -18),
		UpdatedAt:      e.clk.Now(),
	}
}

func (e *Engine) recordProposalInsert(p *Proposal) {
	if e.repo == nil {
		return
	}
	rec := e.proposalRecord(p)
	e.persist("proposal insert", func(ctx context.Context) error {
		return e.repo.SaveProposal(ctx, rec)
	})
}

func (e *Engine) recordProposalUpdate(p *Proposal) {
	if e.repo == nil {
		return
	}
	rec := e.proposalRecord(p)
	e.persist("proposal update", func(ctx context.Context) error {
		return e.repo.UpdateProposal(ctx, rec)
	})
}

func (e *Engine) recordVote(proposalID uint64, voter string, supports bool, weight uint64, castAt time.Time) {
	if e.repo == nil {
		return
	}
	rec := data.NewVoteRecord(proposalID, voter, supports, weight, castAt)
	e.persist("vote", func(ctx context.Context) error {
		return e.repo.SaveVote(ctx, rec)
	})
}

func (e *Engine) recordStakeMovement(proposalID uint64, staker, kind string, supports bool, amount uint64, movedAt time.Time) {
	if e.repo == nil {
		return
	}
	rec := data.NewStakeMovement(proposalID, staker, kind, supports, amount, movedAt)
	e.persist("stake movement", func(ctx context.Context) error {
		return e.repo.SaveStakeMovement(ctx, rec)
	})
}
