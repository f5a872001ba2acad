package engine

import (
	"sync"
	"time"
)

// Metrics tracks engine activity counters.
type Metrics struct {
	proposalsCreated int64
	votesCast        int64
	stakeOps         int64
	unstakeOps       int64
	pokes            int64
	feesPaid         uint64
	lastUpdate       time.Time
	mu               sync.RWMutex
}

// Stats is a point-in-time snapshot of the engine counters.
type Stats struct {
	Proposals        uint64
	ProposalsCreated int64
	VotesCast        int64
	StakeOps         int64
	UnstakeOps       int64
	Pokes            int64
	FeesPaid         uint64
	LastUpdate       time.Time
}

// NewMetrics creates a new Metrics instance.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// IncrementProposalsCreated increments the proposalsCreated counter.
func (m *Metrics) IncrementProposalsCreated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.proposalsCreated++
	m.lastUpdate = time.Now()
}

// IncrementVotesCast increments the votesCast counter.
func (m *Metrics) IncrementVotesCast() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.votesCast++
	m.lastUpdate = time.Now()
}

// IncrementStakeOps increments the stakeOps counter.
func (m *Metrics) IncrementStakeOps() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stakeOps++
	m.lastUpdate = time.Now()
}

// IncrementUnstakeOps increments the unstakeOps counter.
func (m *Metrics) IncrementUnstakeOps() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unstakeOps++
	m.lastUpdate = time.Now()
}

// RecordPoke counts a lifecycle poke and the compensation fee it paid out.
func (m *Metrics) RecordPoke(fee uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pokes++
	m.feesPaid += fee
	m.lastUpdate = time.Now()
}

// FeesPaid reports the cumulative compensation fees paid out.
func (m *Metrics) FeesPaid() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.feesPaid
}

// GetStats returns the current engine statistics.
func (m *Metrics) GetStats(proposals uint64) Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return Stats{
		Proposals:        proposals,
		ProposalsCreated: m.proposalsCreated,
		VotesCast:        m.votesCast,
		StakeOps:         m.stakeOps,
		UnstakeOps:       m.unstakeOps,
		Pokes:            m.pokes,
		FeesPaid:         m.feesPaid,
		LastUpdate:       m.lastUpdate,
	}
}
