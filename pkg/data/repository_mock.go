package data

import (
	"context"
	"sync"
)

// MockRepository implements the Repository interface in memory for testing
type MockRepository struct {
	proposals map[uint64]*ProposalRecord
	votes     []*VoteRecord
	movements []*StakeMovement
	events    []*EventRecord
	mu        sync.RWMutex
}

// Ensure MockRepository implements the Repository interface
var _ Repository = (*MockRepository)(nil)

// NewMockRepository creates an empty mock repository
func NewMockRepository() *MockRepository {
	return &MockRepository{
		proposals: make(map[uint64]*ProposalRecord),
	}
}

func (m *MockRepository) SaveProposal(ctx context.Context, rec *ProposalRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.proposals[rec.ID]; exists {
		return ErrDuplicate
	}
	cp := *rec
	m.proposals[rec.ID] = &cp
	return nil
}

func (m *MockRepository) UpdateProposal(ctx context.Context, rec *ProposalRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.proposals[rec.ID]; !exists {
		return ErrNotFound
	}
	cp := *rec
	m.proposals[rec.ID] = &cp
	return nil
}

func (m *MockRepository) GetProposal(ctx context.Context, id uint64) (*ProposalRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.proposals[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (m *MockRepository) ListProposals(ctx context.Context, filter ProposalFilter) ([]*ProposalRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*ProposalRecord
	for _, rec := range m.proposals {
		if len(filter.States) > 0 && !containsState(filter.States, rec.State) {
			continue
		}
		cp := *rec
		out = append(out, &cp)
	}
	return out, nil
}

func (m *MockRepository) SaveVote(ctx context.Context, vote *VoteRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *vote
	m.votes = append(m.votes, &cp)
	return nil
}

func (m *MockRepository) ListVotesByProposal(ctx context.Context, proposalID uint64) ([]*VoteRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*VoteRecord
	for _, v := range m.votes {
		if v.ProposalID == proposalID {
			cp := *v
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MockRepository) SaveStakeMovement(ctx context.Context, mv *StakeMovement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *mv
	m.movements = append(m.movements, &cp)
	return nil
}

func (m *MockRepository) ListStakeMovementsByProposal(ctx context.Context, proposalID uint64) ([]*StakeMovement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*StakeMovement
	for _, mv := range m.movements {
		if mv.ProposalID == proposalID {
			cp := *mv
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MockRepository) SaveEvent(ctx context.Context, ev *EventRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *ev
	m.events = append(m.events, &cp)
	return nil
}

// Events returns the captured event records for assertions
func (m *MockRepository) Events() []*EventRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*EventRecord, len(m.events))
	copy(out, m.events)
	return out
}

func (m *MockRepository) Close() {}

func containsState(states []int16, state int16) bool {
	for _, s := range states {
		if s == state {
			return true
		}
	}
	return false
}
