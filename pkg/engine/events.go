package engine

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// EventType identifies an observable engine signal.
type EventType string

const (
	EventProposalCreated      EventType = "ProposalCreated"
	EventVoteCasted           EventType = "VoteCasted"
	EventUpstakeProposal      EventType = "UpstakeProposal"
	EventDownstakeProposal    EventType = "DownstakeProposal"
	EventWithdrawUpstake      EventType = "WithdrawUpstake"
	EventWithdrawDownstake    EventType = "WithdrawDownstake"
	EventProposalStateChanged EventType = "ProposalStateChanged"
)

// Event is one observable engine signal. Account holds the creator, voter or
// staker depending on the type; Amount holds the sampled vote weight or the
// stake amount; State is set for ProposalStateChanged only.
type Event struct {
	Type       EventType
	ProposalID uint64
	Account    string
	Supports   bool
	Amount     uint64
	State      ProposalState
	Metadata   string
	Timestamp  time.Time
}

// Bus fans events out to buffered subscriber channels. A subscriber that
// cannot keep up has events dropped rather than blocking the engine.
type Bus struct {
	subscribers []chan Event
	logger      *zap.Logger
	closed      bool
	mu          sync.RWMutex
}

// NewBus creates a new event bus.
func NewBus(logger *zap.Logger) *Bus {
	return &Bus{logger: logger}
}

// Subscribe registers a new subscriber with the given channel buffer.
func (b *Bus) Subscribe(buffer int) <-chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan Event, buffer)
	if b.closed {
		close(ch)
		return ch
	}
	b.subscribers = append(b.subscribers, ch)
	return ch
}

// Publish delivers the event to every subscriber without blocking.
func (b *Bus) Publish(ev Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}
	for _, ch := range b.subscribers {
		select {
		case ch <- ev:
		default:
			b.logger.Warn("dropping event for slow subscriber",
				zap.String("type", string(ev.Type)),
				zap.Uint64("proposalID", ev.ProposalID))
		}
	}
}

// Close shuts the bus down and closes all subscriber channels.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for _, ch := range b.subscribers {
		close(ch)
	}
	b.subscribers = nil
}
