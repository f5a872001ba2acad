package engine

import (
	"time"
)

// Vote is a voter's recorded choice. The wire encoding is fixed for
// consumer compatibility.
type Vote uint8

const (
	VoteAbsent Vote = 0
	VoteYea    Vote = 1
	VoteNay    Vote = 2
)

// String prints the vote choice as lower-case text for events and logs.
func (v Vote) String() string {
	switch v {
	case VoteYea:
		return "yea"
	case VoteNay:
		return "nay"
	default:
		return "absent"
	}
}

// ProposalState captures a proposal's lifecycle. The wire encoding is fixed
// for consumer compatibility.
type ProposalState uint8

const (
	StateQueued   ProposalState = 0
	StateUnpended ProposalState = 1
	StatePended   ProposalState = 2
	StateBoosted  ProposalState = 3
	StateResolved ProposalState = 4
	StateExpired  ProposalState = 5
)

// String prints the proposal state as lower-case text for events and logs.
func (ps ProposalState) String() string {
	switch ps {
	case StateQueued:
		return "queued"
	case StateUnpended:
		return "unpended"
	case StatePended:
		return "pended"
	case StateBoosted:
		return "boosted"
	case StateResolved:
		return "resolved"
	case StateExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further state transition is possible.
func (ps ProposalState) Terminal() bool {
	return ps == StateResolved || ps == StateExpired
}

// queueTrack reports whether the proposal is still on the slow track.
func (ps ProposalState) queueTrack() bool {
	return ps == StateQueued || ps == StateUnpended || ps == StatePended
}

// VoteEntry is a voter's recorded choice together with the voting-token
// weight sampled when the vote was cast. Recasts subtract this stored
// weight, not the voter's current balance.
type VoteEntry struct {
	Choice Vote
	Weight uint64
}

// Proposal is a governance item undergoing vote and stake accumulation.
type Proposal struct {
	ID             uint64
	Metadata       string
	Creator        string
	State          ProposalState
	StartDate      time.Time
	Lifetime       time.Duration
	LastPendedDate time.Time // zero unless State == StatePended
	Yea            uint64
	Nay            uint64
	Upstake        uint64
	Downstake      uint64
	Votes          map[string]VoteEntry
	Upstakes       map[string]uint64
	Downstakes     map[string]uint64
}

// Deadline is the instant the proposal's current track runs out.
func (p *Proposal) Deadline() time.Time {
	return p.StartDate.Add(p.Lifetime)
}

// clone returns a deep copy safe to hand to callers.
func (p *Proposal) clone() *Proposal {
	cp := *p
	cp.Votes = make(map[string]VoteEntry, len(p.Votes))
	for k, v := range p.Votes {
		cp.Votes[k] = v
	}
	cp.Upstakes = make(map[string]uint64, len(p.Upstakes))
	for k, v := range p.Upstakes {
		cp.Upstakes[k] = v
	}
	cp.Downstakes = make(map[string]uint64, len(p.Downstakes))
	for k, v := range p.Downstakes {
		cp.Downstakes[k] = v
	}
	return &cp
}

// proposalStore is a dense, append-only, integer-keyed container. It never
// deletes proposals. Callers hold the engine lock.
type proposalStore struct {
	proposals []*Proposal
}

func newProposalStore() *proposalStore {
	return &proposalStore{}
}

// append installs a proposal and returns its assigned identifier.
func (s *proposalStore) append(p *Proposal) uint64 {
	p.ID = uint64(len(s.proposals))
	s.proposals = append(s.proposals, p)
	return p.ID
}

func (s *proposalStore) get(id uint64) (*Proposal, error) {
	if id >= uint64(len(s.proposals)) {
		return nil, ErrProposalDoesNotExist
	}
	return s.proposals[id], nil
}

func (s *proposalStore) len() uint64 {
	return uint64(len(s.proposals))
}
