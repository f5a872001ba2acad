package data

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Error variables for consistent error handling
var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// Stake movement kinds
const (
	MovementStake   = "STAKE"
	MovementUnstake = "UNSTAKE"
)

// ProposalRecord is the persisted snapshot of a proposal for observers and
// indexers. The engine's in-memory store stays the source of truth.
type ProposalRecord struct {
	ID             uint64          `json:"id"`
	Metadata       string          `json:"metadata"`
	Creator        string          `json:"creator"`
	State          int16           `json:"state"`
	StateName      string          `json:"state_name"`
	StartDate      time.Time       `json:"start_date"`
	LifetimeSecs   int64           `json:"lifetime_secs"`
	LastPendedDate *time.Time      `json:"last_pended_date,omitempty"`
	Yea            uint64          `json:"yea"`
	Nay            uint64          `json:"nay"`
	Upstake        uint64          `json:"upstake"`
	Downstake      uint64          `json:"downstake"`
	Confidence     decimal.Decimal `json:"confidence"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// VoteRecord is one cast (or recast) vote with its sampled weight.
type VoteRecord struct {
	ID         string    `json:"id"`
	ProposalID uint64    `json:"proposal_id"`
	Voter      string    `json:"voter"`
	Supports   bool      `json:"supports"`
	Weight     uint64    `json:"weight"`
	CastAt     time.Time `json:"cast_at"`
}

// NewVoteRecord creates a vote record with a fresh identifier.
func NewVoteRecord(proposalID uint64, voter string, supports bool, weight uint64, castAt time.Time) *VoteRecord {
	return &VoteRecord{
		ID:         uuid.New().String(),
		ProposalID: proposalID,
		Voter:      voter,
		Supports:   supports,
		Weight:     weight,
		CastAt:     castAt,
	}
}

// StakeMovement is one stake deposit or withdrawal.
type StakeMovement struct {
	ID         string    `json:"id"`
	ProposalID uint64    `json:"proposal_id"`
	Staker     string    `json:"staker"`
	Kind       string    `json:"kind"`
	Supports   bool      `json:"supports"`
	Amount     uint64    `json:"amount"`
	MovedAt    time.Time `json:"moved_at"`
}

// NewStakeMovement creates a stake movement record with a fresh identifier.
func NewStakeMovement(proposalID uint64, staker, kind string, supports bool, amount uint64, movedAt time.Time) *StakeMovement {
	return &StakeMovement{
		ID:         uuid.New().String(),
		ProposalID: proposalID,
		Staker:     staker,
		Kind:       kind,
		Supports:   supports,
		Amount:     amount,
		MovedAt:    movedAt,
	}
}

// EventRecord is one observable engine signal, persisted for replay.
type EventRecord struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	ProposalID uint64    `json:"proposal_id"`
	Account    string    `json:"account"`
	Supports   bool      `json:"supports"`
	Amount     uint64    `json:"amount"`
	State      int16     `json:"state"`
	Metadata   string    `json:"metadata,omitempty"`
	EmittedAt  time.Time `json:"emitted_at"`
}

// NewEventRecord creates an event record with a fresh identifier.
func NewEventRecord(evType string, proposalID uint64, account string, supports bool, amount uint64, state int16, metadata string, emittedAt time.Time) *EventRecord {
	return &EventRecord{
		ID:         uuid.New().String(),
		Type:       evType,
		ProposalID: proposalID,
		Account:    account,
		Supports:   supports,
		Amount:     amount,
		State:      state,
		Metadata:   metadata,
		EmittedAt:  emittedAt,
	}
}

// ProposalFilter defines filter parameters for proposal queries
type ProposalFilter struct {
	States []int16
	Limit  int
	Offset int
}
