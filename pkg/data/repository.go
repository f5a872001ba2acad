package data

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"go.uber.org/zap"
)

// Repository defines the interface for the engine's persistence feed
type Repository interface {
	// Proposal operations
	SaveProposal(ctx context.Context, rec *ProposalRecord) error
	UpdateProposal(ctx context.Context, rec *ProposalRecord) error
	GetProposal(ctx context.Context, id uint64) (*ProposalRecord, error)
	ListProposals(ctx context.Context, filter ProposalFilter) ([]*ProposalRecord, error)

	// Vote operations
	SaveVote(ctx context.Context, vote *VoteRecord) error
	ListVotesByProposal(ctx context.Context, proposalID uint64) ([]*VoteRecord, error)

	// Stake operations
	SaveStakeMovement(ctx context.Context, mv *StakeMovement) error
	ListStakeMovementsByProposal(ctx context.Context, proposalID uint64) ([]*StakeMovement, error)

	// Event operations
	SaveEvent(ctx context.Context, ev *EventRecord) error

	Close()
}

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

var _ Repository = (*PostgresRepository)(nil)

// NewPostgresRepository creates a new PostgreSQL repository instance
func NewPostgresRepository(ctx context.Context, connStr string, logger *zap.Logger) (*PostgresRepository, error) {
	config, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.ConnectConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	repo := &PostgresRepository{
		pool:   pool,
		logger: logger,
	}

	if err := repo.initSchema(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return repo, nil
}

// Close releases all database resources
func (r *PostgresRepository) Close() {
	r.pool.Close()
}

// SaveProposal inserts a proposal snapshot
func (r *PostgresRepository) SaveProposal(ctx context.Context, rec *ProposalRecord) error {
	query := `
		INSERT INTO proposals (
			id, metadata, creator, state, state_name, start_date, lifetime_secs,
			last_pended_date, yea, nay, upstake, downstake, confidence, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14
		)`

	_, err := r.pool.Exec(ctx, query,
		rec.ID, rec.Metadata, rec.Creator, rec.State, rec.StateName,
		rec.StartDate, rec.LifetimeSecs, rec.LastPendedDate,
		rec.Yea, rec.Nay, rec.Upstake, rec.Downstake, rec.Confidence, rec.UpdatedAt,
	)

	if err != nil {
		if isPgDuplicateError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("inserting proposal: %w", err)
	}

	return nil
}

// UpdateProposal overwrites a proposal snapshot
func (r *PostgresRepository) UpdateProposal(ctx context.Context, rec *ProposalRecord) error {
	query := `
		UPDATE proposals SET
			state = $2, state_name = $3, lifetime_secs = $4, last_pended_date = $5,
			yea = $6, nay = $7, upstake = $8, downstake = $9, confidence = $10,
			updated_at = $11
		WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query,
		rec.ID, rec.State, rec.StateName, rec.LifetimeSecs, rec.LastPendedDate,
		rec.Yea, rec.Nay, rec.Upstake, rec.Downstake, rec.Confidence, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("updating proposal: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// GetProposal retrieves a proposal snapshot by ID
func (r *PostgresRepository) GetProposal(ctx context.Context, id uint64) (*ProposalRecord, error) {
	query := `
		SELECT id, metadata, creator, state, state_name, start_date, lifetime_secs,
			   last_pended_date, yea, nay, upstake, downstake, confidence, updated_at
		FROM proposals
		WHERE id = $1`

	rec := &ProposalRecord{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&rec.ID, &rec.Metadata, &rec.Creator, &rec.State, &rec.StateName,
		&rec.StartDate, &rec.LifetimeSecs, &rec.LastPendedDate,
		&rec.Yea, &rec.Nay, &rec.Upstake, &rec.Downstake, &rec.Confidence, &rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying proposal: %w", err)
	}

	return rec, nil
}

// ListProposals retrieves proposal snapshots matching the filter
func (r *PostgresRepository) ListProposals(ctx context.Context, filter ProposalFilter) ([]*ProposalRecord, error) {
	query := `
		SELECT id, metadata, creator, state, state_name, start_date, lifetime_secs,
			   last_pended_date, yea, nay, upstake, downstake, confidence, updated_at
		FROM proposals`

	args := []interface{}{}
	if len(filter.States) > 0 {
		query += ` WHERE state = ANY($1)`
		args = append(args, filter.States)
	}
	query += ` ORDER BY id`
	if filter.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET %d`, filter.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying proposals: %w", err)
	}
	defer rows.Close()

	var records []*ProposalRecord
	for rows.Next() {
		rec := &ProposalRecord{}
		if err := rows.Scan(
			&rec.ID, &rec.Metadata, &rec.Creator, &rec.State, &rec.StateName,
			&rec.StartDate, &rec.LifetimeSecs, &rec.LastPendedDate,
			&rec.Yea, &rec.Nay, &rec.Upstake, &rec.Downstake, &rec.Confidence, &rec.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning proposal: %w", err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// SaveVote inserts a vote record
func (r *PostgresRepository) SaveVote(ctx context.Context, vote *VoteRecord) error {
	query := `
		INSERT INTO proposal_votes (id, proposal_id, voter, supports, weight, cast_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.pool.Exec(ctx, query,
		vote.ID, vote.ProposalID, vote.Voter, vote.Supports, vote.Weight, vote.CastAt,
	)
	if err != nil {
		if isPgDuplicateError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("inserting vote: %w", err)
	}

	return nil
}

// ListVotesByProposal retrieves all votes cast on a proposal
func (r *PostgresRepository) ListVotesByProposal(ctx context.Context, proposalID uint64) ([]*VoteRecord, error) {
	query := `
		SELECT id, proposal_id, voter, supports, weight, cast_at
		FROM proposal_votes
		WHERE proposal_id = $1
		ORDER BY cast_at`

	rows, err := r.pool.Query(ctx, query, proposalID)
	if err != nil {
		return nil, fmt.Errorf("querying votes: %w", err)
	}
	defer rows.Close()

	var votes []*VoteRecord
	for rows.Next() {
		vote := &VoteRecord{}
		if err := rows.Scan(&vote.ID, &vote.ProposalID, &vote.Voter, &vote.Supports, &vote.Weight, &vote.CastAt); err != nil {
			return nil, fmt.Errorf("scanning vote: %w", err)
		}
		votes = append(votes, vote)
	}

	return votes, rows.Err()
}

// SaveStakeMovement inserts a stake movement record
func (r *PostgresRepository) SaveStakeMovement(ctx context.Context, mv *StakeMovement) error {
	query := `
		INSERT INTO stake_movements (id, proposal_id, staker, kind, supports, amount, moved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.pool.Exec(ctx, query,
		mv.ID, mv.ProposalID, mv.Staker, mv.Kind, mv.Supports, mv.Amount, mv.MovedAt,
	)
	if err != nil {
		if isPgDuplicateError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("inserting stake movement: %w", err)
	}

	return nil
}

// ListStakeMovementsByProposal retrieves all stake movements on a proposal
func (r *PostgresRepository) ListStakeMovementsByProposal(ctx context.Context, proposalID uint64) ([]*StakeMovement, error) {
	query := `
		SELECT id, proposal_id, staker, kind, supports, amount, moved_at
		FROM stake_movements
		WHERE proposal_id = $1
		ORDER BY moved_at`

	rows, err := r.pool.Query(ctx, query, proposalID)
	if err != nil {
		return nil, fmt.Errorf("querying stake movements: %w", err)
	}
	defer rows.Close()

	var movements []*StakeMovement
	for rows.Next() {
		mv := &StakeMovement{}
		if err := rows.Scan(&mv.ID, &mv.ProposalID, &mv.Staker, &mv.Kind, &mv.Supports, &mv.Amount, &mv.MovedAt); err != nil {
			return nil, fmt.Errorf("scanning stake movement: %w", err)
		}
		movements = append(movements, mv)
	}

	return movements, rows.Err()
}

// SaveEvent inserts an event record
func (r *PostgresRepository) SaveEvent(ctx context.Context, ev *EventRecord) error {
	query := `
		INSERT INTO engine_events (id, type, proposal_id, account, supports, amount, state, metadata, emitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.pool.Exec(ctx, query,
		ev.ID, ev.Type, ev.ProposalID, ev.Account, ev.Supports, ev.Amount, ev.State, ev.Metadata, ev.EmittedAt,
	)
	if err != nil {
		if isPgDuplicateError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("inserting event: %w", err)
	}

	return nil
}

// isPgDuplicateError checks for a unique-constraint violation
func isPgDuplicateError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
