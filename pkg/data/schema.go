package data

import (
	"context"
	"fmt"
)

// Token amounts are NUMERIC(20,0): wide enough for uint64.
const schema = `
CREATE TABLE IF NOT EXISTS proposals (
	id               BIGINT PRIMARY KEY,
	metadata         TEXT NOT NULL,
	creator          TEXT NOT NULL,
	state            SMALLINT NOT NULL,
	state_name       TEXT NOT NULL,
	start_date       TIMESTAMPTZ NOT NULL,
	lifetime_secs    BIGINT NOT NULL,
	last_pended_date TIMESTAMPTZ,
	yea              NUMERIC(20,0) NOT NULL,
	nay              NUMERIC(20,0) NOT NULL,
	upstake          NUMERIC(20,0) NOT NULL,
	downstake        NUMERIC(20,0) NOT NULL,
	confidence       NUMERIC NOT NULL,
	updated_at       TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_proposals_state ON proposals (state);

CREATE TABLE IF NOT EXISTS proposal_votes (
	id          UUID PRIMARY KEY,
	proposal_id BIGINT NOT NULL,
	voter       TEXT NOT NULL,
	supports    BOOLEAN NOT NULL,
	weight      NUMERIC(20,0) NOT NULL,
	cast_at     TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_votes_proposal ON proposal_votes (proposal_id);

CREATE TABLE IF NOT EXISTS stake_movements (
	id          UUID PRIMARY KEY,
	proposal_id BIGINT NOT NULL,
	staker      TEXT NOT NULL,
	kind        TEXT NOT NULL,
	supports    BOOLEAN NOT NULL,
	amount      NUMERIC(20,0) NOT NULL,
	moved_at    TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_movements_proposal ON stake_movements (proposal_id);

CREATE TABLE IF NOT EXISTS engine_events (
	id          UUID PRIMARY KEY,
	type        TEXT NOT NULL,
	proposal_id BIGINT NOT NULL,
	account     TEXT NOT NULL,
	supports    BOOLEAN NOT NULL,
	amount      NUMERIC(20,0) NOT NULL,
	state       SMALLINT NOT NULL,
	metadata    TEXT NOT NULL DEFAULT '',
	emitted_at  TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_events_proposal ON engine_events (proposal_id);
`

func (r *PostgresRepository) initSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("executing schema: %w", err)
	}
	return nil
}
