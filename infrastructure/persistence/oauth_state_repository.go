package persistence

import (
	"context"
	"database/sql"
	"time"

	"propgen/domain/model"
	"propgen/domain/repository"

	"github.com/pkg/errors"
)

// purgeGrace keeps an expired row around long enough for a late callback to
// be answered with state_expired rather than invalid_state
const purgeGrace = 10 * time.Minute

// OAuthStateRepository keeps CSRF states in the oauth_states table
type OAuthStateRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewOAuthStateRepository(db *sql.DB) *OAuthStateRepository {
	return &OAuthStateRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

var _ repository.IOAuthStateStore = (*OAuthStateRepository)(nil)

func (r *OAuthStateRepository) Create(ctx context.Context, s *model.OAuthState) error {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = r.now()
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO oauth_states (state, user_id, provider, expires_at, created_at) VALUES ($1,$2,$3,$4,$5)`,
		s.State, s.UserID, s.Provider, s.ExpiresAt, s.CreatedAt)
	return errors.Wrap(err, "insert oauth state")
}

// Consume deletes the row and returns it in one statement. Two concurrent
// callbacks carrying the same state cannot both receive the row.
func (r *OAuthStateRepository) Consume(ctx context.Context, state, provider string) (*model.OAuthState, error) {
	row := r.db.QueryRowContext(ctx, `DELETE FROM oauth_states WHERE state=$1 AND provider=$2 RETURNING state, user_id, provider, expires_at, created_at`,
		state, provider)
	s := &model.OAuthState{}
	if err := row.Scan(&s.State, &s.UserID, &s.Provider, &s.ExpiresAt, &s.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, repository.ErrStateNotFound
		}
		return nil, errors.Wrap(err, "consume oauth state")
	}
	if s.Expired(r.now()) {
		return s, repository.ErrStateExpired
	}
	return s, nil
}

// PurgeExpired removes states that expired more than purgeGrace ago
func (r *OAuthStateRepository) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM oauth_states WHERE expires_at <= $1`, r.now().Add(-purgeGrace))
	if err != nil {
		return 0, errors.Wrap(err, "purge oauth states")
	}
	return res.RowsAffected()
}
