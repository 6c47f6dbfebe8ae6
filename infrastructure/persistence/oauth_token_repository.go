package persistence

import (
	"context"
	"database/sql"
	"time"

	"propgen/domain/model"
	"propgen/domain/repository"
	"propgen/infrastructure/vault"

	"github.com/pkg/errors"
)

// OAuthTokenRepository is the token vault. Access and refresh tokens are
// sealed before insert and opened after select; plaintext never reaches the table.
type OAuthTokenRepository struct {
	db     *sql.DB
	sealer *vault.Sealer
}

func NewOAuthTokenRepository(db *sql.DB, sealer *vault.Sealer) *OAuthTokenRepository {
	return &OAuthTokenRepository{db: db, sealer: sealer}
}

var _ repository.ITokenVault = (*OAuthTokenRepository)(nil)

func (r *OAuthTokenRepository) UpsertToken(ctx context.Context, t *model.OAuthToken) error {
	now := time.Now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	access, err := r.sealer.Seal(t.AccessToken)
	if err != nil {
		return errors.Wrap(err, "seal access token")
	}
	refresh, err := r.sealer.Seal(t.RefreshToken)
	if err != nil {
		return errors.Wrap(err, "seal refresh token")
	}
	q := `INSERT INTO oauth_tokens (user_id, platform, access_token, refresh_token, expires_at, scopes, account_id, account_name, token_type, created_at, updated_at)
		  VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		  ON CONFLICT (user_id, platform) DO UPDATE SET
			access_token=EXCLUDED.access_token,
			refresh_token=EXCLUDED.refresh_token,
			expires_at=EXCLUDED.expires_at,
			scopes=EXCLUDED.scopes,
			account_id=EXCLUDED.account_id,
			account_name=EXCLUDED.account_name,
			token_type=EXCLUDED.token_type,
			updated_at=EXCLUDED.updated_at`
	_, err = r.db.ExecContext(ctx, q, t.UserID, t.Platform, access, refresh, t.ExpiresAt, t.Scopes,
		nullString(t.AccountID), nullString(t.AccountName), nullString(t.TokenType), t.CreatedAt, t.UpdatedAt)
	return errors.Wrap(err, "upsert oauth token")
}

func (r *OAuthTokenRepository) GetToken(ctx context.Context, userID, platform string) (*model.OAuthToken, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, user_id, platform, access_token, refresh_token, expires_at, scopes, account_id, account_name, token_type, created_at, updated_at FROM oauth_tokens WHERE user_id=$1 AND platform=$2`, userID, platform)
	tok := &model.OAuthToken{}
	var exp sql.NullTime
	var accountID, accountName, tokenType sql.NullString
	var access, refresh string
	if err := row.Scan(&tok.ID, &tok.UserID, &tok.Platform, &access, &refresh, &exp, &tok.Scopes, &accountID, &accountName, &tokenType, &tok.CreatedAt, &tok.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, repository.ErrTokenNotFound
		}
		return nil, errors.Wrap(err, "select oauth token")
	}
	var err error
	if tok.AccessToken, err = r.sealer.Open(access); err != nil {
		return nil, errors.Wrap(err, "open access token")
	}
	if tok.RefreshToken, err = r.sealer.Open(refresh); err != nil {
		return nil, errors.Wrap(err, "open refresh token")
	}
	if exp.Valid {
		tok.ExpiresAt = &exp.Time
	}
	tok.AccountID = accountID.String
	tok.AccountName = accountName.String
	tok.TokenType = tokenType.String
	return tok, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
