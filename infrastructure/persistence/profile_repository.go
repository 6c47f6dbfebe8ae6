package persistence

import (
	"context"
	"database/sql"
	"time"

	domainerrors "propgen/domain/errors"
	"propgen/domain/model"
	"propgen/domain/repository"

	"github.com/pkg/errors"
)

const profileSelect = `SELECT id, user_id, COALESCE(display_name,''), COALESCE(company,''), COALESCE(avatar_url,''), COALESCE(logo_url,''),
	plan, usage_count, monthly_limit, language,
	facebook_connected, COALESCE(facebook_page_id,''), instagram_connected, COALESCE(instagram_account_id,''),
	tiktok_connected, COALESCE(tiktok_username,''), created_at, updated_at
	FROM profiles WHERE user_id=$1`

// connectionColumns maps a platform to its (flag, account) profile columns
var connectionColumns = map[string][2]string{
	model.PlatformFacebook:  {"facebook_connected", "facebook_page_id"},
	model.PlatformInstagram: {"instagram_connected", "instagram_account_id"},
	model.PlatformTikTok:    {"tiktok_connected", "tiktok_username"},
}

type ProfileRepository struct {
	db *sql.DB
}

func NewProfileRepository(db *sql.DB) *ProfileRepository { return &ProfileRepository{db: db} }

var _ repository.IProfile = (*ProfileRepository)(nil)

func (r *ProfileRepository) GetByUserID(ctx context.Context, userID string) (*model.Profile, error) {
	p := &model.Profile{}
	err := r.db.QueryRowContext(ctx, profileSelect, userID).Scan(
		&p.ID, &p.UserID, &p.DisplayName, &p.Company, &p.AvatarURL, &p.LogoURL,
		&p.Plan, &p.UsageCount, &p.MonthlyLimit, &p.Language,
		&p.FacebookConnected, &p.FacebookPageID, &p.InstagramConnected, &p.InstagramAccountID,
		&p.TikTokConnected, &p.TikTokUsername, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, domainerrors.ErrProfileNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "select profile")
	}
	return p, nil
}

func (r *ProfileRepository) Create(ctx context.Context, p *model.Profile) error {
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	_, err := r.db.ExecContext(ctx, `INSERT INTO profiles (user_id, display_name, plan, usage_count, monthly_limit, language, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8) ON CONFLICT (user_id) DO NOTHING`,
		p.UserID, nullString(p.DisplayName), p.Plan, p.UsageCount, p.MonthlyLimit, p.Language, p.CreatedAt, p.UpdatedAt)
	return errors.Wrap(err, "insert profile")
}

func (r *ProfileRepository) Update(ctx context.Context, userID string, upd model.ProfileUpdate) (*model.Profile, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE profiles SET
		display_name=COALESCE($1, display_name),
		company=COALESCE($2, company),
		avatar_url=COALESCE($3, avatar_url),
		logo_url=COALESCE($4, logo_url),
		language=COALESCE($5, language),
		updated_at=$6
		WHERE user_id=$7`,
		upd.DisplayName, upd.Company, upd.AvatarURL, upd.LogoURL, upd.Language, time.Now().UTC(), userID)
	if err := profileAffected(res, err, "update profile"); err != nil {
		return nil, err
	}
	return r.GetByUserID(ctx, userID)
}

func (r *ProfileRepository) IncrementUsage(ctx context.Context, userID string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE profiles SET usage_count = usage_count + 1, updated_at=$1 WHERE user_id=$2`, time.Now().UTC(), userID)
	return profileAffected(res, err, "increment usage")
}

func (r *ProfileRepository) SetConnection(ctx context.Context, userID string, conn model.Connection) error {
	cols, ok := connectionColumns[conn.Platform]
	if !ok {
		return domainerrors.ErrUnsupported.WithDetails(conn.Platform)
	}
	q := `UPDATE profiles SET ` + cols[0] + `=$1, ` + cols[1] + `=$2, updated_at=$3 WHERE user_id=$4`
	res, err := r.db.ExecContext(ctx, q, conn.Connected, nullString(conn.AccountID), time.Now().UTC(), userID)
	return profileAffected(res, err, "set connection")
}

func profileAffected(res sql.Result, err error, op string) error {
	if err != nil {
		return errors.Wrap(err, op)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, op)
	}
	if n == 0 {
		return domainerrors.ErrProfileNotFound
	}
	return nil
}
