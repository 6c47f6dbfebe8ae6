package persistence

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	domainerrors "propgen/domain/errors"
	"propgen/domain/model"
)

var profileRowColumns = []string{"id", "user_id", "display_name", "company", "avatar_url", "logo_url", "plan", "usage_count", "monthly_limit", "language",
	"facebook_connected", "facebook_page_id", "instagram_connected", "instagram_account_id", "tiktok_connected", "tiktok_username", "created_at", "updated_at"}

func TestProfileRepository_GetByUserID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewProfileRepository(db)

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM profiles WHERE user_id=$1`)).WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(profileRowColumns).
			AddRow("id-1", "u1", "Jane", "", "", "", "free", 3, 10, "en", true, "page-1", false, "", false, "", now, now))

	p, err := repo.GetByUserID(context.Background(), "u1")
	require.NoError(t, err)
	require.Equal(t, 3, p.UsageCount)
	require.True(t, p.HasQuota())
	require.True(t, p.IsConnected(model.PlatformFacebook))
	require.False(t, p.IsConnected(model.PlatformInstagram))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepository_IncrementUsage(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewProfileRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`SET usage_count = usage_count + 1`)).WithArgs(sqlmock.AnyArg(), "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`SET usage_count = usage_count + 1`)).WithArgs(sqlmock.AnyArg(), "ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.IncrementUsage(context.Background(), "u1"))
	require.ErrorIs(t, repo.IncrementUsage(context.Background(), "ghost"), domainerrors.ErrProfileNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepository_SetConnection(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewProfileRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE profiles SET instagram_connected=$1, instagram_account_id=$2`)).
		WithArgs(true, "ig-9", sqlmock.AnyArg(), "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SetConnection(context.Background(), "u1", model.Connection{Platform: model.PlatformInstagram, Connected: true, AccountID: "ig-9"}))
	err = repo.SetConnection(context.Background(), "u1", model.Connection{Platform: "myspace"})
	require.ErrorIs(t, err, domainerrors.ErrUnsupported)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepository_Update(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewProfileRepository(db)

	name := "Jane Agent"
	now := time.Now().UTC()
	mock.ExpectExec(regexp.QuoteMeta(`display_name=COALESCE($1, display_name)`)).
		WithArgs(name, nil, nil, nil, nil, sqlmock.AnyArg(), "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FROM profiles").WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(profileRowColumns).
			AddRow("id-1", "u1", name, "", "", "", "free", 0, 10, "en", false, "", false, "", false, "", now, now))

	p, err := repo.Update(context.Background(), "u1", model.ProfileUpdate{DisplayName: &name})
	require.NoError(t, err)
	require.Equal(t, name, p.DisplayName)
	require.NoError(t, mock.ExpectationsWereMet())
}
