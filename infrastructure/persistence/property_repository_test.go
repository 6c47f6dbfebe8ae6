package persistence

import (
	"context"
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	domainerrors "propgen/domain/errors"
	"propgen/domain/model"
)

var propertyRowColumns = []string{"id", "user_id", "source_url", "title", "description", "price", "address", "images", "agent",
	"generated_images", "captions", "hashtags", "publish_state", "status", "created_at", "updated_at"}

func TestPropertyRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPropertyRepository(db)

	args := make([]driver.Value, 0, 16)
	for i := 0; i < 16; i++ {
		args = append(args, sqlmock.AnyArg())
	}
	args[0], args[1], args[13] = "p1", "u1", "processed"
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO properties`)).WithArgs(args...).WillReturnResult(sqlmock.NewResult(0, 1))

	p := &model.Property{ID: "p1", UserID: "u1", SourceURL: "https://example.com/l/1", Title: "Home",
		Images: []string{"https://example.com/a.jpg"}, Status: model.PropertyStatusProcessed}
	require.NoError(t, repo.Create(context.Background(), p))
	require.False(t, p.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPropertyRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPropertyRepository(db)

	now := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM properties WHERE id=$1 AND user_id=$2`)).WithArgs("p1", "u1").
		WillReturnRows(sqlmock.NewRows(propertyRowColumns).AddRow(
			"p1", "u1", "https://example.com/l/1", "Home", "Nice", "$750,000", "1 Main St",
			`{"https://example.com/a.jpg","https://example.com/b.jpg"}`,
			[]byte(`{"name":"Jane","phone":"555-123-4567","email":"j@x.io"}`),
			[]byte(`{"square":"https://cdn/x.png"}`),
			[]byte(`{"facebook":"hello"}`),
			`{sale,home}`,
			[]byte(`{"facebook":{"post_id":"9","published_at":"2025-02-02T00:00:00Z"}}`),
			"processed", now, now))

	p, err := repo.GetByID(context.Background(), "p1", "u1")
	require.NoError(t, err)
	require.Equal(t, []string{"https://example.com/a.jpg", "https://example.com/b.jpg"}, p.Images)
	require.Equal(t, "Jane", p.Agent.Name)
	require.Equal(t, "https://cdn/x.png", p.GeneratedImages["square"])
	require.Equal(t, "hello", p.Captions["facebook"])
	require.Equal(t, []string{"sale", "home"}, p.Hashtags)
	require.Equal(t, "9", p.PublishState["facebook"].PostID)
	require.Equal(t, model.PropertyStatusProcessed, p.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPropertyRepository_GetByID_OtherUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPropertyRepository(db)

	mock.ExpectQuery("FROM properties").WithArgs("p1", "intruder").WillReturnRows(sqlmock.NewRows(propertyRowColumns))

	_, err = repo.GetByID(context.Background(), "p1", "intruder")
	require.ErrorIs(t, err, domainerrors.ErrPropertyNotFound)
}

func TestPropertyRepository_MergeGeneratedImages(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPropertyRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`generated_images = COALESCE(generated_images, '{}'::jsonb) || $1::jsonb`)).
		WithArgs([]byte(`{"story":"https://cdn/s.png"}`), sqlmock.AnyArg(), "p1", "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE properties").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.MergeGeneratedImages(context.Background(), "p1", "u1", map[string]string{"story": "https://cdn/s.png"}))
	err = repo.MergeGeneratedImages(context.Background(), "missing", "u1", map[string]string{"story": "x"})
	require.ErrorIs(t, err, domainerrors.ErrPropertyNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPropertyRepository_RecordPublish(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPropertyRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`jsonb_build_object($1::text, $2::jsonb)`)).
		WithArgs("instagram", sqlmock.AnyArg(), sqlmock.AnyArg(), "p1", "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.RecordPublish(context.Background(), "p1", "u1", "instagram", model.PublishState{PostID: "ig-1", PublishedAt: time.Now()})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPropertyRepository_ListByUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPropertyRepository(db)

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY created_at DESC LIMIT $2 OFFSET $3`)).WithArgs("u1", 20, 0).
		WillReturnRows(sqlmock.NewRows(propertyRowColumns).
			AddRow("p2", "u1", "https://e.com/2", "B", "d", "p", "a", `{}`, nil, nil, nil, `{}`, nil, "processed", now, now).
			AddRow("p1", "u1", "https://e.com/1", "A", "d", "p", "a", `{}`, nil, nil, nil, `{}`, nil, "processed", now, now))

	list, err := repo.ListByUser(context.Background(), "u1", 20, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "p2", list[0].ID)
	require.Nil(t, list[0].Agent)
	require.NotNil(t, list[0].Captions)
	require.NoError(t, mock.ExpectationsWereMet())
}
