package persistence

import (
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestNewPostgreSQLDb(t *testing.T) {
	// Connects with whatever configuration the environment provides; a
	// missing database is expected in CI and only logged.
	db, err := NewPostgreSQLDB()
	if err != nil {
		t.Logf("connection failed in test env: %v", err)
		return
	}
	defer db.Close()
	require.NoError(t, db.Ping())
}

func TestEnsureSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	for range schemaDDL {
		mock.ExpectExec("CREATE").WillReturnResult(sqlmock.NewResult(0, 0))
	}
	require.NoError(t, EnsureSchema(db))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSchema_StopsOnFirstError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS profiles").WillReturnError(fmt.Errorf("permission denied"))
	err = EnsureSchema(db)
	require.Error(t, err)
	require.Contains(t, err.Error(), "ensure profiles")
	require.NoError(t, mock.ExpectationsWereMet())
}
