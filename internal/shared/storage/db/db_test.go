package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

// useMockDB routes openDB to a sqlmock handle and clears the singleton around the test.
func useMockDB(t *testing.T, openErrs ...error) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	prev := openDB
	calls := 0
	openDB = func(driverName, dsn string) (*sql.DB, error) {
		calls++
		if calls <= len(openErrs) && openErrs[calls-1] != nil {
			return nil, openErrs[calls-1]
		}
		return mockDB, nil
	}
	resetSingleton()
	t.Cleanup(func() {
		openDB = prev
		resetSingleton()
		_ = mockDB.Close()
	})
	return mockDB, mock
}

func resetSingleton() {
	singletonMu.Lock()
	singletonDB = nil
	singletonInFly = false
	singletonMu.Unlock()
}

func TestGetSingletonReturnsSamePointer(t *testing.T) {
	useMockDB(t)

	db1, err := GetSingleton(context.Background(), "postgres://ignored", DefaultLambdaOptions())
	require.NoError(t, err)
	db2, err := GetSingleton(context.Background(), "postgres://ignored", DefaultLambdaOptions())
	require.NoError(t, err)
	require.Same(t, db1, db2)
}

func TestOptionsFromEnvAppliesOverrides(t *testing.T) {
	useMockDB(t)

	t.Setenv("DB_MAX_OPEN_CONNS", "7")
	t.Setenv("DB_MAX_IDLE_CONNS", "3")
	t.Setenv("DB_CONN_MAX_LIFETIME", "20m")
	t.Setenv("DB_CONN_MAX_IDLE_TIME", "45s")
	t.Setenv("DB_PING_TIMEOUT", "1s")

	opts := OptionsFromEnv(DefaultServerOptions())
	require.Equal(t, Options{
		MaxOpenConns:    7,
		MaxIdleConns:    3,
		ConnMaxLifetime: 20 * time.Minute,
		ConnMaxIdleTime: 45 * time.Second,
		PingTimeout:     time.Second,
	}, opts)

	database, err := Connect(context.Background(), "postgres://ignored", opts)
	require.NoError(t, err)
	require.Equal(t, 7, database.Stats().MaxOpenConnections)
}

func TestOptionsFromEnvIgnoresGarbage(t *testing.T) {
	t.Setenv("DB_MAX_OPEN_CONNS", "many")
	t.Setenv("DB_PING_TIMEOUT", "soon")

	require.Equal(t, DefaultMigrateOptions(), OptionsFromEnv(DefaultMigrateOptions()))
}

func TestConnectRequiresURL(t *testing.T) {
	_, err := Connect(context.Background(), "  ", DefaultServerOptions())
	require.Error(t, err)
}

func TestGetSingletonRetriesAfterFailure(t *testing.T) {
	useMockDB(t, driver.ErrBadConn)

	_, err := GetSingleton(context.Background(), "postgres://ignored", DefaultLambdaOptions())
	require.ErrorIs(t, err, driver.ErrBadConn)

	db2, err := GetSingleton(context.Background(), "postgres://ignored", DefaultLambdaOptions())
	require.NoError(t, err, "second call retries")
	require.NotNil(t, db2)
}

func TestPingRequiresDatabase(t *testing.T) {
	require.Error(t, Ping(context.Background(), nil, time.Second))
}

func TestWithTxCommitsAndRollsBack(t *testing.T) {
	database, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO messages").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()
	err = WithTx(context.Background(), database, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(context.Background(), "INSERT INTO messages (id) VALUES ($1)", "m-1")
		return err
	})
	require.NoError(t, err)

	wantErr := errors.New("conversation vanished")
	mock.ExpectBegin()
	mock.ExpectRollback()
	err = WithTx(context.Background(), database, func(tx *sql.Tx) error { return wantErr })
	require.ErrorIs(t, err, wantErr)

	mock.ExpectBegin().WillReturnError(errors.New("pool exhausted"))
	err = WithTx(context.Background(), database, func(tx *sql.Tx) error { return nil })
	require.ErrorContains(t, err, "begin tx")

	require.NoError(t, mock.ExpectationsWereMet())
}
