package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/stocklot/stocklot/internal/api/store"
	"github.com/stocklot/stocklot/pkg/listq"
)

// Driver failures are hard to provoke against a real database; a mock
// connection stands in for the broken one.
func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewStoreWithDB(db), mock
}

func TestGetUserByIDDriverError(t *testing.T) {
	t.Parallel()

	st, mock := newMockStore(t)
	mock.ExpectQuery("SELECT id, username, email").WillReturnError(sql.ErrConnDone)

	_, err := st.Users().GetUserByID(context.Background(), "u1")
	require.ErrorIs(t, err, sql.ErrConnDone)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRoleDriverError(t *testing.T) {
	t.Parallel()

	st, mock := newMockStore(t)
	boom := errors.New("disk I/O error")
	mock.ExpectExec("INSERT INTO roles").WillReturnError(boom)

	err := st.Roles().CreateRole(context.Background(), fixtureRole("X"))
	require.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestConflictMappingFromDriverMessage(t *testing.T) {
	t.Parallel()

	st, mock := newMockStore(t)
	mock.ExpectExec("INSERT INTO users").
		WillReturnError(errors.New("constraint failed: UNIQUE constraint failed: users.username"))

	err := st.Users().CreateUser(context.Background(), fixtureUser("alice"))
	require.ErrorIs(t, err, store.ErrAlreadyExists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListUsersCountError(t *testing.T) {
	t.Parallel()

	st, mock := newMockStore(t)
	mock.ExpectQuery("SELECT COUNT").WillReturnError(sql.ErrConnDone)

	_, _, _, err := st.Users().ListUsers(context.Background(), listq.Request{})
	require.ErrorIs(t, err, sql.ErrConnDone)
}

func TestWithTxBeginError(t *testing.T) {
	t.Parallel()

	st, mock := newMockStore(t)
	mock.ExpectBegin().WillReturnError(sql.ErrConnDone)

	err := st.WithTx(context.Background(), func(tx store.Tx) error { return nil })
	require.ErrorIs(t, err, sql.ErrConnDone)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	t.Parallel()

	st, mock := newMockStore(t)
	boom := errors.New("boom")

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := st.WithTx(context.Background(), func(tx store.Tx) error { return boom })
	require.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}
