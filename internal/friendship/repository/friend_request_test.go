package repository

import (
	"context"
	"go-friendship/internal/friendship/model"
	"go-friendship/internal/pkg/db"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	mysqldrv "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormmysql "gorm.io/driver/mysql"
)

var friendRequestColumns = []string{"id", "sender_id", "recipient_id", "status", "created_at", "updated_at"}

func newMockRepository(t *testing.T) (*FriendRequestRepository, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = sqlDB.Close()
	})
	dialector := gormmysql.New(gormmysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true})
	return NewFriendRequestRepository(db.Open(dialector, db.Config{})), mock
}

func TestFriendRequestRepositoryInsert(t *testing.T) {
	f, mock := newMockRepository(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO .friend_request.").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	req := &model.FriendRequest{SenderID: "u1", RecipientID: "u2", Status: model.StatusPending}
	id, err := f.Insert(context.Background(), req)
	require.NoError(t, err)
	assert.NotZero(t, id)
	assert.Equal(t, id, req.ID)
}

func TestFriendRequestRepositoryInsertDuplicate(t *testing.T) {
	f, mock := newMockRepository(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO .friend_request.").
		WillReturnError(&mysqldrv.MySQLError{Number: 1062, Message: "Duplicate entry 'u1-u2' for key 'idx_sender_recipient'"})
	mock.ExpectRollback()

	_, err := f.Insert(context.Background(), &model.FriendRequest{SenderID: "u1", RecipientID: "u2", Status: model.StatusPending})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestFriendRequestRepositoryFind(t *testing.T) {
	f, mock := newMockRepository(t)
	ctx := context.Background()
	now := time.Now()

	mock.ExpectQuery(`SELECT \* FROM .friend_request. WHERE sender_id = \? AND recipient_id = \?`).
		WillReturnRows(sqlmock.NewRows(friendRequestColumns).
			AddRow(int64(42), "u1", "u2", int64(model.StatusPending), now, now))
	mock.ExpectQuery(`SELECT \* FROM .friend_request. WHERE id = \?`).
		WillReturnRows(sqlmock.NewRows(friendRequestColumns))

	req, err := f.FindMatching(ctx, "u1", "u2")
	require.NoError(t, err)
	assert.Equal(t, int64(42), req.ID)
	assert.Equal(t, model.StatusPending, req.Status)

	_, err = f.FindByID(ctx, 43)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFriendRequestRepositoryUpdateOnTerminal(t *testing.T) {
	f, mock := newMockRepository(t)

	// the status filter matches nothing once the request left pending
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE .friend_request. SET .* WHERE id = \? AND status = \?`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := f.Update(context.Background(), 42, model.StatusPending, model.StatusRejected)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFriendRequestRepositoryAcceptAndBefriend(t *testing.T) {
	f, mock := newMockRepository(t)
	ctx := context.Background()

	// u1 -> u2 accepted first
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE .friend_request. SET .* WHERE id = \? AND status = \?`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO .friendship. .* ON DUPLICATE KEY UPDATE").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	// then u2 -> u1: the pair already exists, the insert is a no-op
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE .friend_request. SET .* WHERE id = \? AND status = \?`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO .friendship. .* ON DUPLICATE KEY UPDATE").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	require.NoError(t, f.AcceptAndBefriend(ctx, 1, model.NewFriendship("u1", "u2", 1)))
	require.NoError(t, f.AcceptAndBefriend(ctx, 2, model.NewFriendship("u2", "u1", 2)))
}

func TestFriendRequestRepositoryAcceptNotPending(t *testing.T) {
	f, mock := newMockRepository(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE .friend_request. SET .* WHERE id = \? AND status = \?`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := f.AcceptAndBefriend(context.Background(), 42, model.NewFriendship("u1", "u2", 42))
	assert.ErrorIs(t, err, ErrNotFound)
}
