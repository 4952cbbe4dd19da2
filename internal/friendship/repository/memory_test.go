package repository

import (
	"context"
	"go-friendship/internal/friendship/model"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreInsertAndFind(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.FindMatching(ctx, "u1", "u2")
	assert.ErrorIs(t, err, ErrNotFound)

	req := &model.FriendRequest{SenderID: "u1", RecipientID: "u2", Status: model.StatusPending}
	id, err := s.Insert(ctx, req)
	require.NoError(t, err)
	assert.NotZero(t, id)
	assert.Equal(t, id, req.ID)

	got, err := s.FindMatching(ctx, "u1", "u2")
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)

	// ordered pair: the reverse direction is a different request
	_, err = s.FindMatching(ctx, "u2", "u1")
	assert.ErrorIs(t, err, ErrNotFound)

	got, err = s.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, got.Status)

	_, err = s.FindByID(ctx, id+1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreRejectsDuplicatePair(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	var (
		wg  sync.WaitGroup
		ok  atomic.Int32
		dup atomic.Int32
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Insert(ctx, &model.FriendRequest{SenderID: "u1", RecipientID: "u2", Status: model.StatusPending})
			if err == nil {
				ok.Add(1)
			} else if assert.ErrorIs(t, err, ErrDuplicate) {
				dup.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), ok.Load())
	assert.Equal(t, int32(15), dup.Load())
}

func TestMemoryStoreUpdateIsCompareAndSet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	id, err := s.Insert(ctx, &model.FriendRequest{SenderID: "u1", RecipientID: "u2", Status: model.StatusPending})
	require.NoError(t, err)

	require.NoError(t, s.Update(ctx, id, model.StatusPending, model.StatusRejected))
	assert.ErrorIs(t, s.Update(ctx, id, model.StatusPending, model.StatusAccepted), ErrNotFound)
	assert.ErrorIs(t, s.Update(ctx, 12345, model.StatusPending, model.StatusAccepted), ErrNotFound)

	got, err := s.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusRejected, got.Status)
}

func TestMemoryStoreAcceptAndBefriend(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	id1, err := s.Insert(ctx, &model.FriendRequest{SenderID: "u1", RecipientID: "u2", Status: model.StatusPending})
	require.NoError(t, err)
	id2, err := s.Insert(ctx, &model.FriendRequest{SenderID: "u2", RecipientID: "u1", Status: model.StatusPending})
	require.NoError(t, err)

	require.NoError(t, s.AcceptAndBefriend(ctx, id1, model.NewFriendship("u1", "u2", id1)))
	f, ok := s.Friendship("u2", "u1")
	require.True(t, ok)
	assert.Equal(t, id1, f.RequestID)

	// the reverse request also accepts, the friendship is not duplicated
	require.NoError(t, s.AcceptAndBefriend(ctx, id2, model.NewFriendship("u2", "u1", id2)))
	f, ok = s.Friendship("u1", "u2")
	require.True(t, ok)
	assert.Equal(t, id1, f.RequestID)

	assert.ErrorIs(t, s.AcceptAndBefriend(ctx, id1, model.NewFriendship("u1", "u2", id1)), ErrNotFound)
}
