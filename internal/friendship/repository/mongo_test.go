package repository

import (
	"context"
	"go-friendship/internal/friendship/model"
	pkgmongo "go-friendship/internal/pkg/mongo"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func updateResponse(matched, modified int) bson.D {
	return mtest.CreateSuccessResponse(
		bson.E{Key: "n", Value: matched},
		bson.E{Key: "nModified", Value: modified},
	)
}

func TestMongoRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("insert", func(mt *mtest.T) {
		f := NewMongoFriendRequestRepository(pkgmongo.FromDatabase(mt.DB))
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		req := &model.FriendRequest{SenderID: "u1", RecipientID: "u2", Status: model.StatusPending}
		id, err := f.Insert(context.Background(), req)
		require.NoError(mt, err)
		assert.NotZero(mt, id)
		assert.False(mt, req.CreatedAt.IsZero())
	})

	mt.Run("insert duplicate", func(mt *mtest.T) {
		f := NewMongoFriendRequestRepository(pkgmongo.FromDatabase(mt.DB))
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: friend_request index: idx_sender_recipient",
		}))

		_, err := f.Insert(context.Background(), &model.FriendRequest{SenderID: "u1", RecipientID: "u2", Status: model.StatusPending})
		assert.ErrorIs(mt, err, ErrDuplicate)
	})

	mt.Run("find", func(mt *mtest.T) {
		f := NewMongoFriendRequestRepository(pkgmongo.FromDatabase(mt.DB))
		ns := mt.DB.Name() + "." + friendRequestCollection
		now := time.Now().UTC().Truncate(time.Millisecond)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
				{Key: "_id", Value: int64(42)},
				{Key: "sender_id", Value: "u1"},
				{Key: "recipient_id", Value: "u2"},
				{Key: "status", Value: int64(model.StatusAccepted)},
				{Key: "created_at", Value: now},
				{Key: "updated_at", Value: now},
			}),
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch),
		)

		req, err := f.FindMatching(context.Background(), "u1", "u2")
		require.NoError(mt, err)
		assert.Equal(mt, int64(42), req.ID)
		assert.Equal(mt, "u2", req.RecipientID)
		assert.Equal(mt, model.StatusAccepted, req.Status)

		_, err = f.FindByID(context.Background(), 43)
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("update on terminal", func(mt *mtest.T) {
		f := NewMongoFriendRequestRepository(pkgmongo.FromDatabase(mt.DB))
		mt.AddMockResponses(updateResponse(0, 0))

		err := f.Update(context.Background(), 42, model.StatusPending, model.StatusRejected)
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("accept both directions", func(mt *mtest.T) {
		f := NewMongoFriendRequestRepository(pkgmongo.FromDatabase(mt.DB))
		ctx := context.Background()
		mt.AddMockResponses(
			// u1 -> u2: request transition, friendship upserted
			updateResponse(1, 1),
			mtest.CreateSuccessResponse(
				bson.E{Key: "n", Value: 1},
				bson.E{Key: "nModified", Value: 0},
				bson.E{Key: "upserted", Value: bson.A{bson.D{{Key: "index", Value: 0}, {Key: "_id", Value: int64(7)}}}},
			),
			// u2 -> u1: request transition, friendship already there
			updateResponse(1, 1),
			updateResponse(1, 0),
		)

		require.NoError(mt, f.acceptAndBefriend(ctx, 1, model.NewFriendship("u1", "u2", 1)))
		require.NoError(mt, f.acceptAndBefriend(ctx, 2, model.NewFriendship("u2", "u1", 2)))
	})

	mt.Run("accept not pending", func(mt *mtest.T) {
		f := NewMongoFriendRequestRepository(pkgmongo.FromDatabase(mt.DB))
		mt.AddMockResponses(updateResponse(0, 0))

		err := f.acceptAndBefriend(context.Background(), 42, model.NewFriendship("u1", "u2", 42))
		assert.ErrorIs(mt, err, ErrNotFound)
	})
}
