package repository

import (
	"context"
	"go-friendship/internal/friendship/model"
	"go-friendship/internal/pkg/mongo"
	"go-friendship/internal/pkg/snowflake"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	mongodrv "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	friendRequestCollection = "friend_request"
	friendshipCollection    = "friendship"

	// returned by standalone servers, which cannot run transactions
	illegalOperationCode = 20
)

var _ Store = (*MongoFriendRequestRepository)(nil)

type MongoFriendRequestRepository struct {
	m *mongo.Mongo
}

func NewMongoFriendRequestRepository(m *mongo.Mongo) *MongoFriendRequestRepository {
	return &MongoFriendRequestRepository{m}
}

func (f *MongoFriendRequestRepository) requests() *mongodrv.Collection {
	return f.m.Collection(friendRequestCollection)
}

func (f *MongoFriendRequestRepository) friendships() *mongodrv.Collection {
	return f.m.Collection(friendshipCollection)
}

// Migrate creates the unique indexes the lifecycle relies on.
func (f *MongoFriendRequestRepository) Migrate(ctx context.Context) error {
	_, err := f.requests().Indexes().CreateOne(ctx, mongodrv.IndexModel{
		Keys:    bson.D{{Key: "sender_id", Value: 1}, {Key: "recipient_id", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("idx_sender_recipient"),
	})
	if err != nil {
		return errors.Wrap(err, "Migrate")
	}
	_, err = f.friendships().Indexes().CreateOne(ctx, mongodrv.IndexModel{
		Keys:    bson.D{{Key: "user_a", Value: 1}, {Key: "user_b", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("idx_user_pair"),
	})
	return errors.Wrap(err, "Migrate")
}

func (f *MongoFriendRequestRepository) FindMatching(ctx context.Context, senderID, recipientID string) (*model.FriendRequest, error) {
	var req model.FriendRequest
	err := f.m.Wrap(ctx, "FindMatching", friendRequestCollection, func(ctx context.Context) error {
		return f.requests().FindOne(ctx, bson.M{"sender_id": senderID, "recipient_id": recipientID}).Decode(&req)
	})
	if err != nil {
		return nil, errors.Wrap(translateMongo(err), "FindMatching")
	}
	return &req, nil
}

func (f *MongoFriendRequestRepository) FindByID(ctx context.Context, id int64) (*model.FriendRequest, error) {
	var req model.FriendRequest
	err := f.m.Wrap(ctx, "FindByID", friendRequestCollection, func(ctx context.Context) error {
		return f.requests().FindOne(ctx, bson.M{"_id": id}).Decode(&req)
	})
	if err != nil {
		return nil, errors.Wrap(translateMongo(err), "FindByID")
	}
	return &req, nil
}

func (f *MongoFriendRequestRepository) Insert(ctx context.Context, data *model.FriendRequest) (int64, error) {
	now := time.Now()
	data.ID = snowflake.Generate()
	data.CreatedAt = now
	data.UpdatedAt = now
	err := f.m.Wrap(ctx, "Insert", friendRequestCollection, func(ctx context.Context) error {
		_, err := f.requests().InsertOne(ctx, data)
		return err
	})
	if err != nil {
		return 0, errors.Wrap(translateMongo(err), "Insert")
	}
	return data.ID, nil
}

func (f *MongoFriendRequestRepository) Update(ctx context.Context, id int64, from, to model.Status) error {
	err := f.m.Wrap(ctx, "Update", friendRequestCollection, func(ctx context.Context) error {
		return f.transition(ctx, id, from, to)
	})
	return errors.Wrap(err, "Update")
}

func (f *MongoFriendRequestRepository) AcceptAndBefriend(ctx context.Context, id int64, friendship *model.Friendship) error {
	friendship.ID = snowflake.Generate()
	friendship.CreatedAt = time.Now()
	err := f.m.Wrap(ctx, "AcceptAndBefriend", friendRequestCollection, func(ctx context.Context) error {
		sess, err := f.m.Client().StartSession()
		if err != nil {
			return err
		}
		defer sess.EndSession(ctx)
		_, err = sess.WithTransaction(ctx, func(sc mongodrv.SessionContext) (interface{}, error) {
			return nil, f.acceptAndBefriend(sc, id, friendship)
		})
		var cmdErr mongodrv.CommandError
		if errors.As(err, &cmdErr) && cmdErr.Code == illegalOperationCode {
			return f.acceptAndBefriend(ctx, id, friendship)
		}
		return err
	})
	return errors.Wrap(err, "AcceptAndBefriend")
}

// acceptAndBefriend upserts the friendship so that one already produced by a
// request in the opposite direction is left alone. A duplicate key error
// inside a transaction would abort it server-side.
func (f *MongoFriendRequestRepository) acceptAndBefriend(ctx context.Context, id int64, friendship *model.Friendship) error {
	if err := f.transition(ctx, id, model.StatusPending, model.StatusAccepted); err != nil {
		return err
	}
	_, err := f.friendships().UpdateOne(ctx,
		bson.M{"user_a": friendship.UserA, "user_b": friendship.UserB},
		bson.M{"$setOnInsert": bson.M{
			"_id":        friendship.ID,
			"request_id": friendship.RequestID,
			"created_at": friendship.CreatedAt,
		}},
		options.Update().SetUpsert(true),
	)
	return err
}

func (f *MongoFriendRequestRepository) Close() error {
	return f.m.Close()
}

func (f *MongoFriendRequestRepository) transition(ctx context.Context, id int64, from, to model.Status) error {
	res, err := f.requests().UpdateOne(ctx,
		bson.M{"_id": id, "status": from},
		bson.M{"$set": bson.M{"status": to, "updated_at": time.Now()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func translateMongo(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongodrv.ErrNoDocuments):
		return ErrNotFound
	case mongodrv.IsDuplicateKeyError(err):
		return ErrDuplicate
	}
	return err
}
