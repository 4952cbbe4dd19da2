package repository

import (
	"context"
	"errors"
	"go-friendship/internal/friendship/model"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// Store is the persistence port of the friend request lifecycle.
type Store interface {
	// FindMatching returns the request for the ordered pair, whatever its status.
	FindMatching(ctx context.Context, senderID, recipientID string) (*model.FriendRequest, error)
	FindByID(ctx context.Context, id int64) (*model.FriendRequest, error)
	// Insert assigns the id. A second request for the same pair fails with ErrDuplicate.
	Insert(ctx context.Context, data *model.FriendRequest) (int64, error)
	// Update moves request id from status from to status to, returning
	// ErrNotFound when no request in state from matches.
	Update(ctx context.Context, id int64, from, to model.Status) error
	// AcceptAndBefriend is Update(id, Pending, Accepted) plus the insert of
	// the resulting friendship, applied together.
	AcceptAndBefriend(ctx context.Context, id int64, friendship *model.Friendship) error
	Close() error
}
