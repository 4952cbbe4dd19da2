package repository

import (
	"context"
	"go-friendship/internal/friendship/model"
	"go-friendship/internal/pkg/db"
	"go-friendship/internal/pkg/snowflake"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var _ Store = (*FriendRequestRepository)(nil)

type FriendRequestRepository struct {
	db *db.DB
}

func NewFriendRequestRepository(db *db.DB) *FriendRequestRepository {
	return &FriendRequestRepository{db}
}

func (f *FriendRequestRepository) Migrate() error {
	return errors.Wrap(f.db.AutoMigrate(&model.FriendRequest{}, &model.Friendship{}), "Migrate")
}

func (f *FriendRequestRepository) FindMatching(ctx context.Context, senderID, recipientID string) (*model.FriendRequest, error) {
	var req model.FriendRequest
	err := f.db.Wrap(ctx, "FindMatching", func(tx *gorm.DB) *gorm.DB {
		return tx.First(&req, "sender_id = ? AND recipient_id = ?", senderID, recipientID)
	})
	if err != nil {
		return nil, errors.Wrap(translate(err), "FindMatching")
	}
	return &req, nil
}

func (f *FriendRequestRepository) FindByID(ctx context.Context, id int64) (*model.FriendRequest, error) {
	var req model.FriendRequest
	err := f.db.Wrap(ctx, "FindByID", func(tx *gorm.DB) *gorm.DB {
		return tx.First(&req, "id = ?", id)
	})
	if err != nil {
		return nil, errors.Wrap(translate(err), "FindByID")
	}
	return &req, nil
}

func (f *FriendRequestRepository) Insert(ctx context.Context, data *model.FriendRequest) (int64, error) {
	data.ID = snowflake.Generate()
	err := f.db.Wrap(ctx, "Insert", func(tx *gorm.DB) *gorm.DB {
		return tx.Create(data)
	})
	if err != nil {
		return 0, errors.Wrap(translate(err), "Insert")
	}
	return data.ID, nil
}

func (f *FriendRequestRepository) Update(ctx context.Context, id int64, from, to model.Status) error {
	err := f.db.Transaction(ctx, "Update", func(tx *gorm.DB) error {
		return transition(tx, id, from, to)
	})
	if err != nil {
		return errors.Wrap(err, "Update")
	}
	return nil
}

func (f *FriendRequestRepository) AcceptAndBefriend(ctx context.Context, id int64, friendship *model.Friendship) error {
	err := f.db.Transaction(ctx, "AcceptAndBefriend", func(tx *gorm.DB) error {
		if err := transition(tx, id, model.StatusPending, model.StatusAccepted); err != nil {
			return err
		}
		friendship.ID = snowflake.Generate()
		// a request in the opposite direction may already have produced
		// this friendship
		return translate(tx.Clauses(clause.OnConflict{DoNothing: true}).Create(friendship).Error)
	})
	if err != nil {
		return errors.Wrap(err, "AcceptAndBefriend")
	}
	return nil
}

func (f *FriendRequestRepository) Close() error {
	return f.db.Close()
}

func transition(tx *gorm.DB, id int64, from, to model.Status) error {
	stmt := tx.Model(&model.FriendRequest{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{"status": to, "updated_at": time.Now()})
	if stmt.Error != nil {
		return stmt.Error
	}
	if stmt.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	}
	return err
}
