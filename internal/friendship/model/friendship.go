package model

import "time"

// Friendship is the mutual relationship produced by an accepted request.
// The pair is stored with UserA < UserB.
type Friendship struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement:false" bson:"_id" json:"id,string"`
	UserA     string    `gorm:"column:user_a;type:varchar(64);not null;uniqueIndex:idx_user_pair,priority:1" bson:"user_a" json:"userA"`
	UserB     string    `gorm:"column:user_b;type:varchar(64);not null;uniqueIndex:idx_user_pair,priority:2" bson:"user_b" json:"userB"`
	RequestID int64     `gorm:"column:request_id;not null" bson:"request_id" json:"requestId,string"`
	CreatedAt time.Time `gorm:"column:created_at" bson:"created_at" json:"createdAt"`
}

func (Friendship) TableName() string {
	return "friendship"
}

func NewFriendship(userA, userB string, requestID int64) *Friendship {
	if userB < userA {
		userA, userB = userB, userA
	}
	return &Friendship{
		UserA:     userA,
		UserB:     userB,
		RequestID: requestID,
	}
}
