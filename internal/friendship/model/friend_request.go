package model

import (
	"fmt"
	"strings"
	"time"
)

type Status int64

const (
	StatusPending Status = iota + 1
	StatusAccepted
	StatusRejected
)

var statusNames = map[Status]string{
	StatusPending:  "pending",
	StatusAccepted: "accepted",
	StatusRejected: "rejected",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("status(%d)", int64(s))
}

// Terminal reports whether no further transition is defined out of s.
func (s Status) Terminal() bool {
	return s == StatusAccepted || s == StatusRejected
}

func (s Status) MarshalText() ([]byte, error) {
	if _, ok := statusNames[s]; !ok {
		return nil, fmt.Errorf("unknown friend request status %d", int64(s))
	}
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(b []byte) error {
	name := strings.ToLower(string(b))
	for k, v := range statusNames {
		if v == name {
			*s = k
			return nil
		}
	}
	return fmt.Errorf("unknown friend request status %q", string(b))
}

// FriendRequest is a directional proposal from SenderID to RecipientID.
// Only one may exist per ordered pair.
type FriendRequest struct {
	ID          int64     `gorm:"column:id;primaryKey;autoIncrement:false" bson:"_id" json:"id,string"`
	SenderID    string    `gorm:"column:sender_id;type:varchar(64);not null;uniqueIndex:idx_sender_recipient,priority:1" bson:"sender_id" json:"senderId"`
	RecipientID string    `gorm:"column:recipient_id;type:varchar(64);not null;uniqueIndex:idx_sender_recipient,priority:2" bson:"recipient_id" json:"recipientId"`
	Status      Status    `gorm:"column:status;not null;index" bson:"status" json:"status"`
	CreatedAt   time.Time `gorm:"column:created_at" bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"column:updated_at" bson:"updated_at" json:"updatedAt"`
}

func (FriendRequest) TableName() string {
	return "friend_request"
}
