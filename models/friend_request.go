package models

import "time"

type FriendRequestStatus string

const (
	FriendRequestStatusPending  FriendRequestStatus = "pending"
	FriendRequestStatusAccepted FriendRequestStatus = "accepted"
	FriendRequestStatusRejected FriendRequestStatus = "rejected"
)

type FriendRequest struct {
	ID          string              `json:"_id" gorm:"primaryKey;size:191"`
	SenderID    string              `json:"senderId" gorm:"not null;size:191;index:idx_friend_requests_pair"`
	RecipientID string              `json:"recipientId" gorm:"not null;size:191;index:idx_friend_requests_pair;index"`
	Status      FriendRequestStatus `json:"status" gorm:"not null;default:'pending';size:20;index"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`

	Sender    *UserSummary `json:"sender,omitempty" gorm:"foreignKey:SenderID"`
	Recipient *UserSummary `json:"recipient,omitempty" gorm:"foreignKey:RecipientID"`
}

// Friendship is one directed side of a symmetric friendship. Accepting a
// request writes both sides.
type Friendship struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    string    `json:"userId" gorm:"not null;size:191;uniqueIndex:idx_friendships_pair"`
	FriendID  string    `json:"friendId" gorm:"not null;size:191;uniqueIndex:idx_friendships_pair;index"`
	CreatedAt time.Time `json:"createdAt"`
}
