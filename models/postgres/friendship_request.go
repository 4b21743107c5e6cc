package postgres

import (
	"time"
)

/*
 * 'FriendshipRequest' is a pending friend request. Accepting one creates
 * a Friendship row and deletes the request.
 */
type FriendshipRequest struct {
	SenderID    string    `gorm:"primaryKey;size:50;not null"`
	RecipientID string    `gorm:"primaryKey;size:50;not null"`
	CreatedAt   time.Time `gorm:"default:CURRENT_TIMESTAMP"`

	// Relationships
	Sender    User `gorm:"foreignKey:SenderID;constraint:OnDelete:CASCADE"`
	Recipient User `gorm:"foreignKey:RecipientID;constraint:OnDelete:CASCADE"`
}
