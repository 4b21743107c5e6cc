package postgres

import (
	"errors"
	"regexp"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

/*
 * 'User' contains the blueprint definition of a user identity record.
 * Profiles are created/updated through the REST surface; the realtime
 * core only reads them.
 */
type User struct {
	ID           string         `gorm:"primaryKey;size:50;not null"`
	Username     string         `gorm:"size:50;not null;uniqueIndex"`
	Name         string         `gorm:"size:100"`
	Image        string         `gorm:"size:255"`
	PasswordHash string         `gorm:"size:255;not null"`
	Settings     datatypes.JSON `gorm:"type:jsonb;default:'{}'"`
	MemberSince  time.Time      `gorm:"default:CURRENT_TIMESTAMP"`

	// Relationships
	Friendships1  []Friendship        `gorm:"foreignKey:UserID1"`
	Friendships2  []Friendship        `gorm:"foreignKey:UserID2"`
	SentRequests  []FriendshipRequest `gorm:"foreignKey:SenderID"`
	InboxRequests []FriendshipRequest `gorm:"foreignKey:RecipientID"`
}

// Usernames are 1-9 lowercase letters, nothing else.
var usernameRe = regexp.MustCompile(`^[a-z]{1,9}$`)

func ValidUsername(username string) bool {
	return usernameRe.MatchString(username)
}

// GORM hook to reject malformed usernames before they hit the database
func (u *User) BeforeSave(tx *gorm.DB) error {
	if !ValidUsername(u.Username) {
		return errors.New("username must be 1-9 lowercase letters")
	}
	return nil
}
