package postgres

import (
	"errors"

	"gorm.io/gorm"
)

/*
 * 'Friendship' represents a symmetric friendship between two users.
 * A pair is stored once, in whichever order it was accepted; readers
 * must query both columns.
 */
type Friendship struct {
	UserID1 string `gorm:"primaryKey;size:50;index:idx_friendships_user2"`
	UserID2 string `gorm:"primaryKey;size:50"`

	// Relationships
	User1 User `gorm:"foreignKey:UserID1;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	User2 User `gorm:"foreignKey:UserID2;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

// GORM hook to ensure both sides of the friendship are different users
func (f *Friendship) BeforeSave(tx *gorm.DB) error {
	if f.UserID1 == f.UserID2 {
		return errors.New("cannot create a friendship with oneself")
	}
	return nil
}
