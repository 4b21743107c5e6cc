package utils

import (
	"github.com/unretain/polyxmobile-sub002/models/postgres"
	"github.com/unretain/polyxmobile-sub002/models/realtime"

	"gorm.io/gorm"
)

// FriendIDs returns the user ids on the other side of every friendship
// row that mentions userID.
func FriendIDs(db *gorm.DB, userID string) ([]string, error) {
	var friendships []postgres.Friendship
	if err := db.Where("user_id1 = ? OR user_id2 = ?", userID, userID).Find(&friendships).Error; err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(friendships))
	for _, f := range friendships {
		if f.UserID1 == userID {
			ids = append(ids, f.UserID2)
		} else {
			ids = append(ids, f.UserID1)
		}
	}
	return ids, nil
}

// AreFriends checks whether a symmetric friendship row exists for the
// pair, in either column order.
func AreFriends(db *gorm.DB, userID1, userID2 string) (bool, error) {
	var count int64
	err := db.Model(&postgres.Friendship{}).
		Where("(user_id1 = ? AND user_id2 = ?) OR (user_id1 = ? AND user_id2 = ?)",
			userID1, userID2, userID2, userID1).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// UserSnapshotByID loads the display view of a user.
func UserSnapshotByID(db *gorm.DB, userID string) (realtime.UserSnapshot, error) {
	var user postgres.User
	if err := db.Where("id = ?", userID).First(&user).Error; err != nil {
		return realtime.UserSnapshot{}, err
	}
	return realtime.UserSnapshot{
		UserID:   user.ID,
		Username: user.Username,
		Name:     user.Name,
		Image:    user.Image,
	}, nil
}

// FriendGraph adapts the gorm store to the presence directory's
// FriendSource interface.
type FriendGraph struct {
	DB *gorm.DB
}

func (g FriendGraph) FriendIDs(userID string) ([]string, error) {
	return FriendIDs(g.DB, userID)
}
