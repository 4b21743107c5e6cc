package controllers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	models "github.com/unretain/polyxmobile-sub002/models/postgres"
	"github.com/unretain/polyxmobile-sub002/services/presence"
	"github.com/unretain/polyxmobile-sub002/services/redis"
	"github.com/unretain/polyxmobile-sub002/utils"
)

// The friend graph is mutated only here, through the request flow; the
// realtime core reads it and gets told about every change so presence
// views stay current.

// @Summary List my friends
// @Description Returns the friend list decorated with live presence
// @Tags friends
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Success 200 {array} object{user_id=string,username=string,online=bool}
// @Failure 500 {object} object{error=string}
// @Router /auth/friends [get]
// @Security ApiKeyAuth
func ListFriends(db *gorm.DB, redisClient *redis.RedisClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("userID")

		friendIDs, err := utils.FriendIDs(db, userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching friendships"})
			return
		}

		var friends []models.User
		if len(friendIDs) > 0 {
			if err := db.Where("id IN (?)", friendIDs).Find(&friends).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching friends data"})
				return
			}
		}

		live, err := redisClient.GetManyPresence(friendIDs)
		if err != nil {
			log.Printf("[FRIENDS-ERROR] presence batch: %v", err)
			live = nil
		}

		out := make([]gin.H, len(friends))
		for i, f := range friends {
			entry := gin.H{
				"user_id":  f.ID,
				"username": f.Username,
				"name":     f.Name,
				"image":    f.Image,
				"online":   false,
			}
			if rec, ok := live[f.ID]; ok {
				entry["online"] = true
				if rec.LobbyID != "" {
					entry["lobby_id"] = rec.LobbyID
					entry["lobby_name"] = rec.LobbyName
				}
			}
			out[i] = entry
		}
		c.JSON(http.StatusOK, out)
	}
}

// @Summary List my pending friend requests
// @Tags friends
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Success 200 {array} object{user_id=string,username=string}
// @Router /auth/friendship_requests [get]
// @Security ApiKeyAuth
func GetAllFriendshipRequests(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("userID")

		var requests []models.FriendshipRequest
		if err := db.Preload("Sender").Where("recipient_id = ?", userID).Find(&requests).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching friendship requests"})
			return
		}

		out := make([]gin.H, len(requests))
		for i, r := range requests {
			out[i] = gin.H{
				"user_id":    r.SenderID,
				"username":   r.Sender.Username,
				"name":       r.Sender.Name,
				"image":      r.Sender.Image,
				"created_at": r.CreatedAt,
			}
		}
		c.JSON(http.StatusOK, out)
	}
}

// @Summary Send a friend request
// @Tags friends
// @Accept x-www-form-urlencoded
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param friendUsername formData string true "Username to befriend"
// @Success 200 {object} object{message=string}
// @Failure 400 {object} object{error=string}
// @Router /auth/sendFriendshipRequest [post]
// @Security ApiKeyAuth
func SendFriendshipRequest(db *gorm.DB, directory *presence.Directory) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("userID")
		friendUsername := c.PostForm("friendUsername")
		if friendUsername == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "friendUsername is required"})
			return
		}

		var friend models.User
		if err := db.Where("username = ?", friendUsername).First(&friend).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		if friend.ID == userID {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot befriend yourself"})
			return
		}

		already, err := utils.AreFriends(db, userID, friend.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error checking friendship"})
			return
		}
		if already {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Already friends"})
			return
		}

		request := models.FriendshipRequest{SenderID: userID, RecipientID: friend.ID}
		if err := db.Where(&request).FirstOrCreate(&request).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating friendship request"})
			return
		}

		if sender, err := utils.UserSnapshotByID(db, userID); err == nil {
			directory.FriendRequestReceived(friend.ID, sender)
		}
		c.JSON(http.StatusOK, gin.H{"message": "Friendship request sent"})
	}
}

// @Summary Accept a friend request
// @Description Creates the friendship and notifies both users in
// realtime so their presence views refresh
// @Tags friends
// @Accept x-www-form-urlencoded
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param friendId formData string true "Sender user id"
// @Success 200 {object} object{message=string}
// @Failure 404 {object} object{error=string}
// @Router /auth/acceptFriendshipRequest [post]
// @Security ApiKeyAuth
func AcceptFriendshipRequest(db *gorm.DB, directory *presence.Directory) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("userID")
		friendID := c.PostForm("friendId")

		var request models.FriendshipRequest
		if err := db.Where("sender_id = ? AND recipient_id = ?", friendID, userID).First(&request).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Friendship request not found"})
			return
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&models.Friendship{UserID1: friendID, UserID2: userID}).Error; err != nil {
				return err
			}
			return tx.Where("sender_id = ? AND recipient_id = ?", friendID, userID).
				Delete(&models.FriendshipRequest{}).Error
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error accepting friendship request"})
			return
		}

		me, errMe := utils.UserSnapshotByID(db, userID)
		them, errThem := utils.UserSnapshotByID(db, friendID)
		if errMe == nil && errThem == nil {
			directory.FriendAdded(me, them)
		}
		c.JSON(http.StatusOK, gin.H{"message": "Friendship created"})
	}
}

// @Summary Decline a friend request
// @Tags friends
// @Accept x-www-form-urlencoded
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param friendId formData string true "Sender user id"
// @Success 200 {object} object{message=string}
// @Router /auth/declineFriendshipRequest [delete]
// @Security ApiKeyAuth
func DeclineFriendshipRequest(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("userID")
		friendID := c.PostForm("friendId")

		result := db.Where("sender_id = ? AND recipient_id = ?", friendID, userID).
			Delete(&models.FriendshipRequest{})
		if result.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error declining friendship request"})
			return
		}
		if result.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Friendship request not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Friendship request declined"})
	}
}

// @Summary Remove a friend
// @Description Deletes the friendship and notifies both users
// @Tags friends
// @Accept x-www-form-urlencoded
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param friendId formData string true "Friend user id"
// @Success 200 {object} object{message=string}
// @Failure 404 {object} object{error=string}
// @Router /auth/removeFriend [delete]
// @Security ApiKeyAuth
func RemoveFriend(db *gorm.DB, directory *presence.Directory) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("userID")
		friendID := c.PostForm("friendId")

		result := db.Where("(user_id1 = ? AND user_id2 = ?) OR (user_id1 = ? AND user_id2 = ?)",
			userID, friendID, friendID, userID).
			Delete(&models.Friendship{})
		if result.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error removing friend"})
			return
		}
		if result.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Friendship not found"})
			return
		}

		directory.FriendRemoved(userID, friendID)
		c.JSON(http.StatusOK, gin.H{"message": "Friend removed"})
	}
}
