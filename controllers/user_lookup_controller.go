package controllers

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/unretain/polyxmobile-sub002/services/redis"
)

type UserLookupController struct {
	DB          *sql.DB
	RedisClient *redis.RedisClient
}

// GetUserPublicInfo returns the public profile for a username, with
// live presence when the Redis mirror has a record for the user.
func (uc *UserLookupController) GetUserPublicInfo(c *gin.Context) {
	username := c.Param("username")

	var profile struct {
		ID       string `json:"user_id"`
		Username string `json:"username"`
		Name     string `json:"name"`
		Image    string `json:"image"`
	}

	err := uc.DB.QueryRow(`
		SELECT id, username, name, image
		FROM users
		WHERE username = $1
	`, username).Scan(
		&profile.ID, &profile.Username, &profile.Name, &profile.Image,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error querying database: " + err.Error()})
		}
		return
	}

	response := gin.H{
		"user_id":  profile.ID,
		"username": profile.Username,
		"name":     profile.Name,
		"image":    profile.Image,
		"online":   false,
	}

	if uc.RedisClient != nil {
		if rec, err := uc.RedisClient.GetPresence(profile.ID); err == nil && rec != nil {
			response["online"] = true
			if rec.LobbyID != "" {
				response["lobby_id"] = rec.LobbyID
				response["lobby_name"] = rec.LobbyName
			}
		}
	}

	c.JSON(http.StatusOK, response)
}
