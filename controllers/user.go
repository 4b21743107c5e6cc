package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/unretain/polyxmobile-sub002/middleware"
	models "github.com/unretain/polyxmobile-sub002/models/postgres"
)

// @Summary Liveness probe
// @Tags status
// @Produce json
// @Success 200 {object} object{message=string}
// @Router /ping [get]
func Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

// @Summary Create a new account
// @Description Registers a user; usernames are 1-9 lowercase letters
// @Tags users
// @Accept x-www-form-urlencoded
// @Produce json
// @Param username formData string true "Unique username"
// @Param name formData string true "Display name"
// @Param password formData string true "Password"
// @Param image formData string false "Avatar URL"
// @Success 201 {object} object{user_id=string}
// @Failure 400 {object} object{error=string}
// @Failure 409 {object} object{error=string}
// @Router /signup [post]
func SignUp(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		username := strings.TrimSpace(c.PostForm("username"))
		name := strings.TrimSpace(c.PostForm("name"))
		password := c.PostForm("password")

		if username == "" || name == "" || password == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Parameters can't be empty"})
			return
		}
		if !models.ValidUsername(username) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Username must be 1-9 lowercase letters"})
			return
		}

		var existing models.User
		if err := db.Where("username = ?", username).First(&existing).Error; err == nil {
			c.JSON(http.StatusConflict, gin.H{"error": "Username already taken"})
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error hashing password"})
			return
		}

		user := models.User{
			ID:           uuid.NewString(),
			Username:     username,
			Name:         name,
			Image:        c.PostForm("image"),
			PasswordHash: string(hash),
		}
		if err := db.Create(&user).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating user"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"user_id": user.ID})
	}
}

// @Summary Log in
// @Description Returns a bearer token for the realtime handshake and
// the authenticated REST routes
// @Tags users
// @Accept x-www-form-urlencoded
// @Produce json
// @Param username formData string true "Username"
// @Param password formData string true "Password"
// @Success 200 {object} object{token=string,user_id=string}
// @Failure 401 {object} object{error=string}
// @Router /login [post]
func Login(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		username := c.PostForm("username")
		password := c.PostForm("password")

		if strings.TrimSpace(username) == "" || strings.TrimSpace(password) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Parameters can't be empty"})
			return
		}

		var user models.User
		if err := db.Where("username = ?", username).First(&user).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password!"})
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password!"})
			return
		}

		token, err := middleware.CreateToken(user.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating token"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"token": token, "user_id": user.ID})
	}
}

// @Summary Get my profile
// @Tags users
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Success 200 {object} object{user_id=string,username=string,name=string,image=string}
// @Failure 401 {object} object{error=string}
// @Router /auth/me [get]
// @Security ApiKeyAuth
func GetUserPrivateInfo(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("userID")

		var user models.User
		if err := db.Where("id = ?", userID).First(&user).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"user_id":      user.ID,
			"username":     user.Username,
			"name":         user.Name,
			"image":        user.Image,
			"member_since": user.MemberSince,
		})
	}
}
