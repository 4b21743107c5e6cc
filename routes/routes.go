package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/unretain/polyxmobile-sub002/controllers"
	"github.com/unretain/polyxmobile-sub002/middleware"
	"github.com/unretain/polyxmobile-sub002/services/presence"
	"github.com/unretain/polyxmobile-sub002/services/redis"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, db *gorm.DB, redisClient *redis.RedisClient,
	directory *presence.Directory) {

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := router.Group("/")

	api.GET("/ping", controllers.Ping)

	sqlDB, err := db.DB()
	if err == nil {
		userLookup := &controllers.UserLookupController{DB: sqlDB, RedisClient: redisClient}
		api.GET("/users/:username", userLookup.GetUserPublicInfo)
	}

	api.POST("/login", controllers.Login(db))
	api.POST("/signup", controllers.SignUp(db))

	authentication := api.Group("/auth")
	authentication.Use(middleware.AuthRequired)
	{
		authentication.GET("/me", controllers.GetUserPrivateInfo(db))

		authentication.GET("/friends", controllers.ListFriends(db, redisClient))

		authentication.GET("/friendship_requests", controllers.GetAllFriendshipRequests(db))

		authentication.POST("/sendFriendshipRequest", controllers.SendFriendshipRequest(db, directory))

		authentication.POST("/acceptFriendshipRequest", controllers.AcceptFriendshipRequest(db, directory))

		authentication.DELETE("/declineFriendshipRequest", controllers.DeclineFriendshipRequest(db))

		authentication.DELETE("/removeFriend", controllers.RemoveFriend(db, directory))
	}
}
