package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/unretain/polyxmobile-sub002/config"
	"github.com/unretain/polyxmobile-sub002/middleware"
	"github.com/unretain/polyxmobile-sub002/routes"
	"github.com/unretain/polyxmobile-sub002/services/connections"
	"github.com/unretain/polyxmobile-sub002/services/lobbies"
	"github.com/unretain/polyxmobile-sub002/services/presence"
	"github.com/unretain/polyxmobile-sub002/services/redis"
	"github.com/unretain/polyxmobile-sub002/services/socket_io"
	socketio_types "github.com/unretain/polyxmobile-sub002/services/socket_io/types"
	"github.com/unretain/polyxmobile-sub002/utils"
)

// @title Polyx social API
// @version 1.0
// @description Gin-Gonic server for the Polyx social/lobby layer
// @BasePath /
func main() {
	godotenv.Load()
	log.Println("Setting up server...")

	if os.Getenv("PROD") == "true" {
		gin.SetMode(gin.ReleaseMode)
	}

	gormDB, err := config.ConnectGORM()
	if err != nil {
		log.Fatalf("Error connecting to PostgreSQL: %v", err)
	}
	log.Println("GORM Connected")

	if os.Getenv("MIGRATE_POSTGRES") == "true" {
		log.Println("Migrating PostgreSQL database...")
		if err := config.MigrateDatabase(gormDB); err != nil {
			log.Printf("Warning: Database migration failed: %v", err)
		} else {
			log.Println("Database migrated successfully")
		}
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		log.Fatalf("Error reading GORM PostgreSQL instance: %v", err)
	}
	defer sqlDB.Close()

	redisClient, err := config.Connect_redis()
	if err != nil {
		log.Fatalf("Error connecting to Redis: %v", err)
	}
	defer redis.CloseRedis(redisClient)

	// Realtime core: connection registry, lobby registry, presence
	// directory. The registry resolves transport handles at send time;
	// everything else works with ids.
	conns := connections.NewRegistry()
	lobbyReg := lobbies.NewRegistry(conns)
	directory := presence.NewDirectory(
		utils.FriendGraph{DB: gormDB}, conns, lobbyReg, conns, redisClient)

	r := gin.Default()
	middleware.SetUpMiddleware(r)
	routes.SetupRoutes(r, gormDB, redisClient, directory)

	sio := (*socket_io.MySocketServer)(socketio_types.NewSocketServer(conns, lobbyReg, directory))
	sio.Start(r, gormDB)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Error starting server: %v", err)
	}
}
