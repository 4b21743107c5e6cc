package controllers

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestGetUserPublicInfo(t *testing.T) {
	// Setup test environment
	gin.SetMode(gin.TestMode)
	db, mock, _ := sqlmock.New()
	defer db.Close()

	// Create controller with mocked dependencies; no Redis means the
	// presence decoration is skipped and online stays false
	lookupController := &UserLookupController{
		DB:          db,
		RedisClient: nil,
	}

	// Setup router
	router := gin.New()
	router.GET("/users/:username", lookupController.GetUserPublicInfo)

	fmt.Println("Request: GET /users/alice")

	mock.ExpectQuery(`SELECT id, username, name, image\s+FROM users\s+WHERE username = \$1`).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "name", "image"}).
			AddRow("8b1f2b3c", "alice", "Alice", "3"))

	// Create HTTP request
	req, _ := http.NewRequest("GET", "/users/alice", nil)
	w := httptest.NewRecorder()

	// Execute request
	router.ServeHTTP(w, req)

	// Verify response
	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)

	fmt.Println("Response:", w.Body.String())

	assert.Equal(t, "8b1f2b3c", response["user_id"])
	assert.Equal(t, "alice", response["username"])
	assert.Equal(t, "Alice", response["name"])
	assert.Equal(t, false, response["online"])

	// Verify all expectations were met
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserPublicInfoNotFound(t *testing.T) {
	// Setup test environment
	gin.SetMode(gin.TestMode)
	db, mock, _ := sqlmock.New()
	defer db.Close()

	lookupController := &UserLookupController{
		DB: db,
	}

	// Setup router
	router := gin.New()
	router.GET("/users/:username", lookupController.GetUserPublicInfo)

	fmt.Println("Request: GET /users/nobody")

	mock.ExpectQuery(`SELECT id, username, name, image\s+FROM users\s+WHERE username = \$1`).
		WithArgs("nobody").
		WillReturnError(sql.ErrNoRows)

	// Create HTTP request
	req, _ := http.NewRequest("GET", "/users/nobody", nil)
	w := httptest.NewRecorder()

	// Execute request
	router.ServeHTTP(w, req)

	// Verify response
	fmt.Println("Response:", w.Body.String())
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
