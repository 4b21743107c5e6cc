package middleware

import (
	"errors"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func jwtSecret() []byte {
	return []byte(os.Getenv("KEY"))
}

// CreateToken issues a bearer token whose subject is the user id.
func CreateToken(userID string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(72 * time.Hour)),
	})
	return token.SignedString(jwtSecret())
}

func parseToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return jwtSecret(), nil
	})
	if err != nil || !token.Valid {
		return "", errors.New("invalid token")
	}
	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", errors.New("token has no subject")
	}
	return sub, nil
}

// JWT_decoder extracts the authenticated user id from the request's
// Authorization header.
func JWT_decoder(c *gin.Context) (string, error) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return "", errors.New("missing bearer token")
	}
	return parseToken(strings.TrimPrefix(header, "Bearer "))
}

// Socketio_JWT_decoder extracts the user id from a socket.io handshake
// auth payload. Clients set the token on the 'authorization' field,
// with the 'Bearer ' prefix.
func Socketio_JWT_decoder(authData map[string]interface{}) (string, error) {
	raw, ok := authData["authorization"].(string)
	if !ok {
		return "", errors.New("missing authorization field")
	}
	return parseToken(strings.TrimPrefix(raw, "Bearer "))
}

// AuthRequired guards REST routes, stashing the user id in the context.
func AuthRequired(c *gin.Context) {
	userID, err := JWT_decoder(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.Set("userID", userID)
	c.Next()
}
