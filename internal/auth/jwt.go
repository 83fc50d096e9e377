package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"hanpick.kr/shopping-proxy/internal/config"
)

// GenerateJWT issues a bearer token for the given email. The admin claim
// marks tokens issued after a successful admin-overlay login.
func GenerateJWT(email string, admin bool) (string, error) {
	claims := jwt.MapClaims{
		"sub":   email,
		"admin": admin,
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(time.Hour * 24).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.AppConfig.JWTSecret))
}

// ValidateJWT returns the email and admin flag carried by a token.
func ValidateJWT(tokenString string) (string, bool, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(config.AppConfig.JWTSecret), nil
	})

	if err != nil {
		return "", false, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", false, fmt.Errorf("invalid token")
	}

	email, ok := claims["sub"].(string)
	if !ok || email == "" {
		return "", false, fmt.Errorf("invalid token subject")
	}
	admin, _ := claims["admin"].(bool)
	return email, admin, nil
}
