package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Widget tokens are short-lived HS256 bearer tokens the storefront plugin
// attaches to API calls. The wider session protocol lives with the plugin;
// this side only mints and verifies.

func GenerateWidgetToken(secret, siteName string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub": siteName,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateWidgetToken verifies the signature and expiry and returns the site
// name the token was issued for.
func ValidateWidgetToken(secret, tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid token")
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", fmt.Errorf("token missing site claim")
	}
	return sub, nil
}
