package middleware

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DownloadClaims back the download token handed out after a verified
// payment. Nothing checks the token yet; it is a placeholder for a future
// download-authorization step.
type DownloadClaims struct {
	OrderID string `json:"orderId"`
	Email   string `json:"email"`
	jwt.RegisteredClaims
}

// GenerateDownloadToken returns a signer for download tokens. Its signature
// matches services.TokenFunc.
func GenerateDownloadToken(secret string) func(orderID, email string, expiresAt time.Time) (string, error) {
	if secret == "" {
		secret = "your-secret-key-change-in-production"
	}

	return func(orderID, email string, expiresAt time.Time) (string, error) {
		claims := DownloadClaims{
			OrderID: orderID,
			Email:   email,
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   orderID,
				ExpiresAt: jwt.NewNumericDate(expiresAt),
				IssuedAt:  jwt.NewNumericDate(time.Now()),
			},
		}

		token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
		return token.SignedString([]byte(secret))
	}
}

// ParseDownloadToken reads a token produced by GenerateDownloadToken.
func ParseDownloadToken(secret, tokenString string) (*DownloadClaims, error) {
	if secret == "" {
		secret = "your-secret-key-change-in-production"
	}

	token, err := jwt.ParseWithClaims(tokenString, &DownloadClaims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*DownloadClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid download token")
	}
	return claims, nil
}
