package utils

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"propgen/infrastructure/logger"

	"github.com/golang-jwt/jwt"
	"github.com/pkg/errors"
)

// GenerateToken signs claims with HS256, the only scheme the auth middleware accepts
func GenerateToken(claims map[string]interface{}, secretKey string) (string, error) {
	if secretKey == "" {
		return "", errors.New("empty signing key")
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims(claims)).SignedString([]byte(secretKey))
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while signing bearer token")
		return "", errors.Wrap(err, "sign token")
	}
	return signed, nil
}

// UserToken mints a bearer for userID in the shape the hosted auth provider issues
func UserToken(userID string, ttl time.Duration, secretKey string) (string, error) {
	now := time.Now()
	return GenerateToken(map[string]interface{}{
		"sub": userID,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}, secretKey)
}

// RandomToken returns n random bytes hex encoded
func RandomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Wrap(err, "read random")
	}
	return hex.EncodeToString(b), nil
}
