package middleware

import (
	"net/http"
	"strings"

	"propgen/domain/dto"
	domainerrors "propgen/domain/errors"
	"propgen/infrastructure/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
	"github.com/pkg/errors"
)

const UserIDKey = "user_id"

// Auth requires a valid HS256 bearer token and sets its subject as user_id
func Auth(secretKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, reason := authenticate(c.GetHeader("Authorization"), secretKey)
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.Res{
				Error:   domainerrors.ErrUnauthorized.Message(),
				Code:    domainerrors.ErrUnauthorized.ErrorCode(),
				Details: reason,
			})
			return
		}
		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// OptionalAuth sets user_id when a valid bearer is present and never aborts.
// The OAuth route needs it: the callback arrives from the provider without a bearer.
func OptionalAuth(secretKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID, _ := authenticate(c.GetHeader("Authorization"), secretKey); userID != "" {
			c.Set(UserIDKey, userID)
		}
		c.Next()
	}
}

// authenticate returns the token subject, or an empty id and the reason it was rejected
func authenticate(header, secretKey string) (string, string) {
	if header == "" {
		return "", "missing bearer token"
	}
	raw := strings.TrimPrefix(header, "Bearer ")
	if raw == header || raw == "" {
		return "", "malformed authorization header"
	}
	if secretKey == "" {
		return "", "authentication is not configured"
	}
	var claims jwt.StandardClaims
	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secretKey), nil
	})
	if err != nil || !token.Valid {
		reason := rejection(err)
		logger.GetLogger().WithField("reason", reason).Debug("bearer rejected")
		return "", reason
	}
	if claims.Subject == "" {
		return "", "token has no subject"
	}
	return claims.Subject, ""
}

func rejection(err error) string {
	var ve *jwt.ValidationError
	if errors.As(err, &ve) {
		switch {
		case ve.Errors&jwt.ValidationErrorMalformed != 0:
			return "malformed token"
		case ve.Errors&(jwt.ValidationErrorExpired|jwt.ValidationErrorNotValidYet) != 0:
			return "token expired or not yet valid"
		case ve.Errors&jwt.ValidationErrorSignatureInvalid != 0:
			return "invalid signature"
		}
	}
	return "invalid token"
}
