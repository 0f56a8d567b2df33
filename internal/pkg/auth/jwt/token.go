package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt"
)

// TokenIssuer identifies tokens minted by the platform.
const TokenIssuer = "CareLink"

// ErrInvalidToken covers every verification failure. Callers must not
// surface anything more specific to the peer.
var ErrInvalidToken = errors.New("invalid or expired token")

// GenerateToken signs a credential for the given user. Production tokens
// come from the appointment system; this exists for tooling and tests.
func GenerateToken(userID, role, secretKey string, duration time.Duration) (string, error) {
	now := time.Now()

	claims := &Claims{
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: now.Add(duration).Unix(),
			IssuedAt:  now.Unix(),
			Issuer:    TokenIssuer,
		},
		UserID: userID,
		Role:   role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString([]byte(secretKey))
}

// ParseToken verifies signature, expiry, and claim shape and returns the
// claims. A credential must name a user and carry one of the two known
// roles; the message schema admits nothing else. All failure modes
// collapse into ErrInvalidToken.
func ParseToken(tokenString, secretKey string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secretKey), nil
	})

	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.UserID == "" {
		return nil, ErrInvalidToken
	}

	if claims.Role != RolePatient && claims.Role != RoleDoctor {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
