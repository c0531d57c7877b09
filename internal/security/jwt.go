package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWT validation errors.
var (
	// ErrInvalidToken indicates a token is malformed or fails validation.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken indicates a token has expired.
	ErrExpiredToken = errors.New("token expired")
)

// UserClaims defines JWT claims for partner portal users. CustomerID is
// the customer scope at issue time; middleware re-reads it from the
// database so reassignment takes effect without re-login.
type UserClaims struct {
	UserID     uint64 `json:"user_id"`
	Username   string `json:"username"`
	CustomerID uint64 `json:"customer_id"`
	jwt.RegisteredClaims
}

// AdminClaims defines JWT claims for portal operators.
type AdminClaims struct {
	AdminID  uint64 `json:"admin_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// GenerateToken signs a user JWT with the configured expiry.
func GenerateToken(secret string, userID uint64, username string, customerID uint64, expiry time.Duration) (string, error) {
	claims := UserClaims{
		UserID:           userID,
		Username:         username,
		CustomerID:       customerID,
		RegisteredClaims: registeredClaims(expiry),
	}
	return signClaims(secret, claims)
}

// GenerateAdminToken signs an operator JWT with the configured expiry.
func GenerateAdminToken(secret string, adminID uint64, username string, expiry time.Duration) (string, error) {
	claims := AdminClaims{
		AdminID:          adminID,
		Username:         username,
		RegisteredClaims: registeredClaims(expiry),
	}
	return signClaims(secret, claims)
}

// ParseToken validates a user JWT and returns its claims.
func ParseToken(secret string, tokenString string) (*UserClaims, error) {
	var claims UserClaims
	if errParse := parseClaims(secret, tokenString, &claims); errParse != nil {
		return nil, errParse
	}
	return &claims, nil
}

// ParseAdminToken validates an operator JWT and returns its claims.
func ParseAdminToken(secret string, tokenString string) (*AdminClaims, error) {
	var claims AdminClaims
	if errParse := parseClaims(secret, tokenString, &claims); errParse != nil {
		return nil, errParse
	}
	return &claims, nil
}

// registeredClaims builds the shared issued-at and expiry claim set.
func registeredClaims(expiry time.Duration) jwt.RegisteredClaims {
	now := time.Now().UTC()
	return jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
	}
}

// signClaims signs claims with HS256.
func signClaims(secret string, claims jwt.Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// parseClaims validates a token into claims, rejecting non-HMAC signing
// methods and mapping library errors onto package sentinels.
func parseClaims(secret, tokenString string, claims jwt.Claims) error {
	token, errParse := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if errParse != nil {
		if errors.Is(errParse, jwt.ErrTokenExpired) {
			return ErrExpiredToken
		}
		return ErrInvalidToken
	}
	if !token.Valid {
		return ErrInvalidToken
	}
	return nil
}
