// internal/app/system/credentials/credentials.go
package credentials

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultBcryptCost is the hashing cost used when none is configured.
	DefaultBcryptCost = 10
	// DefaultSessionTTL is how long an issued session token is valid.
	DefaultSessionTTL = time.Hour
	// DefaultResetTTL is how long an issued reset token is valid.
	DefaultResetTTL = time.Hour
	// ResetTokenBytes is the entropy of a reset token (160 bits).
	ResetTokenBytes = 20
)

var (
	// ErrInvalidOrExpiredToken is returned when a reset token does not
	// match an outstanding token or its expiry has passed.
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")
	// ErrBadHash indicates a malformed stored password hash, which means
	// storage corruption rather than a wrong password.
	ErrBadHash = errors.New("malformed password hash")
)

// Hasher hashes and verifies passwords with bcrypt.
type Hasher struct {
	cost int
}

// NewHasher returns a Hasher with the given cost; cost <= 0 selects
// DefaultBcryptCost.
func NewHasher(cost int) *Hasher {
	if cost <= 0 {
		cost = DefaultBcryptCost
	}
	return &Hasher{cost: cost}
}

// HashPassword returns the bcrypt hash of password. The plaintext is never
// stored anywhere.
func (h *Hasher) HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

// VerifyPassword reports whether password matches hash. A mismatch is a
// clean false; a structurally invalid hash returns ErrBadHash because it
// indicates the stored value was corrupted.
func (h *Hasher) VerifyPassword(password, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %v", ErrBadHash, err)
	}
}

// sessionClaims binds a session token to a user id.
type sessionClaims struct {
	jwt.RegisteredClaims
}

// Sessions issues and validates stateless signed session tokens. There is
// no server-side session state: validation is signature plus expiry.
type Sessions struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSessions returns a Sessions signer using the given HMAC secret.
// ttl <= 0 selects DefaultSessionTTL.
func NewSessions(secret string, ttl time.Duration) *Sessions {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Sessions{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL returns the configured session lifetime.
func (s *Sessions) TTL() time.Duration { return s.ttl }

// Issue creates a signed token carrying the user's id, valid for the
// configured TTL.
func (s *Sessions) Issue(userID primitive.ObjectID) (string, error) {
	now := s.now()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.Hex(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Validate checks signature, signing method, and expiry, and returns the
// bound user id. Any failure mode (malformed, bad signature, expired)
// reports the same error so callers cannot distinguish them.
func (s *Sessions) Validate(token string) (primitive.ObjectID, error) {
	parsed, err := jwt.ParseWithClaims(token, &sessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return s.now() }))
	if err != nil || !parsed.Valid {
		return primitive.NilObjectID, ErrInvalidOrExpiredToken
	}
	claims, ok := parsed.Claims.(*sessionClaims)
	if !ok || claims.Subject == "" {
		return primitive.NilObjectID, ErrInvalidOrExpiredToken
	}
	id, err := primitive.ObjectIDFromHex(claims.Subject)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidOrExpiredToken
	}
	return id, nil
}

// NewResetToken generates a high-entropy opaque reset token.
// Panics if the system's cryptographic random number generator fails.
func NewResetToken() string {
	b := make([]byte, ResetTokenBytes)
	if _, err := rand.Read(b); err != nil {
		panic("crypto/rand.Read failed: " + err.Error())
	}
	return hex.EncodeToString(b)
}
