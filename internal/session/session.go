// Package session issues and verifies bearer tokens for the Mini App API.
// A token is an HS256 JWT whose id points at a session record in Valkey,
// so deleting the record revokes the token before it expires.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// DefaultTTL is how long a session lives before automatic expiry.
	DefaultTTL = 24 * time.Hour

	keyPrefix = "session:"
	issuer    = "contentwizard"
)

// ErrInvalidToken is returned for malformed, expired, wrongly signed or
// revoked tokens.
var ErrInvalidToken = errors.New("invalid session token")

// Data is the session record stored in Valkey.
type Data struct {
	ID         string    `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	TelegramID int64     `json:"telegram_id"`
	FirstName  string    `json:"first_name"`
	Username   string    `json:"username,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

type claims struct {
	TelegramID int64 `json:"tg"`
	jwt.RegisteredClaims
}

// Signer creates and parses session JWTs. It holds no state beyond the key.
type Signer struct {
	secret []byte
	ttl    time.Duration
}

// NewSigner returns a Signer using secret as the HS256 key.
func NewSigner(secret string, ttl time.Duration) *Signer {
	if ttl == 0 {
		ttl = DefaultTTL
	}
	return &Signer{secret: []byte(secret), ttl: ttl}
}

// Sign returns a token for d, which must already carry its ID and UserID.
func (s *Signer) Sign(d *Data) (string, error) {
	c := claims{
		TelegramID: d.TelegramID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        d.ID,
			Subject:   d.UserID.String(),
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(d.CreatedAt),
			ExpiresAt: jwt.NewNumericDate(d.ExpiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return token, nil
}

// Parse validates signature, issuer and expiry and returns the session id
// and user id carried by the token.
func (s *Signer) Parse(token string) (string, uuid.UUID, error) {
	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", uuid.Nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	userID, err := uuid.Parse(c.Subject)
	if err != nil || c.ID == "" {
		return "", uuid.Nil, fmt.Errorf("%w: bad subject or id", ErrInvalidToken)
	}
	return c.ID, userID, nil
}

// Store manages session records in Valkey.
type Store struct {
	client *redis.Client
	signer *Signer
}

// NewStore creates a session store backed by the given Valkey client.
func NewStore(client *redis.Client, signer *Signer) *Store {
	return &Store{client: client, signer: signer}
}

// Issue stores a new session for the user described by d and returns its
// bearer token. ID and timestamps on d are overwritten.
func (s *Store) Issue(ctx context.Context, d *Data) (string, error) {
	now := time.Now().UTC().Truncate(time.Second)
	d.ID = uuid.NewString()
	d.CreatedAt = now
	d.ExpiresAt = now.Add(s.signer.ttl)

	payload, err := json.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("session marshal: %w", err)
	}
	if err := s.client.Set(ctx, keyPrefix+d.ID, payload, s.signer.ttl).Err(); err != nil {
		return "", fmt.Errorf("session store: %w", err)
	}
	return s.signer.Sign(d)
}

// Verify returns the live session behind token, or ErrInvalidToken.
func (s *Store) Verify(ctx context.Context, token string) (*Data, error) {
	id, userID, err := s.signer.Parse(token)
	if err != nil {
		return nil, err
	}

	payload, err := s.client.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: session revoked or expired", ErrInvalidToken)
	}
	if err != nil {
		return nil, fmt.Errorf("session get: %w", err)
	}

	var d Data
	if err := json.Unmarshal(payload, &d); err != nil {
		return nil, fmt.Errorf("session unmarshal: %w", err)
	}
	if d.UserID != userID {
		return nil, fmt.Errorf("%w: subject mismatch", ErrInvalidToken)
	}
	return &d, nil
}

// Revoke deletes the session behind token. Unknown or invalid tokens are
// ignored.
func (s *Store) Revoke(ctx context.Context, token string) error {
	id, _, err := s.signer.Parse(token)
	if err != nil {
		return nil
	}
	if err := s.client.Del(ctx, keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("session revoke: %w", err)
	}
	return nil
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
// Returns "" when the header is missing or uses another scheme.
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
