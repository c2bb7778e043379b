package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/douradolabs/backoffice/internal/core/domain"
	"github.com/douradolabs/backoffice/internal/core/ports"
)

const sessionKeyPrefix = "session:"

// SessionProvider implements session issuance and per-request resolution.
// The bearer token is an HS256 JWT carrying only a session id; the principal
// lives in Redis under that id with a TTL. Deleting the key (logout, expiry)
// kills the session on the very next request, which a bare JWT cannot do.
type SessionProvider struct {
	client *redis.Client
	secret []byte
}

func NewSessionProvider(client *redis.Client, jwtSecret string) *SessionProvider {
	return &SessionProvider{client: client, secret: []byte(jwtSecret)}
}

type sessionRecord struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// Create opens a session and returns the signed bearer token.
func (p *SessionProvider) Create(ctx context.Context, principal domain.Principal, ttl time.Duration) (string, error) {
	sid := uuid.NewString()

	payload, err := json.Marshal(sessionRecord{UserID: principal.UserID, Role: string(principal.Role)})
	if err != nil {
		return "", fmt.Errorf("marshal session: %w", err)
	}
	if err := p.client.Set(ctx, sessionKeyPrefix+sid, payload, ttl).Err(); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}

	claims := jwt.MapClaims{
		"sid": sid,
		"exp": time.Now().Add(ttl).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return token, nil
}

// Resolve maps request credentials to a principal. A missing, malformed or
// expired token and a revoked session all return (nil, nil); only Redis
// failures surface as errors.
func (p *SessionProvider) Resolve(ctx context.Context, creds ports.Credentials) (*domain.Principal, error) {
	sid, ok := p.sessionID(creds.Token)
	if !ok {
		return nil, nil
	}

	payload, err := p.client.Get(ctx, sessionKeyPrefix+sid).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("load session: %w", err)
	}

	var rec sessionRecord
	if err := json.Unmarshal(payload, &rec); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &domain.Principal{UserID: rec.UserID, Role: domain.Role(rec.Role)}, nil
}

// Revoke deletes the session record. Unknown or malformed tokens are ignored.
func (p *SessionProvider) Revoke(ctx context.Context, creds ports.Credentials) error {
	sid, ok := p.sessionID(creds.Token)
	if !ok {
		return nil
	}
	if err := p.client.Del(ctx, sessionKeyPrefix+sid).Err(); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// sessionID verifies the token signature and extracts the sid claim.
func (p *SessionProvider) sessionID(token string) (string, bool) {
	if token == "" {
		return "", false
	}

	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return p.secret, nil
	})
	if err != nil || !tkn.Valid {
		return "", false
	}

	sid, _ := claims["sid"].(string)
	return sid, sid != ""
}
