package valkey

import (
	"context"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"
)

const revokedPrefix = "auth:revoked:"

// SessionStore implements ports.SessionStore using Valkey (Redis-compatible).
// A revoked token id is kept as a key that expires with the token.
type SessionStore struct {
	client valkey.Client
}

// New creates a new Valkey session store client.
func New(addr string) (*SessionStore, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{addr},
	})
	if err != nil {
		return nil, fmt.Errorf("valkey connect: %w", err)
	}
	return &SessionStore{client: client}, nil
}

// Revoke marks tokenID as revoked for ttl.
func (s *SessionStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl < time.Second {
		ttl = time.Second
	}
	cmd := s.client.Do(ctx,
		s.client.B().Set().Key(revokedPrefix+tokenID).Value("1").Ex(ttl).Build(),
	)
	return cmd.Error()
}

// IsRevoked reports whether tokenID has been revoked.
func (s *SessionStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.client.Do(ctx, s.client.B().Exists().Key(revokedPrefix+tokenID).Build()).AsInt64()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Ping checks connectivity.
func (s *SessionStore) Ping(ctx context.Context) error {
	return s.client.Do(ctx, s.client.B().Ping().Build()).Error()
}

// Close releases the client.
func (s *SessionStore) Close() {
	s.client.Close()
}
