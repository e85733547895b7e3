package store

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// CodeStore keeps short-lived email verification and password-reset codes in
// Redis, keyed by purpose and email, expiring after the configured TTL.
type CodeStore struct {
	client *redis.Client
	ttl    time.Duration
}

// Code purposes.
const (
	PurposeVerify = "verify"
	PurposeReset  = "reset"
)

// NewCodeStore connects to Redis and verifies the connection.
func NewCodeStore(addr, password string, db int, ttl time.Duration) (*CodeStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &CodeStore{client: client, ttl: ttl}, nil
}

// GenerateCode produces a short uppercase hex code, matching the
// crypto.randomBytes(3) codes patients receive in verification emails.
func GenerateCode() (string, error) {
	buf := make([]byte, 3)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(buf)), nil
}

// Set stores a code for an email and purpose, replacing any previous one.
func (s *CodeStore) Set(ctx context.Context, purpose, email, code string) error {
	return s.client.Set(ctx, codeKey(purpose, email), code, s.ttl).Err()
}

// Check reports whether the supplied code matches the stored one. A missing
// or expired code simply does not match.
func (s *CodeStore) Check(ctx context.Context, purpose, email, code string) (bool, error) {
	stored, err := s.client.Get(ctx, codeKey(purpose, email)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return stored != "" && stored == code, nil
}

// Clear removes a code after successful use.
func (s *CodeStore) Clear(ctx context.Context, purpose, email string) error {
	return s.client.Del(ctx, codeKey(purpose, email)).Err()
}

func codeKey(purpose, email string) string {
	return "code:" + purpose + ":" + strings.ToLower(email)
}
