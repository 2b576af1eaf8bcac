package redis

import (
	"context"
	"fmt"
	"strings"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"

	"github.com/redis/go-redis/v9"
)

// DeviceTokenStore keeps the push tokens of each user in a Redis set.
type DeviceTokenStore struct {
	rdb *redis.Client
}

func NewDeviceTokenStore(rdb *redis.Client) *DeviceTokenStore {
	return &DeviceTokenStore{rdb: rdb}
}

func (s *DeviceTokenStore) Tokens(ctx context.Context, userID kernel.UserID) ([]string, error) {
	tokens, err := s.rdb.SMembers(ctx, tokensKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("read device tokens of %s: %w", userID, err)
	}
	return tokens, nil
}

// Register is idempotent.
func (s *DeviceTokenStore) Register(ctx context.Context, userID kernel.UserID, token string) error {
	if err := userID.Validate(); err != nil {
		return err
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return errs.NewValueIsRequiredError("device token")
	}
	return s.rdb.SAdd(ctx, tokensKey(userID), token).Err()
}

func (s *DeviceTokenStore) Remove(ctx context.Context, userID kernel.UserID, tokens ...string) error {
	if len(tokens) == 0 {
		return nil
	}
	members := make([]interface{}, len(tokens))
	for i, t := range tokens {
		members[i] = t
	}
	return s.rdb.SRem(ctx, tokensKey(userID), members...).Err()
}

func tokensKey(userID kernel.UserID) string {
	return fmt.Sprintf(keyDeviceTokens, userID)
}
