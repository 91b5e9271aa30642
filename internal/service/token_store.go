package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// TokenStore tracks issued token ids in Redis; a token is valid only while its key exists.
type TokenStore interface {
	StoreAccess(ctx context.Context, userID uuid.UUID, tokenID string, ttl time.Duration) error
	StoreRefresh(ctx context.Context, userID uuid.UUID, tokenID string, ttl time.Duration) error
	IsAccessValid(ctx context.Context, userID uuid.UUID, tokenID string) (bool, error)
	// ConsumeRefresh deletes the refresh token and reports whether it was still valid.
	ConsumeRefresh(ctx context.Context, userID uuid.UUID, tokenID string) (bool, error)
	Revoke(ctx context.Context, userID uuid.UUID, accessTokenID, refreshTokenID string) error
	RevokeAll(ctx context.Context, userID uuid.UUID) error
}

type redisTokenStore struct {
	client *redis.Client
}

func NewTokenStore(client *redis.Client) TokenStore {
	return &redisTokenStore{client: client}
}

func accessKey(userID uuid.UUID, tokenID string) string {
	return fmt.Sprintf("access_token:%s:%s", userID.String(), tokenID)
}

func refreshKey(userID uuid.UUID, tokenID string) string {
	return fmt.Sprintf("refresh_token:%s:%s", userID.String(), tokenID)
}

func (s *redisTokenStore) StoreAccess(ctx context.Context, userID uuid.UUID, tokenID string, ttl time.Duration) error {
	return s.client.Set(ctx, accessKey(userID, tokenID), "valid", ttl).Err()
}

func (s *redisTokenStore) StoreRefresh(ctx context.Context, userID uuid.UUID, tokenID string, ttl time.Duration) error {
	return s.client.Set(ctx, refreshKey(userID, tokenID), "valid", ttl).Err()
}

func (s *redisTokenStore) IsAccessValid(ctx context.Context, userID uuid.UUID, tokenID string) (bool, error) {
	exists, err := s.client.Exists(ctx, accessKey(userID, tokenID)).Result()
	if err != nil {
		return false, err
	}
	return exists > 0, nil
}

func (s *redisTokenStore) ConsumeRefresh(ctx context.Context, userID uuid.UUID, tokenID string) (bool, error) {
	deleted, err := s.client.Del(ctx, refreshKey(userID, tokenID)).Result()
	if err != nil {
		return false, err
	}
	return deleted > 0, nil
}

func (s *redisTokenStore) Revoke(ctx context.Context, userID uuid.UUID, accessTokenID, refreshTokenID string) error {
	keys := []string{accessKey(userID, accessTokenID)}
	if refreshTokenID != "" {
		keys = append(keys, refreshKey(userID, refreshTokenID))
	}
	return s.client.Del(ctx, keys...).Err()
}

// RevokeAll deletes every access and refresh token of the user, scanning in batches.
func (s *redisTokenStore) RevokeAll(ctx context.Context, userID uuid.UUID) error {
	for _, pattern := range []string{
		fmt.Sprintf("access_token:%s:*", userID.String()),
		fmt.Sprintf("refresh_token:%s:*", userID.String()),
	} {
		iter := s.client.Scan(ctx, 0, pattern, 500).Iterator()
		var keys []string
		for iter.Next(ctx) {
			keys = append(keys, iter.Val())
		}
		if err := iter.Err(); err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := s.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
	}
	return nil
}
