package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/SaiNageswarS/booking-agent/booking"
	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const redisKeyPrefix = "booking:session:"

// RedisStore keeps each session as a JSON document with a sliding TTL.
// Save uses WATCH so the version check and the write are atomic.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func RedisKey(sessionID string) string {
	return redisKeyPrefix + sessionID
}

func (s *RedisStore) Load(ctx context.Context, id string) (booking.Session, error) {
	data, err := s.client.Get(ctx, RedisKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return booking.NewSession(id), nil
	}
	if err != nil {
		logger.Error("Failed to load session from redis", zap.String("session", id), zap.Error(err))
		return booking.Session{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return decodeSession(id, data)
}

func (s *RedisStore) Save(ctx context.Context, sess booking.Session) error {
	data, err := json.Marshal(NewSessionModel(sess))
	if err != nil {
		return err
	}
	key := RedisKey(sess.ID)

	err = s.client.Watch(ctx, func(tx *redis.Tx) error {
		var stored int64
		raw, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
		case err != nil:
			return err
		default:
			current, err := decodeSession(sess.ID, raw)
			if err != nil {
				return err
			}
			stored = current.Version
		}
		if stored != sess.Version-1 {
			return ErrVersionConflict
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, s.ttl)
			return nil
		})
		return err
	}, key)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrVersionConflict), errors.Is(err, redis.TxFailedErr):
		return ErrVersionConflict
	default:
		logger.Error("Failed to save session to redis", zap.String("session", sess.ID), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
}

func decodeSession(id string, data []byte) (booking.Session, error) {
	var model SessionModel
	if err := json.Unmarshal(data, &model); err != nil {
		logger.Error("Corrupt session document", zap.String("session", id), zap.Error(err))
		return booking.Session{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if model.ID == "" {
		model.ID = id
	}
	return model.Session(), nil
}
