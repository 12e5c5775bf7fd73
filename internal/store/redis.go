// Package store provides the Redis-backed session repository used in
// production deployments.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/halfmove/chessduel/internal/domain"
	"github.com/halfmove/chessduel/internal/game"
)

const defaultSessionTTL = 24 * time.Hour

// record wraps a session with the version counter backing Save's
// compare-and-set.
type record struct {
	Version int64           `json:"version"`
	Session *domain.Session `json:"session"`
}

type RedisRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisRepository(redisURL string, ttl time.Duration) (*RedisRepository, error) {
	if strings.TrimSpace(redisURL) == "" {
		return nil, fmt.Errorf("REDIS_URL required for redis repository")
	}
	opts, err := parseRedisURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &RedisRepository{rdb: rdb, ttl: ttl}, nil
}

func (r *RedisRepository) Close() error {
	if r == nil || r.rdb == nil {
		return nil
	}
	return r.rdb.Close()
}

func (r *RedisRepository) Load(ctx context.Context, id string) (*domain.Session, error) {
	raw, err := r.rdb.Get(ctx, sessionKey(id)).Bytes()
	if err == redis.Nil {
		return nil, game.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if rec.Session == nil {
		return nil, game.ErrSessionNotFound
	}
	rec.Session.Version = rec.Version
	return rec.Session, nil
}

// Save performs a compare-and-set under WATCH so concurrent mutations of the
// same session resolve to exactly one winner.
func (r *RedisRepository) Save(ctx context.Context, session *domain.Session) error {
	key := sessionKey(session.ID)
	err := r.rdb.Watch(ctx, func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		switch {
		case err == redis.Nil:
			if session.Version != 0 {
				return game.ErrVersionConflict
			}
		case err != nil:
			return err
		default:
			var cur record
			if jerr := json.Unmarshal(raw, &cur); jerr != nil {
				return jerr
			}
			if cur.Version != session.Version {
				return game.ErrVersionConflict
			}
		}

		next := record{Version: session.Version + 1, Session: session}
		payload, err := json.Marshal(&next)
		if err != nil {
			return err
		}
		pipe := tx.TxPipeline()
		pipe.Set(ctx, key, payload, r.ttl)
		_, err = pipe.Exec(ctx)
		return err
	}, key)
	if errors.Is(err, redis.TxFailedErr) {
		return game.ErrVersionConflict
	}
	if err != nil {
		return err
	}
	session.Version++
	return nil
}

func sessionKey(id string) string { return "chessduel:game:" + strings.TrimSpace(id) }

func parseRedisURL(raw string) (*redis.Options, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "redis" && u.Scheme != "rediss" {
		return nil, fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
	db := 0
	if p := strings.TrimPrefix(u.Path, "/"); p != "" {
		if n, err := strconv.Atoi(p); err == nil {
			db = n
		}
	}
	pass, _ := u.User.Password()
	return &redis.Options{Addr: u.Host, Password: pass, DB: db}, nil
}
