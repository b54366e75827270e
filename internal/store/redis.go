package store

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
	"github.com/redis/go-redis/v9/maintnotifications"
)

// RedisStore is an implementation of Gateway backed by Redis.  Documents
// live in a single hash keyed by the collection name (id → JSON document).
// A companion sorted set, "<collection>:name", holds one member per
// document, "<name>\x00<id>", all with score 0 so that ZRANGEBYLEX answers
// name range queries in bytewise order.  Writes that touch both keys run
// in a MULTI/EXEC block guarded by WATCH on the hash.
type RedisStore struct {
	client  *redis.Client
	key     string
	nameKey string
}

// NewRedisStore connects to a Redis instance at the provided address and
// returns a store for collection.  A ping is performed to verify
// connectivity.
func NewRedisStore(addr string, password string, tls *tls.Config, collection string) (*RedisStore, error) {
	opts := &redis.Options{
		Addr:     addr,
		Password: password, // empty string means no auth
		DB:       0,
		MaintNotificationsConfig: &maintnotifications.Config{
			Mode: maintnotifications.ModeDisabled,
		},
	}
	if tls != nil {
		opts.TLSConfig = tls
	}

	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return NewRedisStoreFromClient(client, collection), nil
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(client *redis.Client, collection string) *RedisStore {
	if collection == "" {
		collection = DefaultCollection
	}
	return &RedisStore{client: client, key: collection, nameKey: collection + ":name"}
}

// Close releases the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Add writes the document and its name index entry atomically.
func (s *RedisStore) Add(ctx context.Context, fields Fields) (string, error) {
	id := uuid.NewString()
	data, err := json.Marshal(fields)
	if err != nil {
		return "", wrap(OpAdd, "", fmt.Errorf("failed to marshal user: %w", err))
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, s.key, id, data)
		pipe.ZAdd(ctx, s.nameKey, redis.Z{Score: 0, Member: nameMember(fields.Name, id)})
		return nil
	})
	if err != nil {
		return "", wrap(OpAdd, "", fmt.Errorf("redis write failed: %w", err))
	}
	return id, nil
}

// FetchAll returns every document in the collection hash.  On a fresh
// store or when the key doesn't exist, an empty slice is returned.
func (s *RedisStore) FetchAll(ctx context.Context) ([]User, error) {
	raw, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, wrap(OpFetchAll, "", fmt.Errorf("redis hgetall failed: %w", err))
	}
	users := make([]User, 0, len(raw))
	for id, doc := range raw {
		u, err := decodeRedisDoc(id, doc)
		if err != nil {
			return nil, wrap(OpFetchAll, "", err)
		}
		users = append(users, u)
	}
	return users, nil
}

// RangeQuery answers name ranges from the sorted set and any other field
// with a scan of the hash.
func (s *RedisStore) RangeQuery(ctx context.Context, field, lower, upper string) ([]User, error) {
	if err := checkField(field); err != nil {
		return nil, wrap(OpRangeQuery, "", err)
	}
	if field != FieldName {
		all, err := s.FetchAll(ctx)
		if err != nil {
			return nil, wrap(OpRangeQuery, "", errors.Unwrap(err))
		}
		users := make([]User, 0)
		for _, u := range all {
			v, _ := u.Fields().Value(field)
			if inRange(v, lower, upper) {
				users = append(users, u)
			}
		}
		return users, nil
	}

	// Members are "<name>\x00<id>".  "(" + upper + "\x01" is the tightest
	// exclusive bound that still admits every member whose name equals upper.
	members, err := s.client.ZRangeByLex(ctx, s.nameKey, &redis.ZRangeBy{
		Min: "[" + lower,
		Max: "(" + upper + "\x01",
	}).Result()
	if err != nil {
		return nil, wrap(OpRangeQuery, "", fmt.Errorf("redis zrangebylex failed: %w", err))
	}
	if len(members) == 0 {
		return []User{}, nil
	}
	ids := make([]string, len(members))
	for i, m := range members {
		ids[i] = memberID(m)
	}
	docs, err := s.client.HMGet(ctx, s.key, ids...).Result()
	if err != nil {
		return nil, wrap(OpRangeQuery, "", fmt.Errorf("redis hmget failed: %w", err))
	}
	users := make([]User, 0, len(docs))
	for i, doc := range docs {
		str, ok := doc.(string)
		if !ok {
			// Index entry without a document; the delete that removed it
			// is finishing.
			continue
		}
		u, err := decodeRedisDoc(ids[i], str)
		if err != nil {
			return nil, wrap(OpRangeQuery, "", err)
		}
		if inRange(u.Name, lower, upper) {
			users = append(users, u)
		}
	}
	return users, nil
}

// UpdateByID rewrites the document and moves its name index entry.
func (s *RedisStore) UpdateByID(ctx context.Context, id string, patch Patch) error {
	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := s.load(ctx, tx, id)
		if err != nil {
			return err
		}
		updated := patch.Apply(current.Fields())
		data, err := json.Marshal(updated)
		if err != nil {
			return fmt.Errorf("failed to marshal user: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, s.key, id, data)
			if updated.Name != current.Name {
				pipe.ZRem(ctx, s.nameKey, nameMember(current.Name, id))
				pipe.ZAdd(ctx, s.nameKey, redis.Z{Score: 0, Member: nameMember(updated.Name, id)})
			}
			return nil
		})
		return err
	}, s.key)
	return wrap(OpUpdate, id, err)
}

// DeleteByID removes the document and its name index entry.
func (s *RedisStore) DeleteByID(ctx context.Context, id string) error {
	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := s.load(ctx, tx, id)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HDel(ctx, s.key, id)
			pipe.ZRem(ctx, s.nameKey, nameMember(current.Name, id))
			return nil
		})
		return err
	}, s.key)
	return wrap(OpDelete, id, err)
}

// Get reads a single document.
func (s *RedisStore) Get(ctx context.Context, id string) (User, error) {
	u, err := s.load(ctx, s.client, id)
	if err != nil {
		return User{}, wrap(OpGet, id, err)
	}
	return u, nil
}

// hashGetter is satisfied by both *redis.Client and *redis.Tx.
type hashGetter interface {
	HGet(ctx context.Context, key, field string) *redis.StringCmd
}

func (s *RedisStore) load(ctx context.Context, c hashGetter, id string) (User, error) {
	doc, err := c.HGet(ctx, s.key, id).Result()
	if errors.Is(err, redis.Nil) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("redis hget failed: %w", err)
	}
	return decodeRedisDoc(id, doc)
}

func decodeRedisDoc(id, doc string) (User, error) {
	var f Fields
	if err := json.Unmarshal([]byte(doc), &f); err != nil {
		return User{}, &DecodeError{ID: id, Err: err}
	}
	return f.WithID(id), nil
}

func nameMember(name, id string) string {
	return name + "\x00" + id
}

func memberID(member string) string {
	if i := strings.LastIndexByte(member, 0); i >= 0 {
		return member[i+1:]
	}
	return member
}
