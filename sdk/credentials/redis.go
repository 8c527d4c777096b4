package credentials

import (
	"github.com/cppe-issia/console/sdk/authx"
	"github.com/go-redis/redis"
	"github.com/pkg/errors"
)

// RedisStore is a Store backed by two Redis keys. It lets several console
// replicas share a single operator session.
type RedisStore struct {
	client   *redis.Client
	tokenKey string
	userKey  string
}

// NewRedisStore returns a RedisStore that namespaces its two keys with
// keyPrefix.
func NewRedisStore(client *redis.Client, keyPrefix string) *RedisStore {
	return &RedisStore{
		client:   client,
		tokenKey: keyPrefix + TokenKey,
		userKey:  keyPrefix + UserKey,
	}
}

func (r *RedisStore) Save(token string, user authx.User) error {
	userBytes, err := encodeUser(user)
	if err != nil {
		return err
	}
	// MULTI/EXEC applies both writes or neither
	if _, err := r.client.TxPipelined(func(pipe redis.Pipeliner) error {
		pipe.Set(r.tokenKey, token, 0)
		pipe.Set(r.userKey, userBytes, 0)
		return nil
	}); err != nil {
		return errors.Wrap(err, "error saving credentials to redis")
	}
	return nil
}

func (r *RedisStore) Load() (string, *authx.User) {
	vals, err := r.client.MGet(r.tokenKey, r.userKey).Result()
	if err != nil || len(vals) != 2 {
		return "", nil
	}
	token, _ := vals[0].(string)
	userStr, _ := vals[1].(string)
	return token, decodeUser([]byte(userStr))
}

func (r *RedisStore) Token() (string, bool) {
	token, err := r.client.Get(r.tokenKey).Result()
	if err != nil || token == "" {
		return "", false
	}
	return token, true
}

func (r *RedisStore) Clear() error {
	if err := r.client.Del(r.tokenKey, r.userKey).Err(); err != nil {
		return errors.Wrap(err, "error clearing credentials from redis")
	}
	return nil
}
