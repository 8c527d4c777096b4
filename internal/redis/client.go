// Package redis connects to the Redis instance that backs the shared
// credentials store.
package redis

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/cppe-issia/console/internal/retries"
	"github.com/go-redis/redis"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const envconfigPrefix = "CPPE_REDIS"

// config represents common configuration options for a Redis connection
type config struct {
	Host      string `envconfig:"HOST"`
	Port      int    `envconfig:"PORT" default:"6379"`
	Password  string `envconfig:"PASSWORD"`
	DB        int    `envconfig:"DB"`
	EnableTLS bool   `envconfig:"ENABLE_TLS"`
	Prefix    string `envconfig:"PREFIX" default:"cppe:"`
}

// Client returns a connection to a Redis database specified by environment
// variables along with the prefix to apply to every key.
func Client() (*redis.Client, string, error) {
	c := config{}
	err := envconfig.Process(envconfigPrefix, &c)
	if err != nil {
		return nil, "", errors.Wrap(
			err,
			"error getting redis configuration from environment",
		)
	}
	if c.Host == "" {
		return nil, "", errors.Errorf("%s_HOST is required", envconfigPrefix)
	}

	redisOpts := &redis.Options{
		Addr:       fmt.Sprintf("%s:%d", c.Host, c.Port),
		Password:   c.Password,
		DB:         c.DB,
		MaxRetries: 5,
	}
	if c.EnableTLS {
		redisOpts.TLSConfig = &tls.Config{
			ServerName: c.Host,
		}
	}

	return redis.NewClient(redisOpts), c.Prefix, nil
}

// Connect is Client followed by a ping, retried with backoff, that confirms
// the database is reachable.
func Connect(
	ctx context.Context,
	logger logrus.FieldLogger,
) (*redis.Client, string, error) {
	client, prefix, err := Client()
	if err != nil {
		return nil, "", err
	}
	if err := retries.ManageRetries(
		ctx,
		logger,
		"connect to redis",
		5,
		10*time.Second,
		func() (bool, error) {
			if err := client.Ping().Err(); err != nil {
				return true, errors.Wrap(err, "error pinging redis")
			}
			return false, nil
		},
	); err != nil {
		client.Close() // nolint: errcheck
		return nil, "", err
	}
	return client, prefix, nil
}
