// Package retries runs an operation until it succeeds, gives up or runs out
// of attempts, backing off exponentially between attempts.
package retries

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ManageRetries calls fn until fn reports that no retry is wanted, maxAttempts
// have failed or ctx is done. fn returns whether to retry along with the
// error of its attempt. Each failed attempt is logged to logger.
func ManageRetries(
	ctx context.Context,
	logger logrus.FieldLogger,
	process string,
	maxAttempts uint8,
	maxBackoff time.Duration,
	fn func() (bool, error),
) error {
	var failedAttempts uint8
	for {
		retry, err := fn()
		if !retry {
			return err
		}
		failedAttempts++
		if failedAttempts >= maxAttempts {
			return errors.Wrapf(
				err,
				"failed %d attempt(s) to %s",
				failedAttempts,
				process,
			)
		}
		delay := jitteredExpBackoff(failedAttempts, maxBackoff)
		logger.WithError(err).WithFields(logrus.Fields{
			"attempts": failedAttempts,
			"delay":    delay,
		}).Warnf("failed to %s; will retry", process)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// jitteredExpBackoff returns a delay between half and all of 2^failureCount
// seconds, capped at maxDelay.
func jitteredExpBackoff(
	failureCount uint8,
	maxDelay time.Duration,
) time.Duration {
	base := math.Pow(2, float64(failureCount))
	capped := math.Min(base, maxDelay.Seconds())
	jittered := (1 + rand.Float64()) * (capped / 2) // nolint: gosec
	return time.Duration(jittered * float64(time.Second))
}
