package redis

import (
	"errors"
	"fmt"

	"github.com/go-redsync/redsync/v4"
	"github.com/phrazzld/cardledger/internal/store"
	"github.com/redis/go-redis/v9"
)

// MapError maps a Redis or lock error to the store sentinel it represents,
// keeping the original error in the chain.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, redis.Nil) {
		return fmt.Errorf("%w: %w", store.ErrNotFound, err)
	}

	if errors.Is(err, redis.TxFailedErr) || errors.Is(err, redsync.ErrFailed) {
		return fmt.Errorf("%w: %w", store.ErrConflict, err)
	}

	var taken *redsync.ErrTaken
	if errors.As(err, &taken) {
		return fmt.Errorf("%w: %w", store.ErrConflict, err)
	}

	return fmt.Errorf("%w: %w", store.ErrUnavailable, err)
}
