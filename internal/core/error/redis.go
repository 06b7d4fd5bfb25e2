package errx

import (
	"errors"
	"net/http"

	"github.com/redis/go-redis/v9"
)

// WrapRedis maps Redis failures from the thread and checkpoint repositories
// to the unified Error type. A missing key (redis.Nil) becomes a not-found;
// anything else is treated as the store being unavailable. Returns error, not
// *Error, so a nil result stays a nil interface.
func WrapRedis(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, redis.Nil) {
		return New(err, http.StatusNotFound, RedisNotFoundMessage)
	}
	return New(err, http.StatusBadGateway, RedisErrorMessage)
}
