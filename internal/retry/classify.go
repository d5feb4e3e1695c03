package retry

import (
	"errors"

	"titledb/internal/services"
)

// Never treats every failure as retryable.
func Never(error) bool { return false }

// NotFound stops on HTTP 404.
func NotFound(err error) bool { return errors.Is(err, services.ErrNotFound) }

// Forbidden stops on HTTP 403.
func Forbidden(err error) bool { return errors.Is(err, services.ErrForbidden) }

// OnStatus stops when the failure carries one of codes.
func OnStatus(codes ...int) Classifier {
	return func(err error) bool {
		status := services.StatusCode(err)
		for _, code := range codes {
			if status == code {
				return true
			}
		}
		return false
	}
}

// Any combines classifiers.
func Any(classifiers ...Classifier) Classifier {
	return func(err error) bool {
		for _, c := range classifiers {
			if c != nil && c(err) {
				return true
			}
		}
		return false
	}
}
