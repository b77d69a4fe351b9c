package response

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"
)

// Unexpected handles errors no domain branch claimed. Transient storage
// failures (timeouts, dropped connections, pool exhaustion) come back as
// 503 so the client knows a retry may succeed; everything else is logged
// and answered with a plain 500.
func Unexpected(c *gin.Context, err error) {
	if IsTransient(err) {
		log.Warn().
			Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("storage temporarily unavailable")
		ServiceUnavailable(c, "service temporarily unavailable, please retry")
		return
	}

	log.Error().
		Err(err).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Msg("unhandled error")
	InternalError(c, "something went wrong")
}

// IsTransient reports whether an error is a retriable storage failure
// rather than a bug: context deadlines, network timeouts, and the
// connection-class SQLSTATEs Postgres raises when it cannot take the
// query right now.
func IsTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if pgconn.Timeout(err) || pgconn.SafeToRetry(err) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// Class 08 covers connection exceptions; 53300 is
		// too_many_connections, 57P03 cannot_connect_now.
		if strings.HasPrefix(pgErr.Code, "08") {
			return true
		}
		switch pgErr.Code {
		case "53300", "57P03":
			return true
		}
	}

	return false
}
