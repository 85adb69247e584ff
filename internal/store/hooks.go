package store

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/lib/pq"
	"github.com/qustavo/sqlhooks/v2"

	"github.com/plantwatch/telemetry-pipeline/pkg/log"
)

var registerOnce sync.Once

// registerHookedDriver registers the "postgresWithHooks" sql.Driver,
// wrapping lib/pq with query/arg/timing debug logging. Idempotent.
func registerHookedDriver() error {
	registerOnce.Do(func() {
		sql.Register("postgresWithHooks", sqlhooks.Wrap(&pq.Driver{}, &queryLogHook{}))
	})
	return nil
}

type queryLogHookCtxKey struct{}

// queryLogHook satisfies sqlhooks.Hooks, logging every query at
// debug level along with its elapsed time.
type queryLogHook struct{}

func (h *queryLogHook) Before(ctx context.Context, query string, args ...interface{}) (context.Context, error) {
	log.Debugf("store: query %s %q", query, args)
	return context.WithValue(ctx, queryLogHookCtxKey{}, time.Now()), nil
}

func (h *queryLogHook) After(ctx context.Context, query string, args ...interface{}) (context.Context, error) {
	if begin, ok := ctx.Value(queryLogHookCtxKey{}).(time.Time); ok {
		log.Debugf("store: took %s", time.Since(begin))
	}
	return ctx, nil
}
