package components

import (
	"log/slog"

	"travel-backoffice/internal/infra/readstore"
	"travel-backoffice/internal/infra/redisstore"
	"travel-backoffice/internal/infra/repository"
	"travel-backoffice/internal/infra/retry"
	sqlc "travel-backoffice/internal/infra/sqlc/generated"
	"travel-backoffice/internal/pkg/config"
	"travel-backoffice/internal/pkg/errs"
	"travel-backoffice/internal/usecase/queries"
	"travel-backoffice/internal/usecase/shared"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var RepositoryModule = fx.Module("repository",
	fx.Provide(
		NewSQLQueries,
		NewBookingStores,
	),
)

type storeParams struct {
	fx.In

	Config  config.Config
	Logger  *slog.Logger
	Queries *sqlc.Queries
	Pool    *pgxpool.Pool         `optional:"true"`
	Redis   redis.UniversalClient `optional:"true"`
}

type storeResult struct {
	fx.Out

	Store  shared.BookingStore
	Reader queries.BookingReadStore
}

// NewBookingStores picks the version store backend. Writes go through the
// retrying decorator; reads hit the backend directly.
func NewBookingStores(p storeParams) (storeResult, error) {
	var (
		store  shared.BookingStore
		reader queries.BookingReadStore
	)

	switch p.Config.Store.Driver {
	case config.StoreDriverRedis:
		if p.Redis == nil {
			return storeResult{}, errs.New("redis store selected but no redis client is configured")
		}
		s := redisstore.NewStore(p.Redis, p.Config.Redis.KeyPrefix, p.Logger)
		store = s
		reader = redisstore.NewReadStore(s)
	default:
		if p.Pool == nil {
			return storeResult{}, errs.New("postgres store selected but no database pool is configured")
		}
		store = repository.NewBookingRepository(p.Queries, p.Pool, p.Logger)
		reader = readstore.NewBookingReadStore(p.Queries, p.Pool, p.Logger)
	}

	return storeResult{
		Store:  retry.NewStore(store, p.Config.Store.Driver, p.Config.Store.MaxRetries, p.Config.Store.RetryBase, p.Logger),
		Reader: reader,
	}, nil
}

func NewSQLQueries() *sqlc.Queries {
	return sqlc.New()
}
