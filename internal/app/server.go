package app

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"jwt-pizza-service/internal/common/httpx"
	"jwt-pizza-service/internal/common/logger"
	"jwt-pizza-service/internal/common/metrics"
	"jwt-pizza-service/internal/config"
	"jwt-pizza-service/internal/connections/database"
	"jwt-pizza-service/internal/connections/rabbitmq"
	"jwt-pizza-service/internal/microservices/order/factory"
	orderservice "jwt-pizza-service/internal/microservices/order/service"
	"jwt-pizza-service/internal/repository"
)

// Run connects the configured backends and serves HTTP until ctx is
// cancelled.
func Run(ctx context.Context, cfg *config.Config) error {
	lg := logger.New("pizza-service")
	m := metrics.New()

	deps := Deps{
		Config:    cfg,
		Metrics:   m,
		Fulfiller: factory.NewClient(cfg.Factory),
		Publisher: orderservice.NopPublisher{},
	}

	if cfg.Database.Enabled() {
		pool, err := database.ConnectDB(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer pool.Close()
		if err := database.EnsureSchema(ctx, pool); err != nil {
			return err
		}
		deps.Repo = repository.NewPostgres(pool)
		deps.DB = pool
		lg.Info("database_connected", map[string]any{"host": cfg.Database.Host, "database": cfg.Database.Database})
	} else {
		deps.Repo = repository.NewMemory()
		lg.Warn("memory_store", map[string]any{"reason": "database.host is empty"})
	}

	if cfg.Auth.TokenStore == "redis" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis ping: %w", err)
		}
		deps.Repo.Tokens = repository.NewRedisTokenRepository(rdb, cfg.Redis.Prefix)
		lg.Info("token_store", map[string]any{"store": "redis", "addr": cfg.Redis.Addr})
	}

	if cfg.RabbitMQ.Enabled() {
		client, err := rabbitmq.Dial(cfg.RabbitMQ)
		if err != nil {
			return err
		}
		defer client.Close()
		pub, err := rabbitmq.NewOrderPublisher(client, cfg.RabbitMQ.Exchange)
		if err != nil {
			return err
		}
		deps.Publisher = pub
		deps.Broker = client
		lg.Info("rabbitmq_connected", map[string]any{"exchange": cfg.RabbitMQ.Exchange})
	}

	a := New(deps)
	if err := a.EnsureAdmin(ctx); err != nil {
		return err
	}

	srv := httpx.New(":"+strconv.Itoa(cfg.HTTP.Port), a.Handler)
	srv.ReadTimeout = cfg.HTTP.ReadTimeout
	srv.WriteTimeout = cfg.HTTP.WriteTimeout
	srv.ShutdownTimeout = cfg.HTTP.ShutdownTimeout

	lg.Info("service_started", map[string]any{"port": cfg.HTTP.Port, "version": Version})
	err := srv.Run(ctx)
	lg.Info("service_stopped", nil)
	return err
}
