package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"customerd/pkg/customer"
	"customerd/pkg/customer/memory"
	pg "customerd/pkg/customer/postgres"
	"customerd/pkg/customer/redisrepo"
	"customerd/pkg/handlers"
	"customerd/pkg/logger"
	"customerd/pkg/otel"
)

// @title Customer API
// @version 1.0
// @description API for managing customer records
// @host localhost:3000
// @BasePath /
func main() {
	log := logger.New(os.Stdout, logger.LevelInfo, "customerd", otel.GetTraceID)
	ctx := context.Background()

	tp, shutdown, err := otel.InitTracing(log, otel.Config{
		ServiceName: "customerd",
		Host:        os.Getenv("OTEL_HOST"),
		Probability: 1.0,
	})
	if err != nil {
		log.Error(ctx, "init tracing", "error", err)
		os.Exit(1)
	}
	defer shutdown(ctx)
	tracer := tp.Tracer("customerd")

	repo, err := buildRepository(ctx, log)
	if err != nil {
		log.Error(ctx, "init store", "error", err)
		os.Exit(1)
	}

	r := handlers.New(log, repo, tracer).Routes()

	addr := os.Getenv("ADDR")
	if addr == "" {
		addr = ":3000"
	}

	cert, key := os.Getenv("TLS_CERT"), os.Getenv("TLS_KEY")
	log.Info(ctx, "listening", "addr", addr, "tls", cert != "")
	if cert != "" && key != "" {
		err = http.ListenAndServeTLS(addr, cert, key, r)
	} else {
		err = http.ListenAndServe(addr, r)
	}
	log.Error(ctx, "server closed", "error", err)
}

// buildRepository picks the storage backend: postgres when DATABASE_URL is
// set, redis when REDIS_ADDR is set, otherwise the in-memory store seeded
// from CUSTOMERS_FILE (missing or unreadable seed data means an empty
// store, not an error).
func buildRepository(ctx context.Context, log *logger.Logger) (customer.Repository, error) {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		db, err := sql.Open("postgres", dsn)
		if err != nil {
			return nil, err
		}
		if _, err := db.Exec("CREATE TABLE IF NOT EXISTS customers (pos BIGSERIAL, guid TEXT PRIMARY KEY, first_name TEXT, last_name TEXT, email TEXT, address TEXT)"); err != nil {
			return nil, err
		}
		log.Info(ctx, "store", "backend", "postgres")
		return pg.New(db), nil
	}

	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		log.Info(ctx, "store", "backend", "redis", "addr", addr)
		return redisrepo.New(redis.NewClient(&redis.Options{Addr: addr})), nil
	}

	path := os.Getenv("CUSTOMERS_FILE")
	if path == "" {
		path = "./data/customers.json"
	}
	log.Info(ctx, "store", "backend", "memory", "seed", path)
	return memory.FromFile(path), nil
}
