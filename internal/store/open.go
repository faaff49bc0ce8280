package store

import (
	"context"
	"fmt"
	"github.com/ariefcatur/go-storefront/internal/config"
	"github.com/ariefcatur/go-storefront/internal/postgres"
	"github.com/ariefcatur/go-storefront/internal/redisx"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"log"
)

// Open builds the backend named by cfg.StoreDriver.
func Open(ctx context.Context, cfg config.Config) (RecordStore, error) {
	switch cfg.StoreDriver {
	case "memory":
		log.Printf("store: memory (data is lost on exit)")
		return NewMemory(), nil

	case "file", "":
		log.Printf("store: file dir=%s", cfg.DataDir)
		return NewFile(cfg.DataDir)

	case "postgres":
		pool, err := postgres.Connect(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("postgres connect: %w", err)
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("postgres migrate: %w", err)
		}
		log.Printf("store: postgres")
		return &Postgres{DB: pool}, nil

	case "redis":
		rdb := redisx.New(cfg.RedisAddr)
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		log.Printf("store: redis addr=%s", cfg.RedisAddr)
		return &Redis{RDB: rdb}, nil

	case "dynamodb":
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			return nil, fmt.Errorf("aws config: %w", err)
		}
		log.Printf("store: dynamodb table=%s", cfg.DynamoTable)
		return &DynamoDB{Client: dynamodb.NewFromConfig(awsCfg), Table: cfg.DynamoTable}, nil

	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
}
