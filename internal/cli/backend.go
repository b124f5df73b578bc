package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/jacentio/moviereview/review"
	"github.com/jacentio/moviereview/sqlstore"
	"github.com/jacentio/moviereview/store"
)

// openLedger opens the backend named by s. The returned func releases it.
func openLedger(ctx context.Context, s Settings, logger *slog.Logger) (review.Ledger, func() error, error) {
	switch s.Backend {
	case "sqlite":
		db, err := sqlstore.Open(s.SQLite.Path)
		if err != nil {
			return nil, nil, err
		}
		logger.DebugContext(ctx, "sqlite ledger opened", "path", s.SQLite.Path)
		return db, db.Close, nil

	case "dynamodb":
		var opts []func(*awsconfig.LoadOptions) error
		if s.DynamoDB.Region != "" {
			opts = append(opts, awsconfig.WithRegion(s.DynamoDB.Region))
		}
		if s.DynamoDB.Profile != "" {
			opts = append(opts, awsconfig.WithSharedConfigProfile(s.DynamoDB.Profile))
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			return nil, nil, fmt.Errorf("load AWS config: %w", err)
		}

		client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
			if s.DynamoDB.Endpoint != "" {
				o.BaseEndpoint = aws.String(s.DynamoDB.Endpoint)
			}
		})
		ledger := store.New(client, store.Config{
			RecordTable:  s.DynamoDB.RecordTable,
			AccountTable: s.DynamoDB.AccountTable,
		})
		tables := ledger.Config()
		logger.DebugContext(ctx, "dynamodb ledger opened",
			"record_table", tables.RecordTable,
			"account_table", tables.AccountTable,
			"region", awsCfg.Region,
		)
		return ledger, func() error { return nil }, nil
	}
	return nil, nil, fmt.Errorf("unknown backend %q: must be one of %v", s.Backend, ValidBackends)
}

// openStore opens the ledger and wraps it in a review.Store logging to logger.
func openStore(ctx context.Context, s Settings, logger *slog.Logger) (*review.Store, func() error, error) {
	ledger, closeFn, err := openLedger(ctx, s, logger)
	if err != nil {
		return nil, nil, err
	}

	cfg := review.DefaultConfig()
	if s.LockStripes > 0 {
		cfg.LockStripes = s.LockStripes
	}
	cfg.Logger = logger
	return review.New(ledger, cfg), closeFn, nil
}
