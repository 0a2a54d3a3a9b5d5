package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/sarahsindone/sbrp-application/config"
)

// MongoConfig holds document-store connection settings.
type MongoConfig struct {
	URI         string
	Name        string
	MaxPoolSize uint64

	ConnectTimeoutSeconds   int
	OperationTimeoutSeconds int
}

// DefaultMongoConfig returns sensible defaults for a local MongoDB.
func DefaultMongoConfig() MongoConfig {
	return MongoConfig{
		URI:                     "mongodb://localhost:27017",
		Name:                    "sbrp",
		MaxPoolSize:             50,
		ConnectTimeoutSeconds:   10,
		OperationTimeoutSeconds: 5,
	}
}

// ConnectTimeout returns the connect timeout as a duration
func (c MongoConfig) ConnectTimeout() time.Duration {
	if c.ConnectTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.ConnectTimeoutSeconds) * time.Second
}

// OperationTimeout bounds each individual store call.
func (c MongoConfig) OperationTimeout() time.Duration {
	if c.OperationTimeoutSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.OperationTimeoutSeconds) * time.Second
}

// MongoFromCentralConfig converts central config.MongoConfig to package MongoConfig
func MongoFromCentralConfig(c config.MongoConfig) MongoConfig {
	def := DefaultMongoConfig()
	cfg := MongoConfig{
		URI:                     c.URI,
		Name:                    c.Name,
		MaxPoolSize:             c.MaxPoolSize,
		ConnectTimeoutSeconds:   c.ConnectTimeoutSeconds,
		OperationTimeoutSeconds: c.OperationTimeoutSecond,
	}
	if cfg.Name == "" {
		cfg.Name = def.Name
	}
	if cfg.MaxPoolSize == 0 {
		cfg.MaxPoolSize = def.MaxPoolSize
	}
	return cfg
}

// NewMongoClient connects to MongoDB and verifies the primary is reachable.
func NewMongoClient(ctx context.Context, cfg MongoConfig) (*mongo.Client, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("mongo uri is empty")
	}

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetMaxPoolSize(cfg.MaxPoolSize).
		SetConnectTimeout(cfg.ConnectTimeout()).
		SetTimeout(cfg.OperationTimeout())

	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout())
	defer cancel()

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping failed: %w", err)
	}

	return client, nil
}
