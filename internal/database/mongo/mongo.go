package mongo

import (
	"context"
	"fmt"

	"github.com/PrathushaR/ithotlist-api/internal/config"
	"github.com/PrathushaR/ithotlist-api/internal/logger"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

const (
	JobsCollection       = "jobs"
	CandidatesCollection = "candidates"
	HotlistsCollection   = "hotlists"
)

// Client wraps the driver client together with the selected database.
type Client struct {
	client   *mongo.Client
	database *mongo.Database
	cfg      config.MongoDBConfig
	log      logger.Logger
}

// Connect opens the pool and pings the primary. A failed ping is returned
// so the caller can stop the process instead of serving without storage.
func Connect(ctx context.Context, cfg config.MongoDBConfig, log logger.Logger) (*Client, error) {
	clientOptions := options.Client().
		ApplyURI(cfg.URI).
		SetMaxPoolSize(cfg.PoolSize).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetServerSelectionTimeout(cfg.ConnectTimeout)

	client, err := mongo.Connect(clientOptions)
	if err != nil {
		return nil, fmt.Errorf("connect to MongoDB: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping MongoDB: %w", err)
	}

	log.Info("connected to MongoDB", map[string]interface{}{"database": cfg.Database})
	return &Client{
		client:   client,
		database: client.Database(cfg.Database),
		cfg:      cfg,
		log:      log,
	}, nil
}

func (c *Client) Database() *mongo.Database {
	return c.database
}

func (c *Client) Collection(name string) *mongo.Collection {
	return c.database.Collection(name)
}

// Ping checks the primary, used by the health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx, readpref.Primary())
}

func (c *Client) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.ConnectTimeout)
	defer cancel()

	if err := c.client.Disconnect(ctx); err != nil {
		c.log.Error("error disconnecting from MongoDB", map[string]interface{}{"error": err})
	}
}
