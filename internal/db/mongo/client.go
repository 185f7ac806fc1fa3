// Package mongo provides MongoDB database connectivity.
package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"norelock.dev/mongorepo/internal/config"
	"norelock.dev/mongorepo/internal/utils"
)

// Client wraps the MongoDB client with the configured database and logger.
type Client struct {
	client   *mongo.Client
	database string
	timeout  time.Duration
	logger   *utils.Logger
}

// ClientOptions builds driver options from the database section of cfg.
func ClientOptions(cfg *config.Config) *options.ClientOptions {
	m := cfg.Database.MongoDB
	opts := options.Client().
		ApplyURI(m.URI).
		SetMaxConnIdleTime(m.MaxIdleTime)
	if m.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(m.MaxPoolSize)
	}
	if m.MinPoolSize > 0 {
		opts.SetMinPoolSize(m.MinPoolSize)
	}
	if m.Timeout > 0 {
		opts.SetConnectTimeout(m.Timeout).SetServerSelectionTimeout(m.Timeout)
	}
	return opts
}

// NewClient connects to MongoDB and verifies the connection with a ping.
func NewClient(cfg *config.Config, logger *utils.Logger) (*Client, error) {
	if logger == nil {
		logger = utils.GetLogger()
	}
	logger = logger.Named("mongo")

	timeout := cfg.Database.MongoDB.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client, err := mongo.Connect(ClientOptions(cfg))
	if err != nil {
		logger.Error("Failed to connect to MongoDB", err)
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err = client.Ping(ctx, readpref.Primary()); err != nil {
		logger.Error("Failed to ping MongoDB", err)
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	logger.Info("Connected to MongoDB", "database", cfg.Database.MongoDB.Database)

	return &Client{
		client:   client,
		database: cfg.Database.MongoDB.Database,
		timeout:  timeout,
		logger:   logger,
	}, nil
}

// Database returns the configured MongoDB database
func (c *Client) Database() *mongo.Database {
	return c.client.Database(c.database)
}

// Collection returns a MongoDB collection
func (c *Client) Collection(name string) *mongo.Collection {
	return c.Database().Collection(name)
}

// Client returns the underlying MongoDB client
func (c *Client) Client() *mongo.Client {
	return c.client
}

// Disconnect closes the MongoDB connection
func (c *Client) Disconnect(ctx context.Context) error {
	if err := c.client.Disconnect(ctx); err != nil {
		c.logger.Error("Failed to disconnect from MongoDB", err)
		return err
	}
	c.logger.Info("Disconnected from MongoDB")
	return nil
}

// WithTransaction executes fn within a MongoDB transaction. Repository calls
// made with sessCtx join the transaction.
func (c *Client) WithTransaction(ctx context.Context, fn func(sessCtx context.Context) (any, error)) (any, error) {
	session, err := c.client.StartSession()
	if err != nil {
		c.logger.Error("Failed to start MongoDB session", err)
		return nil, err
	}
	defer session.EndSession(ctx)

	result, err := session.WithTransaction(ctx, fn)
	if err != nil {
		c.logger.Error("MongoDB transaction failed", err)
		return nil, err
	}

	return result, nil
}

// WithContext creates a context bounded by the configured timeout
func (c *Client) WithContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), c.timeout)
}

// DatabaseName returns the name of the database
func (c *Client) DatabaseName() string {
	return c.database
}

// Logger returns the logger used by the client
func (c *Client) Logger() *utils.Logger {
	return c.logger
}
