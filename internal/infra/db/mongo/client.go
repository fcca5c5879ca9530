package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	defaultAppName        = "venuedesk"
	defaultConnectTimeout = 10 * time.Second
)

// Client holds the venuedesk database handle shared by repositories, the
// outbox store and the inbox.
type Client struct {
	DB *mongo.Database
}

// ConnectOptions tune the driver. Zero values pick the defaults.
type ConnectOptions struct {
	AppName        string
	ConnectTimeout time.Duration
	MaxPoolSize    uint64
}

// Connect dials the deployment and pings the primary before returning, so a
// wrong URI fails at startup rather than on the first booking.
func Connect(ctx context.Context, uri, database string, o ConnectOptions) (*Client, error) {
	if strings.TrimSpace(uri) == "" {
		return nil, errors.New("mongo: uri is required")
	}
	if strings.TrimSpace(database) == "" {
		return nil, errors.New("mongo: database is required")
	}
	if o.AppName == "" {
		o.AppName = defaultAppName
	}
	if o.ConnectTimeout <= 0 {
		o.ConnectTimeout = defaultConnectTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, o.ConnectTimeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(uri).
		SetAppName(o.AppName).
		SetRetryWrites(true).
		SetConnectTimeout(o.ConnectTimeout)
	if o.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(o.MaxPoolSize)
	}
	m, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo: connect: %w", err)
	}
	if err := m.Ping(ctx, readpref.Primary()); err != nil {
		_ = m.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo: ping: %w", err)
	}
	return &Client{DB: m.Database(database)}, nil
}

// Ping backs the readiness probe.
func (c *Client) Ping(ctx context.Context) error {
	return c.DB.Client().Ping(ctx, readpref.Primary())
}

// Close disconnects the underlying driver client.
func (c *Client) Close(ctx context.Context) error {
	return c.DB.Client().Disconnect(ctx)
}
