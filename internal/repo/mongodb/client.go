package mongodb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/geocoder89/socialapp/internal/apperr"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	usersCollection = "users"
	postsCollection = "posts"
)

// Observer times a logical store operation. *observability.Prom satisfies it.
type Observer interface {
	ObserveDB(op string, fn func() error) error
}

type nopObserver struct{}

func (nopObserver) ObserveDB(_ string, fn func() error) error { return fn() }

type Config struct {
	URI      string
	Database string

	// bounds how long a call waits for a reachable server
	ServerSelectionTimeout time.Duration
	ConnectTimeout         time.Duration

	Observer Observer
}

// Client is the shared store handle. It is built once at startup and is safe
// for concurrent use. When the startup connection failed it stays
// unavailable and every operation fails fast with apperr.ErrStoreUnavailable.
type Client struct {
	client *mongo.Client
	db     *mongo.Database
	obs    Observer
}

// Connect dials, pings and creates indexes. It never returns an error: a
// failure is logged and the returned client is unavailable.
func Connect(ctx context.Context, cfg Config, log *slog.Logger) *Client {
	c := &Client{obs: cfg.Observer}
	if c.obs == nil {
		c.obs = nopObserver{}
	}

	if cfg.ServerSelectionTimeout <= 0 {
		cfg.ServerSelectionTimeout = 3 * time.Second
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 5 * time.Second
	}

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetServerSelectionTimeout(cfg.ServerSelectionTimeout).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetAppName("socialapp-api")

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		log.Error("mongodb connect failed, store unavailable", "err", err)
		return c
	}

	err = client.Ping(ctx, readpref.Primary())
	if err != nil {
		log.Error("mongodb ping failed, store unavailable", "err", err)
		_ = client.Disconnect(context.Background())
		return c
	}

	db := client.Database(cfg.Database)

	err = ensureIndexes(ctx, db)
	if err != nil {
		// uniqueness still holds once the index exists; keep serving reads
		log.Error("mongodb index setup failed", "err", err)
	}

	c.client = client
	c.db = db

	log.Info("mongodb connected", "database", cfg.Database)

	return c
}

// Available reports whether the startup connection succeeded.
func (c *Client) Available() bool {
	return c != nil && c.db != nil
}

func (c *Client) Ping(ctx context.Context) error {
	if !c.Available() {
		return apperr.ErrStoreUnavailable
	}

	return mapErr(c.client.Ping(ctx, readpref.Primary()))
}

func (c *Client) Disconnect(ctx context.Context) error {
	if !c.Available() {
		return nil
	}

	return c.client.Disconnect(ctx)
}

func (c *Client) collection(name string) (*mongo.Collection, error) {
	if !c.Available() {
		return nil, apperr.ErrStoreUnavailable
	}

	return c.db.Collection(name), nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("email_unique"),
	})
	if err != nil {
		return fmt.Errorf("users.email index: %w", err)
	}

	_, err = db.Collection(postsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}},
		Options: options.Index().SetName("created_at_desc"),
	})
	if err != nil {
		return fmt.Errorf("posts.createdAt index: %w", err)
	}

	return nil
}

// mapErr turns driver connectivity failures into apperr.ErrStoreUnavailable.
func mapErr(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, mongo.ErrClientDisconnected) || mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return fmt.Errorf("%w: %v", apperr.ErrStoreUnavailable, err)
	}

	return err
}
