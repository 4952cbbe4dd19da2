package mongo

import (
	"context"
	"go-friendship/internal/pkg/mtrace"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.opentelemetry.io/otel/trace"
)

type Config struct {
	URI         string `json:"uri" yaml:"uri"`
	Database    string `json:"database" yaml:"database"`
	MaxPoolSize uint64 `json:"max_pool_size" yaml:"max_pool_size"`
	Timeout     int    `json:"timeout" yaml:"timeout"`
}

type Mongo struct {
	*mongo.Database
	client *mongo.Client
}

func NewMongo(cfg Config) *Mongo {
	if cfg.URI == "" {
		cfg.URI = "mongodb://127.0.0.1:27017"
	}
	if cfg.Database == "" {
		cfg.Database = "friendships"
	}
	if cfg.MaxPoolSize == 0 {
		cfg.MaxPoolSize = 10
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5
	}
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetMaxPoolSize(cfg.MaxPoolSize).
		SetConnectTimeout(time.Duration(timeout) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeout)*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		panic(err)
	}
	if err = client.Ping(ctx, readpref.Primary()); err != nil {
		panic(err)
	}
	return &Mongo{Database: client.Database(cfg.Database), client: client}
}

// FromDatabase wraps an already connected database.
func FromDatabase(db *mongo.Database) *Mongo {
	return &Mongo{Database: db, client: db.Client()}
}

func (m *Mongo) Client() *mongo.Client {
	return m.client
}

func (m *Mongo) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}

// Wrap runs f inside a tracing span tagged with the collection it touches.
func (m *Mongo) Wrap(ctx context.Context, name, collection string, f func(ctx context.Context) error) error {
	ctx, span := mtrace.StartSpan(ctx, name, trace.WithSpanKind(trace.SpanKindClient))
	defer mtrace.EndSpan(span)
	span.SetAttributes(mtrace.MongoCollection.String(collection))
	err := f(ctx)
	if err != nil {
		span.SetAttributes(mtrace.MongoError.String(err.Error()))
	}
	return err
}
