package redis

import (
	"context"
	"go-friendship/internal/pkg/mtrace"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
)

type Config struct {
	Addr     string `json:"addr" yaml:"addr"`
	Password string `json:"password" yaml:"password"`
	DB       int    `json:"db" yaml:"db"`
}

type Redis struct {
	*redis.Client
}

// NewRedis returns nil when no address is configured.
func NewRedis(cfg Config) *Redis {
	if strings.TrimSpace(cfg.Addr) == "" {
		return nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := rdb.Ping(ctx).Err()
	if err != nil {
		panic(err)
	}
	return &Redis{Client: rdb}
}

func (r *Redis) Wrap(ctx context.Context, f func(ctx context.Context) (any, string, error)) (any, error) {
	ctx, span := mtrace.StartSpan(ctx, "redis", trace.WithSpanKind(trace.SpanKindInternal))
	defer mtrace.EndSpan(span)
	ret, cmd, err := f(ctx)
	span.SetAttributes(mtrace.RedisExecCmd.String(cmd))
	if err != nil {
		span.SetAttributes(mtrace.RedisExecError.String(err.Error()))
	}
	return ret, err
}

// unlockScript deletes the key only if it still holds the caller's token.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// TryLock sets key to token if absent, expiring after ttl.
func (r *Redis) TryLock(ctx context.Context, key, token string, ttl time.Duration) (bool, error) {
	ret, err := r.Wrap(ctx, func(ctx2 context.Context) (any, string, error) {
		cmd := r.SetNX(ctx2, key, token, ttl)
		return cmd.Val(), cmd.String(), cmd.Err()
	})
	if err != nil {
		return false, err
	}
	return ret.(bool), nil
}

func (r *Redis) Unlock(ctx context.Context, key, token string) error {
	_, err := r.Wrap(ctx, func(ctx2 context.Context) (any, string, error) {
		cmd := unlockScript.Run(ctx2, r.Client, []string{key}, token)
		return cmd.Val(), cmd.String(), cmd.Err()
	})
	return err
}
