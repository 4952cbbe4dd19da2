package etcd

import (
	"context"
	"go-friendship/internal/pkg/log"
	"go-friendship/internal/pkg/utils"
	"path"
	"strings"
	"time"

	"github.com/pkg/errors"
	clientv3 "go.etcd.io/etcd/client/v3"
)

const (
	defaultPrefix = "/services/friendship"
	defaultTTL    = 60
	opTimeout     = 3 * time.Second
)

type Config struct {
	Addr string `json:"addr" yaml:"addr"`
	// Key is the prefix every replica registers under, as <Key>/<http addr>.
	Key string `json:"key" yaml:"key"`
	TTL int64  `json:"ttl" yaml:"ttl"`
}

type leasedKV interface {
	clientv3.KV
	clientv3.Lease
}

// Registry announces one replica's HTTP address on a leased key. The key
// disappears on its own if the process dies without deregistering.
type Registry struct {
	kv     leasedKV
	closer func() error
	prefix string
	ttl    int64

	key   string
	lease clientv3.LeaseID
}

// NewRegistry returns nil when no etcd endpoints are configured.
func NewRegistry(cfg Config) *Registry {
	if strings.TrimSpace(cfg.Addr) == "" {
		return nil
	}
	cli, err := clientv3.New(clientv3.Config{
		Endpoints:   strings.Split(cfg.Addr, ","),
		DialTimeout: 5 * time.Second,
	})
	if err != nil {
		panic(err)
	}
	return newRegistry(cli, cli.Close, cfg)
}

func newRegistry(kv leasedKV, closer func() error, cfg Config) *Registry {
	if cfg.Key == "" {
		cfg.Key = defaultPrefix
	}
	if cfg.TTL <= 0 {
		cfg.TTL = defaultTTL
	}
	return &Registry{kv: kv, closer: closer, prefix: cfg.Key, ttl: cfg.TTL}
}

// Register publishes addr and keeps its lease alive until Deregister.
func (r *Registry) Register(ctx context.Context, addr string) error {
	if strings.TrimSpace(addr) == "" {
		return errors.New("etcd register: empty address")
	}
	key := path.Join(r.prefix, addr)

	gctx, cancel := context.WithTimeout(ctx, opTimeout)
	grant, err := r.kv.Grant(gctx, r.ttl)
	cancel()
	if err != nil {
		return errors.Wrap(err, "etcd grant")
	}
	pctx, cancel := context.WithTimeout(ctx, opTimeout)
	_, err = r.kv.Put(pctx, key, addr, clientv3.WithLease(grant.ID))
	cancel()
	if err != nil {
		return errors.Wrapf(err, "etcd put %s", key)
	}
	acks, err := r.kv.KeepAlive(context.WithoutCancel(ctx), grant.ID)
	if err != nil {
		return errors.Wrap(err, "etcd keepalive")
	}
	r.key, r.lease = key, grant.ID
	utils.SafeGo(func() {
		for range acks {
		}
		log.Warnf("etcd lease for %s no longer kept alive", key)
	})
	log.Infof("registered %s in etcd", key)
	return nil
}

// Deregister revokes the lease, which also removes the key.
func (r *Registry) Deregister(ctx context.Context) error {
	if r.key == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	_, err := r.kv.Revoke(ctx, r.lease)
	r.key, r.lease = "", 0
	return errors.Wrap(err, "etcd revoke")
}

func (r *Registry) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer()
}
