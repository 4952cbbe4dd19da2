package main

import (
	"context"
	"flag"
	"go-friendship/internal/common/middleware/mhttp"
	"go-friendship/internal/friendship/config"
	"go-friendship/internal/friendship/logic"
	"go-friendship/internal/friendship/repository"
	"go-friendship/internal/friendship/server"
	"go-friendship/internal/pkg/db"
	"go-friendship/internal/pkg/etcd"
	"go-friendship/internal/pkg/log"
	"go-friendship/internal/pkg/mongo"
	"go-friendship/internal/pkg/mpprof"
	"go-friendship/internal/pkg/mprometheus"
	"go-friendship/internal/pkg/mtrace"
	"go-friendship/internal/pkg/redis"
	"go-friendship/internal/pkg/snowflake"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var cfg = flag.String("c", "./config.yaml", "")

func main() {
	flag.Parse()

	c := config.ParseConfig(*cfg)

	log.InitLogger(c.Log)
	defer log.Close()
	mtrace.InitTelemetry(c.Trace)
	defer mtrace.Shutdown(context.Background())
	snowflake.InitSnowflake(c.Server.NodeID)
	if c.Pprof != "" {
		mpprof.RegisterPprof(c.Pprof)
	}

	if c.Prometheus.Enable {
		prometheus.MustRegister(mprometheus.RequestTransitions)
	}

	store := openStore(c)
	defer store.Close()

	var opts []server.Option
	rdb := redis.NewRedis(c.Redis)
	if rdb != nil {
		defer rdb.Close()
		opts = append(opts, server.WithLocker(rdb))
		if c.Prometheus.Enable {
			prometheus.MustRegister(mprometheus.RedisPrometheus(rdb, "friendship", "redis"))
		}
	}
	if c.Prometheus.Enable {
		mprometheus.Serve(&c.Prometheus)
	}

	svc := server.NewServer(store, opts...)

	if c.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.RecoveryWithWriter(log.Output()), mhttp.AccessLog())
	if c.Cors.Enable {
		engine.Use(mhttp.Cors(c.Cors))
	}
	if c.Trace.Enable {
		engine.Use(mhttp.Trace())
	}
	api := engine.Group("/api")

	friendshipApi := logic.NewFriendshipApi(svc)
	friendshipApi.RegisterRouter(api)

	engine.NoRoute(logic.NoRoute("/api", c.Server.StaticDir))

	httpSvc := http.Server{
		Addr:    c.Server.Addr,
		Handler: engine,
	}

	registry := etcd.NewRegistry(c.Server.Etcd)
	if registry != nil {
		if err := registry.Register(context.Background(), c.Server.Addr); err != nil {
			panic(err)
		}
		defer registry.Close()
		defer func() {
			if err := registry.Deregister(context.Background()); err != nil {
				log.Warnf("%v", err)
			}
		}()
	}

	done := make(chan struct{})
	signals := make(chan os.Signal, 1)

	go func() {
		if err := httpSvc.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorf("http server: %v", err)
		}
		done <- struct{}{}
	}()

	log.Infof("friendship server listening on %s", c.Server.Addr)

	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-signals:
	case <-done:
	}

	log.Infof("friendship server shutdown.")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	httpSvc.Shutdown(ctx)
}

func openStore(c *config.Config) repository.Store {
	switch c.Store.Driver {
	case config.DriverMongo:
		m := mongo.NewMongo(c.Store.Mongo)
		repo := repository.NewMongoFriendRequestRepository(m)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := repo.Migrate(ctx); err != nil {
			panic(err)
		}
		return repo
	case config.DriverMemory:
		log.Warn("using in-memory store, requests are lost on restart")
		return repository.NewMemoryStore()
	}
	d := db.NewDB(c.Store.Sql)
	if c.Prometheus.Enable {
		if err := mprometheus.GormPrometheus(&c.Prometheus, d.DB, c.Store.Sql.DbName); err != nil {
			log.Warnf("gorm prometheus plugin: %v", err)
		}
	}
	repo := repository.NewFriendRequestRepository(d)
	if err := repo.Migrate(); err != nil {
		panic(err)
	}
	return repo
}
