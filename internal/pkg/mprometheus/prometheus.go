package mprometheus

import (
	"go-friendship/internal/pkg/log"
	"go-friendship/internal/pkg/redis"
	"go-friendship/internal/pkg/utils"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/extra/redisprometheus/v9"
	"gorm.io/gorm"
	gormp "gorm.io/plugin/prometheus"
)

type Config struct {
	Listen   string `json:"listen" yaml:"listen"`
	Addr     string `json:"addr" yaml:"addr"`
	User     string `json:"user" yaml:"user"`
	Password string `json:"password" yaml:"password"`
	Enable   bool   `json:"enable" yaml:"enable"`
}

var RequestTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "friendship",
	Name:      "request_transitions_total",
	Help:      "Friend request lifecycle operations by operation and outcome.",
}, []string{"op", "result"})

func GormPrometheus(c *Config, db *gorm.DB, dbName string) error {
	return db.Use(gormp.New(gormp.Config{
		DBName:          dbName,
		RefreshInterval: 15,
		PushAddr:        c.Addr,
		PushUser:        c.User,
		PushPassword:    c.Password,
	}))
}

func RedisPrometheus(rdb *redis.Redis, namespace, subsystem string) prometheus.Collector {
	return redisprometheus.NewCollector(namespace, subsystem, rdb.Client)
}

// Serve exposes /metrics on its own listener.
func Serve(c *Config) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	utils.SafeGo(func() {
		log.Infof("metrics listening on %s", c.Listen)
		if err := http.ListenAndServe(c.Listen, mux); err != nil {
			log.Errorf("metrics server: %v", err)
		}
	})
}
