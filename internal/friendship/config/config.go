package config

import (
	"fmt"
	"go-friendship/internal/common/middleware/mhttp"
	"go-friendship/internal/pkg/db"
	"go-friendship/internal/pkg/etcd"
	"go-friendship/internal/pkg/log"
	"go-friendship/internal/pkg/mongo"
	"go-friendship/internal/pkg/mprometheus"
	"go-friendship/internal/pkg/mtrace"
	"go-friendship/internal/pkg/redis"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"
)

type StoreConfig struct {
	Driver string       `json:"driver" yaml:"driver"`
	Sql    db.Config    `json:"sql" yaml:"sql"`
	Mongo  mongo.Config `json:"mongo" yaml:"mongo"`
}

type ServerConfig struct {
	Addr      string      `json:"addr" yaml:"addr"`
	StaticDir string      `json:"static_dir" yaml:"static_dir"`
	NodeID    int64       `json:"node_id" yaml:"node_id"`
	Etcd      etcd.Config `json:"etcd" yaml:"etcd"`
}

type Config struct {
	Debug      bool               `json:"debug" yaml:"debug"`
	Pprof      string             `json:"pprof" yaml:"pprof"`
	Server     ServerConfig       `json:"server" yaml:"server"`
	Store      StoreConfig        `json:"store" yaml:"store"`
	Redis      redis.Config       `json:"redis" yaml:"redis"`
	Log        log.Config         `json:"log" yaml:"log"`
	Trace      mtrace.Config      `json:"trace" yaml:"trace"`
	Prometheus mprometheus.Config `json:"prometheus" yaml:"prometheus"`
	Cors       mhttp.CorsConfig   `json:"cors" yaml:"cors"`
}

func ParseConfig(file string) *Config {
	content, err := os.ReadFile(file)
	if err != nil {
		panic(err)
	}
	cfg, err := Parse(content)
	if err != nil {
		panic(err)
	}
	return cfg
}

func Parse(content []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(content, cfg); err != nil {
		return nil, err
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = "0.0.0.0:8004"
	}
	if cfg.Store.Driver == "" {
		cfg.Store.Driver = DriverMySQL
	}
	switch cfg.Store.Driver {
	case DriverMySQL, DriverPostgres:
		cfg.Store.Sql.Driver = db.DriverType(cfg.Store.Driver)
	case DriverMongo, DriverMemory:
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
	}
	if cfg.Prometheus.Enable && cfg.Prometheus.Listen == "" {
		cfg.Prometheus.Listen = "0.0.0.0:9104"
	}
	if cfg.Trace.Name == "" {
		cfg.Trace.Name = "friendship"
	}
	return cfg, nil
}
