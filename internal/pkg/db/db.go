package db

import (
	"context"
	"database/sql"
	"fmt"
	"go-friendship/internal/pkg/mtrace"
	"net/url"
	"time"

	"go.opentelemetry.io/otel/trace"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type DriverType string

const (
	Postgres DriverType = "postgres"
	MySQL    DriverType = "mysql"
)

type Config struct {
	Driver          DriverType `json:"driver" yaml:"driver"`
	Host            string     `json:"host" yaml:"host"`
	Port            string     `json:"port" yaml:"port"`
	User            string     `json:"user" yaml:"user"`
	Password        string     `json:"password" yaml:"password"`
	DbName          string     `json:"db_name" yaml:"db_name"`
	Timezone        string     `json:"timezone" yaml:"timezone"`
	MaxOpenConns    int        `json:"max_open_conns" yaml:"max_open_conns"`
	MaxIdleConns    int        `json:"max_idle_conns" yaml:"max_idle_conns"`
	ConnMaxLifeTime int        `json:"conn_max_life_time" yaml:"conn_max_life_time"`
	Debug           bool       `json:"debug" yaml:"debug"`
}

type DB struct {
	*gorm.DB
	sqlDB *sql.DB
}

func NewDB(cfg Config) *DB {
	var dialector gorm.Dialector
	if cfg.Timezone == "" {
		cfg.Timezone = "UTC"
	}
	switch cfg.Driver {
	case Postgres:
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=%s",
			cfg.Host, cfg.User, cfg.Password, cfg.DbName, cfg.Port, cfg.Timezone)
		dialector = postgres.Open(dsn)
	case MySQL:
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=%s",
			cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DbName, url.QueryEscape(cfg.Timezone))
		dialector = mysql.Open(dsn)
	default:
		panic(fmt.Sprintf("unsupported driver %q", cfg.Driver))
	}
	return Open(dialector, cfg)
}

// Open builds a DB on an explicit dialector, e.g. one wrapping an existing
// *sql.DB.
func Open(dialector gorm.Dialector, cfg Config) *DB {
	gcfg := &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	}
	if cfg.Debug {
		gcfg.Logger = logger.Default.LogMode(logger.Info)
	}
	db, err := gorm.Open(dialector, gcfg)
	if err != nil {
		panic(err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		panic(err)
	}
	maxOpenConns := cfg.MaxOpenConns
	if maxOpenConns == 0 {
		maxOpenConns = 10
	}
	maxIdleConns := cfg.MaxIdleConns
	if maxIdleConns == 0 {
		maxIdleConns = 5
	}
	connMaxLifeTime := cfg.ConnMaxLifeTime
	if cfg.ConnMaxLifeTime == 0 {
		connMaxLifeTime = 60000
	}
	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(connMaxLifeTime) * time.Millisecond)
	return &DB{DB: db, sqlDB: sqlDB}
}

func (db *DB) Close() error {
	return db.sqlDB.Close()
}

// Wrap runs f inside a tracing span named after the repository method and
// records the executed statement on it.
func (db *DB) Wrap(ctx context.Context, name string, f func(tx *gorm.DB) *gorm.DB) error {
	ctx, span := mtrace.StartSpan(ctx, name, trace.WithSpanKind(trace.SpanKindInternal))
	defer mtrace.EndSpan(span)
	stmt := f(db.DB.WithContext(ctx))
	if stmt.Statement != nil {
		span.SetAttributes(mtrace.SQLKey.String(stmt.Statement.SQL.String()))
	}
	if stmt.Error != nil {
		span.SetAttributes(mtrace.SQLError.String(stmt.Error.Error()))
	}
	return stmt.Error
}

// Transaction is Wrap for multi-statement work.
func (db *DB) Transaction(ctx context.Context, name string, f func(tx *gorm.DB) error) error {
	ctx, span := mtrace.StartSpan(ctx, name, trace.WithSpanKind(trace.SpanKindInternal))
	defer mtrace.EndSpan(span)
	err := db.DB.WithContext(ctx).Transaction(f)
	if err != nil {
		span.SetAttributes(mtrace.SQLError.String(err.Error()))
	}
	return err
}
