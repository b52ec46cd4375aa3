// Package database centralises sqlx connection helpers.  The default driver
// is go-sql-driver/mysql, which also works with MariaDB.
//
// Public entry points:
//
//	Open(ctx, dsn)                          – conservative pool sizes.
//	OpenWithOptions(ctx, dsn, maxOpen, maxIdle) – fine-grained control.
//	DSN(template, password)                 – fills the password verb.
//
// Both open helpers Ping the database before returning so callers can fail
// fast during bootstrap.  Callers should Close() the returned *sqlx.DB.
package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
)

// Open returns a *sqlx.DB with small defaults: 5 max open, 2 idle, and a
// 30-minute connection lifetime.  Form definitions are read once at start-up
// so the pool rarely holds more than one connection.
func Open(ctx context.Context, dsn string) (*sqlx.DB, error) {
	return OpenWithOptions(ctx, dsn, 5, 2)
}

// OpenWithOptions lets callers tune maxOpen and maxIdle.
func OpenWithOptions(ctx context.Context, dsn string, maxOpen, maxIdle int) (*sqlx.DB, error) {
	db, err := sqlx.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// DSN substitutes password into the single %s verb of template.  A template
// without the verb is returned unchanged when password is empty.
func DSN(template, password string) (string, error) {
	switch n := strings.Count(template, "%s"); {
	case n == 1:
		return fmt.Sprintf(template, password), nil
	case n == 0 && password == "":
		return template, nil
	default:
		return "", fmt.Errorf("dsn template must contain exactly one %%s verb, found %d", n)
	}
}
