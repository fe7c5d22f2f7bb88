// Package dbverify checks that a connection profile actually reaches a
// database before it is saved. Verification is a courtesy ping from the CLI
// host; query execution itself always happens on the backend.
package dbverify

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"querychat/cli/internal/config"
)

// ErrUnsupported is returned for profile types the CLI cannot ping locally.
// Only postgres has a driver wired in; mysql profiles are verified by the
// backend on first use instead.
var ErrUnsupported = errors.New("local verification is only supported for postgres profiles")

// URL builds a postgres connection URL from a profile, escaping credentials.
func URL(p config.Profile) string {
	u := url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%d", p.Host, p.Port),
		Path:   "/" + p.Database,
	}
	if p.User != "" {
		if p.Password != "" {
			u.User = url.UserPassword(p.User, p.Password)
		} else {
			u.User = url.User(p.User)
		}
	}
	return u.String()
}

// Ping opens a short-lived pool against the profile and pings it.
func Ping(ctx context.Context, p config.Profile) error {
	if p.Type != config.DBTypePostgres {
		return ErrUnsupported
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	pool, err := pgxpool.New(ctx, URL(p))
	if err != nil {
		return err
	}
	defer pool.Close()
	return pool.Ping(ctx)
}
