package http

import (
	"context"
	"strings"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/turismap/internal/core/usecases"
)

// Pinger is a dependency that can report its own health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options carries request-boundary settings.
type Options struct {
	Environment   string
	Version       string
	DefaultRadius int
	MaxRadius     int
}

// Production reports whether internal error details must be hidden.
func (o Options) Production() bool {
	return strings.EqualFold(o.Environment, "production")
}

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Places    *usecases.PlaceService
	Auth      *usecases.AuthService
	Favorites *usecases.FavoriteService
	NATS      *nats.Conn
	DB        Pinger
	Sessions  Pinger
	Options   Options
}

func (d *Dependencies) defaultRadius() int {
	if d.Options.DefaultRadius > 0 {
		return d.Options.DefaultRadius
	}
	return 5000
}

func (d *Dependencies) maxRadius() int {
	if d.Options.MaxRadius > 0 {
		return d.Options.MaxRadius
	}
	return 50000
}
