// Package natsbus connects the screening engine to a NATS message bus: it
// consumes inbound candidate messages and publishes replies and admin
// notifications. The bus is the channel-agnostic seam; a WhatsApp or SMS
// bridge on the other side of NATS owns the actual provider API.
package natsbus

import (
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

// Config holds the NATS connection settings.
type Config struct {
	URL   string
	Name  string
	Token string

	// MaxReconnects < 0 retries forever.
	MaxReconnects int
	ReconnectWait time.Duration
}

// Connect dials the NATS server with reconnect handling wired to the
// global logger.
func Connect(cfg Config) (*nats.Conn, error) {
	if cfg.Name == "" {
		cfg.Name = "screening-backend"
	}
	if cfg.ReconnectWait <= 0 {
		cfg.ReconnectWait = 2 * time.Second
	}

	opts := []nats.Option{
		nats.Name(cfg.Name),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Warn().Err(err).Msg("nats disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("nats reconnected")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.Error().Err(err).Msg("nats async error")
		}),
	}
	if cfg.Token != "" {
		opts = append(opts, nats.Token(cfg.Token))
	}

	return nats.Connect(cfg.URL, opts...)
}
