// Command api runs the screening backend: the conversation engine, the
// recruiter dashboard API, and (optionally) the NATS bridge for inbound and
// outbound candidate messages.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hirescreen/go-screening-backend/internal/config"
	"github.com/hirescreen/go-screening-backend/internal/engine"
	"github.com/hirescreen/go-screening-backend/internal/flow"
	httpapi "github.com/hirescreen/go-screening-backend/internal/http"
	"github.com/hirescreen/go-screening-backend/internal/observability"
	"github.com/hirescreen/go-screening-backend/internal/repo"
	"github.com/hirescreen/go-screening-backend/internal/sysutil"
	"github.com/hirescreen/go-screening-backend/internal/transport/natsbus"
)

// version is stamped at build time via -ldflags.
var version = "dev"

// logTransport is the fallback delivery path when the message bus is
// disabled: replies and notifications go to the application log so the
// conversation flow stays observable in single-process setups.
type logTransport struct{}

func (logTransport) Send(_ context.Context, identity, text string) error {
	log.Info().Str("identity", identity).Str("text", text).Msg("outbound reply (bus disabled)")
	return nil
}

func (logTransport) Notify(_ context.Context, text string) error {
	log.Info().Str("text", text).Msg("admin notification (bus disabled)")
	return nil
}

func main() {
	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg(".env not found, using process environment")
	}

	cfg := config.MustLoad()

	sysutil.SetLogLevel(cfg.LogLevel)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	gin.SetMode(cfg.GinMode)

	ctx := context.Background()

	// Tracing (no-op unless OTEL_ENABLED).
	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}

	// Storage.
	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database failed")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}
	if err := repo.SeedDefaults(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("seeding default screening config failed")
	}

	// Conversation engine.
	flows := flow.NewProvider(&repo.ConfigLoader{DB: db})

	var transport engine.Transport = logTransport{}
	var nc interface{ Drain() error }
	var bus *natsbus.Bus
	if cfg.NATS.Enabled {
		conn, err := natsbus.Connect(natsbus.Config{
			URL:           cfg.NATS.URL,
			Name:          cfg.OTEL.ServiceName,
			Token:         cfg.NATS.Token,
			MaxReconnects: cfg.NATS.MaxReconnects,
			ReconnectWait: cfg.NATS.ReconnectWait,
		})
		if err != nil {
			log.Fatal().Err(err).Str("url", cfg.NATS.URL).Msg("nats connect failed")
		}
		bus = natsbus.NewBus(conn)
		transport = bus
		nc = conn
	}

	eng := engine.New(db, flows, transport)
	eng.MaxMessageRunes = cfg.Conversation.MaxMessageRunes
	eng.IdleExpiry = cfg.Conversation.IdleExpiry
	eng.SendMaxRetries = cfg.Conversation.SendMaxRetries
	eng.SendBackoff = cfg.Conversation.SendBackoff

	if bus != nil {
		if _, err := bus.Subscribe(eng); err != nil {
			log.Fatal().Err(err).Msg("nats subscribe failed")
		}
		log.Info().Str("subject", natsbus.SubjectInbound).Msg("consuming inbound messages")
	}

	// HTTP API.
	r := gin.New()
	httpapi.RegisterRoutes(r, db, eng, flows, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	idleConnsClosed := make(chan struct{})
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info().Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if nc != nil {
			// Drain finishes in-flight subscription callbacks before closing.
			if err := nc.Drain(); err != nil {
				log.Warn().Err(err).Msg("nats drain failed")
			}
		}
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("http shutdown failed")
		}
		if err := shutdownOTel(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("otel shutdown failed")
		}
		close(idleConnsClosed)
	}()

	log.Info().Str("port", cfg.Port).Str("version", version).Msg("screening backend listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("server failed")
	}

	<-idleConnsClosed
}
