package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/hknc0/orbit-core/internal/admission"
	"github.com/hknc0/orbit-core/internal/config"
	"github.com/hknc0/orbit-core/internal/logging"
	"github.com/hknc0/orbit-core/internal/metrics"
	"github.com/hknc0/orbit-core/internal/session"
	"github.com/hknc0/orbit-core/internal/tick"
	"github.com/hknc0/orbit-core/internal/transport"
	"github.com/hknc0/orbit-core/internal/world"
)

func main() {
	_ = godotenv.Load() // a missing .env is the common case outside local development

	log := logging.New(logging.Options{
		Level:  getEnvWithDefault("ORBIT_LOG_LEVEL", "info"),
		Pretty: os.Getenv("ORBIT_LOG_PRETTY") == "true",
	})

	if _, err := maxprocs.Set(maxprocs.Logger(func(f string, a ...any) { log.Debug().Msgf(f, a...) })); err != nil {
		log.Warn().Err(err).Msg("failed to set GOMAXPROCS from cgroup limits")
	}

	cfg := config.Load()

	sessions := session.NewTable()
	scheduler := tick.New(cfg, sessions, func(format string, args ...any) {
		log.Info().Msgf(format, args...)
	})

	for i := 0; i < cfg.AI.Count; i++ {
		scheduler.AddPlayer(fmt.Sprintf("bot-%d", i+1), true)
	}

	adm := admission.New(cfg.Server, scheduler.Monitor())
	handler := newConnHandler(scheduler, sessions, adm, cfg, logging.Component(log, "transport"))
	startedAt := time.Now()

	metrics.StartServer(metrics.DefaultServerOptions(), func() metrics.Snapshot {
		var snap metrics.Snapshot
		scheduler.WithWorld(func(w *world.World) {
			snap = metrics.Sample(w, scheduler.Monitor(), handler.Connections(), scheduler.TickCount(), startedAt)
		})
		return snap
	}, logging.Component(log, "metrics"))

	scheduler.Start()

	stopEviction := make(chan struct{})
	go sessions.RunIdleEviction(
		time.Duration(cfg.Server.MaxIdleSeconds*float64(time.Second)),
		5*time.Second,
		stopEviction,
		func(s *session.Session) {
			if pid, ok := s.PlayerID(); ok {
				scheduler.RemovePlayer(pid)
			}
			sessions.Remove(s.ID())
			log.Info().Str("session", s.ID().String()).Msg("evicted idle session")
		},
	)

	wsServer := transport.NewServer(transport.Options{
		MaxConnsPerIP:  8,
		MaxTotalConns:  cfg.Server.MaxPlayers + cfg.Server.MaxSpectators,
		SendBufferSize: cfg.Server.OutboundQueueCap,
		AllowedOrigins: splitCSV(os.Getenv("ORBIT_ALLOWED_ORIGINS")),
	}, handler, logging.Component(log, "websocket"))

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET"},
		AllowCredentials: true,
	}))
	r.Get("/ws", wsServer.ServeHTTP)

	httpServer := &http.Server{Addr: cfg.Server.ListenAddr, Handler: r}
	go func() {
		log.Info().Str("addr", cfg.Server.ListenAddr).Msg("websocket server starting")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("websocket server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	close(stopEviction)
	scheduler.Stop()
	httpServer.Close()
}

func getEnvWithDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ',' {
			if i > start {
				out = append(out, s[start:i])
			}
			start = i + 1
		}
	}
	return out
}
