package metrics

import (
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// ServerOptions configures the observability HTTP server.
type ServerOptions struct {
	Enabled    bool
	ListenAddr string // should stay localhost-only; never exposed publicly
}

func DefaultServerOptions() ServerOptions {
	return ServerOptions{Enabled: true, ListenAddr: "127.0.0.1:9090"}
}

// StartServer launches the Prometheus scrape endpoint, a health check,
// and a JSON snapshot endpoint on their own listener, in a background
// goroutine. sampleFn is called fresh on every /state request so the
// JSON view always reflects the latest tick.
func StartServer(opts ServerOptions, sampleFn func() Snapshot, log zerolog.Logger) {
	if !opts.Enabled {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/state", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(sampleFn())
	})

	go func() {
		log.Info().Str("addr", opts.ListenAddr).Msg("observability server starting")
		if err := http.ListenAndServe(opts.ListenAddr, mux); err != nil {
			log.Error().Err(err).Msg("observability server stopped")
		}
	}()
}
