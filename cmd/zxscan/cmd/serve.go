package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/disintegration/imaging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/ericlevine/zxpipe"
	"github.com/ericlevine/zxpipe/internal/config"
	"github.com/ericlevine/zxpipe/pipeline"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve barcode decoding over HTTP",
		Long: `Serve starts an HTTP server with these endpoints:
  POST /decode   - decode the image in the request body (?multi=true for all symbols)
  GET  /health   - health check
  GET  /metrics  - Prometheus metrics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context())
		},
	}

	f := cmd.Flags()
	f.StringP("host", "H", "localhost", "listen host")
	f.IntP("port", "p", 8080, "listen port")
	f.Int("max-upload-mb", 20, "largest accepted request body in MB")
	a.bind(f, "server.host", "host")
	a.bind(f, "server.port", "port")
	a.bind(f, "server.max_upload_mb", "max-upload-mb")
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	s := &server{
		decode:    a.cfg.Decode,
		maxUpload: int64(a.cfg.Server.MaxUploadMB) << 20,
		logger:    a.logger,
		metrics:   pipeline.NewMetrics(reg),
	}
	mux := http.NewServeMux()
	s.routes(mux, reg)

	httpServer := &http.Server{
		Addr:              net.JoinHostPort(a.cfg.Server.Host, strconv.Itoa(a.cfg.Server.Port)),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		a.logger.Info("starting server", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("listen on %s: %w", httpServer.Addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info("shutting down", "timeout", shutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// server builds a fresh pipeline per request since pipelines are not safe
// for concurrent use. The metrics are shared.
type server struct {
	decode    config.DecodeConfig
	maxUpload int64
	logger    *slog.Logger
	metrics   *pipeline.Metrics
}

func (s *server) routes(mux *http.ServeMux, g prometheus.Gatherer) {
	mux.HandleFunc("POST /decode", s.handleDecode)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.Handle("GET /metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
}

func (s *server) handleDecode(w http.ResponseWriter, r *http.Request) {
	multi := s.decode.Multi
	if q := r.URL.Query().Get("multi"); q != "" {
		v, err := strconv.ParseBool(q)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid multi parameter %q", q))
			return
		}
		multi = v
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxUpload))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("image larger than %d bytes", s.maxUpload))
			return
		}
		writeError(w, http.StatusBadRequest, "cannot read body: "+err.Error())
		return
	}
	img, err := imaging.Decode(bytes.NewReader(body), imaging.AutoOrientation(true))
	if err != nil {
		writeError(w, http.StatusBadRequest, "cannot decode image: "+err.Error())
		return
	}

	opts, err := s.decode.PipelineOptions()
	if err != nil {
		s.logger.Error("pipeline options", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	p := pipeline.New(append(opts, pipeline.WithLogger(s.logger), pipeline.WithMetrics(s.metrics))...)

	results, _, err := decodeImage(p, img, multi)
	switch {
	case errors.Is(err, zxpipe.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		s.logger.Error("decode", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, newFileResult("", results))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
