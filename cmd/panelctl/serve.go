package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/iafilius/ChartEngine/src/config"
	"github.com/iafilius/ChartEngine/src/logging"
	"github.com/iafilius/ChartEngine/src/panel"
	"github.com/iafilius/ChartEngine/src/render"
)

// maxServeWidth bounds the width a client may request.
const maxServeWidth = 4096

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve panels as PNG over HTTP",
		Long: `Serve panels over HTTP:

  GET /panels                 panel list (JSON)
  GET /panels/{id}.png        rendered panel; ?width=&height=&hide=1,3
  GET /metrics                Prometheus metrics
  GET /healthz                liveness`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, appFrom(cmd.Context()))
		},
	}
	cmd.Flags().String("listen", config.DefaultListen, "listen address")
	return cmd
}

type server struct {
	app     *app
	metrics *metrics
}

func newServer(a *app) *server {
	return &server{app: a, metrics: newMetrics(a)}
}

func (s *server) routes() http.Handler {
	r := chi.NewMux()
	r.Use(middleware.RequestID, middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}))
	r.Route("/panels", func(r chi.Router) {
		r.Get("/", s.listPanels)
		r.Get("/{id}.png", s.panelPNG)
	})
	return r
}

type panelInfo struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Kind  string `json:"kind"`
	URL   string `json:"url"`
}

func (s *server) listPanels(w http.ResponseWriter, _ *http.Request) {
	out := make([]panelInfo, 0, len(s.app.cfg.Panels))
	for _, p := range s.app.cfg.Panels {
		opts, err := p.Options()
		if err != nil {
			continue
		}
		out = append(out, panelInfo{ID: p.ID, Title: opts.Title, Kind: string(opts.Kind), URL: "/panels/" + p.ID + ".png"})
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(out); err != nil {
		logging.Warnf("[serve] encode panel list: %v", err)
	}
}

// requestSize reads ?width and ?height, falling back to the configured size.
func (s *server) requestSize(r *http.Request) (render.Size, error) {
	size := s.app.size()
	q := r.URL.Query()
	if v := q.Get("width"); v != "" {
		wd, err := strconv.Atoi(v)
		if err != nil || wd <= 0 || wd > maxServeWidth {
			return size, fmt.Errorf("invalid width %q", v)
		}
		size = render.ChartDimensions(wd)
	}
	if v := q.Get("height"); v != "" {
		h, err := strconv.Atoi(v)
		if err != nil || h <= 0 || h > maxServeWidth {
			return size, fmt.Errorf("invalid height %q", v)
		}
		size.Height = h
	}
	return size, nil
}

// hiddenSeries parses ?hide=1,3 into 1-based series indices.
func hiddenSeries(v string) ([]int, error) {
	var out []int
	for _, f := range strings.Split(v, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		n, err := strconv.Atoi(f)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid series index %q", f)
		}
		out = append(out, n)
	}
	return out, nil
}

func (s *server) panelPNG(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, ok := s.app.cfg.Panel(id)
	if !ok {
		http.Error(w, "unknown panel "+id, http.StatusNotFound)
		return
	}
	size, err := s.requestSize(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	hide, err := hiddenSeries(r.URL.Query().Get("hide"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	start := time.Now()
	c, err := s.app.controller(p, panel.NewMemoryStore())
	if err != nil {
		s.metrics.renders.WithLabelValues(id, "error").Inc()
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	for _, i := range hide {
		c.SetVisible(i, false)
	}
	img, err := c.Render(size)
	s.metrics.duration.WithLabelValues(string(c.Data().Kind)).Observe(time.Since(start).Seconds())
	outcome := "ok"
	switch {
	case errors.Is(err, render.ErrNoData):
		outcome = "blank"
	case err != nil:
		s.metrics.renders.WithLabelValues(id, "error").Inc()
		logging.Errorf("[serve] panel %s: %v", id, err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.metrics.renders.WithLabelValues(id, outcome).Inc()
	img = render.OrBlank(img, err, size, id)

	var buf bytes.Buffer
	if err := render.EncodePNG(&buf, img); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = w.Write(buf.Bytes())
}

// serve runs the HTTP server until ctx is cancelled.
func serve(ctx context.Context, a *app) error {
	s := newServer(a)
	g, gctx := errgroup.WithContext(ctx)
	srv := &http.Server{
		Addr:              a.cfg.Listen,
		Handler:           s.routes(),
		BaseContext:       func(_ net.Listener) context.Context { return gctx },
		ReadHeaderTimeout: 10 * time.Second,
	}
	g.Go(func() error {
		logging.Infof("[serve] listening on %s (%d panels)", a.cfg.Listen, len(a.cfg.Panels))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logging.Debugf("[serve] shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
