package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	registry *prometheus.Registry
	renders  *prometheus.CounterVec
	duration *prometheus.HistogramVec
	palettes prometheus.GaugeFunc
}

func newMetrics(a *app) *metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &metrics{
		registry: reg,
		renders: f.NewCounterVec(prometheus.CounterOpts{
			Name: "chartengine_panel_renders_total",
			Help: "Panel renders by panel and outcome (ok, blank, error)",
		}, []string{"panel", "outcome"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "chartengine_panel_render_seconds",
			Help:    "Panel render latency by panel kind",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 10),
		}, []string{"kind"}),
		palettes: f.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "chartengine_palette_cache_entries",
			Help: "Heatmap palettes held by the shared cache",
		}, func() float64 { return float64(a.palettes.Len()) }),
	}
}
