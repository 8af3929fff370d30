package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(h *Handler, registry *prometheus.Registry) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.Healthz)
	r.Get("/readyz", h.Readyz)
	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/v1", func(r chi.Router) {
		r.Post("/applications", h.CreateApplication)
		r.Route("/applications/{applicationId}", func(r chi.Router) {
			r.Post("/documents", func(w http.ResponseWriter, r *http.Request) {
				h.UploadDocument(w, r, chi.URLParam(r, "applicationId"))
			})
			r.Post("/process", func(w http.ResponseWriter, r *http.Request) {
				h.ProcessApplication(w, r, chi.URLParam(r, "applicationId"))
			})
			r.Get("/progress", func(w http.ResponseWriter, r *http.Request) {
				h.GetProgress(w, r, chi.URLParam(r, "applicationId"))
			})
			r.Get("/result", func(w http.ResponseWriter, r *http.Request) {
				h.GetResult(w, r, chi.URLParam(r, "applicationId"))
			})
			r.Get("/documents", func(w http.ResponseWriter, r *http.Request) {
				h.ListDocuments(w, r, chi.URLParam(r, "applicationId"))
			})
		})
	})

	return r
}
