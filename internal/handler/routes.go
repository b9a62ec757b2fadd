package handler

import (
	"errors"
	"garage-site/internal/data"
	"garage-site/internal/middleware"
	"garage-site/internal/respond"
	"garage-site/internal/session"
	"io/fs"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterDeps collects everything NewRouter mounts.
type RouterDeps struct {
	Site      *SiteHandler
	Admin     *AdminHandler
	SEO       *SeoHandler
	Cron      *CronHandler
	Generator *GeneratorHandler
	Upload    *UploadHandler
	Services  Services
	Responder respond.Responder

	Authorizer func(http.Handler) http.Handler
	Errors     func(middleware.AppHandler) http.Handler
	Sessions   session.Manager

	// StaticFS is served under /static/.
	StaticFS fs.FS
	// MediaDir is served under MediaPrefix when uploads are stored locally.
	MediaDir    string
	MediaPrefix string

	AllowedOrigins []string
}

// NewRouter creates and configures a new chi router.
func NewRouter(d RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	// A good base middleware stack
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(d.Sessions.LoadAndSave)
	r.Use(d.Authorizer)

	page := d.Errors
	res := d.Responder

	// Public pages
	r.Method(http.MethodGet, "/", page(d.Site.home))
	r.Method(http.MethodGet, "/about", page(d.Site.about))
	r.Method(http.MethodGet, "/services", page(d.Site.services))
	r.Method(http.MethodGet, "/blog", page(d.Site.blog))
	r.Method(http.MethodGet, "/blog/{id}", page(d.Site.post))
	r.Method(http.MethodGet, "/gallery", page(d.Site.gallery))
	r.Method(http.MethodGet, "/contact", page(d.Site.contactForm))
	r.Method(http.MethodPost, "/contact", page(d.Site.contactSubmit))
	r.Get("/robots.txt", d.SEO.robotsHandler)
	r.Get("/sitemap.xml", d.SEO.sitemapHandler)

	if d.StaticFS != nil {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(d.StaticFS))))
	}
	if d.MediaDir != "" {
		prefix := d.MediaPrefix
		if prefix == "" {
			prefix = "/media/"
		}
		r.Handle(strings.TrimSuffix(prefix, "/")+"/*", http.StripPrefix(prefix, http.FileServer(http.Dir(d.MediaDir))))
	}

	// Administration pages
	r.Method(http.MethodGet, "/admin", page(d.Admin.dashboard))
	r.Method(http.MethodGet, "/admin/login", page(d.Admin.loginForm))
	r.Method(http.MethodPost, "/admin/login", page(d.Admin.login))
	r.Method(http.MethodPost, "/admin/logout", page(d.Admin.logout))

	// JSON API
	r.Route("/api", func(r chi.Router) {
		r.Route("/blog", NewResourceHandler[data.Post]("post", d.Services.Posts, res).Routes)
		r.Route("/services", NewResourceHandler[data.Service]("service", d.Services.Catalog, res).Routes)
		r.Route("/gallery", NewResourceHandler[data.GalleryImage]("image", d.Services.Gallery, res).Routes)
		r.Route("/slider", NewResourceHandler[data.Slide]("slide", d.Services.Slider, res).Routes)
		r.Route("/categories", func(r chi.Router) {
			NewResourceHandler[data.Category]("category", d.Services.Categories, res).Routes(r)
			r.Get("/{type}", categoriesByType(d.Services.Categories, res))
		})
		r.Route("/messages", NewResourceHandler[data.ContactMessage]("message", d.Services.Messages, res).PublicCreate().Routes)

		r.Get("/cron", d.Cron.status)
		r.Post("/cron", d.Cron.post)
		r.Get("/generator", d.Generator.get)
		r.Post("/generator", d.Generator.post)
		r.Post("/upload", d.Upload.upload)

		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			msg := "unknown endpoint " + r.URL.Path
			res.WriteJSON(w, http.StatusNotFound, respond.Envelope{Success: false, Message: msg, Error: msg})
		})
	})

	r.NotFound(page(func(w http.ResponseWriter, r *http.Request) *middleware.AppError {
		return &middleware.AppError{Error: errors.New("no route"), Message: "Page not found", Code: http.StatusNotFound}
	}).ServeHTTP)

	return r
}
