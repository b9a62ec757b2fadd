package main

import (
	"context"
	"errors"
	"fmt"
	"garage-site/internal/auth"
	"garage-site/internal/cache"
	"garage-site/internal/config"
	"garage-site/internal/data"
	"garage-site/internal/generator"
	"garage-site/internal/handler"
	"garage-site/internal/logger"
	"garage-site/internal/media"
	"garage-site/internal/middleware"
	"garage-site/internal/respond"
	"garage-site/internal/scheduler"
	"garage-site/internal/service"
	"garage-site/internal/session"
	"garage-site/internal/view"
	"garage-site/web"
	"io/fs"
	"net/http"
)

// siteName is shown in page titles and the header.
const siteName = "Garage Auto Repair"

// core is everything both the server and the cron command need.
type core struct {
	cfg       *config.Config
	log       logger.Logger
	store     *data.Store
	cache     *cache.Cache
	services  handler.Services
	gen       generator.Generator
	settings  *generator.Settings
	scheduler *scheduler.Scheduler
}

// loadConfig reads and validates the configuration and builds the logger.
func loadConfig() (*config.Config, logger.Logger, error) {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	log := logger.New(cfg.Log, nil)
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

// newCore wires the storage, cache, services and the content pipeline.
func newCore(cfg *config.Config, log logger.Logger, storage media.Storage) (*core, error) {
	store, err := data.NewStore(cfg.Data.Dir, log)
	if err != nil {
		return nil, err
	}
	c := cache.New(cfg.Cache)

	deps := service.Deps{Store: store, Cache: c, Media: storage, Log: log}
	svc := handler.Services{
		Posts:      service.NewPostService(deps, service.NewRenderer()),
		Catalog:    service.NewServiceCatalog(deps),
		Gallery:    service.NewGallery(deps),
		Slider:     service.NewSlider(deps),
		Categories: service.NewCategories(deps),
		Messages:   service.NewMessages(deps),
	}

	settings := generator.NewSettings(store, cfg.Generator)
	gen := generator.NewGemini(cfg.Generator, nil, log)
	sched := scheduler.New(store, svc.Posts, gen, settings, cfg.Generator, log)

	return &core{
		cfg:       cfg,
		log:       log,
		store:     store,
		cache:     c,
		services:  svc,
		gen:       gen,
		settings:  settings,
		scheduler: sched,
	}, nil
}

// invalidate drops cached entries of a collection changed on disk.
func (c *core) invalidate(col data.Collection) {
	for _, s := range []interface {
		Name() data.Collection
		Invalidate()
	}{c.services.Posts, c.services.Catalog, c.services.Gallery, c.services.Slider, c.services.Categories, c.services.Messages} {
		if s.Name() == col {
			s.Invalidate()
			c.log.Debug(fmt.Sprintf("Invalidated cache for %s", col))
			return
		}
	}
}

// server is the HTTP side built on top of core.
type server struct {
	*core
	handler http.Handler
	closers []func() error
}

func newServer(ctx context.Context, cfg *config.Config, log logger.Logger) (*server, error) {
	// --- Media Storage ---
	storage, err := media.New(ctx, cfg.Media)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize media storage: %w", err)
	}

	c, err := newCore(cfg, log, storage)
	if err != nil {
		return nil, err
	}
	s := &server{core: c}

	// --- Session Management Setup ---
	sm, closeSessions, err := session.New(cfg.Session, cfg.Server.TLS.Enabled)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sessions: %w", err)
	}
	s.closers = append(s.closers, closeSessions)

	// --- Authorization Setup ---
	enforcer, err := auth.NewEnforcer()
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to initialize enforcer: %w", err)
	}
	auth.SeedDefaultPolicies(enforcer, log)
	tokens := auth.NewTokenChecker(cfg.Auth.AdminToken)

	// --- View Template Initialization ---
	views, err := view.New(web.TemplateFS, siteName)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to initialize view templates: %w", err)
	}
	static, err := fs.Sub(web.StaticFS, "static")
	if err != nil {
		s.Close()
		return nil, err
	}

	res := respond.NewResponder(log)
	site := handler.NewSiteHandler(c.services, views, log)
	deps := handler.RouterDeps{
		Site:           site,
		Admin:          handler.NewAdminHandler(site, c.scheduler, sm, tokens),
		SEO:            handler.NewSeoHandler(c.services.Posts, cfg.Server.BaseURL, log),
		Cron:           handler.NewCronHandler(c.scheduler, res),
		Generator:      handler.NewGeneratorHandler(c.gen, c.settings, c.services.Posts, res),
		Upload:         handler.NewUploadHandler(storage, res),
		Services:       c.services,
		Responder:      res,
		Authorizer:     middleware.Authorizer(enforcer, sm, tokens, log),
		Errors:         middleware.Error(log, views),
		Sessions:       sm,
		StaticFS:       static,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	}
	if local, ok := storage.(*media.Local); ok {
		deps.MediaDir = local.Dir()
		deps.MediaPrefix = cfg.Media.URLPrefix
	}
	s.handler = handler.NewRouter(deps)
	return s, nil
}

// Close releases the session database, if any.
func (s *server) Close() error {
	var errList []error
	for _, fn := range s.closers {
		if err := fn(); err != nil {
			errList = append(errList, err)
		}
	}
	return errors.Join(errList...)
}
