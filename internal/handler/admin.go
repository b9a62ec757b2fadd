package handler

import (
	"garage-site/internal/auth"
	"garage-site/internal/data"
	"garage-site/internal/middleware"
	"garage-site/internal/scheduler"
	"garage-site/internal/service"
	"garage-site/internal/session"
	"net/http"
)

// AdminHandler serves the login form and the dashboard. Content itself is
// managed through the JSON API.
type AdminHandler struct {
	*SiteHandler
	scheduler *scheduler.Scheduler
	sm        session.Manager
	tokens    *auth.TokenChecker
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(site *SiteHandler, s *scheduler.Scheduler, sm session.Manager, tokens *auth.TokenChecker) *AdminHandler {
	return &AdminHandler{SiteHandler: site, scheduler: s, sm: sm, tokens: tokens}
}

func (h *AdminHandler) loginForm(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	if middleware.IsAdmin(r.Context()) {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return nil
	}
	return h.render(w, r, "admin_login.html", map[string]interface{}{"Title": "Admin login"})
}

func (h *AdminHandler) login(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := r.ParseForm(); err != nil {
		return &middleware.AppError{Error: err, Message: "Invalid form submission", Code: http.StatusBadRequest}
	}
	if !h.tokens.Valid(r.PostFormValue("token")) {
		h.log.Warn("Failed admin login attempt")
		return h.renderStatus(w, r, http.StatusUnauthorized, "admin_login.html", map[string]interface{}{
			"Title": "Admin login",
			"Error": "Invalid admin token.",
		})
	}

	// Renew the token on privilege change to prevent session fixation.
	if err := h.sm.RenewToken(r.Context()); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to start session", Code: http.StatusInternalServerError}
	}
	h.sm.Put(r.Context(), session.AdminKey, true)
	h.log.Info("Admin logged in")
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
	return nil
}

func (h *AdminHandler) logout(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	if err := h.sm.Destroy(r.Context()); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to end session", Code: http.StatusInternalServerError}
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
	return nil
}

type collectionCount struct {
	Name  string
	API   string
	Count int
}

func (h *AdminHandler) dashboard(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	ctx := r.Context()
	f := service.Filter{}

	posts, _, err := h.svc.Posts.List(ctx, f)
	posts = orEmpty(h.log, "posts", posts, err)
	services, _, err := h.svc.Catalog.List(ctx, f)
	services = orEmpty(h.log, "services", services, err)
	images, _, err := h.svc.Gallery.List(ctx, f)
	images = orEmpty(h.log, "gallery", images, err)
	slides, _, err := h.svc.Slider.List(ctx, f)
	slides = orEmpty(h.log, "slides", slides, err)
	categories, _, err := h.svc.Categories.List(ctx, f)
	categories = orEmpty(h.log, "categories", categories, err)
	messages, _, err := h.svc.Messages.List(ctx, f)
	messages = orEmpty(h.log, "messages", messages, err)

	unread := 0
	for _, m := range messages {
		if m.Status == data.MessageNew {
			unread++
		}
	}
	recent := messages
	if len(recent) > 5 {
		recent = recent[len(recent)-5:]
	}

	st, err := h.scheduler.Status()
	if err != nil {
		h.log.Error(err, "Failed to load schedule status")
	}

	return h.render(w, r, "admin_dashboard.html", map[string]interface{}{
		"Title": "Dashboard",
		"Counts": []collectionCount{
			{"Blog posts", "/api/blog", len(posts)},
			{"Services", "/api/services", len(services)},
			{"Gallery images", "/api/gallery", len(images)},
			{"Slides", "/api/slider", len(slides)},
			{"Categories", "/api/categories", len(categories)},
			{"Messages", "/api/messages", len(messages)},
		},
		"Unread":   unread,
		"Messages": recent,
		"Schedule": st,
	})
}
