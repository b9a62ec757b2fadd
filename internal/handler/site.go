package handler

import (
	"garage-site/internal/data"
	"garage-site/internal/errs"
	"garage-site/internal/logger"
	"garage-site/internal/middleware"
	"garage-site/internal/service"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

// blogPageSize is the number of posts on one page of the public blog.
const blogPageSize = 9

// Services groups the collections behind the site.
type Services struct {
	Posts      *service.PostService
	Catalog    *service.ServiceCatalog
	Gallery    *service.Gallery
	Slider     *service.Slider
	Categories *service.Categories
	Messages   *service.Messages
}

// SiteHandler renders the public pages.
type SiteHandler struct {
	svc  Services
	view middleware.PageRenderer
	log  logger.Logger
}

// NewSiteHandler creates a new SiteHandler with the given dependencies.
func NewSiteHandler(svc Services, v middleware.PageRenderer, log logger.Logger) *SiteHandler {
	return &SiteHandler{svc: svc, view: v, log: log}
}

func (h *SiteHandler) render(w http.ResponseWriter, r *http.Request, name string, data map[string]interface{}) *middleware.AppError {
	return h.renderStatus(w, r, http.StatusOK, name, data)
}

func (h *SiteHandler) renderStatus(w http.ResponseWriter, r *http.Request, status int, name string, data map[string]interface{}) *middleware.AppError {
	data["IsAdmin"] = middleware.IsAdmin(r.Context())
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	if err := h.view.Render(w, r, name, data); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to render page", Code: http.StatusInternalServerError}
	}
	return nil
}

// orEmpty logs a read failure and returns an empty list instead, so a missing
// or corrupt file shows an empty section rather than an error page.
func orEmpty[T any](log logger.Logger, what string, items []T, err error) []T {
	if err != nil {
		log.Error(err, "Failed to load "+what+", rendering empty state")
		return []T{}
	}
	return items
}

func (h *SiteHandler) home(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	ctx := r.Context()
	slides, _, err := h.svc.Slider.List(ctx, service.Filter{Status: data.StatusActive})
	slides = orEmpty(h.log, "slides", slides, err)
	services, _, err := h.svc.Catalog.List(ctx, service.Filter{Status: data.StatusActive, Limit: 6})
	services = orEmpty(h.log, "services", services, err)
	posts, _, err := h.svc.Posts.Published(ctx, service.Filter{Limit: 3})
	posts = orEmpty(h.log, "posts", posts, err)

	return h.render(w, r, "home.html", map[string]interface{}{
		"Title":    "Home",
		"Slides":   slides,
		"Services": services,
		"Posts":    posts,
	})
}

func (h *SiteHandler) about(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	services, _, err := h.svc.Catalog.List(r.Context(), service.Filter{Status: data.StatusActive})
	services = orEmpty(h.log, "services", services, err)
	return h.render(w, r, "about.html", map[string]interface{}{
		"Title":        "About us",
		"ServiceCount": len(services),
	})
}

func (h *SiteHandler) services(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	services, _, err := h.svc.Catalog.List(r.Context(), service.Filter{Status: data.StatusActive})
	services = orEmpty(h.log, "services", services, err)
	return h.render(w, r, "services.html", map[string]interface{}{
		"Title":    "Services",
		"Services": services,
	})
}

func (h *SiteHandler) blog(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	ctx := r.Context()
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	f := service.Filter{
		Category: q.Get("category"),
		Search:   q.Get("search"),
		Page:     page,
		Limit:    blogPageSize,
	}
	posts, pagination, err := h.svc.Posts.Published(ctx, f)
	posts = orEmpty(h.log, "posts", posts, err)
	categories, _, err := h.svc.Categories.List(ctx, service.Filter{Type: data.CategoryBlog})
	categories = orEmpty(h.log, "categories", categories, err)

	return h.render(w, r, "blog.html", map[string]interface{}{
		"Title":      "Blog",
		"Posts":      posts,
		"Pagination": pagination,
		"Categories": categories,
		"Category":   f.Category,
		"Search":     f.Search,
		"PrevURL":    pageURL(q, page-1),
		"NextURL":    pageURL(q, page+1),
	})
}

func pageURL(q url.Values, page int) string {
	v := url.Values{}
	for k, vals := range q {
		v[k] = vals
	}
	v.Set("page", strconv.Itoa(page))
	return "/blog?" + v.Encode()
}

func (h *SiteHandler) post(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return &middleware.AppError{Error: err, Message: "Post not found", Code: http.StatusNotFound}
	}
	post, err := h.svc.Posts.View(r.Context(), id)
	if err != nil {
		if !errs.IsNotFound(err) {
			h.log.Error(err, "Failed to load post")
		}
		return &middleware.AppError{Error: err, Message: "Post not found", Code: http.StatusNotFound}
	}

	related, _, err := h.svc.Posts.Published(r.Context(), service.Filter{Category: post.Category})
	related = orEmpty(h.log, "posts", related, err)
	others := make([]data.Post, 0, 3)
	for _, p := range related {
		if p.ID != post.ID && len(others) < 3 {
			others = append(others, p)
		}
	}

	return h.render(w, r, "post.html", map[string]interface{}{
		"Title":   post.Title,
		"Post":    post,
		"Related": others,
	})
}

func (h *SiteHandler) gallery(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	ctx := r.Context()
	category := r.URL.Query().Get("category")
	all, _, err := h.svc.Gallery.List(ctx, service.Filter{})
	all = orEmpty(h.log, "gallery", all, err)

	seen := map[string]bool{}
	var categories []string
	images := make([]data.GalleryImage, 0, len(all))
	for _, img := range all {
		if img.Category != "" && !seen[strings.ToLower(img.Category)] {
			seen[strings.ToLower(img.Category)] = true
			categories = append(categories, img.Category)
		}
		if category == "" || strings.EqualFold(img.Category, category) {
			images = append(images, img)
		}
	}
	sort.Strings(categories)

	return h.render(w, r, "gallery.html", map[string]interface{}{
		"Title":      "Gallery",
		"Images":     images,
		"Categories": categories,
		"Category":   category,
	})
}

func (h *SiteHandler) contactForm(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	services, _, err := h.svc.Catalog.List(r.Context(), service.Filter{Status: data.StatusActive})
	services = orEmpty(h.log, "services", services, err)
	return h.render(w, r, "contact.html", map[string]interface{}{
		"Title":    "Contact",
		"Services": services,
		"Sent":     r.URL.Query().Get("sent") == "1",
		"Form":     data.ContactMessage{},
	})
}

func (h *SiteHandler) contactSubmit(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := r.ParseForm(); err != nil {
		return &middleware.AppError{Error: err, Message: "Invalid form submission", Code: http.StatusBadRequest}
	}
	msg := data.ContactMessage{
		Name:    r.PostFormValue("name"),
		Email:   r.PostFormValue("email"),
		Phone:   r.PostFormValue("phone"),
		Subject: r.PostFormValue("subject"),
		Message: r.PostFormValue("message"),
	}

	if _, err := h.svc.Messages.Create(r.Context(), msg); err != nil {
		if !errs.IsValidation(err) {
			return middleware.NewAppError(err, "Your message could not be saved. Please call us instead.")
		}
		services, _, lerr := h.svc.Catalog.List(r.Context(), service.Filter{Status: data.StatusActive})
		services = orEmpty(h.log, "services", services, lerr)
		return h.renderStatus(w, r, http.StatusBadRequest, "contact.html", map[string]interface{}{
			"Title":    "Contact",
			"Services": services,
			"Error":    errs.From(err).Message,
			"Form":     msg,
		})
	}

	http.Redirect(w, r, "/contact?sent=1", http.StatusSeeOther)
	return nil
}
