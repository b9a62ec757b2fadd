package handler

import (
	"context"
	"encoding/json"
	"garage-site/internal/errs"
	"garage-site/internal/middleware"
	"garage-site/internal/respond"
	"garage-site/internal/service"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

// maxBodySize bounds JSON request bodies.
const maxBodySize = 1 << 20

// crud is the part of a service collection the JSON API needs.
type crud[T any] interface {
	List(ctx context.Context, f service.Filter) ([]T, *service.Pagination, error)
	Get(ctx context.Context, id int64) (*T, error)
	Create(ctx context.Context, item T) (*T, error)
	Update(ctx context.Context, id int64, patch json.RawMessage) (*T, error)
	Delete(ctx context.Context, id int64) error
}

// ResourceHandler serves one collection under /api.
type ResourceHandler[T any] struct {
	// key prefixes the payload fields, e.g. "post" for postData and postId.
	key   string
	store crud[T]
	res   respond.Responder
	// publicCreate lets anonymous callers use the create action and nothing else.
	publicCreate bool
}

// NewResourceHandler creates a ResourceHandler.
func NewResourceHandler[T any](key string, store crud[T], res respond.Responder) *ResourceHandler[T] {
	return &ResourceHandler[T]{key: key, store: store, res: res}
}

// PublicCreate marks the resource as writable by anonymous callers through the
// create action only.
func (h *ResourceHandler[T]) PublicCreate() *ResourceHandler[T] {
	h.publicCreate = true
	return h
}

// Routes mounts the handler methods on a router.
func (h *ResourceHandler[T]) Routes(r chi.Router) {
	r.Get("/", h.get)
	r.Post("/", h.post)
	r.Put("/", h.put)
	r.Delete("/", h.delete)
}

func (h *ResourceHandler[T]) get(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if raw := q.Get("id"); raw != "" {
		id, err := parseID(h.key+"Id", raw)
		if err != nil {
			h.res.WriteError(w, err)
			return
		}
		item, err := h.store.Get(r.Context(), id)
		if err != nil {
			h.res.WriteError(w, err)
			return
		}
		h.res.OK(w, item, nil)
		return
	}

	items, page, err := h.store.List(r.Context(), filterFrom(q))
	if err != nil {
		h.res.WriteError(w, err)
		return
	}
	if page == nil {
		h.res.OK(w, items, nil)
		return
	}
	h.res.OK(w, items, page)
}

func (h *ResourceHandler[T]) post(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody(w, r)
	if err != nil {
		h.res.WriteError(w, err)
		return
	}
	act := action(body)
	if h.publicCreate && act != "create" && !middleware.IsAdmin(r.Context()) {
		h.res.WriteError(w, errs.Unauthorized("authentication required"))
		return
	}

	switch act {
	case "create":
		h.create(w, r, body[h.key+"Data"])
	case "update":
		id, err := rawID(h.key+"Id", body[h.key+"Id"])
		if err != nil {
			h.res.WriteError(w, err)
			return
		}
		h.update(w, r, id, body[h.key+"Data"])
	case "delete":
		id, err := rawID(h.key+"Id", body[h.key+"Id"])
		if err != nil {
			h.res.WriteError(w, err)
			return
		}
		h.remove(w, r, id)
	case "":
		h.res.WriteError(w, errs.MissingField("action"))
	default:
		h.res.WriteError(w, errs.InvalidField("action", "must be one of create, update, delete"))
	}
}

func (h *ResourceHandler[T]) put(w http.ResponseWriter, r *http.Request) {
	id, err := parseID("id", r.URL.Query().Get("id"))
	if err != nil {
		h.res.WriteError(w, err)
		return
	}
	body, err := decodeBody(w, r)
	if err != nil {
		h.res.WriteError(w, err)
		return
	}
	patch, ok := body[h.key+"Data"]
	if !ok {
		// A bare document is accepted as the patch itself.
		patch, _ = json.Marshal(body)
	}
	h.update(w, r, id, patch)
}

func (h *ResourceHandler[T]) delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID("id", r.URL.Query().Get("id"))
	if err != nil {
		h.res.WriteError(w, err)
		return
	}
	h.remove(w, r, id)
}

func (h *ResourceHandler[T]) create(w http.ResponseWriter, r *http.Request, raw json.RawMessage) {
	if len(raw) == 0 || string(raw) == "null" {
		h.res.WriteError(w, errs.MissingField(h.key+"Data"))
		return
	}
	var item T
	if err := json.Unmarshal(raw, &item); err != nil {
		h.res.WriteError(w, errs.InvalidField(h.key+"Data", "must be a "+h.key+" object"))
		return
	}
	created, err := h.store.Create(r.Context(), item)
	if err != nil {
		h.res.WriteError(w, err)
		return
	}
	h.res.Created(w, created, "created")
}

func (h *ResourceHandler[T]) update(w http.ResponseWriter, r *http.Request, id int64, patch json.RawMessage) {
	if len(patch) == 0 || string(patch) == "null" {
		h.res.WriteError(w, errs.MissingField(h.key+"Data"))
		return
	}
	updated, err := h.store.Update(r.Context(), id, patch)
	if err != nil {
		h.res.WriteError(w, err)
		return
	}
	h.res.WriteJSON(w, http.StatusOK, respond.Envelope{Success: true, Data: updated, Message: "updated"})
}

func (h *ResourceHandler[T]) remove(w http.ResponseWriter, r *http.Request, id int64) {
	if err := h.store.Delete(r.Context(), id); err != nil {
		h.res.WriteError(w, err)
		return
	}
	h.res.Message(w, "deleted")
}

// decodeBody reads a JSON object body.
func decodeBody(w http.ResponseWriter, r *http.Request) (map[string]json.RawMessage, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	var body map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return nil, errs.Validation("request body must be a JSON object")
	}
	if body == nil {
		return nil, errs.Validation("request body must be a JSON object")
	}
	return body, nil
}

// filterFrom reads list filters from the query string.
func filterFrom(q url.Values) service.Filter {
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	return service.Filter{
		Status:   q.Get("status"),
		Category: q.Get("category"),
		Type:     q.Get("type"),
		Search:   q.Get("search"),
		Page:     page,
		Limit:    limit,
	}
}

func parseID(field, raw string) (int64, error) {
	if raw == "" {
		return 0, errs.MissingField(field)
	}
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, errs.InvalidField(field, "must be a positive integer")
	}
	return id, nil
}

// rawID accepts an id sent either as a JSON number or as a string.
func rawID(field string, raw json.RawMessage) (int64, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, errs.MissingField(field)
	}
	var n int64
	if err := json.Unmarshal(raw, &n); err == nil {
		if n <= 0 {
			return 0, errs.InvalidField(field, "must be a positive integer")
		}
		return n, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, errs.InvalidField(field, "must be a positive integer")
	}
	return parseID(field, s)
}
