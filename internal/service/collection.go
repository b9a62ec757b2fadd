package service

import (
	"context"
	"encoding/json"
	"garage-site/internal/cache"
	"garage-site/internal/data"
	"garage-site/internal/errs"
	"garage-site/internal/logger"
	"garage-site/internal/media"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Document is implemented by pointers to every stored entity through the
// embedded data.Meta.
type Document interface {
	GetID() int64
	Metadata() data.Meta
	Stamp(id int64, now time.Time)
	Restore(prev data.Meta, now time.Time)
}

type document[T any] interface {
	*T
	Document
}

// Attributes exposes the fields a list request can filter on.
type Attributes struct {
	Status   string
	Category string
	Type     string
	Text     []string // searched case-insensitively
}

// FilterFields names the Filter fields a resource supports. Filters on other
// fields are ignored rather than matching nothing.
type FilterFields struct {
	Status   bool
	Category bool
	Type     bool
}

// Rules customise a Collection for one resource.
type Rules[T any] struct {
	// Entity names the resource in error messages.
	Entity string
	// Validate checks required fields after defaults are applied.
	Validate func(item *T) error
	// Prepare fills defaults on create. existing is the current collection.
	Prepare func(item *T, existing []T, now time.Time)
	// Derive recomputes derived fields on create and update.
	Derive func(item *T)
	// Attributes returns the filterable view of an item.
	Attributes func(item *T) Attributes
	// Filters lists which of Status, Category and Type apply.
	Filters FilterFields
	// Sort orders list results in place. Nil keeps file order.
	Sort func(items []T)
	// Image returns the stored media URL to remove on delete.
	Image func(item *T) string
}

// Deps are shared by every collection.
type Deps struct {
	Store *data.Store
	Cache *cache.Cache
	Media media.Storage
	Log   logger.Logger
	Now   func() time.Time
}

// Filter selects and paginates list results. Zero values match everything.
type Filter struct {
	Status   string
	Category string
	Type     string
	Search   string
	Page     int
	Limit    int
}

// Pagination describes one page of a list result.
type Pagination struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

// DefaultPageSize is used when a page is requested without a limit.
const DefaultPageSize = 10

// Collection implements create, read, update and delete for one JSON
// collection, keeping the cache coherent with the file.
type Collection[T any, P document[T]] struct {
	name  data.Collection
	store *data.Store
	cache *cache.Cache
	media media.Storage
	log   logger.Logger
	now   func() time.Time
	rules Rules[T]
	group singleflight.Group

	// version changes on every invalidation. A read that started before an
	// invalidation must not fill the cache.
	mu      sync.Mutex
	version uint64
}

// NewCollection wires a collection to its dependencies.
func NewCollection[T any, P document[T]](name data.Collection, deps Deps, rules Rules[T]) *Collection[T, P] {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	return &Collection[T, P]{
		name:  name,
		store: deps.Store,
		cache: deps.Cache,
		media: deps.Media,
		log:   log.With(map[string]interface{}{"collection": string(name)}),
		now:   now,
		rules: rules,
	}
}

// Name returns the collection this service manages.
func (c *Collection[T, P]) Name() data.Collection {
	return c.name
}

func (c *Collection[T, P]) cacheKey() string {
	return string(c.name) + ":all"
}

// All returns every document. Concurrent cache misses share one file read.
// The returned slice is a copy and may be modified by the caller.
func (c *Collection[T, P]) All(ctx context.Context) ([]T, error) {
	if v, ok := c.cache.Get(c.cacheKey()); ok {
		return clone(v.([]T)), nil
	}

	c.mu.Lock()
	version := c.version
	c.mu.Unlock()

	// Readers arriving after a write never join a read that began before it.
	key := c.cacheKey() + "@" + strconv.FormatUint(version, 10)
	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		items, err := data.Read[T](c.store, c.name)
		if err != nil {
			return nil, err
		}
		if c.rules.Sort != nil {
			c.rules.Sort(items)
		}
		c.fill(items, version)
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	return clone(v.([]T)), nil
}

// Get returns a single document by id.
func (c *Collection[T, P]) Get(ctx context.Context, id int64) (*T, error) {
	items, err := c.All(ctx)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if P(&items[i]).GetID() == id {
			return &items[i], nil
		}
	}
	return nil, errs.NotFound(c.rules.Entity, id)
}

// List filters and optionally paginates the collection. Pagination is nil
// when neither page nor limit was requested.
func (c *Collection[T, P]) List(ctx context.Context, f Filter) ([]T, *Pagination, error) {
	items, err := c.All(ctx)
	if err != nil {
		return nil, nil, err
	}

	matched := items[:0]
	for i := range items {
		if c.matches(&items[i], f) {
			matched = append(matched, items[i])
		}
	}

	if f.Page <= 0 && f.Limit <= 0 {
		return matched, nil, nil
	}
	page, limit := f.Page, f.Limit
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}

	total := len(matched)
	totalPages := int(math.Ceil(float64(total) / float64(limit)))
	p := &Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}

	start := (page - 1) * limit
	if start >= total {
		return []T{}, p, nil
	}
	end := start + limit
	if end > total {
		end = total
	}
	return matched[start:end], p, nil
}

func (c *Collection[T, P]) matches(item *T, f Filter) bool {
	if c.rules.Attributes == nil {
		return true
	}
	a := c.rules.Attributes(item)
	fields := c.rules.Filters
	if fields.Status && f.Status != "" && !strings.EqualFold(a.Status, f.Status) {
		return false
	}
	if fields.Category && f.Category != "" && !strings.EqualFold(a.Category, f.Category) {
		return false
	}
	if fields.Type && f.Type != "" && !strings.EqualFold(a.Type, f.Type) {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		for _, text := range a.Text {
			if strings.Contains(strings.ToLower(text), needle) {
				return true
			}
		}
		return false
	}
	return true
}

// Create validates item, assigns the next id and appends it.
func (c *Collection[T, P]) Create(ctx context.Context, item T) (*T, error) {
	created, err := c.insert(ctx, []T{item}, false)
	if err != nil {
		return nil, err
	}
	return &created[0], nil
}

// Prepend inserts several new documents at the head of the collection in one
// write, newest first.
func (c *Collection[T, P]) Prepend(ctx context.Context, items []T) ([]T, error) {
	if len(items) == 0 {
		return []T{}, nil
	}
	return c.insert(ctx, items, true)
}

func (c *Collection[T, P]) insert(ctx context.Context, items []T, prepend bool) ([]T, error) {
	now := c.now()
	created := make([]T, 0, len(items))

	_, err := data.Update(c.store, c.name, func(existing []T) ([]T, error) {
		next := nextID[T, P](existing)
		for _, item := range items {
			if c.rules.Prepare != nil {
				c.rules.Prepare(&item, existing, now)
			}
			if c.rules.Derive != nil {
				c.rules.Derive(&item)
			}
			if c.rules.Validate != nil {
				if err := c.rules.Validate(&item); err != nil {
					return nil, err
				}
			}
			P(&item).Stamp(next, now)
			next++
			created = append(created, item)
		}

		if prepend {
			out := make([]T, 0, len(existing)+len(created))
			out = append(out, created...)
			return append(out, existing...), nil
		}
		return append(existing, created...), nil
	})
	if err != nil {
		return nil, err
	}

	c.invalidate()
	c.log.Info("Created document(s)")
	return created, nil
}

// Update shallow-merges patch over the stored document. id and createdAt
// cannot be changed; updatedAt is bumped.
func (c *Collection[T, P]) Update(ctx context.Context, id int64, patch json.RawMessage) (*T, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(patch, &fields); err != nil {
		return nil, errs.Validation("payload must be a JSON object")
	}
	delete(fields, "id")
	delete(fields, "createdAt")
	delete(fields, "updatedAt")

	var updated T
	_, err := data.Update(c.store, c.name, func(existing []T) ([]T, error) {
		idx := indexOf[T, P](existing, id)
		if idx < 0 {
			return nil, errs.NotFound(c.rules.Entity, id)
		}

		merged, err := merge(existing[idx], fields)
		if err != nil {
			return nil, err
		}
		prev := P(&existing[idx]).Metadata()
		if c.rules.Derive != nil {
			c.rules.Derive(&merged)
		}
		if c.rules.Validate != nil {
			if err := c.rules.Validate(&merged); err != nil {
				return nil, err
			}
		}
		P(&merged).Restore(prev, c.now())

		existing[idx] = merged
		updated = merged
		return existing, nil
	})
	if err != nil {
		return nil, err
	}

	c.invalidate()
	return &updated, nil
}

// Mutate applies fn to a stored document without the shallow-merge step.
// Used for server-side changes such as view counters.
func (c *Collection[T, P]) Mutate(ctx context.Context, id int64, fn func(item *T)) (*T, error) {
	var updated T
	_, err := data.Update(c.store, c.name, func(existing []T) ([]T, error) {
		idx := indexOf[T, P](existing, id)
		if idx < 0 {
			return nil, errs.NotFound(c.rules.Entity, id)
		}
		fn(&existing[idx])
		updated = existing[idx]
		return existing, nil
	})
	if err != nil {
		return nil, err
	}
	c.invalidate()
	return &updated, nil
}

// Delete removes exactly one document. Its stored image is removed on a
// best-effort basis unless another document still uses it.
func (c *Collection[T, P]) Delete(ctx context.Context, id int64) error {
	var url string
	_, err := data.Update(c.store, c.name, func(existing []T) ([]T, error) {
		idx := indexOf[T, P](existing, id)
		if idx < 0 {
			return nil, errs.NotFound(c.rules.Entity, id)
		}
		if c.rules.Image != nil {
			url = c.rules.Image(&existing[idx])
		}
		remaining := append(existing[:idx], existing[idx+1:]...)
		if url != "" {
			for i := range remaining {
				if c.rules.Image(&remaining[i]) == url {
					url = ""
					break
				}
			}
		}
		return remaining, nil
	})
	if err != nil {
		return err
	}
	c.invalidate()

	if c.media != nil && url != "" {
		if err := c.media.Delete(ctx, url); err != nil {
			c.log.With(map[string]interface{}{"id": id, "image": url}).Warn("Failed to delete media file: " + err.Error())
		}
	}
	return nil
}

// Invalidate drops every cached entry of this collection.
func (c *Collection[T, P]) Invalidate() {
	c.invalidate()
}

func (c *Collection[T, P]) invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.version++
	c.cache.DeletePattern(string(c.name))
}

// fill caches items unless the collection was invalidated after version was
// taken.
func (c *Collection[T, P]) fill(items []T, version uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.version == version {
		c.cache.Set(c.cacheKey(), items, 0)
	}
}

func nextID[T any, P document[T]](items []T) int64 {
	var max int64
	for i := range items {
		if id := P(&items[i]).GetID(); id > max {
			max = id
		}
	}
	return max + 1
}

func indexOf[T any, P document[T]](items []T, id int64) int {
	for i := range items {
		if P(&items[i]).GetID() == id {
			return i
		}
	}
	return -1
}

// merge overlays fields on the JSON form of item.
func merge[T any](item T, fields map[string]json.RawMessage) (T, error) {
	var out T
	raw, err := json.Marshal(item)
	if err != nil {
		return out, errs.Internal("failed to encode document", err)
	}
	var base map[string]json.RawMessage
	if err := json.Unmarshal(raw, &base); err != nil {
		return out, errs.Internal("failed to decode document", err)
	}
	for k, v := range fields {
		base[k] = v
	}
	raw, err = json.Marshal(base)
	if err != nil {
		return out, errs.Internal("failed to encode document", err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, errs.Validation("payload has fields of the wrong type")
	}
	return out, nil
}

func clone[T any](items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	return out
}
