package service

import (
	"garage-site/internal/data"
	"garage-site/internal/errs"
	"html"
	"sort"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
)

// Typed collections for every managed resource.
type (
	ServiceCatalog = Collection[data.Service, *data.Service]
	Gallery        = Collection[data.GalleryImage, *data.GalleryImage]
	Slider         = Collection[data.Slide, *data.Slide]
	Categories     = Collection[data.Category, *data.Category]
	Messages       = Collection[data.ContactMessage, *data.ContactMessage]
)

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return errs.MissingField(field)
	}
	return nil
}

func oneOf(field, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return errs.InvalidField(field, "must be one of "+strings.Join(allowed, ", "))
}

func firstErr(checks ...error) error {
	for _, err := range checks {
		if err != nil {
			return err
		}
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// NewServiceCatalog manages the repair services.
func NewServiceCatalog(deps Deps) *ServiceCatalog {
	return NewCollection[data.Service](data.Services, deps, Rules[data.Service]{
		Entity: "service",
		Prepare: func(s *data.Service, _ []data.Service, _ time.Time) {
			if s.Status == "" {
				s.Status = data.StatusActive
			}
		},
		Derive: func(s *data.Service) {
			s.Features = nonNil(s.Features)
		},
		Validate: func(s *data.Service) error {
			return firstErr(
				required("name", s.Name),
				required("description", s.Description),
				oneOf("status", s.Status, data.StatusActive, data.StatusInactive),
			)
		},
		Attributes: func(s *data.Service) Attributes {
			return Attributes{Status: s.Status, Text: append([]string{s.Name, s.Description}, s.Features...)}
		},
		Filters: FilterFields{Status: true},
		Image: func(s *data.Service) string { return s.Image },
	})
}

// NewGallery manages the gallery images.
func NewGallery(deps Deps) *Gallery {
	return NewCollection[data.GalleryImage](data.GalleryImages, deps, Rules[data.GalleryImage]{
		Entity: "gallery image",
		Prepare: func(g *data.GalleryImage, _ []data.GalleryImage, now time.Time) {
			if g.Date == "" {
				g.Date = now.Format(time.DateOnly)
			}
			if g.Size == "" {
				g.Size = "medium"
			}
		},
		Derive: func(g *data.GalleryImage) {
			g.Tags = nonNil(g.Tags)
		},
		Validate: func(g *data.GalleryImage) error {
			return firstErr(required("title", g.Title), required("image", g.Image))
		},
		Attributes: func(g *data.GalleryImage) Attributes {
			return Attributes{Category: g.Category, Text: append([]string{g.Title, g.Description}, g.Tags...)}
		},
		Filters: FilterFields{Category: true},
		Image: func(g *data.GalleryImage) string { return g.Image },
	})
}

// NewSlider manages the homepage slides, listed by their order field.
func NewSlider(deps Deps) *Slider {
	return NewCollection[data.Slide](data.Slides, deps, Rules[data.Slide]{
		Entity: "slide",
		Prepare: func(s *data.Slide, existing []data.Slide, _ time.Time) {
			if s.Status == "" {
				s.Status = data.StatusActive
			}
			if s.Order == 0 {
				max := 0
				for _, e := range existing {
					if e.Order > max {
						max = e.Order
					}
				}
				s.Order = max + 1
			}
		},
		Validate: func(s *data.Slide) error {
			return firstErr(
				required("title", s.Title),
				required("image", s.Image),
				oneOf("status", s.Status, data.StatusActive, data.StatusInactive),
			)
		},
		Attributes: func(s *data.Slide) Attributes {
			return Attributes{Status: s.Status, Text: []string{s.Title, s.Subtitle}}
		},
		Filters: FilterFields{Status: true},
		Sort: func(items []data.Slide) {
			sort.SliceStable(items, func(i, j int) bool { return items[i].Order < items[j].Order })
		},
		Image: func(s *data.Slide) string { return s.Image },
	})
}

// NewCategories manages blog and news categories. The slug always follows
// the name; two categories with the same name share a slug.
func NewCategories(deps Deps) *Categories {
	return NewCollection[data.Category](data.Categories, deps, Rules[data.Category]{
		Entity: "category",
		Prepare: func(c *data.Category, _ []data.Category, _ time.Time) {
			if c.Type == "" {
				c.Type = data.CategoryBlog
			}
		},
		Derive: func(c *data.Category) {
			c.Slug = Slugify(c.Name)
		},
		Validate: func(c *data.Category) error {
			return firstErr(
				required("name", c.Name),
				oneOf("type", c.Type, data.CategoryBlog, data.CategoryNews),
			)
		},
		Attributes: func(c *data.Category) Attributes {
			return Attributes{Type: c.Type, Text: []string{c.Name, c.Description}}
		},
		Filters: FilterFields{Type: true},
	})
}

// NewMessages manages contact-form messages. Free text is stripped of markup.
func NewMessages(deps Deps) *Messages {
	strict := bluemonday.StrictPolicy()
	clean := func(s string) string {
		return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
	}
	return NewCollection[data.ContactMessage](data.ContactMessages, deps, Rules[data.ContactMessage]{
		Entity: "message",
		Prepare: func(m *data.ContactMessage, _ []data.ContactMessage, _ time.Time) {
			m.Status = data.MessageNew
		},
		Derive: func(m *data.ContactMessage) {
			m.Name = clean(m.Name)
			m.Email = clean(m.Email)
			m.Phone = clean(m.Phone)
			m.Subject = clean(m.Subject)
			m.Message = clean(m.Message)
		},
		Validate: func(m *data.ContactMessage) error {
			return firstErr(
				required("name", m.Name),
				required("phone", m.Phone),
				required("message", m.Message),
				oneOf("status", m.Status, data.MessageNew, data.MessageRead, data.MessageReplied),
			)
		},
		Attributes: func(m *data.ContactMessage) Attributes {
			return Attributes{Status: m.Status, Text: []string{m.Name, m.Email, m.Subject, m.Message}}
		},
		Filters: FilterFields{Status: true},
	})
}
