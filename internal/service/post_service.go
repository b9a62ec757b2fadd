package service

import (
	"context"
	"garage-site/internal/data"
	"garage-site/internal/errs"
	"time"
)

// PostService manages blog posts. It adds markdown rendering and view
// counting on top of the generic collection.
type PostService struct {
	*Collection[data.Post, *data.Post]
	renderer *Renderer
}

// NewPostService creates a new PostService.
func NewPostService(deps Deps, renderer *Renderer) *PostService {
	if renderer == nil {
		renderer = NewRenderer()
	}
	rules := Rules[data.Post]{
		Entity: "post",
		Prepare: func(p *data.Post, _ []data.Post, _ time.Time) {
			if p.Status == "" {
				p.Status = data.StatusDraft
			}
			if p.Author == "" {
				p.Author = "Admin"
			}
			p.Views = 0
		},
		Derive: func(p *data.Post) {
			p.Slug = Slugify(p.Title)
			p.Tags = nonNil(p.Tags)
			if p.Excerpt == "" {
				p.Excerpt = renderer.Excerpt(p.Content)
			}
			p.ReadTime = ReadTime(renderer.PlainText(p.Content))
			if p.Views < 0 {
				p.Views = 0
			}
		},
		Validate: func(p *data.Post) error {
			return firstErr(
				required("title", p.Title),
				required("content", p.Content),
				oneOf("status", p.Status, data.StatusDraft, data.StatusPublished),
			)
		},
		Attributes: func(p *data.Post) Attributes {
			return Attributes{
				Status:   p.Status,
				Category: p.Category,
				Text:     append([]string{p.Title, p.Content, p.Excerpt}, p.Tags...),
			}
		},
		Filters: FilterFields{Status: true, Category: true},
		Image: func(p *data.Post) string { return p.Image },
	}
	return &PostService{
		Collection: NewCollection[data.Post](data.Posts, deps, rules),
		renderer:   renderer,
	}
}

// Published lists published posts, newest first as stored.
func (s *PostService) Published(ctx context.Context, f Filter) ([]data.Post, *Pagination, error) {
	f.Status = data.StatusPublished
	return s.List(ctx, f)
}

// View returns a published post rendered to HTML and counts the visit.
// A failure to persist the counter does not hide the post.
func (s *PostService) View(ctx context.Context, id int64) (*data.Post, error) {
	post, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.Status != data.StatusPublished {
		return nil, errs.NotFound("post", id)
	}

	if updated, err := s.Mutate(ctx, id, func(p *data.Post) { p.Views++ }); err == nil {
		post = updated
	} else {
		s.log.Error(err, "Failed to count post view")
	}
	s.Render(post)
	return post, nil
}

// Render fills the HTML form of the post content.
func (s *PostService) Render(post *data.Post) {
	post.HTMLContent = s.renderer.HTML(post.Content)
}
