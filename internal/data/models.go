package data

import (
	"html/template"
	"time"
)

// Collection names one JSON file in the data directory.
type Collection string

const (
	Posts             Collection = "blog-posts"
	Services          Collection = "services"
	GalleryImages     Collection = "gallery-images"
	Slides            Collection = "slider-images"
	Categories        Collection = "categories"
	ContactMessages   Collection = "contact-messages"
	ScheduleSettings  Collection = "cron-settings"
	GeneratorSettings Collection = "gemini-settings"
)

// File returns the file name backing the collection.
func (c Collection) File() string {
	return string(c) + ".json"
}

// Post status values.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

// Status values shared by services and slides.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Contact message status values.
const (
	MessageNew     = "new"
	MessageRead    = "read"
	MessageReplied = "replied"
)

// Category types.
const (
	CategoryBlog = "blog"
	CategoryNews = "news"
)

// Meta carries the identity and timestamps shared by every document.
type Meta struct {
	ID        int64     `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// GetID returns the document id.
func (m *Meta) GetID() int64 { return m.ID }

// Metadata returns a copy of the identity fields.
func (m *Meta) Metadata() Meta { return *m }

// Stamp assigns the id and both timestamps of a new document.
func (m *Meta) Stamp(id int64, now time.Time) {
	m.ID = id
	m.CreatedAt = now
	m.UpdatedAt = now
}

// Restore puts back fields an update must not change.
func (m *Meta) Restore(prev Meta, now time.Time) {
	m.ID = prev.ID
	m.CreatedAt = prev.CreatedAt
	m.UpdatedAt = now
}

// Post is a blog article.
type Post struct {
	Meta
	Title       string        `json:"title"`
	Slug        string        `json:"slug"`
	Content     string        `json:"content"`
	HTMLContent template.HTML `json:"-"`
	Excerpt     string        `json:"excerpt"`
	Author      string        `json:"author"`
	Category    string        `json:"category"`
	Tags        []string      `json:"tags"`
	Status      string        `json:"status"`
	Image       string        `json:"image,omitempty"`
	Views       int           `json:"views"`
	ReadTime    string        `json:"readTime"`
}

// Service is a repair service offered by the garage.
type Service struct {
	Meta
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Phone       string   `json:"phone"`
	Status      string   `json:"status"`
	Icon        string   `json:"icon"`
	Features    []string `json:"features"`
	Image       string   `json:"image,omitempty"`
	Price       string   `json:"price,omitempty"`
}

// GalleryImage is a photo shown in the public gallery.
type GalleryImage struct {
	Meta
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Image       string   `json:"image"`
	Category    string   `json:"category,omitempty"`
	Tags        []string `json:"tags"`
	Date        string   `json:"date"`
	Size        string   `json:"size"`
}

// Slide is one entry of the homepage slider.
type Slide struct {
	Meta
	Title      string `json:"title"`
	Subtitle   string `json:"subtitle"`
	Image      string `json:"image"`
	ButtonText string `json:"buttonText"`
	ButtonLink string `json:"buttonLink"`
	Order      int    `json:"order"`
	Status     string `json:"status"`
}

// Category groups blog or news posts.
type Category struct {
	Meta
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
	Type        string `json:"type"`
	Color       string `json:"color,omitempty"`
	Icon        string `json:"icon,omitempty"`
}

// ContactMessage is a message left through the contact form.
type ContactMessage struct {
	Meta
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone"`
	Subject string `json:"subject"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// ScheduleState is the persisted state of the content-generation schedule.
type ScheduleState struct {
	Enabled     bool       `json:"enabled"`
	Interval    string     `json:"interval"`
	PostsPerRun int        `json:"postsPerRun"`
	LastRun     *time.Time `json:"lastRun"`
	Topics      []string   `json:"topics"`
}

// GeneratorOptions holds the API key and style of generated articles.
type GeneratorOptions struct {
	APIKey        string `json:"apiKey"`
	Model         string `json:"model"`
	Language      string `json:"language"`
	Style         string `json:"style"`
	DefaultAuthor string `json:"defaultAuthor"`
	DefaultImage  string `json:"defaultImage"`
	Publish       bool   `json:"publish"`
}
