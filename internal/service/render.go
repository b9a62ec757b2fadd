package service

import (
	"bytes"
	"fmt"
	"html"
	"html/template"
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

const (
	excerptLength  = 160
	wordsPerMinute = 200
)

var (
	nonSlugChars = regexp.MustCompile(`[^\w-]`)
	whitespace   = regexp.MustCompile(`\s+`)
)

// Slugify lower-cases s, turns whitespace runs into dashes and strips every
// character that is not a word character or a dash.
func Slugify(s string) string {
	slug := strings.ToLower(strings.TrimSpace(s))
	slug = whitespace.ReplaceAllString(slug, "-")
	return nonSlugChars.ReplaceAllString(slug, "")
}

// Renderer turns post markdown into sanitised HTML.
type Renderer struct {
	md     goldmark.Markdown
	ugc    *bluemonday.Policy
	strict *bluemonday.Policy
}

// NewRenderer creates a Renderer with GitHub-flavoured markdown enabled.
func NewRenderer() *Renderer {
	return &Renderer{
		md:     goldmark.New(goldmark.WithExtensions(extension.GFM)),
		ugc:    bluemonday.UGCPolicy(),
		strict: bluemonday.StrictPolicy(),
	}
}

// HTML renders markdown. Raw HTML in the source is stripped by the UGC policy.
func (r *Renderer) HTML(markdown string) template.HTML {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(markdown), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(markdown))
	}
	return template.HTML(r.ugc.SanitizeBytes(buf.Bytes()))
}

// PlainText renders markdown and strips every tag.
func (r *Renderer) PlainText(markdown string) string {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(markdown), &buf); err != nil {
		buf.Reset()
		buf.WriteString(markdown)
	}
	text := r.strict.Sanitize(buf.String())
	text = html.UnescapeString(text)
	return strings.TrimSpace(whitespace.ReplaceAllString(text, " "))
}

// Excerpt returns the first 160 characters of the plain-text content.
func (r *Renderer) Excerpt(markdown string) string {
	text := r.PlainText(markdown)
	if utf8.RuneCountInString(text) <= excerptLength {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:excerptLength])) + "..."
}

// ReadTime estimates reading time at 200 words per minute, never less than
// one minute.
func ReadTime(content string) string {
	words := len(strings.Fields(content))
	minutes := int(math.Ceil(float64(words) / wordsPerMinute))
	if minutes < 1 {
		minutes = 1
	}
	return fmt.Sprintf("%d min read", minutes)
}
