package generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"garage-site/internal/config"
	"garage-site/internal/data"
	"garage-site/internal/errs"
	"garage-site/internal/logger"
	"strings"
	"sync"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
)

// ErrNotConfigured is returned when no API key is available.
var ErrNotConfigured = errors.New("gemini api key is not configured")

const (
	defaultAuthor   = "AI"
	defaultCategory = "Maintenance"
	temperature     = 0.7
)

// Generator turns a topic into a blog post ready to be stored.
type Generator interface {
	Generate(ctx context.Context, topic string, opts data.GeneratorOptions) (*data.Post, error)
}

// ModelFactory creates a language model client for an API key and model name.
type ModelFactory func(ctx context.Context, apiKey, model string) (llms.Model, error)

// GoogleAIModel is the production ModelFactory backed by the Gemini API.
func GoogleAIModel(ctx context.Context, apiKey, model string) (llms.Model, error) {
	return googleai.New(ctx,
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultModel(model),
	)
}

// Gemini generates articles with a Gemini model through langchaingo.
type Gemini struct {
	newModel     ModelFactory
	defaultModel string
	log          logger.Logger

	mu     sync.Mutex
	models map[string]llms.Model
}

// NewGemini creates a Gemini generator. A nil factory uses GoogleAIModel.
func NewGemini(cfg config.GeneratorConfig, factory ModelFactory, log logger.Logger) *Gemini {
	if factory == nil {
		factory = GoogleAIModel
	}
	model := cfg.Model
	if model == "" {
		model = "gemini-1.5-flash"
	}
	return &Gemini{
		newModel:     factory,
		defaultModel: model,
		log:          log,
		models:       make(map[string]llms.Model),
	}
}

var _ Generator = (*Gemini)(nil)

// article is the JSON document the model is asked to return.
type article struct {
	Title    string   `json:"title"`
	Excerpt  string   `json:"excerpt"`
	Content  string   `json:"content"`
	Tags     []string `json:"tags"`
	Category string   `json:"category"`
}

func (g *Gemini) Generate(ctx context.Context, topic string, opts data.GeneratorOptions) (*data.Post, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errs.ExternalService("gemini", ErrNotConfigured)
	}
	if strings.TrimSpace(topic) == "" {
		return nil, errs.MissingField("topic")
	}

	llm, err := g.model(ctx, opts.APIKey, opts.Model)
	if err != nil {
		return nil, errs.ExternalService("gemini", err)
	}

	raw, err := llms.GenerateFromSinglePrompt(ctx, llm, buildPrompt(topic, opts),
		llms.WithTemperature(temperature),
		llms.WithJSONMode(),
	)
	if err != nil {
		return nil, errs.ExternalService("gemini", err)
	}

	var a article
	if err := unmarshalJSON(raw, &a); err != nil {
		return nil, errs.ExternalService("gemini", err)
	}
	if strings.TrimSpace(a.Title) == "" || strings.TrimSpace(a.Content) == "" {
		return nil, errs.ExternalService("gemini", errors.New("response is missing title or content"))
	}

	g.log.With(map[string]interface{}{"topic": topic, "title": a.Title}).Info("Generated article")
	return shapePost(a, opts), nil
}

// model returns a cached client for the key and model pair.
func (g *Gemini) model(ctx context.Context, apiKey, name string) (llms.Model, error) {
	if name == "" {
		name = g.defaultModel
	}
	key := name + "\x00" + apiKey

	g.mu.Lock()
	defer g.mu.Unlock()
	if m, ok := g.models[key]; ok {
		return m, nil
	}
	m, err := g.newModel(ctx, apiKey, name)
	if err != nil {
		return nil, err
	}
	g.models[key] = m
	return m, nil
}

func shapePost(a article, opts data.GeneratorOptions) *data.Post {
	author := opts.DefaultAuthor
	if author == "" {
		author = defaultAuthor
	}
	category := strings.TrimSpace(a.Category)
	if category == "" {
		category = defaultCategory
	}
	status := data.StatusDraft
	if opts.Publish {
		status = data.StatusPublished
	}
	tags := make([]string, 0, len(a.Tags))
	for _, t := range a.Tags {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, strings.ToLower(t))
		}
	}
	return &data.Post{
		Title:    strings.TrimSpace(a.Title),
		Content:  strings.TrimSpace(a.Content),
		Excerpt:  strings.TrimSpace(a.Excerpt),
		Author:   author,
		Category: category,
		Tags:     tags,
		Status:   status,
		Image:    opts.DefaultImage,
	}
}

func buildPrompt(topic string, opts data.GeneratorOptions) string {
	language := opts.Language
	if language == "" {
		language = "English"
	}
	style := opts.Style
	if style == "" {
		style = "friendly and practical"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You write blog articles for an independent car repair garage.\n")
	fmt.Fprintf(&b, "Write an article in %s about: %s\n", language, topic)
	fmt.Fprintf(&b, "Tone: %s. Length: 500 to 800 words. Use markdown headings and lists in the content.\n", style)
	b.WriteString("Reply with a single JSON object and nothing else, using these keys:\n")
	b.WriteString(`{"title": string, "excerpt": string (at most 160 characters), "content": string (markdown), "tags": [string], "category": string}`)
	return b.String()
}

// unmarshalJSON parses a model reply, tolerating code fences and text around
// the JSON object.
func unmarshalJSON(raw string, out interface{}) error {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```JSON")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	if err := json.Unmarshal([]byte(cleaned), out); err == nil {
		return nil
	}

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start >= 0 && end > start {
		if err := json.Unmarshal([]byte(cleaned[start:end+1]), out); err == nil {
			return nil
		}
	}
	return errors.New("invalid JSON response from model")
}
