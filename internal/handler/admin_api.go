package handler

import (
	"bufio"
	"context"
	"encoding/json"
	"garage-site/internal/data"
	"garage-site/internal/errs"
	"garage-site/internal/generator"
	"garage-site/internal/media"
	"garage-site/internal/respond"
	"garage-site/internal/scheduler"
	"garage-site/internal/service"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// CronHandler exposes the content-generation schedule.
type CronHandler struct {
	scheduler *scheduler.Scheduler
	res       respond.Responder
}

// NewCronHandler creates a CronHandler.
func NewCronHandler(s *scheduler.Scheduler, res respond.Responder) *CronHandler {
	return &CronHandler{scheduler: s, res: res}
}

func (h *CronHandler) status(w http.ResponseWriter, r *http.Request) {
	st, err := h.scheduler.Status()
	if err != nil {
		h.res.WriteError(w, err)
		return
	}
	h.res.OK(w, st, nil)
}

func (h *CronHandler) post(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody(w, r)
	if err != nil {
		h.res.WriteError(w, err)
		return
	}
	switch action(body) {
	case "run-cron":
		var force bool
		if raw, ok := body["force"]; ok {
			if err := json.Unmarshal(raw, &force); err != nil {
				h.res.WriteError(w, errs.InvalidField("force", "must be a boolean"))
				return
			}
		}
		// A run finishes even if the caller goes away.
		res, err := h.scheduler.Run(context.WithoutCancel(r.Context()), force)
		if err != nil {
			apiErr := errs.From(err)
			h.res.WriteJSON(w, apiErr.StatusCode, respond.Envelope{Success: false, Message: apiErr.Message, Error: apiErr.Message, Data: res})
			return
		}
		msg := res.Reason
		if res.Ran {
			msg = "generation finished"
		}
		h.res.WriteJSON(w, http.StatusOK, respond.Envelope{Success: true, Data: res, Message: msg})
	case "update-settings":
		st, err := h.scheduler.UpdateSettings(settingsPatch(body))
		if err != nil {
			h.res.WriteError(w, err)
			return
		}
		h.res.WriteJSON(w, http.StatusOK, respond.Envelope{Success: true, Data: st, Message: "settings updated"})
	case "":
		h.res.WriteError(w, errs.MissingField("action"))
	default:
		h.res.WriteError(w, errs.InvalidField("action", "must be one of run-cron, update-settings"))
	}
}

// GeneratorHandler exposes manual generation and the generator settings.
type GeneratorHandler struct {
	gen      generator.Generator
	settings *generator.Settings
	posts    scheduler.PostWriter
	res      respond.Responder
}

// NewGeneratorHandler creates a GeneratorHandler.
func NewGeneratorHandler(gen generator.Generator, settings *generator.Settings, posts scheduler.PostWriter, res respond.Responder) *GeneratorHandler {
	return &GeneratorHandler{gen: gen, settings: settings, posts: posts, res: res}
}

func (h *GeneratorHandler) get(w http.ResponseWriter, r *http.Request) {
	opts, err := h.settings.Masked()
	if err != nil {
		h.res.WriteError(w, err)
		return
	}
	h.res.OK(w, opts, nil)
}

func (h *GeneratorHandler) post(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody(w, r)
	if err != nil {
		h.res.WriteError(w, err)
		return
	}
	switch action(body) {
	case "generate":
		var topic string
		if raw, ok := body["topic"]; ok {
			if err := json.Unmarshal(raw, &topic); err != nil {
				h.res.WriteError(w, errs.InvalidField("topic", "must be a string"))
				return
			}
		}
		if strings.TrimSpace(topic) == "" {
			h.res.WriteError(w, errs.MissingField("topic"))
			return
		}
		opts, err := h.settings.Load()
		if err != nil {
			h.res.WriteError(w, err)
			return
		}
		if raw, ok := body["options"]; ok {
			// Per-request style overrides; the stored key is always used.
			key := opts.APIKey
			if err := json.Unmarshal(raw, &opts); err != nil {
				h.res.WriteError(w, errs.InvalidField("options", "must be an object"))
				return
			}
			opts.APIKey = key
		}

		ctx := context.WithoutCancel(r.Context())
		post, err := h.gen.Generate(ctx, topic, opts)
		if err != nil {
			h.res.WriteError(w, err)
			return
		}
		stored, err := h.posts.Prepend(ctx, []data.Post{*post})
		if err != nil {
			h.res.WriteError(w, err)
			return
		}
		h.res.Created(w, stored[0], "post generated")
	case "update-settings":
		opts, err := h.settings.Update(settingsPatch(body))
		if err != nil {
			h.res.WriteError(w, err)
			return
		}
		h.res.WriteJSON(w, http.StatusOK, respond.Envelope{Success: true, Data: opts, Message: "settings updated"})
	case "":
		h.res.WriteError(w, errs.MissingField("action"))
	default:
		h.res.WriteError(w, errs.InvalidField("action", "must be one of generate, update-settings"))
	}
}

// UploadHandler stores images sent as multipart form data.
type UploadHandler struct {
	storage media.Storage
	res     respond.Responder
}

// NewUploadHandler creates an UploadHandler.
func NewUploadHandler(storage media.Storage, res respond.Responder) *UploadHandler {
	return &UploadHandler{storage: storage, res: res}
}

type uploadResult struct {
	URL  string `json:"url"`
	Name string `json:"name"`
	Size int64  `json:"size"`
}

func (h *UploadHandler) upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, media.MaxUploadSize+1<<20)
	if err := r.ParseMultipartForm(media.MaxUploadSize); err != nil {
		h.res.WriteError(w, errs.Validation("request must be multipart form data under 10MB"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		file, header, err = r.FormFile("image")
	}
	if err != nil {
		h.res.WriteError(w, errs.MissingField("file"))
		return
	}
	defer file.Close()
	if header.Size > media.MaxUploadSize {
		h.res.WriteError(w, errs.InvalidField("file", "must not exceed 10MB"))
		return
	}

	// The declared type is not trusted; sniff the first bytes instead.
	br := bufio.NewReaderSize(file, 512)
	head, _ := br.Peek(512)
	contentType := http.DetectContentType(head)
	if contentType == "application/octet-stream" {
		contentType = header.Header.Get("Content-Type")
	}

	url, err := h.storage.Save(r.Context(), header.Filename, contentType, br)
	if err != nil {
		h.res.WriteError(w, err)
		return
	}
	h.res.Created(w, uploadResult{URL: url, Name: header.Filename, Size: header.Size}, "uploaded")
}

// categoriesByType lists the categories of one type.
func categoriesByType(categories *service.Categories, res respond.Responder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		typ := strings.ToLower(chi.URLParam(r, "type"))
		if typ != data.CategoryBlog && typ != data.CategoryNews {
			res.WriteError(w, errs.InvalidField("type", "must be one of blog, news"))
			return
		}
		items, _, err := categories.List(r.Context(), service.Filter{Type: typ})
		if err != nil {
			res.WriteError(w, err)
			return
		}
		res.OK(w, items, nil)
	}
}

func action(body map[string]json.RawMessage) string {
	var a string
	if raw, ok := body["action"]; ok {
		_ = json.Unmarshal(raw, &a)
	}
	return strings.ToLower(strings.TrimSpace(a))
}

// settingsPatch accepts settings either nested under "settings" or inline
// next to the action.
func settingsPatch(body map[string]json.RawMessage) json.RawMessage {
	if raw, ok := body["settings"]; ok {
		return raw
	}
	fields := make(map[string]json.RawMessage, len(body))
	for k, v := range body {
		if k != "action" {
			fields[k] = v
		}
	}
	raw, _ := json.Marshal(fields)
	return raw
}
