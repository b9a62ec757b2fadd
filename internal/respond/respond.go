package respond

import (
	"encoding/json"
	"garage-site/internal/errs"
	"garage-site/internal/logger"
	"net/http"
)

// Envelope is the body of every JSON API response.
type Envelope struct {
	Success    bool        `json:"success"`
	Data       interface{} `json:"data,omitempty"`
	Message    string      `json:"message,omitempty"`
	Error      string      `json:"error,omitempty"`
	Field      string      `json:"field,omitempty"`
	Pagination interface{} `json:"pagination,omitempty"`
}

// Responder writes JSON envelopes and maps errors to status codes.
type Responder struct {
	log logger.Logger
}

func NewResponder(log logger.Logger) Responder {
	return Responder{log: log}
}

// WriteJSON writes env with the given status.
func (r Responder) WriteJSON(w http.ResponseWriter, status int, env Envelope) {
	body, err := json.Marshal(env)
	if err != nil {
		r.log.Error(err, "error marshaling response data")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		r.log.Error(err, "error writing response")
	}
}

// OK writes a successful response. pagination may be nil.
func (r Responder) OK(w http.ResponseWriter, data interface{}, pagination interface{}) {
	env := Envelope{Success: true, Data: data}
	if pagination != nil {
		env.Pagination = pagination
	}
	r.WriteJSON(w, http.StatusOK, env)
}

// Created writes a 201 response carrying the new document.
func (r Responder) Created(w http.ResponseWriter, data interface{}, message string) {
	r.WriteJSON(w, http.StatusCreated, Envelope{Success: true, Data: data, Message: message})
}

// Message writes a successful response without data.
func (r Responder) Message(w http.ResponseWriter, message string) {
	r.WriteJSON(w, http.StatusOK, Envelope{Success: true, Message: message})
}

// WriteError maps err to its status code. The message is sent as both error
// and message. Causes of server-side errors are logged but never sent to the
// client.
func (r Responder) WriteError(w http.ResponseWriter, err error) {
	apiErr := errs.From(err)
	if apiErr.StatusCode >= http.StatusInternalServerError {
		r.log.Error(err, "request failed")
	}
	r.WriteJSON(w, apiErr.StatusCode, Envelope{
		Success: false,
		Message: apiErr.Message,
		Error:   apiErr.Message,
		Field:   apiErr.Field,
	})
}
