package middleware

import (
	"fmt"
	"garage-site/internal/errs"
	"garage-site/internal/logger"
	"io"
	"net/http"
)

// PageRenderer renders a named page template.
type PageRenderer interface {
	Render(w io.Writer, r *http.Request, name string, data map[string]interface{}) error
}

// AppError represents a custom error type for the application.
type AppError struct {
	Error   error
	Message string
	Code    int
}

// NewAppError wraps err with the status its taxonomy maps to.
func NewAppError(err error, message string) *AppError {
	return &AppError{Error: err, Message: message, Code: errs.StatusCode(err)}
}

// AppHandler is a custom handler function type that returns an AppError.
type AppHandler func(http.ResponseWriter, *http.Request) *AppError

// Error is a middleware that converts handler errors into user-friendly error pages.
func Error(log logger.Logger, view PageRenderer) func(AppHandler) http.Handler {
	render := func(w http.ResponseWriter, r *http.Request, code int, text string) {
		data := map[string]interface{}{
			"Title":      text,
			"StatusCode": code,
			"StatusText": text,
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(code)
		if err := view.Render(w, r, "error.html", data); err != nil {
			log.Error(err, "Failed to render error page")
		}
	}

	return func(next AppHandler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					err, ok := rec.(error)
					if !ok {
						err = fmt.Errorf("%v", rec)
					}
					log.Error(err, "Panic recovered")
					render(w, r, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
				}
			}()

			appErr := next(w, r)
			if appErr == nil {
				return
			}
			code := appErr.Code
			if code == 0 {
				code = http.StatusInternalServerError
			}
			text := appErr.Message
			if text == "" {
				text = http.StatusText(code)
			}
			if code >= http.StatusInternalServerError {
				log.Error(appErr.Error, text)
			} else {
				log.Debug(text)
			}
			render(w, r, code, text)
		})
	}
}
