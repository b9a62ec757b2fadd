package middleware

import (
	"garage-site/internal/auth"
	"garage-site/internal/errs"
	"garage-site/internal/logger"
	"garage-site/internal/respond"
	"garage-site/internal/session"
	"net/http"
	"strings"

	"github.com/casbin/casbin/v2"
)

// LoginPath is where anonymous visitors of admin pages are sent.
const LoginPath = "/admin/login"

// Authorizer creates a new middleware for authorization.
// The subject is admin when the request carries the admin token as a bearer
// token or when the session was unlocked through the login form; otherwise it
// is anonymous. Casbin then decides on (subject, path, method).
func Authorizer(e casbin.IEnforcer, sm session.Manager, tokens *auth.TokenChecker, log logger.Logger) func(http.Handler) http.Handler {
	res := respond.NewResponder(log)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userInfo := &UserInfo{Subject: auth.Anonymous}
			if token := auth.BearerToken(r); token != "" {
				if tokens.Valid(token) {
					userInfo = &UserInfo{Subject: auth.Admin, Via: "token"}
				}
			} else if sm.GetBool(r.Context(), session.AdminKey) {
				userInfo = &UserInfo{Subject: auth.Admin, Via: "session"}
			}
			r = r.WithContext(SetUserInfo(r.Context(), userInfo))

			allowed, err := e.Enforce(userInfo.Subject, r.URL.Path, r.Method)
			if err != nil {
				log.Error(err, "Authorization error")
				denied(w, r, res, errs.Internal("authorization error", err))
				return
			}
			if allowed {
				next.ServeHTTP(w, r)
				return
			}

			if userInfo.Subject == auth.Anonymous {
				if !isAPI(r) && strings.HasPrefix(r.URL.Path, "/admin") && r.Method == http.MethodGet {
					http.Redirect(w, r, LoginPath, http.StatusSeeOther)
					return
				}
				denied(w, r, res, errs.Unauthorized("authentication required"))
				return
			}
			denied(w, r, res, errs.Forbidden("forbidden"))
		})
	}
}

func denied(w http.ResponseWriter, r *http.Request, res respond.Responder, err *errs.ApiErr) {
	if isAPI(r) {
		res.WriteError(w, err)
		return
	}
	http.Error(w, http.StatusText(err.StatusCode), err.StatusCode)
}

func isAPI(r *http.Request) bool {
	return r.URL.Path == "/api" || strings.HasPrefix(r.URL.Path, "/api/")
}
