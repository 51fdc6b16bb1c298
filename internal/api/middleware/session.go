package middleware

import (
	"errors"
	"log"
	"net/http"

	"github.com/alphapocket/pocket-backend/internal/api/response"
	"github.com/alphapocket/pocket-backend/internal/apperrors"
	"github.com/alphapocket/pocket-backend/internal/session"
)

// Session token transport.
const (
	SessionHeader = "X-Session-Token"
	SessionCookie = "pocket_session"
)

// Session attaches the caller's session to the request context.
//
// The token is read from the X-Session-Token header, falling back to the
// pocket_session cookie. Without a live session, read-only requests are served
// from an unstored default session and no token is issued. Any other request
// starts a stored session whose token is returned in both the header and the
// cookie so the client can pick it up either way.
func Session(manager *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var sess *session.Session

			if token := tokenFrom(r); token != "" {
				s, err := manager.Resolve(token)
				switch {
				case err == nil:
					sess = s
				case errors.Is(err, apperrors.ErrInvalidSession):
					log.Printf("rejected session token: %v", err)
				}
			}

			if sess == nil && readOnly(r.Method) {
				sess = manager.Transient()
			}

			if sess == nil {
				s, token, err := manager.Create()
				if err != nil {
					response.RespondError(w, http.StatusInternalServerError, "failed to start session", err.Error())
					return
				}
				sess = s
				w.Header().Set(SessionHeader, token)
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookie,
					Value:    token,
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}

			next.ServeHTTP(w, r.WithContext(session.NewContext(r.Context(), sess)))
		})
	}
}

func readOnly(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

func tokenFrom(r *http.Request) string {
	if token := r.Header.Get(SessionHeader); token != "" {
		return token
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}
