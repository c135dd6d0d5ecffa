package web

import (
	"context"
	"errors"
	"net/http"

	"github.com/erazemk/najdeno/internal/auth"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

const cookieName = "token"

// Session is the signed-in user for one request. It is built by
// withSession and passed to each page handler explicitly.
type Session struct {
	UserID string
	Email  string
	Name   string
	Role   string
	Token  string
	claims *auth.Claims
}

// IsStaff reports whether the user is drop-off staff.
func (s *Session) IsStaff() bool { return s.Role == model.RoleStaff }

type sessionHandler func(w http.ResponseWriter, r *http.Request, sess *Session)

var errNoSession = errors.New("no session")

// loadSession validates the token cookie, checks revocation and loads
// the user.
func (s *Server) loadSession(ctx context.Context, r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(cookieName)
	if err != nil || cookie.Value == "" {
		return nil, errNoSession
	}

	claims, err := auth.Authenticate(ctx, s.JWTSecret, s.Revoker, cookie.Value)
	if err != nil {
		return nil, err
	}

	user, err := store.GetUser(ctx, s.DB, claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errNoSession
	}

	return &Session{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.FullName(),
		Role:   user.Role,
		Token:  cookie.Value,
		claims: claims,
	}, nil
}

// withSession admits requests carrying a valid token cookie and, when
// role is set, only users with that role. Others are sent to the login
// page or their own dashboard.
func (s *Server) withSession(role string, h sessionHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.loadSession(r.Context(), r)
		if err != nil {
			clearAuthCookie(w)
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		if role != "" && sess.Role != role {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		h(w, r, sess)
	})
}

func setAuthCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(auth.TokenExpiry.Seconds()),
	})
}

// clearAuthCookie clears the authentication cookie with consistent attributes.
func clearAuthCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}
