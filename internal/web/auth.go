package web

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/erazemk/najdeno/internal/accounts"
	"github.com/erazemk/najdeno/internal/auth"
	"github.com/erazemk/najdeno/internal/model"
)

// LoginPage handles GET /login.
func (s *Server) LoginPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, "login.html", &struct {
		PageData
		Email string
	}{PageData: page(r, "Sign in", nil)})
}

// LoginSubmit handles POST /login.
func (s *Server) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	email := r.FormValue("email")
	password := r.FormValue("password")

	render := func(msg string) {
		s.Templates.Render(w, "login.html", &struct {
			PageData
			Email string
		}{PageData: PageData{Title: "Sign in", Error: msg}, Email: email})
	}

	user, err := accounts.Login(r.Context(), s.DB, email, password)
	switch {
	case model.IsValidation(err):
		render("Enter your email and password.")
		return
	case errors.Is(err, model.ErrInvalidCredentials):
		render("Wrong email or password.")
		return
	case err != nil:
		slog.Error("failed to log in", "error", err)
		render("Sign in failed, try again.")
		return
	}

	token, err := auth.GenerateToken(s.JWTSecret, user.ID, user.Email, user.Role)
	if err != nil {
		slog.Error("failed to generate token", "error", err)
		render("Sign in failed, try again.")
		return
	}

	setAuthCookie(w, token)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// SignupPage handles GET /signup.
func (s *Server) SignupPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, "signup.html", &struct {
		PageData
		Form accounts.SignupInput
	}{PageData: page(r, "Create account", nil), Form: accounts.SignupInput{Role: r.URL.Query().Get("role")}})
}

// SignupSubmit handles POST /signup.
func (s *Server) SignupSubmit(w http.ResponseWriter, r *http.Request) {
	in := accounts.SignupInput{
		Email:                 r.FormValue("email"),
		Password:              r.FormValue("password"),
		FirstName:             r.FormValue("firstName"),
		LastName:              r.FormValue("lastName"),
		Phone:                 r.FormValue("phone"),
		EmergencyContactName:  r.FormValue("emergencyContactName"),
		EmergencyContactPhone: r.FormValue("emergencyContactPhone"),
		Role:                  r.FormValue("userType"),
	}

	_, err := accounts.Signup(r.Context(), s.DB, in)
	if err != nil {
		msg := "Could not create the account."
		var ve *model.ValidationError
		switch {
		case errors.As(err, &ve):
			msg = ve.Message
		case errors.Is(err, model.ErrConflict):
			msg = "An account with this email already exists."
		default:
			slog.Error("failed to sign up", "error", err)
		}
		in.Password = ""
		s.Templates.Render(w, "signup.html", &struct {
			PageData
			Form accounts.SignupInput
		}{PageData: PageData{Title: "Create account", Error: msg}, Form: in})
		return
	}

	redirectFlash(w, r, "/login", "ok", "Account created, you can sign in now.")
}

// Logout handles POST /logout.
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	if sess, err := s.loadSession(r.Context(), r); err == nil && s.Revoker != nil {
		if err := s.Revoker.Revoke(r.Context(), sess.claims.ID, sess.claims.Expiry()); err != nil {
			slog.Error("failed to revoke token", "error", err)
		}
	}
	clearAuthCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// Home handles GET / and sends the user to their role's dashboard.
func (s *Server) Home(w http.ResponseWriter, r *http.Request, sess *Session) {
	if sess.IsStaff() {
		http.Redirect(w, r, "/staff", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/owner", http.StatusSeeOther)
}
