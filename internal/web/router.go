package web

import (
	"net/http"

	"github.com/erazemk/najdeno/internal/auth"
	"github.com/erazemk/najdeno/internal/db"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/relay"
	"github.com/erazemk/najdeno/internal/tracking"
	webembed "github.com/erazemk/najdeno/web"
)

// Deps are the services the pages are built over.
type Deps struct {
	DB        *db.DB
	JWTSecret string
	Revoker   auth.Revoker
	Tracking  *tracking.Service
	Relay     *relay.Relay
}

// NewRouter creates the web page router with all page routes registered.
func NewRouter(d Deps) (http.Handler, error) {
	templates, err := LoadTemplates()
	if err != nil {
		return nil, err
	}

	s := &Server{
		DB:        d.DB,
		Templates: templates,
		JWTSecret: d.JWTSecret,
		Revoker:   d.Revoker,
		Tracking:  d.Tracking,
		Relay:     d.Relay,
	}

	mux := http.NewServeMux()
	owner := func(h sessionHandler) http.Handler { return s.withSession(model.RoleOwner, h) }
	staff := func(h sessionHandler) http.Handler { return s.withSession(model.RoleStaff, h) }

	// Static assets.
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(webembed.StaticFS()))))

	// Public routes.
	mux.HandleFunc("GET /login", s.LoginPage)
	mux.HandleFunc("POST /login", s.LoginSubmit)
	mux.HandleFunc("GET /signup", s.SignupPage)
	mux.HandleFunc("POST /signup", s.SignupSubmit)
	mux.HandleFunc("POST /logout", s.Logout)
	mux.HandleFunc("GET /find", s.FindPage)

	mux.Handle("GET /{$}", s.withSession("", s.Home))

	// Item owners.
	mux.Handle("GET /owner", owner(s.OwnerDashboard))
	mux.Handle("POST /owner/tags", owner(s.OwnerCreateTag))
	mux.Handle("GET /owner/tags/{id}", owner(s.OwnerTagDetail))
	mux.Handle("POST /owner/tags/{id}/status", owner(s.OwnerTagStatus))
	mux.Handle("POST /owner/tags/{id}/photo", owner(s.OwnerTagPhoto))

	// Drop-off staff.
	mux.Handle("GET /staff", staff(s.StaffDashboard))
	mux.Handle("POST /staff/locations", staff(s.StaffCreateLocation))
	mux.Handle("POST /staff/scan", staff(s.StaffScan))
	mux.Handle("GET /staff/admin", staff(s.AdminPage))
	mux.Handle("GET /staff/admin/items/{id}", staff(s.AdminItem))
	mux.Handle("POST /staff/admin/items/{id}/status", staff(s.AdminStatus))
	mux.Handle("POST /staff/admin/items/{id}/contact", staff(s.AdminContact))

	return mux, nil
}
