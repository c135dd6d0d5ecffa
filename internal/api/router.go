package api

import (
	"net/http"

	"github.com/erazemk/najdeno/internal/auth"
	"github.com/erazemk/najdeno/internal/db"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/relay"
	"github.com/erazemk/najdeno/internal/tracking"
)

// Deps are the services the API is built over.
type Deps struct {
	DB        *db.DB
	JWTSecret string
	Revoker   auth.Revoker
	Tracking  *tracking.Service
	Relay     *relay.Relay
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(d Deps) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: d.DB, JWTSecret: d.JWTSecret, Revoker: d.Revoker}
	usersHandler := &UsersHandler{DB: d.DB}
	tagsHandler := &TagsHandler{Tracking: d.Tracking}
	photosHandler := &PhotosHandler{DB: d.DB}
	locationsHandler := &LocationsHandler{Tracking: d.Tracking}
	scansHandler := &ScansHandler{Tracking: d.Tracking}
	messagesHandler := &MessagesHandler{Relay: d.Relay}
	adminHandler := &AdminHandler{Tracking: d.Tracking}

	authMW := AuthMiddleware(d.JWTSecret, d.Revoker)
	requireStaff := RequireRole(model.RoleStaff)
	authed := func(h http.HandlerFunc) http.Handler { return authMW(h) }
	staff := func(h http.HandlerFunc) http.Handler { return authMW(requireStaff(h)) }

	// Public.
	mux.HandleFunc("POST /api/auth/signup", authHandler.Signup)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("GET /api/tags/lookup/{tagCode}", tagsHandler.Lookup)
	mux.HandleFunc("GET /api/locations/nearby", locationsHandler.Nearby)
	mux.HandleFunc("GET /api/photos/{tagId}", photosHandler.Get)

	// Authenticated.
	mux.Handle("POST /api/auth/logout", authed(authHandler.Logout))
	mux.Handle("PUT /api/auth/password", authed(authHandler.ChangePassword))
	mux.Handle("GET /api/auth/me", authed(usersHandler.Me))
	mux.Handle("GET /api/users/{userId}", authed(usersHandler.Get))

	mux.Handle("POST /api/tags/create", authed(tagsHandler.Create))
	mux.Handle("GET /api/tags/{ownerId}", authed(tagsHandler.ListByOwner))
	mux.Handle("PUT /api/tags/{tagId}/status", authed(tagsHandler.SetStatus))
	mux.Handle("PUT /api/photos/{tagId}", authed(photosHandler.Upload))
	mux.Handle("GET /api/scans/{tagId}", authed(scansHandler.History))

	mux.Handle("POST /api/messages/send", authed(messagesHandler.Send))
	mux.Handle("GET /api/messages/{userId}", authed(messagesHandler.Inbox))

	// Staff only.
	mux.Handle("POST /api/locations/create", staff(locationsHandler.Create))
	mux.Handle("GET /api/locations/staff/{staffId}", staff(locationsHandler.ListByStaff))
	mux.Handle("POST /api/scans/record", staff(scansHandler.Record))

	mux.Handle("GET /api/admin/all-items", staff(adminHandler.AllItems))
	mux.Handle("POST /api/admin/log-status-change", staff(adminHandler.LogStatusChange))
	mux.Handle("GET /api/admin/item-history/{tagId}", staff(adminHandler.ItemHistory))
	mux.Handle("GET /api/admin/statistics", staff(adminHandler.Statistics))

	return mux
}
