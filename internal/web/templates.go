package web

import (
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/erazemk/najdeno/internal/auth"
	"github.com/erazemk/najdeno/internal/db"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/relay"
	"github.com/erazemk/najdeno/internal/tracking"
	webembed "github.com/erazemk/najdeno/web"
)

// Templates holds parsed HTML templates.
type Templates struct {
	templates map[string]*template.Template
}

// FuncMap returns the template function map.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"statusName": func(status string) string {
			switch status {
			case model.TagStatusActive:
				return "Active"
			case model.TagStatusLost:
				return "Lost"
			case model.TagStatusFound:
				return "Found"
			case model.TagStatusPickedUp:
				return "Picked up"
			case model.TagStatusDiscarded:
				return "Discarded"
			default:
				return status
			}
		},
		"roleName": func(role string) string {
			if role == model.RoleStaff {
				return "Drop-off staff"
			}
			return "Item owner"
		},
		"date": func(t time.Time) string {
			return t.Local().Format("2 Jan 2006 15:04")
		},
		"km": func(d *float64) string {
			if d == nil {
				return ""
			}
			return fmt.Sprintf("%.2f km", *d)
		},
		"statuses": func() []string { return model.TagStatuses },
	}
}

// LoadTemplates parses all page templates with the layout.
func LoadTemplates() (*Templates, error) {
	tfs := webembed.TemplatesFS()

	layoutBytes, err := fs.ReadFile(tfs, "layout.html")
	if err != nil {
		return nil, fmt.Errorf("reading layout template: %w", err)
	}

	pages := []string{
		"login.html",
		"signup.html",
		"owner.html",
		"owner_tag.html",
		"staff.html",
		"admin.html",
		"find.html",
	}

	ts := &Templates{templates: make(map[string]*template.Template)}

	for _, page := range pages {
		pageBytes, err := fs.ReadFile(tfs, page)
		if err != nil {
			return nil, fmt.Errorf("reading template %s: %w", page, err)
		}

		tmpl := template.New(page).Funcs(FuncMap())
		tmpl, err = tmpl.Parse(string(layoutBytes))
		if err != nil {
			return nil, fmt.Errorf("parsing layout for %s: %w", page, err)
		}
		tmpl, err = tmpl.Parse(string(pageBytes))
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", page, err)
		}

		ts.templates[page] = tmpl
	}

	return ts, nil
}

// Render renders a template with the given data.
func (ts *Templates) Render(w http.ResponseWriter, name string, data any) {
	tmpl, ok := ts.templates[name]
	if !ok {
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "layout", data); err != nil {
		slog.Error("failed to render template", "template", name, "error", err)
	}
}

// PageData is the base data passed to all templates.
type PageData struct {
	Title   string
	Session *Session
	Error   string
	Success string
}

// page builds PageData with flash messages taken from the query string.
func page(r *http.Request, title string, sess *Session) PageData {
	q := r.URL.Query()
	return PageData{Title: title, Session: sess, Error: q.Get("err"), Success: q.Get("ok")}
}

// redirectFlash redirects to path with a success or error message.
func redirectFlash(w http.ResponseWriter, r *http.Request, path, key, message string) {
	u := url.URL{Path: path}
	q := url.Values{}
	q.Set(key, message)
	u.RawQuery = q.Encode()
	http.Redirect(w, r, u.String(), http.StatusSeeOther)
}

// Server holds all dependencies for page handlers.
type Server struct {
	DB        *db.DB
	Templates *Templates
	JWTSecret string
	Revoker   auth.Revoker
	Tracking  *tracking.Service
	Relay     *relay.Relay
}
