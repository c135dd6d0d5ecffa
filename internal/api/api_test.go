package api

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/erazemk/najdeno/internal/db"
	"github.com/erazemk/najdeno/internal/mailer"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/relay"
	"github.com/erazemk/najdeno/internal/store"
	"github.com/erazemk/najdeno/internal/tracking"
)

const testJWTSecret = "test-secret"

type recordingSender struct {
	sent []mailer.Message
}

func (s *recordingSender) Send(_ context.Context, msg mailer.Message) error {
	s.sent = append(s.sent, msg)
	return nil
}

type testEnv struct {
	server *httptest.Server
	db     *db.DB
	mail   *recordingSender
}

type session struct {
	UserID string
	Token  string
}

func setupTestServer(t *testing.T) *testEnv {
	t.Helper()
	database := db.NewTestDB(t)
	sender := &recordingSender{}
	router := NewRouter(Deps{
		DB:        database,
		JWTSecret: testJWTSecret,
		Revoker:   &store.TokenRevoker{DB: database},
		Tracking:  tracking.New(database),
		Relay:     &relay.Relay{DB: database, Sender: sender},
	})
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return &testEnv{server: server, db: database, mail: sender}
}

func (e *testEnv) signup(t *testing.T, email, role string) session {
	t.Helper()
	resp := e.do(t, "POST", "/api/auth/signup", "", map[string]string{
		"email":                 email,
		"password":              "password123",
		"firstName":             "Ana",
		"lastName":              "Novak",
		"phone":                 "+386 1 234 5678",
		"emergencyContactName":  "Marko Novak",
		"emergencyContactPhone": "+386 1 876 5432",
		"userType":              role,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("signup %s: expected 201, got %d", email, resp.StatusCode)
	}
	resp.Body.Close()

	resp = e.do(t, "POST", "/api/auth/login", "", map[string]string{"email": email, "password": "password123"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login %s: expected 200, got %d", email, resp.StatusCode)
	}
	var login map[string]any
	decode(t, resp, &login)

	s := session{UserID: login["userId"].(string), Token: login["token"].(string)}
	if s.Token == "" {
		t.Fatal("empty token from login")
	}
	if login["userType"] != role {
		t.Errorf("expected userType %q in login response, got %v", role, login["userType"])
	}
	if _, ok := login["passwordHash"]; ok {
		t.Error("login response must not carry the password hash")
	}
	return s
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var reader io.Reader = http.NoBody
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, e.server.URL+path, reader)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func decode(t *testing.T, resp *http.Response, target any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
}

func expectStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		body, _ := io.ReadAll(resp.Body)
		t.Errorf("%s %s: expected %d, got %d (%s)", resp.Request.Method, resp.Request.URL.Path, want, resp.StatusCode, body)
	}
	resp.Body.Close()
}

func (e *testEnv) createTag(t *testing.T, s session, name string) (string, string) {
	t.Helper()
	resp := e.do(t, "POST", "/api/tags/create", s.Token, map[string]string{"itemName": name})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create tag: expected 201, got %d", resp.StatusCode)
	}
	var out map[string]string
	decode(t, resp, &out)
	return out["tagId"], out["tagCode"]
}

func TestAuthEndpoints(t *testing.T) {
	env := setupTestServer(t)
	env.signup(t, "ana@example.com", model.RoleOwner)

	resp := env.do(t, "POST", "/api/auth/login", "", map[string]string{"email": "ana@example.com", "password": "wrong-password"})
	expectStatus(t, resp, http.StatusUnauthorized)

	resp = env.do(t, "POST", "/api/auth/signup", "", map[string]string{"email": "x@example.com"})
	expectStatus(t, resp, http.StatusBadRequest)

	resp = env.do(t, "POST", "/api/auth/signup", "", map[string]string{
		"email": "ana@example.com", "password": "password123", "firstName": "A", "lastName": "B",
		"phone": "1", "emergencyContactName": "C", "emergencyContactPhone": "2", "userType": "owner",
	})
	expectStatus(t, resp, http.StatusConflict)

	resp = env.do(t, "GET", "/api/tags/whatever", "", nil)
	expectStatus(t, resp, http.StatusUnauthorized)
}

func TestOverlongPasswordRejected(t *testing.T) {
	env := setupTestServer(t)
	long := strings.Repeat("p", 80)

	resp := env.do(t, "POST", "/api/auth/signup", "", map[string]string{
		"email": "long@example.com", "password": long, "firstName": "A", "lastName": "B",
		"phone": "1", "emergencyContactName": "C", "emergencyContactPhone": "2", "userType": "owner",
	})
	expectStatus(t, resp, http.StatusBadRequest)

	s := env.signup(t, "ana@example.com", model.RoleOwner)
	resp = env.do(t, "PUT", "/api/auth/password", s.Token, map[string]string{
		"currentPassword": "password123",
		"newPassword":     long,
	})
	expectStatus(t, resp, http.StatusBadRequest)
}

func TestLogoutRevokesToken(t *testing.T) {
	env := setupTestServer(t)
	s := env.signup(t, "ana@example.com", model.RoleOwner)

	resp := env.do(t, "GET", "/api/auth/me", s.Token, nil)
	expectStatus(t, resp, http.StatusOK)

	resp = env.do(t, "POST", "/api/auth/logout", s.Token, nil)
	expectStatus(t, resp, http.StatusOK)

	resp = env.do(t, "GET", "/api/auth/me", s.Token, nil)
	expectStatus(t, resp, http.StatusUnauthorized)
}

func TestTagLifecycleFlow(t *testing.T) {
	env := setupTestServer(t)
	owner := env.signup(t, "owner@example.com", model.RoleOwner)
	staff := env.signup(t, "desk@example.com", model.RoleStaff)

	tagID, code := env.createTag(t, owner, "Backpack")

	// Public lookup shows the new tag as active with owner contact info.
	resp := env.do(t, "GET", "/api/tags/lookup/"+code, "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("lookup: expected 200, got %d", resp.StatusCode)
	}
	var lookup map[string]any
	decode(t, resp, &lookup)
	if lookup["status"] != model.TagStatusActive || lookup["email"] != "owner@example.com" {
		t.Errorf("unexpected lookup %v", lookup)
	}

	resp = env.do(t, "GET", "/api/tags/lookup/NOSUCHCODE123", "", nil)
	expectStatus(t, resp, http.StatusNotFound)

	// Owner marks it lost; an invalid status is rejected.
	resp = env.do(t, "PUT", "/api/tags/"+tagID+"/status", owner.Token, map[string]string{"status": "lost"})
	expectStatus(t, resp, http.StatusOK)
	resp = env.do(t, "PUT", "/api/tags/"+tagID+"/status", owner.Token, map[string]string{"status": "stolen"})
	expectStatus(t, resp, http.StatusBadRequest)
	resp = env.do(t, "PUT", "/api/tags/missing/status", owner.Token, map[string]string{"status": "lost"})
	expectStatus(t, resp, http.StatusNotFound)

	// Staff registers a location and scans the tag there.
	resp = env.do(t, "POST", "/api/locations/create", staff.Token, map[string]any{
		"name": "Main station", "address": "Trg 1", "phone": "01", "latitude": 46.0569, "longitude": 14.5058,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create location: expected 201, got %d", resp.StatusCode)
	}
	var loc map[string]string
	decode(t, resp, &loc)

	resp = env.do(t, "POST", "/api/scans/record", staff.Token, map[string]string{"tagId": tagID, "locationId": loc["locationId"]})
	expectStatus(t, resp, http.StatusCreated)

	resp = env.do(t, "GET", "/api/tags/lookup/"+code, "", nil)
	decode(t, resp, &lookup)
	if lookup["status"] != model.TagStatusFound {
		t.Errorf("expected found after scan, got %v", lookup["status"])
	}

	// Owner sees the scan with the location name.
	resp = env.do(t, "GET", "/api/scans/"+tagID, owner.Token, nil)
	var scans []model.Scan
	decode(t, resp, &scans)
	if len(scans) != 1 || scans[0].LocationName != "Main station" {
		t.Errorf("unexpected scans %+v", scans)
	}

	// Staff changes status with notes; it shows up in the item history.
	resp = env.do(t, "PUT", "/api/tags/"+tagID+"/status", staff.Token, map[string]string{"status": "picked-up", "notes": "ID checked"})
	expectStatus(t, resp, http.StatusOK)
	resp = env.do(t, "GET", "/api/admin/item-history/"+tagID, staff.Token, nil)
	var history []model.StatusChange
	decode(t, resp, &history)
	if len(history) != 1 || history[0].OldStatus != model.TagStatusFound || history[0].Notes != "ID checked" {
		t.Errorf("unexpected history %+v", history)
	}

	// The owner's list has the tag.
	resp = env.do(t, "GET", "/api/tags/"+owner.UserID, owner.Token, nil)
	var tags []model.Tag
	decode(t, resp, &tags)
	if len(tags) != 1 || tags[0].Status != model.TagStatusPickedUp {
		t.Errorf("unexpected tags %+v", tags)
	}
}

func TestRoleChecks(t *testing.T) {
	env := setupTestServer(t)
	owner := env.signup(t, "owner@example.com", model.RoleOwner)
	other := env.signup(t, "other@example.com", model.RoleOwner)
	tagID, _ := env.createTag(t, owner, "Keys")

	resp := env.do(t, "POST", "/api/scans/record", owner.Token, map[string]string{"tagId": tagID})
	expectStatus(t, resp, http.StatusForbidden)

	resp = env.do(t, "GET", "/api/admin/all-items", owner.Token, nil)
	expectStatus(t, resp, http.StatusForbidden)

	resp = env.do(t, "POST", "/api/locations/create", owner.Token, map[string]string{"name": "x", "address": "y", "phone": "z"})
	expectStatus(t, resp, http.StatusForbidden)

	resp = env.do(t, "GET", "/api/tags/"+owner.UserID, other.Token, nil)
	expectStatus(t, resp, http.StatusForbidden)

	resp = env.do(t, "PUT", "/api/tags/"+tagID+"/status", other.Token, map[string]string{"status": "lost"})
	expectStatus(t, resp, http.StatusForbidden)

	resp = env.do(t, "GET", "/api/messages/"+owner.UserID, other.Token, nil)
	expectStatus(t, resp, http.StatusForbidden)
}

func TestNearbyEndpoint(t *testing.T) {
	env := setupTestServer(t)
	staff := env.signup(t, "desk@example.com", model.RoleStaff)

	for _, l := range []map[string]any{
		{"name": "Origin", "address": "a", "phone": "1", "latitude": 0.0, "longitude": 0.0},
		{"name": "East", "address": "b", "phone": "2", "latitude": 0.0, "longitude": 0.1},
		{"name": "Unmapped", "address": "c", "phone": "3"},
	} {
		resp := env.do(t, "POST", "/api/locations/create", staff.Token, l)
		expectStatus(t, resp, http.StatusCreated)
	}

	resp := env.do(t, "GET", "/api/locations/nearby?lat=0&lng=0&radius=11", "", nil)
	var locs []model.Location
	decode(t, resp, &locs)
	if len(locs) != 1 || locs[0].Name != "Origin" {
		t.Errorf("expected only Origin within 11 km, got %+v", locs)
	}

	resp = env.do(t, "GET", "/api/locations/nearby?lat=0&lng=0&radius=12", "", nil)
	decode(t, resp, &locs)
	if len(locs) != 2 || locs[1].Distance == nil {
		t.Errorf("expected 2 locations with distance, got %+v", locs)
	}

	// Default radius is 5 km.
	resp = env.do(t, "GET", "/api/locations/nearby?lat=0&lng=0", "", nil)
	decode(t, resp, &locs)
	if len(locs) != 1 {
		t.Errorf("expected 1 location with default radius, got %d", len(locs))
	}

	resp = env.do(t, "GET", "/api/locations/nearby?lat=0&lng=0&radius=-1", "", nil)
	expectStatus(t, resp, http.StatusBadRequest)
	resp = env.do(t, "GET", "/api/locations/nearby?lng=0", "", nil)
	expectStatus(t, resp, http.StatusBadRequest)

	resp = env.do(t, "GET", "/api/locations/staff/"+staff.UserID, staff.Token, nil)
	decode(t, resp, &locs)
	if len(locs) != 3 {
		t.Errorf("expected 3 staff locations, got %d", len(locs))
	}
}

func TestMessagingFlow(t *testing.T) {
	env := setupTestServer(t)
	owner := env.signup(t, "owner@example.com", model.RoleOwner)
	staff := env.signup(t, "desk@example.com", model.RoleStaff)
	tagID, _ := env.createTag(t, owner, "Scarf")

	resp := env.do(t, "POST", "/api/messages/send", staff.Token, map[string]any{
		"toUserId": owner.UserID, "tagId": tagID,
		"subject": "Found it", "message": "At the desk", "sendEmail": true,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("send: expected 200, got %d", resp.StatusCode)
	}
	var sent map[string]any
	decode(t, resp, &sent)
	if sent["emailSent"] != true {
		t.Errorf("expected emailSent true, got %v", sent["emailSent"])
	}
	if len(env.mail.sent) != 1 || env.mail.sent[0].Subject != "Lost & Found: Found it" {
		t.Errorf("unexpected mail %+v", env.mail.sent)
	}

	resp = env.do(t, "POST", "/api/messages/send", staff.Token, map[string]any{
		"toUserId": owner.UserID, "subject": "", "message": "x",
	})
	expectStatus(t, resp, http.StatusBadRequest)

	resp = env.do(t, "POST", "/api/messages/send", staff.Token, map[string]any{
		"fromUserId": owner.UserID, "toUserId": owner.UserID, "subject": "s", "message": "x",
	})
	expectStatus(t, resp, http.StatusForbidden)

	resp = env.do(t, "GET", "/api/messages/"+owner.UserID, owner.Token, nil)
	var inbox []model.Message
	decode(t, resp, &inbox)
	if len(inbox) != 1 || inbox[0].ItemName != "Scarf" || inbox[0].Body != "At the desk" {
		t.Errorf("unexpected inbox %+v", inbox)
	}
}

func TestAdminEndpoints(t *testing.T) {
	env := setupTestServer(t)
	owner := env.signup(t, "owner@example.com", model.RoleOwner)
	staff := env.signup(t, "desk@example.com", model.RoleStaff)
	tagID, _ := env.createTag(t, owner, "Keys")
	env.createTag(t, owner, "Wallet")

	resp := env.do(t, "POST", "/api/admin/log-status-change", staff.Token, map[string]string{
		"tagId": tagID, "oldStatus": "active", "newStatus": "lost", "notes": "reported by phone",
	})
	expectStatus(t, resp, http.StatusCreated)

	resp = env.do(t, "GET", "/api/admin/all-items", staff.Token, nil)
	var items []model.AdminItem
	decode(t, resp, &items)
	if len(items) != 2 || items[0].Email != "owner@example.com" {
		t.Errorf("unexpected items %+v", items)
	}

	resp = env.do(t, "GET", "/api/admin/all-items?status=lost", staff.Token, nil)
	decode(t, resp, &items)
	if len(items) != 0 {
		t.Errorf("logging must not change status, got %d lost items", len(items))
	}

	resp = env.do(t, "GET", "/api/admin/statistics", staff.Token, nil)
	var stats model.Statistics
	decode(t, resp, &stats)
	if stats.Users != 2 || stats.Tags != 2 || stats.ByStatus["active"] != 2 {
		t.Errorf("unexpected statistics %+v", stats)
	}

	resp = env.do(t, "GET", "/api/users/"+owner.UserID, staff.Token, nil)
	var profile map[string]any
	decode(t, resp, &profile)
	if profile["email"] != "owner@example.com" {
		t.Errorf("unexpected profile %v", profile)
	}
	resp = env.do(t, "GET", "/api/users/missing", staff.Token, nil)
	expectStatus(t, resp, http.StatusNotFound)
}

func TestPhotoUpload(t *testing.T) {
	env := setupTestServer(t)
	owner := env.signup(t, "owner@example.com", model.RoleOwner)
	other := env.signup(t, "other@example.com", model.RoleOwner)
	tagID, _ := env.createTag(t, owner, "Camera")

	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for x := range 16 {
		for y := range 16 {
			img.Set(x, y, color.RGBA{0, 128, 255, 255})
		}
	}
	var pngBuf bytes.Buffer
	png.Encode(&pngBuf, img)

	upload := func(token string) *http.Response {
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		fw, _ := mw.CreateFormFile("photo", "camera.png")
		fw.Write(pngBuf.Bytes())
		mw.Close()

		req, _ := http.NewRequest("PUT", env.server.URL+"/api/photos/"+tagID, &body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("upload: %v", err)
		}
		return resp
	}

	expectStatus(t, upload(other.Token), http.StatusForbidden)

	resp := env.do(t, "GET", "/api/photos/"+tagID, "", nil)
	expectStatus(t, resp, http.StatusNotFound)

	expectStatus(t, upload(owner.Token), http.StatusOK)

	resp = env.do(t, "GET", "/api/photos/"+tagID, "", nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get photo: expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/jpeg" {
		t.Errorf("expected image/jpeg, got %q", ct)
	}
}
