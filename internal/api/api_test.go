package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/lukazajc/najdeno/internal/db"
	"github.com/lukazajc/najdeno/internal/model"
	"github.com/lukazajc/najdeno/internal/store"
)

const (
	testJWTSecret   = "test-secret"
	testEmailDomain = "uni.si"
)

func setupTestServer(t *testing.T) (*httptest.Server, *sql.DB) {
	t.Helper()
	database := db.NewTestDB(t)
	router := NewRouter(database, testJWTSecret, testEmailDomain)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server, database
}

// adminToken bootstraps a verified admin account directly in the store and
// logs it in over HTTP.
func adminToken(t *testing.T, server *httptest.Server, database *sql.DB) string {
	t.Helper()
	ctx := context.Background()
	hash, _ := bcrypt.GenerateFromPassword([]byte("admin-password"), bcrypt.DefaultCost)
	admin, err := store.CreateUser(ctx, database, "admin@uni.si", string(hash), model.RoleAdmin)
	if err != nil {
		t.Fatalf("creating admin: %v", err)
	}
	if err := store.MarkUserVerified(ctx, database, admin.ID); err != nil {
		t.Fatalf("verifying admin: %v", err)
	}
	return login(t, server, "admin@uni.si", "admin-password")
}

func login(t *testing.T, server *httptest.Server, email, password string) string {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"email": email, "password": password})
	resp, err := http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login failed: %d", resp.StatusCode)
	}

	var loginResp map[string]string
	json.NewDecoder(resp.Body).Decode(&loginResp)
	if loginResp["token"] == "" {
		t.Fatal("empty token from login")
	}
	return loginResp["token"]
}

// signupVerified runs the full signup + verify flow over HTTP and returns
// a session token.
func signupVerified(t *testing.T, server *httptest.Server, email string) string {
	t.Helper()

	body, _ := json.Marshal(map[string]string{"email": email, "password": "password123"})
	resp, err := http.Post(server.URL+"/api/auth/signup", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("signup request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("signup failed: %d", resp.StatusCode)
	}

	var signupResp struct {
		VerificationToken string `json:"verification_token"`
	}
	json.NewDecoder(resp.Body).Decode(&signupResp)
	if signupResp.VerificationToken == "" {
		t.Fatal("empty verification token from signup")
	}

	body, _ = json.Marshal(map[string]string{"token": signupResp.VerificationToken})
	resp, err = http.Post(server.URL+"/api/auth/verify", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("verify request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("verify failed: %d", resp.StatusCode)
	}

	return login(t, server, email, "password123")
}

func authRequest(method, url, token string, body any) (*http.Request, error) {
	var bodyReader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(data)
	} else {
		bodyReader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func createItem(t *testing.T, server *httptest.Server, token string, fields map[string]string) model.Item {
	t.Helper()
	if _, ok := fields["description"]; !ok {
		fields["description"] = "test description"
	}
	for _, f := range []string{"category", "building", "term"} {
		if _, ok := fields[f]; !ok {
			fields[f] = "test-" + f
		}
	}

	req, _ := authRequest("POST", server.URL+"/api/items", token, fields)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("create item: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create item: expected 201, got %d", resp.StatusCode)
	}

	var item model.Item
	json.NewDecoder(resp.Body).Decode(&item)
	return item
}

func TestSignupRejectsOffCampusEmail(t *testing.T) {
	server, _ := setupTestServer(t)

	body, _ := json.Marshal(map[string]string{"email": "ana@gmail.com", "password": "password123"})
	resp, err := http.Post(server.URL+"/api/auth/signup", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("signup request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for off-campus email, got %d", resp.StatusCode)
	}
}

func TestUnverifiedUserCannotCreateItems(t *testing.T) {
	server, _ := setupTestServer(t)

	// Sign up but skip verification.
	body, _ := json.Marshal(map[string]string{"email": "new@uni.si", "password": "password123"})
	resp, _ := http.Post(server.URL+"/api/auth/signup", "application/json", bytes.NewReader(body))
	resp.Body.Close()

	token := login(t, server, "new@uni.si", "password123")
	req, _ := authRequest("POST", server.URL+"/api/items", token, map[string]string{
		"title": "Umbrella", "type": model.TypeLost,
		"description": "d", "category": "c", "building": "b", "term": "t",
	})
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("create item request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403 for unverified user, got %d", resp.StatusCode)
	}
}

func TestVerificationTokenIsSingleUse(t *testing.T) {
	server, _ := setupTestServer(t)

	body, _ := json.Marshal(map[string]string{"email": "once@uni.si", "password": "password123"})
	resp, _ := http.Post(server.URL+"/api/auth/signup", "application/json", bytes.NewReader(body))
	var signupResp struct {
		VerificationToken string `json:"verification_token"`
	}
	json.NewDecoder(resp.Body).Decode(&signupResp)
	resp.Body.Close()

	verify := func() int {
		body, _ := json.Marshal(map[string]string{"token": signupResp.VerificationToken})
		resp, _ := http.Post(server.URL+"/api/auth/verify", "application/json", bytes.NewReader(body))
		resp.Body.Close()
		return resp.StatusCode
	}

	if code := verify(); code != http.StatusOK {
		t.Fatalf("first verify: expected 200, got %d", code)
	}
	if code := verify(); code != http.StatusBadRequest {
		t.Errorf("second verify: expected 400, got %d", code)
	}
}

func TestItemLifecycleFlow(t *testing.T) {
	server, database := setupTestServer(t)

	ownerToken := signupVerified(t, server, "owner@uni.si")
	strangerToken := signupVerified(t, server, "stranger@uni.si")

	item := createItem(t, server, ownerToken, map[string]string{
		"title": "Blue Hydroflask",
		"type":  model.TypeLost,
	})
	if item.Status != model.StatusOpen {
		t.Errorf("expected status 'open', got %q", item.Status)
	}

	// The feed is public.
	resp, _ := http.Get(server.URL + "/api/items")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("public feed: expected 200, got %d", resp.StatusCode)
	}
	var feed []model.Item
	json.NewDecoder(resp.Body).Decode(&feed)
	resp.Body.Close()
	if len(feed) != 1 {
		t.Errorf("expected 1 item in feed, got %d", len(feed))
	}

	// A stranger may not update it; the item is untouched.
	req, _ := authRequest("PUT", fmt.Sprintf("%s/api/items/%d", server.URL, item.ID), strangerToken,
		map[string]string{"status": model.StatusRecovered})
	resp, _ = http.DefaultClient.Do(req)
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("stranger update: expected 403, got %d", resp.StatusCode)
	}

	resp, _ = http.Get(fmt.Sprintf("%s/api/items/%d", server.URL, item.ID))
	var got model.Item
	json.NewDecoder(resp.Body).Decode(&got)
	resp.Body.Close()
	if got.Status != model.StatusOpen {
		t.Errorf("status changed by forbidden caller: %q", got.Status)
	}

	// An admin may delete it.
	admin := adminToken(t, server, database)
	req, _ = authRequest("DELETE", fmt.Sprintf("%s/api/items/%d", server.URL, item.ID), admin, nil)
	resp, _ = http.DefaultClient.Do(req)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("admin delete: expected 200, got %d", resp.StatusCode)
	}

	resp, _ = http.Get(fmt.Sprintf("%s/api/items/%d", server.URL, item.ID))
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", resp.StatusCode)
	}
}

func TestMyItems(t *testing.T) {
	server, _ := setupTestServer(t)

	aToken := signupVerified(t, server, "a@uni.si")
	bToken := signupVerified(t, server, "b@uni.si")

	createItem(t, server, aToken, map[string]string{"title": "Mine", "type": model.TypeLost})
	createItem(t, server, bToken, map[string]string{"title": "Theirs", "type": model.TypeLost})

	req, _ := authRequest("GET", server.URL+"/api/my-items", aToken, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("my-items request: %v", err)
	}
	defer resp.Body.Close()
	var mine []model.Item
	json.NewDecoder(resp.Body).Decode(&mine)
	if len(mine) != 1 || mine[0].Title != "Mine" {
		t.Errorf("expected only own item, got %+v", mine)
	}
}

func TestAdminEndpoints(t *testing.T) {
	server, database := setupTestServer(t)

	userToken := signupVerified(t, server, "plain@uni.si")
	createItem(t, server, userToken, map[string]string{"title": "One", "type": model.TypeFound})

	// Regular users are locked out of moderation.
	req, _ := authRequest("GET", server.URL+"/api/admin/users", userToken, nil)
	resp, _ := http.DefaultClient.Do(req)
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("non-admin list users: expected 403, got %d", resp.StatusCode)
	}

	admin := adminToken(t, server, database)

	req, _ = authRequest("GET", server.URL+"/api/admin/users", admin, nil)
	resp, _ = http.DefaultClient.Do(req)
	var users []model.User
	json.NewDecoder(resp.Body).Decode(&users)
	resp.Body.Close()
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
	for _, u := range users {
		if u.Email == "plain@uni.si" && u.ItemCount != 1 {
			t.Errorf("expected item_count 1 for plain user, got %d", u.ItemCount)
		}
	}

	// Promote, then disable.
	var target model.User
	for _, u := range users {
		if u.Email == "plain@uni.si" {
			target = u
		}
	}
	req, _ = authRequest("POST", fmt.Sprintf("%s/api/admin/users/%d/promote", server.URL, target.ID), admin, nil)
	resp, _ = http.DefaultClient.Do(req)
	var promoted model.User
	json.NewDecoder(resp.Body).Decode(&promoted)
	resp.Body.Close()
	if promoted.Role != model.RoleAdmin {
		t.Errorf("expected role 'admin' after promote, got %q", promoted.Role)
	}

	req, _ = authRequest("POST", fmt.Sprintf("%s/api/admin/users/%d/disable", server.URL, target.ID), admin, nil)
	resp, _ = http.DefaultClient.Do(req)
	var disabled model.User
	json.NewDecoder(resp.Body).Decode(&disabled)
	resp.Body.Close()
	if disabled.Role != model.RoleUser {
		t.Errorf("expected role 'user' after disable, got %q", disabled.Role)
	}

	// Unknown target.
	req, _ = authRequest("POST", server.URL+"/api/admin/users/9999/promote", admin, nil)
	resp, _ = http.DefaultClient.Do(req)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("promote unknown user: expected 404, got %d", resp.StatusCode)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	server, _ := setupTestServer(t)

	token := signupVerified(t, server, "bye@uni.si")

	req, _ := authRequest("POST", server.URL+"/api/auth/logout", token, nil)
	resp, _ := http.DefaultClient.Do(req)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("logout: expected 200, got %d", resp.StatusCode)
	}

	// The same token no longer works.
	req, _ = authRequest("GET", server.URL+"/api/my-items", token, nil)
	resp, _ = http.DefaultClient.Do(req)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("revoked session: expected 401, got %d", resp.StatusCode)
	}
}

func TestNotificationsFlow(t *testing.T) {
	server, _ := setupTestServer(t)

	token := signupVerified(t, server, "bell@uni.si")
	createItem(t, server, token, map[string]string{"title": "Found Keys", "type": model.TypeFound})

	req, _ := authRequest("GET", server.URL+"/api/notifications", token, nil)
	resp, _ := http.DefaultClient.Do(req)
	var pending []model.Item
	json.NewDecoder(resp.Body).Decode(&pending)
	resp.Body.Close()
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending notification, got %d", len(pending))
	}

	req, _ = authRequest("POST", server.URL+"/api/notifications/ack", token, nil)
	resp, _ = http.DefaultClient.Do(req)
	var ack map[string]int
	json.NewDecoder(resp.Body).Decode(&ack)
	resp.Body.Close()
	if ack["acknowledged"] != 1 {
		t.Errorf("expected 1 acknowledged, got %d", ack["acknowledged"])
	}

	req, _ = authRequest("GET", server.URL+"/api/notifications", token, nil)
	resp, _ = http.DefaultClient.Do(req)
	pending = nil
	json.NewDecoder(resp.Body).Decode(&pending)
	resp.Body.Close()
	if len(pending) != 0 {
		t.Errorf("expected 0 pending after ack, got %d", len(pending))
	}
}
