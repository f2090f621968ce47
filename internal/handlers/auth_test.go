package handlers

import (
	"net/http"
	"strings"
	"testing"

	"github.com/flexilance/flexilance-api/internal/middleware"
	"github.com/flexilance/flexilance-api/internal/models"
)

func registerBody(email, role string) map[string]interface{} {
	return map[string]interface{}{
		"name":     "Dina",
		"email":    email,
		"password": "s3cret-pass",
		"role":     role,
	}
}

func TestRegisterCreatesUserWithProfile(t *testing.T) {
	gdb := newTestDB(t)
	app := newTestApp(t, gdb)

	status, body := doJSON(t, app, "POST", "/api/auth/register", "",
		registerBody("dina@example.com", "freelancer"))
	if status != 201 {
		t.Fatalf("expected 201, got %d: %+v", status, body)
	}

	var u models.User
	if err := gdb.First(&u, "email = ?", "dina@example.com").Error; err != nil {
		t.Fatalf("user row missing: %v", err)
	}
	if u.Role != models.RoleFreelancer {
		t.Errorf("expected freelancer role, got %s", u.Role)
	}
	if u.Password == "s3cret-pass" {
		t.Errorf("password must be stored hashed")
	}

	// The profile row is created in the same transaction.
	var profile models.Profile
	if err := gdb.First(&profile, "user_id = ?", u.ID).Error; err != nil {
		t.Fatalf("profile row missing: %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	gdb := newTestDB(t)
	app := newTestApp(t, gdb)

	status, body := doJSON(t, app, "POST", "/api/auth/register", "",
		map[string]interface{}{"email": "not-an-email", "password": "123"})
	if status != 400 {
		t.Fatalf("expected 400, got %d", status)
	}
	errs, ok := body["errors"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected field errors, got %+v", body)
	}
	for _, field := range []string{"name", "email", "password"} {
		if errs[field] == nil {
			t.Errorf("expected an error for %s, got %+v", field, errs)
		}
	}

	// Admin is never self-service.
	if status, _ := doJSON(t, app, "POST", "/api/auth/register", "",
		registerBody("admin@example.com", "admin")); status != 400 {
		t.Errorf("admin registration: expected 400, got %d", status)
	}

	// Email uniqueness.
	doJSON(t, app, "POST", "/api/auth/register", "", registerBody("dupe@example.com", "client"))
	if status, _ := doJSON(t, app, "POST", "/api/auth/register", "",
		registerBody("dupe@example.com", "client")); status != 400 {
		t.Errorf("duplicate email: expected 400, got %d", status)
	}
}

func TestLogin(t *testing.T) {
	gdb := newTestDB(t)
	app := newTestApp(t, gdb)

	doJSON(t, app, "POST", "/api/auth/register", "", registerBody("dina@example.com", "client"))

	status, _ := doJSON(t, app, "POST", "/api/auth/login", "",
		map[string]interface{}{"email": "DINA@example.com", "password": "s3cret-pass"})
	if status != 200 {
		t.Fatalf("login: expected 200, got %d", status)
	}

	if status, _ := doJSON(t, app, "POST", "/api/auth/login", "",
		map[string]interface{}{"email": "dina@example.com", "password": "wrong"}); status != 401 {
		t.Errorf("wrong password: expected 401, got %d", status)
	}
	if status, _ := doJSON(t, app, "POST", "/api/auth/login", "",
		map[string]interface{}{"email": "nobody@example.com", "password": "s3cret-pass"}); status != 401 {
		t.Errorf("unknown email: expected 401, got %d", status)
	}

	gdb.Model(&models.User{}).Where("email = ?", "dina@example.com").Update("is_active", false)
	if status, _ := doJSON(t, app, "POST", "/api/auth/login", "",
		map[string]interface{}{"email": "dina@example.com", "password": "s3cret-pass"}); status != 403 {
		t.Errorf("inactive account: expected 403, got %d", status)
	}
}

func TestLoginSetsAuthCookie(t *testing.T) {
	gdb := newTestDB(t)
	app := newTestApp(t, gdb)

	doJSON(t, app, "POST", "/api/auth/register", "", registerBody("dina@example.com", "client"))

	req := jsonRequest(t, "POST", "/api/auth/login",
		map[string]interface{}{"email": "dina@example.com", "password": "s3cret-pass"})
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	defer resp.Body.Close()

	var token string
	for _, c := range resp.Cookies() {
		if c.Name == middleware.TokenCookie {
			token = c.Value
		}
	}
	if token == "" {
		t.Fatalf("login response missing %s cookie", middleware.TokenCookie)
	}

	// The cookie authenticates follow-up requests.
	status, body := doJSON(t, app, "GET", "/api/me",
		middleware.TokenCookie+"="+token, nil)
	if status != http.StatusOK {
		t.Fatalf("me: expected 200, got %d: %+v", status, body)
	}
	me := dataMap(t, body)
	if !strings.EqualFold(me["email"].(string), "dina@example.com") {
		t.Errorf("unexpected identity: %v", me["email"])
	}
}
