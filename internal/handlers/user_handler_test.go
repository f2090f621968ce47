package handlers

import (
	"testing"

	"github.com/flexilance/flexilance-api/internal/models"
)

func TestUpdateProfilePartialFields(t *testing.T) {
	gdb := newTestDB(t)
	app := newTestApp(t, gdb)

	user := seedUser(t, gdb, "freelancer1", models.RoleFreelancer)
	cookie := cookieFor(t, user)

	status, _ := doJSON(t, app, "PATCH", "/api/profile", cookie, map[string]interface{}{
		"bio":         "Backend developer",
		"hourly_rate": 45.5,
	})
	if status != 200 {
		t.Fatalf("update: expected 200, got %d", status)
	}

	var profile models.Profile
	gdb.First(&profile, "user_id = ?", user.ID)
	if profile.Bio != "Backend developer" {
		t.Errorf("bio not updated, got %q", profile.Bio)
	}
	if profile.HourlyRate == nil || *profile.HourlyRate != 45.5 {
		t.Errorf("hourly rate not updated, got %v", profile.HourlyRate)
	}

	// Omitted fields are left alone.
	status, _ = doJSON(t, app, "PATCH", "/api/profile", cookie, map[string]interface{}{
		"location": "Berlin",
	})
	if status != 200 {
		t.Fatalf("second update: expected 200, got %d", status)
	}
	gdb.First(&profile, "user_id = ?", user.ID)
	if profile.Bio != "Backend developer" {
		t.Errorf("bio should survive a partial update, got %q", profile.Bio)
	}
	if profile.Location != "Berlin" {
		t.Errorf("location not updated, got %q", profile.Location)
	}

	if status, _ := doJSON(t, app, "PATCH", "/api/profile", cookie, map[string]interface{}{
		"hourly_rate": -1,
	}); status != 400 {
		t.Errorf("negative rate: expected 400, got %d", status)
	}
}

func TestMeRequiresAuth(t *testing.T) {
	gdb := newTestDB(t)
	app := newTestApp(t, gdb)

	if status, _ := doJSON(t, app, "GET", "/api/me", "", nil); status != 401 {
		t.Errorf("anonymous: expected 401, got %d", status)
	}

	user := seedUser(t, gdb, "client1", models.RoleClient)
	status, body := doJSON(t, app, "GET", "/api/me", cookieFor(t, user), nil)
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}
	me := dataMap(t, body)
	if me["email"] != user.Email {
		t.Errorf("unexpected identity: %v", me["email"])
	}
	if me["profile"] == nil {
		t.Errorf("me should embed the profile")
	}
}

func TestCategoriesArePublic(t *testing.T) {
	gdb := newTestDB(t)
	app := newTestApp(t, gdb)

	for _, name := range []string{"Web Development", "Design"} {
		if err := gdb.Create(&models.JobCategory{Name: name}).Error; err != nil {
			t.Fatalf("seed category: %v", err)
		}
	}

	status, body := doJSON(t, app, "GET", "/api/categories", "", nil)
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}
	list := dataList(t, body)
	if len(list) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(list))
	}
	// Sorted by name.
	if list[0].(map[string]interface{})["name"] != "Design" {
		t.Errorf("expected Design first, got %v", list[0])
	}
}
