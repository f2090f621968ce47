package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/flexilance/flexilance-api/internal/middleware"
	"github.com/flexilance/flexilance-api/internal/models"
	"github.com/flexilance/flexilance-api/internal/services/earnings"
	"github.com/flexilance/flexilance-api/internal/utils"
)

const testJWTSecret = "test-secret"

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	if err := gdb.AutoMigrate(
		&models.User{},
		&models.Profile{},
		&models.JobCategory{},
		&models.Job{},
		&models.Proposal{},
		&models.Contract{},
		&models.Milestone{},
		&models.Payment{},
		&models.Earning{},
		&models.Conversation{},
		&models.Message{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	return gdb
}

// newTestApp builds the API exactly the way cmd/api does, minus redis and
// remote storage.
func newTestApp(t *testing.T, gdb *gorm.DB) *fiber.App {
	t.Helper()

	earningsSvc := earnings.NewEarningsService(gdb)

	authH := &AuthHandler{DB: gdb, JWTSecret: testJWTSecret, Expires: 60}
	userH := NewUserHandler(gdb)
	categoryH := NewCategoryHandler(gdb)
	jobH := NewJobHandler(gdb)
	proposalH := NewProposalHandler(gdb)
	contractH := NewContractHandler(gdb)
	paymentH := NewPaymentHandler(gdb, earningsSvc)
	chatH := NewChatHandler(gdb, nil)

	app := fiber.New()
	api := app.Group("/api")

	api.Post("/auth/register", authH.Register)
	api.Post("/auth/login", authH.Login)
	api.Get("/categories", categoryH.GetCategories)
	api.Get("/jobs", jobH.ListPublic)
	api.Get("/jobs/:id", jobH.GetDetail)

	protected := api.Group("/",
		middleware.JWTFromCookie(testJWTSecret),
		middleware.AttachJWTLocals(),
	)

	protected.Get("/me", userH.Me)
	protected.Get("/profile", userH.GetProfile)
	protected.Patch("/profile", userH.UpdateProfile)

	protected.Post("/jobs", middleware.RequireRoles(models.RoleClient), jobH.Create)
	protected.Put("/jobs/:id", middleware.RequireRoles(models.RoleClient), jobH.Update)
	protected.Delete("/jobs/:id", middleware.RequireRoles(models.RoleClient), jobH.Delete)
	protected.Get("/jobs/my/list", jobH.ListMine)

	protected.Post("/jobs/:id/proposals",
		middleware.RequireRoles(models.RoleFreelancer), proposalH.Submit)
	protected.Get("/jobs/:id/proposals", proposalH.ListForJob)
	protected.Get("/proposals/my", proposalH.ListMine)
	protected.Post("/proposals/:id/accept",
		middleware.RequireRoles(models.RoleClient), proposalH.Accept)
	protected.Post("/proposals/:id/decline",
		middleware.RequireRoles(models.RoleClient), proposalH.Decline)
	protected.Post("/proposals/:id/withdraw",
		middleware.RequireRoles(models.RoleFreelancer), proposalH.Withdraw)

	protected.Get("/contracts/my", contractH.ListMine)
	protected.Get("/contracts/:id", contractH.GetDetail)
	protected.Patch("/contracts/:id/status", contractH.UpdateStatus)
	protected.Post("/contracts/:id/milestones",
		middleware.RequireRoles(models.RoleClient), contractH.CreateMilestone)
	protected.Get("/contracts/:id/milestones", contractH.ListMilestones)
	protected.Post("/milestones/:id/submit",
		middleware.RequireRoles(models.RoleFreelancer), contractH.SubmitMilestone)
	protected.Post("/milestones/:id/approve",
		middleware.RequireRoles(models.RoleClient), contractH.ApproveMilestone)
	protected.Post("/milestones/:id/request-revision",
		middleware.RequireRoles(models.RoleClient), contractH.RequestRevision)

	protected.Post("/payments", paymentH.Create)
	protected.Patch("/payments/:id/status", paymentH.UpdateStatus)
	protected.Get("/payments/history", paymentH.History)
	protected.Get("/earnings",
		middleware.RequireRoles(models.RoleFreelancer), paymentH.ListEarnings)
	protected.Get("/earnings/summary",
		middleware.RequireRoles(models.RoleFreelancer), paymentH.Summary)
	protected.Post("/earnings/withdraw",
		middleware.RequireRoles(models.RoleFreelancer), paymentH.Withdraw)

	protected.Post("/conversations/start", chatH.StartConversation)
	protected.Get("/conversations", chatH.GetConversations)
	protected.Get("/conversations/:id", chatH.GetConversation)
	protected.Get("/conversations/:id/messages", chatH.GetMessages)
	protected.Post("/conversations/:id/messages", chatH.SendMessage)

	return app
}

func seedUser(t *testing.T, gdb *gorm.DB, name string, role models.Role) *models.User {
	t.Helper()

	u := models.User{
		Name:     name,
		Email:    name + "@example.com",
		Password: "x",
		Role:     role,
		IsActive: true,
	}
	if err := gdb.Create(&u).Error; err != nil {
		t.Fatalf("seed user %s: %v", name, err)
	}
	if err := gdb.Create(&models.Profile{UserID: u.ID}).Error; err != nil {
		t.Fatalf("seed profile %s: %v", name, err)
	}
	return &u
}

func cookieFor(t *testing.T, u *models.User) string {
	t.Helper()

	token, err := utils.SignJWT(testJWTSecret, u.ID.String(), u.Role, 60)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return middleware.TokenCookie + "=" + token
}

func jsonRequest(t *testing.T, method, path string, body interface{}) *http.Request {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

// doJSON fires a request and decodes the JSON body. cookie may be empty for
// anonymous calls.
func doJSON(t *testing.T, app *fiber.App, method, path, cookie string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	req := jsonRequest(t, method, path, body)
	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}

	// Middleware rejections are plain text; keep them reachable as "message".
	out := map[string]interface{}{}
	if len(raw) > 0 && resp.StatusCode != http.StatusNoContent {
		if err := json.Unmarshal(raw, &out); err != nil {
			out["message"] = string(raw)
		}
	}

	return resp.StatusCode, out
}

func seedJob(t *testing.T, gdb *gorm.DB, client *models.User) *models.Job {
	t.Helper()

	job := models.Job{
		Title:       "Build a landing page",
		Description: "Responsive landing page with a contact form",
		ClientID:    client.ID,
		BudgetType:  models.BudgetFixed,
		BudgetMin:   500,
		Status:      models.JobStatusOpen,
	}
	if err := gdb.Create(&job).Error; err != nil {
		t.Fatalf("seed job: %v", err)
	}
	return &job
}

func seedContract(t *testing.T, gdb *gorm.DB, job *models.Job, client, freelancer *models.User, amount float64) *models.Contract {
	t.Helper()

	contract := models.Contract{
		JobID:        job.ID,
		ClientID:     client.ID,
		FreelancerID: freelancer.ID,
		Amount:       amount,
		Status:       models.ContractStatusActive,
	}
	if err := gdb.Create(&contract).Error; err != nil {
		t.Fatalf("seed contract: %v", err)
	}
	return &contract
}

func dataMap(t *testing.T, body map[string]interface{}) map[string]interface{} {
	t.Helper()
	m, ok := body["data"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected data object, got %+v", body)
	}
	return m
}

func dataList(t *testing.T, body map[string]interface{}) []interface{} {
	t.Helper()
	if body["data"] == nil {
		return nil
	}
	l, ok := body["data"].([]interface{})
	if !ok {
		t.Fatalf("expected data list, got %+v", body)
	}
	return l
}
