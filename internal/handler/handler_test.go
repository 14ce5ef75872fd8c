package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-plagiarism-api/internal/config"
	"github.com/noah-isme/gema-plagiarism-api/internal/database"
	"github.com/noah-isme/gema-plagiarism-api/internal/handler"
	"github.com/noah-isme/gema-plagiarism-api/internal/models"
	"github.com/noah-isme/gema-plagiarism-api/internal/repository"
	"github.com/noah-isme/gema-plagiarism-api/internal/router"
	"github.com/noah-isme/gema-plagiarism-api/internal/service"
)

type testEnv struct {
	app *fiber.App
	db  *gorm.DB
}

// setupApp wires the real services over an isolated in-memory database. The
// caller's role is taken from the X-Test-Role header.
func setupApp(t *testing.T) testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := zerolog.New(io.Discard)

	submissionRepo := repository.NewSubmissionRepository(db)
	activity := service.NewActivityService(repository.NewActivityLogRepository(db), logger)

	submissionService := service.NewSubmissionService(
		submissionRepo,
		repository.NewAssignmentRepository(db),
		repository.NewStudentRepository(db),
		activity,
		validate,
		logger,
	)
	plagiarismService := service.NewPlagiarismService(
		submissionRepo,
		repository.NewPlagiarismReportRepository(db),
		activity,
		nil,
		nil,
		service.PlagiarismConfig{Threshold: 70, MinSentenceLength: 20, Workers: 2},
		logger,
	)

	app := fiber.New()
	router.Register(app, config.Config{AppName: "Test", JWTSecret: "secret"}, router.Dependencies{
		SubmissionHandler: handler.NewSubmissionHandler(submissionService, logger),
		PlagiarismHandler: handler.NewPlagiarismHandler(plagiarismService, validate, logger),
		JWTMiddleware: func(c *fiber.Ctx) error {
			c.Locals("user_id", uint(1))
			role := c.Get("X-Test-Role")
			if role == "" {
				role = "teacher"
			}
			c.Locals("user_role", role)
			return c.Next()
		},
	})

	return testEnv{app: app, db: db}
}

func (e testEnv) seedAssignment(t *testing.T, due time.Time) models.Assignment {
	t.Helper()
	assignment := models.Assignment{Title: "River essay", Description: "300 words", DueDate: due}
	require.NoError(t, e.db.Create(&assignment).Error)
	return assignment
}

func (e testEnv) seedStudent(t *testing.T, name string) models.Student {
	t.Helper()
	student := models.Student{Name: name, Email: strings.ToLower(name) + "@example.com"}
	require.NoError(t, e.db.Create(&student).Error)
	return student
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}, headers map[string]string) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, json.Unmarshal(data, target))
}
