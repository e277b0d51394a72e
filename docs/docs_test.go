package docs_test

import (
	"encoding/json"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"

	"quicktask/docs"
	"quicktask/internal/app"
	"quicktask/internal/handlers"
	"quicktask/internal/repositories/memory"
	"quicktask/internal/routes"
	"quicktask/internal/services"
)

type swaggerDoc struct {
	Paths map[string]map[string]struct {
		Summary string `json:"summary"`
	} `json:"paths"`
}

func readDoc(t *testing.T) swaggerDoc {
	t.Helper()
	raw, err := swag.ReadDoc(docs.SwaggerInfo.InstanceName())
	require.NoError(t, err)
	var doc swaggerDoc
	require.NoError(t, json.Unmarshal([]byte(raw), &doc), raw)
	return doc
}

var pathParam = regexp.MustCompile(`:(\w+)`)

func TestDocsCoverEveryAPIRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	users := memory.NewUserRepository()
	tasks := memory.NewTaskRepository()
	auth := services.NewAuthService("s", time.Hour)
	router := app.NewRouter(auth, users, routes.Handlers{
		Auth:      handlers.NewAuthHandler(services.NewUserService(users, nil, auth), auth),
		Tasks:     handlers.NewTaskHandler(services.NewTaskService(tasks), nil),
		Export:    handlers.NewExportHandler(services.NewExportService(tasks, nil)),
		Analytics: handlers.NewAnalyticsHandler(services.NewAnalyticsService(tasks)),
	})

	doc := readDoc(t)
	seen := 0
	for _, r := range router.Routes() {
		if !strings.HasPrefix(r.Path, "/api/") {
			continue
		}
		seen++
		path := pathParam.ReplaceAllString(r.Path, "{$1}")
		op, ok := doc.Paths[path][strings.ToLower(r.Method)]
		if assert.True(t, ok, "%s %s is not documented", r.Method, path) {
			assert.NotEmpty(t, op.Summary, "%s %s", r.Method, path)
		}
	}
	assert.Equal(t, 15, seen)
}

func TestDocsSummariesFollowAnnotations(t *testing.T) {
	doc := readDoc(t)
	assert.Equal(t, "Уведомления", doc.Paths["/api/tasks/notifications"]["get"].Summary)
	assert.Equal(t, "Регистрация", doc.Paths["/api/auth/register"]["post"].Summary)
	assert.Equal(t, "Сменить статус", doc.Paths["/api/tasks/{id}/status"]["patch"].Summary)
}
