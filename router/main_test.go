package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/fyodorov-ai/tsiolkovsky/common/config"
	"github.com/fyodorov-ai/tsiolkovsky/common/logger"
	"github.com/fyodorov-ai/tsiolkovsky/controller"
	"github.com/fyodorov-ai/tsiolkovsky/model"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	logger.SetupLogger()
	os.Exit(m.Run())
}

func newTestController(t *testing.T) *controller.Controller {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, model.Migrate(db))
	return controller.New(model.NewGormStore(db, "sqlite"))
}

func serve(engine http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestEngineToolRoundTrip(t *testing.T) {
	engine := NewEngine(newTestController(t))

	w := serve(engine, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "Tsiolkovsky API", w.Body.String())

	w = serve(engine, http.MethodPost, "/tools", `{
		"name_for_human": "Weather",
		"name_for_ai": "weather",
		"description_for_human": "Forecasts for humans",
		"description_for_ai": "Returns the forecast for a city",
		"api_type": "openapi",
		"api_url": "https://weather.example/openapi.json",
		"logo_url": "https://weather.example/logo.png",
		"contact_email": "ops@weather.example",
		"legal_info_url": "https://weather.example/legal"
	}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		Tool model.Tool `json:"tool"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	path := "/tools/" + strconv.Itoa(created.Tool.Id)

	w = serve(engine, http.MethodPost, path+"/health", `{"health_status":"down","api_url":"https://new.com"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = serve(engine, http.MethodGet, path, "")
	require.Equal(t, http.StatusOK, w.Code)
	var tool model.Tool
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tool))
	require.Equal(t, "https://new.com", tool.APIURL)

	w = serve(engine, http.MethodDelete, path, "")
	require.Equal(t, http.StatusNoContent, w.Code)

	w = serve(engine, http.MethodGet, path+"/health", "")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestEngineUnknownRoute(t *testing.T) {
	engine := NewEngine(newTestController(t))

	w := serve(engine, http.MethodGet, "/nope", "")
	require.Equal(t, http.StatusNotFound, w.Code)

	var body struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "not_found", body.Error.Type)
	require.Contains(t, body.Error.Message, "route GET /nope not found")
}

func TestEngineSystemRoutes(t *testing.T) {
	original := config.EnablePrometheusMetrics
	t.Cleanup(func() { config.EnablePrometheusMetrics = original })

	config.EnablePrometheusMetrics = true
	engine := NewEngine(newTestController(t))

	w := serve(engine, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "OK", w.Body.String())

	w = serve(engine, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "go_goroutines")

	config.EnablePrometheusMetrics = false
	engine = NewEngine(newTestController(t))
	w = serve(engine, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestEngineCORSPreflight(t *testing.T) {
	engine := NewEngine(newTestController(t))

	req := httptest.NewRequest(http.MethodOptions, "/tools", nil)
	req.Header.Set("Origin", "https://console.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
