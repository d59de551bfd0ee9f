package app

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"automlcli/internal/config"
	"automlcli/internal/infrastructure"
	ws "automlcli/internal/websocket"
)

var (
	testAppOnce sync.Once
	testApp     *Application
	testAppErr  error
)

// newTestApplication builds one shared application for router tests.
// OTel registers collectors in the default Prometheus registry, so it
// can only be initialized once per process.
func newTestApplication(t *testing.T) *Application {
	t.Helper()

	testAppOnce.Do(func() {
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))

		providers, err := infrastructure.InitializeOTel(infrastructure.DefaultOTelConfig(), logger)
		if err != nil {
			testAppErr = err
			return
		}
		if err := ws.InitOTelMetrics(); err != nil {
			testAppErr = err
			return
		}

		cfg := config.Default()
		app := &Application{
			Config:        cfg,
			Logger:        logger,
			OTelProviders: providers,
		}
		if err := app.initializeServices(); err != nil {
			testAppErr = err
			return
		}
		app.setupRouter()
		app.createServer()
		testApp = app
	})

	require.NoError(t, testAppErr)
	require.NotNil(t, testApp)
	return testApp
}

func TestHealthEndpoints(t *testing.T) {
	app := newTestApplication(t)
	server := httptest.NewServer(app.Router)
	defer server.Close()

	paths := []string{
		"/api/health",
		"/api/health/live",
		"/api/health/ready",
		"/api/version",
	}

	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			resp, err := http.Get(server.URL + path)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Contains(t, resp.Header.Get("Content-Type"), "application/json")
		})
	}
}

func TestWizardTabsEndpoint(t *testing.T) {
	app := newTestApplication(t)
	server := httptest.NewServer(app.Router)
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/wizard/tabs")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Tabs []struct {
			Tab     string `json:"tab"`
			Enabled bool   `json:"enabled"`
			Active  bool   `json:"active"`
		} `json:"tabs"`
		ActiveTab string `json:"active_tab"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	require.Len(t, body.Tabs, 4)
	assert.Equal(t, "upload", body.ActiveTab)
	assert.Equal(t, "upload", body.Tabs[0].Tab)
	assert.True(t, body.Tabs[0].Enabled, "upload tab is always reachable")
	assert.True(t, body.Tabs[0].Active)
}

func TestWizardSessionEndpoint(t *testing.T) {
	app := newTestApplication(t)
	server := httptest.NewServer(app.Router)
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/wizard/session")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var snap map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	assert.Contains(t, snap, "processing_stage")
}

func TestMetricsEndpoint(t *testing.T) {
	app := newTestApplication(t)
	server := httptest.NewServer(app.Router)
	defer server.Close()

	resp, err := http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestWebSocketConnect(t *testing.T) {
	app := newTestApplication(t)
	server := httptest.NewServer(app.Router)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, message, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg map[string]interface{}
	require.NoError(t, json.Unmarshal(message, &msg))
	assert.Equal(t, "connection", msg["type"])
	data := msg["data"].(map[string]interface{})
	assert.Equal(t, "connected", data["status"])
}

func TestGetCORSConfig(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	app := &Application{Config: config.Default(), Logger: logger}

	cfg := app.getCORSConfig()

	assert.Contains(t, cfg.AllowedOrigins, "http://localhost:8080")
	assert.True(t, cfg.AllowCredentials)
	assert.Contains(t, cfg.AllowedHeaders, "X-Request-ID")
	assert.Contains(t, cfg.AllowedMethods, "POST")
}

func TestIsDevelopmentMode(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cfg := config.Default()
	cfg.Logging.Development = false
	app := &Application{Config: cfg, Logger: logger}

	assert.False(t, app.isDevelopmentMode())

	t.Setenv("GO_ENV", "development")
	assert.True(t, app.isDevelopmentMode())
}

func TestCreateServer(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	app := &Application{Config: config.Default(), Logger: logger}
	app.createServer()

	require.NotNil(t, app.Server)
	assert.Equal(t, ":8080", app.Server.Addr)
	assert.Equal(t, 15*time.Second, app.Server.ReadTimeout)
}

func TestUnknownRouteReturnsProblemJSON(t *testing.T) {
	app := newTestApplication(t)
	server := httptest.NewServer(app.Router)
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/nope")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var problem map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&problem))
	assert.Equal(t, "/errors/not-found", problem["type"])
}
