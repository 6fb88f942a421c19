package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/you/staysvc/internal/app"
	"github.com/you/staysvc/internal/config"
)

// TestServer runs the fully wired container behind an httptest server
type TestServer struct {
	Server    *httptest.Server
	Container *app.Container
	Redis     *miniredis.Miniredis
	Client    *http.Client
}

// NewTestServer boots the service on a private in-memory sqlite database and a miniredis cache
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	cfg := &config.Config{
		Port:           "0",
		GinMode:        gin.TestMode,
		AppName:        "staysvc",
		AppVersion:     "e2e",
		DBDriver:       config.DriverSQLite,
		DSN:            fmt.Sprintf("file:%s?mode=memory&cache=shared", name),
		JWTSecret:      "e2e-secret",
		JWTIssuer:      "staysvc-e2e",
		SessionTTL:     7 * 24 * time.Hour,
		BcryptCost:     4,
		CacheBackend:   config.CacheRedis,
		RedisAddr:      mr.Addr(),
		CacheLocalTTL:  time.Second,
		CacheRemoteTTL: time.Minute,
		CacheLocalSize: 100,
		AllowedOrigins: []string{"*"},
	}

	c, err := app.NewContainer(context.Background(), cfg)
	require.NoError(t, err, "container should start")

	srv := httptest.NewServer(app.Handler(c))
	ts := &TestServer{
		Server:    srv,
		Container: c,
		Redis:     mr,
		Client:    &http.Client{Timeout: 10 * time.Second},
	}
	t.Cleanup(func() {
		srv.Close()
		c.Close()
	})
	return ts
}

// Do sends a JSON request and decodes the JSON response into a map
func (ts *TestServer) Do(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, ts.Server.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ts.Client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	out := map[string]any{}
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(raw, &out), "body: %s", raw)
	}
	return resp.StatusCode, out
}

// Register creates an account and returns its token and id
func (ts *TestServer) Register(t *testing.T, name, email, password string) (token, id string) {
	t.Helper()
	status, body := ts.Do(t, http.MethodPost, "/api/auth/register", "", map[string]any{
		"name": name, "email": email, "password": password,
	})
	require.Equal(t, http.StatusCreated, status, "register %s: %v", email, body)
	data := body["data"].(map[string]any)
	user := data["user"].(map[string]any)
	return data["token"].(string), user["id"].(string)
}

// CreateListing publishes a listing as the given host and returns its id
func (ts *TestServer) CreateListing(t *testing.T, token, title, city string, price float64) string {
	t.Helper()
	status, body := ts.Do(t, http.MethodPost, "/api/listings", token, map[string]any{
		"title":        title,
		"description":  "A place to stay in " + city,
		"propertyType": "apartment",
		"price":        price,
		"location":     map[string]any{"city": city, "country": "Somewhere"},
		"capacity":     map[string]any{"guests": 4, "bedrooms": 2, "beds": 2, "bathrooms": 1},
	})
	require.Equal(t, http.StatusCreated, status, "create listing: %v", body)
	return body["data"].(map[string]any)["id"].(string)
}

func dataOf(body map[string]any) map[string]any {
	data, _ := body["data"].(map[string]any)
	return data
}

func listOf(body map[string]any) []any {
	data, _ := body["data"].([]any)
	return data
}
