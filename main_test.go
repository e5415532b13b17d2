package main

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"cardkeep/internal/config"
	"cardkeep/internal/notifier"
)

func TestMain(m *testing.M) {
	zap.ReplaceGlobals(zap.NewNop())
	os.Exit(m.Run())
}

func testConfig() *config.Config {
	return &config.Config{
		Port:            ":0",
		LogLevel:        "info",
		FrontendURL:     "http://localhost:5173",
		DatabaseDriver:  "memory",
		JWTSecret:       "test_jwt_secret",
		SessionTTL:      24 * time.Hour,
		ResetTTL:        30 * time.Minute,
		PasswordHasher:  "bcrypt",
		Mail:            config.MailConfig{Driver: "log"},
		CatalogCacheTTL: time.Minute,
		RateLimitRPS:    100,
		RateLimitBurst:  100,
	}
}

func TestNewAppHealthAndMetrics(t *testing.T) {
	cfg := testConfig()
	s, err := openStores(cfg)
	require.NoError(t, err)
	defer s.Close()

	mail, err := openNotifier(cfg)
	require.NoError(t, err)
	defer mail.Close()
	assert.IsType(t, &notifier.LogNotifier{}, mail.notifier)

	app := newApp(cfg, s, mail.notifier, prometheus.NewRegistry())

	t.Run("HealthCheck", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/health", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "healthy", body["status"])
		assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
	})

	t.Run("Metrics", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)

		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Contains(t, string(raw), "go_goroutines")
	})

	t.Run("UnauthenticatedAccess", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/auth/users/decks", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, 401, resp.StatusCode)
	})

	t.Run("UnknownRoute", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/nope", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, 404, resp.StatusCode)

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.NotEmpty(t, body["detail"])
	})
}

func TestSeededCatalogEnrichesDecks(t *testing.T) {
	cfg := testConfig()
	s, err := openStores(cfg)
	require.NoError(t, err)
	defer s.Close()
	app := newApp(cfg, s, notifier.NewLogNotifier(zap.NewNop()), prometheus.NewRegistry())

	post := func(path, body, token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("POST", path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		rec := httptest.NewRecorder()
		rec.Code = resp.StatusCode
		_, _ = io.Copy(rec.Body, resp.Body)
		return rec
	}

	require.Equal(t, 201, post("/auth/register", `{"name":"Amuro","email":"amuro@example.com","password":"white-base"}`, "").Code)

	login := post("/auth/login", `{"email":"amuro@example.com","password":"white-base"}`, "")
	require.Equal(t, 200, login.Code)
	var session struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(login.Body.Bytes(), &session))

	require.Equal(t, 201, post("/auth/decks", `{"name":"Starter","cards":[{"id":"ST01-001","count":4}]}`, session.AccessToken).Code)

	req := httptest.NewRequest("GET", "/auth/users/decks/Starter", nil)
	req.Header.Set("Authorization", "Bearer "+session.AccessToken)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	var body struct {
		Deck struct {
			Cards []struct {
				Name     string `json:"name"`
				ImageURL string `json:"image_url"`
			} `json:"cards"`
		} `json:"deck"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Deck.Cards, 1)
	assert.Equal(t, "Gundam", body.Deck.Cards[0].Name)
	assert.Equal(t, "https://example.com/cards/ST01-001.webp", body.Deck.Cards[0].ImageURL)
}
