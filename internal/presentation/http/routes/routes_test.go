package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/devis-eau-api/internal/application/service"
	"github.com/sangkips/devis-eau-api/internal/config"
	"github.com/sangkips/devis-eau-api/internal/domain/entity"
	"github.com/sangkips/devis-eau-api/internal/domain/pricing"
	"github.com/sangkips/devis-eau-api/internal/infrastructure/database"
	"github.com/sangkips/devis-eau-api/internal/infrastructure/repository"
	"github.com/sangkips/devis-eau-api/internal/observability/metrics"
	"github.com/sangkips/devis-eau-api/internal/presentation/http/handler"
	"github.com/sangkips/devis-eau-api/pkg/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router *gin.Engine
	db     *gorm.DB
	jwt    *utils.JWTManager
}

type envelope struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	Data    json.RawMessage        `json:"data"`
	Errors  []map[string]string    `json:"errors"`
	Details map[string]interface{} `json:"details"`
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.Open(&config.DatabaseConfig{
		Driver:       "sqlite",
		Path:         "file:" + name + "?mode=memory&cache=shared",
		MaxOpenConns: 1,
	}, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	log := zap.NewNop()
	recorder := metrics.NewRecorder()
	tariffRepo := repository.NewTariffRepository(db)
	quoteRepo := repository.NewQuoteRepository(db)
	clientRepo := repository.NewClientRepository(db)
	tx := repository.NewTransactor(db)
	resolver := pricing.NewResolver(tariffRepo, pricing.WithLogger(log), pricing.WithFallbackHook(recorder.RecordTransportFallback))
	jwtManager := utils.NewJWTManager("test-secret", time.Hour)

	cfg := &config.Config{App: config.AppConfig{Name: "devis-eau-api"}}
	deps := &Deps{
		JWTManager:  jwtManager,
		Cfg:         cfg,
		Logger:      log,
		RateLimiter: NewRateLimiter(config.RateLimitConfig{Requests: 1000, Duration: 1}),
	}
	t.Cleanup(deps.RateLimiter.Stop)

	h := &Handlers{
		Health: handler.NewHealthHandler(cfg.App.Name, func(ctx context.Context) error { return database.Ping(ctx, db) }),
		Auth:   handler.NewAuthHandler(service.NewAuthService(repository.NewUserRepository(db), jwtManager)),
		Client: handler.NewClientHandler(service.NewClientService(clientRepo, quoteRepo)),
		Tariff: handler.NewTariffHandler(service.NewTariffService(tariffRepo, tx, resolver, recorder, log)),
		Quote: handler.NewQuoteHandler(service.NewQuoteService(quoteRepo, repository.NewQuoteLineRepository(db),
			repository.NewSaleRepository(db), clientRepo, tx, resolver, recorder, log)),
	}

	return &testServer{router: Setup(h, deps), db: db, jwt: jwtManager}
}

func (s *testServer) token(t *testing.T, role string) string {
	t.Helper()
	token, err := s.jwt.GenerateAccessToken(uuid.New(), role+"@eau.tn", role)
	require.NoError(t, err)
	return token
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &env)
	}
	return w, env
}

func decodeData(t *testing.T, env envelope) map[string]interface{} {
	t.Helper()
	var data map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	return data
}

func assertDecimalField(t *testing.T, expected string, value interface{}) {
	t.Helper()
	actual, err := decimal.NewFromString(fmt.Sprint(value))
	require.NoError(t, err)
	assert.Truef(t, decimal.RequireFromString(expected).Equal(actual), "expected %s, got %s", expected, actual)
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	w, _ := srv.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestLoginAndProfile(t *testing.T) {
	srv := newTestServer(t)
	require.NoError(t, database.SeedDefaultData(context.Background(), srv.db,
		config.AdminConfig{Email: "admin@eau.tn", Password: "secret123", Name: "Admin"}, nil))

	w, env := srv.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "admin@eau.tn", "password": "nope123"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, env.Success)

	w, env = srv.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "admin@eau.tn", "password": "secret123"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	token, _ := decodeData(t, env)["access_token"].(string)
	require.NotEmpty(t, token)

	w, env = srv.do(t, http.MethodGet, "/api/v1/profile", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "admin@eau.tn", decodeData(t, env)["email"])

	w, _ = srv.do(t, http.MethodGet, "/api/v1/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTariffRoutes_RoleAndDuplicate(t *testing.T) {
	srv := newTestServer(t)
	admin := srv.token(t, entity.RoleAdmin)
	agent := srv.token(t, entity.RoleAgent)
	body := map[string]interface{}{"service_type": "CITERNAGE", "unit_price_ht": "100", "tax_rate": 19, "valid_from": "2020-01-01"}

	w, _ := srv.do(t, http.MethodPost, "/api/v1/tariffs", agent, body)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env := srv.do(t, http.MethodPost, "/api/v1/tariffs", admin, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decodeData(t, env)
	assertDecimalField(t, "0.19", created["tax_rate"])

	w, env = srv.do(t, http.MethodPost, "/api/v1/tariffs", admin, body)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, created["id"], env.Details["existing_tariff_id"])
	assert.Equal(t, "CITERNAGE", env.Details["service_type"])

	w, env = srv.do(t, http.MethodGet, "/api/v1/tariffs/resolve?dossier_type=citernage", agent, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assertDecimalField(t, "100", decodeData(t, env)["unit_price_ht"])

	w, env = srv.do(t, http.MethodGet, "/api/v1/tariffs/resolve?dossier_type=PROCES_VOL", agent, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, env.Message, "VOL")

	w, env = srv.do(t, http.MethodPost, "/api/v1/tariffs", admin,
		map[string]interface{}{"service_type": "VOL", "unit_price_ht": "-1", "tax_rate": "0.19"})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.NotEmpty(t, env.Errors)
	assert.Equal(t, "unit_price_ht", env.Errors[0]["field"])
}

func TestQuoteRoutes(t *testing.T) {
	srv := newTestServer(t)
	admin := srv.token(t, entity.RoleAdmin)
	agent := srv.token(t, entity.RoleAgent)

	w, _ := srv.do(t, http.MethodPost, "/api/v1/tariffs", admin,
		map[string]interface{}{"service_type": "CITERNAGE", "unit_price_ht": "100", "tax_rate": "0.19", "valid_from": "2020-01-01"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, env := srv.do(t, http.MethodPost, "/api/v1/clients", agent, map[string]interface{}{"name": "Camping El Mansourah"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	clientID := decodeData(t, env)["id"]

	lines := []map[string]interface{}{{"tank_count": 2, "volume_per_tank": "50"}}

	w, env = srv.do(t, http.MethodPost, "/api/v1/quotes/preview", agent,
		map[string]interface{}{"dossier_type": "CITERNAGE", "lines": lines})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assertDecimalField(t, "11900", decodeData(t, env)["total_ttc"])

	w, env = srv.do(t, http.MethodPost, "/api/v1/quotes", agent,
		map[string]interface{}{"client_id": clientID, "dossier_type": "CITERNAGE", "lines": []map[string]interface{}{{"tank_count": 0, "volume_per_tank": "50"}}})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "lines[0].tank_count", env.Errors[0]["field"])

	w, env = srv.do(t, http.MethodPost, "/api/v1/quotes", agent,
		map[string]interface{}{"client_id": clientID, "dossier_type": "CITERNAGE", "lines": lines})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	quote := decodeData(t, env)
	assertDecimalField(t, "11900", quote["total_ttc"])
	assert.Equal(t, "EN ATTENTE", quote["status"])
	assert.True(t, strings.HasPrefix(quote["reference"].(string), "DV-"))

	path := fmt.Sprintf("/api/v1/quotes/%v", quote["id"])
	w, env = srv.do(t, http.MethodPut, path+"/status", agent, map[string]string{"status": "ACCEPTE"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "ACCEPTE", decodeData(t, env)["status"])

	w, env = srv.do(t, http.MethodGet, "/api/v1/quotes?status=ACCEPTE", agent, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeData(t, env)["items"], 1)

	w, env = srv.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/clients/%v", clientID), agent, nil)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.EqualValues(t, 1, env.Details["quote_count"])

	w, _ = srv.do(t, http.MethodDelete, path, agent, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w, _ = srv.do(t, http.MethodGet, path, agent, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = srv.do(t, http.MethodGet, "/api/v1/quotes/abc", agent, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTransportRoute(t *testing.T) {
	srv := newTestServer(t)
	admin := srv.token(t, entity.RoleAdmin)

	for _, ref := range []int{10, 20} {
		w, _ := srv.do(t, http.MethodPost, "/api/v1/tariffs", admin, map[string]interface{}{
			"service_type": "TRANSPORT", "unit_price_ht": fmt.Sprint(ref * 40), "tax_rate": "0.19", "reference_volume": ref, "valid_from": "2020-01-01",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w, env := srv.do(t, http.MethodGet, "/api/v1/tariffs/transport?volume=15&default_price=300", admin, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := decodeData(t, env)
	assertDecimalField(t, "800", data["unit_price_ht"])
	assert.Equal(t, "bracket", data["source"])

	w, _ = srv.do(t, http.MethodGet, "/api/v1/tariffs/transport?volume=abc", admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
