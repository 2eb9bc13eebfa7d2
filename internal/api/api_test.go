package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/macrolog/backend/internal/api"
	"github.com/macrolog/backend/internal/router"
	"github.com/macrolog/backend/internal/service"
	"github.com/macrolog/backend/internal/testhelpers"
)

// stubCompleter returns canned model output.
type stubCompleter struct {
	content string
}

func (s *stubCompleter) Complete(ctx context.Context, messages []service.Message, temperature float64, jsonMode bool) (string, error) {
	return s.content, nil
}

// blockingCompleter simulates a provider that never answers in time.
type blockingCompleter struct{}

func (b *blockingCompleter) Complete(ctx context.Context, messages []service.Message, temperature float64, jsonMode bool) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

type env struct {
	engine *gin.Engine
	db     *gorm.DB
	redis  *redis.Client
	mr     *miniredis.Miniredis
	auth   *service.AuthService
	trial  *service.TrialService
}

// newEnv wires the full application against in-memory stores and stubbed
// external providers.
func newEnv(t *testing.T, llm, perplexity service.Completer) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testhelpers.NewTestDB(t)
	redisClient, mr := testhelpers.NewTestRedis(t)

	stripe := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/payment_intents":
			w.Write([]byte(`{"id": "pi_ok", "client_secret": "pi_ok_secret", "status": "requires_payment_method"}`))
		case r.Method == http.MethodGet && r.URL.Path == "/payment_intents/pi_ok":
			w.Write([]byte(`{"id": "pi_ok", "status": "succeeded"}`))
		case r.Method == http.MethodGet && r.URL.Path == "/payment_intents/pi_pending":
			w.Write([]byte(`{"id": "pi_pending", "status": "requires_payment_method"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(stripe.Close)
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_key")
	t.Setenv("STRIPE_API_URL", stripe.URL)

	authSvc := service.NewAuthService(db, "test-secret", "admin-code", 5, nil)
	mealSvc := service.NewMealService(db)
	goalSvc := service.NewGoalService(db)
	progressSvc := service.NewProgressService(db)
	profileSvc := service.NewProfileService(db)
	trialSvc := service.NewTrialService(redisClient)

	recSvc := service.NewRecommendationService(llm, perplexity, redisClient)
	recSvc.Timeout = 100 * time.Millisecond

	paymentSvc, err := service.NewPaymentService()
	require.NoError(t, err)

	handlers := &router.Handlers{
		Auth:           api.NewAuthHandler(authSvc),
		Meal:           api.NewMealHandler(mealSvc),
		Goal:           api.NewGoalHandler(goalSvc),
		Progress:       api.NewProgressHandler(progressSvc, nil),
		Profile:        api.NewProfileHandler(profileSvc),
		Recommendation: api.NewRecommendationHandler(recSvc, authSvc, trialSvc, profileSvc, goalSvc, mealSvc),
		Trial:          api.NewTrialHandler(authSvc, trialSvc),
		Payment:        api.NewPaymentHandler(paymentSvc, trialSvc),
	}

	return &env{
		engine: router.New(handlers, authSvc, redisClient),
		db:     db,
		redis:  redisClient,
		mr:     mr,
		auth:   authSvc,
		trial:  trialSvc,
	}
}

// do performs a request against the in-memory engine.
func (e *env) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

// cookieRequest builds a GET request authenticated via the session cookie.
func cookieRequest(t *testing.T, path, token string) (*http.Request, *httptest.ResponseRecorder) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.AddCookie(&http.Cookie{Name: "auth_token", Value: token})
	return req, httptest.NewRecorder()
}

// register creates a user through the API and returns its id and token.
func (e *env) register(t *testing.T, username string) (string, string) {
	t.Helper()

	w := e.do(t, http.MethodPost, "/api/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
		User  struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.User.ID, resp.Token
}

// expireTrial moves the user's trial end date into the past.
func (e *env) expireTrial(t *testing.T, userID string) {
	t.Helper()
	err := e.db.Table("users").Where("id = ?", userID).
		Update("trial_end_date", time.Now().Add(-24*time.Hour)).Error
	require.NoError(t, err)
}
