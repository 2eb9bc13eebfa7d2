package api_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrialStatusEndpoint(t *testing.T) {
	e := newEnv(t, &stubCompleter{}, &stubCompleter{})
	_, token := e.register(t, "mario")

	w := e.do(t, http.MethodGet, "/api/trial-status", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var status struct {
		TrialActive        bool   `json:"trial_active"`
		TrialDaysLeft      int    `json:"trial_days_left"`
		SubscriptionActive bool   `json:"subscription_active"`
		Plan               string `json:"plan"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.True(t, status.TrialActive)
	assert.Equal(t, 5, status.TrialDaysLeft)
	assert.False(t, status.SubscriptionActive)
	assert.Equal(t, "trial", status.Plan)
}

func TestTrialStatusAfterExpiry(t *testing.T) {
	e := newEnv(t, &stubCompleter{}, &stubCompleter{})
	userID, token := e.register(t, "mario")
	e.expireTrial(t, userID)

	w := e.do(t, http.MethodGet, "/api/trial-status", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"plan":"free"`)
	assert.Contains(t, w.Body.String(), `"trial_days_left":0`)
}

func TestAIGateBlocksExpiredTrial(t *testing.T) {
	e := newEnv(t, &stubCompleter{}, &stubCompleter{})
	userID, token := e.register(t, "mario")
	e.expireTrial(t, userID)

	for _, req := range []struct{ method, path string }{
		{http.MethodGet, "/api/recommendations/nutrition-goals"},
		{http.MethodGet, "/api/recommendations/meals"},
		{http.MethodGet, "/api/perplexity/meal-suggestions"},
	} {
		w := e.do(t, req.method, req.path, token, nil)
		assert.Equal(t, http.StatusForbidden, w.Code, req.path)
	}

	w := e.do(t, http.MethodPost, "/api/ai-chat", token, map[string]string{"message": "ciao"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Meal logging stays available on the free plan
	w = e.do(t, http.MethodPost, "/api/meals", token, map[string]interface{}{
		"name": "Pranzo", "calories": 500, "meal_type": "lunch",
	})
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestPaymentReactivatesAIAccess(t *testing.T) {
	e := newEnv(t, &stubCompleter{content: `{"recommendations": [
		{"name": "Piano A", "description": "d", "calorie_target": 2000, "protein_target": 100, "carb_target": 250, "fat_target": 65}
	]}`}, &stubCompleter{})
	userID, token := e.register(t, "mario")
	e.expireTrial(t, userID)

	w := e.do(t, http.MethodGet, "/api/recommendations/nutrition-goals", token, nil)
	require.Equal(t, http.StatusForbidden, w.Code)

	w = e.do(t, http.MethodPost, "/api/create-payment-intent", token, map[string]interface{}{
		"amount": 999, "currency": "eur",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "client_secret")

	w = e.do(t, http.MethodPost, "/api/verify-payment", token, map[string]string{
		"payment_intent_id": "pi_ok",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"subscription_active":true`)

	w = e.do(t, http.MethodGet, "/api/trial-status", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"plan":"premium"`)

	w = e.do(t, http.MethodGet, "/api/recommendations/nutrition-goals", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "Piano A")
}

func TestVerifyPendingPaymentDoesNotActivate(t *testing.T) {
	e := newEnv(t, &stubCompleter{}, &stubCompleter{})
	_, token := e.register(t, "mario")

	w := e.do(t, http.MethodPost, "/api/verify-payment", token, map[string]string{
		"payment_intent_id": "pi_pending",
	})
	assert.Equal(t, http.StatusPaymentRequired, w.Code)

	w = e.do(t, http.MethodGet, "/api/trial-status", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"subscription_active":false`)
}

func TestGoalRecommendationsFallbackOverHTTP(t *testing.T) {
	e := newEnv(t, &blockingCompleter{}, &stubCompleter{})
	_, token := e.register(t, "mario")

	w := e.do(t, http.MethodGet, "/api/recommendations/nutrition-goals", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Recommendations []struct {
			Name          string `json:"name"`
			CalorieTarget int    `json:"calorie_target"`
		} `json:"recommendations"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Recommendations, 3)
}

func TestMealSuggestionsTimeoutOverHTTP(t *testing.T) {
	e := newEnv(t, &blockingCompleter{}, &blockingCompleter{})
	_, token := e.register(t, "mario")

	w := e.do(t, http.MethodGet, "/api/recommendations/meals", token, nil)
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)

	w = e.do(t, http.MethodGet, "/api/perplexity/meal-suggestions", token, nil)
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
}

func TestAIChatOverHTTP(t *testing.T) {
	e := newEnv(t, &stubCompleter{content: "Mangia più verdure."}, &stubCompleter{})
	_, token := e.register(t, "mario")

	w := e.do(t, http.MethodPost, "/api/ai-chat", token, map[string]string{
		"message": "come posso migliorare la cena?",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "Mangia più verdure.")
}

func TestNutritionalAdviceOverHTTP(t *testing.T) {
	e := newEnv(t, &stubCompleter{}, &stubCompleter{content: "Le proteine sono importanti."})
	_, token := e.register(t, "mario")

	w := e.do(t, http.MethodPost, "/api/perplexity/nutritional-advice", token, map[string]string{
		"question": "quante proteine al giorno?",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "Le proteine sono importanti.")
}
