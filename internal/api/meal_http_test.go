package api_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMealCRUDOverHTTP(t *testing.T) {
	e := newEnv(t, &stubCompleter{}, &stubCompleter{})
	_, token := e.register(t, "mario")

	w := e.do(t, http.MethodPost, "/api/meals", token, map[string]interface{}{
		"name":      "Pasta al pesto",
		"calories":  520.7,
		"proteins":  15.2,
		"carbs":     78.9,
		"fats":      16.5,
		"meal_type": "lunch",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var meal struct {
		ID       string `json:"id"`
		Calories int    `json:"calories"`
		Proteins int    `json:"proteins"`
		Carbs    int    `json:"carbs"`
		Fats     int    `json:"fats"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &meal))
	assert.Equal(t, 521, meal.Calories)
	assert.Equal(t, 15, meal.Proteins)
	assert.Equal(t, 79, meal.Carbs)
	assert.Equal(t, 17, meal.Fats)

	w = e.do(t, http.MethodGet, "/api/meals", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var meals []json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &meals))
	assert.Len(t, meals, 1)

	w = e.do(t, http.MethodPatch, "/api/meals/"+meal.ID, token, map[string]interface{}{
		"name": "Pasta al pesto genovese",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Pasta al pesto genovese")

	w = e.do(t, http.MethodDelete, "/api/meals/"+meal.ID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do(t, http.MethodDelete, "/api/meals/"+meal.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = e.do(t, http.MethodGet, "/api/meals/"+meal.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMealInvalidInput(t *testing.T) {
	e := newEnv(t, &stubCompleter{}, &stubCompleter{})
	_, token := e.register(t, "mario")

	w := e.do(t, http.MethodPost, "/api/meals", token, map[string]interface{}{
		"name":      "Brunch tardivo",
		"calories":  400,
		"meal_type": "brunch",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(t, http.MethodGet, "/api/meals/not-a-uuid", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMealsIsolatedBetweenUsers(t *testing.T) {
	e := newEnv(t, &stubCompleter{}, &stubCompleter{})
	_, marioToken := e.register(t, "mario")
	_, lucaToken := e.register(t, "luca")

	w := e.do(t, http.MethodPost, "/api/meals", marioToken, map[string]interface{}{
		"name":      "Cena privata",
		"calories":  700,
		"meal_type": "dinner",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var meal struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &meal))

	w = e.do(t, http.MethodGet, "/api/meals/"+meal.ID, lucaToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = e.do(t, http.MethodGet, "/api/meals", lucaToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var meals []json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &meals))
	assert.Empty(t, meals)
}

func TestNutritionGoalsOverHTTP(t *testing.T) {
	e := newEnv(t, &stubCompleter{}, &stubCompleter{})
	_, token := e.register(t, "mario")

	w := e.do(t, http.MethodGet, "/api/nutrition-goals/active", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = e.do(t, http.MethodPost, "/api/nutrition-goals", token, map[string]interface{}{
		"name":           "Mantenimento",
		"calorie_target": 2000,
		"protein_target": 100,
		"is_active":      true,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = e.do(t, http.MethodGet, "/api/nutrition-goals/active", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Mantenimento")
}

func TestProgressOverHTTP(t *testing.T) {
	e := newEnv(t, &stubCompleter{}, &stubCompleter{})
	_, token := e.register(t, "mario")

	w := e.do(t, http.MethodPost, "/api/progress", token, map[string]interface{}{
		"weight": 74200,
		"notes":  "prima misurazione",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var entry struct {
		ID     string `json:"id"`
		Weight int    `json:"weight"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entry))
	assert.Equal(t, 74200, entry.Weight)

	w = e.do(t, http.MethodPatch, "/api/progress/"+entry.ID, token, map[string]interface{}{
		"weight": 74000,
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "74000")

	w = e.do(t, http.MethodGet, "/api/progress", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var entries []json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entries))
	assert.Len(t, entries, 1)
}

func TestUserProfileOverHTTP(t *testing.T) {
	e := newEnv(t, &stubCompleter{}, &stubCompleter{})
	_, token := e.register(t, "mario")

	// Registration creates a default profile
	w := e.do(t, http.MethodGet, "/api/user-profile", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"age":30`)

	w = e.do(t, http.MethodPatch, "/api/user-profile", token, map[string]interface{}{
		"age":    27,
		"weight": 68.5,
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"age":27`)
	assert.Contains(t, w.Body.String(), `"weight":68.5`)
}
