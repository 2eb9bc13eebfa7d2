package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macrolog/backend/internal/models"
	"github.com/macrolog/backend/internal/testhelpers"
)

type stubCompleter struct {
	content string
	err     error
	calls   int
}

func (s *stubCompleter) Complete(ctx context.Context, messages []Message, temperature float64, jsonMode bool) (string, error) {
	s.calls++
	return s.content, s.err
}

// blockingCompleter never answers until the context is cancelled.
type blockingCompleter struct{}

func (b *blockingCompleter) Complete(ctx context.Context, messages []Message, temperature float64, jsonMode bool) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func defaultProfile() *models.UserProfile {
	return &models.UserProfile{
		Age:           30,
		Gender:        "unspecified",
		Weight:        70,
		Height:        175,
		ActivityLevel: "moderate",
	}
}

func TestBuildGoalPrompt(t *testing.T) {
	prompt := BuildGoalPrompt(defaultProfile(), nil, nil)

	assert.Contains(t, prompt, "Età: 30")
	assert.Contains(t, prompt, "Peso: 70 kg")
	assert.Contains(t, prompt, "Altezza: 175 cm")
	assert.Contains(t, prompt, "Livello di attività: moderate")
	assert.Contains(t, prompt, "non ha un obiettivo nutrizionale attivo")
	assert.NotContains(t, prompt, "Obiettivo attuale")
}

func TestBuildGoalPromptWithGoalAndMeals(t *testing.T) {
	goal := &models.NutritionGoal{
		Name:          "Definizione",
		CalorieTarget: 1800,
		ProteinTarget: 130,
		CarbTarget:    160,
		FatTarget:     60,
	}
	meals := []models.Meal{
		{Name: "Porridge", MealType: "breakfast", Calories: 350, Proteins: 12, Carbs: 55, Fats: 9},
	}

	prompt := BuildGoalPrompt(defaultProfile(), goal, meals)

	assert.Contains(t, prompt, "Obiettivo attuale")
	assert.Contains(t, prompt, "Definizione")
	assert.Contains(t, prompt, "1800 kcal")
	assert.Contains(t, prompt, "Pasti recenti")
	assert.Contains(t, prompt, "Porridge (breakfast): 350 kcal")
	assert.NotContains(t, prompt, "non ha un obiettivo nutrizionale attivo")
}

func TestGoalRecommendationsFallbackOnTimeout(t *testing.T) {
	svc := NewRecommendationService(&blockingCompleter{}, nil, nil)
	svc.Timeout = 50 * time.Millisecond

	recs, err := svc.GoalRecommendations(context.Background(), uuid.New(), defaultProfile(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, FallbackGoalRecommendations(), recs)
	assert.Len(t, recs, 3)
}

func TestFallbackGoalRecommendationsShape(t *testing.T) {
	recs := FallbackGoalRecommendations()
	require.Len(t, recs, 3)
	for _, r := range recs {
		assert.NotEmpty(t, r.Name)
		assert.NotEmpty(t, r.Description)
		assert.Greater(t, r.CalorieTarget, 0)
		assert.Greater(t, r.ProteinTarget, 0)
		assert.Greater(t, r.CarbTarget, 0)
		assert.Greater(t, r.FatTarget, 0)
	}
}

func TestGoalRecommendationsParsesAndCaches(t *testing.T) {
	client, _ := testhelpers.NewTestRedis(t)
	stub := &stubCompleter{content: `{"recommendations": [
		{"name": "Piano A", "description": "desc", "calorie_target": 2100, "protein_target": 110, "carb_target": 240, "fat_target": 70}
	]}`}
	svc := NewRecommendationService(stub, nil, client)
	svc.Timeout = time.Second

	userID := uuid.New()
	recs, err := svc.GoalRecommendations(context.Background(), userID, defaultProfile(), nil, nil)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Piano A", recs[0].Name)
	assert.Equal(t, 2100, recs[0].CalorieTarget)
	assert.Equal(t, 1, stub.calls)

	// Second call is served from cache, the model is not consulted again
	recs, err = svc.GoalRecommendations(context.Background(), userID, defaultProfile(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "Piano A", recs[0].Name)
	assert.Equal(t, 1, stub.calls)
}

func TestGoalRecommendationsBadModelOutput(t *testing.T) {
	stub := &stubCompleter{content: "non sono in grado di rispondere"}
	svc := NewRecommendationService(stub, nil, nil)
	svc.Timeout = time.Second

	_, err := svc.GoalRecommendations(context.Background(), uuid.New(), defaultProfile(), nil, nil)
	assert.Error(t, err)
}

func TestMealSuggestionsTimeout(t *testing.T) {
	svc := NewRecommendationService(&blockingCompleter{}, &blockingCompleter{}, nil)
	svc.Timeout = 50 * time.Millisecond

	_, err := svc.OpenAIMealSuggestions(context.Background(), defaultProfile(), nil)
	assert.ErrorIs(t, err, ErrRecommendationTimeout)

	_, err = svc.PerplexityMealSuggestions(context.Background(), defaultProfile(), nil)
	assert.ErrorIs(t, err, ErrRecommendationTimeout)
}

func TestMealSuggestionsParse(t *testing.T) {
	stub := &stubCompleter{content: `{"suggestions": [
		{"name": "Insalata di farro", "meal_type": "lunch", "description": "desc", "calories": 450, "proteins": 18, "carbs": 60, "fats": 14}
	]}`}
	svc := NewRecommendationService(stub, nil, nil)
	svc.Timeout = time.Second

	suggestions, err := svc.OpenAIMealSuggestions(context.Background(), defaultProfile(), nil)
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.Equal(t, "Insalata di farro", suggestions[0].Name)
	assert.Equal(t, "lunch", suggestions[0].MealType)
}

func TestRaceClientCancellation(t *testing.T) {
	svc := NewRecommendationService(&blockingCompleter{}, nil, nil)
	svc.Timeout = time.Minute

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	// A cancelled caller is not a provider timeout, so no fallback applies
	_, err := svc.OpenAIMealSuggestions(ctx, defaultProfile(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrRecommendationTimeout)
}

func TestRaceProviderError(t *testing.T) {
	stub := &stubCompleter{err: errors.New("upstream 500")}
	svc := NewRecommendationService(stub, nil, nil)
	svc.Timeout = time.Second

	_, err := svc.Chat(context.Background(), "ciao")
	assert.ErrorContains(t, err, "upstream 500")
	assert.NotErrorIs(t, err, ErrRecommendationTimeout)
}
