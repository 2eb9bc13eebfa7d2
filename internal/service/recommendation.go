package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/macrolog/backend/internal/models"
)

// ErrRecommendationTimeout is returned when the model does not answer within
// the budget and no fallback payload applies.
var ErrRecommendationTimeout = errors.New("recommendation request timed out")

// recommendationTimeout is the budget for a single model call; past it the
// client gets the fallback payload (goals) or a 504 (meal suggestions).
const recommendationTimeout = 30 * time.Second

// Completer abstracts the chat-completions client so tests can substitute a
// blocking or canned implementation.
type Completer interface {
	Complete(ctx context.Context, messages []Message, temperature float64, jsonMode bool) (string, error)
}

// GoalRecommendation is one suggested nutrition goal.
type GoalRecommendation struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	CalorieTarget int    `json:"calorie_target"`
	ProteinTarget int    `json:"protein_target"`
	CarbTarget    int    `json:"carb_target"`
	FatTarget     int    `json:"fat_target"`
}

// MealSuggestion is one suggested meal.
type MealSuggestion struct {
	Name        string `json:"name"`
	MealType    string `json:"meal_type"`
	Description string `json:"description"`
	Calories    int    `json:"calories"`
	Proteins    int    `json:"proteins"`
	Carbs       int    `json:"carbs"`
	Fats        int    `json:"fats"`
}

// FallbackGoalRecommendations is the static payload served when the model
// does not answer in time.
func FallbackGoalRecommendations() []GoalRecommendation {
	return []GoalRecommendation{
		{
			Name:          "Mantenimento equilibrato",
			Description:   "Un piano bilanciato per mantenere il peso attuale con un apporto costante di macronutrienti.",
			CalorieTarget: 2000,
			ProteinTarget: 100,
			CarbTarget:    250,
			FatTarget:     65,
		},
		{
			Name:          "Perdita di peso graduale",
			Description:   "Un deficit calorico moderato per perdere peso in modo sostenibile, circa 0,5 kg a settimana.",
			CalorieTarget: 1700,
			ProteinTarget: 120,
			CarbTarget:    180,
			FatTarget:     55,
		},
		{
			Name:          "Aumento massa muscolare",
			Description:   "Un surplus calorico controllato con proteine elevate per supportare la crescita muscolare.",
			CalorieTarget: 2400,
			ProteinTarget: 150,
			CarbTarget:    280,
			FatTarget:     75,
		},
	}
}

// RecommendationService orchestrates AI-generated recommendations: prompt
// assembly from user data, the external model call under a timeout budget,
// JSON parsing, caching and the static fallback.
type RecommendationService struct {
	llm        Completer
	perplexity Completer
	redis      *redis.Client

	// Timeout bounds each model call.
	Timeout time.Duration
}

func NewRecommendationService(llm, perplexity Completer, redisClient *redis.Client) *RecommendationService {
	return &RecommendationService{
		llm:        llm,
		perplexity: perplexity,
		redis:      redisClient,
		Timeout:    recommendationTimeout,
	}
}

// BuildGoalPrompt serializes the user's context into the Italian-language
// prompt used for goal recommendations.
func BuildGoalPrompt(profile *models.UserProfile, activeGoal *models.NutritionGoal, meals []models.Meal) string {
	var b strings.Builder

	b.WriteString("Profilo utente:\n")
	fmt.Fprintf(&b, "- Età: %d\n", profile.Age)
	fmt.Fprintf(&b, "- Sesso: %s\n", profile.Gender)
	fmt.Fprintf(&b, "- Peso: %.0f kg\n", profile.Weight)
	fmt.Fprintf(&b, "- Altezza: %.0f cm\n", profile.Height)
	fmt.Fprintf(&b, "- Livello di attività: %s\n", profile.ActivityLevel)

	if activeGoal != nil {
		b.WriteString("\nObiettivo attuale:\n")
		fmt.Fprintf(&b, "- Nome: %s\n", activeGoal.Name)
		fmt.Fprintf(&b, "- Calorie: %d kcal\n", activeGoal.CalorieTarget)
		fmt.Fprintf(&b, "- Proteine: %d g, Carboidrati: %d g, Grassi: %d g\n",
			activeGoal.ProteinTarget, activeGoal.CarbTarget, activeGoal.FatTarget)
	} else {
		b.WriteString("\nL'utente non ha un obiettivo nutrizionale attivo al momento.\n")
	}

	if len(meals) > 0 {
		b.WriteString("\nPasti recenti:\n")
		for _, m := range meals {
			fmt.Fprintf(&b, "- %s (%s): %d kcal, %d g proteine, %d g carboidrati, %d g grassi\n",
				m.Name, m.MealType, m.Calories, m.Proteins, m.Carbs, m.Fats)
		}
	}

	return b.String()
}

// BuildMealPrompt serializes the user's context into the prompt used for
// meal suggestions.
func BuildMealPrompt(profile *models.UserProfile, activeGoal *models.NutritionGoal) string {
	var b strings.Builder

	b.WriteString("Profilo utente:\n")
	fmt.Fprintf(&b, "- Età: %d\n", profile.Age)
	fmt.Fprintf(&b, "- Peso: %.0f kg\n", profile.Weight)
	fmt.Fprintf(&b, "- Altezza: %.0f cm\n", profile.Height)
	fmt.Fprintf(&b, "- Livello di attività: %s\n", profile.ActivityLevel)

	if activeGoal != nil {
		fmt.Fprintf(&b, "\nObiettivo giornaliero: %d kcal (proteine %d g, carboidrati %d g, grassi %d g)\n",
			activeGoal.CalorieTarget, activeGoal.ProteinTarget, activeGoal.CarbTarget, activeGoal.FatTarget)
	} else {
		b.WriteString("\nL'utente non ha un obiettivo nutrizionale attivo al momento.\n")
	}

	return b.String()
}

const goalSystemPrompt = `Sei un nutrizionista esperto. In base al profilo dell'utente, proponi esattamente 3 obiettivi nutrizionali. Rispondi solo con JSON nella forma:
{"recommendations": [{"name": "...", "description": "...", "calorie_target": 2000, "protein_target": 100, "carb_target": 250, "fat_target": 65}]}
I valori di calorie e macronutrienti devono essere numeri interi.`

const mealSystemPrompt = `Sei un nutrizionista esperto. In base al profilo dell'utente, proponi 3 pasti adatti. Rispondi solo con JSON nella forma:
{"suggestions": [{"name": "...", "meal_type": "breakfast|lunch|dinner|snack", "description": "...", "calories": 400, "proteins": 25, "carbs": 40, "fats": 15}]}
I valori nutrizionali devono essere numeri interi.`

// GoalRecommendations returns AI-generated nutrition goal recommendations.
// The model call races the timeout budget: if it loses, the caller gets the
// static fallback payload and the late result is discarded.
func (s *RecommendationService) GoalRecommendations(ctx context.Context, userID uuid.UUID, profile *models.UserProfile, activeGoal *models.NutritionGoal, meals []models.Meal) ([]GoalRecommendation, error) {
	cacheKey := fmt.Sprintf("recommendations:goals:%s", userID)
	if s.redis != nil {
		if data, err := s.redis.Get(ctx, cacheKey).Bytes(); err == nil {
			var cached []GoalRecommendation
			if err := json.Unmarshal(data, &cached); err == nil {
				return cached, nil
			}
		}
	}

	messages := []Message{
		{Role: "system", Content: goalSystemPrompt},
		{Role: "user", Content: BuildGoalPrompt(profile, activeGoal, meals)},
	}

	content, err := s.completeWithTimeout(ctx, s.llm, messages, 0.7)
	if errors.Is(err, ErrRecommendationTimeout) {
		log.Printf("goal recommendations timed out for user %s, serving fallback", userID)
		return FallbackGoalRecommendations(), nil
	}
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Recommendations []GoalRecommendation `json:"recommendations"`
	}
	if err := ParseJSONContent(content, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse recommendations: %w", err)
	}
	if len(parsed.Recommendations) == 0 {
		return nil, fmt.Errorf("no recommendations in response")
	}

	if s.redis != nil {
		if data, err := json.Marshal(parsed.Recommendations); err == nil {
			if err := s.redis.Set(ctx, cacheKey, data, time.Hour).Err(); err != nil {
				log.Printf("failed to cache recommendations for user %s: %v", userID, err)
			}
		}
	}

	return parsed.Recommendations, nil
}

// MealSuggestions returns AI-generated meal suggestions from the given
// provider. Unlike goal recommendations there is no fallback payload: a
// timeout surfaces as ErrRecommendationTimeout (mapped to 504).
func (s *RecommendationService) MealSuggestions(ctx context.Context, client Completer, profile *models.UserProfile, activeGoal *models.NutritionGoal) ([]MealSuggestion, error) {
	messages := []Message{
		{Role: "system", Content: mealSystemPrompt},
		{Role: "user", Content: BuildMealPrompt(profile, activeGoal)},
	}

	content, err := s.completeWithTimeout(ctx, client, messages, 0.7)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Suggestions []MealSuggestion `json:"suggestions"`
	}
	if err := ParseJSONContent(content, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse suggestions: %w", err)
	}
	if len(parsed.Suggestions) == 0 {
		return nil, fmt.Errorf("no suggestions in response")
	}

	return parsed.Suggestions, nil
}

// OpenAIMealSuggestions serves GET /api/recommendations/meals.
func (s *RecommendationService) OpenAIMealSuggestions(ctx context.Context, profile *models.UserProfile, activeGoal *models.NutritionGoal) ([]MealSuggestion, error) {
	return s.MealSuggestions(ctx, s.llm, profile, activeGoal)
}

// PerplexityMealSuggestions serves GET /api/perplexity/meal-suggestions.
func (s *RecommendationService) PerplexityMealSuggestions(ctx context.Context, profile *models.UserProfile, activeGoal *models.NutritionGoal) ([]MealSuggestion, error) {
	return s.MealSuggestions(ctx, s.perplexity, profile, activeGoal)
}

// Chat answers a free-form user message without JSON constraints.
func (s *RecommendationService) Chat(ctx context.Context, message string) (string, error) {
	messages := []Message{
		{Role: "system", Content: "Sei un assistente nutrizionale. Rispondi in modo chiaro e conciso alle domande dell'utente su alimentazione e nutrizione."},
		{Role: "user", Content: message},
	}
	return s.completeWithTimeoutPlain(ctx, s.llm, messages, 0.7)
}

// NutritionalAdvice answers a nutrition question via Perplexity, including
// the user's profile for context.
func (s *RecommendationService) NutritionalAdvice(ctx context.Context, profile *models.UserProfile, question string) (string, error) {
	messages := []Message{
		{Role: "system", Content: "Sei un nutrizionista. Fornisci consigli nutrizionali basati su fonti affidabili, adattati al profilo dell'utente."},
		{Role: "user", Content: BuildMealPrompt(profile, nil) + "\nDomanda: " + question},
	}
	return s.completeWithTimeoutPlain(ctx, s.perplexity, messages, 0.3)
}

type completionResult struct {
	content string
	err     error
}

// completeWithTimeout races the model call against the timeout budget. The
// result channel is buffered so the losing goroutine's send never blocks.
// A late result is discarded; the external call itself is not cancelled
// beyond the context deadline.
func (s *RecommendationService) completeWithTimeout(ctx context.Context, client Completer, messages []Message, temperature float64) (string, error) {
	return s.race(ctx, client, messages, temperature, true)
}

func (s *RecommendationService) completeWithTimeoutPlain(ctx context.Context, client Completer, messages []Message, temperature float64) (string, error) {
	return s.race(ctx, client, messages, temperature, false)
}

func (s *RecommendationService) race(ctx context.Context, client Completer, messages []Message, temperature float64, jsonMode bool) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	resultCh := make(chan completionResult, 1)
	go func() {
		content, err := client.Complete(callCtx, messages, temperature, jsonMode)
		resultCh <- completionResult{content: content, err: err}
	}()

	timer := time.NewTimer(s.Timeout)
	defer timer.Stop()

	select {
	case res := <-resultCh:
		if res.err != nil {
			if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
				return "", ErrRecommendationTimeout
			}
			return "", res.err
		}
		return res.content, nil
	case <-timer.C:
		return "", ErrRecommendationTimeout
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
