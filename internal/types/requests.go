package types

import "time"

// RegisterRequest is the body of POST /api/register
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// LoginRequest is the body of POST /api/login
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AdminAccessRequest is the body of POST /api/admin-access
type AdminAccessRequest struct {
	Code string `json:"code" binding:"required"`
}

// CreateMealRequest is the body of POST /api/meals. Macro fields accept
// fractional input and are rounded to whole units on create.
type CreateMealRequest struct {
	Name       string     `json:"name" binding:"required"`
	Calories   float64    `json:"calories" binding:"gte=0"`
	Proteins   float64    `json:"proteins" binding:"gte=0"`
	Carbs      float64    `json:"carbs" binding:"gte=0"`
	Fats       float64    `json:"fats" binding:"gte=0"`
	MealType   string     `json:"meal_type" binding:"required"`
	ConsumedAt *time.Time `json:"consumed_at"`
}

// UpdateMealRequest is the body of PATCH /api/meals/:id
type UpdateMealRequest struct {
	Name       *string    `json:"name"`
	Calories   *float64   `json:"calories"`
	Proteins   *float64   `json:"proteins"`
	Carbs      *float64   `json:"carbs"`
	Fats       *float64   `json:"fats"`
	MealType   *string    `json:"meal_type"`
	ConsumedAt *time.Time `json:"consumed_at"`
}

// CreateGoalRequest is the body of POST /api/nutrition-goals
type CreateGoalRequest struct {
	Name          string     `json:"name" binding:"required"`
	Description   string     `json:"description"`
	CalorieTarget int        `json:"calorie_target" binding:"required,gt=0"`
	ProteinTarget int        `json:"protein_target" binding:"gte=0"`
	CarbTarget    int        `json:"carb_target" binding:"gte=0"`
	FatTarget     int        `json:"fat_target" binding:"gte=0"`
	StartDate     *time.Time `json:"start_date"`
	EndDate       *time.Time `json:"end_date"`
	IsActive      bool       `json:"is_active"`
}

// UpdateGoalRequest is the body of PATCH /api/nutrition-goals/:id
type UpdateGoalRequest struct {
	Name          *string    `json:"name"`
	Description   *string    `json:"description"`
	CalorieTarget *int       `json:"calorie_target"`
	ProteinTarget *int       `json:"protein_target"`
	CarbTarget    *int       `json:"carb_target"`
	FatTarget     *int       `json:"fat_target"`
	StartDate     *time.Time `json:"start_date"`
	EndDate       *time.Time `json:"end_date"`
	IsActive      *bool      `json:"is_active"`
}

// CreateProgressRequest is the body of POST /api/progress. Weight is grams.
type CreateProgressRequest struct {
	Date   *time.Time `json:"date"`
	Weight int        `json:"weight" binding:"required,gt=0"`
	Notes  string     `json:"notes"`
}

// UpdateProgressRequest is the body of PATCH /api/progress/:id
type UpdateProgressRequest struct {
	Date   *time.Time `json:"date"`
	Weight *int       `json:"weight"`
	Notes  *string    `json:"notes"`
}

// UpdateProfileRequest is the body of PATCH /api/user-profile
type UpdateProfileRequest struct {
	Age           *int     `json:"age"`
	Gender        *string  `json:"gender"`
	Weight        *float64 `json:"weight"`
	Height        *float64 `json:"height"`
	ActivityLevel *string  `json:"activity_level"`
}

// ChatRequest is the body of POST /api/ai-chat
type ChatRequest struct {
	Message string `json:"message" binding:"required"`
}

// AdviceRequest is the body of POST /api/perplexity/nutritional-advice
type AdviceRequest struct {
	Question string `json:"question" binding:"required"`
}

// CreatePaymentIntentRequest is the body of POST /api/create-payment-intent
type CreatePaymentIntentRequest struct {
	Amount   int64  `json:"amount" binding:"required,gt=0"`
	Currency string `json:"currency"`
}

// VerifyPaymentRequest is the body of POST /api/verify-payment
type VerifyPaymentRequest struct {
	PaymentIntentID string `json:"payment_intent_id" binding:"required"`
}
