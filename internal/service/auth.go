package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/scrypt"
	"gorm.io/gorm"

	"github.com/macrolog/backend/internal/models"
	"github.com/macrolog/backend/internal/types"
)

var (
	ErrUserExists           = errors.New("username or email already registered")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrTooManyRegistrations = errors.New("too many registrations from this email or address")
	ErrInvalidAdminCode     = errors.New("invalid access code")
)

// AdminUserID is the pseudo-user granted by the admin access code.
var AdminUserID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

const (
	scryptN      = 16384
	scryptR      = 8
	scryptP      = 1
	scryptKeyLen = 64
	scryptSalt   = 16

	// registrationWindow limits signups per email/IP: at most
	// maxRegistrations within the window, further attempts rejected.
	registrationWindow = 30 * 24 * time.Hour
	maxRegistrations   = 2
)

type AuthService struct {
	db        *gorm.DB
	jwtSecret string
	adminCode string
	trialDays int
	email     IEmailService

	now func() time.Time
}

func NewAuthService(db *gorm.DB, jwtSecret, adminCode string, trialDays int, email IEmailService) *AuthService {
	return &AuthService{
		db:        db,
		jwtSecret: jwtSecret,
		adminCode: adminCode,
		trialDays: trialDays,
		email:     email,
		now:       time.Now,
	}
}

// HashPassword derives a scrypt hash with a fresh random salt, encoded as
// "hex(hash).hex(salt)".
func HashPassword(password string) (string, error) {
	salt := make([]byte, scryptSalt)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	hash, err := scrypt.Key([]byte(password), salt, scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	return hex.EncodeToString(hash) + "." + hex.EncodeToString(salt), nil
}

// ComparePasswords re-derives the hash with the stored salt and compares in
// constant time.
func ComparePasswords(password, stored string) bool {
	parts := strings.Split(stored, ".")
	if len(parts) != 2 {
		return false
	}

	expected, err := hex.DecodeString(parts[0])
	if err != nil {
		return false
	}
	salt, err := hex.DecodeString(parts[1])
	if err != nil {
		return false
	}

	hash, err := scrypt.Key([]byte(password), salt, scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return false
	}

	return subtle.ConstantTimeCompare(hash, expected) == 1
}

// Register creates a user with a default profile and a fresh trial window.
// Each attempt is recorded in the registration log, which throttles signups
// per email and per IP.
func (s *AuthService) Register(ctx context.Context, req *types.RegisterRequest, ip, userAgent string) (*models.User, error) {
	trialEnd := s.now().Add(time.Duration(s.trialDays) * 24 * time.Hour)

	// The throttle counts only rows that existed before this attempt.
	limitErr := s.checkRegistrationLimit(ctx, req.Email, ip)
	if limitErr != nil && !errors.Is(limitErr, ErrTooManyRegistrations) {
		return nil, limitErr
	}

	// Every attempt leaves an audit row, rejected ones included.
	logEntry := models.RegistrationLog{
		IP:           ip,
		UserAgent:    userAgent,
		Email:        req.Email,
		Username:     req.Username,
		TrialEndDate: trialEnd,
		CreatedAt:    s.now(),
	}
	if err := s.db.WithContext(ctx).Create(&logEntry).Error; err != nil {
		return nil, err
	}

	var existing models.User
	err := s.db.WithContext(ctx).
		Where("username = ? OR email = ?", req.Username, req.Email).
		First(&existing).Error
	if err == nil {
		return nil, ErrUserExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if limitErr != nil {
		return nil, limitErr
	}

	hashed, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hashed,
		TrialEndDate: trialEnd,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}

	// Default profile; the client fills in real values via PATCH later
	profile := models.UserProfile{UserID: user.ID}
	if err := s.db.WithContext(ctx).Create(&profile).Error; err != nil {
		return nil, err
	}

	if s.email != nil {
		go func(u models.User) {
			if err := SendWithRetry(func() error {
				return s.email.SendWelcomeEmail(&u)
			}); err != nil {
				log.Printf("failed to send welcome email to %s: %v", u.Email, err)
			}
		}(user)
	}

	return &user, nil
}

// checkRegistrationLimit rejects a registration when the log already holds
// maxRegistrations rows for the same email or IP inside the window.
func (s *AuthService) checkRegistrationLimit(ctx context.Context, email, ip string) error {
	since := s.now().Add(-registrationWindow)

	var count int64
	err := s.db.WithContext(ctx).Model(&models.RegistrationLog{}).
		Where("(email = ? OR ip = ?) AND created_at > ?", email, ip, since).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count >= maxRegistrations {
		return ErrTooManyRegistrations
	}
	return nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*models.User, string, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, "", ErrInvalidCredentials
	}

	if !ComparePasswords(password, user.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.GenerateToken(&types.TokenClaims{UserID: user.ID, Username: user.Username})
	if err != nil {
		return nil, "", err
	}

	return &user, token, nil
}

// AdminAccess mints a token for the fixed admin pseudo-user when the bypass
// code matches. There is no authorization model beyond this comparison.
func (s *AuthService) AdminAccess(code string) (string, error) {
	if s.adminCode == "" || subtle.ConstantTimeCompare([]byte(code), []byte(s.adminCode)) != 1 {
		return "", ErrInvalidAdminCode
	}
	return s.GenerateToken(&types.TokenClaims{UserID: AdminUserID, Username: "admin", IsAdmin: true})
}

func (s *AuthService) GenerateToken(claims *types.TokenClaims) (string, error) {
	jwtClaims := jwt.MapClaims{
		"user_id":  claims.UserID.String(),
		"username": claims.Username,
		"is_admin": claims.IsAdmin,
		"exp":      s.now().Add(24 * time.Hour).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwtClaims)
	return token.SignedString([]byte(s.jwtSecret))
}

func (s *AuthService) ValidateToken(tokenString string) (*types.TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	userIDStr, ok := claims["user_id"].(string)
	if !ok {
		return nil, errors.New("invalid token claims")
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, err
	}

	result := &types.TokenClaims{UserID: userID}
	if username, ok := claims["username"].(string); ok {
		result.Username = username
	}
	if isAdmin, ok := claims["is_admin"].(bool); ok {
		result.IsAdmin = isAdmin
	}
	return result, nil
}

func (s *AuthService) GetUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
