package service

import (
	"fmt"
	"log"
	"net/smtp"
	"os"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/macrolog/backend/internal/models"
)

// IEmailService lets callers send mail without caring about the transport.
type IEmailService interface {
	SendWelcomeEmail(user *models.User) error
	SendEmail(to, subject, body string) error
}

// retryBaseDelay is the unit of the retry backoff, shortened in tests.
var retryBaseDelay = time.Second

// SendWithRetry runs fn up to three times with exponential backoff and
// returns the last error if every attempt fails.
func SendWithRetry(fn func() error) error {
	var err error
	for attempt := 0; attempt < 3; attempt++ {
		if attempt > 0 {
			time.Sleep(time.Duration(1<<attempt) * retryBaseDelay)
		}
		if err = fn(); err == nil {
			return nil
		}
		log.Printf("email send attempt %d failed: %v", attempt+1, err)
	}
	return err
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// EmailService sends transactional mail over SMTP.
type EmailService struct {
	host     string
	port     string
	username string
	password string
	from     string
	enabled  bool
}

func NewEmailService() *EmailService {
	host := os.Getenv("SMTP_HOST")
	return &EmailService{
		host:     host,
		port:     getEnv("SMTP_PORT", "587"),
		username: os.Getenv("SMTP_USERNAME"),
		password: os.Getenv("SMTP_PASSWORD"),
		from:     getEnv("SMTP_FROM", "noreply@macrolog.app"),
		enabled:  host != "",
	}
}

func (s *EmailService) SendEmail(to, subject, body string) error {
	if !s.enabled {
		log.Printf("SMTP not configured, skipping email to %s: %s", to, subject)
		return nil
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=utf-8\r\n\r\n%s\r\n",
		s.from, to, subject, body)

	addr := s.host + ":" + s.port
	auth := smtp.PlainAuth("", s.username, s.password, s.host)
	if err := smtp.SendMail(addr, auth, s.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}

func (s *EmailService) SendWelcomeEmail(user *models.User) error {
	name := cases.Title(language.Und).String(user.Username)
	subject := "Benvenuto su MacroLog"
	body := fmt.Sprintf(
		"<p>Ciao %s,</p>"+
			"<p>benvenuto su MacroLog! Il tuo periodo di prova gratuito è attivo: hai accesso a tutte le funzionalità, incluse le raccomandazioni AI.</p>"+
			"<p>Inizia registrando il tuo primo pasto e impostando un obiettivo nutrizionale.</p>"+
			"<p>Buon appetito,<br>Il team MacroLog</p>",
		name)
	return s.SendEmail(user.Email, subject, body)
}
