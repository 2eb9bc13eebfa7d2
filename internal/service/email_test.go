package service

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macrolog/backend/internal/models"
)

func TestSendWithRetry(t *testing.T) {
	orig := retryBaseDelay
	retryBaseDelay = time.Millisecond
	t.Cleanup(func() { retryBaseDelay = orig })

	t.Run("first attempt succeeds", func(t *testing.T) {
		calls := 0
		err := SendWithRetry(func() error {
			calls++
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("recovers after transient failures", func(t *testing.T) {
		calls := 0
		err := SendWithRetry(func() error {
			calls++
			if calls < 3 {
				return errors.New("connection refused")
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("gives up after three attempts", func(t *testing.T) {
		calls := 0
		err := SendWithRetry(func() error {
			calls++
			return errors.New("mailbox unavailable")
		})
		assert.ErrorContains(t, err, "mailbox unavailable")
		assert.Equal(t, 3, calls)
	})
}

func TestSendWelcomeEmailDisabled(t *testing.T) {
	// Without SMTP_HOST the service is a no-op rather than an error source
	svc := &EmailService{enabled: false}
	err := svc.SendWelcomeEmail(&models.User{Username: "mario", Email: "mario@example.com"})
	assert.NoError(t, err)
}
