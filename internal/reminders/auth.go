package reminders

import (
	"crypto/subtle"

	"github.com/talentseek/b2beelanding/internal/apperr"
)

// Authorize checks the trigger's Authorization header. An empty secret
// leaves the trigger open.
func Authorize(secret, header string) error {
	if secret == "" {
		return nil
	}
	want := "Bearer " + secret
	if subtle.ConstantTimeCompare([]byte(header), []byte(want)) != 1 {
		return &apperr.UnauthorizedError{Reason: "bad cron secret"}
	}
	return nil
}
